package budget

import "time"

// WeeklyLimit is the spending envelope for one ISO week, keyed by the
// Monday of that week. The cap is frozen at creation time: editing the
// goal later does not recalculate caps of already-created weeks.
type WeeklyLimit struct {
	ID        int64
	WeekStart time.Time
	Cap       int64
	Spent     int64
}

// Remaining is the unspent part of the cap, floored at zero.
func (w WeeklyLimit) Remaining() int64 {
	if w.Cap <= w.Spent {
		return 0
	}
	return w.Cap - w.Spent
}

// Saved is cap minus spent; negative means the week overspent.
func (w WeeklyLimit) Saved() int64 {
	return w.Cap - w.Spent
}
