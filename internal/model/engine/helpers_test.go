package engine

import (
	"time"

	"github.com/mission-budget/spender/internal/model/storage"
)

// testToday is a Wednesday: week start 14.04, three weekdays elapsed,
// 15 days until the next 1st.
var testToday = time.Date(2025, time.April, 16, 12, 0, 0, 0, time.UTC)

// testClock steps the service clock forward between writes so ledger
// timestamps stay strictly ordered.
type testClock struct {
	current time.Time
}

func newTestService() (*Service, *storage.InMemStorage, *testClock) {
	store := storage.NewInMemStorage()
	clock := &testClock{current: testToday}
	svc := NewService(store)
	svc.now = func() time.Time { return clock.current }
	return svc, store, clock
}

func (c *testClock) tick() {
	c.current = c.current.Add(time.Minute)
}
