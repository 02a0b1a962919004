package budget

import "time"

type EntryType string

const (
	// EntrySet records the user manually setting the balance,
	// e.g. after checking the bank app.
	EntrySet EntryType = "set"
	// EntryCredit records money coming in: salary, transfer, cashback.
	EntryCredit EntryType = "credit"
	// EntryDebit records an automatic deduction when an expense is logged.
	EntryDebit EntryType = "debit"
)

// LedgerEntry is one append-only balance event. Entries are never
// updated or removed; reversals are compensating credits.
type LedgerEntry struct {
	ID         int64
	Type       EntryType
	Amount     int64
	Note       string
	RecordedAt time.Time
}
