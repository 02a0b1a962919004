// Package engine derives every read-side view of the budget purely from
// the append-only balance ledger and the mutable aggregate rows. Nothing
// here caches derived state; each call recomputes from storage.
package engine

import (
	"context"
	"time"

	"github.com/mission-budget/spender/internal/entity/budget"
)

const (
	fallbackWeeklyCap = 4000
	minWeeklyCap      = 1000
	weeklyCapDivisor  = 4

	daysPerMonth  = 30.44
	weeksPerMonth = 4.33
	minMonthsLeft = 0.01

	onTrackShare    = 0.60
	slightRiskShare = 0.85

	ledgerPageSize = 50
)

type Storage interface {
	ActiveGoal(ctx context.Context) (*budget.Goal, error)
	ReplaceGoal(ctx context.Context, g budget.Goal) (budget.Goal, error)

	ExpenseByID(ctx context.Context, id int64) (budget.Expense, error)
	ListExpenses(ctx context.Context) ([]budget.Expense, error)
	AddExpense(ctx context.Context, exp budget.Expense, week budget.WeeklyLimit, debit *budget.LedgerEntry) (budget.Expense, error)
	DeleteExpense(ctx context.Context, exp budget.Expense, credit *budget.LedgerEntry) error

	WeeklyLimitAt(ctx context.Context, weekStart time.Time) (*budget.WeeklyLimit, error)
	CreateWeeklyLimit(ctx context.Context, wl budget.WeeklyLimit) (budget.WeeklyLimit, error)
	ListWeeklyLimits(ctx context.Context) ([]budget.WeeklyLimit, error)
	SetWeeklyCap(ctx context.Context, weekStart time.Time, cap int64) error

	AppendLedger(ctx context.Context, e budget.LedgerEntry) (budget.LedgerEntry, error)
	LastSet(ctx context.Context) (*budget.LedgerEntry, error)
	LedgerAfter(ctx context.Context, t time.Time) ([]budget.LedgerEntry, error)
	HasSet(ctx context.Context) (bool, error)
	RecentLedger(ctx context.Context, limit uint64) ([]budget.LedgerEntry, error)
}

type Service struct {
	storage Storage
	now     func() time.Time
}

func NewService(storage Storage) *Service {
	return &Service{
		storage: storage,
		now:     time.Now,
	}
}

// today is the engine's reference date at UTC midnight.
func (s *Service) today() time.Time {
	return budget.DateOf(s.now())
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
