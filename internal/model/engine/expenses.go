package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mission-budget/spender/internal/entity/budget"
)

// AddExpense records an expense with its side effects in one storage
// transaction: the expense row, the weekly-limit increment for the week
// of the expense's date (the row is created on first use), and - for
// non-card payments once a balance has been set - an automatic ledger
// debit. Card spend counts toward the weekly cap but never touches
// the ledger.
func (s *Service) AddExpense(ctx context.Context, exp budget.Expense) (budget.Expense, error) {
	exp.Date = budget.DateOf(exp.Date)
	exp.PaymentMode = exp.PaymentMode.OrDefault()

	goal, err := s.storage.ActiveGoal(ctx)
	if err != nil {
		return budget.Expense{}, errors.Wrap(err, "add expense")
	}

	week := budget.WeeklyLimit{
		WeekStart: budget.WeekStartOf(exp.Date),
		Cap:       deriveWeeklyCap(goal),
	}

	debit, err := s.autoDebit(ctx, exp)
	if err != nil {
		return budget.Expense{}, errors.Wrap(err, "add expense")
	}

	saved, err := s.storage.AddExpense(ctx, exp, week, debit)
	if err != nil {
		return budget.Expense{}, errors.Wrap(err, "add expense")
	}
	return saved, nil
}

// DeleteExpense reverses everything AddExpense did, atomically: the
// week of the expense's own date loses the amount (floored at zero) and
// a compensating credit is appended for non-card payments. The original
// debit entry stays in the ledger untouched.
func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	exp, err := s.storage.ExpenseByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "delete expense")
	}

	var credit *budget.LedgerEntry
	if exp.PaymentMode.OrDefault() != budget.ModeCard {
		hasSet, err := s.storage.HasSet(ctx)
		if err != nil {
			return errors.Wrap(err, "delete expense")
		}
		if hasSet {
			credit = &budget.LedgerEntry{
				Type:       budget.EntryCredit,
				Amount:     exp.Amount,
				Note:       "Reversal [UPI]: " + exp.Label(),
				RecordedAt: s.now(),
			}
		}
	}

	if err = s.storage.DeleteExpense(ctx, exp, credit); err != nil {
		return errors.Wrap(err, "delete expense")
	}
	return nil
}

// ListExpenses returns all expenses, newest date first.
func (s *Service) ListExpenses(ctx context.Context) ([]budget.Expense, error) {
	return s.storage.ListExpenses(ctx)
}

func (s *Service) autoDebit(ctx context.Context, exp budget.Expense) (*budget.LedgerEntry, error) {
	if exp.PaymentMode == budget.ModeCard {
		return nil, nil
	}
	hasSet, err := s.storage.HasSet(ctx)
	if err != nil {
		return nil, err
	}
	if !hasSet {
		return nil, nil
	}
	return &budget.LedgerEntry{
		Type:       budget.EntryDebit,
		Amount:     exp.Amount,
		Note:       "[UPI] " + exp.Label(),
		RecordedAt: s.now(),
	}, nil
}
