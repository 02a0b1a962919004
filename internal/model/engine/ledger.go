package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mission-budget/spender/internal/entity/budget"
	"github.com/mission-budget/spender/internal/model/customerr"
)

// SetBalance appends a 'set' entry, making it the new replay anchor for
// every later balance computation.
func (s *Service) SetBalance(ctx context.Context, amount int64, note string) (budget.LedgerEntry, error) {
	entry, err := s.storage.AppendLedger(ctx, budget.LedgerEntry{
		Type:       budget.EntrySet,
		Amount:     amount,
		Note:       note,
		RecordedAt: s.now(),
	})
	if err != nil {
		return budget.LedgerEntry{}, errors.Wrap(err, "set balance")
	}
	return entry, nil
}

// AddCredit appends a 'credit' entry. Crediting before any balance has
// been set is a user error, not a silent default.
func (s *Service) AddCredit(ctx context.Context, amount int64, note string) (budget.LedgerEntry, error) {
	hasSet, err := s.storage.HasSet(ctx)
	if err != nil {
		return budget.LedgerEntry{}, errors.Wrap(err, "add credit")
	}
	if !hasSet {
		return budget.LedgerEntry{}, &customerr.NoBalanceError{
			Err: "set your current balance first before adding credits",
		}
	}

	entry, err := s.storage.AppendLedger(ctx, budget.LedgerEntry{
		Type:       budget.EntryCredit,
		Amount:     amount,
		Note:       note,
		RecordedAt: s.now(),
	})
	if err != nil {
		return budget.LedgerEntry{}, errors.Wrap(err, "add credit")
	}
	return entry, nil
}

// Ledger returns the most recent entries, newest first.
func (s *Service) Ledger(ctx context.Context) ([]budget.LedgerEntry, error) {
	return s.storage.RecentLedger(ctx, ledgerPageSize)
}
