package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mission-budget/spender/internal/entity/budget"
)

// Dashboard bundles everything the front surface shows at once.
// Goal-dependent parts are nil when no goal exists; the balance part is
// nil until a balance has been set.
type Dashboard struct {
	Goal              *budget.Goal
	Projection        *Projection
	Weekly            *budget.WeeklyLimit
	ClothingSpent     int64
	ClothingRemaining int64
	Balance           *BalanceState
	CardTotal         int64
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	goal, err := s.storage.ActiveGoal(ctx)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "dashboard")
	}

	res := Dashboard{Goal: goal}

	if goal != nil {
		proj, err := s.Projection(ctx, *goal)
		if err != nil {
			return Dashboard{}, errors.Wrap(err, "dashboard")
		}
		res.Projection = &proj

		wl, err := s.CurrentWeeklyLimit(ctx, goal)
		if err != nil {
			return Dashboard{}, errors.Wrap(err, "dashboard")
		}
		res.Weekly = &wl
	}

	res.ClothingSpent, err = s.clothingSpent(ctx)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "dashboard")
	}
	clothingCap := int64(budget.DefaultClothingCap)
	if goal != nil {
		clothingCap = goal.ClothingCap
	}
	res.ClothingRemaining = maxInt64(0, clothingCap-res.ClothingSpent)

	res.Balance, err = s.BalanceState(ctx, goal, res.Weekly)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "dashboard")
	}

	expenses, err := s.storage.ListExpenses(ctx)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "dashboard")
	}
	for _, e := range expenses {
		if e.PaymentMode.OrDefault() == budget.ModeCard {
			res.CardTotal += e.Amount
		}
	}

	return res, nil
}
