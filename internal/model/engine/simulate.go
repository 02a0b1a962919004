package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mission-budget/spender/internal/entity/budget"
)

const (
	RiskLow     = "Low"
	RiskMedium  = "Medium"
	RiskHigh    = "High"
	RiskUnknown = "Unknown"
)

// Simulation is the what-if outcome of a hypothetical expense run
// through the weekly, balance and projection engines.
type Simulation struct {
	WeeklyBalanceAfter     int64
	ActualBalanceAfter     *int64
	ClothingRemainingAfter *int64
	SafeToSpendAfter       *int64
	ProjectionStatus       string
	RiskLevel              string
}

// Simulate projects a hypothetical expense without writing anything.
// When the current week has no envelope row yet, the one that would be
// created is used in its place rather than persisted.
func (s *Service) Simulate(ctx context.Context, amount int64, category budget.Category) (Simulation, error) {
	goal, err := s.storage.ActiveGoal(ctx)
	if err != nil {
		return Simulation{}, errors.Wrap(err, "simulate")
	}

	wl, err := s.hypotheticalWeek(ctx, goal)
	if err != nil {
		return Simulation{}, errors.Wrap(err, "simulate")
	}

	res := Simulation{
		WeeklyBalanceAfter: wl.Cap - wl.Spent - amount,
		ProjectionStatus:   RiskUnknown,
		RiskLevel:          RiskUnknown,
	}

	if category == budget.CategoryClothes {
		spent, err := s.clothingSpent(ctx)
		if err != nil {
			return Simulation{}, errors.Wrap(err, "simulate")
		}
		cap := int64(budget.DefaultClothingCap)
		if goal != nil {
			cap = goal.ClothingCap
		}
		remaining := maxInt64(0, cap-spent-amount)
		res.ClothingRemainingAfter = &remaining
	}

	state, err := s.BalanceState(ctx, goal, &wl)
	if err != nil {
		return Simulation{}, errors.Wrap(err, "simulate")
	}
	if state != nil {
		after := state.CurrentBalance - amount
		res.ActualBalanceAfter = &after
		if goal != nil {
			usableAfter := maxInt64(0, after-(goal.EMI+goal.Rent))
			safeAfter := maxInt64(0, usableAfter-state.LockedForGoal)
			res.SafeToSpendAfter = &safeAfter
		}
	}

	if goal != nil {
		status, err := s.projectedStatus(ctx, *goal, amount)
		if err != nil {
			return Simulation{}, errors.Wrap(err, "simulate")
		}
		res.ProjectionStatus = status
		res.RiskLevel = riskOf(status)
	}

	return res, nil
}

// projectedStatus reruns the projection thresholds with the amount
// added to the remaining target.
func (s *Service) projectedStatus(ctx context.Context, goal budget.Goal, amount int64) (string, error) {
	totalSaved, err := s.totalSaved(ctx, goal)
	if err != nil {
		return "", err
	}
	remaining := maxInt64(0, goal.TargetAmount-totalSaved)

	daysLeft := daysBetween(s.today(), budget.DateOf(goal.Deadline))
	monthsLeft := float64(daysLeft) / daysPerMonth
	if monthsLeft < minMonthsLeft {
		monthsLeft = minMonthsLeft
	}

	required := float64(remaining+amount) / monthsLeft
	return savingStatus(required, goal.UsableIncome()), nil
}

func (s *Service) hypotheticalWeek(ctx context.Context, goal *budget.Goal) (budget.WeeklyLimit, error) {
	weekStart := budget.WeekStartOf(s.today())
	existing, err := s.storage.WeeklyLimitAt(ctx, weekStart)
	if err != nil {
		return budget.WeeklyLimit{}, err
	}
	if existing != nil {
		return *existing, nil
	}
	return budget.WeeklyLimit{WeekStart: weekStart, Cap: deriveWeeklyCap(goal)}, nil
}

func (s *Service) clothingSpent(ctx context.Context) (int64, error) {
	expenses, err := s.storage.ListExpenses(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range expenses {
		if e.Category == budget.CategoryClothes {
			total += e.Amount
		}
	}
	return total, nil
}

func riskOf(status string) string {
	switch status {
	case StatusOnTrack:
		return RiskLow
	case StatusSlightRisk:
		return RiskMedium
	case StatusHighRisk:
		return RiskHigh
	default:
		return RiskUnknown
	}
}
