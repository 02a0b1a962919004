package engine

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mission-budget/spender/internal/entity/budget"
)

// WeeklyLimit returns the envelope for the ISO week containing refDate,
// creating it lazily on first reference. The cap is derived from the
// goal's usable income at creation time and never recomputed afterwards,
// even if the goal changes. Concurrent first references for the same
// week resolve to a single row; the loser of the insert race gets the
// winner's row back.
func (s *Service) WeeklyLimit(ctx context.Context, goal *budget.Goal, refDate time.Time) (budget.WeeklyLimit, error) {
	weekStart := budget.WeekStartOf(refDate)

	existing, err := s.storage.WeeklyLimitAt(ctx, weekStart)
	if err != nil {
		return budget.WeeklyLimit{}, errors.Wrap(err, "weekly limit")
	}
	if existing != nil {
		return *existing, nil
	}

	wl, err := s.storage.CreateWeeklyLimit(ctx, budget.WeeklyLimit{
		WeekStart: weekStart,
		Cap:       deriveWeeklyCap(goal),
		Spent:     0,
	})
	if err != nil {
		return budget.WeeklyLimit{}, errors.Wrap(err, "weekly limit")
	}
	return wl, nil
}

// CurrentWeeklyLimit is WeeklyLimit for today's week.
func (s *Service) CurrentWeeklyLimit(ctx context.Context, goal *budget.Goal) (budget.WeeklyLimit, error) {
	return s.WeeklyLimit(ctx, goal, s.today())
}

// UpdateWeeklyCap overrides the cap of the current week.
func (s *Service) UpdateWeeklyCap(ctx context.Context, cap int64) (budget.WeeklyLimit, error) {
	goal, err := s.storage.ActiveGoal(ctx)
	if err != nil {
		return budget.WeeklyLimit{}, errors.Wrap(err, "update weekly cap")
	}
	wl, err := s.CurrentWeeklyLimit(ctx, goal)
	if err != nil {
		return budget.WeeklyLimit{}, errors.Wrap(err, "update weekly cap")
	}
	if err = s.storage.SetWeeklyCap(ctx, wl.WeekStart, cap); err != nil {
		return budget.WeeklyLimit{}, errors.Wrap(err, "update weekly cap")
	}
	wl.Cap = cap
	return wl, nil
}

func deriveWeeklyCap(goal *budget.Goal) int64 {
	if goal == nil {
		return fallbackWeeklyCap
	}
	return maxInt64(minWeeklyCap, goal.UsableIncome()/weeklyCapDivisor)
}
