package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mission-budget/spender/internal/entity/budget"
)

// SetGoal replaces any previous goal; the system tracks one goal at a
// time and only the most recent survives.
func (s *Service) SetGoal(ctx context.Context, g budget.Goal) (budget.Goal, error) {
	if g.ClothingCap == 0 {
		g.ClothingCap = budget.DefaultClothingCap
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = s.now()
	}
	saved, err := s.storage.ReplaceGoal(ctx, g)
	if err != nil {
		return budget.Goal{}, errors.Wrap(err, "set goal")
	}
	return saved, nil
}

// Goal returns the active goal, or nil when none has been created.
func (s *Service) Goal(ctx context.Context) (*budget.Goal, error) {
	return s.storage.ActiveGoal(ctx)
}
