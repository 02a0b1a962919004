package engine

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/mission-budget/spender/internal/entity/budget"
)

const (
	StatusOnTrack    = "On Track"
	StatusSlightRisk = "Slight Risk"
	StatusHighRisk   = "High Risk"
)

// Projection is the savings-goal trajectory derived from the goal and
// the full expense history.
type Projection struct {
	TotalSaved                 int64
	RemainingTarget            int64
	MonthsLeft                 float64
	DaysLeft                   int
	RequiredMonthlySaving      float64
	RequiredWeeklySaving       float64
	PredictedBalanceAtDeadline int64
	Status                     string

	// floor of the unrounded monthly requirement, reserved by the
	// balance engine as locked-for-goal
	lockedMonthlySaving int64
}

func (s *Service) Projection(ctx context.Context, goal budget.Goal) (Projection, error) {
	today := s.today()

	totalSaved, err := s.totalSaved(ctx, goal)
	if err != nil {
		return Projection{}, errors.Wrap(err, "projection")
	}

	daysLeft := daysBetween(today, budget.DateOf(goal.Deadline))
	monthsLeft := float64(daysLeft) / daysPerMonth
	if monthsLeft < minMonthsLeft {
		monthsLeft = minMonthsLeft
	}

	remaining := maxInt64(0, goal.TargetAmount-totalSaved)
	required := float64(remaining) / monthsLeft

	usable := goal.UsableIncome()
	predicted := totalSaved + int64(math.Floor(float64(usable)*monthsLeft))

	return Projection{
		TotalSaved:                 totalSaved,
		RemainingTarget:            remaining,
		MonthsLeft:                 round1(monthsLeft),
		DaysLeft:                   daysLeft,
		RequiredMonthlySaving:      math.Round(required),
		RequiredWeeklySaving:       math.Round(required / weeksPerMonth),
		PredictedBalanceAtDeadline: predicted,
		Status:                     savingStatus(required, usable),
		lockedMonthlySaving:        int64(math.Floor(required)),
	}, nil
}

// totalSaved assumes the usable income of every whole month since the
// goal was created landed in savings, then subtracts all expenses ever
// logged. Subtracting the all-time history regardless of the goal's age
// is deliberate; the goal is expected to be created alongside the habit
// of logging.
func (s *Service) totalSaved(ctx context.Context, goal budget.Goal) (int64, error) {
	expenses, err := s.storage.ListExpenses(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "total saved")
	}
	var spent int64
	for _, e := range expenses {
		spent += e.Amount
	}

	months := monthsElapsed(budget.DateOf(goal.CreatedAt), s.today())
	saved := goal.InitialSavings + goal.UsableIncome()*months - spent
	return maxInt64(0, saved), nil
}

// savingStatus compares the monthly requirement to the usable income;
// both boundaries are inclusive.
func savingStatus(required float64, usable int64) string {
	switch {
	case required <= float64(usable)*onTrackShare:
		return StatusOnTrack
	case required <= float64(usable)*slightRiskShare:
		return StatusSlightRisk
	default:
		return StatusHighRisk
	}
}
