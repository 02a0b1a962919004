package engine

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/mission-budget/spender/internal/entity/budget"
)

const (
	healthHealthy  = 60
	healthTight    = 30
	noGoalBenchmark = 50000
	emergencyMonths = 3
)

// BalanceState is the fully derived view of the current balance.
type BalanceState struct {
	CurrentBalance  int64
	LastSetAmount   int64
	LastSetAt       time.Time
	LastSetNote     string
	CreditsSinceSet int64
	DebitsSinceSet  int64

	UsableBalance       int64
	SafeToSpend         int64
	LockedForGoal       int64
	WeeklyRemaining     int64
	BurnRatePct         float64
	DaysUntilNextSalary int
	DailyBudget         int64
	OverspendRisk       bool
	HealthScore         int
	Health              string
}

// BalanceState replays the ledger suffix at-or-after the most recent
// 'set' entry: balance = set amount + credits - debits since that set.
// Returns nil when no balance has ever been set.
func (s *Service) BalanceState(ctx context.Context, goal *budget.Goal, wl *budget.WeeklyLimit) (*BalanceState, error) {
	lastSet, err := s.storage.LastSet(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "balance state")
	}
	if lastSet == nil {
		return nil, nil
	}

	entries, err := s.storage.LedgerAfter(ctx, lastSet.RecordedAt)
	if err != nil {
		return nil, errors.Wrap(err, "balance state")
	}

	var credits, debits int64
	for _, e := range entries {
		switch e.Type {
		case budget.EntryCredit:
			credits += e.Amount
		case budget.EntryDebit:
			debits += e.Amount
		}
	}
	current := lastSet.Amount + credits - debits

	var fixed int64
	if goal != nil {
		fixed = goal.EMI + goal.Rent
	}
	usableBalance := maxInt64(0, current-fixed)

	var locked int64
	if goal != nil {
		proj, err := s.Projection(ctx, *goal)
		if err != nil {
			return nil, errors.Wrap(err, "balance state")
		}
		locked = maxInt64(0, proj.lockedMonthlySaving)
	}
	safeToSpend := maxInt64(0, usableBalance-locked)

	var weeklyRemaining int64
	burnRate := 0.0
	if wl != nil {
		weeklyRemaining = wl.Remaining()
		if wl.Cap > 0 {
			burnRate = round1(float64(wl.Spent) / float64(wl.Cap) * 100)
		}
	}

	today := s.today()
	salaryDays := daysUntilNextSalary(today)
	dailyBudget := safeToSpend / int64(salaryDays)

	overspendRisk := false
	elapsed := elapsedWeekdays(today)
	if wl != nil && wl.Spent > 0 && elapsed > 0 {
		dailyBurn := float64(wl.Spent) / float64(elapsed)
		overspendRisk = dailyBurn*float64(salaryDays) > float64(usableBalance)
	}

	score := healthScore(goal, current, safeToSpend, burnRate)

	return &BalanceState{
		CurrentBalance:      current,
		LastSetAmount:       lastSet.Amount,
		LastSetAt:           lastSet.RecordedAt,
		LastSetNote:         lastSet.Note,
		CreditsSinceSet:     credits,
		DebitsSinceSet:      debits,
		UsableBalance:       usableBalance,
		SafeToSpend:         safeToSpend,
		LockedForGoal:       locked,
		WeeklyRemaining:     weeklyRemaining,
		BurnRatePct:         burnRate,
		DaysUntilNextSalary: salaryDays,
		DailyBudget:         dailyBudget,
		OverspendRisk:       overspendRisk,
		HealthScore:         score,
		Health:              healthLabel(score),
	}, nil
}

// healthScore blends safe-to-spend vs income (0.4), balance vs a
// three-month emergency fund (0.4) and the inverted weekly burn (0.2).
// Without a goal the balance alone is scored against a flat benchmark.
func healthScore(goal *budget.Goal, current, safeToSpend int64, burnRate float64) int {
	var score int
	if goal != nil && goal.MonthlyIncome > 0 {
		spendRatio := clamp01(float64(safeToSpend) / float64(goal.MonthlyIncome))
		balanceRatio := clamp01(float64(current) / float64(goal.MonthlyIncome*emergencyMonths))
		burnFactor := 1 - burnRate/100
		if burnFactor < 0 {
			burnFactor = 0
		}
		score = int(math.Round((spendRatio*0.4 + balanceRatio*0.4 + burnFactor*0.2) * 100))
	} else if current > 0 {
		score = int(current * 100 / noGoalBenchmark)
		if score > 100 {
			score = 100
		}
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func healthLabel(score int) string {
	switch {
	case score >= healthHealthy:
		return "Healthy"
	case score >= healthTight:
		return "Tight"
	default:
		return "Critical"
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
