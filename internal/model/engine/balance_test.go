package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mission-budget/spender/internal/entity/budget"
	"github.com/mission-budget/spender/internal/model/customerr"
)

func Test_OnBalanceState_ShouldReturnNilWithoutSetEntry(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	state, err := svc.BalanceState(ctx, nil, nil)

	require.NoError(t, err)
	assert.Nil(t, state)
}

func Test_OnBalanceState_ShouldReplayLedgerSinceLastSet(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestService()

	_, err := svc.SetBalance(ctx, 5000, "after bank app")
	require.NoError(t, err)
	clock.tick()
	_, err = svc.AddCredit(ctx, 2000, "salary")
	require.NoError(t, err)
	clock.tick()
	_, err = svc.storage.AppendLedger(ctx, budget.LedgerEntry{
		Type: budget.EntryDebit, Amount: 1000, RecordedAt: clock.current,
	})
	require.NoError(t, err)

	state, err := svc.BalanceState(ctx, nil, nil)

	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, int64(6000), state.CurrentBalance)
	assert.Equal(t, int64(5000), state.LastSetAmount)
	assert.Equal(t, int64(2000), state.CreditsSinceSet)
	assert.Equal(t, int64(1000), state.DebitsSinceSet)
}

func Test_OnBalanceState_ShouldIgnoreEntriesBeforeLastSet(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestService()

	_, err := svc.SetBalance(ctx, 100, "stale")
	require.NoError(t, err)
	clock.tick()
	_, err = svc.AddCredit(ctx, 99999, "stale credit")
	require.NoError(t, err)
	clock.tick()
	_, err = svc.SetBalance(ctx, 5000, "fresh")
	require.NoError(t, err)
	clock.tick()
	_, err = svc.AddCredit(ctx, 2000, "")
	require.NoError(t, err)

	state, err := svc.BalanceState(ctx, nil, nil)

	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, int64(7000), state.CurrentBalance)
	assert.Equal(t, "fresh", state.LastSetNote)
}

func Test_OnBalanceState_ShouldDeriveGoalMetrics(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestService()

	// initial savings already cover the target, so nothing is locked
	goal, err := svc.SetGoal(ctx, budget.Goal{
		TargetAmount:   10000,
		Deadline:       testToday.AddDate(1, 0, 0),
		MonthlyIncome:  60000,
		EMI:            10000,
		Rent:           15000,
		InitialSavings: 100000,
	})
	require.NoError(t, err)

	clock.tick()
	_, err = svc.SetBalance(ctx, 50000, "")
	require.NoError(t, err)

	wl := budget.WeeklyLimit{WeekStart: budget.WeekStartOf(testToday), Cap: 8750, Spent: 1750}

	state, err := svc.BalanceState(ctx, &goal, &wl)

	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, int64(25000), state.UsableBalance)
	assert.Equal(t, int64(0), state.LockedForGoal)
	assert.Equal(t, int64(25000), state.SafeToSpend)
	assert.Equal(t, int64(7000), state.WeeklyRemaining)
	assert.Equal(t, 20.0, state.BurnRatePct)
	assert.Equal(t, 15, state.DaysUntilNextSalary)
	assert.Equal(t, int64(1666), state.DailyBudget)
	assert.False(t, state.OverspendRisk)
	assert.Equal(t, 44, state.HealthScore)
	assert.Equal(t, "Tight", state.Health)
}

func Test_OnBalanceState_ShouldClampSafeToSpendAtZero(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestService()

	goal, err := svc.SetGoal(ctx, budget.Goal{
		TargetAmount:  500000,
		Deadline:      testToday.AddDate(0, 6, 0),
		MonthlyIncome: 30000,
		EMI:           20000,
		Rent:          15000,
	})
	require.NoError(t, err)

	clock.tick()
	_, err = svc.SetBalance(ctx, 10000, "")
	require.NoError(t, err)

	overCap := budget.WeeklyLimit{WeekStart: budget.WeekStartOf(testToday), Cap: 1000, Spent: 4000}

	state, err := svc.BalanceState(ctx, &goal, &overCap)

	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, int64(0), state.UsableBalance)
	assert.GreaterOrEqual(t, state.SafeToSpend, int64(0))
	assert.Equal(t, int64(0), state.WeeklyRemaining)
	assert.True(t, state.OverspendRisk)
}

func Test_OnBalanceState_ShouldScoreWithoutGoal(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	_, err := svc.SetBalance(ctx, 25000, "")
	require.NoError(t, err)

	state, err := svc.BalanceState(ctx, nil, nil)

	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, 50, state.HealthScore)
	assert.Equal(t, "Tight", state.Health)
}

func Test_OnBalanceState_ShouldAllowNegativeBalance(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestService()

	_, err := svc.SetBalance(ctx, 1000, "")
	require.NoError(t, err)
	clock.tick()
	_, err = svc.storage.AppendLedger(ctx, budget.LedgerEntry{
		Type: budget.EntryDebit, Amount: 2500, RecordedAt: clock.current,
	})
	require.NoError(t, err)

	state, err := svc.BalanceState(ctx, nil, nil)

	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, int64(-1500), state.CurrentBalance)
	assert.Equal(t, int64(0), state.UsableBalance)
	assert.Equal(t, 0, state.HealthScore)
	assert.Equal(t, "Critical", state.Health)
}

func Test_OnAddCredit_ShouldRejectWithoutBalance(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	_, err := svc.AddCredit(ctx, 2000, "salary")

	var noBalance *customerr.NoBalanceError
	require.ErrorAs(t, err, &noBalance)
}

func Test_OnLedger_ShouldReturnNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestService()

	_, err := svc.SetBalance(ctx, 5000, "")
	require.NoError(t, err)
	clock.tick()
	_, err = svc.AddCredit(ctx, 100, "first")
	require.NoError(t, err)
	clock.tick()
	_, err = svc.AddCredit(ctx, 200, "second")
	require.NoError(t, err)

	entries, err := svc.Ledger(ctx)

	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "second", entries[0].Note)
	assert.Equal(t, budget.EntrySet, entries[2].Type)
}

func TestDaysUntilNextSalary_YearRollover(t *testing.T) {
	dec := time.Date(2025, time.December, 20, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 12, daysUntilNextSalary(dec))

	lastDay := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, daysUntilNextSalary(lastDay))
}
