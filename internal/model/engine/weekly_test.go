package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mission-budget/spender/internal/entity/budget"
)

func TestDeriveWeeklyCap(t *testing.T) {
	assert.Equal(t, int64(fallbackWeeklyCap), deriveWeeklyCap(nil))

	quarter := &budget.Goal{MonthlyIncome: 60000, EMI: 10000, Rent: 15000}
	assert.Equal(t, int64(8750), deriveWeeklyCap(quarter))

	tiny := &budget.Goal{MonthlyIncome: 5000, EMI: 2000, Rent: 2000}
	assert.Equal(t, int64(minWeeklyCap), deriveWeeklyCap(tiny))
}

func Test_OnCurrentWeeklyLimit_ShouldCreateRowOnce(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService()

	goal := &budget.Goal{MonthlyIncome: 60000, EMI: 10000, Rent: 15000}

	first, err := svc.CurrentWeeklyLimit(ctx, goal)
	require.NoError(t, err)
	second, err := svc.CurrentWeeklyLimit(ctx, goal)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, budget.WeekStartOf(testToday), first.WeekStart)
	assert.Equal(t, int64(8750), first.Cap)

	weeks, err := store.ListWeeklyLimits(ctx)
	require.NoError(t, err)
	assert.Len(t, weeks, 1)
}

func Test_OnCurrentWeeklyLimit_CapStaysFrozenAfterGoalChange(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	modest := &budget.Goal{MonthlyIncome: 60000, EMI: 10000, Rent: 15000}
	wl, err := svc.CurrentWeeklyLimit(ctx, modest)
	require.NoError(t, err)
	require.Equal(t, int64(8750), wl.Cap)

	richer := &budget.Goal{MonthlyIncome: 200000, EMI: 10000, Rent: 15000}
	wl, err = svc.CurrentWeeklyLimit(ctx, richer)
	require.NoError(t, err)

	assert.Equal(t, int64(8750), wl.Cap)
}

func Test_OnUpdateWeeklyCap_ShouldOverrideCurrentWeek(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	wl, err := svc.UpdateWeeklyCap(ctx, 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), wl.Cap)

	wl, err = svc.CurrentWeeklyLimit(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), wl.Cap)
	assert.Equal(t, budget.WeekStartOf(testToday), wl.WeekStart)
}

func TestWeeklyRemaining_FloorsAtZero(t *testing.T) {
	wl := budget.WeeklyLimit{Cap: 1000, Spent: 4000}
	assert.Equal(t, int64(0), wl.Remaining())
	assert.Equal(t, int64(-3000), wl.Saved())
}
