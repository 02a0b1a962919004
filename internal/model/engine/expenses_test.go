package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mission-budget/spender/internal/entity/budget"
	"github.com/mission-budget/spender/internal/model/customerr"
)

func Test_OnAddExpense_UpiShouldDebitLedger(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newTestService()

	_, err := svc.SetBalance(ctx, 5000, "")
	require.NoError(t, err)
	clock.tick()

	exp, err := svc.AddExpense(ctx, budget.Expense{
		Amount:   500,
		Category: budget.CategoryFood,
		Date:     testToday,
		Note:     "lunch",
	})
	require.NoError(t, err)
	assert.Equal(t, budget.ModeUPI, exp.PaymentMode)

	wl, err := store.WeeklyLimitAt(ctx, budget.WeekStartOf(testToday))
	require.NoError(t, err)
	require.NotNil(t, wl)
	assert.Equal(t, int64(500), wl.Spent)

	state, err := svc.BalanceState(ctx, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, int64(4500), state.CurrentBalance)

	entries, err := svc.Ledger(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, budget.EntryDebit, entries[0].Type)
	assert.Equal(t, "[UPI] lunch", entries[0].Note)
}

func Test_OnAddExpense_CardShouldSkipLedger(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newTestService()

	_, err := svc.SetBalance(ctx, 5000, "")
	require.NoError(t, err)
	clock.tick()

	_, err = svc.AddExpense(ctx, budget.Expense{
		Amount:      800,
		Category:    budget.CategoryTravel,
		Date:        testToday,
		PaymentMode: budget.ModeCard,
	})
	require.NoError(t, err)

	wl, err := store.WeeklyLimitAt(ctx, budget.WeekStartOf(testToday))
	require.NoError(t, err)
	require.NotNil(t, wl)
	assert.Equal(t, int64(800), wl.Spent)

	state, err := svc.BalanceState(ctx, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, int64(5000), state.CurrentBalance)
}

func Test_OnAddExpense_NoDebitBeforeBalanceSet(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService()

	_, err := svc.AddExpense(ctx, budget.Expense{
		Amount:   500,
		Category: budget.CategoryFood,
		Date:     testToday,
	})
	require.NoError(t, err)

	entries, err := store.RecentLedger(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func Test_OnAddExpense_WeekCapDerivedFromGoal(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService()

	_, err := svc.SetGoal(ctx, budget.Goal{
		TargetAmount:  1000000,
		Deadline:      testToday.AddDate(1, 0, 0),
		MonthlyIncome: 60000,
		EMI:           10000,
		Rent:          15000,
	})
	require.NoError(t, err)

	_, err = svc.AddExpense(ctx, budget.Expense{
		Amount:   500,
		Category: budget.CategoryFood,
		Date:     testToday,
	})
	require.NoError(t, err)

	wl, err := store.WeeklyLimitAt(ctx, budget.WeekStartOf(testToday))
	require.NoError(t, err)
	require.NotNil(t, wl)
	assert.Equal(t, int64(8750), wl.Cap)
}

func Test_OnDeleteExpense_ShouldCompensateNotErase(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newTestService()

	_, err := svc.SetBalance(ctx, 5000, "")
	require.NoError(t, err)
	clock.tick()

	exp, err := svc.AddExpense(ctx, budget.Expense{
		Amount:   500,
		Category: budget.CategoryFood,
		Date:     testToday,
	})
	require.NoError(t, err)
	clock.tick()

	require.NoError(t, svc.DeleteExpense(ctx, exp.ID))

	wl, err := store.WeeklyLimitAt(ctx, budget.WeekStartOf(testToday))
	require.NoError(t, err)
	require.NotNil(t, wl)
	assert.Equal(t, int64(0), wl.Spent)

	// the debit stays, a compensating credit lands on top
	entries, err := svc.Ledger(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, budget.EntryCredit, entries[0].Type)
	assert.Equal(t, "Reversal [UPI]: food", entries[0].Note)

	state, err := svc.BalanceState(ctx, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, int64(5000), state.CurrentBalance)

	list, err := svc.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func Test_OnDeleteExpense_ShouldAdjustExpensesOwnWeek(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService()

	lastWeekDay := testToday.AddDate(0, 0, -7)

	old, err := svc.AddExpense(ctx, budget.Expense{
		Amount:   300,
		Category: budget.CategoryTravel,
		Date:     lastWeekDay,
	})
	require.NoError(t, err)
	_, err = svc.AddExpense(ctx, budget.Expense{
		Amount:   400,
		Category: budget.CategoryFood,
		Date:     testToday,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteExpense(ctx, old.ID))

	prev, err := store.WeeklyLimitAt(ctx, budget.WeekStartOf(lastWeekDay))
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, int64(0), prev.Spent)

	cur, err := store.WeeklyLimitAt(ctx, budget.WeekStartOf(testToday))
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, int64(400), cur.Spent)
}

func Test_OnDeleteExpense_CardLeavesLedgerUntouched(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestService()

	_, err := svc.SetBalance(ctx, 5000, "")
	require.NoError(t, err)
	clock.tick()

	exp, err := svc.AddExpense(ctx, budget.Expense{
		Amount:      800,
		Category:    budget.CategoryTravel,
		Date:        testToday,
		PaymentMode: budget.ModeCard,
	})
	require.NoError(t, err)
	clock.tick()

	require.NoError(t, svc.DeleteExpense(ctx, exp.ID))

	entries, err := svc.Ledger(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, budget.EntrySet, entries[0].Type)
}

func Test_OnDeleteExpense_UnknownIDShouldFail(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	err := svc.DeleteExpense(ctx, 42)

	var notFound *customerr.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, int64(42), notFound.ID)
}

func Test_OnListExpenses_NewestDateFirst(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	_, err := svc.AddExpense(ctx, budget.Expense{
		Amount: 100, Category: budget.CategoryFood, Date: testToday.AddDate(0, 0, -2),
	})
	require.NoError(t, err)
	_, err = svc.AddExpense(ctx, budget.Expense{
		Amount: 200, Category: budget.CategoryFood, Date: testToday,
	})
	require.NoError(t, err)

	list, err := svc.ListExpenses(ctx)

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(200), list[0].Amount)
}
