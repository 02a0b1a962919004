package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mission-budget/spender/internal/entity/budget"
)

func Test_OnLastSet_ShouldBreakTimestampTiesByID(t *testing.T) {
	ctx := context.Background()
	s := NewInMemStorage()

	at := time.Date(2025, time.April, 16, 12, 0, 0, 0, time.UTC)
	_, err := s.AppendLedger(ctx, budget.LedgerEntry{Type: budget.EntrySet, Amount: 100, RecordedAt: at})
	require.NoError(t, err)
	second, err := s.AppendLedger(ctx, budget.LedgerEntry{Type: budget.EntrySet, Amount: 200, RecordedAt: at})
	require.NoError(t, err)

	last, err := s.LastSet(ctx)

	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, second.ID, last.ID)
	assert.Equal(t, int64(200), last.Amount)
}

func Test_OnLedgerAfter_ShouldBeStrict(t *testing.T) {
	ctx := context.Background()
	s := NewInMemStorage()

	at := time.Date(2025, time.April, 16, 12, 0, 0, 0, time.UTC)
	_, err := s.AppendLedger(ctx, budget.LedgerEntry{Type: budget.EntryCredit, Amount: 100, RecordedAt: at})
	require.NoError(t, err)
	_, err = s.AppendLedger(ctx, budget.LedgerEntry{Type: budget.EntryCredit, Amount: 200, RecordedAt: at.Add(time.Minute)})
	require.NoError(t, err)

	entries, err := s.LedgerAfter(ctx, at)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(200), entries[0].Amount)
}

func Test_OnRecentLedger_ShouldLimitNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewInMemStorage()

	at := time.Date(2025, time.April, 16, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := s.AppendLedger(ctx, budget.LedgerEntry{
			Type:       budget.EntryCredit,
			Amount:     int64(i + 1),
			RecordedAt: at.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	entries, err := s.RecentLedger(ctx, 3)

	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(5), entries[0].Amount)
	assert.Equal(t, int64(3), entries[2].Amount)
}

func Test_OnCreateWeeklyLimit_ShouldKeepFirstRow(t *testing.T) {
	ctx := context.Background()
	s := NewInMemStorage()

	week := time.Date(2025, time.April, 14, 0, 0, 0, 0, time.UTC)
	first, err := s.CreateWeeklyLimit(ctx, budget.WeeklyLimit{WeekStart: week, Cap: 8750})
	require.NoError(t, err)
	second, err := s.CreateWeeklyLimit(ctx, budget.WeeklyLimit{WeekStart: week, Cap: 9999})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(8750), second.Cap)
}
