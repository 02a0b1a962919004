package messages

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mission-budget/spender/internal/entity/budget"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		text string
		cmd  string
		arg  string
	}{
		{"/start", "/start", ""},
		{"/expense 500 food", "/expense", "500 food"},
		{"  /balance 5000  ", "/balance", "5000"},
		{"hello there", "hello", "there"},
		{"hello", "", "hello"},
		{"", "", ""},
	}
	for _, tc := range cases {
		cmd, arg := parseCommand(tc.text)
		assert.Equal(t, tc.cmd, cmd, "text %q", tc.text)
		assert.Equal(t, tc.arg, arg, "text %q", tc.text)
	}
}

func TestParseAmountAndNote(t *testing.T) {
	amount, note, ok := parseAmountAndNote("1200 salary for may")
	assert.True(t, ok)
	assert.Equal(t, int64(1200), amount)
	assert.Equal(t, "salary for may", note)

	amount, note, ok = parseAmountAndNote("5000")
	assert.True(t, ok)
	assert.Equal(t, int64(5000), amount)
	assert.Empty(t, note)

	_, _, ok = parseAmountAndNote("")
	assert.False(t, ok)

	_, _, ok = parseAmountAndNote("lots of money")
	assert.False(t, ok)
}

func TestLocation_FallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, location("Neverland/Nowhere"))
}

func TestFormatExpenses(t *testing.T) {
	expenses := []budget.Expense{
		{
			ID:          7,
			Amount:      500,
			Category:    budget.CategoryFood,
			Date:        time.Date(2025, time.April, 16, 0, 0, 0, 0, time.UTC),
			Note:        "lunch",
			PaymentMode: budget.ModeUPI,
		},
		{
			ID:          8,
			Amount:      800,
			Category:    budget.CategoryTravel,
			Date:        time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC),
			PaymentMode: budget.ModeCard,
		},
	}

	got := formatExpenses(expenses)

	assert.Equal(t,
		"#7 16.04.2025 food ₹500 (lunch)\n#8 15.04.2025 travel ₹800 💳",
		got)
}

func TestFormatWeekly(t *testing.T) {
	wl := budget.WeeklyLimit{
		WeekStart: time.Date(2025, time.April, 14, 0, 0, 0, 0, time.UTC),
		Cap:       8750,
		Spent:     1750,
	}

	assert.Equal(t,
		"Week of 14.04.2025: spent ₹1750 of ₹8750, ₹7000 remaining",
		formatWeekly(wl))
}

func TestEncodeReportRequest(t *testing.T) {
	msg, err := encodeReportRequest(42)

	assert.NoError(t, err)
	assert.JSONEq(t, `{"user_id":42}`, string(msg))
}
