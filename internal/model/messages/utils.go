package messages

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/mission-budget/spender/internal/entity/budget"
	"github.com/mission-budget/spender/internal/model/engine"
	"github.com/mission-budget/spender/internal/model/reports"
)

const dateLayout = "02.01.2006"

const commandParts = 2

func location(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseCommand(text string) (cmd, arg string) {
	text = strings.TrimSpace(text)
	split := strings.SplitN(text, " ", commandParts)

	if len(split) == commandParts {
		return split[0], split[1]
	}
	if strings.HasPrefix(text, "/") {
		return text, ""
	}
	return "", text
}

// parseAmountAndNote splits "1200 salary for may" into the amount and
// the free-form note.
func parseAmountAndNote(arg string) (amount int64, note string, ok bool) {
	args := strings.SplitN(strings.TrimSpace(arg), " ", commandParts)
	if len(args) == 0 || args[0] == "" {
		return 0, "", false
	}
	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, "", false
	}
	if len(args) == commandParts {
		note = args[1]
	}
	return amount, note, true
}

func formatMoney(amount int64) string {
	return "₹" + strconv.FormatInt(amount, 10)
}

func categoriesList() string {
	names := make([]string, 0, len(budget.Categories))
	for _, c := range budget.Categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func formatExpenses(expenses []budget.Expense) string {
	res := make([]string, 0, len(expenses))
	for _, e := range expenses {
		line := "#" + strconv.FormatInt(e.ID, 10) + " " +
			e.Date.Format(dateLayout) + " " +
			string(e.Category) + " " + formatMoney(e.Amount)
		if e.PaymentMode == budget.ModeCard {
			line += " 💳"
		}
		if e.Note != "" {
			line += " (" + e.Note + ")"
		}
		res = append(res, line)
	}
	return strings.Join(res, "\n")
}

func formatWeekly(wl budget.WeeklyLimit) string {
	return "Week of " + wl.WeekStart.Format(dateLayout) + ": spent " +
		formatMoney(wl.Spent) + " of " + formatMoney(wl.Cap) +
		", " + formatMoney(wl.Remaining()) + " remaining"
}

func formatLedger(entries []budget.LedgerEntry) string {
	res := make([]string, 0, len(entries))
	for _, e := range entries {
		line := e.RecordedAt.Format(dateLayout) + " " + string(e.Type) +
			" " + formatMoney(e.Amount)
		if e.Note != "" {
			line += " (" + e.Note + ")"
		}
		res = append(res, line)
	}
	return strings.Join(res, "\n")
}

func formatDashboard(dash engine.Dashboard) string {
	res := make([]string, 0)

	if dash.Goal == nil {
		res = append(res, "No goal yet. Set one with /goal")
	} else {
		res = append(res, "Goal: "+formatMoney(dash.Goal.TargetAmount)+
			" by "+dash.Goal.Deadline.Format(dateLayout))
	}
	if dash.Projection != nil {
		p := dash.Projection
		res = append(res,
			"Saved so far: "+formatMoney(p.TotalSaved)+
				", remaining "+formatMoney(p.RemainingTarget),
			"Need "+formatMoney(int64(p.RequiredMonthlySaving))+"/month ("+
				formatMoney(int64(p.RequiredWeeklySaving))+"/week): "+p.Status,
		)
	}
	if dash.Weekly != nil {
		res = append(res, formatWeekly(*dash.Weekly))
	}
	res = append(res, "Clothing: spent "+formatMoney(dash.ClothingSpent)+
		", "+formatMoney(dash.ClothingRemaining)+" left")
	if dash.CardTotal > 0 {
		res = append(res, "Credit card total: "+formatMoney(dash.CardTotal))
	}

	if dash.Balance == nil {
		res = append(res, "Balance unknown. Set it with /balance <amount>")
	} else {
		b := dash.Balance
		risk := ""
		if b.OverspendRisk {
			risk = " ⚠️ overspend risk"
		}
		res = append(res,
			"Balance: "+formatMoney(b.CurrentBalance)+
				" (usable "+formatMoney(b.UsableBalance)+")",
			"Safe to spend: "+formatMoney(b.SafeToSpend)+
				", daily budget "+formatMoney(b.DailyBudget)+
				" for "+strconv.Itoa(b.DaysUntilNextSalary)+" days"+risk,
			"Health: "+b.Health+" ("+strconv.Itoa(b.HealthScore)+"/100)",
		)
	}

	return strings.Join(res, "\n")
}

func formatSimulation(amount int64, sim engine.Simulation) string {
	res := make([]string, 0)
	res = append(res, "If you spend "+formatMoney(amount)+" now:")
	res = append(res, "Week budget left: "+formatMoney(sim.WeeklyBalanceAfter))
	if sim.ClothingRemainingAfter != nil {
		res = append(res, "Clothing budget left: "+formatMoney(*sim.ClothingRemainingAfter))
	}
	if sim.ActualBalanceAfter != nil {
		res = append(res, "Balance after: "+formatMoney(*sim.ActualBalanceAfter))
	}
	if sim.SafeToSpendAfter != nil {
		res = append(res, "Safe to spend after: "+formatMoney(*sim.SafeToSpendAfter))
	}
	res = append(res, "Goal status: "+sim.ProjectionStatus+" (risk: "+sim.RiskLevel+")")
	return strings.Join(res, "\n")
}

func encodeReportRequest(userID int64) ([]byte, error) {
	return json.Marshal(reports.Request{UserID: userID})
}
