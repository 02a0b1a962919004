package reports

import (
	"context"
	"strconv"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mission-budget/spender/internal/logger"
	"github.com/mission-budget/spender/internal/model/engine"
)

type analyticsEngine interface {
	Analytics(ctx context.Context) (engine.Analytics, error)
}

// Generator renders the full analytics report as the text the bot
// sends back.
type Generator struct {
	engine analyticsEngine
}

func NewGenerator(engine analyticsEngine) *Generator {
	return &Generator{engine: engine}
}

func (g *Generator) GenerateReport(ctx context.Context, userID int64) (string, error) {
	logger.Info("GenerateReport - start", zap.Int64("userID", userID))
	defer logger.Info("GenerateReport - end")

	span, ctx := opentracing.StartSpanFromContext(ctx, "generateReport")
	defer span.Finish()

	analytics, err := g.engine.Analytics(ctx)
	if err != nil {
		return "", errors.Wrap(err, "generate report")
	}
	return render(analytics), nil
}

const reportDateLayout = "02.01.2006"

func render(a engine.Analytics) string {
	res := make([]string, 0)

	res = append(res, "📊 Spending report")
	res = append(res, "", "Weeks:")
	if len(a.WeeklyHistory) == 0 {
		res = append(res, "no weeks tracked yet")
	}
	for _, w := range a.WeeklyHistory {
		verdict := "saved " + money(w.Saved)
		if w.Saved < 0 {
			verdict = "over by " + money(-w.Saved)
		}
		res = append(res, w.WeekStart.Format(reportDateLayout)+": spent "+
			money(w.Spent)+" of "+money(w.Cap)+", "+verdict)
	}

	res = append(res, "", "Categories:")
	if len(a.Categories) == 0 {
		res = append(res, "no expenses yet")
	}
	for _, c := range a.Categories {
		res = append(res, string(c.Category)+": "+money(c.Total)+
			" ("+strconv.Itoa(c.Count)+" times)")
	}

	res = append(res, "", "Total spent: "+money(a.TotalSpent))
	res = append(res, "Average completed week: "+
		strconv.FormatFloat(a.AvgWeeklySpend, 'f', -1, 64))
	if a.BestWeekSaved != nil {
		res = append(res, "Best week saved: "+money(*a.BestWeekSaved))
	}
	if a.WorstWeekOverspend != nil {
		res = append(res, "Worst week overspend: "+money(*a.WorstWeekOverspend))
	}
	if a.CurrentWeekUnderspend != nil {
		res = append(res, "This week so far: "+money(*a.CurrentWeekUnderspend)+" under cap")
	}
	res = append(res, "UPI total: "+money(a.UpiTotal)+
		", card total: "+money(a.CardTotal))

	return strings.Join(res, "\n")
}

func money(amount int64) string {
	return "₹" + strconv.FormatInt(amount, 10)
}
