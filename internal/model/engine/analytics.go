package engine

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/mission-budget/spender/internal/entity/budget"
)

const dailyWindowDays = 30

type WeekSummary struct {
	WeekStart time.Time
	Cap       int64
	Spent     int64
	Saved     int64
}

type CategoryTotal struct {
	Category budget.Category
	Total    int64
	Count    int
}

type DailyTotal struct {
	Date  time.Time
	Total int64
}

// Analytics is the full historical view, recomputed from scratch on
// every call. Aggregates consider completed weeks only; the running
// week appears in the history and as CurrentWeekUnderspend.
type Analytics struct {
	WeeklyHistory []WeekSummary
	Categories    []CategoryTotal
	DailySpend    []DailyTotal

	TotalSpent            int64
	AvgWeeklySpend        float64
	BestWeekSaved         *int64
	WorstWeekOverspend    *int64
	CurrentWeekUnderspend *int64
	CardTotal             int64
	UpiTotal              int64
}

func (s *Service) Analytics(ctx context.Context) (Analytics, error) {
	today := s.today()
	currentWeek := budget.WeekStartOf(today)

	weeks, err := s.storage.ListWeeklyLimits(ctx)
	if err != nil {
		return Analytics{}, errors.Wrap(err, "analytics")
	}
	expenses, err := s.storage.ListExpenses(ctx)
	if err != nil {
		return Analytics{}, errors.Wrap(err, "analytics")
	}

	res := Analytics{
		WeeklyHistory: make([]WeekSummary, 0, len(weeks)),
		DailySpend:    make([]DailyTotal, 0),
	}

	var completedSpent int64
	var completedCount int
	for _, w := range weeks {
		saved := w.Saved()
		if w.WeekStart.Equal(currentWeek) {
			underspend := saved
			res.CurrentWeekUnderspend = &underspend
		}
		if w.WeekStart.Before(currentWeek) {
			completedSpent += w.Spent
			completedCount++
			if saved > 0 && (res.BestWeekSaved == nil || saved > *res.BestWeekSaved) {
				best := saved
				res.BestWeekSaved = &best
			}
			if saved < 0 {
				over := -saved
				if res.WorstWeekOverspend == nil || over > *res.WorstWeekOverspend {
					res.WorstWeekOverspend = &over
				}
			}
		}
		res.WeeklyHistory = append(res.WeeklyHistory, WeekSummary{
			WeekStart: w.WeekStart,
			Cap:       w.Cap,
			Spent:     w.Spent,
			Saved:     saved,
		})
	}
	if completedCount > 0 {
		res.AvgWeeklySpend = math.Round(float64(completedSpent) / float64(completedCount))
	}

	catTotals := make(map[budget.Category]*CategoryTotal)
	dayTotals := make(map[time.Time]int64)
	cutoff := today.AddDate(0, 0, -dailyWindowDays)
	for _, e := range expenses {
		res.TotalSpent += e.Amount
		if e.PaymentMode.OrDefault() == budget.ModeCard {
			res.CardTotal += e.Amount
		} else {
			res.UpiTotal += e.Amount
		}

		ct, ok := catTotals[e.Category]
		if !ok {
			ct = &CategoryTotal{Category: e.Category}
			catTotals[e.Category] = ct
		}
		ct.Total += e.Amount
		ct.Count++

		if !e.Date.Before(cutoff) {
			dayTotals[e.Date] = dayTotals[e.Date] + e.Amount
		}
	}

	res.Categories = make([]CategoryTotal, 0, len(catTotals))
	for _, ct := range catTotals {
		res.Categories = append(res.Categories, *ct)
	}
	sort.Slice(res.Categories, func(i, j int) bool {
		if res.Categories[i].Total != res.Categories[j].Total {
			return res.Categories[i].Total > res.Categories[j].Total
		}
		return res.Categories[i].Category < res.Categories[j].Category
	})

	for d, total := range dayTotals {
		res.DailySpend = append(res.DailySpend, DailyTotal{Date: d, Total: total})
	}
	sort.Slice(res.DailySpend, func(i, j int) bool {
		return res.DailySpend[i].Date.Before(res.DailySpend[j].Date)
	})

	return res, nil
}
