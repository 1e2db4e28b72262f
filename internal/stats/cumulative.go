package stats

import (
	"sort"

	"github.com/kjannette/fxjournal/internal/models"
)

// DailyProfits extracts the per-day totals used by CumulativeSeries.
func DailyProfits(days []models.DailySummary) []models.DailyProfit {
	out := make([]models.DailyProfit, 0, len(days))
	for _, d := range days {
		out = append(out, models.DailyProfit{
			Date:       d.Date,
			Profit:     d.Summary.Profit,
			ProfitPips: d.Summary.ProfitPips,
		})
	}
	return out
}

// CumulativeSeries keeps the days within [start, end] (either bound may be
// empty), sorts them by date and returns the running profit total. DateKeys
// are zero padded, so string order is chronological order.
func CumulativeSeries(points []models.DailyProfit, unit Unit, start, end string) []models.CumulativePoint {
	filtered := make([]models.DailyProfit, 0, len(points))
	for _, p := range points {
		if start != "" && p.Date < start {
			continue
		}
		if end != "" && p.Date > end {
			continue
		}
		filtered = append(filtered, p)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date < filtered[j].Date
	})

	out := make([]models.CumulativePoint, 0, len(filtered))
	var cumulative float64
	for _, p := range filtered {
		cumulative += unit.dailyValue(p)
		out = append(out, models.CumulativePoint{Date: p.Date, Cumulative: cumulative})
	}
	return out
}
