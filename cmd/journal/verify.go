package main

import (
	"fmt"
	"math"

	"github.com/kjannette/fxjournal/internal/models"
)

const profitTolerance = 1e-6

type dayDiff struct {
	Date   string `json:"date" yaml:"date"`
	Field  string `json:"field" yaml:"field"`
	Local  string `json:"local" yaml:"local"`
	Remote string `json:"remote" yaml:"remote"`
}

// compareDaily reports every day whose locally recomputed totals disagree
// with the server's, including days present on only one side.
func compareDaily(local, remote []models.DailySummary) []dayDiff {
	byDate := make(map[string]models.TradeSummary, len(remote))
	for _, d := range remote {
		byDate[d.Date] = d.Summary
	}

	var diffs []dayDiff
	seen := make(map[string]bool, len(local))
	for _, d := range local {
		seen[d.Date] = true
		r, ok := byDate[d.Date]
		if !ok {
			diffs = append(diffs, dayDiff{Date: d.Date, Field: "day", Local: "present", Remote: "missing"})
			continue
		}
		l := d.Summary
		if l.Count != r.Count {
			diffs = append(diffs, dayDiff{d.Date, "count", fmt.Sprint(l.Count), fmt.Sprint(r.Count)})
		}
		if l.Wins != r.Wins {
			diffs = append(diffs, dayDiff{d.Date, "wins", fmt.Sprint(l.Wins), fmt.Sprint(r.Wins)})
		}
		if math.Abs(l.Profit-r.Profit) > profitTolerance {
			diffs = append(diffs, dayDiff{d.Date, "profit", fmt.Sprint(l.Profit), fmt.Sprint(r.Profit)})
		}
		if l.ProfitPips != r.ProfitPips {
			diffs = append(diffs, dayDiff{d.Date, "profit_pips", fmt.Sprint(l.ProfitPips), fmt.Sprint(r.ProfitPips)})
		}
	}
	for _, d := range remote {
		if !seen[d.Date] {
			diffs = append(diffs, dayDiff{Date: d.Date, Field: "day", Local: "missing", Remote: "present"})
		}
	}
	return diffs
}
