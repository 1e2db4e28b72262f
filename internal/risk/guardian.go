package risk

import (
	"fmt"

	"github.com/kjannette/fxjournal/internal/models"
	"github.com/kjannette/fxjournal/internal/stats"
)

// Limits holds the daily discipline thresholds from config.
// A zero value for any field means that check is disabled.
type Limits struct {
	MaxDailyTrades  int
	DailyLossLimit  float64 // positive amount, compared against -profit
	DailyProfitGoal float64
	MaxLosingStreak int
}

type Guardian struct {
	limits Limits
}

func NewGuardian(limits Limits) *Guardian {
	return &Guardian{limits: limits}
}

func (g *Guardian) Enabled() bool {
	l := g.limits
	return l.MaxDailyTrades > 0 || l.DailyLossLimit > 0 || l.DailyProfitGoal > 0 || l.MaxLosingStreak > 0
}

// DayCheck evaluates one trading day's summary and returns a message per
// threshold crossed, in a fixed order. No alerts means a nil slice.
func (g *Guardian) DayCheck(sum models.TradeSummary) []string {
	var alerts []string

	if g.limits.MaxDailyTrades > 0 && sum.Count > g.limits.MaxDailyTrades {
		alerts = append(alerts, fmt.Sprintf("OVERTRADING: %d trades (limit %d)",
			sum.Count, g.limits.MaxDailyTrades))
	}

	if g.limits.DailyLossLimit > 0 && sum.Profit <= -g.limits.DailyLossLimit {
		alerts = append(alerts, fmt.Sprintf("LOSS LIMIT hit: %.0f (limit -%.0f)",
			sum.Profit, g.limits.DailyLossLimit))
	}

	if g.limits.DailyProfitGoal > 0 && sum.Profit >= g.limits.DailyProfitGoal {
		alerts = append(alerts, fmt.Sprintf("PROFIT GOAL reached: +%.0f (goal +%.0f)",
			sum.Profit, g.limits.DailyProfitGoal))
	}

	if g.limits.MaxLosingStreak > 0 {
		if streak := LosingStreak(sum.Trades); streak >= g.limits.MaxLosingStreak {
			alerts = append(alerts, fmt.Sprintf("LOSING STREAK: %d losses in a row (limit %d)",
				streak, g.limits.MaxLosingStreak))
		}
	}

	return alerts
}

// LosingStreak is the longest run of consecutive losses, in the order given.
func LosingStreak(trades []models.Trade) int {
	longest, run := 0, 0
	for _, t := range trades {
		if !stats.IsWin(t) {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return longest
}
