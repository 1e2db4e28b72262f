package risk

import (
	"strings"
	"testing"

	"github.com/kjannette/fxjournal/internal/models"
	"github.com/kjannette/fxjournal/internal/stats"
)

func losses(profits ...float64) []models.Trade {
	out := make([]models.Trade, len(profits))
	for i, p := range profits {
		out[i] = models.Trade{ID: int64(i + 1), Profit: p}
	}
	return out
}

// --- DayCheck ---

func TestDayCheck_NoLimits(t *testing.T) {
	g := NewGuardian(Limits{})
	if g.Enabled() {
		t.Fatal("zero limits should disable the guardian")
	}
	if alerts := g.DayCheck(models.TradeSummary{Count: 500, Profit: -1e9}); alerts != nil {
		t.Fatalf("expected no alerts, got %v", alerts)
	}
}

func TestDayCheck_Overtrading(t *testing.T) {
	g := NewGuardian(Limits{MaxDailyTrades: 10})
	if alerts := g.DayCheck(models.TradeSummary{Count: 10}); len(alerts) != 0 {
		t.Fatalf("10/10 should be allowed, got %v", alerts)
	}
	alerts := g.DayCheck(models.TradeSummary{Count: 11})
	if len(alerts) != 1 || !strings.HasPrefix(alerts[0], "OVERTRADING") {
		t.Fatalf("expected overtrading alert, got %v", alerts)
	}
	t.Logf("Correctly flagged: %v", alerts)
}

func TestDayCheck_LossLimitBoundary(t *testing.T) {
	g := NewGuardian(Limits{DailyLossLimit: 5000})
	if alerts := g.DayCheck(models.TradeSummary{Profit: -4999}); len(alerts) != 0 {
		t.Fatalf("expected no alert at -4999, got %v", alerts)
	}
	alerts := g.DayCheck(models.TradeSummary{Profit: -5000})
	if len(alerts) != 1 || !strings.Contains(alerts[0], "LOSS LIMIT") {
		t.Fatalf("expected loss limit alert at exactly -5000, got %v", alerts)
	}
}

func TestDayCheck_ProfitGoal(t *testing.T) {
	g := NewGuardian(Limits{DailyProfitGoal: 10000, DailyLossLimit: 5000})
	alerts := g.DayCheck(models.TradeSummary{Profit: 12000})
	if len(alerts) != 1 || !strings.Contains(alerts[0], "PROFIT GOAL") {
		t.Fatalf("expected profit goal alert, got %v", alerts)
	}
}

func TestDayCheck_LosingStreak(t *testing.T) {
	g := NewGuardian(Limits{MaxLosingStreak: 3})
	sum := models.TradeSummary{Trades: losses(-1, -1, 0, -1, -1, -1, 5)}
	alerts := g.DayCheck(sum)
	if len(alerts) != 1 || !strings.Contains(alerts[0], "3 losses in a row") {
		t.Fatalf("expected streak alert, got %v", alerts)
	}

	// break-even trades reset the streak
	if alerts := g.DayCheck(models.TradeSummary{Trades: losses(-1, -1, 0, -1, -1)}); len(alerts) != 0 {
		t.Fatalf("expected no alert, got %v", alerts)
	}
}

func TestDayCheck_Order(t *testing.T) {
	g := NewGuardian(Limits{MaxDailyTrades: 1, DailyLossLimit: 10, MaxLosingStreak: 2})
	alerts := g.DayCheck(models.TradeSummary{Count: 2, Profit: -20, Trades: losses(-10, -10)})
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %v", alerts)
	}
	if !strings.HasPrefix(alerts[0], "OVERTRADING") || !strings.HasPrefix(alerts[1], "LOSS LIMIT") || !strings.HasPrefix(alerts[2], "LOSING STREAK") {
		t.Fatalf("unexpected order %v", alerts)
	}
}

func TestLosingStreak(t *testing.T) {
	cases := []struct {
		profits []float64
		want    int
	}{
		{nil, 0},
		{[]float64{1, 2}, 0},
		{[]float64{-1}, 1},
		{[]float64{-1, -2, 3, -4, -5, -6}, 3},
	}
	for _, tc := range cases {
		if got := LosingStreak(losses(tc.profits...)); got != tc.want {
			t.Fatalf("LosingStreak(%v) = %d, want %d", tc.profits, got, tc.want)
		}
	}
}

// --- LosingStreak ---

func TestLosingStreak_FollowsWinRule(t *testing.T) {
	trades := losses(-5, 0, -1, -2, 3, -4)
	if got := LosingStreak(trades); got != 2 {
		t.Fatalf("LosingStreak = %d, want 2", got)
	}

	// the longest run of trades IsWin rejects, counted independently
	longest, run := 0, 0
	for _, tr := range trades {
		if stats.IsWin(tr) {
			run = 0
			continue
		}
		run++
		longest = max(longest, run)
	}
	if LosingStreak(trades) != longest {
		t.Fatalf("LosingStreak disagrees with stats.IsWin: %d vs %d", LosingStreak(trades), longest)
	}

	if got := LosingStreak(nil); got != 0 {
		t.Fatalf("LosingStreak(nil) = %d", got)
	}
}
