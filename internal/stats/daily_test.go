package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/kjannette/fxjournal/internal/models"
)

// --- DateKey / GroupByDay ---

func TestDateKey_ShiftedCalendarDay(t *testing.T) {
	// 2023-11-14T22:13:20Z shifted +9h => 2023-11-15T07:13:20
	if got := DateKey(1700000000, DefaultDayOffset); got != "2023-11-15" {
		t.Fatalf("expected 2023-11-15, got %s", got)
	}
	if got := DateKey(1700000000, 0); got != "2023-11-14" {
		t.Fatalf("expected 2023-11-14 without offset, got %s", got)
	}
}

func TestGroupByDay_StraddlesUTCBoundary(t *testing.T) {
	trades := []models.Trade{
		trade(1, 100, 10, 1700000000, 1700000600), // 22:13Z on the 14th
		trade(2, -50, -5, 1700006400, 1700006460), // 00:00Z on the 15th
	}
	days, err := GroupByDay(trades, DefaultDayOffset)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 1 {
		t.Fatalf("expected 1 bucket, got %d: %v", len(days), days)
	}
	s, ok := days["2023-11-15"]
	if !ok {
		t.Fatalf("missing 2023-11-15 bucket: %v", days)
	}
	if s.Count != 2 || s.Profit != 50 {
		t.Fatalf("bucket count=%d profit=%v, want 2/50", s.Count, s.Profit)
	}

	utcDays, err := GroupByDay(trades, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(utcDays) != 2 {
		t.Fatalf("expected 2 buckets at offset 0, got %d", len(utcDays))
	}
}

func TestGroupByDay_UsesEntryTime(t *testing.T) {
	// entered on the 15th (JST), closed two days later
	tr := trade(1, 10, 1, 1700000000, 1700000000+2*86400)
	days, err := GroupByDay([]models.Trade{tr}, DefaultDayOffset)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := days["2023-11-15"]; !ok {
		t.Fatalf("expected entry-date bucket, got %v", days)
	}
}

func TestGroupByDay_EmptyAndInvalid(t *testing.T) {
	days, err := GroupByDay(nil, DefaultDayOffset)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 0 {
		t.Fatalf("expected empty map, got %v", days)
	}

	_, err = GroupByDay([]models.Trade{trade(1, math.NaN(), 0, 0, 1)}, DefaultDayOffset)
	if !errors.Is(err, ErrInvalidTradeData) {
		t.Fatalf("expected ErrInvalidTradeData, got %v", err)
	}
}

func TestSortedDays(t *testing.T) {
	days := map[string]models.TradeSummary{
		"2024-02-01": {Count: 1},
		"2023-12-31": {Count: 2},
		"2024-01-15": {Count: 3},
	}
	sorted := SortedDays(days)
	want := []string{"2023-12-31", "2024-01-15", "2024-02-01"}
	for i, d := range sorted {
		if d.Date != want[i] {
			t.Fatalf("index %d: got %s want %s", i, d.Date, want[i])
		}
	}
	back := DaysToMap(sorted)
	if len(back) != 3 || back["2024-01-15"].Count != 3 {
		t.Fatalf("DaysToMap round trip lost data: %v", back)
	}
}

// --- MonthlyProfit ---

func TestMonthlyProfit(t *testing.T) {
	days := map[string]models.TradeSummary{
		"2024-01-31": {Profit: 100, ProfitPips: 12},
		"2024-02-01": {Profit: -30, ProfitPips: -4},
		"2024-02-29": {Profit: 50, ProfitPips: 7},
		"2023-02-10": {Profit: 999, ProfitPips: 99},
		"garbage":    {Profit: 1e9},
	}

	feb := MonthlyProfit(days, 2024, 2)
	if feb.Profit != 20 || feb.ProfitPips != 3 {
		t.Fatalf("feb 2024 = %v/%d, want 20/3", feb.Profit, feb.ProfitPips)
	}
	if feb.Year != 2024 || feb.Month != 2 {
		t.Fatalf("unexpected period %d-%d", feb.Year, feb.Month)
	}

	none := MonthlyProfit(days, 2024, 3)
	if none.Profit != 0 || none.ProfitPips != 0 {
		t.Fatalf("expected empty month, got %+v", none)
	}
}
