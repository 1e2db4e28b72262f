package repository

import (
	"strings"
	"testing"

	"github.com/kjannette/fxjournal/internal/models"
)

const jst = 9 * 60 * 60

func TestTradingDay(t *testing.T) {
	// 2023-11-14 22:13:20 UTC => 2023-11-15 07:13:20 at +9h
	if got := TradingDay(1700000000, jst); got != "2023-11-15" {
		t.Fatalf("expected 2023-11-15, got %s", got)
	}
	// 2023-11-14 14:59:59 UTC => 23:59:59 at +9h, still the 14th
	if got := TradingDay(1699973999, jst); got != "2023-11-14" {
		t.Fatalf("expected 2023-11-14, got %s", got)
	}
}

func TestDayBounds(t *testing.T) {
	from, to, err := DayBounds("2023-11-15", jst)
	if err != nil {
		t.Fatal(err)
	}
	// 2023-11-15 00:00 at +9h == 2023-11-14 15:00 UTC
	if from != 1699974000 || to != 1699974000+86400 {
		t.Fatalf("bounds = [%d, %d)", from, to)
	}
	if TradingDay(from, jst) != "2023-11-15" || TradingDay(to-1, jst) != "2023-11-15" || TradingDay(to, jst) != "2023-11-16" {
		t.Fatal("bounds disagree with TradingDay")
	}

	if _, _, err := DayBounds("2023/11/15", jst); err == nil {
		t.Fatal("expected error for malformed day")
	}
}

func TestBuildFilteredQuery(t *testing.T) {
	minHold, maxHold := int64(60), int64(3600)
	q, args, err := buildFilteredQuery("SELECT 1 FROM trades t WHERE 1=1", models.TradeFilter{
		StartDate:         "2023-11-15",
		EndDate:           "2023-11-16",
		MinHoldingSeconds: &minHold,
		MaxHoldingSeconds: &maxHold,
		LabelIDs:          []int64{3, 4},
	}, jst)
	if err != nil {
		t.Fatal(err)
	}
	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d", len(args))
	}
	for _, want := range []string{"entry_time >= $1", "entry_time < $2", ">= $3", "<= $4", "ANY($5)"} {
		if !strings.Contains(q, want) {
			t.Fatalf("query missing %q: %s", want, q)
		}
	}
	if args[0].(int64) != 1699974000 || args[1].(int64) != 1699974000+2*86400 {
		t.Fatalf("unexpected date args %v %v", args[0], args[1])
	}

	q, args, err = buildFilteredQuery("BASE", models.TradeFilter{}, jst)
	if err != nil || q != "BASE" || len(args) != 0 {
		t.Fatalf("empty filter changed the query: %q %v %v", q, args, err)
	}

	if _, _, err := buildFilteredQuery("BASE", models.TradeFilter{StartDate: "bad"}, jst); err == nil {
		t.Fatal("expected error for malformed start date")
	}
}
