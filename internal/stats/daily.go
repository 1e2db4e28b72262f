package stats

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/kjannette/fxjournal/internal/models"
)

// DefaultDayOffset shifts UNIX time to UTC+9 before a calendar date is taken.
const DefaultDayOffset = 9 * 60 * 60

const DateLayout = "2006-01-02"

// DateKey returns the YYYY-MM-DD calendar date of unix shifted by offsetSeconds.
// The host time zone plays no part.
func DateKey(unix int64, offsetSeconds int) string {
	return time.Unix(unix+int64(offsetSeconds), 0).UTC().Format(DateLayout)
}

// ParseDateKey parses a YYYY-MM-DD key as midnight UTC.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(DateLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", key)
	}
	return t, nil
}

// GroupByDay buckets trades by the shifted calendar date of their entry time.
// Days without trades are absent from the result.
func GroupByDay(trades []models.Trade, offsetSeconds int) (map[string]models.TradeSummary, error) {
	if err := Validate(trades); err != nil {
		return nil, err
	}

	buckets := make(map[string][]models.Trade)
	for _, t := range trades {
		key := DateKey(t.EntryTime, offsetSeconds)
		buckets[key] = append(buckets[key], t)
	}

	out := make(map[string]models.TradeSummary, len(buckets))
	for key, ts := range buckets {
		out[key] = summarize(ts)
	}
	return out, nil
}

// SortedDays flattens a GroupByDay result into a list ordered by date.
func SortedDays(days map[string]models.TradeSummary) []models.DailySummary {
	out := make([]models.DailySummary, 0, len(days))
	for _, key := range sortedKeys(days) {
		out = append(out, models.DailySummary{Date: key, Summary: days[key]})
	}
	return out
}

// DaysToMap is the inverse of SortedDays, for daily records obtained from a
// backend rather than computed locally.
func DaysToMap(days []models.DailySummary) map[string]models.TradeSummary {
	out := make(map[string]models.TradeSummary, len(days))
	for _, d := range days {
		out[d.Date] = d.Summary
	}
	return out
}

// MonthlyProfit totals profit and pip-tenths over the keys of one month.
// Year and month come from the key text; malformed keys are skipped.
func MonthlyProfit(days map[string]models.TradeSummary, year, month int) models.MonthlyTotal {
	total := models.MonthlyTotal{Year: year, Month: month}
	for _, key := range sortedKeys(days) {
		y, m, ok := yearMonth(key)
		if !ok || y != year || m != month {
			continue
		}
		total.Profit += days[key].Profit
		total.ProfitPips += days[key].ProfitPips
	}
	return total
}

func yearMonth(key string) (int, int, bool) {
	if len(key) < 7 || key[4] != '-' {
		return 0, 0, false
	}
	y, err := strconv.Atoi(key[:4])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(key[5:7])
	if err != nil {
		return 0, 0, false
	}
	return y, m, true
}

func sortedKeys(days map[string]models.TradeSummary) []string {
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
