package repository

import "github.com/kjannette/fxjournal/internal/stats"

// TradingDay returns the trading day (YYYY-MM-DD) of a unix timestamp.
// The day boundary is midnight at the fixed UTC offset, not the host zone.
func TradingDay(unix int64, offsetSeconds int) string {
	return stats.DateKey(unix, offsetSeconds)
}

// DayBounds returns the half-open unix range [from, to) covered by a trading day.
func DayBounds(day string, offsetSeconds int) (from, to int64, err error) {
	t, err := stats.ParseDateKey(day)
	if err != nil {
		return 0, 0, err
	}
	from = t.Unix() - int64(offsetSeconds)
	return from, from + 24*60*60, nil
}
