// Package stats turns trade lists into summaries, daily buckets, cumulative
// profit series and histograms. It performs no I/O and never mutates its
// input, so every function is safe to call concurrently on independent data.
package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/kjannette/fxjournal/internal/models"
)

var ErrInvalidTradeData = errors.New("invalid trade data")

// IsWin reports whether a trade lands in the winning bucket. Break-even
// trades are wins so that every trade is either a win or a loss.
func IsWin(t models.Trade) bool {
	return t.Profit >= 0
}

// Validate rejects trades carrying NaN or infinite numbers, which would
// otherwise poison every sum they touch.
func Validate(trades []models.Trade) error {
	for i, t := range trades {
		if err := validateTrade(t); err != nil {
			return fmt.Errorf("trade id=%d index=%d: %w", t.ID, i, err)
		}
	}
	return nil
}

func validateTrade(t models.Trade) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"profit", t.Profit},
		{"lot", t.Lot},
		{"entry_rate", t.EntryRate},
		{"exit_rate", t.ExitRate},
		{"swap", t.Swap},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidTradeData, f.name, f.value)
		}
	}
	return nil
}

// Summarize folds trades in input order into a TradeSummary.
// An empty input yields a zero summary.
func Summarize(trades []models.Trade) (models.TradeSummary, error) {
	if err := Validate(trades); err != nil {
		return models.TradeSummary{Trades: []models.Trade{}}, err
	}
	return summarize(trades), nil
}

func summarize(trades []models.Trade) models.TradeSummary {
	s := models.TradeSummary{
		Trades: append(make([]models.Trade, 0, len(trades)), trades...),
		Count:  len(trades),
	}

	var hold, holdWins, holdLosses int64
	var pipsWins, pipsLosses float64

	for _, t := range trades {
		h := t.HoldingSeconds()
		s.Profit += t.Profit
		s.ProfitPips += t.ProfitPips
		hold += h

		if IsWin(t) {
			s.Wins++
			s.WinTotal += t.Profit
			s.WinPipsTotal += t.ProfitPips
			pipsWins += float64(t.ProfitPips)
			holdWins += h
		} else {
			s.Losses++
			s.LossTotal += t.Profit
			s.LossPipsTotal += t.ProfitPips
			pipsLosses += float64(t.ProfitPips)
			holdLosses += h
		}
	}

	s.AvgProfitWins = mean(s.WinTotal, s.Wins)
	s.AvgProfitLosses = mean(s.LossTotal, s.Losses)
	s.AvgProfitPipsWins = mean(pipsWins, s.Wins)
	s.AvgProfitPipsLosses = mean(pipsLosses, s.Losses)
	s.AvgHoldingTime = mean(float64(hold), s.Count)
	s.AvgHoldingTimeWins = mean(float64(holdWins), s.Wins)
	s.AvgHoldingTimeLosses = mean(float64(holdLosses), s.Losses)
	return s
}

func mean(total float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return total / float64(n)
}
