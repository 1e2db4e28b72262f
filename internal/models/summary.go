package models

import (
	"encoding/json"
	"math"
)

// TradeSummary aggregates any set of trades. Trades with profit >= 0 count as
// wins, the rest as losses, so Count == Wins + Losses always holds.
type TradeSummary struct {
	Trades []Trade `json:"trades"`

	Profit     float64 `json:"profit"`
	ProfitPips int64   `json:"profit_pips"`
	Count      int     `json:"count"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`

	WinTotal      float64 `json:"win_total"`
	LossTotal     float64 `json:"loss_total"`
	WinPipsTotal  int64   `json:"win_pips_total"`
	LossPipsTotal int64   `json:"loss_pips_total"`

	AvgProfitWins       float64 `json:"avg_profit_wins"`
	AvgProfitLosses     float64 `json:"avg_profit_losses"`
	AvgProfitPipsWins   float64 `json:"avg_profit_pips_wins"`
	AvgProfitPipsLosses float64 `json:"avg_profit_pips_losses"`

	AvgHoldingTime       float64 `json:"avg_holding_time"`
	AvgHoldingTimeWins   float64 `json:"avg_holding_time_wins"`
	AvgHoldingTimeLosses float64 `json:"avg_holding_time_losses"`
}

// WinRate returns wins/count, or 0 for an empty summary.
func (s TradeSummary) WinRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Count)
}

type DailySummary struct {
	Date    string       `json:"date"`
	Summary TradeSummary `json:"summary"`
}

type LabelSummary struct {
	ID      int64        `json:"id"`
	Name    string       `json:"name"`
	Summary TradeSummary `json:"summary"`
}

type MonthlyTotal struct {
	Year       int     `json:"year"`
	Month      int     `json:"month"`
	Profit     float64 `json:"yen_total"`
	ProfitPips int64   `json:"pips_total"` // tenths of a pip
}

// DailyProfit is the per-day input of a cumulative profit series.
type DailyProfit struct {
	Date       string  `json:"date"`
	Profit     float64 `json:"profit"`
	ProfitPips int64   `json:"profit_pips"`
}

type CumulativePoint struct {
	Date       string  `json:"date"`
	Cumulative float64 `json:"cumulative"`
}

// HistogramBin is one bar of a profit histogram. Overflow bins carry
// Start = ±Inf so they sort to the extremes.
type HistogramBin struct {
	Label    string  `json:"bin_label"`
	Start    float64 `json:"bin_start"`
	Positive int     `json:"positive_count"`
	Negative int     `json:"negative_count"`
}

func (b HistogramBin) Total() int {
	return b.Positive + b.Negative
}

// MarshalJSON writes infinite starts as null since JSON has no infinity.
func (b HistogramBin) MarshalJSON() ([]byte, error) {
	var start *float64
	if !math.IsInf(b.Start, 0) && !math.IsNaN(b.Start) {
		s := b.Start
		start = &s
	}
	overflow := ""
	switch {
	case math.IsInf(b.Start, -1):
		overflow = "under"
	case math.IsInf(b.Start, 1):
		overflow = "over"
	}
	return json.Marshal(struct {
		Label    string   `json:"bin_label"`
		Start    *float64 `json:"bin_start"`
		Overflow string   `json:"overflow,omitempty"`
		Positive int      `json:"positive_count"`
		Negative int      `json:"negative_count"`
	}{b.Label, start, overflow, b.Positive, b.Negative})
}

func (b *HistogramBin) UnmarshalJSON(data []byte) error {
	var raw struct {
		Label    string   `json:"bin_label"`
		Start    *float64 `json:"bin_start"`
		Overflow string   `json:"overflow"`
		Positive int      `json:"positive_count"`
		Negative int      `json:"negative_count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Label = raw.Label
	b.Positive = raw.Positive
	b.Negative = raw.Negative
	switch {
	case raw.Overflow == "under":
		b.Start = math.Inf(-1)
	case raw.Overflow == "over":
		b.Start = math.Inf(1)
	case raw.Start != nil:
		b.Start = *raw.Start
	}
	return nil
}
