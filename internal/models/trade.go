package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// ParseSide accepts the English tokens and the broker export tokens (買/売).
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "b", "買":
		return SideBuy, nil
	case "sell", "s", "売":
		return SideSell, nil
	default:
		return "", fmt.Errorf("invalid side %q, expected buy|sell", s)
	}
}

// Direction is +1 for buys and -1 for sells.
func (s Side) Direction() float64 {
	if s == SideSell {
		return -1
	}
	return 1
}

type Trade struct {
	ID         int64   `json:"id"`
	Pair       string  `json:"pair"`
	Side       Side    `json:"side"`
	Lot        float64 `json:"lot"`
	EntryRate  float64 `json:"entry_rate"`
	ExitRate   float64 `json:"exit_rate"`
	EntryTime  int64   `json:"entry_time"` // unix seconds
	ExitTime   int64   `json:"exit_time"`  // unix seconds
	Profit     float64 `json:"profit"`
	ProfitPips int64   `json:"profit_pips"` // tenths of a pip
	Swap       float64 `json:"swap"`
	Memo       string  `json:"memo"`
	LabelIDs   []int64 `json:"label_ids,omitempty"`
	MergedTo   *int64  `json:"merged_to,omitempty"`
}

// HoldingSeconds is exit_time - entry_time. Malformed rows yield a negative value.
func (t Trade) HoldingSeconds() int64 {
	return t.ExitTime - t.EntryTime
}

// Pips converts the stored pip-tenths to pips without float rounding.
func (t Trade) Pips() decimal.Decimal {
	return PipsFromTenths(t.ProfitPips)
}

func PipsFromTenths(tenths int64) decimal.Decimal {
	return decimal.New(tenths, -1)
}
