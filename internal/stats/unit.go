package stats

import (
	"fmt"
	"strings"

	"github.com/kjannette/fxjournal/internal/models"
)

// Unit selects the display unit of profit values.
type Unit string

const (
	UnitCurrency Unit = "currency"
	UnitPips     Unit = "pips"
)

func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "currency", "yen", "円":
		return UnitCurrency, nil
	case "pips", "pip":
		return UnitPips, nil
	default:
		return "", fmt.Errorf("invalid unit %q, expected currency|pips", s)
	}
}

// scale is the number of internal units per display unit. Pip profits are
// stored in tenths, currency is stored as is.
func (u Unit) scale() float64 {
	if u == UnitPips {
		return 10
	}
	return 1
}

// internalValue is the trade's profit in internal units.
func (u Unit) internalValue(t models.Trade) float64 {
	if u == UnitPips {
		return float64(t.ProfitPips)
	}
	return t.Profit
}

// dailyValue is a day's profit in display units.
func (u Unit) dailyValue(p models.DailyProfit) float64 {
	if u == UnitPips {
		return float64(p.ProfitPips) / 10
	}
	return p.Profit
}
