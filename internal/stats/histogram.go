package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/kjannette/fxjournal/internal/models"
)

var ErrInvalidBinWidth = errors.New("histogram bin width must be a positive finite number")

// Histogram bins trade profits in the given unit. Values at or beyond
// ±capThreshold collapse into two overflow bins; capThreshold <= 0 disables
// them. binWidth and capThreshold are in display units.
func Histogram(trades []models.Trade, unit Unit, binWidth, capThreshold float64) ([]models.HistogramBin, error) {
	if !(binWidth > 0) || math.IsInf(binWidth, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidBinWidth, binWidth)
	}
	if math.IsNaN(capThreshold) {
		capThreshold = 0
	}
	if err := Validate(trades); err != nil {
		return nil, err
	}

	b := binner{
		scale:      unit.scale(),
		width:      binWidth * unit.scale(),
		cap:        capThreshold * unit.scale(),
		capDisplay: capThreshold,
	}

	bins := make(map[string]*models.HistogramBin)
	for _, t := range trades {
		v := unit.internalValue(t)
		label, start := b.locate(v)
		bin, ok := bins[label]
		if !ok {
			bin = &models.HistogramBin{Label: label, Start: start}
			bins[label] = bin
		}
		if v >= 0 {
			bin.Positive++
		} else {
			bin.Negative++
		}
	}

	out := make([]models.HistogramBin, 0, len(bins))
	for _, bin := range bins {
		if bin.Total() > 0 {
			out = append(out, *bin)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Label < out[j].Label
	})
	return out, nil
}

type binner struct {
	scale      float64
	width      float64
	cap        float64
	capDisplay float64
}

// locate returns the label and display-unit start of the bin holding v,
// where v is in internal units.
func (b binner) locate(v float64) (string, float64) {
	if b.cap > 0 {
		if v <= -b.cap {
			return "≤ -" + formatNumber(b.capDisplay), math.Inf(-1)
		}
		if v >= b.cap {
			return "≥ +" + formatNumber(b.capDisplay), math.Inf(1)
		}
	}
	start := math.Floor(v/b.width) * b.width
	end := start + b.width
	return formatNumber(start/b.scale) + "–" + formatNumber(end/b.scale), start / b.scale
}

func formatNumber(v float64) string {
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
