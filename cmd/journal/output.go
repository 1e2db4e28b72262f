package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kjannette/fxjournal/internal/models"
	"github.com/kjannette/fxjournal/internal/stats"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) (*printer, error) {
	switch format {
	case "table", "yaml", "json":
		return &printer{w: w, format: format}, nil
	default:
		return nil, fmt.Errorf("unknown format %q, expected table|yaml|json", format)
	}
}

// structured writes v as JSON or YAML and reports whether it did. YAML goes
// through the JSON encoding so both formats share the snake_case keys.
func (p *printer) structured(v any) bool {
	switch p.format {
	case "json":
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			fail("encode json", err)
		}
		return true
	case "yaml":
		data, err := json.Marshal(v)
		if err != nil {
			fail("encode json", err)
		}
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			fail("decode yaml", err)
		}
		blockStyle(&node)
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			fail("encode yaml", err)
		}
		enc.Close()
		return true
	}
	return false
}

// blockStyle clears the flow/quoted styles a JSON document parses with.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func pips(tenths int64) string {
	return models.PipsFromTenths(tenths).StringFixed(1)
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(0)
}

func hold(sec float64) string {
	return (time.Duration(sec) * time.Second).Round(time.Second).String()
}

func (p *printer) Summary(s models.TradeSummary) {
	if p.structured(s) {
		return
	}
	fmt.Fprintf(p.w, "%-22s %12d\n", "Trades", s.Count)
	fmt.Fprintf(p.w, "%-22s %12s\n", "Wins / Losses", fmt.Sprintf("%d / %d", s.Wins, s.Losses))
	fmt.Fprintf(p.w, "%-22s %11.1f%%\n", "Win rate", s.WinRate()*100)
	fmt.Fprintln(p.w, strings.Repeat("-", 35))
	fmt.Fprintf(p.w, "%-22s %12s\n", "Profit", money(s.Profit))
	fmt.Fprintf(p.w, "%-22s %12s\n", "Profit (pips)", pips(s.ProfitPips))
	fmt.Fprintf(p.w, "%-22s %12s\n", "Win total", money(s.WinTotal))
	fmt.Fprintf(p.w, "%-22s %12s\n", "Loss total", money(s.LossTotal))
	fmt.Fprintf(p.w, "%-22s %12s\n", "Avg win", money(s.AvgProfitWins))
	fmt.Fprintf(p.w, "%-22s %12s\n", "Avg loss", money(s.AvgProfitLosses))
	fmt.Fprintf(p.w, "%-22s %12.1f\n", "Avg win (pips)", s.AvgProfitPipsWins/10)
	fmt.Fprintf(p.w, "%-22s %12.1f\n", "Avg loss (pips)", s.AvgProfitPipsLosses/10)
	fmt.Fprintln(p.w, strings.Repeat("-", 35))
	fmt.Fprintf(p.w, "%-22s %12s\n", "Avg hold", hold(s.AvgHoldingTime))
	fmt.Fprintf(p.w, "%-22s %12s\n", "Avg hold (wins)", hold(s.AvgHoldingTimeWins))
	fmt.Fprintf(p.w, "%-22s %12s\n", "Avg hold (losses)", hold(s.AvgHoldingTimeLosses))
}

// Daily omits the per-day trade lists from structured output.
func (p *printer) Daily(days []models.DailySummary) {
	if p.format != "table" {
		slim := make([]models.DailySummary, len(days))
		for i, d := range days {
			slim[i] = d
			slim[i].Summary.Trades = nil
		}
		p.structured(slim)
		return
	}

	fmt.Fprintf(p.w, "%-12s %6s %6s %12s %10s\n", "Date", "Trades", "Win%", "Profit", "Pips")
	fmt.Fprintln(p.w, strings.Repeat("-", 50))
	var total float64
	var totalPips int64
	var totalTrades int
	for _, d := range days {
		s := d.Summary
		fmt.Fprintf(p.w, "%-12s %6d %5.0f%% %12s %10s\n", d.Date, s.Count, s.WinRate()*100, money(s.Profit), pips(s.ProfitPips))
		total += s.Profit
		totalPips += s.ProfitPips
		totalTrades += s.Count
	}
	fmt.Fprintln(p.w, strings.Repeat("-", 50))
	fmt.Fprintf(p.w, "%-12s %6d %6s %12s %10s\n", "TOTAL", totalTrades, "", money(total), pips(totalPips))
}

func (p *printer) Month(m models.MonthlyTotal) {
	if p.structured(m) {
		return
	}
	fmt.Fprintf(p.w, "%04d-%02d  profit %s  pips %s\n", m.Year, m.Month, money(m.Profit), pips(m.ProfitPips))
}

func (p *printer) Cumulative(pts []models.CumulativePoint, unit stats.Unit) {
	if p.structured(pts) {
		return
	}
	fmt.Fprintf(p.w, "%-12s %14s\n", "Date", "Cumulative ("+string(unit)+")")
	fmt.Fprintln(p.w, strings.Repeat("-", 27))
	for _, pt := range pts {
		fmt.Fprintf(p.w, "%-12s %14s\n", pt.Date, decimal.NewFromFloat(pt.Cumulative).StringFixed(1))
	}
}

func (p *printer) Histogram(bins []models.HistogramBin) {
	if p.structured(bins) {
		return
	}
	most := 0
	for _, b := range bins {
		most = max(most, b.Total())
	}
	fmt.Fprintf(p.w, "%-18s %5s %5s\n", "Bin", "+", "-")
	fmt.Fprintln(p.w, strings.Repeat("-", 30))
	for _, b := range bins {
		bar := ""
		if most > 0 {
			bar = strings.Repeat("#", (b.Positive*40+most-1)/most) + strings.Repeat("=", (b.Negative*40+most-1)/most)
		}
		fmt.Fprintf(p.w, "%-18s %5d %5d  %s\n", b.Label, b.Positive, b.Negative, bar)
	}
}

func (p *printer) Labels(sums []models.LabelSummary) {
	if p.format != "table" {
		slim := make([]models.LabelSummary, len(sums))
		for i, s := range sums {
			slim[i] = s
			slim[i].Summary.Trades = nil
		}
		p.structured(slim)
		return
	}
	fmt.Fprintf(p.w, "%-5s %-20s %6s %6s %12s %10s\n", "ID", "Label", "Trades", "Win%", "Profit", "Pips")
	fmt.Fprintln(p.w, strings.Repeat("-", 64))
	for _, l := range sums {
		s := l.Summary
		fmt.Fprintf(p.w, "%-5d %-20s %6d %5.0f%% %12s %10s\n", l.ID, l.Name, s.Count, s.WinRate()*100, money(s.Profit), pips(s.ProfitPips))
	}
}

func (p *printer) Trade(t *models.Trade) {
	if p.structured(t) {
		return
	}
	fmt.Fprintf(p.w, "#%d %s %s %.2f lot  %.3f -> %.3f  %s -> %s\n",
		t.ID, t.Pair, t.Side, t.Lot, t.EntryRate, t.ExitRate,
		time.Unix(t.EntryTime, 0).UTC().Format(time.DateTime), time.Unix(t.ExitTime, 0).UTC().Format(time.DateTime))
	fmt.Fprintf(p.w, "   profit %s  pips %s  swap %s\n", money(t.Profit), pips(t.ProfitPips), money(t.Swap))
}

func (p *printer) Diffs(diffs []dayDiff, trades, days int) {
	if p.format != "table" {
		p.structured(map[string]any{"trades": trades, "days": days, "mismatches": diffs})
		return
	}
	if len(diffs) == 0 {
		fmt.Fprintf(p.w, "OK: %d trades, %d days match the server\n", trades, days)
		return
	}
	fmt.Fprintf(p.w, "%-12s %-12s %14s %14s\n", "Date", "Field", "Local", "Remote")
	fmt.Fprintln(p.w, strings.Repeat("-", 55))
	for _, d := range diffs {
		fmt.Fprintf(p.w, "%-12s %-12s %14s %14s\n", d.Date, d.Field, d.Local, d.Remote)
	}
	fmt.Fprintf(p.w, "%d mismatches\n", len(diffs))
}
