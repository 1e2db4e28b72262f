package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kjannette/fxjournal/internal/client"
	"github.com/kjannette/fxjournal/internal/config"
	"github.com/kjannette/fxjournal/internal/models"
	"github.com/kjannette/fxjournal/internal/stats"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logrus.WarnLevel)

	format := flag.String("format", "table", "output format: table|yaml|json")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fail("config error", err)
	}
	out, err := newPrinter(os.Stdout, *format)
	if err != nil {
		fail("invalid -format", err)
	}

	c := client.New(cfg.JournalAPIURL, cfg.APIKey)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "summary":
		runSummary(ctx, c, out, args)
	case "daily":
		runDaily(ctx, c, out)
	case "month":
		runMonth(ctx, c, out, args)
	case "cumulative":
		runCumulative(ctx, c, out, args)
	case "histogram":
		runHistogram(ctx, c, out, args)
	case "labels":
		runLabels(ctx, c, out)
	case "merge":
		runMerge(ctx, c, out, args)
	case "verify":
		runVerify(ctx, c, out, cfg.TradingDayOffsetSeconds)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: journal [-format table|yaml|json] <command> [options]

Commands:
  summary [-start D] [-end D] [-min-hold S] [-max-hold S] [-labels 1,2]
                     Summarize trades matching the filter
  daily              Per-day summaries
  month YEAR MONTH   Monthly profit total
  cumulative [-unit currency|pips] [-start D] [-end D]
                     Running profit by day
  histogram [-unit currency|pips] [-bin W] [-cap C] [filter options]
                     Profit distribution
  labels             Summary per label
  merge ID ID...     Replace trades with one merged trade
  verify             Recompute daily records locally and compare with the server

Environment: JOURNAL_API_URL, API_KEY, TRADING_DAY_OFFSET_SECONDS`)
}

func fail(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

// filterFlags registers the trade filter options on fs.
func filterFlags(fs *flag.FlagSet) func() (models.TradeFilter, error) {
	start := fs.String("start", "", "first trading day (YYYY-MM-DD)")
	end := fs.String("end", "", "last trading day (YYYY-MM-DD)")
	minHold := fs.Int64("min-hold", -1, "minimum holding seconds")
	maxHold := fs.Int64("max-hold", -1, "maximum holding seconds")
	labels := fs.String("labels", "", "comma-separated label ids")
	return func() (models.TradeFilter, error) {
		f := models.TradeFilter{StartDate: *start, EndDate: *end}
		if *minHold >= 0 {
			f.MinHoldingSeconds = minHold
		}
		if *maxHold >= 0 {
			f.MaxHoldingSeconds = maxHold
		}
		ids, err := parseIDs(splitComma(*labels))
		if err != nil {
			return f, err
		}
		f.LabelIDs = ids
		return f, nil
	}
}

func runSummary(ctx context.Context, c *client.Client, out *printer, args []string) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	filter := filterFlags(fs)
	fs.Parse(args)
	f, err := filter()
	if err != nil {
		fail("invalid filter", err)
	}

	sum, err := c.Summary(ctx, f)
	if err != nil {
		fail("summary failed", err)
	}
	out.Summary(sum)
}

func runDaily(ctx context.Context, c *client.Client, out *printer) {
	days, err := c.Daily(ctx)
	if err != nil {
		fail("daily failed", err)
	}
	if len(days) == 0 && out.format == "table" {
		fmt.Println("No trades.")
		return
	}
	out.Daily(days)
}

func runMonth(ctx context.Context, c *client.Client, out *printer, args []string) {
	if len(args) != 2 {
		fail("usage", fmt.Errorf("month YEAR MONTH"))
	}
	year, err := strconv.Atoi(args[0])
	if err != nil {
		fail("invalid year", err)
	}
	month, err := strconv.Atoi(args[1])
	if err != nil {
		fail("invalid month", err)
	}

	total, err := c.Month(ctx, year, month)
	if err != nil {
		fail("month failed", err)
	}
	out.Month(total)
}

func runCumulative(ctx context.Context, c *client.Client, out *printer, args []string) {
	fs := flag.NewFlagSet("cumulative", flag.ExitOnError)
	unitFlag := fs.String("unit", "currency", "currency|pips")
	start := fs.String("start", "", "first day (YYYY-MM-DD)")
	end := fs.String("end", "", "last day (YYYY-MM-DD)")
	fs.Parse(args)

	unit, err := stats.ParseUnit(*unitFlag)
	if err != nil {
		fail("invalid unit", err)
	}
	pts, err := c.Cumulative(ctx, unit, *start, *end)
	if err != nil {
		fail("cumulative failed", err)
	}
	out.Cumulative(pts, unit)
}

func runHistogram(ctx context.Context, c *client.Client, out *printer, args []string) {
	fs := flag.NewFlagSet("histogram", flag.ExitOnError)
	unitFlag := fs.String("unit", "currency", "currency|pips")
	bin := fs.String("bin", "", "bin width (server default when empty)")
	capFlag := fs.String("cap", "", "overflow threshold, 0 disables (server default when empty)")
	filter := filterFlags(fs)
	fs.Parse(args)

	unit, err := stats.ParseUnit(*unitFlag)
	if err != nil {
		fail("invalid unit", err)
	}
	f, err := filter()
	if err != nil {
		fail("invalid filter", err)
	}
	binWidth, err := optionalFloat(*bin)
	if err != nil {
		fail("invalid -bin", err)
	}
	capThreshold, err := optionalFloat(*capFlag)
	if err != nil {
		fail("invalid -cap", err)
	}

	bins, err := c.Histogram(ctx, f, unit, binWidth, capThreshold)
	if err != nil {
		fail("histogram failed", err)
	}
	out.Histogram(bins)
}

func runLabels(ctx context.Context, c *client.Client, out *printer) {
	sums, err := c.LabelSummaries(ctx)
	if err != nil {
		fail("labels failed", err)
	}
	out.Labels(sums)
}

func runMerge(ctx context.Context, c *client.Client, out *printer, args []string) {
	ids, err := parseIDs(args)
	if err != nil {
		fail("invalid id", err)
	}
	merged, err := c.Merge(ctx, ids)
	if err != nil {
		fail("merge failed", err)
	}
	out.Trade(merged)
}

func runVerify(ctx context.Context, c *client.Client, out *printer, offset int) {
	trades, err := c.AllTrades(ctx)
	if err != nil {
		fail("fetch trades", err)
	}
	remote, err := c.Daily(ctx)
	if err != nil {
		fail("fetch daily", err)
	}

	local, err := stats.GroupByDay(trades, offset)
	if err != nil {
		fail("local regroup", err)
	}
	diffs := compareDaily(stats.SortedDays(local), remote)
	out.Diffs(diffs, len(trades), len(remote))
	if len(diffs) > 0 {
		os.Exit(2)
	}
}

func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseIDs(args []string) ([]int64, error) {
	var ids []int64
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%q is not a trade id", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func optionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
