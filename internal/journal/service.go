// Package journal serves trade reports: it loads trades from storage, runs
// them through the stats aggregator and caches the daily records.
package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kjannette/fxjournal/internal/models"
	"github.com/kjannette/fxjournal/internal/stats"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidInput marks caller mistakes (bad month, bad date range) as
// opposed to storage failures.
var ErrInvalidInput = errors.New("invalid input")

type TradeStore interface {
	GetAll(ctx context.Context) ([]models.Trade, error)
	GetByFilter(ctx context.Context, f models.TradeFilter) ([]models.Trade, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Trade, error)
	Merge(ctx context.Context, sourceIDs []int64, merged models.Trade) (*models.Trade, error)
}

type LabelStore interface {
	List(ctx context.Context) ([]models.Label, error)
	TradesByLabel(ctx context.Context, labelID int64) ([]models.Trade, error)
}

// DailyCache holds the sorted daily records per trading-day offset. Entries
// are keyed by generation; Invalidate starts a new one, so a Set computed
// from trades read before the invalidation is never served.
type DailyCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, offset int) ([]models.DailySummary, bool, error)
	Set(ctx context.Context, gen int64, offset int, days []models.DailySummary) error
	Invalidate(ctx context.Context) error
}

type Notifier interface {
	Send(msg string)
}

// HistogramDefaults are used when a request leaves bin width or cap unset.
type HistogramDefaults struct {
	BinCurrency float64
	CapCurrency float64
	BinPips     float64
	CapPips     float64
}

func (d HistogramDefaults) For(unit stats.Unit) (bin, capThreshold float64) {
	if unit == stats.UnitPips {
		return d.BinPips, d.CapPips
	}
	return d.BinCurrency, d.CapCurrency
}

type Options struct {
	DayOffset  int
	Cache      DailyCache // optional
	Notifier   Notifier   // optional
	Histograms HistogramDefaults
	// LabelConcurrency bounds the per-label fan-out; 0 means 4.
	LabelConcurrency int
}

type Service struct {
	trades TradeStore
	labels LabelStore
	opts   Options
	log    *logrus.Entry

	// notifications run in the background; tests wait on this
	wg sync.WaitGroup
}

func New(trades TradeStore, labels LabelStore, opts Options) *Service {
	if opts.LabelConcurrency <= 0 {
		opts.LabelConcurrency = 4
	}
	return &Service{
		trades: trades,
		labels: labels,
		opts:   opts,
		log:    logrus.WithField("component", "journal"),
	}
}

func (s *Service) DayOffset() int { return s.opts.DayOffset }

func (s *Service) HistogramDefaults() HistogramDefaults { return s.opts.Histograms }

func (s *Service) Trades(ctx context.Context) ([]models.Trade, error) {
	return s.trades.GetAll(ctx)
}

// FilteredTrades applies the filter in storage. An empty filter returns all trades.
func (s *Service) FilteredTrades(ctx context.Context, f models.TradeFilter) ([]models.Trade, error) {
	if f.StartDate != "" && f.EndDate != "" && f.StartDate > f.EndDate {
		return nil, fmt.Errorf("%w: start %s after end %s", ErrInvalidInput, f.StartDate, f.EndDate)
	}
	if f.MinHoldingSeconds != nil && f.MaxHoldingSeconds != nil && *f.MinHoldingSeconds > *f.MaxHoldingSeconds {
		return nil, fmt.Errorf("%w: min holding %d exceeds max %d", ErrInvalidInput, *f.MinHoldingSeconds, *f.MaxHoldingSeconds)
	}
	if f.IsEmpty() {
		return s.trades.GetAll(ctx)
	}
	return s.trades.GetByFilter(ctx, f)
}

func (s *Service) Summary(ctx context.Context, f models.TradeFilter) (models.TradeSummary, error) {
	trades, err := s.FilteredTrades(ctx, f)
	if err != nil {
		return models.TradeSummary{}, err
	}
	return stats.Summarize(trades)
}

// DaySummary summarizes the trades entered on one trading day.
func (s *Service) DaySummary(ctx context.Context, day string) (models.TradeSummary, error) {
	return s.Summary(ctx, models.TradeFilter{StartDate: day, EndDate: day})
}

// Daily returns the per-day records in ascending date order. Cache failures
// are logged and fall through to a recompute.
func (s *Service) Daily(ctx context.Context) ([]models.DailySummary, error) {
	cache := s.opts.Cache
	var gen int64
	if cache != nil {
		// read before loading trades so a merge committed meanwhile bumps it
		g, err := cache.Generation(ctx)
		if err != nil {
			s.log.WithError(err).Warn("daily cache generation read failed")
			cache = nil
		} else {
			gen = g
		}
	}

	if cache != nil {
		days, ok, err := cache.Get(ctx, gen, s.opts.DayOffset)
		if err != nil {
			s.log.WithError(err).Warn("daily cache read failed")
		} else if ok {
			return days, nil
		}
	}

	trades, err := s.trades.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	grouped, err := stats.GroupByDay(trades, s.opts.DayOffset)
	if err != nil {
		return nil, err
	}
	days := stats.SortedDays(grouped)

	if cache != nil {
		if err := cache.Set(ctx, gen, s.opts.DayOffset, days); err != nil {
			s.log.WithError(err).Warn("daily cache write failed")
		}
	}
	return days, nil
}

func (s *Service) Month(ctx context.Context, year, month int) (models.MonthlyTotal, error) {
	if month < 1 || month > 12 {
		return models.MonthlyTotal{}, fmt.Errorf("%w: month %d", ErrInvalidInput, month)
	}
	days, err := s.Daily(ctx)
	if err != nil {
		return models.MonthlyTotal{}, err
	}
	return stats.MonthlyProfit(stats.DaysToMap(days), year, month), nil
}

// Cumulative returns the running profit over [start, end]; empty bounds are open.
func (s *Service) Cumulative(ctx context.Context, unit stats.Unit, start, end string) ([]models.CumulativePoint, error) {
	days, err := s.Daily(ctx)
	if err != nil {
		return nil, err
	}
	return stats.CumulativeSeries(stats.DailyProfits(days), unit, start, end), nil
}

func (s *Service) Histogram(ctx context.Context, f models.TradeFilter, unit stats.Unit, binWidth, capThreshold float64) ([]models.HistogramBin, error) {
	trades, err := s.FilteredTrades(ctx, f)
	if err != nil {
		return nil, err
	}
	return stats.Histogram(trades, unit, binWidth, capThreshold)
}

// LabelSummaries summarizes every label's trades, in label id order.
func (s *Service) LabelSummaries(ctx context.Context) ([]models.LabelSummary, error) {
	labels, err := s.labels.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.LabelSummary, len(labels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.LabelConcurrency)
	for i, l := range labels {
		g.Go(func() error {
			trades, err := s.labels.TradesByLabel(gctx, l.ID)
			if err != nil {
				return fmt.Errorf("label %d: %w", l.ID, err)
			}
			sum, err := stats.Summarize(trades)
			if err != nil {
				return fmt.Errorf("label %d: %w", l.ID, err)
			}
			out[i] = models.LabelSummary{ID: l.ID, Name: l.Name, Summary: sum}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) notify(msg string) {
	if s.opts.Notifier == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.opts.Notifier.Send(msg)
	}()
}

// Wait blocks until background notifications finish.
func (s *Service) Wait() {
	s.wg.Wait()
}
