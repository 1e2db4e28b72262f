package journal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/kjannette/fxjournal/internal/models"
	"github.com/kjannette/fxjournal/internal/stats"
	"github.com/sirupsen/logrus"
)

var (
	ErrMergeTooFew       = errors.New("merge needs at least two distinct trades")
	ErrMergeNotFound     = errors.New("merge source not found")
	ErrMergePairMismatch = errors.New("merge sources have different pairs")
	ErrMergeSideMismatch = errors.New("merge sources have different sides")
)

// IsMergeValidation reports whether err is a caller error from Merge.
func IsMergeValidation(err error) bool {
	return errors.Is(err, ErrMergeTooFew) || errors.Is(err, ErrMergeNotFound) ||
		errors.Is(err, ErrMergePairMismatch) || errors.Is(err, ErrMergeSideMismatch)
}

// Merge replaces the given trades with one derived trade and returns it.
func (s *Service) Merge(ctx context.Context, ids []int64) (*models.Trade, error) {
	ids = dedupe(ids)
	if len(ids) < 2 {
		return nil, ErrMergeTooFew
	}

	sources, err := s.trades.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(sources) != len(ids) {
		return nil, fmt.Errorf("%w: %v", ErrMergeNotFound, missingIDs(ids, sources))
	}
	if err := stats.Validate(sources); err != nil {
		return nil, err
	}

	merged, err := DeriveMerged(sources)
	if err != nil {
		return nil, err
	}

	stored, err := s.trades.Merge(ctx, ids, merged)
	if err != nil {
		return nil, err
	}

	if s.opts.Cache != nil {
		if err := s.opts.Cache.Invalidate(ctx); err != nil {
			s.log.WithError(err).Warn("daily cache invalidate failed")
		}
	}

	s.log.WithFields(logrus.Fields{
		"sources": ids,
		"merged":  stored.ID,
		"pair":    stored.Pair,
		"profit":  stored.Profit,
	}).Info("trades merged")
	s.notify(fmt.Sprintf("Merged %d %s trades into #%d: %s %.2f lot, profit %.0f (%s pips)",
		len(ids), stored.Pair, stored.ID, stored.Side, stored.Lot, stored.Profit, stored.Pips().String()))

	return stored, nil
}

// DeriveMerged computes the replacement for trades, which must share pair and
// side. Rates are averaged and rounded to 0.001, the span runs from the
// earliest entry to the latest exit, and profit, swap and lot are summed.
func DeriveMerged(trades []models.Trade) (models.Trade, error) {
	if len(trades) < 2 {
		return models.Trade{}, ErrMergeTooFew
	}
	first := trades[0]
	out := models.Trade{
		Pair:      first.Pair,
		Side:      first.Side,
		EntryTime: first.EntryTime,
		ExitTime:  first.ExitTime,
	}

	var entrySum, exitSum float64
	var memos []string
	for _, t := range trades {
		if t.Pair != first.Pair {
			return models.Trade{}, fmt.Errorf("%w: %s vs %s", ErrMergePairMismatch, first.Pair, t.Pair)
		}
		if t.Side != first.Side {
			return models.Trade{}, fmt.Errorf("%w: %s vs %s", ErrMergeSideMismatch, first.Side, t.Side)
		}
		out.Lot += t.Lot
		out.Profit += t.Profit
		out.Swap += t.Swap
		entrySum += t.EntryRate
		exitSum += t.ExitRate
		out.EntryTime = min(out.EntryTime, t.EntryTime)
		out.ExitTime = max(out.ExitTime, t.ExitTime)
		if m := strings.TrimSpace(t.Memo); m != "" {
			memos = append(memos, m)
		}
	}

	n := float64(len(trades))
	out.EntryRate = round3(entrySum / n)
	out.ExitRate = round3(exitSum / n)
	out.ProfitPips = int64(math.Round((out.ExitRate - out.EntryRate) * 1000 * first.Side.Direction()))
	out.Memo = strings.Join(memos, "\n")
	return out, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func dedupe(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func missingIDs(ids []int64, found []models.Trade) []int64 {
	seen := make(map[int64]bool, len(found))
	for _, t := range found {
		seen[t.ID] = true
	}
	var missing []int64
	for _, id := range ids {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
