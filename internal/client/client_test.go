package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/kjannette/fxjournal/internal/api"
	"github.com/kjannette/fxjournal/internal/httputil"
	"github.com/kjannette/fxjournal/internal/journal"
	"github.com/kjannette/fxjournal/internal/models"
	"github.com/kjannette/fxjournal/internal/stats"
)

type memStore struct {
	trades []models.Trade
	labels []models.Label
}

func (m *memStore) GetAll(ctx context.Context) ([]models.Trade, error) {
	return slices.Clone(m.trades), nil
}

func (m *memStore) GetByFilter(ctx context.Context, f models.TradeFilter) ([]models.Trade, error) {
	var out []models.Trade
	for _, t := range m.trades {
		if f.MinHoldingSeconds != nil && t.HoldingSeconds() < *f.MinHoldingSeconds {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *memStore) GetByIDs(ctx context.Context, ids []int64) ([]models.Trade, error) {
	var out []models.Trade
	for _, t := range m.trades {
		if slices.Contains(ids, t.ID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) Merge(ctx context.Context, ids []int64, merged models.Trade) (*models.Trade, error) {
	merged.ID = 10
	m.trades = slices.DeleteFunc(m.trades, func(t models.Trade) bool { return slices.Contains(ids, t.ID) })
	m.trades = append(m.trades, merged)
	return &merged, nil
}

func (m *memStore) List(ctx context.Context) ([]models.Label, error) { return m.labels, nil }

func (m *memStore) TradesByLabel(ctx context.Context, id int64) ([]models.Trade, error) {
	return m.trades[:1], nil
}

func setup(t *testing.T, apiKey string) (*Client, *memStore) {
	t.Helper()
	store := &memStore{
		trades: []models.Trade{
			{ID: 1, Pair: "USD/JPY", Side: models.SideBuy, Lot: 1, EntryRate: 150, ExitRate: 150.1,
				EntryTime: 1700000000, ExitTime: 1700003600, Profit: 1000, ProfitPips: 100},
			{ID: 2, Pair: "USD/JPY", Side: models.SideBuy, Lot: 1, EntryRate: 150.2, ExitRate: 150.1,
				EntryTime: 1700100000, ExitTime: 1700100060, Profit: -1000, ProfitPips: -100},
		},
		labels: []models.Label{{ID: 1, Name: "scalp"}},
	}
	svc := journal.New(store, store, journal.Options{
		DayOffset:  stats.DefaultDayOffset,
		Histograms: journal.HistogramDefaults{BinCurrency: 500, CapCurrency: 0, BinPips: 5, CapPips: 0},
	})
	srv := httptest.NewServer(api.NewServer(svc, api.Options{APIKey: apiKey}).Handler())
	t.Cleanup(srv.Close)

	c := New(srv.URL+"/", apiKey).WithRetry(httputil.RetryConfig{MaxAttempts: 1})
	return c, store
}

func TestClient_Reads(t *testing.T) {
	c, _ := setup(t, "secret")
	ctx := context.Background()

	trades, err := c.AllTrades(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}

	minHold := int64(600)
	long, err := c.FilteredTrades(ctx, models.TradeFilter{MinHoldingSeconds: &minHold})
	if err != nil || len(long) != 1 || long[0].ID != 1 {
		t.Fatalf("filtered = %v, %v", long, err)
	}

	sum, err := c.Summary(ctx, models.TradeFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Count != 2 || sum.Wins != 1 || sum.Profit != 0 {
		t.Fatalf("unexpected summary %+v", sum)
	}

	days, err := c.Daily(ctx)
	if err != nil || len(days) != 2 {
		t.Fatalf("daily = %v, %v", days, err)
	}

	month, err := c.Month(ctx, 2023, 11)
	if err != nil || month.Profit != 0 || month.Month != 11 {
		t.Fatalf("month = %+v, %v", month, err)
	}

	pts, err := c.Cumulative(ctx, stats.UnitPips, "", "")
	if err != nil || len(pts) != 2 || pts[0].Cumulative != 10 || pts[1].Cumulative != 0 {
		t.Fatalf("cumulative = %+v, %v", pts, err)
	}

	bins, err := c.Histogram(ctx, models.TradeFilter{}, stats.UnitCurrency, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(bins) != 2 || bins[0].Label != "-1000–-500" || bins[1].Label != "1000–1500" {
		t.Fatalf("unexpected bins %+v", bins)
	}

	labels, err := c.LabelSummaries(ctx)
	if err != nil || len(labels) != 1 || labels[0].Name != "scalp" {
		t.Fatalf("labels = %+v, %v", labels, err)
	}
}

func TestClient_Merge(t *testing.T) {
	c, store := setup(t, "")
	ctx := context.Background()

	merged, err := c.Merge(ctx, []int64{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if merged.ID != 10 || merged.Lot != 2 || merged.Profit != 0 {
		t.Fatalf("unexpected merged trade %+v", merged)
	}
	if len(store.trades) != 1 {
		t.Fatalf("expected sources replaced, store has %d trades", len(store.trades))
	}

	_, err = c.Merge(ctx, []int64{10})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 APIError, got %v", err)
	}
	if apiErr.Message == "" {
		t.Fatal("expected server error message")
	}
}

func TestClient_Unauthorized(t *testing.T) {
	store := &memStore{}
	srv := httptest.NewServer(api.NewServer(journal.New(store, store, journal.Options{}), api.Options{APIKey: "secret"}).Handler())
	defer srv.Close()

	c := New(srv.URL, "wrong").WithRetry(httputil.RetryConfig{MaxAttempts: 1})
	_, err := c.Daily(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestClient_ServerDown(t *testing.T) {
	c := New("http://127.0.0.1:1", "").WithRetry(httputil.RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond})
	if _, err := c.AllTrades(context.Background()); err == nil {
		t.Fatal("expected connection error")
	}
}
