// Package client talks to the journal REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kjannette/fxjournal/internal/httputil"
	"github.com/kjannette/fxjournal/internal/models"
	"github.com/kjannette/fxjournal/internal/stats"
)

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: HTTP %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   500 * time.Millisecond,
			MaxDelay:    5 * time.Second,
		},
	}
}

// WithRetry overrides the retry policy for reads.
func (c *Client) WithRetry(cfg httputil.RetryConfig) *Client {
	c.retry = cfg
	return c
}

func filterQuery(f models.TradeFilter) url.Values {
	q := url.Values{}
	if f.StartDate != "" {
		q.Set("start", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("end", f.EndDate)
	}
	if f.MinHoldingSeconds != nil {
		q.Set("minHold", strconv.FormatInt(*f.MinHoldingSeconds, 10))
	}
	if f.MaxHoldingSeconds != nil {
		q.Set("maxHold", strconv.FormatInt(*f.MaxHoldingSeconds, 10))
	}
	if len(f.LabelIDs) > 0 {
		ids := make([]string, len(f.LabelIDs))
		for i, id := range f.LabelIDs {
			ids[i] = strconv.FormatInt(id, 10)
		}
		q.Set("labels", strings.Join(ids, ","))
	}
	return q
}

func (c *Client) AllTrades(ctx context.Context) ([]models.Trade, error) {
	var out []models.Trade
	return out, c.get(ctx, "/v1/trades", nil, &out)
}

func (c *Client) FilteredTrades(ctx context.Context, f models.TradeFilter) ([]models.Trade, error) {
	var out []models.Trade
	return out, c.get(ctx, "/v1/trades/filter", filterQuery(f), &out)
}

func (c *Client) Summary(ctx context.Context, f models.TradeFilter) (models.TradeSummary, error) {
	var out models.TradeSummary
	return out, c.get(ctx, "/v1/trades/summary", filterQuery(f), &out)
}

// Histogram passes bin and cap only when set; nil lets the server pick its defaults.
func (c *Client) Histogram(ctx context.Context, f models.TradeFilter, unit stats.Unit, binWidth, capThreshold *float64) ([]models.HistogramBin, error) {
	q := filterQuery(f)
	if unit != "" {
		q.Set("unit", string(unit))
	}
	if binWidth != nil {
		q.Set("bin", strconv.FormatFloat(*binWidth, 'f', -1, 64))
	}
	if capThreshold != nil {
		q.Set("cap", strconv.FormatFloat(*capThreshold, 'f', -1, 64))
	}
	var out []models.HistogramBin
	return out, c.get(ctx, "/v1/trades/histogram", q, &out)
}

func (c *Client) Daily(ctx context.Context) ([]models.DailySummary, error) {
	var out []models.DailySummary
	return out, c.get(ctx, "/v1/daily", nil, &out)
}

func (c *Client) Month(ctx context.Context, year, month int) (models.MonthlyTotal, error) {
	var out models.MonthlyTotal
	return out, c.get(ctx, fmt.Sprintf("/v1/daily/month/%d/%d", year, month), nil, &out)
}

func (c *Client) Cumulative(ctx context.Context, unit stats.Unit, start, end string) ([]models.CumulativePoint, error) {
	q := url.Values{}
	if unit != "" {
		q.Set("unit", string(unit))
	}
	if start != "" {
		q.Set("start", start)
	}
	if end != "" {
		q.Set("end", end)
	}
	var out []models.CumulativePoint
	return out, c.get(ctx, "/v1/profit/cumulative", q, &out)
}

func (c *Client) LabelSummaries(ctx context.Context) ([]models.LabelSummary, error) {
	var out []models.LabelSummary
	return out, c.get(ctx, "/v1/labels/summary", nil, &out)
}

// Merge is sent once; a failed merge is never replayed.
func (c *Client) Merge(ctx context.Context, ids []int64) (*models.Trade, error) {
	body, err := json.Marshal(map[string][]int64{"ids": ids})
	if err != nil {
		return nil, err
	}
	var out models.Trade
	if err := c.do(ctx, http.MethodPost, "/v1/trades/merge", nil, body, httputil.Once, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, q, nil, c.retry, out)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body []byte, retry httputil.RetryConfig, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	resp, err := httputil.Do(ctx, c.httpClient, retry, func() (*http.Request, error) {
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, rd)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
