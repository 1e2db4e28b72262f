package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kjannette/fxjournal/internal/journal"
	"github.com/kjannette/fxjournal/internal/models"
	"github.com/kjannette/fxjournal/internal/stats"
	"github.com/sirupsen/logrus"
)

const maxQueryLimit = 1000

var dateRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Journal is the report surface the handlers need.
type Journal interface {
	Trades(ctx context.Context) ([]models.Trade, error)
	FilteredTrades(ctx context.Context, f models.TradeFilter) ([]models.Trade, error)
	Summary(ctx context.Context, f models.TradeFilter) (models.TradeSummary, error)
	Daily(ctx context.Context) ([]models.DailySummary, error)
	Month(ctx context.Context, year, month int) (models.MonthlyTotal, error)
	Cumulative(ctx context.Context, unit stats.Unit, start, end string) ([]models.CumulativePoint, error)
	Histogram(ctx context.Context, f models.TradeFilter, unit stats.Unit, binWidth, capThreshold float64) ([]models.HistogramBin, error)
	LabelSummaries(ctx context.Context) ([]models.LabelSummary, error)
	Merge(ctx context.Context, ids []int64) (*models.Trade, error)
	HistogramDefaults() journal.HistogramDefaults
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	journal    Journal
	db         Pinger
	cache      Pinger // nil when caching is off
	httpServer *http.Server
	apiKey     string
	log        *logrus.Entry
}

type Options struct {
	Port       int
	APIKey     string
	CORSOrigin string
	DB         Pinger
	Cache      Pinger
}

func NewServer(j Journal, opts Options) *Server {
	s := &Server{
		journal: j,
		db:      opts.DB,
		cache:   opts.Cache,
		apiKey:  opts.APIKey,
		log:     logrus.WithField("component", "api"),
	}

	mux := http.NewServeMux()

	// Trade routes
	mux.HandleFunc("GET /v1/trades", s.handleAllTrades)
	mux.HandleFunc("GET /v1/trades/filter", s.handleFilteredTrades)
	mux.HandleFunc("GET /v1/trades/summary", s.handleTradeSummary)
	mux.HandleFunc("GET /v1/trades/histogram", s.handleHistogram)
	mux.HandleFunc("POST /v1/trades/merge", s.handleMerge)

	// Report routes
	mux.HandleFunc("GET /v1/daily", s.handleDaily)
	mux.HandleFunc("GET /v1/daily/month/{year}/{month}", s.handleMonth)
	mux.HandleFunc("GET /v1/profit/cumulative", s.handleCumulative)
	mux.HandleFunc("GET /v1/labels/summary", s.handleLabelSummaries)

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := s.requestIDMiddleware(s.accessLogMiddleware(s.authMiddleware(corsMiddleware(mux, opts.CORSOrigin))))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.log.Infof("REST API server started on http://localhost%s", s.httpServer.Addr)
	s.log.Infof("Health check: http://localhost%s/health", s.httpServer.Addr)
	if s.apiKey != "" {
		s.log.Info("Authentication: enabled (Bearer token)")
	} else {
		s.log.Warn("Authentication: disabled (no API_KEY configured)")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the id assigned to the request, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestIDMiddleware keeps a caller-supplied X-Request-ID or assigns a new one.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"request_id": RequestID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"duration":   time.Since(start).Round(time.Microsecond).String(),
		}).Debug("request")
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- validation helpers ---

func validateDate(date string) bool {
	if !dateRegexp.MatchString(date) {
		return false
	}
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

// parseLimit returns defaultLimit when ?limit= is absent and caps larger
// values at maxQueryLimit. Anything but a positive integer is an error.
func parseLimit(r *http.Request, defaultLimit int) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid limit %q, expected a positive integer", v)
	}
	return min(n, maxQueryLimit), nil
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps journal and stats errors to status codes; anything
// unrecognised is a storage failure and is logged, not echoed.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, what string) {
	switch {
	case errors.Is(err, stats.ErrInvalidTradeData):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, journal.ErrInvalidInput),
		errors.Is(err, stats.ErrInvalidBinWidth),
		journal.IsMergeValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.WithError(err).WithField("request_id", RequestID(r.Context())).Errorf("failed to %s", what)
		writeError(w, http.StatusInternalServerError, "failed to "+what)
	}
}
