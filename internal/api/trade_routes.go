package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/kjannette/fxjournal/internal/models"
	"github.com/kjannette/fxjournal/internal/stats"
)

const maxMergeBody = 64 << 10

type mergeRequest struct {
	IDs []int64 `json:"ids"`
}

// parseTradeFilter reads start, end, minHold, maxHold and labels from the query.
func parseTradeFilter(r *http.Request) (models.TradeFilter, error) {
	q := r.URL.Query()
	var f models.TradeFilter

	for _, p := range []struct {
		key string
		dst *string
	}{{"start", &f.StartDate}, {"end", &f.EndDate}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		if !validateDate(v) {
			return f, fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", p.key, v)
		}
		*p.dst = v
	}

	for _, p := range []struct {
		key string
		dst **int64
	}{{"minHold", &f.MinHoldingSeconds}, {"maxHold", &f.MaxHoldingSeconds}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return f, fmt.Errorf("invalid %s %q, expected seconds >= 0", p.key, v)
		}
		*p.dst = &n
	}

	if v := q.Get("labels"); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil || id <= 0 {
				return f, fmt.Errorf("invalid label id %q", part)
			}
			f.LabelIDs = append(f.LabelIDs, id)
		}
	}
	return f, nil
}

// parseOptionalFloat returns fallback when key is absent.
func parseOptionalFloat(r *http.Request, key string, fallback float64) (float64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return f, nil
}

// handleAllTrades returns every trade; ?limit=N keeps only the latest N.
func (s *Server) handleAllTrades(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	trades, err := s.journal.Trades(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "fetch trades")
		return
	}
	if limit > 0 && len(trades) > limit {
		trades = trades[len(trades)-limit:]
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleFilteredTrades(w http.ResponseWriter, r *http.Request) {
	f, err := parseTradeFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	trades, err := s.journal.FilteredTrades(r.Context(), f)
	if err != nil {
		s.writeServiceError(w, r, err, "fetch trades")
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleTradeSummary(w http.ResponseWriter, r *http.Request) {
	f, err := parseTradeFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sum, err := s.journal.Summary(r.Context(), f)
	if err != nil {
		s.writeServiceError(w, r, err, "summarize trades")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// handleHistogram takes the trade filter plus unit, bin and cap. Missing bin
// or cap use the configured defaults for the unit; cap=0 turns off the
// overflow bins.
func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	f, err := parseTradeFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	unit, err := stats.ParseUnit(r.URL.Query().Get("unit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defBin, defCap := s.journal.HistogramDefaults().For(unit)
	bin, err := parseOptionalFloat(r, "bin", defBin)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	capThreshold, err := parseOptionalFloat(r, "cap", defCap)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bins, err := s.journal.Histogram(r.Context(), f, unit, bin, capThreshold)
	if err != nil {
		s.writeServiceError(w, r, err, "build histogram")
		return
	}
	writeJSON(w, http.StatusOK, bins)
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMergeBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body, expected {\"ids\":[...]}")
		return
	}

	merged, err := s.journal.Merge(r.Context(), req.IDs)
	if err != nil {
		s.writeServiceError(w, r, err, "merge trades")
		return
	}
	writeJSON(w, http.StatusOK, merged)
}
