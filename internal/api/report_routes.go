package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/kjannette/fxjournal/internal/stats"
)

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	days, err := s.journal.Daily(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "fetch daily records")
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || year < 1970 || year > 9999 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid year %q", r.PathValue("year")))
		return
	}
	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid month %q, expected 1-12", r.PathValue("month")))
		return
	}

	total, err := s.journal.Month(r.Context(), year, month)
	if err != nil {
		s.writeServiceError(w, r, err, "fetch monthly total")
		return
	}
	writeJSON(w, http.StatusOK, total)
}

func (s *Server) handleCumulative(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	unit, err := stats.ParseUnit(q.Get("unit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	start, end := q.Get("start"), q.Get("end")
	for _, d := range []string{start, end} {
		if d != "" && !validateDate(d) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", d))
			return
		}
	}

	points, err := s.journal.Cumulative(r.Context(), unit, start, end)
	if err != nil {
		s.writeServiceError(w, r, err, "build cumulative series")
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleLabelSummaries(w http.ResponseWriter, r *http.Request) {
	sums, err := s.journal.LabelSummaries(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "summarize labels")
		return
	}
	writeJSON(w, http.StatusOK, sums)
}
