package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/AyGoub/gramview/internal/analytics"
)

// isValidDate checks that s is a well-formed YYYY-MM-DD string.
func isValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// parseFilter extracts the shared analytics filter params:
// from/to ISO dates (inclusive, empty = full span) and a
// comma-separated theme selection (empty = all themes).
func parseFilter(
	w http.ResponseWriter, r *http.Request,
) (analytics.Filter, bool) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")

	if from != "" && !isValidDate(from) ||
		to != "" && !isValidDate(to) {
		writeError(w, http.StatusBadRequest,
			"invalid date format: use YYYY-MM-DD")
		return analytics.Filter{}, false
	}
	if from != "" && to != "" && from > to {
		writeError(w, http.StatusBadRequest,
			"from must not be after to")
		return analytics.Filter{}, false
	}

	f := analytics.Filter{From: from, To: to}
	if raw := q.Get("themes"); raw != "" {
		f.Themes = make(map[string]bool)
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Themes[t] = true
			}
		}
	}
	return f, true
}

func (s *Server) handleSummary(
	w http.ResponseWriter, r *http.Request,
) {
	f, ok := parseFilter(w, r)
	if !ok {
		return
	}
	result, reason := s.current()
	if result == nil {
		writeUnavailable(w, reason)
		return
	}

	writeJSON(w, http.StatusOK,
		analytics.Summarize(analytics.Sessions(result.Sessions, f)))
}

func (s *Server) handleHours(
	w http.ResponseWriter, r *http.Request,
) {
	f, ok := parseFilter(w, r)
	if !ok {
		return
	}
	result, reason := s.current()
	if result == nil {
		writeUnavailable(w, reason)
		return
	}

	writeJSON(w, http.StatusOK,
		analytics.HourOfDay(analytics.Events(result.Stream, f)))
}

func (s *Server) handleHeatmap(
	w http.ResponseWriter, r *http.Request,
) {
	f, ok := parseFilter(w, r)
	if !ok {
		return
	}
	result, reason := s.current()
	if result == nil {
		writeUnavailable(w, reason)
		return
	}

	writeJSON(w, http.StatusOK,
		analytics.WeekHeatmap(analytics.Events(result.Stream, f)))
}

func (s *Server) handleDaily(
	w http.ResponseWriter, r *http.Request,
) {
	f, ok := parseFilter(w, r)
	if !ok {
		return
	}
	result, reason := s.current()
	if result == nil {
		writeUnavailable(w, reason)
		return
	}

	stats := analytics.DailySessionStats(
		analytics.Sessions(result.Sessions, f),
	)
	writeJSON(w, http.StatusOK, map[string]any{"daily": stats})
}

func (s *Server) handleTimeline(
	w http.ResponseWriter, r *http.Request,
) {
	f, ok := parseFilter(w, r)
	if !ok {
		return
	}
	result, reason := s.current()
	if result == nil {
		writeUnavailable(w, reason)
		return
	}

	entries := analytics.DailyEventCounts(
		analytics.Events(result.Stream, f),
	)
	writeJSON(w, http.StatusOK, map[string]any{"timeline": entries})
}

func (s *Server) handleThemes(
	w http.ResponseWriter, r *http.Request,
) {
	f, ok := parseFilter(w, r)
	if !ok {
		return
	}
	result, reason := s.current()
	if result == nil {
		writeUnavailable(w, reason)
		return
	}

	dist := analytics.WeeklyThemeDistribution(
		analytics.Sessions(result.Sessions, f),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"themes": result.Themes,
		"weekly": dist,
	})
}
