package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/AyGoub/gramview/internal/analytics"
	"github.com/AyGoub/gramview/internal/export"
)

func (s *Server) handleListSessions(
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

	rows := analytics.SessionRows(
		analytics.Sessions(result.Sessions, f),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": rows,
		"total":    len(rows),
	})
}

func (s *Server) handleExportSessions(
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

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	rows := analytics.SessionRows(
		analytics.Sessions(result.Sessions, f),
	)
	stamp := time.Now().UTC().Format("2006-01-02")

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(
			`attachment; filename="sessions-%s.csv"`, stamp,
		))
		if err := export.WriteCSV(w, rows); err != nil {
			// Headers are out; best effort is to log.
			logExportError(err)
		}
	case "xlsx":
		w.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument"+
				".spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(
			`attachment; filename="sessions-%s.xlsx"`, stamp,
		))
		if err := export.WriteXLSX(w, rows); err != nil {
			logExportError(err)
		}
	default:
		writeError(w, http.StatusBadRequest,
			"invalid format: must be csv or xlsx")
	}
}
