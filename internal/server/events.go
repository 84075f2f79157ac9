package server

import (
	"log"
	"net/http"
	"strconv"

	"github.com/AyGoub/gramview/internal/normalize"
	"github.com/AyGoub/gramview/internal/store"
)

func logExportError(err error) {
	log.Printf("export error: %v", err)
}

func (s *Server) handleListEvents(
	w http.ResponseWriter, r *http.Request,
) {
	q := r.URL.Query()
	f := store.EventFilter{
		Category: q.Get("category"),
		Username: q.Get("username"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			writeError(w, http.StatusBadRequest,
				"limit must be 1-1000")
			return
		}
		f.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest,
				"offset must be non-negative")
			return
		}
		f.Offset = n
	}

	events, total, err := s.store.List(r.Context(), f)
	if err != nil {
		log.Printf("listing events: %v", err)
		writeError(w, http.StatusInternalServerError,
			"internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"total":  total,
	})
}

func (s *Server) handleCategories(
	w http.ResponseWriter, r *http.Request,
) {
	counts, err := s.store.CategoryCounts(r.Context())
	if err != nil {
		log.Printf("counting categories: %v", err)
		writeError(w, http.StatusInternalServerError,
			"internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": counts,
	})
}

// topicEntry pairs a raw topic label with its headline category.
type topicEntry struct {
	Topic    string `json:"topic"`
	Category string `json:"category"`
}

func (s *Server) handleTopics(
	w http.ResponseWriter, _ *http.Request,
) {
	result, reason := s.current()
	if result == nil {
		writeUnavailable(w, reason)
		return
	}

	topics := make([]topicEntry, len(result.Themes))
	for i, t := range result.Themes {
		topics[i] = topicEntry{
			Topic:    t,
			Category: normalize.CategorizeTopic(t),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
}
