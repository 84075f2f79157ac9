package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AyGoub/gramview/internal/analyze"
	"github.com/AyGoub/gramview/internal/config"
	"github.com/AyGoub/gramview/internal/event"
	"github.com/AyGoub/gramview/internal/session"
	"github.com/AyGoub/gramview/internal/store"
)

// newTestServer returns a server with no analysis loaded.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.Open()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(config.Default(), st,
		WithVersion(VersionInfo{Version: "test"}))
}

// loadTestResult installs a two-session analysis: an evening
// burst of likes and a single next-morning follow.
func loadTestResult(t *testing.T, s *Server) *analyze.Result {
	t.Helper()
	evening := time.Date(2024, 3, 10, 21, 0, 0, 0, time.UTC)
	morning := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

	var likes []event.Record
	for i := 0; i < 9; i++ {
		likes = append(likes, event.Record{
			Timestamp: evening.Add(time.Duration(i) * 2 * time.Minute),
			Category:  event.CategoryLikedPost,
			Attrs:     map[string]string{"username": "creator"},
		})
	}
	collections := []event.Collection{
		{Name: "liked_posts", Records: likes},
		{Name: "followers", Records: []event.Record{{
			Timestamp: morning,
			Category:  event.CategoryFollower,
			Attrs:     map[string]string{"username": "alice"},
		}}},
	}

	result, err := analyze.Run(
		session.DefaultOptions(), collections,
		[]string{"Soccer", "Foods"}, session.ModuloTagger{},
	)
	require.NoError(t, err)
	require.NoError(t, s.SetResult(context.Background(), result))
	return result
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestUnavailableBeforeLoad(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{
		"/api/v1/summary",
		"/api/v1/analytics/hours",
		"/api/v1/analytics/heatmap",
		"/api/v1/analytics/daily",
		"/api/v1/analytics/timeline",
		"/api/v1/analytics/themes",
		"/api/v1/sessions",
		"/api/v1/sessions/export",
		"/api/v1/topics",
	} {
		rec := get(t, s, path)
		assert.Equal(t, http.StatusConflict, rec.Code, path)
		body := decode(t, rec)
		assert.Equal(t, "unavailable", body["status"], path)
		assert.Equal(t, "no archive loaded", body["reason"], path)
	}
}

func TestStatsReflectsLoadState(t *testing.T) {
	s := newTestServer(t)

	body := decode(t, get(t, s, "/api/v1/stats"))
	assert.Equal(t, false, body["loaded"])

	loadTestResult(t, s)

	body = decode(t, get(t, s, "/api/v1/stats"))
	assert.Equal(t, true, body["loaded"])
	assert.Equal(t, float64(10), body["events"])
	assert.Equal(t, float64(2), body["sessions"])
	assert.Equal(t, float64(2), body["themes"])
}

func TestSummary(t *testing.T) {
	s := newTestServer(t)
	loadTestResult(t, s)

	rec := get(t, s, "/api/v1/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(2), body["sessions"])
	// 21m + 5m sessions over two active days.
	assert.Equal(t, float64(1560), body["total_seconds"])
	assert.Equal(t, float64(780), body["mean_duration_seconds"])
	assert.Equal(t, float64(780), body["mean_daily_seconds"])
}

func TestSummaryWithFilter(t *testing.T) {
	s := newTestServer(t)
	loadTestResult(t, s)

	rec := get(t, s, "/api/v1/summary?from=2024-03-11")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["sessions"])
}

func TestFilterValidation(t *testing.T) {
	s := newTestServer(t)
	loadTestResult(t, s)

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/summary?from=11-03-2024", http.StatusBadRequest},
		{"/api/v1/summary?to=notadate", http.StatusBadRequest},
		{"/api/v1/summary?from=2024-03-12&to=2024-03-10",
			http.StatusBadRequest},
		{"/api/v1/summary?from=2024-03-10&to=2024-03-12",
			http.StatusOK},
	}
	for _, tt := range tests {
		rec := get(t, s, tt.path)
		assert.Equal(t, tt.want, rec.Code, tt.path)
	}
}

func TestHours(t *testing.T) {
	s := newTestServer(t)
	loadTestResult(t, s)

	rec := get(t, s, "/api/v1/analytics/hours")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Counts       []int `json:"counts"`
		QuietestHour int   `json:"quietest_hour"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Counts, 24)
	assert.Equal(t, 9, body.Counts[21])
	assert.Equal(t, 1, body.Counts[9])
	assert.Equal(t, 9, body.QuietestHour)
}

func TestListSessions(t *testing.T) {
	s := newTestServer(t)
	loadTestResult(t, s)

	rec := get(t, s, "/api/v1/sessions")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Sessions []struct {
			Date            string  `json:"date"`
			StartTime       string  `json:"start_time"`
			DurationMinutes float64 `json:"duration_min"`
			Theme           string  `json:"theme"`
		} `json:"sessions"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 2, body.Total)

	// Newest first.
	assert.Equal(t, "2024-03-11", body.Sessions[0].Date)
	assert.Equal(t, "09:00", body.Sessions[0].StartTime)
	assert.Equal(t, 5.0, body.Sessions[0].DurationMinutes)
	assert.Equal(t, "Foods", body.Sessions[0].Theme)
	assert.Equal(t, 21.0, body.Sessions[1].DurationMinutes)
}

func TestExportSessionsCSV(t *testing.T) {
	s := newTestServer(t)
	loadTestResult(t, s)

	rec := get(t, s, "/api/v1/sessions/export")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t,
		rec.Header().Get("Content-Disposition"), "attachment")

	want := "date,start_time,duration_min,theme\n" +
		"2024-03-11,09:00,5.0,Foods\n" +
		"2024-03-10,21:00,21.0,Soccer\n"
	assert.Equal(t, want, rec.Body.String())
}

func TestExportSessionsBadFormat(t *testing.T) {
	s := newTestServer(t)
	loadTestResult(t, s)

	rec := get(t, s, "/api/v1/sessions/export?format=pdf")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEvents(t *testing.T) {
	s := newTestServer(t)
	loadTestResult(t, s)

	rec := get(t, s, "/api/v1/events?category=follower")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["total"])

	rec = get(t, s, "/api/v1/events?limit=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = get(t, s, "/api/v1/events?limit=5000")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = get(t, s, "/api/v1/events?offset=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategories(t *testing.T) {
	s := newTestServer(t)
	loadTestResult(t, s)

	rec := get(t, s, "/api/v1/categories")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Categories []struct {
			Category string `json:"category"`
			Count    int    `json:"count"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Categories, 2)
	assert.Equal(t, "liked_post", body.Categories[0].Category)
	assert.Equal(t, 9, body.Categories[0].Count)
}

func TestTopics(t *testing.T) {
	s := newTestServer(t)
	loadTestResult(t, s)

	rec := get(t, s, "/api/v1/topics")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Topics []struct {
			Topic    string `json:"topic"`
			Category string `json:"category"`
		} `json:"topics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Topics, 2)
	assert.Equal(t, "Soccer", body.Topics[0].Topic)
	assert.Equal(t, "Sports", body.Topics[0].Category)
	assert.Equal(t, "Food & Drinks", body.Topics[1].Category)
}

func TestVersion(t *testing.T) {
	s := newTestServer(t)
	body := decode(t, get(t, s, "/api/v1/version"))
	assert.Equal(t, "test", body["version"])
}

func TestUploadRequiresZip(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(
		http.MethodPost, "/api/v1/upload", nil,
	)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(
		http.MethodOptions, "/api/v1/summary", nil,
	)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*",
		rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetLoadErrorKeepsGuidance(t *testing.T) {
	s := newTestServer(t)
	s.SetLoadError("archive vanished")

	body := decode(t, get(t, s, "/api/v1/summary"))
	assert.Equal(t, "archive vanished", body["reason"])
}
