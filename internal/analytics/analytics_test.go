package analytics

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/AyGoub/gramview/internal/event"
	"github.com/AyGoub/gramview/internal/session"
)

func eventAt(t time.Time) event.Record {
	return event.Record{Timestamp: t, Category: event.CategoryLikedPost}
}

func sessionAt(id int, start time.Time, d time.Duration, theme string) session.Session {
	return session.Session{
		ID:                id,
		Start:             start,
		End:               start.Add(d),
		EstimatedDuration: d,
		Theme:             theme,
	}
}

func TestFilterSessions(t *testing.T) {
	d1 := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	d3 := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	all := []session.Session{
		sessionAt(0, d1, time.Minute, "Sports"),
		sessionAt(1, d2, time.Minute, "Foods"),
		sessionAt(2, d3, time.Minute, "Sports"),
	}

	tests := []struct {
		name    string
		f       Filter
		wantIDs []int
	}{
		{"no filter", Filter{}, []int{0, 1, 2}},
		{"from only", Filter{From: "2024-03-11"}, []int{1, 2}},
		{"to only", Filter{To: "2024-03-11"}, []int{0, 1}},
		{"range", Filter{From: "2024-03-11", To: "2024-03-11"}, []int{1}},
		{"theme", Filter{Themes: map[string]bool{"Sports": true}}, []int{0, 2}},
		{"range and theme",
			Filter{From: "2024-03-11", Themes: map[string]bool{"Sports": true}},
			[]int{2}},
		{"nothing matches", Filter{From: "2025-01-01"}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sessions(all, tt.f)
			ids := make([]int, len(got))
			for i, s := range got {
				ids[i] = s.ID
			}
			if diff := cmp.Diff(tt.wantIDs, ids); diff != "" {
				t.Errorf("Sessions() IDs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterEventsIgnoresThemes(t *testing.T) {
	stream := event.Stream{
		eventAt(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)),
		eventAt(time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)),
	}
	f := Filter{
		From:   "2024-03-11",
		Themes: map[string]bool{"Sports": true},
	}
	got := Events(stream, f)
	if len(got) != 1 {
		t.Fatalf("Events() = %d records, want 1", len(got))
	}
}

func TestHourOfDay(t *testing.T) {
	h := HourOfDay(nil)
	if h.QuietestHour != -1 {
		t.Errorf("empty QuietestHour = %d, want -1", h.QuietestHour)
	}
	for i, n := range h.Counts {
		if n != 0 {
			t.Errorf("empty Counts[%d] = %d, want 0", i, n)
		}
	}

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	stream := event.Stream{
		eventAt(day.Add(20 * time.Hour)),
		eventAt(day.Add(20*time.Hour + 15*time.Minute)),
		eventAt(day.Add(20*time.Hour + 45*time.Minute)),
		eventAt(day.Add(9 * time.Hour)),
	}
	h = HourOfDay(stream)
	if h.Counts[20] != 3 || h.Counts[9] != 1 {
		t.Errorf("Counts[20]=%d Counts[9]=%d, want 3 and 1",
			h.Counts[20], h.Counts[9])
	}
	if h.QuietestHour != 9 || h.QuietestCount != 1 {
		t.Errorf("quietest = %d:%d, want 9:1",
			h.QuietestHour, h.QuietestCount)
	}
}

func TestWeekHeatmapMondayFirst(t *testing.T) {
	// 2024-03-11 is a Monday, 2024-03-17 a Sunday.
	monday := time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, 3, 17, 23, 0, 0, 0, time.UTC)

	m := WeekHeatmap(event.Stream{eventAt(monday), eventAt(sunday)})
	if m.Days[0] != "Monday" || m.Days[6] != "Sunday" {
		t.Fatalf("Days = %v, want Monday-first", m.Days)
	}
	if m.Counts[0][8] != 1 {
		t.Errorf("Monday 08h count = %d, want 1", m.Counts[0][8])
	}
	if m.Counts[6][23] != 1 {
		t.Errorf("Sunday 23h count = %d, want 1", m.Counts[6][23])
	}
}

func TestDailySessionStats(t *testing.T) {
	d1 := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	sessions := []session.Session{
		sessionAt(0, d1, 10*time.Minute, ""),
		sessionAt(1, d1.Add(4*time.Hour), 20*time.Minute, ""),
		sessionAt(2, d2, 5*time.Minute, ""),
	}

	want := []DailyStat{
		{Date: "2024-03-10", Sessions: 2, MeanDurationSeconds: 900},
		{Date: "2024-03-12", Sessions: 1, MeanDurationSeconds: 300},
	}
	got := DailySessionStats(sessions)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DailySessionStats() mismatch (-want +got):\n%s", diff)
	}
}

func TestDailyEventCounts(t *testing.T) {
	stream := event.Stream{
		eventAt(time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)),
		eventAt(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)),
		eventAt(time.Date(2024, 3, 10, 22, 0, 0, 0, time.UTC)),
	}
	want := []TimelineEntry{
		{Date: "2024-03-10", Count: 2},
		{Date: "2024-03-12", Count: 1},
	}
	got := DailyEventCounts(stream)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DailyEventCounts() mismatch (-want +got):\n%s", diff)
	}
}

func TestWeeklyThemeDistribution(t *testing.T) {
	// ISO week 11 of 2024 runs Mon 2024-03-11 to Sun 2024-03-17.
	w11 := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	w12 := time.Date(2024, 3, 18, 9, 0, 0, 0, time.UTC)
	sessions := []session.Session{
		sessionAt(0, w11, time.Minute, "Sports"),
		sessionAt(1, w11.Add(time.Hour), time.Minute, "Sports"),
		sessionAt(2, w11.Add(2*time.Hour), time.Minute, "Foods"),
		sessionAt(3, w12, time.Minute, "Sports"),
		sessionAt(4, w12.Add(time.Hour), time.Minute, ""), // untagged
	}

	want := []ThemeWeekCount{
		{Year: 2024, Week: 11, Theme: "Foods", Count: 1},
		{Year: 2024, Week: 11, Theme: "Sports", Count: 2},
		{Year: 2024, Week: 12, Theme: "Sports", Count: 1},
	}
	got := WeeklyThemeDistribution(sessions)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WeeklyThemeDistribution() mismatch (-want +got):\n%s", diff)
	}

	if got := WeeklyThemeDistribution(sessions[4:]); len(got) != 0 {
		t.Errorf("untagged population = %d entries, want 0", len(got))
	}
}

func TestSummarize(t *testing.T) {
	zero := Summarize(nil)
	if zero.Sessions != 0 || zero.MeanDurationSeconds != 0 ||
		zero.TotalSeconds != 0 || zero.MeanDailySeconds != 0 {
		t.Fatalf("empty Summarize() = %+v, want zeros", zero)
	}

	d1 := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	sessions := []session.Session{
		sessionAt(0, d1, 10*time.Minute, ""),
		sessionAt(1, d1.Add(5*time.Hour), 20*time.Minute, ""),
		sessionAt(2, d2, 30*time.Minute, ""),
	}
	got := Summarize(sessions)
	want := Summary{
		Sessions:            3,
		MeanDurationSeconds: 1200, // (600+1200+1800)/3
		TotalSeconds:        3600,
		MeanDailySeconds:    1800, // 3600s over 2 active days
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summarize() mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionRows(t *testing.T) {
	early := time.Date(2024, 3, 10, 9, 5, 0, 0, time.UTC)
	late := time.Date(2024, 3, 10, 21, 30, 0, 0, time.UTC)
	sessions := []session.Session{
		sessionAt(0, early, 7*time.Minute+30*time.Second, "Sports"),
		sessionAt(1, late, 5*time.Minute, ""),
	}

	want := []SessionRow{
		{Date: "2024-03-10", StartTime: "21:30", DurationMinutes: 5},
		{Date: "2024-03-10", StartTime: "09:05",
			DurationMinutes: 7.5, Theme: "Sports"},
	}
	got := SessionRows(sessions)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SessionRows() mismatch (-want +got):\n%s", diff)
	}
}
