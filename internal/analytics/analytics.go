// Package analytics computes descriptive rollups over events and
// inferred sessions. Every function is pure: it reads its inputs,
// never mutates them, and returns the same output for the same
// input and filter.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/AyGoub/gramview/internal/event"
	"github.com/AyGoub/gramview/internal/session"
	"github.com/AyGoub/gramview/internal/timeutil"
)

// Filter restricts the analyzed population. Zero values disable
// each criterion: empty dates mean the full span, an empty theme
// set means all themes.
type Filter struct {
	From   string // ISO date YYYY-MM-DD, inclusive
	To     string // ISO date YYYY-MM-DD, inclusive
	Themes map[string]bool
}

func (f Filter) matchDate(t time.Time) bool {
	d := timeutil.Date(t)
	if f.From != "" && d < f.From {
		return false
	}
	if f.To != "" && d > f.To {
		return false
	}
	return true
}

func (f Filter) matchTheme(theme string) bool {
	if len(f.Themes) == 0 {
		return true
	}
	return f.Themes[theme]
}

// Sessions returns the sessions whose start date falls in the
// filter's date range and whose theme is selected.
func Sessions(
	all []session.Session, f Filter,
) []session.Session {
	out := make([]session.Session, 0, len(all))
	for _, s := range all {
		if f.matchDate(s.Start) && f.matchTheme(s.Theme) {
			out = append(out, s)
		}
	}
	return out
}

// Events returns the records within the filter's date range.
// Theme selection does not apply to raw events: themes exist
// only at session granularity.
func Events(stream event.Stream, f Filter) event.Stream {
	out := make(event.Stream, 0, len(stream))
	for _, r := range stream {
		if f.matchDate(r.Timestamp) {
			out = append(out, r)
		}
	}
	return out
}

// HourHistogram is the activity count per hour of day, always 24
// zero-filled buckets. QuietestHour is the hour with the lowest
// non-zero count (-1 when there is no activity at all), matching
// the dashboard's "quietest active hour" callout.
type HourHistogram struct {
	Counts        [24]int `json:"counts"`
	QuietestHour  int     `json:"quietest_hour"`
	QuietestCount int     `json:"quietest_count"`
}

// HourOfDay buckets events by UTC hour of day.
func HourOfDay(events event.Stream) HourHistogram {
	h := HourHistogram{QuietestHour: -1}
	for _, r := range events {
		h.Counts[r.Timestamp.UTC().Hour()]++
	}
	for hour, n := range h.Counts {
		if n == 0 {
			continue
		}
		if h.QuietestHour == -1 || n < h.QuietestCount {
			h.QuietestHour = hour
			h.QuietestCount = n
		}
	}
	return h
}

// weekdayNames is Monday-first, independent of locale and of the
// order events arrive in.
var weekdayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday",
	"Friday", "Saturday", "Sunday",
}

// Heatmap is a 7x24 activity matrix, rows Monday..Sunday.
type Heatmap struct {
	Days   [7]string  `json:"days"`
	Counts [7][24]int `json:"counts"`
}

// isoWeekday maps time.Weekday to a Monday=0 index.
func isoWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// WeekHeatmap buckets events by day of week and hour of day.
func WeekHeatmap(events event.Stream) Heatmap {
	m := Heatmap{Days: weekdayNames}
	for _, r := range events {
		ts := r.Timestamp.UTC()
		m.Counts[isoWeekday(ts)][ts.Hour()]++
	}
	return m
}

// DailyStat summarizes one calendar date's sessions.
type DailyStat struct {
	Date                string  `json:"date"`
	Sessions            int     `json:"sessions"`
	MeanDurationSeconds float64 `json:"mean_duration_seconds"`
}

// DailySessionStats rolls sessions up per start date, ascending.
func DailySessionStats(sessions []session.Session) []DailyStat {
	type acc struct {
		n     int
		total float64
	}
	byDate := make(map[string]*acc)
	for _, s := range sessions {
		d := timeutil.Date(s.Start)
		a := byDate[d]
		if a == nil {
			a = &acc{}
			byDate[d] = a
		}
		a.n++
		a.total += s.EstimatedDuration.Seconds()
	}

	out := make([]DailyStat, 0, len(byDate))
	for d, a := range byDate {
		out = append(out, DailyStat{
			Date:                d,
			Sessions:            a.n,
			MeanDurationSeconds: a.total / float64(a.n),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

// TimelineEntry is a raw event count for one calendar date.
type TimelineEntry struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DailyEventCounts rolls raw events up per date, ascending.
func DailyEventCounts(events event.Stream) []TimelineEntry {
	byDate := make(map[string]int)
	for _, r := range events {
		byDate[timeutil.Date(r.Timestamp)]++
	}
	out := make([]TimelineEntry, 0, len(byDate))
	for d, n := range byDate {
		out = append(out, TimelineEntry{Date: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

// ThemeWeekCount is the number of sessions tagged with a theme
// in one ISO week.
type ThemeWeekCount struct {
	Year  int    `json:"year"`
	Week  int    `json:"week"`
	Theme string `json:"theme"`
	Count int    `json:"count"`
}

// WeeklyThemeDistribution counts tagged sessions per (ISO year,
// ISO week, theme), sorted by year, week, then theme. Untagged
// sessions are skipped, so an untagged population yields an
// empty result rather than an error.
func WeeklyThemeDistribution(
	sessions []session.Session,
) []ThemeWeekCount {
	type key struct {
		year, week int
		theme      string
	}
	counts := make(map[key]int)
	for _, s := range sessions {
		if s.Theme == "" {
			continue
		}
		y, w := s.Start.UTC().ISOWeek()
		counts[key{y, w, s.Theme}]++
	}

	out := make([]ThemeWeekCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, ThemeWeekCount{
			Year: k.year, Week: k.week, Theme: k.theme, Count: n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		return a.Theme < b.Theme
	})
	return out
}

// Summary holds the headline metrics for the filtered population.
// All means over an empty population are zero, never NaN.
type Summary struct {
	Sessions            int     `json:"sessions"`
	MeanDurationSeconds float64 `json:"mean_duration_seconds"`
	TotalSeconds        float64 `json:"total_seconds"`
	MeanDailySeconds    float64 `json:"mean_daily_seconds"`
}

// Summarize computes session count, mean session duration, total
// time, and mean time per active day.
func Summarize(sessions []session.Session) Summary {
	s := Summary{Sessions: len(sessions)}
	if len(sessions) == 0 {
		return s
	}

	days := make(map[string]bool)
	for _, sess := range sessions {
		s.TotalSeconds += sess.EstimatedDuration.Seconds()
		days[timeutil.Date(sess.Start)] = true
	}
	s.MeanDurationSeconds = s.TotalSeconds / float64(len(sessions))
	s.MeanDailySeconds = s.TotalSeconds / float64(len(days))
	return s
}

// SessionRow is one line of the session detail table, the shape
// the CSV/XLSX exports reproduce.
type SessionRow struct {
	Date            string  `json:"date"`
	StartTime       string  `json:"start_time"`
	DurationMinutes float64 `json:"duration_min"`
	Theme           string  `json:"theme,omitempty"`
}

// SessionRows builds the detail table sorted descending by start
// time, durations rounded to one decimal minute.
func SessionRows(sessions []session.Session) []SessionRow {
	ordered := make([]session.Session, len(sessions))
	copy(ordered, sessions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start.After(ordered[j].Start)
	})

	rows := make([]SessionRow, len(ordered))
	for i, s := range ordered {
		rows[i] = SessionRow{
			Date:      timeutil.Date(s.Start),
			StartTime: timeutil.Clock(s.Start),
			DurationMinutes: math.Round(
				s.EstimatedDuration.Minutes()*10,
			) / 10,
			Theme: s.Theme,
		}
	}
	return rows
}
