// Package timeutil provides small helpers for the timestamp
// formats used across the archive pipeline and the API.
package timeutil

import "time"

// Format renders t as RFC3339Nano in UTC, or "" for the zero time.
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// Ptr returns a pointer to the formatted time, or nil for the
// zero time. Used for nullable JSON fields.
func Ptr(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := Format(t)
	return &s
}

// Date renders t as an ISO date (YYYY-MM-DD) in UTC.
func Date(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Clock renders t as HH:MM in UTC.
func Clock(t time.Time) string {
	return t.UTC().Format("15:04")
}

// FromUnix converts archive epoch seconds to a UTC instant.
// Non-positive values map to the zero time so callers can
// reject records with missing timestamps.
func FromUnix(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// ParseDate parses an ISO date (YYYY-MM-DD) in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
