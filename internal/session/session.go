// Package session infers usage sessions from a merged event
// stream. A session is a contiguous run of events separated from
// its neighbors by an inactivity gap longer than a configurable
// threshold; its duration is an estimate, not a measurement,
// since the archive records only discrete instants.
package session

import (
	"fmt"
	"time"

	"github.com/AyGoub/gramview/internal/event"
)

const (
	// DefaultGapThreshold is the inactivity gap that ends a
	// session: 30 minutes, matching the platform export's
	// event granularity.
	DefaultGapThreshold = 30 * time.Minute

	// DefaultTrailingAllowance models the time the final
	// recorded action of a session took to complete.
	DefaultTrailingAllowance = 5 * time.Minute
)

// Session is a derived aggregate over a contiguous run of events.
// Each event of the source stream belongs to exactly one session.
type Session struct {
	ID                int
	Events            event.Stream
	Start             time.Time
	End               time.Time
	EstimatedDuration time.Duration
	Theme             string // "" = untagged
}

// Options holds the tunable parameters of the inference pipeline.
type Options struct {
	GapThreshold      time.Duration
	TrailingAllowance time.Duration
	MinEvents         int
}

// DefaultOptions returns the standard pipeline parameters.
func DefaultOptions() Options {
	return Options{
		GapThreshold:      DefaultGapThreshold,
		TrailingAllowance: DefaultTrailingAllowance,
		MinEvents:         event.DefaultMinEvents,
	}
}

// Validate rejects non-positive thresholds before any stream
// processing begins.
func (o Options) Validate() error {
	if o.GapThreshold <= 0 {
		return fmt.Errorf(
			"gap threshold must be positive, got %s", o.GapThreshold,
		)
	}
	if o.TrailingAllowance <= 0 {
		return fmt.Errorf(
			"trailing allowance must be positive, got %s",
			o.TrailingAllowance,
		)
	}
	if o.MinEvents < 1 {
		return fmt.Errorf(
			"minimum event count must be at least 1, got %d",
			o.MinEvents,
		)
	}
	return nil
}

// Segment partitions a sorted stream into sessions. A new session
// starts at the first event and whenever the gap from the
// previous event strictly exceeds gapThreshold; a gap exactly
// equal to the threshold stays in the same session. Only elapsed
// time matters: category and attributes never influence
// boundaries. An empty stream yields an empty slice.
func Segment(stream event.Stream, gapThreshold time.Duration) []Session {
	if len(stream) == 0 {
		return nil
	}

	var sessions []Session
	start := 0
	for i := 1; i <= len(stream); i++ {
		if i < len(stream) &&
			stream[i].Timestamp.Sub(stream[i-1].Timestamp) <= gapThreshold {
			continue
		}
		run := stream[start:i]
		sessions = append(sessions, Session{
			ID:     len(sessions),
			Events: run,
			Start:  run[0].Timestamp,
			End:    run[len(run)-1].Timestamp,
		})
		start = i
	}
	return sessions
}

// EstimateDurations returns a copy of sessions with
// EstimatedDuration set: span plus the trailing allowance for
// multi-event sessions, the allowance alone for single-event
// ones. Total over any well-formed input.
func EstimateDurations(
	sessions []Session, allowance time.Duration,
) []Session {
	out := make([]Session, len(sessions))
	for i, s := range sessions {
		if len(s.Events) > 1 {
			s.EstimatedDuration = s.End.Sub(s.Start) + allowance
		} else {
			s.EstimatedDuration = allowance
		}
		out[i] = s
	}
	return out
}
