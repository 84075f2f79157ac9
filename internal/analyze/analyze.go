// Package analyze orchestrates the inference pipeline: merge the
// per-category collections, segment the stream into sessions,
// estimate durations, and tag themes. Each stage is a pure
// function over the previous stage's output; the Result threads
// the whole run's data through as one immutable value.
package analyze

import (
	"github.com/AyGoub/gramview/internal/event"
	"github.com/AyGoub/gramview/internal/session"
)

// SourceStatus reports one archive source's outcome. A failed
// source never blocks analysis of the others.
type SourceStatus struct {
	Name   string `json:"name"`
	Events int    `json:"events"`
	Err    string `json:"error,omitempty"`
}

// Result is the outcome of one analysis run. It is constructed
// fresh for every run and never mutated afterward; aggregations
// are computed on demand from it.
type Result struct {
	Stream   event.Stream
	Sessions []session.Session
	Themes   []string
	Sources  []SourceStatus
}

// Run executes the full pipeline. Options are validated before
// any processing; event.ErrInsufficientData passes through for
// the caller to render as guidance. A nil tagger with a
// non-empty theme list falls back to the deterministic default.
func Run(
	opts session.Options,
	collections []event.Collection,
	themes []string,
	tagger session.Tagger,
) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	stream, err := event.Merge(collections, opts.MinEvents)
	if err != nil {
		return nil, err
	}

	if tagger == nil {
		tagger = session.ModuloTagger{}
	}

	sessions := session.Segment(stream, opts.GapThreshold)
	sessions = session.EstimateDurations(
		sessions, opts.TrailingAllowance,
	)
	sessions = session.ApplyThemes(sessions, themes, tagger)

	return &Result{
		Stream:   stream,
		Sessions: sessions,
		Themes:   themes,
	}, nil
}
