// Package event defines the normalized activity record model and
// the merge step that combines per-category collections into one
// chronological stream.
package event

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Known categories. The set is open: aggregation treats the
// category as an opaque label, so new archive sources can add
// categories without touching this package.
const (
	CategoryFollower      = "follower"
	CategoryFollowing     = "following"
	CategoryUnfollowed    = "unfollowed"
	CategoryFollowRequest = "follow_request"
	CategoryLikedPost     = "liked_post"
	CategoryLikedComment  = "liked_comment"
	CategoryPostComment   = "post_comment"
	CategoryReelComment   = "reel_comment"
)

// Record is one normalized user action from the archive.
// Attrs carries category-specific fields (username, url, text)
// that the pipeline passes through for display but never
// interprets.
type Record struct {
	Timestamp time.Time         `json:"timestamp"`
	Category  string            `json:"category"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

// Stream is a sequence of records, non-decreasing by timestamp
// once merged. It is built once per analysis run and treated as
// immutable afterward.
type Stream []Record

// Collection is one category's records as produced by the
// normalizer, in original file order.
type Collection struct {
	Name    string
	Records []Record
}

// DefaultMinEvents is the minimum total sample size required for
// an analysis to be meaningful.
const DefaultMinEvents = 10

// ErrInsufficientData reports that the archive holds too few
// events to analyze. It is a soft business rule, not a data
// error; callers surface it as guidance.
var ErrInsufficientData = errors.New("not enough events to analyze")

// Merge flattens the collections into a single stream sorted
// ascending by timestamp. Ties keep collection order, then
// original order within a collection, so repeated runs over the
// same input produce identical output. Returns
// ErrInsufficientData when fewer than minEvents records are
// available in total.
func Merge(collections []Collection, minEvents int) (Stream, error) {
	total := 0
	for _, c := range collections {
		total += len(c.Records)
	}
	if total < minEvents {
		return nil, fmt.Errorf(
			"%w: have %d, need at least %d",
			ErrInsufficientData, total, minEvents,
		)
	}

	merged := make(Stream, 0, total)
	for _, c := range collections {
		merged = append(merged, c.Records...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	return merged, nil
}

// Span returns the first and last timestamps of the stream, or
// zero times for an empty stream.
func (s Stream) Span() (time.Time, time.Time) {
	if len(s) == 0 {
		return time.Time{}, time.Time{}
	}
	return s[0].Timestamp, s[len(s)-1].Timestamp
}
