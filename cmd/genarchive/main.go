// Command genarchive writes a synthetic activity export for
// demos and manual testing: six months of events biased toward
// evenings and weekends, in the platform's JSON file layout.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

type sourceSpec struct {
	relPath string
	rootKey string
	count   int
}

var specs = []sourceSpec{
	{"connections/followers_and_following/followers_1.json",
		"relationships_followers", 120},
	{"connections/followers_and_following/following.json",
		"relationships_following", 90},
	{"connections/followers_and_following/recently_unfollowed_accounts.json",
		"relationships_unfollowed_users", 15},
	{"your_instagram_activity/likes/liked_posts.json",
		"likes_media_likes", 400},
	{"your_instagram_activity/likes/liked_comments.json",
		"likes_comment_likes", 80},
	{"your_instagram_activity/comments/post_comments_1.json",
		"comments_media_comments", 60},
}

var topics = []string{
	"Soccer", "Foods", "Travel", "Video Games",
	"Gadgets", "Music", "Fitness", "Makeup",
}

func main() {
	out := flag.String("out", "", "output directory")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()
	if *out == "" {
		fmt.Fprintln(os.Stderr, "usage: genarchive -out <dir>")
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	end := time.Now().UTC().Truncate(time.Hour)
	start := end.AddDate(0, -6, 0)

	for _, spec := range specs {
		if err := writeSource(*out, spec, rng, start); err != nil {
			log.Fatalf("writing %s: %v", spec.relPath, err)
		}
		fmt.Printf("  %s: %d entries\n", spec.relPath, spec.count)
	}

	if err := writeTopics(*out); err != nil {
		log.Fatalf("writing topics: %v", err)
	}
	fmt.Printf("Archive written to %s\n", *out)
}

// randomInstant picks a timestamp in the six-month window,
// biased toward evenings and weekends like real usage.
func randomInstant(
	rng *rand.Rand, start time.Time,
) time.Time {
	day := rng.Intn(180)
	hour := rng.Intn(24)
	if rng.Intn(3) > 0 { // two thirds of activity in the evening
		hour = 18 + rng.Intn(6)
	}
	t := start.AddDate(0, 0, day).
		Add(time.Duration(hour) * time.Hour).
		Add(time.Duration(rng.Intn(60)) * time.Minute)
	if rng.Intn(2) == 0 {
		// Snap to the nearest weekend day.
		shift := (13 - int(t.Weekday())) % 7 // to Saturday
		t = t.AddDate(0, 0, shift)
	}
	return t
}

func writeSource(
	dir string, spec sourceSpec, rng *rand.Rand, start time.Time,
) error {
	entries := make([]map[string]any, spec.count)
	for i := range entries {
		ts := randomInstant(rng, start)
		entries[i] = map[string]any{
			"title": fmt.Sprintf("user_%03d", rng.Intn(500)),
			"string_list_data": []map[string]any{{
				"value":     fmt.Sprintf("user_%03d", rng.Intn(500)),
				"href":      "https://example.com/p/abc",
				"timestamp": ts.Unix(),
			}},
		}
	}

	return writeJSON(
		filepath.Join(dir, filepath.FromSlash(spec.relPath)),
		map[string]any{spec.rootKey: entries},
	)
}

func writeTopics(dir string) error {
	entries := make([]map[string]any, len(topics))
	for i, t := range topics {
		entries[i] = map[string]any{
			"string_map_data": map[string]any{
				"Name": map[string]any{"value": t},
			},
		}
	}
	return writeJSON(
		filepath.Join(dir, "preferences", "your_topics",
			"recommended_topics.json"),
		map[string]any{"topics_your_topics": entries},
	)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
