package normalize

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Topics parses recommended_topics.json into the ordered list of
// topic labels, deduplicated, preserving first appearance.
func Topics(data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("topics_your_topics: invalid JSON")
	}

	seen := make(map[string]bool)
	var topics []string
	gjson.GetBytes(data, "topics_your_topics").ForEach(
		func(_, entry gjson.Result) bool {
			name := entry.Get("string_map_data.Name.value").Str
			if name == "" || seen[name] {
				return true
			}
			seen[name] = true
			topics = append(topics, name)
			return true
		},
	)
	return topics, nil
}

// TopicRule maps a display category to the keywords that select
// it. Rules are evaluated in order; the first match wins.
type TopicRule struct {
	Category string
	Keywords []string
}

// topicRules groups the platform's fine-grained topic labels
// into headline categories for the topics view.
var topicRules = []TopicRule{
	{"Sports", []string{
		"soccer", "basketball", "boxing", "football",
		"athletics", "tennis", "swimming",
	}},
	{"Food & Drinks", []string{
		"foods", "meat & seafood", "chickens", "baked goods",
		"alcoholic beverages", "spirits & liquor",
	}},
	{"Fashion & Beauty", []string{
		"fashion products", "footwear product types",
		"lip makeup", "hairstyles", "clothing", "makeup",
	}},
	{"Entertainment", []string{
		"tv & movies celebrities", "video games", "movies",
		"television", "music", "books",
	}},
	{"Lifestyle", []string{
		"travel", "fitness", "health", "wellness",
		"home decor", "diy",
	}},
	{"Technology", []string{
		"gadgets", "computers", "software", "social media",
		"internet", "apps",
	}},
}

// CategorizeTopic assigns a topic label to its headline category
// by case-insensitive substring match in either direction, with
// "Other" as the fallback.
func CategorizeTopic(topic string) string {
	lower := strings.ToLower(strings.TrimSpace(topic))
	if lower == "" {
		return "Other"
	}
	for _, rule := range topicRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) ||
				strings.Contains(kw, lower) {
				return rule.Category
			}
		}
	}
	return "Other"
}
