package normalize

import (
	"github.com/tidwall/gjson"

	"github.com/AyGoub/gramview/internal/event"
)

// likeAttrs maps the likes-file shape: the entry title is the
// liked account, the item href the media URL.
func likeAttrs(entry, item gjson.Result) map[string]string {
	return map[string]string{
		"username": entry.Get("title").Str,
		"url":      item.Get("href").Str,
	}
}

// commentAttrs maps the comments-file shape: the item value is
// the comment text.
func commentAttrs(_, item gjson.Result) map[string]string {
	return map[string]string{
		"text": item.Get("value").Str,
		"url":  item.Get("href").Str,
	}
}

// LikedPosts parses liked_posts.json.
func LikedPosts(data []byte) ([]event.Record, error) {
	return stringListRecords(
		data, "likes_media_likes",
		event.CategoryLikedPost, likeAttrs,
	)
}

// LikedComments parses liked_comments.json.
func LikedComments(data []byte) ([]event.Record, error) {
	return stringListRecords(
		data, "likes_comment_likes",
		event.CategoryLikedComment, likeAttrs,
	)
}

// PostComments parses post_comments_1.json.
func PostComments(data []byte) ([]event.Record, error) {
	return stringListRecords(
		data, "comments_media_comments",
		event.CategoryPostComment, commentAttrs,
	)
}

// ReelComments parses reels_comments.json, which shares the
// post-comments root key.
func ReelComments(data []byte) ([]event.Record, error) {
	return stringListRecords(
		data, "comments_media_comments",
		event.CategoryReelComment, commentAttrs,
	)
}
