package normalize

import "github.com/AyGoub/gramview/internal/event"

// Followers parses followers_1.json and friends.
func Followers(data []byte) ([]event.Record, error) {
	return stringListRecords(
		data, "relationships_followers",
		event.CategoryFollower, profileAttrs,
	)
}

// Following parses following.json.
func Following(data []byte) ([]event.Record, error) {
	return stringListRecords(
		data, "relationships_following",
		event.CategoryFollowing, profileAttrs,
	)
}

// Unfollowed parses recently_unfollowed_accounts.json.
func Unfollowed(data []byte) ([]event.Record, error) {
	return stringListRecords(
		data, "relationships_unfollowed_users",
		event.CategoryUnfollowed, profileAttrs,
	)
}

// FollowRequests parses pending/recent follow request files.
func FollowRequests(data []byte) ([]event.Record, error) {
	return stringListRecords(
		data, "relationships_follow_requests_sent",
		event.CategoryFollowRequest, profileAttrs,
	)
}
