package model

import "time"

// Activity types recorded on an author's timeline.
const (
	ActivityPostCreated  = "post_created"
	ActivityPostLiked    = "post_liked"
	ActivityCommentAdded = "comment_added"
)

// Activity is one entry on a user's recent-activity timeline: something that
// happened to or was done by that user.
type Activity struct {
	Type      string    `json:"type"`
	PostID    string    `json:"post_id"`
	Actor     string    `json:"actor"`
	CommentID string    `json:"comment_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityListResponse is returned by the activity endpoint.
type ActivityListResponse struct {
	Activity []Activity `json:"activity"`
}
