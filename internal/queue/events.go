package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the activity stream
const (
	EventPostCreated  = "post_created"
	EventPostLiked    = "post_liked"
	EventPostUnliked  = "post_unliked"
	EventCommentAdded = "comment_added"
)

// Stream names
const (
	StreamActivity = "stream:activity"
)

// BlogEvent represents an event published to the activity stream.
// All activity events share this structure.
type BlogEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds when event occurred

	PostID string `json:"post_id"`
	Actor  string `json:"actor"`            // username of the session that acted
	Author string `json:"author,omitempty"` // username of the post's author

	CommentID string `json:"comment_id,omitempty"`
}

// NewPostCreatedEvent creates an event for when a user publishes a post.
func NewPostCreatedEvent(postID, author string, at time.Time) BlogEvent {
	return BlogEvent{
		Type:      EventPostCreated,
		Timestamp: at.UnixMilli(),
		PostID:    postID,
		Actor:     author,
		Author:    author,
	}
}

// NewLikeToggledEvent creates a liked or unliked event depending on liked.
func NewLikeToggledEvent(postID, actor, author string, liked bool, at time.Time) BlogEvent {
	eventType := EventPostUnliked
	if liked {
		eventType = EventPostLiked
	}
	return BlogEvent{
		Type:      eventType,
		Timestamp: at.UnixMilli(),
		PostID:    postID,
		Actor:     actor,
		Author:    author,
	}
}

// NewCommentAddedEvent creates an event for a new comment.
func NewCommentAddedEvent(postID, commentID, actor, author string, at time.Time) BlogEvent {
	return BlogEvent{
		Type:      EventCommentAdded,
		Timestamp: at.UnixMilli(),
		PostID:    postID,
		Actor:     actor,
		Author:    author,
		CommentID: commentID,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e BlogEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseBlogEvent parses a BlogEvent from Redis stream message values.
func ParseBlogEvent(values map[string]interface{}) (BlogEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return BlogEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event BlogEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return BlogEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
