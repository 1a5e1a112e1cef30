package model

import (
	"errors"
	"time"
)

// Comment is appended to a post and never edited or removed.
type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// Comment constraints
const (
	MaxCommentLength = 2200
)

// Comment errors
var (
	ErrCommentTextRequired = errors.New("comment text is required")
	ErrCommentTooLong      = errors.New("comment text too long")
)
