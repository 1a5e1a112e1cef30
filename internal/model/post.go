package model

import (
	"encoding/json"
	"errors"
	"slices"
	"time"
)

// Author is the snapshot of an account's public fields taken when a post or
// comment is created. It is never updated afterwards.
type Author struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
}

// Post is a blog entry with its embedded likes and comments.
// Only Likes and Comments change after creation.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"` // HTML markup
	Author     Author    `json:"author"`
	CreatedAt  time.Time `json:"createdAt"`
	Likes      []string  `json:"likes"`
	Comments   []Comment `json:"comments"`
	CoverImage string    `json:"coverImage,omitempty"`
}

// Clone returns a deep copy so callers cannot reach the store's slices.
func (p Post) Clone() Post {
	c := p
	c.Likes = append(make([]string, 0, len(p.Likes)), p.Likes...)
	c.Comments = append(make([]Comment, 0, len(p.Comments)), p.Comments...)
	return c
}

// LikedBy reports whether username is in the like list.
func (p Post) LikedBy(username string) bool {
	return slices.Contains(p.Likes, username)
}

// PostView is a post enriched for the viewing session.
type PostView struct {
	Post
	Excerpt      string `json:"excerpt"`
	LikeCount    int    `json:"like_count"`
	CommentCount int    `json:"comment_count"`
	IsLiked      bool   `json:"is_liked"`
}

// NewPostView builds the view of p for viewer (empty when anonymous).
func NewPostView(p Post, viewer string) PostView {
	return PostView{
		Post:         p,
		LikeCount:    len(p.Likes),
		CommentCount: len(p.Comments),
		IsLiked:      viewer != "" && p.LikedBy(viewer),
	}
}

// HomeFeed splits the collection the way the landing page shows it.
type HomeFeed struct {
	Featured *PostView  `json:"featured,omitempty"`
	Recent   []PostView `json:"recent"`
}

// PostListResponse wraps a list of posts.
type PostListResponse struct {
	Posts []PostView `json:"posts"`
}

// CreatePostRequest is the request body for creating a post. Content may be
// given as markup or as a document tree; Document wins when both are set.
type CreatePostRequest struct {
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	Document   json.RawMessage `json:"document,omitempty"`
	CoverImage string          `json:"cover_image,omitempty"`
}

// ToggleLikeResponse reports the like state after a toggle.
type ToggleLikeResponse struct {
	PostID    string `json:"post_id"`
	Liked     bool   `json:"liked"`
	LikeCount int    `json:"like_count"`
}

// Post constraints
const (
	MaxPostTitleLength = 300
	ExcerptLength      = 150
)

// Post errors
var (
	ErrPostNotFound    = errors.New("post not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrContentRequired = errors.New("content is required")
	ErrTitleTooLong    = errors.New("title too long")
)
