package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"scribbles/internal/model"
	"scribbles/internal/storage"
)

type postRepository struct {
	store storage.Store
}

func NewPostRepository(store storage.Store) PostRepository {
	return &postRepository{store: store}
}

// Load reads the whole post collection, comments and likes included.
func (r *postRepository) Load(ctx context.Context) ([]model.Post, bool, error) {
	data, found, err := r.store.Load(ctx, storage.PostsKey)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load posts: %w", err)
	}
	if !found {
		return nil, false, nil
	}

	var posts []model.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, false, fmt.Errorf("failed to decode posts: %w", err)
	}

	// Older documents may carry null lists.
	for i := range posts {
		if posts[i].Likes == nil {
			posts[i].Likes = []string{}
		}
		if posts[i].Comments == nil {
			posts[i].Comments = []model.Comment{}
		}
	}
	return posts, true, nil
}

// Save re-serializes the entire collection. There is no partial update.
func (r *postRepository) Save(ctx context.Context, posts []model.Post) error {
	if posts == nil {
		posts = []model.Post{}
	}
	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("failed to encode posts: %w", err)
	}
	if err := r.store.Save(ctx, storage.PostsKey, data); err != nil {
		return fmt.Errorf("failed to save posts: %w", err)
	}
	return nil
}
