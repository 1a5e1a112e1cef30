package service

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scribbles/internal/avatar"
	"scribbles/internal/clock"
	"scribbles/internal/model"
	"scribbles/internal/queue"
	"scribbles/internal/repository"
	"scribbles/internal/richtext"
)

// SessionProvider exposes the account that mutations are attributed to.
type SessionProvider interface {
	CurrentSession() (model.Session, bool)
}

// PostService owns the post collection with its nested likes and comments.
// The in-memory collection is the source of truth; every mutation rewrites
// the whole collection and is undone in memory if that write fails.
type PostService struct {
	repo      repository.PostRepository
	sessions  SessionProvider
	clock     clock.Clock
	publisher queue.Publisher
	log       *zap.Logger
	newID     func() string

	mu    sync.RWMutex
	posts []model.Post
}

// NewPostService loads the persisted collection, seeding and persisting the
// two sample posts on first run.
func NewPostService(
	ctx context.Context,
	repo repository.PostRepository,
	sessions SessionProvider,
	avatars avatar.Generator,
	clk clock.Clock,
	publisher queue.Publisher,
	log *zap.Logger,
) (*PostService, error) {
	s := &PostService{
		repo:      repo,
		sessions:  sessions,
		clock:     clk,
		publisher: publisher,
		log:       log.Named("PostService"),
		newID:     uuid.NewString,
	}

	posts, found, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		posts = samplePosts(avatars.URL(DemoUsername))
		if err := repo.Save(ctx, posts); err != nil {
			return nil, fmt.Errorf("seed posts: %w", err)
		}
		s.log.Info("Seeded sample posts", zap.Int("count", len(posts)))
	}
	s.posts = posts

	return s, nil
}

// AddPost creates a post authored by the current session and puts it first.
// Content is stored as given.
func (s *PostService) AddPost(ctx context.Context, title, content, coverImage string) (*model.Post, error) {
	session, ok := s.sessions.CurrentSession()
	if !ok {
		return nil, model.ErrNotAuthenticated
	}

	s.mu.Lock()
	post := model.Post{
		ID:         s.newID(),
		Title:      title,
		Content:    content,
		Author:     session.Author(),
		CreatedAt:  s.clock.Now(),
		Likes:      []string{},
		Comments:   []model.Comment{},
		CoverImage: coverImage,
	}

	updated := make([]model.Post, 0, len(s.posts)+1)
	updated = append(updated, post)
	updated = append(updated, s.posts...)
	if err := s.commit(ctx, updated); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.mu.Unlock()

	s.log.Info("Post created",
		zap.String("post_id", post.ID),
		zap.String("username", session.Username))
	s.publish(ctx, queue.NewPostCreatedEvent(post.ID, session.Username, post.CreatedAt))

	out := post.Clone()
	return &out, nil
}

// ToggleLike adds the session's username to the post's likes, or removes it
// if already there.
func (s *PostService) ToggleLike(ctx context.Context, postID string) (*model.Post, error) {
	session, ok := s.sessions.CurrentSession()
	if !ok {
		return nil, model.ErrNotAuthenticated
	}

	s.mu.Lock()
	idx := s.indexOf(postID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, model.ErrPostNotFound
	}

	post := s.posts[idx].Clone()
	liked := false
	if i := slices.Index(post.Likes, session.Username); i >= 0 {
		post.Likes = slices.Delete(post.Likes, i, i+1)
	} else {
		post.Likes = append(post.Likes, session.Username)
		liked = true
	}

	if err := s.commit(ctx, s.replaced(idx, post)); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("toggle like: %w", err)
	}
	s.mu.Unlock()

	s.log.Info("Like toggled",
		zap.String("post_id", postID),
		zap.String("username", session.Username),
		zap.Bool("liked", liked))
	s.publish(ctx, queue.NewLikeToggledEvent(postID, session.Username, post.Author.Username, liked, s.clock.Now()))

	out := post.Clone()
	return &out, nil
}

// AddComment appends a comment by the current session to a post.
func (s *PostService) AddComment(ctx context.Context, postID, text string) (*model.Comment, error) {
	session, ok := s.sessions.CurrentSession()
	if !ok {
		return nil, model.ErrNotAuthenticated
	}
	if text == "" {
		return nil, model.ErrCommentTextRequired
	}

	s.mu.Lock()
	idx := s.indexOf(postID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, model.ErrPostNotFound
	}

	comment := model.Comment{
		ID:        s.newID(),
		Text:      text,
		Author:    session.Author(),
		CreatedAt: s.clock.Now(),
	}
	post := s.posts[idx].Clone()
	post.Comments = append(post.Comments, comment)

	if err := s.commit(ctx, s.replaced(idx, post)); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("add comment: %w", err)
	}
	s.mu.Unlock()

	s.log.Info("Comment added",
		zap.String("post_id", postID),
		zap.String("comment_id", comment.ID),
		zap.String("username", session.Username))
	s.publish(ctx, queue.NewCommentAddedEvent(postID, comment.ID, session.Username, post.Author.Username, comment.CreatedAt))

	return &comment, nil
}

// GetPostsByAuthor returns the posts written by username, newest first.
func (s *PostService) GetPostsByAuthor(username string) []model.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := []model.Post{}
	for _, p := range s.posts {
		if p.Author.Username == username {
			posts = append(posts, p.Clone())
		}
	}
	return posts
}

// GetPostByID returns a copy of the post with the given id.
func (s *PostService) GetPostByID(id string) (*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, model.ErrPostNotFound
	}
	post := s.posts[idx].Clone()
	return &post, nil
}

// ListPosts returns the whole collection, newest first.
func (s *PostService) ListPosts() []model.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]model.Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, p.Clone())
	}
	return posts
}

// Home splits the collection into the featured (newest) post and the rest,
// as seen by viewer.
func (s *PostService) Home(viewer string) model.HomeFeed {
	posts := s.ListPosts()

	feed := model.HomeFeed{Recent: []model.PostView{}}
	if len(posts) == 0 {
		return feed
	}
	featured := NewPostView(posts[0], viewer)
	feed.Featured = &featured
	for _, p := range posts[1:] {
		feed.Recent = append(feed.Recent, NewPostView(p, viewer))
	}
	return feed
}

// NewPostView builds the card view of p for viewer, with a plain-text
// excerpt of its content.
func NewPostView(p model.Post, viewer string) model.PostView {
	view := model.NewPostView(p, viewer)
	view.Excerpt = richtext.Excerpt(p.Content, model.ExcerptLength)
	return view
}

// NewPostViews maps NewPostView over posts.
func NewPostViews(posts []model.Post, viewer string) []model.PostView {
	views := make([]model.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, NewPostView(p, viewer))
	}
	return views
}

// commit persists updated and makes it current. Callers hold s.mu.
func (s *PostService) commit(ctx context.Context, updated []model.Post) error {
	if err := s.repo.Save(ctx, updated); err != nil {
		s.log.Error("Failed to persist posts", zap.Error(err))
		return err
	}
	s.posts = updated
	return nil
}

// replaced returns a copy of the collection with the post at idx swapped.
func (s *PostService) replaced(idx int, post model.Post) []model.Post {
	updated := slices.Clone(s.posts)
	updated[idx] = post
	return updated
}

func (s *PostService) indexOf(id string) int {
	return slices.IndexFunc(s.posts, func(p model.Post) bool { return p.ID == id })
}

func (s *PostService) publish(ctx context.Context, event queue.BlogEvent) {
	// Log but don't fail - the mutation is already persisted
	if _, err := s.publisher.Publish(ctx, queue.StreamActivity, event); err != nil {
		s.log.Warn("Failed to publish activity event",
			zap.String("type", event.Type),
			zap.String("post_id", event.PostID),
			zap.Error(err))
	}
}
