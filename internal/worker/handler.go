package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"scribbles/internal/cache"
	"scribbles/internal/model"
	"scribbles/internal/queue"
)

// Handler turns activity events into timeline entries.
type Handler struct {
	activity cache.ActivityCache
	log      *zap.Logger
}

// NewHandler creates a new event handler.
func NewHandler(activity cache.ActivityCache, log *zap.Logger) *Handler {
	return &Handler{activity: activity, log: log.Named("Handler")}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.BlogEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventPostCreated:
		err = h.handlePostCreated(ctx, event)
	case queue.EventPostLiked:
		err = h.handlePostLiked(ctx, event)
	case queue.EventPostUnliked:
		err = h.handlePostUnliked(ctx, event)
	case queue.EventCommentAdded:
		err = h.handleCommentAdded(ctx, event)
	default:
		h.log.Warn("Unknown event type", zap.String("type", event.Type))
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		h.log.Error("HandleEvent FAILED",
			zap.String("type", event.Type),
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(err),
		)
		return err
	}

	h.log.Debug("HandleEvent OK", zap.String("type", event.Type), zap.Duration("duration", time.Since(startTime)))
	return nil
}

// handlePostCreated records the post on its author's own timeline.
func (h *Handler) handlePostCreated(ctx context.Context, event queue.BlogEvent) error {
	return h.activity.Record(ctx, event.Author, activityFrom(model.ActivityPostCreated, event))
}

// handlePostLiked tells the post author who liked their post.
func (h *Handler) handlePostLiked(ctx context.Context, event queue.BlogEvent) error {
	// Liking your own post is not news
	if event.Actor == event.Author {
		return nil
	}
	if err := h.activity.Record(ctx, event.Author, activityFrom(model.ActivityPostLiked, event)); err != nil {
		return fmt.Errorf("record like: %w", err)
	}
	return nil
}

// handlePostUnliked withdraws every earlier like by the same actor, including
// one whose event has not been handled yet.
func (h *Handler) handlePostUnliked(ctx context.Context, event queue.BlogEvent) error {
	if event.Actor == event.Author {
		return nil
	}
	if err := h.activity.RemoveLike(ctx, event.Author, event.PostID, event.Actor, eventTime(event)); err != nil {
		return fmt.Errorf("remove like: %w", err)
	}
	return nil
}

// handleCommentAdded tells the post author about a new comment.
func (h *Handler) handleCommentAdded(ctx context.Context, event queue.BlogEvent) error {
	if event.Actor == event.Author {
		return nil
	}
	if err := h.activity.Record(ctx, event.Author, activityFrom(model.ActivityCommentAdded, event)); err != nil {
		return fmt.Errorf("record comment: %w", err)
	}
	return nil
}

func activityFrom(activityType string, event queue.BlogEvent) model.Activity {
	return model.Activity{
		Type:      activityType,
		PostID:    event.PostID,
		Actor:     event.Actor,
		CommentID: event.CommentID,
		CreatedAt: eventTime(event),
	}
}

func eventTime(event queue.BlogEvent) time.Time {
	return time.UnixMilli(event.Timestamp).UTC()
}
