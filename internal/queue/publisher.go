package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publisher defines the interface for publishing events to a stream.
type Publisher interface {
	// Publish adds an event to the specified stream.
	// Returns the message ID assigned by the backend.
	Publish(ctx context.Context, stream string, event BlogEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
	maxLen int64
	log    *zap.Logger
}

// NewPublisher creates a new Publisher backed by Redis Streams. maxLen caps
// the stream approximately; zero leaves it unbounded.
func NewPublisher(client *redis.Client, maxLen int64, log *zap.Logger) Publisher {
	return &RedisPublisher{client: client, maxLen: maxLen, log: log.Named("Publisher")}
}

// Publish adds an event to the stream using XADD.
// Uses "*" for auto-generated message ID (timestamp-sequence).
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event BlogEvent) (string, error) {
	startTime := time.Now()

	values, err := event.ToMap()
	if err != nil {
		p.log.Error("Publish FAILED", zap.String("stream", stream), zap.String("type", event.Type), zap.Error(err))
		return "", fmt.Errorf("serialize event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	messageID, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		p.log.Error("Publish FAILED", zap.String("stream", stream), zap.String("type", event.Type), zap.Error(err))
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	p.log.Debug("Publish OK",
		zap.String("stream", stream),
		zap.String("type", event.Type),
		zap.String("msgID", messageID),
		zap.String("post", event.PostID),
		zap.String("actor", event.Actor),
		zap.Duration("duration", time.Since(startTime)),
	)
	return messageID, nil
}

// NoopPublisher drops every event. Used when no Redis is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, stream string, event BlogEvent) (string, error) {
	return "", nil
}
