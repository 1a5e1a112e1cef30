package cache

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scribbles/internal/model"
)

func setupActivityCache(t *testing.T) (*RedisActivityCache, *redis.Client) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	opts.DB = 1

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available, skipping test: %v", err)
	}

	c := NewActivityCache(client, "test:cache:", zap.NewNop())
	t.Cleanup(func() {
		client.Del(context.Background(), c.key("alice"), c.unlikeKey("alice"))
		client.Close()
	})
	client.Del(context.Background(), c.key("alice"), c.unlikeKey("alice"))
	return c, client
}

func at(minute int) time.Time {
	return time.Date(2025, 4, 25, 10, minute, 0, 0, time.UTC)
}

func TestRedisActivityCache_RecentNewestFirst(t *testing.T) {
	c, _ := setupActivityCache(t)
	ctx := context.Background()

	require.NoError(t, c.Record(ctx, "alice", model.Activity{Type: model.ActivityPostCreated, PostID: "p1", Actor: "alice", CreatedAt: at(0)}))
	require.NoError(t, c.Record(ctx, "alice", model.Activity{Type: model.ActivityCommentAdded, PostID: "p1", Actor: "bob", CommentID: "c1", CreatedAt: at(2)}))
	require.NoError(t, c.Record(ctx, "alice", model.Activity{Type: model.ActivityPostLiked, PostID: "p1", Actor: "bob", CreatedAt: at(1)}))

	got, err := c.Recent(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, model.ActivityCommentAdded, got[0].Type)
	assert.Equal(t, "c1", got[0].CommentID)
	assert.Equal(t, model.ActivityPostLiked, got[1].Type)
	assert.True(t, got[2].CreatedAt.Equal(at(0)))

	limited, err := c.Recent(ctx, "alice", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRedisActivityCache_DuplicateRecordKeepsOne(t *testing.T) {
	c, _ := setupActivityCache(t)
	ctx := context.Background()
	entry := model.Activity{Type: model.ActivityPostLiked, PostID: "p1", Actor: "bob", CreatedAt: at(0)}

	require.NoError(t, c.Record(ctx, "alice", entry))
	require.NoError(t, c.Record(ctx, "alice", entry))

	got, err := c.Recent(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRedisActivityCache_CapAndTTL(t *testing.T) {
	c, client := setupActivityCache(t)
	ctx := context.Background()

	for i := 0; i < ActivityCacheCap+5; i++ {
		entry := model.Activity{Type: model.ActivityPostCreated, PostID: "p", Actor: "alice", CreatedAt: at(0).Add(time.Duration(i) * time.Second)}
		entry.PostID = entry.CreatedAt.Format(time.RFC3339)
		require.NoError(t, c.Record(ctx, "alice", entry))
	}

	size, err := client.ZCard(ctx, c.key("alice")).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(ActivityCacheCap), size)

	ttl, err := client.TTL(ctx, c.key("alice")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	// The oldest five were trimmed
	got, err := c.Recent(ctx, "alice", ActivityCacheCap)
	require.NoError(t, err)
	assert.True(t, got[len(got)-1].CreatedAt.Equal(at(0).Add(5*time.Second)))
}

func TestRedisActivityCache_RemoveLike(t *testing.T) {
	c, _ := setupActivityCache(t)
	ctx := context.Background()

	require.NoError(t, c.Record(ctx, "alice", model.Activity{Type: model.ActivityPostLiked, PostID: "p1", Actor: "bob", CreatedAt: at(0)}))
	require.NoError(t, c.Record(ctx, "alice", model.Activity{Type: model.ActivityPostLiked, PostID: "p1", Actor: "carol", CreatedAt: at(1)}))
	require.NoError(t, c.Record(ctx, "alice", model.Activity{Type: model.ActivityCommentAdded, PostID: "p1", Actor: "bob", CommentID: "c1", CreatedAt: at(2)}))

	require.NoError(t, c.RemoveLike(ctx, "alice", "p1", "bob", at(3)))
	require.NoError(t, c.RemoveLike(ctx, "alice", "p9", "bob", at(3)))

	got, err := c.Recent(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.ActivityCommentAdded, got[0].Type)
	assert.Equal(t, "carol", got[1].Actor)
}

func TestRedisActivityCache_UnlikeBeforeLike(t *testing.T) {
	c, client := setupActivityCache(t)
	ctx := context.Background()

	// The unlike at minute 1 is handled before the like at minute 0
	require.NoError(t, c.RemoveLike(ctx, "alice", "p1", "bob", at(1)))
	require.NoError(t, c.Record(ctx, "alice", model.Activity{Type: model.ActivityPostLiked, PostID: "p1", Actor: "bob", CreatedAt: at(0)}))

	got, err := c.Recent(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	ttl, err := client.TTL(ctx, c.unlikeKey("alice")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	// A like after the unlike is shown
	require.NoError(t, c.Record(ctx, "alice", model.Activity{Type: model.ActivityPostLiked, PostID: "p1", Actor: "bob", CreatedAt: at(2)}))
	got, err = c.Recent(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].CreatedAt.Equal(at(2)))
}

func TestRedisActivityCache_OlderUnlikeDoesNotLowerMarker(t *testing.T) {
	c, _ := setupActivityCache(t)
	ctx := context.Background()

	require.NoError(t, c.RemoveLike(ctx, "alice", "p1", "bob", at(5)))
	require.NoError(t, c.RemoveLike(ctx, "alice", "p1", "bob", at(1)))
	require.NoError(t, c.Record(ctx, "alice", model.Activity{Type: model.ActivityPostLiked, PostID: "p1", Actor: "bob", CreatedAt: at(3)}))

	got, err := c.Recent(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisActivityCache_RecentHidesLikeRecordedDuringUnlike(t *testing.T) {
	c, client := setupActivityCache(t)
	ctx := context.Background()

	require.NoError(t, c.RemoveLike(ctx, "alice", "p1", "bob", at(1)))

	// Written straight to the set, as if Record read the marker before it existed
	like := model.Activity{Type: model.ActivityPostLiked, PostID: "p1", Actor: "bob", CreatedAt: at(0)}
	member, err := json.Marshal(like)
	require.NoError(t, err)
	require.NoError(t, client.ZAdd(ctx, c.key("alice"), redis.Z{Score: float64(at(0).UnixMilli()), Member: string(member)}).Err())

	got, err := c.Recent(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisActivityCache_EmptyTimeline(t *testing.T) {
	c, _ := setupActivityCache(t)

	got, err := c.Recent(context.Background(), "alice", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}
