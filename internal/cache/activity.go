package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"scribbles/internal/model"
)

const (
	// ActivityCachePrefix is the key prefix for per-user activity timelines
	ActivityCachePrefix = "activity:user:"

	// UnlikePrefix is the key prefix for per-user withdrawn-like markers
	UnlikePrefix = "activity:unliked:"

	// ActivityCacheCap is the maximum number of entries kept per user
	ActivityCacheCap = 100

	// ActivityCacheTTL is the TTL for an activity timeline (30 days)
	ActivityCacheTTL = 30 * 24 * time.Hour
)

// ActivityCache stores each user's recent activity, newest first.
type ActivityCache interface {
	// Record adds an entry to username's timeline and trims it to the cap.
	// Recording the same entry twice keeps a single copy.
	Record(ctx context.Context, username string, entry model.Activity) error

	// RemoveLike withdraws actor's likes of postID made at or before at.
	// It may arrive before the like it withdraws; that like is then never shown.
	RemoveLike(ctx context.Context, username, postID, actor string, at time.Time) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, username string, limit int) ([]model.Activity, error)
}

// RedisActivityCache implements ActivityCache using a Redis Sorted Set per
// user scored by entry time in milliseconds. Unlikes are kept in a hash of
// "<post>|<actor>" -> newest unlike time, so likes and unlikes handled by
// different workers in either order end in the same timeline.
type RedisActivityCache struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

// NewActivityCache creates a new ActivityCache backed by Redis. prefix is
// prepended to every key so test runs can share a database.
func NewActivityCache(client *redis.Client, prefix string, log *zap.Logger) *RedisActivityCache {
	return &RedisActivityCache{client: client, prefix: prefix, log: log.Named("ActivityCache")}
}

func (c *RedisActivityCache) key(username string) string {
	return c.prefix + ActivityCachePrefix + username
}

func (c *RedisActivityCache) unlikeKey(username string) string {
	return c.prefix + UnlikePrefix + username
}

func unlikeField(postID, actor string) string {
	return postID + "|" + actor
}

// raiseUnlike stores ARGV[2] under field ARGV[1] unless a newer unlike is
// already there, and refreshes the TTL.
var raiseUnlike = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], ARGV[1])
if (not cur) or tonumber(cur) < tonumber(ARGV[2]) then
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
end
redis.call('EXPIRE', KEYS[1], ARGV[3])
return 1
`)

// Record adds the entry using a pipeline.
// Pipeline: ZADD + ZREMRANGEBYRANK (trim to cap) + EXPIRE (refresh TTL)
func (c *RedisActivityCache) Record(ctx context.Context, username string, entry model.Activity) error {
	key := c.key(username)
	startTime := time.Now()

	if entry.Type == model.ActivityPostLiked {
		withdrawn, err := c.withdrawnAt(ctx, username, entry.PostID, entry.Actor)
		if err != nil {
			return err
		}
		if withdrawn >= entry.CreatedAt.UnixMilli() {
			c.log.Debug("Record skipped withdrawn like", zap.String("user", username), zap.String("post", entry.PostID))
			return nil
		}
	}

	member, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(entry.CreatedAt.UnixMilli()),
		Member: string(member),
	})
	// 0 is the lowest score (oldest); keep the newest ActivityCacheCap entries
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-ActivityCacheCap-1))
	pipe.Expire(ctx, key, ActivityCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Error("Record FAILED", zap.String("user", username), zap.String("type", entry.Type), zap.Error(err))
		return fmt.Errorf("record activity: %w", err)
	}

	c.log.Debug("Record OK",
		zap.String("user", username),
		zap.String("type", entry.Type),
		zap.String("post", entry.PostID),
		zap.Duration("duration", time.Since(startTime)),
	)
	return nil
}

// RemoveLike marks the like as withdrawn, then drops matching entries already
// on the timeline. Recent filters by the marker, so a like recorded after this
// runs stays hidden.
func (c *RedisActivityCache) RemoveLike(ctx context.Context, username, postID, actor string, at time.Time) error {
	key := c.key(username)
	atMillis := at.UnixMilli()

	err := raiseUnlike.Run(ctx, c.client,
		[]string{c.unlikeKey(username)},
		unlikeField(postID, actor), atMillis, int64(ActivityCacheTTL/time.Second),
	).Err()
	if err != nil {
		c.log.Error("RemoveLike FAILED", zap.String("user", username), zap.Error(err))
		return fmt.Errorf("mark unlike: %w", err)
	}

	members, err := c.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(atMillis, 10),
	}).Result()
	if err != nil {
		c.log.Error("RemoveLike FAILED", zap.String("user", username), zap.Error(err))
		return fmt.Errorf("scan activity: %w", err)
	}

	var stale []interface{}
	for _, m := range members {
		var entry model.Activity
		if err := json.Unmarshal([]byte(m), &entry); err != nil {
			continue
		}
		if entry.Type == model.ActivityPostLiked && entry.PostID == postID && entry.Actor == actor {
			stale = append(stale, m)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	removed, err := c.client.ZRem(ctx, key, stale...).Result()
	if err != nil {
		c.log.Error("RemoveLike FAILED", zap.String("user", username), zap.Error(err))
		return fmt.Errorf("remove like activity: %w", err)
	}

	c.log.Debug("RemoveLike OK", zap.String("user", username), zap.String("post", postID), zap.Int64("removed", removed))
	return nil
}

// Recent reads the timeline newest first, hides withdrawn likes and refreshes
// the TTL.
func (c *RedisActivityCache) Recent(ctx context.Context, username string, limit int) ([]model.Activity, error) {
	key := c.key(username)
	if limit <= 0 || limit > ActivityCacheCap {
		limit = ActivityCacheCap
	}

	// The timeline is capped, so read it whole and filter
	members, err := c.client.ZRevRange(ctx, key, 0, -1).Result()
	if err != nil {
		c.log.Error("Recent FAILED", zap.String("user", username), zap.Error(err))
		return nil, fmt.Errorf("get activity: %w", err)
	}
	unliked, err := c.client.HGetAll(ctx, c.unlikeKey(username)).Result()
	if err != nil {
		c.log.Error("Recent FAILED", zap.String("user", username), zap.Error(err))
		return nil, fmt.Errorf("get unlikes: %w", err)
	}

	// Refresh TTL on access
	c.client.Expire(ctx, key, ActivityCacheTTL)

	entries := make([]model.Activity, 0, min(len(members), limit))
	for _, m := range members {
		if len(entries) == limit {
			break
		}
		var entry model.Activity
		if err := json.Unmarshal([]byte(m), &entry); err != nil {
			c.log.Warn("Recent skipped malformed entry", zap.String("user", username), zap.Error(err))
			continue
		}
		if entry.Type == model.ActivityPostLiked && withdrawn(unliked, entry) {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// withdrawnAt returns the newest unlike time in milliseconds, or -1.
func (c *RedisActivityCache) withdrawnAt(ctx context.Context, username, postID, actor string) (int64, error) {
	raw, err := c.client.HGet(ctx, c.unlikeKey(username), unlikeField(postID, actor)).Result()
	if errors.Is(err, redis.Nil) {
		return -1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get unlike: %w", err)
	}
	at, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return -1, nil
	}
	return at, nil
}

func withdrawn(unliked map[string]string, entry model.Activity) bool {
	raw, ok := unliked[unlikeField(entry.PostID, entry.Actor)]
	if !ok {
		return false
	}
	at, err := strconv.ParseInt(raw, 10, 64)
	return err == nil && at >= entry.CreatedAt.UnixMilli()
}
