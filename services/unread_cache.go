package services

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const unreadCountKey = "inbox:unread_total"

// UnreadCache caches the aggregate unread badge count so the long-interval
// badge poll does not hit the database on every request. A cache miss is
// normal; callers fall back to the store.
type UnreadCache interface {
	GetUnreadTotal(ctx context.Context) (count int64, ok bool)
	SetUnreadTotal(ctx context.Context, count int64)
	Invalidate(ctx context.Context)
}

// RedisUnreadCache implements UnreadCache on redis with a short TTL
type RedisUnreadCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var unreadCacheInstance UnreadCache

// InitUnreadCache connects the unread cache to redis. An empty addr leaves
// the cache disabled and every badge request goes to the database.
func InitUnreadCache(addr string, ttl time.Duration) UnreadCache {
	if addr == "" {
		unreadCacheInstance = nil
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	unreadCacheInstance = &RedisUnreadCache{rdb: rdb, ttl: ttl}
	return unreadCacheInstance
}

// GetUnreadCache returns the initialized unread cache instance, which may be nil
func GetUnreadCache() UnreadCache {
	return unreadCacheInstance
}

// SetUnreadCache sets the unread cache instance (primarily for testing)
func SetUnreadCache(cache UnreadCache) {
	unreadCacheInstance = cache
}

// NewRedisUnreadCache wraps an existing redis client (used by tests with miniredis)
func NewRedisUnreadCache(rdb *redis.Client, ttl time.Duration) *RedisUnreadCache {
	return &RedisUnreadCache{rdb: rdb, ttl: ttl}
}

// GetUnreadTotal returns the cached badge count if present
func (c *RedisUnreadCache) GetUnreadTotal(ctx context.Context) (int64, bool) {
	raw, err := c.rdb.Get(ctx, unreadCountKey).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("unread cache read failed: %v", err)
		}
		return 0, false
	}

	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

// SetUnreadTotal stores the badge count with the configured TTL
func (c *RedisUnreadCache) SetUnreadTotal(ctx context.Context, count int64) {
	if err := c.rdb.Set(ctx, unreadCountKey, strconv.FormatInt(count, 10), c.ttl).Err(); err != nil {
		log.Printf("unread cache write failed: %v", err)
	}
}

// Invalidate drops the cached count, forcing the next badge poll to the store.
// Called after writes that change what counts as unread.
func (c *RedisUnreadCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, unreadCountKey).Err(); err != nil {
		log.Printf("unread cache invalidate failed: %v", err)
	}
}
