package plancache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/parserator/kernel/types"
	"github.com/redis/go-redis/v9"
)

// Redis is a Cache backend over go-redis/v9, for deployments that want the
// plan cache to survive process restarts and be shared across kernel
// instances. Entries are stored as JSON under keyPrefix+key.
type Redis struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisOption configures a Redis cache at construction time.
type RedisOption func(*Redis)

// WithRedisKeyPrefix namespaces every key this cache writes, so multiple
// kernels (or profiles) can share one Redis instance without collisions.
func WithRedisKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.keyPrefix = prefix }
}

// WithRedisTTL sets the expiry applied to every write. Zero (the default)
// means entries never expire on their own and rely on Delete/Clear.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) { r.ttl = ttl }
}

// NewRedis constructs a Redis-backed Cache over an already-connected client.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{client: client, keyPrefix: "parserator:plan:"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) namespaced(key string) string { return r.keyPrefix + key }

func (r *Redis) Get(ctx context.Context, key string) (types.PlanCacheEntry, bool, error) {
	raw, err := r.client.Get(ctx, r.namespaced(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return types.PlanCacheEntry{}, false, nil
	}
	if err != nil {
		return types.PlanCacheEntry{}, false, err
	}
	var entry types.PlanCacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return types.PlanCacheEntry{}, false, err
	}
	return types.ClonePlanCacheEntry(entry), true, nil
}

func (r *Redis) Set(ctx context.Context, key string, entry types.PlanCacheEntry) error {
	raw, err := json.Marshal(types.ClonePlanCacheEntry(entry))
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.namespaced(key), raw, r.ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.namespaced(key)).Err()
}

// Clear removes every key under this cache's prefix. It scans rather than
// issuing FLUSHDB, since Redis may be shared with unrelated data.
func (r *Redis) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}
