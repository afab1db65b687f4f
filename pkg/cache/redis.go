package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shuliangfu/render-sub000/pkg/metadata"
)

// RedisStore is a Redis-backed metadata cache for multi-server
// deployments. Entries are stored as JSON; expiry is delegated to Redis
// key TTLs, with a zero TTL meaning no expiry.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisStoreOption configures RedisStore behavior.
type RedisStoreOption func(*RedisStore)

// WithRedisPrefix sets the key prefix. Default: "renderkit:metadata:".
func WithRedisPrefix(prefix string) RedisStoreOption {
	return func(r *RedisStore) {
		r.prefix = prefix
	}
}

// NewRedisStore creates a Redis-backed metadata cache around an existing
// client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	r := &RedisStore{
		client: client,
		prefix: "renderkit:metadata:",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisStore) key(k string) string { return r.prefix + k }

// Get retrieves cached metadata, returning (nil, nil) when the key does
// not exist.
func (r *RedisStore) Get(ctx context.Context, key string) (*metadata.Metadata, error) {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var md metadata.Metadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return nil, err
	}
	return &md, nil
}

// Set stores metadata with the given TTL.
func (r *RedisStore) Set(ctx context.Context, key string, md *metadata.Metadata, ttl time.Duration) error {
	raw, err := json.Marshal(md)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, r.key(key), raw, ttl).Err()
}

// Delete removes an entry.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}
