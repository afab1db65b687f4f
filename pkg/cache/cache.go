package cache

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shuliangfu/render-sub000/pkg/component"
	"github.com/shuliangfu/render-sub000/pkg/metadata"
)

// DefaultPrefix namespaces metadata cache keys.
const DefaultPrefix = "metadata"

// Store is the pluggable backend for resolved metadata.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get retrieves cached metadata by key.
	// Returns (nil, nil) on a miss or an expired entry.
	Get(ctx context.Context, key string) (*metadata.Metadata, error)

	// Set stores metadata under key. A non-positive ttl means no expiry.
	// An existing entry for key is overwritten.
	Set(ctx context.Context, key string, md *metadata.Metadata, ttl time.Duration) error

	// Delete removes an entry. Absent keys are not an error.
	Delete(ctx context.Context, key string) error
}

// Entry is a stored value with its expiry. A zero ExpiresAt means the
// entry never expires.
type Entry struct {
	Value     *metadata.Metadata
	ExpiresAt time.Time
}

// Expired reports whether the entry is past its expiry at time now.
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// KeyFunc lets callers supply their own cache key derivation.
type KeyFunc func(rc *component.Context) string

// Key builds the default cache key: "{prefix}:{url}" plus the sorted
// "k=v" parameter pairs joined by "&". Deterministic regardless of the
// parameter map's insertion order.
func Key(rc *component.Context, prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	rc = rc.Normalize()

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte(':')
	b.WriteString(rc.URL)

	if len(rc.Params) > 0 {
		keys := make([]string, 0, len(rc.Params))
		for k := range rc.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteByte('?')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(rc.Params[k])
		}
	}
	return b.String()
}

// CacheMetadata writes resolved metadata through the store, deriving the
// key from keyFn or the default generator.
func CacheMetadata(ctx context.Context, store Store, rc *component.Context, md *metadata.Metadata, ttl time.Duration, keyFn KeyFunc) error {
	if store == nil || md == nil {
		return nil
	}
	return store.Set(ctx, resolveKey(rc, keyFn), md, ttl)
}

// CachedMetadata reads previously resolved metadata, deriving the key the
// same way as CacheMetadata. Returns (nil, nil) on a miss.
func CachedMetadata(ctx context.Context, store Store, rc *component.Context, keyFn KeyFunc) (*metadata.Metadata, error) {
	if store == nil {
		return nil, nil
	}
	return store.Get(ctx, resolveKey(rc, keyFn))
}

func resolveKey(rc *component.Context, keyFn KeyFunc) string {
	if keyFn != nil {
		return keyFn(rc)
	}
	return Key(rc, DefaultPrefix)
}
