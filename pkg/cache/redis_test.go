package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shuliangfu/render-sub000/pkg/metadata"
)

// Requires a running Redis; set REDIS_ADDR to run.
func TestRedisStoreIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	store := NewRedisStore(client, WithRedisPrefix("renderkit-test:"))
	ctx := context.Background()

	if err := store.Set(ctx, "k", &metadata.Metadata{Title: "T", OG: map[string]string{"type": "website"}}, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	defer store.Delete(ctx, "k")

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || got.Title != "T" || got.OG["type"] != "website" {
		t.Errorf("got %+v", got)
	}

	if miss, err := store.Get(ctx, "absent"); miss != nil || err != nil {
		t.Errorf("miss should be (nil, nil), got %v, %v", miss, err)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got, _ := store.Get(ctx, "k"); got != nil {
		t.Error("deleted entry should read as a miss")
	}
}
