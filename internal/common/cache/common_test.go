package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"examjudge/internal/common/cache"
)

func newTestCache(t *testing.T) cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c, err := cache.NewRedisCacheWithClient(client)
	if err != nil {
		t.Fatalf("new cache failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestGetWithCachedFetchesOnMissAndServesFromCache(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	fetches := 0
	fetch := func(ctx context.Context) (string, error) {
		fetches++
		return "payload", nil
	}

	for i := 0; i < 2; i++ {
		got, err := cache.GetWithCached(
			context.Background(), c, "k1", time.Minute, time.Second,
			func(s string) bool { return s == "" },
			func(s string) string { return s },
			func(s string) (string, error) { return s, nil },
			fetch,
		)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got != "payload" {
			t.Fatalf("value = %q, want payload", got)
		}
	}
	if fetches != 1 {
		t.Fatalf("fetch called %d times, want 1", fetches)
	}
}

func TestGetWithCachedCachesEmptyResult(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	fetches := 0
	fetch := func(ctx context.Context) (string, error) {
		fetches++
		return "", nil
	}

	for i := 0; i < 2; i++ {
		got, err := cache.GetWithCached(
			context.Background(), c, "missing", time.Minute, time.Minute,
			func(s string) bool { return s == "" },
			func(s string) string { return s },
			func(s string) (string, error) { return s, nil },
			fetch,
		)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got != "" {
			t.Fatalf("value = %q, want empty", got)
		}
	}
	if fetches != 1 {
		t.Fatalf("fetch called %d times, want 1 with the miss cached", fetches)
	}
}

func TestUpdateCachedInvalidatesKey(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	ctx := context.Background()
	if err := c.Set(ctx, "k1", "stale", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	err := cache.UpdateCached(ctx, c, "k1", func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got, _ := c.Get(ctx, "k1"); got != "" {
		t.Fatalf("cache not invalidated, still holds %q", got)
	}
}

func TestUpdateCachedKeepsKeyOnWriteFailure(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)
	ctx := context.Background()
	if err := c.Set(ctx, "k1", "current", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	wantErr := errors.New("write failed")
	err := cache.UpdateCached(ctx, c, "k1", func(ctx context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want the write error", err)
	}
	if got, _ := c.Get(ctx, "k1"); got != "current" {
		t.Fatalf("cache dropped on failed write, got %q", got)
	}
}

func TestJitterTTLStaysWithinBounds(t *testing.T) {
	t.Parallel()
	base := time.Hour
	for i := 0; i < 100; i++ {
		got := cache.JitterTTL(base)
		if got > base || got < base-base/10 {
			t.Fatalf("jittered ttl %v outside [%v, %v]", got, base-base/10, base)
		}
	}
	if got := cache.JitterTTL(0); got != 0 {
		t.Fatalf("zero ttl jittered to %v", got)
	}
}
