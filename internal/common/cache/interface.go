package cache

import (
	"context"
	"time"
)

// Cache is the key-value surface the judge needs: cache-aside reads on
// questions and the live status store. Get returns "" on a miss rather
// than an error; Set with ttl 0 stores without expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error
	Close() error
}
