package repository

import (
	"context"
	"time"
)

// IKeyValueCache is a best-effort cache. Backend failures surface as a miss
// (ok=false) or a no-op, never as an error.
type IKeyValueCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
	Delete(ctx context.Context, keys ...string) bool
	DeletePattern(ctx context.Context, pattern string) (int64, bool)
	Close() error
}
