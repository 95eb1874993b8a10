// Package cache holds the Redis-backed JSON cache used for free-slot lists
// and the short-lived leases that keep the expiry sweep single-flight.
package cache

import (
	"context"
	"time"
)

// Cache stores JSON values under string keys. A corrupt or expired entry is a
// miss, not an error.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
