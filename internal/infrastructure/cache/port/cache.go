package port

import (
	"context"
	"time"
)

// Cache is the key-value cache contract used by the read side of the
// messaging API. Implementations must be safe for concurrent use and honor
// caller-driven timeouts via the context.
//
// Values are plain strings; serialization stays with the caller so the port
// does not take a position on encoding.
type Cache interface {
	// Get fetches the value for key. A miss is reported as ("", ErrMiss);
	// any other non-nil error is a transport or server failure.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key with the provided TTL. Zero or negative TTL
	// means no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes one or more keys and returns the number of keys removed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Ping verifies connectivity with the cache backend.
	Ping(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// ErrMiss signals a cache miss in a typed way so callers can tell misses
// apart from transport errors.
var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }
