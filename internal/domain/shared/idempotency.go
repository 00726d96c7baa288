package shared

import (
	"context"
	"time"
)

// LockStore hands out short-lived named locks. It guards work that must not
// run twice concurrently, such as charging one billing cycle.
type LockStore interface {
	// Acquire takes the lock for key until ttl elapses or Release is called.
	// Returns false if someone else already holds it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release drops the lock early
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
