package ports

import (
	"context"
	"time"
)

// Cache is the shared key-value store behind the UISP client list cache and
// the image prompt history. Callers treat errors as a miss and go to the
// source of truth.
type Cache interface {
	// Get returns the stored bytes; ok is false on a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set stores value under key. A non-positive ttl keeps it until deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete drops key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error
}
