package ports

import (
	"context"
	"time"
)

// KVStore is the string key-value store backing participant positions.
type KVStore interface {
	// Get returns the value stored under key.
	// Returns domain.ErrKeyNotFound if the key is absent or expired.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key. A ttl of zero means the key never expires.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// KeyLister is implemented by stores that can enumerate their keys.
type KeyLister interface {
	// Keys returns the live keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
