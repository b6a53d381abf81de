// Package kv provides the small key-value substrate behind the local score store.
package kv

import (
	"context"
)

// Store is a flat key-value store. Values are opaque bytes, normally JSON.
type Store interface {
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put overwrites the value of key.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
