// Package kvstore is the key-value persistence boundary, with a local
// SQLite backend and a remote REST backend selected by the composition root.
package kvstore

import "context"

// Store is a minimal get/set-by-key blob store. Values are UTF-8
// JSON-serialized payloads owned by the callers.
type Store interface {
	// Get returns the value for key, or apperr.ErrNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Close releases backend resources.
	Close() error
}
