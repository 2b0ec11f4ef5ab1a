// Package storage provides the small key-value persistence seam used by the
// override store and other local caches.
package storage

import "context"

// KV is a minimal get/set-by-key persistence API.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Incr atomically increments a counter key and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
}
