// Package cache defines the key/value store contract shared by the cache
// tiers and provides the concrete implementations: an in-process memory
// store (volatile tier) and SQLite- and Redis-backed stores (durable tier).
//
// Stores are deliberately dumb byte stores. Freshness (TTL) lives in the
// service layer, which encodes creation timestamps into the values it
// writes; this keeps every store interchangeable and the fallback ordering
// explicit in one place (services.TimesService).
package cache

import "context"

// Store is the capability set every cache tier implements.
//
// Get returns (value, true, nil) on a hit and (nil, false, nil) on a clean
// miss; the error is reserved for store-level failures (I/O, connectivity).
// Set overwrites unconditionally. Invalidate removes a key; removing an
// absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Invalidate(ctx context.Context, key string) error
}
