// Package store persists gridboard layouts behind a small key-value
// capability interface.
//
// # Backends
//
//   - [RedisStore]: cloud-backed, github.com/redis/go-redis/v9
//   - [MongoStore]: cloud-backed, go.mongodb.org/mongo-driver
//   - [SQLiteStore]: local fallback, modernc.org/sqlite (pure Go)
//   - [FileStore]: local fallback, one JSON file per key
//   - [MemoryStore]: process-local, used by tests and as the last resort
//   - [NullStore]: discards writes
//
// # Selection
//
// [Open] picks exactly one backend at construction time by walking a
// preference chain. Callers hold the returned [Store] and never re-probe
// backends per call:
//
//	s, backend, err := store.Open(ctx, store.Config{Backend: store.BackendAuto, FileDir: dir})
//	defer s.Close()
//	s = store.Scoped(s, "gridboard:default:")
//
// Connection attempts for network backends use [Backoff.Retry]; only errors
// marked with [Retryable] are retried.
package store

import "context"

// Store is a byte-oriented key-value store.
type Store interface {
	// Get returns the value under key. A missing key is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the store.
	Close() error
}
