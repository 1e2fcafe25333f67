package store

import "context"

// ScopedStore wraps a Store with a key prefix so several dashboards can share
// one backend.
//
// Example usage:
//
//	work := Scoped(base, "gridboard:work:")
//	home := Scoped(base, "gridboard:home:")
type ScopedStore struct {
	inner  Store
	prefix string
}

// Scoped creates a store that prepends prefix to every key.
// Closing the scoped store closes the inner store.
func Scoped(inner Store, prefix string) *ScopedStore {
	if inner == nil {
		inner = NewNullStore()
	}
	return &ScopedStore{inner: inner, prefix: prefix}
}

// Prefix returns the key prefix.
func (s *ScopedStore) Prefix() string { return s.prefix }

// Get reads the prefixed key.
func (s *ScopedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

// Set writes the prefixed key.
func (s *ScopedStore) Set(ctx context.Context, key string, data []byte) error {
	return s.inner.Set(ctx, s.prefix+key, data)
}

// Delete removes the prefixed key.
func (s *ScopedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close closes the inner store.
func (s *ScopedStore) Close() error {
	return s.inner.Close()
}

// Ensure ScopedStore implements Store.
var _ Store = (*ScopedStore)(nil)
