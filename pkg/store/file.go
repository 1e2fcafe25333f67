package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileStore implements a file-based store for CLI usage.
// Each key is stored as a JSON envelope in its own file.
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore creates a file-based store in the given directory.
// The directory will be created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, ErrNotConfigured
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// fileEntry wraps stored data with metadata.
type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Dir returns the directory backing the store.
func (s *FileStore) Dir() string { return s.dir }

// Get retrieves a value from the store.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, err
	}
	return entry.Data, true, nil
}

// Set stores a value. The file is replaced atomically so a crash mid-write
// never leaves a truncated layout behind.
func (s *FileStore) Set(ctx context.Context, key string, data []byte) error {
	entryData, err := json.Marshal(fileEntry{Key: key, Data: data, UpdatedAt: s.now().UTC()})
	if err != nil {
		return err
	}

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(entryData); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes a value from the store.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for file store.
func (s *FileStore) Close() error {
	return nil
}

// Clear removes every entry in the store directory.
func (s *FileStore) Clear(ctx context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// path converts a key to a file path.
// Uses a hash-based directory structure so arbitrary keys map to safe names.
func (s *FileStore) path(key string) string {
	hash := Hash([]byte(key))
	// Use first 2 chars as subdirectory for distribution
	return filepath.Join(s.dir, hash[:2], hash[2:]+".json")
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
