package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// exerciseStore runs the common contract every backend must satisfy.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	// Missing key is a clean miss
	data, ok, err := s.Get(ctx, "missing")
	if err != nil || ok || data != nil {
		t.Fatalf("Get(missing) = %q, %v, %v", data, ok, err)
	}

	if err := s.Set(ctx, "layout", []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, ok, err = s.Get(ctx, "layout")
	if err != nil || !ok {
		t.Fatalf("Get(layout) = %v, %v", ok, err)
	}
	if !bytes.Equal(data, []byte(`[{"id":"a"}]`)) {
		t.Errorf("Get(layout) = %q", data)
	}

	// Overwrite replaces
	if err := s.Set(ctx, "layout", []byte(`[]`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	data, _, _ = s.Get(ctx, "layout")
	if string(data) != "[]" {
		t.Errorf("after overwrite Get = %q", data)
	}

	if err := s.Delete(ctx, "layout"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "layout"); ok {
		t.Error("key still present after Delete")
	}
	if err := s.Delete(ctx, "layout"); err != nil {
		t.Errorf("Delete(missing) = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)

	// Stored values are copies
	ctx := context.Background()
	buf := []byte("abc")
	_ = s.Set(ctx, "k", buf)
	buf[0] = 'z'
	got, _, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("MemoryStore aliased caller buffer: %q", got)
	}

	_ = s.Close()
	if _, _, err := s.Get(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close = %v, want ErrClosed", err)
	}
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)

	// Persisted across instances
	ctx := context.Background()
	_ = s.Set(ctx, "gridboard:default:layout", []byte("x"))
	s2, _ := NewFileStore(dir)
	got, ok, _ := s2.Get(ctx, "gridboard:default:layout")
	if !ok || string(got) != "x" {
		t.Errorf("second instance Get = %q, %v", got, ok)
	}

	if err := s2.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "gridboard:default:layout"); ok {
		t.Error("key survived Clear")
	}
}

func TestFileStoreCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("v"))

	if err := os.WriteFile(s.path("k"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Get(ctx, "k"); err == nil {
		t.Error("corrupt entry should surface an error")
	}
}

func TestFileStoreNotConfigured(t *testing.T) {
	if _, err := NewFileStore(""); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("NewFileStore(\"\") = %v", err)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "gridboard.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)

	ctx := context.Background()
	_ = s.Set(ctx, "a", []byte("1"))
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "a"); ok {
		t.Error("key survived Clear")
	}
}

func TestSQLiteStoreMemory(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	s := NewNullStore()
	defer s.Close()

	if err := s.Set(ctx, "key", []byte("value")); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ := s.Get(ctx, "key"); hit {
		t.Error("NullStore should not store data")
	}
	if err := s.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestScopedStore(t *testing.T) {
	ctx := context.Background()
	base := NewMemoryStore()
	work := Scoped(base, "gridboard:work:")
	home := Scoped(base, "gridboard:home:")

	_ = work.Set(ctx, "layout", []byte("w"))
	_ = home.Set(ctx, "layout", []byte("h"))

	got, _, _ := work.Get(ctx, "layout")
	if string(got) != "w" {
		t.Errorf("work layout = %q", got)
	}
	raw, ok, _ := base.Get(ctx, "gridboard:home:layout")
	if !ok || string(raw) != "h" {
		t.Errorf("prefixed key not written: %q, %v", raw, ok)
	}
	exerciseStore(t, Scoped(base, "x:"))

	if _, ok, _ := Scoped(nil, "p:").Get(ctx, "k"); ok {
		t.Error("nil inner should behave like NullStore")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrUnavailable)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("wrapped error should unwrap to ErrUnavailable")
	}
	if err.Error() != ErrUnavailable.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrNotConfigured) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestBackoffRetry(t *testing.T) {
	ctx := context.Background()
	fast := Backoff{Attempts: 3, Delay: time.Millisecond}

	calls := 0
	err := fast.Retry(ctx, func() error {
		calls++
		if calls < 3 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("Retry = %v after %d calls, want success after 3", err, calls)
	}

	calls = 0
	err = fast.Retry(ctx, func() error {
		calls++
		return ErrNotConfigured
	})
	if err != ErrNotConfigured || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = fast.Retry(ctx, func() error {
		calls++
		return Retryable(ErrUnavailable)
	})
	if !errors.Is(err, ErrUnavailable) || calls != 3 {
		t.Errorf("exhausted: err=%v calls=%d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
