package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsAndDone(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), &out, "Connecting to store...")
	s.Start()
	time.Sleep(2 * spinnerInterval)
	s.Done("Connected to redis")

	got := out.String()
	if !strings.Contains(got, "Connecting to store...") {
		t.Errorf("output %q missing the spinner message", got)
	}
	if !strings.Contains(got, "Connected to redis") {
		t.Errorf("output %q missing the done message", got)
	}
	if s.Cancelled() {
		t.Error("Cancelled() = true after a normal stop")
	}
}

func TestSpinnerFail(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), &out, "Connecting to store...")
	s.Start()
	s.Fail("No store reachable")

	if !strings.Contains(out.String(), "No store reachable") {
		t.Errorf("output %q missing the failure message", out.String())
	}
}

func TestSpinnerStopsOnCancel(t *testing.T) {
	var out syncBuffer
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinner(ctx, &out, "Connecting to store...")
	s.Start()
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop after cancellation")
	}
	if !s.Cancelled() {
		t.Error("Cancelled() = false after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), &out, "Connecting to store...")
	s.Start()

	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), &out, "idle")

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a spinner that never started")
	}
}
