package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner animates a status line on out while a store connects. It stops on
// its own when ctx is cancelled.
type Spinner struct {
	out     io.Writer
	message string
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	start   time.Time
	running bool

	mu   sync.Mutex
	once sync.Once
}

func newSpinner(ctx context.Context, out io.Writer, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		out:     out,
		message: message,
		parent:  ctx,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.start = time.Now()
	s.running = true
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			s.draw(spinnerFrames[i%len(spinnerFrames)])
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
}

// Stop ends the animation and clears the line. It is safe to call more than
// once and returns the time since Start.
func (s *Spinner) Stop() time.Duration {
	s.once.Do(func() {
		close(s.done)
		if s.running {
			<-s.stopped
		}
		s.cancel()
		s.clearLine()
	})
	return time.Since(s.start)
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len([]rune(s.message))+2))
}

// Done stops the spinner and leaves a success line with the elapsed time.
func (s *Spinner) Done(message string) {
	d := s.Stop().Round(time.Millisecond)
	fmt.Fprintf(s.out, "%s %s %s\n", styleIconSuccess.Render(iconSuccess), message, StyleDim.Render("("+d.String()+")"))
}

// Fail stops the spinner and leaves an error line.
func (s *Spinner) Fail(message string) {
	s.Stop()
	fmt.Fprintf(s.out, "%s %s\n", styleIconError.Render(iconError), message)
}

// Cancelled reports whether the context the spinner was created with ended.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
