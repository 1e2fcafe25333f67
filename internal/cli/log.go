// Package cli implements the gridboard command-line interface.
//
// This package provides commands for inspecting and editing a persisted
// dashboard layout, an interactive terminal editor with mouse drag & drop,
// an HTTP API server, and layout import/export. The CLI is built using cobra
// and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - show, list, types: Inspect the layout and the widget catalog
//   - add, remove, move, swap, resize, compact, reset: Edit the layout
//   - edit: Interactive editor driven by mouse gestures
//   - serve: JSON API over the same layout
//   - export, import: Convert layouts to and from files
//   - store, config: Manage the backing store and configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger builds the CLI logger. Timestamps read "15:04:05.00" so
// debounced writes and gesture timers can be told apart in --verbose output.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// timer logs one completed operation with its duration.
type timer struct {
	logger *log.Logger
	start  time.Time
}

func startTimer(l *log.Logger) timer {
	return timer{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and a "took" field.
func (t timer) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "took", time.Since(t.start).Round(time.Millisecond))
	t.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
