package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("layout saved") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("drag moved") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("drag moved") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))

			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestTimerDone(t *testing.T) {
	var buf bytes.Buffer
	tm := startTimer(newLogger(&buf, log.InfoLevel))

	tm.done("exported", "dashboard", "ops", "format", "svg")

	out := buf.String()
	for _, want := range []string{"exported", "dashboard=ops", "format=svg", "took="} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext without a logger should return log.Default()")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	got := loggerFromContext(withLogger(context.Background(), custom))
	if got != custom {
		t.Fatal("loggerFromContext should return the attached logger")
	}
	got.Info("session opened")
	if buf.Len() == 0 {
		t.Error("attached logger should write to its buffer")
	}
}
