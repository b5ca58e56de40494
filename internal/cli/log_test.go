package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerWrites(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	if logger == nil {
		t.Fatal("newLogger returned nil")
	}

	logger.Info("loaded snapshot")
	if buf.Len() == 0 {
		t.Error("expected output from Info at info level")
	}
}

func TestNewLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info passes at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("built topology") },
			wantLog: true,
		},
		{
			name:    "debug suppressed at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("cache key") },
			wantLog: false,
		},
		{
			name:    "debug passes at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("cache key") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			if gotLog := buf.Len() > 0; gotLog != tt.wantLog {
				t.Errorf("got output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	prog := newProgress(logger)
	if prog == nil {
		t.Fatal("newProgress returned nil")
	}

	// Sleep long enough for the elapsed duration to be non-zero.
	time.Sleep(10 * time.Millisecond)

	prog.done("analysis completed")

	if buf.Len() == 0 {
		t.Fatal("progress.done should log")
	}
	if !bytes.Contains(buf.Bytes(), []byte("analysis completed")) {
		t.Error("progress.done output should carry the message")
	}
}

func TestWithLoggerRoundTrip(t *testing.T) {
	logger := log.Default()
	ctx := withLogger(context.Background(), logger)

	if got := loggerFromContext(ctx); got != logger {
		t.Error("loggerFromContext should return the logger stored on the context")
	}
}

func TestLoggerFromContextFallback(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Error("loggerFromContext should fall back to the default logger")
	}
}

func TestLoggerFromContextCustom(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)

	ctx := withLogger(context.Background(), custom)
	got := loggerFromContext(ctx)
	if got != custom {
		t.Fatal("loggerFromContext should return the custom logger")
	}

	got.Info("handled request")
	if buf.Len() == 0 {
		t.Error("retrieved logger should write to its original sink")
	}
}
