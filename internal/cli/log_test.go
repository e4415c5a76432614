package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pedigree/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("computed layout") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("cache hit") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("cache hit") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if gotLog := buf.Len() > 0; gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(10 * time.Millisecond)
	prog.done("Laid out 2 of 2 pedigrees")

	out := buf.String()
	if !strings.Contains(out, "Laid out 2 of 2 pedigrees (") {
		t.Errorf("progress output = %q, want message with elapsed time", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Error("loggerFromContext should return default logger when none set")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
}

func TestSetHooks(t *testing.T) {
	t.Cleanup(observability.Reset)
	ctx := context.Background()

	var quiet bytes.Buffer
	setHooks(newLogger(&quiet, log.InfoLevel))
	if _, ok := observability.Layout().(logHooks); ok {
		t.Fatal("hooks installed at info level")
	}

	var buf bytes.Buffer
	setHooks(newLogger(&buf, log.DebugLevel))
	observability.Layout().OnLayoutComplete(ctx, 4, 2, time.Millisecond, nil)
	observability.Layout().OnLayoutComplete(ctx, 4, 0, time.Millisecond, errors.New("cyclic"))
	observability.Cache().OnCacheHit(ctx, "layout")

	out := buf.String()
	for _, want := range []string{"layout finished", "layout failed", "cache hit"} {
		if !strings.Contains(out, want) {
			t.Errorf("debug log missing %q:\n%s", want, out)
		}
	}
}
