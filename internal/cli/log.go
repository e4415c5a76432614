// Package cli implements the pedigree command-line interface.
//
// The CLI reads pedigrees from JSON or TOML files, lays them out with the
// pipeline runner and writes layout documents next to the input. Results
// are cached in the XDG cache directory, or in Redis when
// PEDIGREE_REDIS_URL is set. The CLI is built using cobra and logs with
// charmbracelet/log.
//
// # Commands
//
//   - layout: Lay out one pedigree and write <input>.layout.json
//   - depth: Print the generation of every individual
//   - batch: Lay out many pedigree files concurrently
//   - cache: Inspect or clear the layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so long-running stages can report
// progress.
//
// # Configuration
//
// Defaults for every layout flag can be set in pedigree.toml under the XDG
// config directory or in the file named by --config. Flags given on the
// command line win over the file.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger that writes to w with "15:04:05.00" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the elapsed time of an operation when it completes.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Laid out 3 pedigrees (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a copy of ctx carrying l.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger stored in ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
