package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pedigree/pkg/observability"
)

// logHooks reports pipeline and cache events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnLayoutStart(_ context.Context, individuals int) {
	h.logger.Debug("layout started", "individuals", individuals)
}

func (h logHooks) OnLayoutComplete(_ context.Context, individuals, generations int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "individuals", individuals, "err", err)
		return
	}
	h.logger.Debug("layout finished", "individuals", individuals, "generations", generations, "duration", d)
}

func (h logHooks) OnBatchStart(_ context.Context, jobs int) {
	h.logger.Debug("batch started", "jobs", jobs)
}

func (h logHooks) OnBatchComplete(_ context.Context, jobs, failed int, d time.Duration) {
	h.logger.Debug("batch finished", "jobs", jobs, "failed", failed, "duration", d)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

// setHooks routes observability events to the logger when it is verbose.
func setHooks(l *log.Logger) {
	if l.GetLevel() > log.DebugLevel {
		return
	}
	h := logHooks{logger: l}
	observability.SetLayoutHooks(h)
	observability.SetCacheHooks(h)
}
