package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pedigree/pkg/cache"
	perrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/observability"
	"github.com/matzehuels/pedigree/pkg/pedigree"
)

// Runner encapsulates layout execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store results. Multiple goroutines can safely use the same Runner with
// different requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration // cache lifetime of a stored layout
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.DefaultLayoutTTL,
	}
}

// LayoutWithCacheInfo lays out one pedigree, serving it from the cache when
// the same pedigree, hints and options were laid out before. The returned
// bool reports a cache hit.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, req Request) (*Result, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if req.Pedigree == nil {
		return nil, false, perrors.New(perrors.ErrCodeInvalidInput, "request %q has no pedigree", req.Name)
	}
	opts := req.Options
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger.With("pedigree", req.Name)

	start := time.Now()
	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, req.Pedigree.Len())

	hash, err := PedigreeHash(req.Pedigree, req.Hints)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if res, ok := r.cached(ctx, logger, key); ok {
			res.ID = uuid.NewString()
			res.CacheInfo.LayoutHit = true
			res.Stats.Duration = time.Since(start)
			hooks.OnLayoutComplete(ctx, res.Stats.Individuals, res.Stats.Generations, res.Stats.Duration, nil)
			logger.Debug("layout cache hit", "key", key)
			return res, true, nil
		}
	}

	res, err := GenerateLayout(req.Pedigree, req.Hints, opts)
	if err != nil {
		hooks.OnLayoutComplete(ctx, req.Pedigree.Len(), 0, time.Since(start), err)
		return nil, false, err
	}
	res.ID = uuid.NewString()
	res.PedigreeHash = hash
	res.Stats.Duration = time.Since(start)
	hooks.OnLayoutComplete(ctx, res.Stats.Individuals, res.Stats.Generations, res.Stats.Duration, nil)

	logger.Info("computed layout",
		"individuals", res.Stats.Individuals,
		"generations", res.Stats.Generations,
		"duration", res.Stats.Duration)

	if data, err := json.Marshal(res); err != nil {
		logger.Warn("encode layout for cache", "err", err)
	} else if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		logger.Warn("store layout in cache", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}
	return res, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, req Request) (*Result, error) {
	res, _, err := r.LayoutWithCacheInfo(ctx, req)
	return res, err
}

// cached looks key up and decodes the stored result. Cache failures are
// logged and treated as misses.
func (r *Runner) cached(ctx context.Context, logger *log.Logger, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("read layout cache", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "layout")
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil || res.Layout == nil {
		logger.Debug("discard unreadable cache entry", "key", key)
		observability.Cache().OnCacheMiss(ctx, "layout")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "layout")
	return &res, true
}

// DepthWithCacheInfo returns the generation depth of every individual of p.
func (r *Runner) DepthWithCacheInfo(ctx context.Context, p *pedigree.Pedigree, alignSpouses bool) ([]int, bool, error) {
	if err := p.Validate(); err != nil {
		return nil, false, err
	}
	hash, err := PedigreeHash(p, nil)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.DepthKey(hash, alignSpouses)

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var level []int
		if json.Unmarshal(data, &level) == nil && len(level) == p.Len() {
			observability.Cache().OnCacheHit(ctx, "depth")
			return level, true, nil
		}
	} else if err != nil {
		r.Logger.Warn("read depth cache", "err", err)
	}
	observability.Cache().OnCacheMiss(ctx, "depth")

	level, err := GenerateDepth(p, alignSpouses)
	if err != nil {
		return nil, false, err
	}
	if data, err := json.Marshal(level); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Warn("store depth in cache", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "depth", len(data))
		}
	}
	return level, false, nil
}

// Depth is a convenience wrapper that calls DepthWithCacheInfo and discards the cache hit info.
func (r *Runner) Depth(ctx context.Context, p *pedigree.Pedigree, alignSpouses bool) ([]int, error) {
	level, _, err := r.DepthWithCacheInfo(ctx, p, alignSpouses)
	return level, err
}

// Batch lays out independent pedigrees with at most concurrency running at
// once. Results and errors are in request order; a failing request leaves
// a nil result and does not stop the others. Once ctx is done no further
// requests are started and the remaining ones report ctx.Err().
func (r *Runner) Batch(ctx context.Context, reqs []Request, concurrency int) ([]*Result, []error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	results := make([]*Result, len(reqs))
	errs := make([]error, len(reqs))

	batchID := uuid.NewString()
	logger := r.Logger.With("batch", batchID)
	logger.Debug("starting batch", "jobs", len(reqs), "concurrency", concurrency)

	start := time.Now()
	observability.Layout().OnBatchStart(ctx, len(reqs))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(reqs); j++ {
				errs[j] = err
			}
			break
		}
		if req.Options.Logger == nil {
			req.Options.Logger = logger
		}
		g.Go(func() error {
			results[i], errs[i] = r.Layout(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	observability.Layout().OnBatchComplete(ctx, len(reqs), failed, time.Since(start))
	logger.Info("finished batch", "jobs", len(reqs), "failed", failed, "duration", time.Since(start))
	return results, errs
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
