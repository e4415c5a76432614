package cli

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	perrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/pipeline"
)

// configFileName is looked up in the XDG config directory.
const configFileName = "pedigree.toml"

// Cache backends selectable with cache.backend.
const (
	backendFile   = "file"
	backendMemory = "memory"
	backendRedis  = "redis"
)

// Config is the CLI configuration file.
//
//	[layout]
//	width = 12
//	plot_width = 1024
//
//	[cache]
//	backend = "memory"
//	ttl = "24h"
//
//	[batch]
//	concurrency = 8
type Config struct {
	Layout pipeline.Options `toml:"layout"`
	Cache  CacheConfig      `toml:"cache"`
	Batch  BatchConfig      `toml:"batch"`
}

// CacheConfig selects and tunes the layout cache.
type CacheConfig struct {
	Disabled bool `toml:"disabled"`

	// Backend is file, memory or redis. Empty means redis when a Redis URL
	// is set and file otherwise.
	Backend string `toml:"backend"`

	Dir           string `toml:"dir"`            // file cache directory, default XDG cache dir
	MemoryEntries int    `toml:"memory_entries"` // memory cache bound, 0 for the default
	RedisURL      string `toml:"redis_url"`      // overridden by PEDIGREE_REDIS_URL
	TTL           string `toml:"ttl"`            // Go duration, overridden by PEDIGREE_CACHE_TTL
}

// BatchConfig configures the batch command.
type BatchConfig struct {
	Concurrency int `toml:"concurrency"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{Batch: BatchConfig{Concurrency: pipeline.DefaultConcurrency}}
}

// LoadConfig reads a TOML config file on top of [DefaultConfig]. Unknown
// keys are rejected so typos do not go unnoticed.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, err
		}
		return cfg, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, perrors.New(perrors.ErrCodeInvalidFormat, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if _, err := cfg.Cache.ttl(); err != nil {
		return cfg, err
	}
	if _, err := cfg.Cache.backend(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// backend resolves the configured cache backend.
func (c CacheConfig) backend() (string, error) {
	if c.MemoryEntries < 0 {
		return "", perrors.New(perrors.ErrCodeInvalidInput,
			"cache.memory_entries must not be negative, got %d", c.MemoryEntries)
	}
	switch b := strings.ToLower(c.Backend); b {
	case "":
		if c.redisURL() != "" {
			return backendRedis, nil
		}
		return backendFile, nil
	case backendFile, backendMemory:
		return b, nil
	case backendRedis:
		if c.redisURL() == "" {
			return "", perrors.New(perrors.ErrCodeInvalidInput,
				"cache.backend is redis but neither cache.redis_url nor %s is set", envRedisURL)
		}
		return b, nil
	}
	return "", perrors.New(perrors.ErrCodeInvalidInput,
		"cache.backend %q: want file, memory or redis", c.Backend)
}

// redisURL returns the Redis URL, preferring the environment.
func (c CacheConfig) redisURL() string {
	if url := os.Getenv(envRedisURL); url != "" {
		return url
	}
	return c.RedisURL
}

// ttl returns the configured cache lifetime, preferring the environment.
// Zero means the runner default.
func (c CacheConfig) ttl() (time.Duration, error) {
	raw, source := c.TTL, "cache.ttl"
	if env := os.Getenv(envCacheTTL); env != "" {
		raw, source = env, envCacheTTL
	}
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "%s", source)
	}
	if d < 0 {
		return 0, perrors.New(perrors.ErrCodeInvalidInput, "%s must not be negative, got %s", source, raw)
	}
	return d, nil
}

// concurrency returns the batch worker count, falling back to the default.
func (b BatchConfig) concurrency() int {
	if b.Concurrency > 0 {
		return b.Concurrency
	}
	return pipeline.DefaultConcurrency
}

// describe renders the cache settings for `cache path`.
func (c CacheConfig) describe() string {
	if c.Disabled {
		return "disabled"
	}
	b, err := c.backend()
	if err != nil {
		return "invalid"
	}
	return b
}
