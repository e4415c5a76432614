// Package cli implements the pedigree command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pedigree/pkg/buildinfo"
	"github.com/matzehuels/pedigree/pkg/cache"
	"github.com/matzehuels/pedigree/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pedigree"

	// envRedisURL selects the shared Redis cache instead of the file cache.
	envRedisURL = "PEDIGREE_REDIS_URL"

	// envCacheTTL overrides the lifetime of cached layouts (e.g. "24h").
	envCacheTTL = "PEDIGREE_CACHE_TTL"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded from the config file before any command runs.
	Config Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Pedigree lays out family trees for drawing",
		Long: `Pedigree computes drawing layouts for family pedigrees: who sits in which
generation row, in what order, and at which horizontal position, plus the
scaling needed to fit the drawing onto a plot.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/pedigree/pedigree.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.depthCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file named by --config, or the default one
// when it exists.
func (c *CLI) loadConfig() error {
	path, explicit := c.configPath, c.configPath != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(dir, configFileName)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load config %s: %w", path, err)
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ttl, err := c.Config.Cache.ttl()
	if err != nil {
		return nil, err
	}
	ch, err := c.newCache(ctx, noCache || c.Config.Cache.Disabled)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(ch, nil, c.Logger)
	if ttl > 0 {
		runner.TTL = ttl
	}
	setHooks(c.Logger)
	return runner, nil
}

// newCache picks the cache backend: none, Redis, an in-process LRU for the
// lifetime of the command, or the file cache under the XDG cache directory.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	backend, err := c.Config.Cache.backend()
	if err != nil {
		return nil, err
	}
	switch backend {
	case backendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: c.Config.Cache.redisURL()})
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		c.Logger.Debug("using redis cache")
		return rc, nil
	case backendMemory:
		c.Logger.Debug("using memory cache", "entries", c.Config.Cache.MemoryEntries)
		return cache.NewMemoryCache(c.Config.Cache.MemoryEntries)
	}
	dir := c.Config.Cache.Dir
	if dir == "" {
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/pedigree/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/pedigree/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
