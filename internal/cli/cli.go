// Package cli implements the blockdrop command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockdrop/internal/config"
	"github.com/matzehuels/blockdrop/pkg/batch"
	"github.com/matzehuels/blockdrop/pkg/buildinfo"
	"github.com/matzehuels/blockdrop/pkg/cache"
	"github.com/matzehuels/blockdrop/pkg/history"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "blockdrop"

	// redisKeyPrefix scopes cache keys in a shared Redis instance.
	redisKeyPrefix = appName + ":v1:"
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

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// Run without a subcommand, it simulates a batch file.
func (c *CLI) RootCommand() *cobra.Command {
	root := c.runCommand()
	root.Version = buildinfo.Version
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+config.DefaultFile+" if present)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	// Register all subcommands
	root.AddCommand(c.boardCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file selected by --config.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("loaded config", "path", c.configPath, "cache", cfg.Cache.Backend, "history", cfg.History.Backend)
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a batch runner for CLI use. The returned close function
// releases the cache backend. A cache that cannot be opened is logged and
// replaced by a NullCache; results do not depend on it.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config) (*batch.Runner, func()) {
	ch, keyer := c.openCache(ctx, cfg)
	r := batch.NewRunner(ch, keyer, c.Logger)
	r.Workers = cfg.Workers
	r.Policy = cfg.Policy()
	r.TTL = cfg.Cache.TTL.Duration
	return r, func() { _ = ch.Close() }
}

func (c *CLI) openCache(ctx context.Context, cfg config.Config) (cache.Cache, cache.Keyer) {
	opts := cfg.CacheOptions()
	if opts.Backend == cache.BackendFile && opts.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			c.Logger.Warnf("Cache disabled: %v", err)
			return cache.NewNullCache(), nil
		}
		opts.Dir = dir
	}

	ch, err := cache.Open(ctx, opts)
	if err != nil {
		c.Logger.Warnf("Cache disabled: %v", err)
		return cache.NewNullCache(), nil
	}

	var keyer cache.Keyer
	if ch.Name() == cache.BackendRedis {
		keyer = cache.NewScopedKeyer(nil, redisKeyPrefix)
	}
	return ch, keyer
}

// openHistory opens the configured run history. Like the cache, history is
// optional: failures are logged and a NullStore is returned.
func (c *CLI) openHistory(ctx context.Context, cfg config.Config) history.Store {
	opts := cfg.HistoryOptions()
	if opts.Backend == history.BackendFile && opts.Dir == "" {
		dir, err := dataDir()
		if err != nil {
			c.Logger.Warnf("History disabled: %v", err)
			return history.NewNullStore()
		}
		opts.Dir = filepath.Join(dir, "runs")
	}

	store, err := history.Open(ctx, opts)
	if err != nil {
		c.Logger.Warnf("History disabled: %v", err)
		return history.NewNullStore()
	}
	return store
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/blockdrop/).
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

// dataDir returns the data directory using XDG standard (~/.local/share/blockdrop/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}
