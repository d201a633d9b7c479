// Package cli implements the monorail command-line interface.
//
// Every package-iterating command follows the same pipeline: find the
// workspace root (the nearest monorail.toml), discover the packages,
// build the dependency graph, narrow it with the filter flags, schedule
// the selection into batches and hand the batches to the executor.
//
// # Commands
//
//   - init: create monorail.toml and the packages directory
//   - list (ls): list packages
//   - graph: export the dependency graph as DOT, SVG, PNG or JSON
//   - order: print the batch plan
//   - run: run an npm script in every package that defines it
//   - exec: run an arbitrary command in every package
//   - clean: remove node_modules from every package
//   - changed: list packages changed since the last release
//   - publish: publish packages whose version is not on the registry yet
//   - cache: inspect or clear the registry cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Command
// output (lists, plans, JSON) goes to stdout; logs go to stderr.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/monorail/pkg/buildinfo"
	"github.com/matzehuels/monorail/pkg/cache"
	"github.com/matzehuels/monorail/pkg/config"
	"github.com/matzehuels/monorail/pkg/observability"
)

const appName = "monorail"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// cwd overrides the directory the workspace is searched from.
	cwd string
}

// New creates a new CLI instance with a logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "monorail runs tasks across the packages of a JavaScript monorepo",
		Long: `monorail discovers the packages of a workspace, builds their dependency graph
and runs scripts, commands and publishes across them in dependency order,
running independent packages in parallel.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.cwd, "cwd", "", "directory to search for the workspace (default: current directory)")

	root.AddCommand(c.initCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.orderCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.execCommand())
	root.AddCommand(c.cleanCommand())
	root.AddCommand(c.changedCommand())
	root.AddCommand(c.publishCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// startDir returns the directory commands start from.
func (c *CLI) startDir() string {
	if c.cwd != "" {
		return c.cwd
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// openCache returns the registry cache selected by cfg: Redis when a URL
// is configured, the file cache otherwise. noCache disables caching.
func (c *CLI) openCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	hooks := observability.NewLogCacheHooks(c.Logger)
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, appName+":")
		if err != nil {
			return nil, err
		}
		return cache.Namespace(rc, "registry:", hooks), nil
	}
	fc, err := cache.NewFileCache(cacheDir(cfg))
	if err != nil {
		c.Logger.Warn("file cache unavailable, continuing without cache", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.Namespace(fc, "registry:", hooks), nil
}

func cacheDir(cfg *config.Config) string {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir
	}
	return cache.DefaultDir()
}
