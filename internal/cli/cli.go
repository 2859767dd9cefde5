// Package cli wires configuration, storage, ingestion and retention into
// the clipvault command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/yiblet/clipvault/internal/clipboard"
	"github.com/yiblet/clipvault/internal/clipboard/sysboard"
	"github.com/yiblet/clipvault/internal/config"
	"github.com/yiblet/clipvault/internal/datafs"
	"github.com/yiblet/clipvault/internal/ingest"
	"github.com/yiblet/clipvault/internal/logger"
	"github.com/yiblet/clipvault/internal/retention"
	"github.com/yiblet/clipvault/internal/store/dbstore"
	"github.com/yiblet/clipvault/internal/worker"
)

// CLI handles the command-line interface
type CLI struct {
	cfg       *config.Config
	configs   *config.ConfigManager
	files     *datafs.DataFS
	store     *dbstore.SQLiteStore
	clipboard clipboard.Observer
	ingest    *ingest.Manager
	retention *retention.Engine
	log       zerolog.Logger

	out io.Writer
	in  io.Reader
}

// NewWithArgs creates a CLI for the system clipboard from the config file,
// environment overrides and global flags (in increasing precedence)
func NewWithArgs(args *Args) (*CLI, error) {
	configs, err := configManager(args)
	if err != nil {
		return nil, err
	}

	cfg, err := configs.Resolve()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if args != nil && args.DataDir != nil {
		cfg.DataDir = *args.DataDir
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return newCLI(configs, cfg, sysboard.New(), log, os.Stdout, os.Stdin)
}

func configManager(args *Args) (*config.ConfigManager, error) {
	if args != nil && args.ConfigPath != nil {
		return config.NewConfigManagerWithPath(*args.ConfigPath), nil
	}
	configs, err := config.NewConfigManager()
	if err != nil {
		return nil, fmt.Errorf("failed to locate config: %w", err)
	}
	return configs, nil
}

// newCLI opens the data directory and database described by cfg
func newCLI(configs *config.ConfigManager, cfg *config.Config, clip clipboard.Observer, log zerolog.Logger, out io.Writer, in io.Reader) (*CLI, error) {
	files, err := datafs.NewWithDataPath(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := dbstore.NewSQLiteStore(files.DBPath(), dbConfig(cfg.DB))
	if err != nil {
		return nil, fmt.Errorf("failed to create database store: %w", err)
	}

	pool := worker.NewPool(cfg.ThumbnailWorkers)
	events := ingest.NewBroadcaster(cfg.EventBuffer)

	return &CLI{
		cfg:       cfg,
		configs:   configs,
		files:     files,
		store:     st,
		clipboard: clip,
		ingest:    ingest.NewManager(st, files, pool, log, ingest.WithBroadcaster(events)),
		retention: retention.NewEngine(st, files, log),
		log:       log,
		out:       out,
		in:        in,
	}, nil
}

// dbConfig maps the file config onto the store's pool and pragma settings
func dbConfig(c config.DBConfig) dbstore.Config {
	cfg := dbstore.DefaultConfig()
	cfg.Pool.MaxOpenConns = c.MaxOpenConns
	cfg.Pool.MaxIdleConns = c.MaxOpenConns
	cfg.SQLite.BusyTimeoutMs = c.BusyTimeoutMs
	cfg.SQLite.WAL = c.WAL
	return cfg
}

// Close waits for background work and closes the database
func (c *CLI) Close() error {
	c.ingest.Wait()
	c.retention.Wait()
	return c.store.Close()
}

// Execute runs the CLI command based on parsed arguments
func (c *CLI) Execute(ctx context.Context, args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	switch {
	case args.Watch != nil:
		return c.executeWatch(ctx, args.Watch)
	case args.Add != nil:
		return c.executeAdd(ctx, args.Add)
	case args.List != nil:
		return c.executeList(ctx, args.List)
	case args.Search != nil:
		return c.executeSearch(ctx, args.Search)
	case args.Show != nil:
		return c.executeShow(ctx, args.Show)
	case args.Thumb != nil:
		return c.executeThumb(ctx, args.Thumb)
	case args.Fav != nil:
		return c.executeFav(ctx, args.Fav)
	case args.Delete != nil:
		return c.executeDelete(ctx, args.Delete)
	case args.Copy != nil:
		return c.executeCopy(ctx, args.Copy)
	case args.Clear != nil:
		return c.executeClear(ctx, args.Clear)
	case args.Cleanup != nil:
		return c.executeCleanup(ctx)
	case args.Sweep != nil:
		return c.executeSweep(ctx)
	case args.Config != nil:
		return c.executeConfig(args.Config)
	case args.Settings != nil:
		return c.executeSettings(ctx, args.Settings)
	case args.Group != nil:
		return c.executeGroup(ctx, args.Group)
	default:
		return c.launchTUI(ctx)
	}
}
