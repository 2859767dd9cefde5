package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/yiblet/clipvault/internal/metrics"
	"github.com/yiblet/clipvault/internal/retention"
	"github.com/yiblet/clipvault/internal/worker"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// executeWatch handles the 'clipvault watch' command. It records clipboard
// changes until ctx is cancelled or one of its loops fails.
func (c *CLI) executeWatch(ctx context.Context, cmd *WatchCmd) error {
	log := c.log.With().Str("component", "watch").Logger()

	tasks := worker.NewTasks(c.log)
	defer tasks.Wait()
	if !cmd.NoSweep {
		tasks.Go(ctx, "orphan-sweep", func(ctx context.Context) error {
			_, err := retention.NewReconciler(c.store, c.files, c.log).Sweep(ctx)
			return err
		})
	}

	if _, err := c.retention.Run(ctx); err != nil {
		log.Warn().Err(err).Msg("startup retention failed")
	}

	// A closed clipboard stream ends the watch.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	snaps, err := c.clipboard.Watch(gctx)
	if err != nil {
		return fmt.Errorf("failed to watch clipboard: %w", err)
	}

	g.Go(func() error {
		defer cancel()
		return c.ingest.Run(gctx, snaps)
	})

	g.Go(func() error {
		return c.retention.Schedule(gctx, c.cfg.RetentionInterval)
	})

	events, unsubscribe := c.ingest.Events().Subscribe()
	g.Go(func() error {
		defer unsubscribe()
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev := <-events:
				log.Info().Str("id", ev.ItemID).Str("event", ev.Kind.String()).Msg("clipboard history changed")
			}
		}
	})

	if cmd.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{Addr: cmd.MetricsAddr, Handler: mux}

		g.Go(func() error {
			log.Info().Str("addr", cmd.MetricsAddr).Msg("serving metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	log.Info().Str("data_dir", c.files.Root()).Msg("watching clipboard")
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	log.Info().Msg("stopped watching")
	return err
}
