// Package retention removes items under the configured retention policy
// and repairs the image archive. Database rows are deleted in one
// transaction; the archived files they referenced are removed afterwards
// in the background and failures there are only logged.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yiblet/clipvault/internal/datafs"
	"github.com/yiblet/clipvault/internal/metrics"
	"github.com/yiblet/clipvault/internal/store"
	"github.com/yiblet/clipvault/internal/worker"
)

// Engine applies retention policies, clears history and deletes single
// items.
type Engine struct {
	store store.Store
	files *datafs.DataFS
	tasks *worker.Tasks
	log   zerolog.Logger
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock the days cutoff is measured from.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a retention engine.
func NewEngine(s store.Store, files *datafs.DataFS, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store: s,
		files: files,
		tasks: worker.NewTasks(log),
		log:   log.With().Str("component", "retention").Logger(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run applies the policy stored in settings and returns the number of
// items removed.
func (e *Engine) Run(ctx context.Context) (int, error) {
	policy, err := PolicyFromSettings(ctx, e.store.Settings())
	if err != nil {
		return 0, err
	}
	return e.Apply(ctx, policy, "policy")
}

// ClearHistory removes every non-favorited item.
func (e *Engine) ClearHistory(ctx context.Context) (int, error) {
	return e.Apply(ctx, store.RetentionPolicy{Kind: store.RetainNone}, "clear")
}

// Apply removes the items selected by policy. reason labels the removal
// in metrics and logs.
func (e *Engine) Apply(ctx context.Context, policy store.RetentionPolicy, reason string) (int, error) {
	if policy.IsNoop() {
		return 0, nil
	}
	if policy.Now.IsZero() {
		policy.Now = e.now()
	}

	paths, err := e.store.History().RetentionImagePaths(ctx, policy)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve image paths: %w", err)
	}

	removed, err := e.store.History().Cleanup(ctx, policy)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up items: %w", err)
	}

	metrics.ItemsRemovedTotal.WithLabelValues(reason).Add(float64(removed))
	e.log.Info().Str("policy", policy.String()).Int("removed", removed).Msg("retention applied")
	e.removeFiles(ctx, paths)
	return removed, nil
}

// Delete removes one item and, after the row is gone, its archived image.
func (e *Engine) Delete(ctx context.Context, id string) error {
	path, err := e.store.History().GetImagePath(ctx, id)
	if err != nil {
		return err
	}
	if err := e.store.History().Delete(ctx, id); err != nil {
		return err
	}

	metrics.ItemsRemovedTotal.WithLabelValues("delete").Inc()
	if path != "" {
		e.removeFiles(ctx, []string{path})
	}
	return nil
}

// Schedule runs the stored policy every interval until ctx is done.
// Errors are logged and the next tick is attempted.
func (e *Engine) Schedule(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := e.Run(ctx); err != nil {
				e.log.Error().Err(err).Msg("scheduled retention failed")
			}
		}
	}
}

// Wait blocks until scheduled file removals have finished.
func (e *Engine) Wait() {
	e.tasks.Wait()
}

func (e *Engine) removeFiles(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}
	e.tasks.Go(ctx, "remove-images", func(ctx context.Context) error {
		removed, err := e.files.RemoveImages(paths)
		metrics.FilesRemovedTotal.WithLabelValues("ok").Add(float64(removed))
		if err != nil {
			metrics.FilesRemovedTotal.WithLabelValues("failed").Inc()
			return fmt.Errorf("failed to remove images: %w", err)
		}
		return nil
	})
}
