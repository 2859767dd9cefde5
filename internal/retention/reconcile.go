package retention

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/yiblet/clipvault/internal/datafs"
	"github.com/yiblet/clipvault/internal/metrics"
	"github.com/yiblet/clipvault/internal/store"
)

// DefaultGracePeriod is how old an unreferenced file must be before a
// sweep removes it. Ingestion archives an image before its row commits.
const DefaultGracePeriod = time.Minute

// Reconciler deletes archived images that no item references. These are
// left behind when the process stops between writing a file and
// committing its row, or between a delete and its file removal.
type Reconciler struct {
	store store.Store
	files *datafs.DataFS
	log   zerolog.Logger
	now   func() time.Time
	grace time.Duration
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithGracePeriod sets how recently modified files are left alone.
func WithGracePeriod(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		r.grace = d
	}
}

// WithSweepClock sets the clock file ages are measured against.
func WithSweepClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		r.now = now
	}
}

// NewReconciler creates an orphan reconciler.
func NewReconciler(s store.Store, files *datafs.DataFS, log zerolog.Logger, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		store: s,
		files: files,
		log:   log.With().Str("component", "reconciler").Logger(),
		now:   time.Now,
		grace: DefaultGracePeriod,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sweep removes unreferenced files from the month partitions of the image
// archive and returns how many were deleted. Files modified at or after
// the start of the sweep minus the grace period are kept, since their
// rows may still be committing. Unreadable partitions and per-file
// failures are returned together after every file has been tried.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.grace)

	paths, err := r.store.History().ImagePaths(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list referenced images: %w", err)
	}
	referenced := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		referenced[filepath.Clean(p)] = struct{}{}
	}

	var result *multierror.Error
	files, err := r.files.ImageFiles()
	if err != nil {
		r.log.Warn().Err(err).Msg("image archive partly unreadable")
		result = multierror.Append(result, err)
	}

	var orphans []string
	recent := 0
	for _, f := range files {
		if _, ok := referenced[filepath.Clean(f.Path)]; ok {
			continue
		}
		if !f.ModTime.Before(cutoff) {
			recent++
			continue
		}
		orphans = append(orphans, f.Path)
	}

	removed := 0
	if len(orphans) > 0 {
		removed, err = r.files.RemoveImages(orphans)
		if err != nil {
			result = multierror.Append(result, err)
		}
		metrics.OrphansRemovedTotal.Add(float64(removed))
	}
	r.log.Info().Int("found", len(orphans)).Int("removed", removed).Int("recent", recent).Msg("orphan sweep finished")
	return removed, result.ErrorOrNil()
}
