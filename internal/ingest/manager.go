// Package ingest turns clipboard snapshots into stored items. It applies
// the size gate, deduplicates by content hash, prepares image thumbnails
// off the event path and notifies subscribers of new rows.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/yiblet/clipvault/internal/clipboard"
	"github.com/yiblet/clipvault/internal/datafs"
	"github.com/yiblet/clipvault/internal/metrics"
	"github.com/yiblet/clipvault/internal/store"
	"github.com/yiblet/clipvault/internal/thumbnail"
	"github.com/yiblet/clipvault/internal/worker"
)

// Status reports what Ingest did with a snapshot.
type Status int

const (
	// Skipped means the snapshot was empty, too large, or not a file.
	Skipped Status = iota

	// Stored means a new item row was inserted.
	Stored

	// Bumped means an item with the same content already existed and its
	// recency was refreshed.
	Bumped
)

func (s Status) String() string {
	switch s {
	case Stored:
		return "stored"
	case Bumped:
		return "bumped"
	default:
		return "skipped"
	}
}

// Result is the outcome of one ingestion. ID is empty when skipped.
type Result struct {
	ID     string
	Status Status
}

// Manager is the ingestion orchestrator.
type Manager struct {
	store  store.Store
	files  *datafs.DataFS
	pool   *worker.Pool
	tasks  *worker.Tasks
	events *Broadcaster
	log    zerolog.Logger
	now    func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used to partition archived images.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithBroadcaster replaces the event broadcaster.
func WithBroadcaster(b *Broadcaster) Option {
	return func(m *Manager) {
		m.events = b
	}
}

// NewManager creates an orchestrator writing into s, archiving images in
// files and running thumbnail work on pool.
func NewManager(s store.Store, files *datafs.DataFS, pool *worker.Pool, log zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		store: s,
		files: files,
		pool:  pool,
		tasks: worker.NewTasks(log),
		log:   log.With().Str("component", "ingest").Logger(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.events == nil {
		m.events = NewBroadcaster(DefaultEventBuffer)
	}
	return m
}

// Events returns the broadcaster that receives change events.
func (m *Manager) Events() *Broadcaster {
	return m.events
}

// Run ingests snapshots from ch until it is closed or ctx is done.
// Snapshots are accepted as soon as they arrive and queued for a separate
// ingestion goroutine, so the observer never waits on thumbnails or the
// database. After ch closes, queued snapshots are ingested before Run
// returns. Failures are logged and do not stop the loop.
func (m *Manager) Run(ctx context.Context, ch <-chan clipboard.Snapshot) error {
	queue := newSnapshotQueue()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			snap, ok := queue.pop(ctx)
			if !ok {
				return
			}
			res, err := m.Ingest(ctx, snap)
			if err != nil {
				m.log.Error().Err(err).Str("content_type", snap.ContentType.String()).Msg("ingest failed")
				continue
			}
			m.log.Debug().Str("id", res.ID).Str("status", res.Status.String()).Msg("ingested snapshot")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			queue.close()
			<-done
			if n := queue.len(); n > 0 {
				m.log.Warn().Int("dropped", n).Msg("stopped with snapshots still queued")
			}
			return ctx.Err()
		case snap, ok := <-ch:
			if !ok {
				queue.close()
				<-done
				return nil
			}
			queue.push(snap)
		}
	}
}

// Wait blocks until all background work started by Ingest has finished.
func (m *Manager) Wait() {
	m.tasks.Wait()
}

// Ingest stores a snapshot, or bumps the existing item with the same
// content. Skips are reported through Result, not as errors.
func (m *Manager) Ingest(ctx context.Context, snap clipboard.Snapshot) (Result, error) {
	start := time.Now()
	res, err := m.ingest(ctx, snap)
	metrics.IngestDuration.Observe(time.Since(start).Seconds())

	status := res.Status.String()
	if err != nil {
		status = "failed"
	}
	metrics.IngestTotal.WithLabelValues(snap.ContentType.String(), status).Inc()
	return res, err
}

func (m *Manager) ingest(ctx context.Context, snap clipboard.Snapshot) (Result, error) {
	if !snap.ContentType.Valid() {
		return Result{}, fmt.Errorf("%w: %d", store.ErrUnknownContentType, int(snap.ContentType))
	}

	size, ok := m.measure(snap)
	if !ok {
		return Result{Status: Skipped}, nil
	}
	if limit := m.sizeLimitMB(ctx); ExceedsSizeLimit(size, limit) {
		m.log.Debug().Int64("size", size).Int("limit_mb", limit).Msg("snapshot exceeds size limit")
		return Result{Status: Skipped}, nil
	}

	hash := ComputeHash(snap.Data)
	id, found, err := m.store.History().FindAndBump(ctx, hash)
	if err != nil {
		return Result{}, fmt.Errorf("failed to look up item: %w", err)
	}
	if found {
		return Result{ID: id, Status: Bumped}, nil
	}

	item := &store.NewItem{
		ContentType:   snap.ContentType,
		PlainText:     snap.PlainText,
		RichContent:   snap.RichContent,
		FilePath:      snap.FilePath,
		FileName:      snap.FileName,
		SourceApp:     snap.SourceApp,
		SourceAppName: snap.SourceAppName,
		ContentSize:   size,
		ContentHash:   hash,
	}
	if snap.ContentType == store.Image {
		m.prepareImage(ctx, snap.Data, item)
	}

	id, err = m.store.History().Insert(ctx, item)
	if errors.Is(err, store.ErrDuplicateHash) {
		// A concurrent ingestion of the same content won the insert.
		m.discardImage(item.ImagePath)
		id, found, err = m.store.History().FindAndBump(ctx, hash)
		if err != nil {
			return Result{}, fmt.Errorf("failed to look up item: %w", err)
		}
		if !found {
			return Result{}, fmt.Errorf("item with hash %s vanished after conflict", hash)
		}
		return Result{ID: id, Status: Bumped}, nil
	}
	if err != nil {
		m.discardImage(item.ImagePath)
		return Result{}, fmt.Errorf("failed to store item: %w", err)
	}

	metrics.IngestBytesTotal.WithLabelValues(snap.ContentType.String()).Add(float64(size))
	m.events.Notify(Event{ItemID: id, Kind: EventStored})

	if snap.ContentType == store.File && thumbnail.IsImagePath(snap.FilePath) {
		path := snap.FilePath
		m.tasks.Go(ctx, "deferred-thumbnail", func(ctx context.Context) error {
			return m.fillThumbnail(ctx, id, path)
		})
	}

	return Result{ID: id, Status: Stored}, nil
}

// measure returns the size the gate applies to and false when the
// snapshot must be skipped outright.
func (m *Manager) measure(snap clipboard.Snapshot) (int64, bool) {
	if len(snap.Data) == 0 {
		return 0, false
	}
	if snap.ContentType != store.File {
		return int64(len(snap.Data)), true
	}

	info, err := os.Stat(snap.FilePath)
	if err != nil {
		m.log.Debug().Err(err).Str("path", snap.FilePath).Msg("skipping unreadable file")
		return 0, false
	}
	if info.IsDir() {
		return 0, false
	}
	return info.Size(), true
}

// sizeLimitMB reads the configured limit, falling back to the default
// when the setting is missing or invalid.
func (m *Manager) sizeLimitMB(ctx context.Context) int {
	raw, err := m.store.Settings().Get(ctx, store.KeyMaxItemSizeMB)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.log.Warn().Err(err).Msg("failed to read size limit")
		}
		return DefaultMaxItemSizeMB
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return DefaultMaxItemSizeMB
	}
	return limit
}

// prepareImage generates the inline thumbnail and archives the original.
// Either step may fail; the item is stored with whatever succeeded.
func (m *Manager) prepareImage(ctx context.Context, data []byte, item *store.NewItem) {
	var thumb []byte
	err := m.pool.Do(ctx, func() error {
		var err error
		thumb, err = thumbnail.Generate(data)
		return err
	})
	if err != nil {
		metrics.ThumbnailsTotal.WithLabelValues("inline", "failed").Inc()
		m.log.Warn().Err(err).Msg("failed to generate thumbnail")
	} else {
		metrics.ThumbnailsTotal.WithLabelValues("inline", "ok").Inc()
		item.Thumbnail = thumb
	}

	path, err := m.files.SaveImage(data, thumbnail.Extension(data), m.now())
	if err != nil {
		m.log.Warn().Err(err).Msg("failed to archive image")
		return
	}
	item.ImagePath = path
}

func (m *Manager) discardImage(path string) {
	if path == "" {
		return
	}
	if _, err := m.files.RemoveImages([]string{path}); err != nil {
		m.log.Warn().Err(err).Str("path", path).Msg("failed to remove unused image")
	}
}

// fillThumbnail reads an image file referenced by a stored item and
// writes its thumbnail onto the row.
func (m *Manager) fillThumbnail(ctx context.Context, id, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		metrics.ThumbnailsTotal.WithLabelValues("deferred", "failed").Inc()
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var thumb []byte
	err = m.pool.Do(ctx, func() error {
		var err error
		thumb, err = thumbnail.Generate(data)
		return err
	})
	if err != nil {
		metrics.ThumbnailsTotal.WithLabelValues("deferred", "failed").Inc()
		return fmt.Errorf("failed to generate thumbnail for %s: %w", path, err)
	}

	if err := m.store.History().UpdateThumbnail(ctx, id, thumb); err != nil {
		metrics.ThumbnailsTotal.WithLabelValues("deferred", "failed").Inc()
		return fmt.Errorf("failed to save thumbnail: %w", err)
	}
	metrics.ThumbnailsTotal.WithLabelValues("deferred", "ok").Inc()
	m.events.Notify(Event{ItemID: id, Kind: EventThumbnailReady})
	return nil
}
