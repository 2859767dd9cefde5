package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Clipvault metrics
var (
	// Ingestion outcomes by content type: stored, bumped, skipped, failed
	IngestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clipvault",
			Subsystem: "ingest",
			Name:      "items_total",
			Help:      "Total clipboard snapshots ingested",
		},
		[]string{"content_type", "status"},
	)

	// Ingested bytes for stored items
	IngestBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clipvault",
			Subsystem: "ingest",
			Name:      "bytes_total",
			Help:      "Total bytes of newly stored items",
		},
		[]string{"content_type"},
	)

	// Ingestion latency on the synchronous path
	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clipvault",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Time spent ingesting one snapshot",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	// Thumbnail generation by mode (inline, deferred) and status
	ThumbnailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clipvault",
			Subsystem: "thumbnail",
			Name:      "generated_total",
			Help:      "Total thumbnail generations",
		},
		[]string{"mode", "status"},
	)

	// Items removed by retention, clear history and delete
	ItemsRemovedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clipvault",
			Subsystem: "retention",
			Name:      "items_removed_total",
			Help:      "Total items removed",
		},
		[]string{"reason"},
	)

	// Archived image files removed after commit
	FilesRemovedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clipvault",
			Subsystem: "retention",
			Name:      "files_removed_total",
			Help:      "Total archived image files removed",
		},
		[]string{"status"},
	)

	// Orphan files deleted by the startup sweep
	OrphansRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clipvault",
			Subsystem: "retention",
			Name:      "orphans_removed_total",
			Help:      "Total unreferenced image files removed by the orphan sweep",
		},
	)

	// Live change-event subscribers
	Subscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "clipvault",
			Subsystem: "events",
			Name:      "subscribers",
			Help:      "Number of active change-event subscribers",
		},
	)
)

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}
