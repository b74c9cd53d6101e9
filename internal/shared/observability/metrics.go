// # internal/shared/observability/metrics.go
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "camelize_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	ConvertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "camelize_convert_seconds",
		Help:    "Time spent running the rename engine over one source file.",
		Buckets: prometheus.DefBuckets,
	})

	FilesLoadedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camelize_files_loaded_total",
		Help: "Source files offered to the loader, by result.",
	}, []string{"result"})

	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camelize_decisions_total",
		Help: "Rename decisions emitted, by status and skip reason.",
	}, []string{"status", "reason"})

	ShorthandRewritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camelize_shorthand_rewrites_total",
		Help: "Shorthand properties expanded after a rename.",
	})

	DirtyFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "camelize_dirty_files",
		Help: "Files rewritten by the most recent run.",
	})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camelize_runs_total",
		Help: "Completed conversion runs, by outcome.",
	}, []string{"outcome"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camelize_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
