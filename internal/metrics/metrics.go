package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RunsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spimex_scrape_runs_started_total",
		Help: "Scrape runs launched.",
	})

	RunsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spimex_scrape_runs_failed_total",
		Help: "Scrape runs that ended in error.",
	})

	RunsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spimex_scrape_runs_rejected_total",
		Help: "Trigger requests rejected because a run was already active.",
	})

	StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spimex_scrape_stage_duration_seconds",
		Help:    "Duration of each pipeline stage.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"stage"})

	RowsPersisted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spimex_rows_persisted_total",
		Help: "Trading-result rows committed to storage.",
	})

	DownloadsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spimex_downloads_failed_total",
		Help: "Bulletin downloads that failed within otherwise successful batches.",
	})
)

// Register registers all collectors with the default registry. Call once
// per process.
func Register() {
	prometheus.MustRegister(
		RunsStarted,
		RunsFailed,
		RunsRejected,
		StageDuration,
		RowsPersisted,
		DownloadsFailed,
	)
}
