package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "batchdl_runs_started_total",
		Help: "Total number of batch runs started",
	})

	RunsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "batchdl_runs_completed_total",
		Help: "Total number of batch runs completed",
	})

	RunsAborted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "batchdl_runs_aborted_total",
		Help: "Total number of batch runs aborted by a fatal store error",
	})

	ItemsSuccessful = promauto.NewCounter(prometheus.CounterOpts{
		Name: "batchdl_items_successful_total",
		Help: "Total number of items fetched and persisted",
	})

	ItemsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "batchdl_items_skipped_total",
		Help: "Total number of items skipped as duplicates",
	})

	ItemsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "batchdl_items_failed_total",
		Help: "Total number of items that failed",
	})

	BackfillImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "batchdl_backfill_imported_total",
		Help: "Total number of existing artifacts imported by backfill",
	})

	StoreRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "batchdl_store_records",
		Help: "Number of records in the metadata store after the last run",
	})

	ItemDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "batchdl_item_duration_seconds",
		Help:    "Per-item processing duration in seconds",
		Buckets: prometheus.DefBuckets,
	})
)
