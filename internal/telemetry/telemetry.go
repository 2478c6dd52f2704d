// Package telemetry holds the Prometheus collectors shared by the pipeline
// and the query API.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RowsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ads_rows_ingested_total",
		Help: "Validated raw rows accepted, per platform.",
	}, []string{"platform"})

	CellsRepaired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ads_cells_repaired_total",
		Help: "Non-numeric or negative cells coerced to zero.",
	})

	RowsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ads_rows_dropped_total",
		Help: "Rows excluded because their date did not parse.",
	})

	SourcesMissing = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ads_sources_missing_total",
		Help: "Platform exports that were absent at load time.",
	})

	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ads_pipeline_runs_total",
		Help: "Pipeline executions by outcome.",
	}, []string{"outcome"})

	QueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ads_query_duration_seconds",
		Help:    "Time spent answering store-backed aggregation queries.",
		Buckets: prometheus.DefBuckets,
	})
)
