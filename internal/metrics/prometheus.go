package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StepsTotal counts orchestration steps by workflow, step and final status.
	StepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datalake_steps_total",
			Help: "Total number of orchestration steps executed",
		},
		[]string{"workflow", "step", "status"},
	)

	// StepDuration tracks how long each orchestration step took in seconds.
	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datalake_step_duration_seconds",
			Help:    "Duration of orchestration steps in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		},
		[]string{"workflow", "step"},
	)

	// QueryPollsTotal counts status polls against the query service.
	QueryPollsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "datalake_query_polls_total",
			Help: "Total number of query status polls",
		},
	)

	// QueryDuration tracks time from submission to the final observed state.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datalake_query_duration_seconds",
			Help:    "Duration of queries from submission to final state in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 500ms to ~4m
		},
		[]string{"state"},
	)

	// RecordsIngested counts player records uploaded to storage.
	RecordsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "datalake_records_ingested_total",
			Help: "Total number of records uploaded to object storage",
		},
	)

	// ObjectsDeleted counts objects removed during teardown.
	ObjectsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "datalake_objects_deleted_total",
			Help: "Total number of objects deleted from object storage",
		},
	)
)
