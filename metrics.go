// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exported by the package. They are registered with the default
// prometheus registry when the package is loaded.
var (
	// operationsTotal counts Combine and Regress calls by status
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fgraph_operations_total",
		Help: "Total number of combine and regress operations by status",
	}, []string{"op", "status"})

	// operationDuration tracks the latency of Combine and Regress
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fgraph_operation_duration_seconds",
		Help:    "Duration of combine and regress operations in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12), // 10µs to ~40s
	}, []string{"op"})

	memoHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fgraph_memo_hits_total",
		Help: "Total number of sub-problems found in memo tables",
	})

	memoMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fgraph_memo_misses_total",
		Help: "Total number of sub-problems explored",
	})

	nodesProducedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fgraph_nodes_produced_total",
		Help: "Total number of nodes produced by combine and regress",
	})
)

// observe records the outcome of an operation started at time start. The
// statistics s can be nil when the operation failed before any computation.
func observe(op string, start time.Time, s *Stats, err error) {
	status := "ok"
	switch {
	case err == nil:
	case IsMalformed(err):
		status = "malformed"
	case IsInvariant(err):
		status = "invariant"
	case errors.Is(err, ErrMemory):
		status = "memory"
	default:
		status = "error"
	}
	operationsTotal.WithLabelValues(op, status).Inc()
	operationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if s == nil {
		return
	}
	memoHitsTotal.Add(float64(s.MemoHits))
	memoMissesTotal.Add(float64(s.Explored))
	nodesProducedTotal.Add(float64(s.Produced))
}
