// Copyright 2025 The Foldsum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	m "github.com/foldlabs/foldsum/pkg/metrics"
)

type metrics struct {
	// all metrics fields must be exported
	// to be able to return them by Metrics()
	// using reflection
	RequestCount            prometheus.Counter
	ResponseDuration        prometheus.Histogram
	HashCount               prometheus.Counter
	HashDuration            prometheus.Histogram
	HashMessageBytes        prometheus.Histogram
	HashBlocksCount         prometheus.Counter
	HashRoundsCount         prometheus.Counter
	EncodingErrorCount      prometheus.Counter
	InvariantViolationCount prometheus.Counter
	RateLimitedCount        prometheus.Counter
}

func newMetrics() metrics {
	subsystem := "api"

	return metrics{
		RequestCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "request_count",
			Help:      "Number of API requests.",
		}),
		ResponseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "response_duration_seconds",
			Help:      "Histogram of API response durations.",
			Buckets:   []float64{0.01, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		HashCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "hash_count",
			Help:      "Number of successfully computed fold digests.",
		}),
		HashDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "hash_duration_seconds",
			Help:      "Histogram of fold computation durations.",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		HashMessageBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "hash_message_bytes",
			Help:      "Histogram of hashed message sizes in bytes.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}),
		HashBlocksCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "hash_blocks_count",
			Help:      "Number of message blocks compressed in the initial fan out.",
		}),
		HashRoundsCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "hash_rounds_count",
			Help:      "Number of fold rounds executed.",
		}),
		EncodingErrorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "encoding_error_count",
			Help:      "Number of requests rejected for malformed or oversized input.",
		}),
		InvariantViolationCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "invariant_violation_count",
			Help:      "Number of fold computations aborted by an internal invariant violation.",
		}),
		RateLimitedCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "rate_limited_count",
			Help:      "Number of requests rejected by the per-client rate limiter.",
		}),
	}
}

func (s *server) Metrics() []prometheus.Collector {
	return m.PrometheusCollectorsFromFields(s.metrics)
}

func (s *server) pageviewMetricsHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.metrics.RequestCount.Inc()
		h.ServeHTTP(w, r)
		s.metrics.ResponseDuration.Observe(time.Since(start).Seconds())
	})
}
