// Copyright 2025 A2A Registry
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics
var (
	promRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_requests_total",
			Help: "Total number of registry API requests",
		},
		[]string{"operation", "status"},
	)
	promRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "registry_request_duration_milliseconds",
			Help:    "Registry request duration in milliseconds",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500},
		},
		[]string{"operation"},
	)
	promCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_cache_lookups_total",
			Help: "Entry cache lookups by result (hit/miss)",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(promRequestsTotal)
	prometheus.MustRegister(promRequestDuration)
	prometheus.MustRegister(promCacheHits)
}
