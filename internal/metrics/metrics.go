// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

// Package metrics exposes the Prometheus collectors shared across Rankd.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MatchRequests counts zone-match requests by the strategy that
	// ultimately served them (embedding, keyword, none).
	MatchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankd_match_requests_total",
			Help: "Total zone match requests by serving strategy",
		},
		[]string{"strategy"},
	)

	// MatchDuration observes end-to-end zone match latency.
	MatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rankd_match_duration_seconds",
			Help:    "Zone match duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// POISearches counts POI category searches by outcome.
	POISearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankd_poi_searches_total",
			Help: "Total POI category searches by outcome",
		},
		[]string{"category", "outcome"},
	)

	// ExternalCallDuration observes latency of calls to external
	// services (embedding service, place-search provider).
	ExternalCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rankd_external_call_duration_seconds",
			Help:    "External service call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)

	// ExternalCallErrors counts failed external service calls.
	ExternalCallErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankd_external_call_errors_total",
			Help: "Total failed external service calls",
		},
		[]string{"service", "endpoint"},
	)

	// CircuitBreakerState tracks breaker state per external service
	// (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rankd_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"breaker"},
	)

	// ProfileSyncUsers counts users processed by the profile sync job by
	// result.
	ProfileSyncUsers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankd_profile_sync_users_total",
			Help: "Total users processed by profile sync by result",
		},
		[]string{"result"},
	)

	// APIRequestsTotal counts API requests by method, route and status.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankd_api_requests_total",
			Help: "Total API requests",
		},
		[]string{"method", "route", "status"},
	)
)
