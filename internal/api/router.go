// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

// Package api exposes the ranking core over JSON/HTTP: zone matching,
// POI discovery, and the sync job triggers.
package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/touring-app/rankd/internal/config"
	"github.com/touring-app/rankd/internal/metrics"
)

// NewRouter assembles the chi router with the shared middleware stack
// and mounts the v1 API.
func NewRouter(h *Handlers, cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Timeout))
	r.Use(apiMetrics)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	if cfg.RateLimitReqs > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))
	}

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/zones/match", h.MatchZones)
		r.Get("/zones/{zoneID}/pois", h.FindPOIs)
		r.Get("/zones/{zoneID}/categories", h.LoadCategories)
		r.Post("/sync/profiles", h.SyncProfiles)
		r.Post("/sync/zones", h.SyncZones)
	})

	return r
}

// requestID attaches a UUID to every request, honoring an inbound
// X-Request-ID when the caller supplies one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// apiMetrics counts every request by method, route pattern and status.
func apiMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.APIRequestsTotal.WithLabelValues(
			r.Method, route, strconv.Itoa(ww.Status()),
		).Inc()
	})
}
