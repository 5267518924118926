// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/touring-app/rankd/internal/config"
	"github.com/touring-app/rankd/internal/geo"
	"github.com/touring-app/rankd/internal/logging"
	"github.com/touring-app/rankd/internal/poi"
	"github.com/touring-app/rankd/internal/profilesync"
	"github.com/touring-app/rankd/internal/zone"
)

// maxRequestBodySize caps inbound JSON bodies.
const maxRequestBodySize = 1 << 20

// healthChecker is the piece of the embedding client the health endpoint
// reports on.
type healthChecker interface {
	IsAvailable(ctx context.Context) bool
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	matcher  *zone.Matcher
	finder   *poi.Finder
	syncer   *profilesync.Syncer
	embedder healthChecker
	cfg      config.POIConfig
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewHandlers wires the handler set.
func NewHandlers(matcher *zone.Matcher, finder *poi.Finder, syncer *profilesync.Syncer, embedder healthChecker, cfg config.POIConfig) *Handlers {
	return &Handlers{
		matcher:  matcher,
		finder:   finder,
		syncer:   syncer,
		embedder: embedder,
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logging.With().Str("component", "api").Logger(),
	}
}

// matchRequest is the POST /zones/match body.
type matchRequest struct {
	Preferences zone.Preferences `json:"preferences" validate:"required"`
	Province    string           `json:"province"`
	Location    *geo.LatLng      `json:"location"`

	// UseEmbedding defaults to true when omitted.
	UseEmbedding *bool `json:"use_embedding"`
}

// MatchZones handles POST /api/v1/zones/match.
func (h *Handlers) MatchZones(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	result, err := h.matcher.Match(r.Context(), zone.MatchRequest{
		Prefs:            req.Preferences,
		Province:         req.Province,
		Location:         req.Location,
		DisableEmbedding: req.UseEmbedding != nil && !*req.UseEmbedding,
	})
	if err != nil {
		h.serverError(w, r, err, "zone match failed")
		return
	}

	h.respond(w, http.StatusOK, result)
}

// FindPOIs handles GET /api/v1/zones/{zoneID}/pois.
func (h *Handlers) FindPOIs(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "zoneID")
	category := r.URL.Query().Get("category")
	if category == "" {
		h.clientError(w, http.StatusBadRequest, "category query parameter is required")
		return
	}

	limit := h.queryInt(r, "limit", h.cfg.DefaultLimit)
	userLoc := h.queryLocation(r)

	pois, err := h.finder.Find(r.Context(), zoneID, category, limit, userLoc)
	switch {
	case errors.Is(err, zone.ErrZoneNotFound):
		h.clientError(w, http.StatusNotFound, "zone not found")
	case errors.Is(err, poi.ErrUnknownCategory):
		h.clientError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		h.serverError(w, r, err, "poi search failed")
	default:
		h.respond(w, http.StatusOK, map[string]any{
			"zone_id":  zoneID,
			"category": category,
			"pois":     pois,
		})
	}
}

// LoadCategories handles GET /api/v1/zones/{zoneID}/categories: every
// priority category of the zone, loaded concurrently.
func (h *Handlers) LoadCategories(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "zoneID")
	limit := h.queryInt(r, "limit", h.cfg.DefaultLimit)
	userLoc := h.queryLocation(r)

	categories, err := h.finder.LoadPriority(r.Context(), zoneID, limit, userLoc)
	switch {
	case errors.Is(err, zone.ErrZoneNotFound):
		h.clientError(w, http.StatusNotFound, "zone not found")
	case err != nil:
		h.serverError(w, r, err, "category load failed")
	default:
		h.respond(w, http.StatusOK, map[string]any{
			"zone_id":    zoneID,
			"categories": categories,
		})
	}
}

// SyncProfiles handles POST /api/v1/sync/profiles: an on-demand profile
// sync run.
func (h *Handlers) SyncProfiles(w http.ResponseWriter, r *http.Request) {
	result, err := h.syncer.SyncProfiles(r.Context())
	if err != nil {
		h.serverError(w, r, err, "profile sync failed")
		return
	}
	h.respond(w, http.StatusOK, result)
}

// SyncZones handles POST /api/v1/sync/zones: push the zone catalog to
// the embedding index.
func (h *Handlers) SyncZones(w http.ResponseWriter, r *http.Request) {
	stats, err := h.syncer.SyncZones(r.Context())
	if err != nil {
		h.serverError(w, r, err, "zone index sync failed")
		return
	}
	h.respond(w, http.StatusOK, stats)
}

// Health handles GET /healthz. The service itself answering is the
// health signal; embedding availability is reported but never fails the
// check, since the matcher degrades without it.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"embedding": h.embedder.IsAvailable(r.Context()),
	})
}

func (h *Handlers) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.clientError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.clientError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return false
	}
	return true
}

func (h *Handlers) queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// queryLocation parses optional lat/lng query parameters. Both must be
// present and numeric to count.
func (h *Handlers) queryLocation(r *http.Request) *geo.LatLng {
	latRaw := r.URL.Query().Get("lat")
	lngRaw := r.URL.Query().Get("lng")
	if latRaw == "" || lngRaw == "" {
		return nil
	}
	lat, errLat := strconv.ParseFloat(latRaw, 64)
	lng, errLng := strconv.ParseFloat(lngRaw, 64)
	if errLat != nil || errLng != nil {
		return nil
	}
	return &geo.LatLng{Lat: lat, Lng: lng}
}

func (h *Handlers) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error().Err(err).Msg("encode response")
	}
}

func (h *Handlers) clientError(w http.ResponseWriter, status int, msg string) {
	h.respond(w, status, map[string]string{"error": msg})
}

func (h *Handlers) serverError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	h.logger.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
	h.respond(w, http.StatusInternalServerError, map[string]string{"error": msg})
}
