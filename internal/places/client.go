// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

// Package places is the HTTP client for the external place-search
// provider. Searches prefer the viewbox mode and fall back to nearby
// search when a viewbox query comes back empty; responses are cached
// with a TTL because identical zone/category queries repeat heavily.
package places

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/touring-app/rankd/internal/cache"
	"github.com/touring-app/rankd/internal/config"
	"github.com/touring-app/rankd/internal/geo"
	"github.com/touring-app/rankd/internal/logging"
	"github.com/touring-app/rankd/internal/metrics"
	"github.com/touring-app/rankd/internal/poi"
)

// providerOK is the provider's success code.
const providerOK = "ok"

// placeResult mirrors the provider's place document.
type placeResult struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
	Types  []string `json:"types"`
	Rating float64  `json:"rating,omitempty"`
}

type searchResponse struct {
	Code   string        `json:"code"`
	Result []placeResult `json:"result"`
}

// Client talks to the place-search provider. It satisfies the POI
// finder's Searcher interface.
type Client struct {
	cfg        config.PlacesConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *cache.Cache
}

// NewClient creates a provider client. responseCache may be nil to
// disable caching.
func NewClient(cfg config.PlacesConfig, responseCache *cache.Cache) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(limit, 1),
		cache:      responseCache,
	}
}

// Search finds places matching query around center. The viewbox mode is
// tried first; an empty result triggers one nearby-search retry.
func (c *Client) Search(ctx context.Context, center geo.LatLng, radiusM float64, query string, limit int) ([]poi.POI, error) {
	key := cache.GenerateKey("places",
		strconv.FormatFloat(center.Lat, 'f', 5, 64),
		strconv.FormatFloat(center.Lng, 'f', 5, 64),
		strconv.FormatFloat(radiusM, 'f', 0, 64),
		query,
		strconv.Itoa(limit),
	)
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]poi.POI), nil
	}

	results, err := c.viewboxSearch(ctx, center, radiusM, query)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		logging.Debug().Str("query", query).Msg("viewbox search empty, trying nearby search")
		results, err = c.nearbySearch(ctx, center, radiusM, query)
		if err != nil {
			return nil, err
		}
	}

	if len(results) > limit {
		results = results[:limit]
	}

	pois := toPOIs(results)
	if c.cfg.CacheTTL > 0 {
		c.cache.SetWithTTL(key, pois, c.cfg.CacheTTL)
	}
	return pois, nil
}

func (c *Client) viewboxSearch(ctx context.Context, center geo.LatLng, radiusM float64, query string) ([]placeResult, error) {
	box := geo.Viewbox(center, radiusM)
	params := url.Values{
		"key":  {c.cfg.APIKey},
		"text": {query},
		"viewbox": {fmt.Sprintf("%f,%f,%f,%f",
			box.MinLat, box.MinLng, box.MaxLat, box.MaxLng)},
	}
	return c.get(ctx, "/place/viewbox-search", params)
}

func (c *Client) nearbySearch(ctx context.Context, center geo.LatLng, radiusM float64, query string) ([]placeResult, error) {
	params := url.Values{
		"key":      {c.cfg.APIKey},
		"text":     {query},
		"location": {fmt.Sprintf("%f,%f", center.Lat, center.Lng)},
		"radius":   {strconv.FormatFloat(radiusM, 'f', 0, 64)},
	}
	return c.get(ctx, "/place/nearby-search", params)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]placeResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.URL+path+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ExternalCallDuration.WithLabelValues("places", path).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ExternalCallErrors.WithLabelValues("places", path).Inc()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ExternalCallErrors.WithLabelValues("places", path).Inc()
		return nil, fmt.Errorf("%s: HTTP %d", path, resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	if body.Code != providerOK {
		metrics.ExternalCallErrors.WithLabelValues("places", path).Inc()
		return nil, fmt.Errorf("%s: provider code %q", path, body.Code)
	}
	return body.Result, nil
}

func toPOIs(results []placeResult) []poi.POI {
	pois := make([]poi.POI, 0, len(results))
	for _, r := range results {
		pois = append(pois, poi.POI{
			ID:       r.ID,
			Name:     r.Name,
			Location: geo.LatLng{Lat: r.Location.Lat, Lng: r.Location.Lng},
			Types:    r.Types,
			Rating:   r.Rating,
		})
	}
	return pois
}
