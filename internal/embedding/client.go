// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

// Package embedding is the HTTP client for the external vector-embedding
// and semantic-search service.
//
// The service is treated as a black box: text in, vectors and nearest
// neighbors out. Every call carries an explicit timeout and the whole
// client sits behind a circuit breaker so a slow or dead service degrades
// the callers (keyword fallback, skipped index writes) instead of
// cascading.
package embedding

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/touring-app/rankd/internal/config"
	"github.com/touring-app/rankd/internal/logging"
	"github.com/touring-app/rankd/internal/metrics"
)

// maxErrorBodySize caps how much of an error response body is read back
// for diagnostics.
const maxErrorBodySize = 64 * 1024

// Item is one document submitted to the embedding index.
type Item struct {
	ID      string            `json:"id"`
	Type    string            `json:"type"`
	Text    string            `json:"text"`
	Vector  []float64         `json:"vector,omitempty"`
	Payload map[string]string `json:"payload,omitempty"`
}

// UpsertStats reports the index mutation counts of a bulk upsert.
type UpsertStats struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Total   int `json:"total"`
}

// HybridQuery is a hybrid (vector + vibe-boosted) search request.
type HybridQuery struct {
	FreeText       string   `json:"free_text"`
	Vibes          []string `json:"vibes"`
	Avoid          []string `json:"avoid,omitempty"`
	TopK           int      `json:"top_k"`
	FilterType     string   `json:"filter_type"`
	FilterProvince string   `json:"filter_province,omitempty"`
	BoostVibes     float64  `json:"boost_vibes"`
}

// Hit is one hybrid-search result.
type Hit struct {
	ID          string   `json:"id"`
	Score       float64  `json:"score"`
	VibeMatches []string `json:"vibe_matches"`
}

// HybridResult is the hybrid-search response.
type HybridResult struct {
	Hits     []Hit  `json:"hits"`
	Strategy string `json:"strategy"`
}

// HealthStatus is the /healthz response.
type HealthStatus struct {
	Status     string `json:"status"`
	Model      string `json:"model"`
	Vectors    int    `json:"vectors"`
	Dimensions int    `json:"dimensions"`
}

// Searcher is the surface the zone matcher needs from this client.
type Searcher interface {
	IsAvailable(ctx context.Context) bool
	HybridSearch(ctx context.Context, q HybridQuery) (*HybridResult, error)
}

// Indexer is the surface the sync jobs need from this client.
type Indexer interface {
	Upsert(ctx context.Context, items []Item) (*UpsertStats, error)
}

// Client talks to the embedding service over JSON/HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cfg        config.EmbeddingConfig
	cb         *gobreaker.CircuitBreaker[any]
}

// NewClient creates an embedding-service client. The circuit breaker
// opens after a 60% failure rate over at least 10 requests and probes
// recovery after 2 minutes, mirroring the health-gated degradation the
// matcher performs on top.
func NewClient(cfg config.EmbeddingConfig) *Client {
	cbName := "embedding-service"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("embedding circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})

	return &Client{
		baseURL:    cfg.URL,
		httpClient: &http.Client{},
		cfg:        cfg,
		cb:         cb,
	}
}

// Embed vectorizes the given texts.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	var resp struct {
		Embeddings [][]float64 `json:"embeddings"`
	}
	err := c.post(ctx, "/embed", c.cfg.Timeout, map[string]any{"texts": texts}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Embeddings, nil
}

// Upsert writes items into the embedding index. Bulk writes get the
// longer upsert timeout.
func (c *Client) Upsert(ctx context.Context, items []Item) (*UpsertStats, error) {
	var stats UpsertStats
	err := c.post(ctx, "/upsert", c.cfg.UpsertTimeout, map[string]any{"items": items}, &stats)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// HybridSearch runs a vibe-boosted vector search.
func (c *Client) HybridSearch(ctx context.Context, q HybridQuery) (*HybridResult, error) {
	var result HybridResult
	if err := c.post(ctx, "/hybrid-search", c.cfg.Timeout, q, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health probes /healthz with the short health timeout.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health check: HTTP %d", resp.StatusCode)
	}

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}
	return &status, nil
}

// IsAvailable reports whether the service is healthy. It never returns an
// error: any failure, timeout, or non-ok status reads as unavailable.
func (c *Client) IsAvailable(ctx context.Context) bool {
	status, err := c.Health(ctx)
	if err != nil {
		logging.Debug().Err(err).Msg("embedding service unavailable")
		return false
	}
	return status.Status == "ok"
}

// post runs one JSON request through the circuit breaker.
func (c *Client) post(ctx context.Context, path string, timeout time.Duration, body, out any) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.doPost(ctx, path, timeout, body, out)
	})
	return err
}

func (c *Client) doPost(ctx context.Context, path string, timeout time.Duration, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ExternalCallDuration.WithLabelValues("embedding", path).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ExternalCallErrors.WithLabelValues("embedding", path).Inc()
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ExternalCallErrors.WithLabelValues("embedding", path).Inc()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return fmt.Errorf("%s: HTTP %d: %s", path, resp.StatusCode, errBody)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
