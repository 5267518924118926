// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package profilesync

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/touring-app/rankd/internal/metrics"
	"github.com/touring-app/rankd/internal/profile"
)

// HTTPEventSource fetches behavioral events from the analytics export
// endpoint: GET {url}?since=<RFC3339> returning a JSON array of events.
type HTTPEventSource struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
}

// NewHTTPEventSource creates an event source against the analytics
// export URL.
func NewHTTPEventSource(exportURL string, timeout time.Duration) *HTTPEventSource {
	return &HTTPEventSource{
		url:        exportURL,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// FetchEvents returns every event since the given time.
func (s *HTTPEventSource) FetchEvents(ctx context.Context, since time.Time) ([]profile.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := url.Values{"since": {since.UTC().Format(time.RFC3339)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build events request: %w", err)
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	metrics.ExternalCallDuration.WithLabelValues("events", "/export").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ExternalCallErrors.WithLabelValues("events", "/export").Inc()
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ExternalCallErrors.WithLabelValues("events", "/export").Inc()
		return nil, fmt.Errorf("fetch events: HTTP %d", resp.StatusCode)
	}

	var events []profile.Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

// StaticEventSource serves a fixed event slice. Used in tests and when
// no export endpoint is configured.
type StaticEventSource struct {
	Events []profile.Event
}

// FetchEvents returns the events whose timestamp is at or after since.
func (s *StaticEventSource) FetchEvents(_ context.Context, since time.Time) ([]profile.Event, error) {
	var out []profile.Event
	for _, ev := range s.Events {
		if !ev.Timestamp.Before(since) {
			out = append(out, ev)
		}
	}
	return out, nil
}
