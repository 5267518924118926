// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package profilesync

import (
	"context"
	"time"
)

// Service runs the profile sync on a fixed interval under a supervision
// tree. A failing run is logged and retried at the next tick rather than
// crashing the service.
type Service struct {
	syncer   *Syncer
	interval time.Duration
}

// NewService wraps a syncer into a periodically-running service.
func NewService(syncer *Syncer, interval time.Duration) *Service {
	return &Service{syncer: syncer, interval: interval}
}

// Serve runs sync ticks until ctx is canceled. It satisfies
// suture.Service. An interval of zero disables periodic syncing; the
// service then just waits for shutdown so manual syncs via the API stay
// available.
func (s *Service) Serve(ctx context.Context) error {
	if s.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.syncer.SyncProfiles(ctx); err != nil {
				s.syncer.logger.Error().Err(err).Msg("scheduled profile sync failed")
			}
		}
	}
}

func (s *Service) String() string { return "profilesync" }
