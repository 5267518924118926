// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/touring-app/rankd/internal/config"
	"github.com/touring-app/rankd/internal/logging"
)

// shutdownGrace bounds how long in-flight requests get on shutdown.
const shutdownGrace = 10 * time.Second

// Server runs the HTTP API as a supervised service.
type Server struct {
	srv  *http.Server
	addr string
}

// NewServer builds the HTTP server around the assembled router.
func NewServer(handler http.Handler, cfg config.ServerConfig) *Server {
	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       cfg.Timeout,
			WriteTimeout:      cfg.Timeout,
			IdleTimeout:       2 * cfg.Timeout,
		},
	}
}

// Serve listens until ctx is canceled, then drains in-flight requests.
// It satisfies suture.Service.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.addr).Msg("http server listening")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return ctx.Err()
	}
}

func (s *Server) String() string { return "http-server" }
