// Rankd - Preference-Driven Ranking Core for the Touring Marketplace
// Copyright 2026 Rankd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/touring-app/rankd

// Rankd is the preference-driven ranking service of the touring
// marketplace: it aggregates behavioral events into user profiles,
// matches destination zones against extracted preferences, and
// discovers ranked points of interest inside each zone.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/touring-app/rankd/internal/api"
	"github.com/touring-app/rankd/internal/cache"
	"github.com/touring-app/rankd/internal/config"
	"github.com/touring-app/rankd/internal/embedding"
	"github.com/touring-app/rankd/internal/logging"
	"github.com/touring-app/rankd/internal/places"
	"github.com/touring-app/rankd/internal/poi"
	"github.com/touring-app/rankd/internal/profile"
	"github.com/touring-app/rankd/internal/profilesync"
	"github.com/touring-app/rankd/internal/zone"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logging.Info().Msg("rankd starting")

	db, err := openStore(cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("open document store")
	}
	defer db.Close()

	zoneStore := zone.NewBadgerStore(db)
	profileStore := profile.NewBadgerStore(db)

	embedClient := embedding.NewClient(cfg.Embedding)

	placeCache := cache.New(cfg.Places.CacheTTL)
	defer placeCache.Close()
	placeClient := places.NewClient(cfg.Places, placeCache)

	rootLogger := logging.Logger()
	matcher := zone.NewMatcher(zoneStore, embedClient, cfg.Matcher, cfg.Embedding, rootLogger)
	finder := poi.NewFinder(zoneStore, placeClient, cfg.POI, rootLogger)
	aggregator := profile.NewAggregator(cfg.Aggregator, rootLogger)

	var source profilesync.EventSource = &profilesync.StaticEventSource{}
	if cfg.Sync.EventsURL != "" {
		source = profilesync.NewHTTPEventSource(cfg.Sync.EventsURL, cfg.Sync.EventsTimeout)
	} else {
		logging.Warn().Msg("no events_url configured, profile sync will see no events")
	}
	syncer := profilesync.NewSyncer(
		source, aggregator, profileStore, zoneStore, embedClient,
		cfg.Sync, cfg.Aggregator.WindowDays, rootLogger,
	)

	handlers := api.NewHandlers(matcher, finder, syncer, embedClient, cfg.POI)
	router := api.NewRouter(handlers, cfg.Server)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger()}
	supervisor := suture.New("rankd", suture.Spec{
		EventHook:        handler.MustHook(),
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		Timeout:          10 * time.Second,
	})
	supervisor.Add(api.NewServer(router, cfg.Server))
	supervisor.Add(profilesync.NewService(syncer, cfg.Sync.Interval))

	if err := supervisor.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Fatal().Err(err).Msg("supervisor exited")
	}
	logging.Info().Msg("rankd stopped")
}

// openStore opens the BadgerDB document store, routing its internal
// logging through zerolog.
func openStore(cfg config.StoreConfig) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithLogger(badgerLogger{})
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(badgerLogger{})
	}
	return badger.Open(opts)
}

// badgerLogger adapts BadgerDB's logger interface onto zerolog.
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, v ...interface{})   { logging.Error().Msgf(f, v...) }
func (badgerLogger) Warningf(f string, v ...interface{}) { logging.Warn().Msgf(f, v...) }
func (badgerLogger) Infof(f string, v ...interface{})    { logging.Debug().Msgf(f, v...) }
func (badgerLogger) Debugf(f string, v ...interface{})   { logging.Debug().Msgf(f, v...) }
