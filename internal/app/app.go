// Package app wires configuration into the store, caches, backend client and
// services shared by the server and the CLIs.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/api"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/backend"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/cache"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/config"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/metrics"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/repository"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/repository/memory"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/service"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

type App struct {
	Store    repository.Store
	DB       *postgres.DB
	Objects  storage.ObjectStorage
	Metrics  *metrics.Registry
	Services *api.Services
}

// New builds the application. With no database configured the in-memory
// store is used; with the cache disabled the caches and locks are no-ops.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Metrics: metrics.NewRegistry()}

	if cfg.Database.Configured() {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		a.DB = db
		a.Store = postgres.NewStore(db)
	} else {
		log.Warn().Msg("no database configured, using in-memory store")
		a.Store = memory.NewStore()
	}

	dashboardCache, err := cache.NewDashboardCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("dashboard cache unavailable, continuing without cache")
		dashboardCache = cache.NewNoopDashboardCache()
	}
	statusCache, err := cache.NewAnomalyStatusCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("anomaly status cache unavailable, continuing without cache")
		statusCache = cache.NewNoopAnomalyStatusCache()
	}
	locker, err := cache.NewLocker(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("mutation lock unavailable, falling back to last-write-wins")
		locker = cache.NewNoopLocker()
	}

	if cfg.Storage.Enabled {
		s3, err := storage.NewS3Client(cfg.Storage)
		if err != nil {
			log.Warn().Err(err).Msg("object storage unavailable, uploads will not be archived")
		} else {
			a.Objects = s3
		}
	}

	client, err := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: time.Duration(cfg.Backend.TimeoutSeconds) * time.Second,
	}, a.Metrics)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Services = &api.Services{
		Data:        service.NewDataService(a.Store, client, locker, a.Objects, cfg.Storage.Prefix),
		Anomaly:     service.NewAnomalyService(a.Store, client, statusCache, locker, a.Metrics),
		Inventory:   service.NewInventoryService(a.Store, client),
		Procurement: service.NewProcurementService(a.Store, client, locker, a.Metrics),
		Forecast:    service.NewForecastService(a.Store, client, locker, a.Metrics),
		Dashboard:   service.NewDashboardService(client, dashboardCache, a.Metrics),
		Metrics:     a.Metrics,
	}
	return a, nil
}

func (a *App) Close() {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close database")
		}
	}
}
