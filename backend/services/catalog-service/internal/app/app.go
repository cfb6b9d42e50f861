package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"evcharge/backend/libs/db"
	libredis "evcharge/backend/libs/redis"
	"evcharge/backend/services/catalog-service/internal/config"
	httpserver "evcharge/backend/services/catalog-service/internal/http"
	"evcharge/backend/services/catalog-service/internal/http/handlers"
	"evcharge/backend/services/catalog-service/internal/match"
	redisstore "evcharge/backend/services/catalog-service/internal/redis"
	"evcharge/backend/services/catalog-service/internal/repository"
	"evcharge/backend/services/catalog-service/internal/service"
	"evcharge/backend/services/catalog-service/internal/sources"
)

// App wires catalog-service dependencies.
type App struct {
	server      *httpserver.Server
	scheduler   *service.Scheduler
	runSchedule bool
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgresDB(cfg.Database.DSN, db.PoolOptions{})
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client
	var cache *redisstore.StatusCache
	if cfg.Redis.Addr != "" {
		redisClient, err = libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		cache = redisstore.NewStatusCache(redisClient, cfg.StatusTTL())
	}

	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		sqlDB.Close()
		if redisClient != nil {
			redisClient.Close()
		}
		return nil, err
	}

	stationRepo := repository.NewStationRepository(sqlDB)
	syncLogRepo := repository.NewSyncLogRepository(sqlDB)
	matcher := match.NewMatcher(cfg.Sync.RadiusMeters)

	var statusCache service.StatusCache
	var statusCacheReader service.StatusCacheReader
	if cache != nil {
		statusCache = cache
		statusCacheReader = cache
	}

	syncService := service.NewSyncService(
		registry, stationRepo, syncLogRepo, statusCache,
		matcher, cfg.FetchTimeout(), logger,
	)
	statusService := service.NewStatusService(syncLogRepo, statusCacheReader, registry, logger)
	grouper := service.NewGrouper(cfg.Sync.RadiusMeters)
	catalogService := service.NewCatalogService(stationRepo, grouper, logger)
	scheduler := service.NewScheduler(syncService, registry, logger)

	routes := httpserver.Routes{
		Nearby:     handlers.NewNearbyHandler(catalogService),
		SyncStatus: handlers.NewSyncStatusHandler(statusService),
		SyncOne:    handlers.NewSyncOneHandler(syncService),
		SyncAll:    handlers.NewSyncAllHandler(syncService, logger),
		Health:     handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		scheduler:   scheduler,
		runSchedule: cfg.Sync.SchedulerEnabled,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

func buildRegistry(cfg *config.Config, logger *zap.Logger) (*sources.Registry, error) {
	var srcs []sources.Source

	if cfg.Sources.OpenChargeMap.Enabled {
		ocm := cfg.Sources.OpenChargeMap
		srcs = append(srcs, sources.NewOpenChargeMap(sources.OpenChargeMapConfig{
			APIKey:        ocm.APIKey,
			BaseURL:       ocm.BaseURL,
			Latitude:      ocm.Latitude,
			Longitude:     ocm.Longitude,
			DistanceKM:    ocm.DistanceKM,
			MaxResults:    ocm.MaxResults,
			IntervalHours: ocm.IntervalHours,
		}, nil, logger))
	}

	if cfg.Sources.Overpass.Enabled {
		ovp := cfg.Sources.Overpass
		srcs = append(srcs, sources.NewOverpass(sources.OverpassConfig{
			BaseURL:       ovp.BaseURL,
			South:         ovp.South,
			West:          ovp.West,
			North:         ovp.North,
			East:          ovp.East,
			IntervalHours: ovp.IntervalHours,
		}, nil, logger))
	}

	return sources.NewRegistry(srcs...)
}

// Run starts the sync scheduler and the HTTP server, blocking until ctx is
// cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.runSchedule {
		if err := a.scheduler.Start(ctx); err != nil {
			return err
		}
		defer a.scheduler.Stop()
	}
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
