package service

import (
	"context"

	"go.uber.org/zap"

	"evcharge/backend/services/catalog-service/internal/models"
	"evcharge/backend/services/catalog-service/internal/sources"
)

// SyncLogReader reads recent audit rows.
type SyncLogReader interface {
	RecentBySource(ctx context.Context, perSource int) (map[string][]models.SyncResult, error)
}

// StatusCacheReader reads the cached latest result per source.
type StatusCacheReader interface {
	Latest(ctx context.Context, sourceID string) (*models.SyncResult, error)
}

// StatusService reports recent sync results grouped by source so operators
// can spot degraded sources.
type StatusService struct {
	syncLog  SyncLogReader
	cache    StatusCacheReader
	registry *sources.Registry
	logger   *zap.Logger
}

// NewStatusService builds the status reader. cache may be nil.
func NewStatusService(syncLog SyncLogReader, cache StatusCacheReader, registry *sources.Registry, logger *zap.Logger) *StatusService {
	return &StatusService{syncLog: syncLog, cache: cache, registry: registry, logger: logger}
}

// Recent returns up to perSource recent results for every registered source.
// A source missing from the log (fresh deployment, log rotation) falls back
// to its cached latest result when one exists.
func (s *StatusService) Recent(ctx context.Context, perSource int) (map[string][]models.SyncResult, error) {
	results, err := s.syncLog.RecentBySource(ctx, perSource)
	if err != nil {
		return nil, err
	}

	for _, src := range s.registry.All() {
		if len(results[src.ID()]) > 0 || s.cache == nil {
			continue
		}
		cached, cacheErr := s.cache.Latest(ctx, src.ID())
		if cacheErr != nil || cached == nil {
			continue
		}
		results[src.ID()] = []models.SyncResult{*cached}
	}
	return results, nil
}
