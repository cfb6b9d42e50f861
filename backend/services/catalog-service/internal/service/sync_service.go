package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"evcharge/backend/services/catalog-service/internal/match"
	"evcharge/backend/services/catalog-service/internal/merge"
	"evcharge/backend/services/catalog-service/internal/models"
	"evcharge/backend/services/catalog-service/internal/sources"
)

// ErrSourceNotFound reports a sync trigger for an unregistered source id.
var ErrSourceNotFound = errors.New("sync: source not registered")

// StationStore is the storage contract the orchestrator needs.
type StationStore interface {
	FindWithinRadius(ctx context.Context, lat, lng, meters float64) ([]models.Station, error)
	Insert(ctx context.Context, station *models.Station) error
	Update(ctx context.Context, station *models.Station) error
}

// SyncLogStore appends immutable sync audit rows.
type SyncLogStore interface {
	Append(ctx context.Context, result models.SyncResult) error
}

// StatusCache keeps the latest result per source for fast status reads.
type StatusCache interface {
	Save(ctx context.Context, result models.SyncResult) error
}

// SyncService runs one sync pass per source: fetch, match, merge or insert,
// log. Sources are isolated from each other's failures.
type SyncService struct {
	registry     *sources.Registry
	stations     StationStore
	syncLog      SyncLogStore
	cache        StatusCache
	matcher      *match.Matcher
	fetchTimeout time.Duration
	logger       *zap.Logger
}

// NewSyncService builds the orchestrator. cache may be nil.
func NewSyncService(
	registry *sources.Registry,
	stations StationStore,
	syncLog SyncLogStore,
	cache StatusCache,
	matcher *match.Matcher,
	fetchTimeout time.Duration,
	logger *zap.Logger,
) *SyncService {
	if fetchTimeout <= 0 {
		fetchTimeout = 2 * time.Minute
	}
	return &SyncService{
		registry:     registry,
		stations:     stations,
		syncLog:      syncLog,
		cache:        cache,
		matcher:      matcher,
		fetchTimeout: fetchTimeout,
		logger:       logger,
	}
}

// SyncOne runs a full pass for a single source and returns its result.
// A transport-level fetch failure is reported inside the result, not as an
// error; the only error is ErrSourceNotFound for an unknown id.
func (s *SyncService) SyncOne(ctx context.Context, sourceID string) (models.SyncResult, error) {
	src, ok := s.registry.Get(sourceID)
	if !ok {
		return models.SyncResult{}, ErrSourceNotFound
	}

	started := time.Now().UTC()
	result := models.SyncResult{SourceID: sourceID, StartedAt: started}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	records, err := src.Fetch(fetchCtx)
	cancel()
	if err != nil {
		result.FetchFailed = true
		result.ErrorMessage = err.Error()
		result.DurationMS = time.Since(started).Milliseconds()
		s.logger.Warn("source fetch failed",
			zap.String("source", sourceID),
			zap.Error(err))
		s.record(ctx, result)
		return result, nil
	}

	for _, rec := range records {
		switch outcome := s.processRecord(ctx, rec); outcome {
		case outcomeInserted:
			result.Inserted++
		case outcomeUpdated:
			result.Updated++
		default:
			result.Errored++
		}
	}

	result.DurationMS = time.Since(started).Milliseconds()
	s.logger.Info("sync pass finished",
		zap.String("source", sourceID),
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
		zap.Int("errored", result.Errored),
		zap.Int64("duration_ms", result.DurationMS))

	s.record(ctx, result)
	return result, nil
}

// SyncAll runs every registered source concurrently. One source's failure
// never touches its siblings; results come back in registration order.
func (s *SyncService) SyncAll(ctx context.Context) []models.SyncResult {
	srcs := s.registry.All()
	results := make([]models.SyncResult, len(srcs))

	var wg sync.WaitGroup
	for i, src := range srcs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			result, err := s.SyncOne(ctx, id)
			if err != nil {
				// unreachable for registered sources, keep the slot honest
				result = models.SyncResult{SourceID: id, FetchFailed: true, ErrorMessage: err.Error(), StartedAt: time.Now().UTC()}
			}
			results[i] = result
		}(i, src.ID())
	}
	wg.Wait()
	return results
}

type recordOutcome int

const (
	outcomeErrored recordOutcome = iota
	outcomeInserted
	outcomeUpdated
)

func (s *SyncService) processRecord(ctx context.Context, rec models.StationRecord) recordOutcome {
	if err := rec.Validate(); err != nil {
		s.logger.Debug("invalid record",
			zap.String("source", rec.SourceID),
			zap.String("name", rec.Name),
			zap.Error(err))
		return outcomeErrored
	}

	candidates, err := s.stations.FindWithinRadius(ctx, rec.Latitude, rec.Longitude, s.matcher.RadiusMeters)
	if err != nil {
		s.logger.Warn("candidate lookup failed",
			zap.String("source", rec.SourceID),
			zap.Error(err))
		return outcomeErrored
	}

	if existing, _, ok := s.matcher.Best(candidates, rec); ok {
		merge.Apply(existing, rec)
		if err := s.stations.Update(ctx, existing); err != nil {
			s.logger.Warn("station update failed",
				zap.String("station_id", existing.ID),
				zap.Error(err))
			return outcomeErrored
		}
		return outcomeUpdated
	}

	station := &models.Station{StationRecord: rec}
	if err := s.stations.Insert(ctx, station); err != nil {
		s.logger.Warn("station insert failed",
			zap.String("source", rec.SourceID),
			zap.String("name", rec.Name),
			zap.Error(err))
		return outcomeErrored
	}
	return outcomeInserted
}

func (s *SyncService) record(ctx context.Context, result models.SyncResult) {
	if err := s.syncLog.Append(ctx, result); err != nil {
		s.logger.Warn("failed to append sync log",
			zap.String("source", result.SourceID),
			zap.Error(err))
	}
	if s.cache != nil {
		if err := s.cache.Save(ctx, result); err != nil {
			s.logger.Warn("failed to cache sync result",
				zap.String("source", result.SourceID),
				zap.Error(err))
		}
	}
}
