package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"evcharge/backend/services/catalog-service/internal/models"
	"evcharge/backend/services/catalog-service/internal/sources"
)

// SyncRunner is the orchestrator entry point the scheduler drives.
type SyncRunner interface {
	SyncOne(ctx context.Context, sourceID string) (models.SyncResult, error)
}

// Scheduler runs one timer loop per registered source. Each source gets an
// immediate pass on start, then a pass per interval tick. Passes for the same
// source are serialized by the loop itself; a pass that overruns its interval
// delays the next tick instead of running alongside it.
type Scheduler struct {
	runner   SyncRunner
	registry *sources.Registry
	logger   *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewScheduler builds the scheduler.
func NewScheduler(runner SyncRunner, registry *sources.Registry, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		registry: registry,
		logger:   logger,
	}
}

// Start launches the per-source loops. Calling Start on a running scheduler
// is an error.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler: already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	for _, src := range s.registry.All() {
		s.wg.Add(1)
		go s.runSource(runCtx, src)
	}

	s.logger.Info("scheduler started", zap.Int("sources", s.registry.Len()))
	return nil
}

// Stop cancels all loops and waits for in-flight passes to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runSource(ctx context.Context, src sources.Source) {
	defer s.wg.Done()

	interval := src.Interval()
	s.runPass(ctx, src.ID(), interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runPass(ctx, src.ID(), interval)
		}
	}
}

func (s *Scheduler) runPass(ctx context.Context, sourceID string, interval time.Duration) {
	started := time.Now()
	if _, err := s.runner.SyncOne(ctx, sourceID); err != nil {
		s.logger.Error("scheduled sync failed",
			zap.String("source", sourceID),
			zap.Error(err))
	}
	if elapsed := time.Since(started); elapsed > interval {
		s.logger.Warn("sync pass overran its interval",
			zap.String("source", sourceID),
			zap.Duration("elapsed", elapsed),
			zap.Duration("interval", interval))
	}
}
