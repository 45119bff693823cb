package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tododash/core/internal/domain/entities"
	"github.com/tododash/core/internal/infrastructure/logger"
	"github.com/tododash/core/internal/infrastructure/metrics"
	"github.com/tododash/core/internal/ports"
)

const snapshotKey = "last_sync"

// RefreshService orchestrates one refresh cycle: guard check, fetch, view
// build, last-good retention and optional snapshot persistence. Cycles are
// serialized; a failed fetch keeps the previous output in place.
type RefreshService struct {
	fetcher   ports.TaskFetcher
	builder   ports.ViewBuilder
	snapshots ports.SnapshotRepository // nil when snapshots are disabled
	scheduler *Scheduler
	groups    []entities.FilterGroup
	metrics   *metrics.Metrics
	logger    *logger.Logger

	mu         sync.RWMutex
	refreshing sync.Mutex
	payload    *entities.SyncPayload
	views      []entities.View
	lastUpdate time.Time
}

// NewRefreshService creates a new refresh service. snapshots may be nil.
func NewRefreshService(
	fetcher ports.TaskFetcher,
	builder ports.ViewBuilder,
	snapshots ports.SnapshotRepository,
	scheduler *Scheduler,
	groups []entities.FilterGroup,
	m *metrics.Metrics,
	appLogger *logger.Logger,
) *RefreshService {
	return &RefreshService{
		fetcher:   fetcher,
		builder:   builder,
		snapshots: snapshots,
		scheduler: scheduler,
		groups:    groups,
		metrics:   m,
		logger:    appLogger.WithComponent("refresh"),
	}
}

// Refresh runs one cycle. Unless forced, the scheduler guard may skip it
// (not an error). A fetch failure leaves the last-known views untouched.
func (s *RefreshService) Refresh(ctx context.Context, force bool) error {
	s.refreshing.Lock()
	defer s.refreshing.Unlock()

	if !force && !s.scheduler.ShouldRefreshNow() {
		s.logger.Debug("Refresh skipped by scheduler guard")
		return nil
	}
	s.scheduler.MarkRequested()

	cycleID := uuid.New().String()
	start := time.Now()

	payload, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.metrics.FetchErrors.Inc()
		s.metrics.RefreshTotal.WithLabelValues("fetch_error").Inc()
		s.logger.LogRefreshCycle(cycleID, 0, len(s.groups), elapsedMS(start), err)
		return fmt.Errorf("fetch failed: %w", err)
	}

	views := s.builder.BuildViews(payload, s.groups)

	s.mu.Lock()
	s.payload = payload
	s.views = views
	s.lastUpdate = time.Now()
	s.mu.Unlock()

	for _, v := range views {
		s.metrics.GroupItems.WithLabelValues(v.Name).Set(float64(len(v.Items)))
	}
	s.metrics.RefreshTotal.WithLabelValues("ok").Inc()
	s.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	s.logger.LogRefreshCycle(cycleID, len(payload.Items), len(views), elapsedMS(start), nil)

	if s.snapshots != nil {
		if err := s.snapshots.Save(ctx, snapshotKey, payload); err != nil {
			s.logger.Warnw("Failed to persist snapshot", "error", err)
		}
	}

	return nil
}

// Restore warms the last-known output from the snapshot store, if any.
// Called once at startup, before the first fetch.
func (s *RefreshService) Restore(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}

	payload, err := s.snapshots.Load(ctx, snapshotKey)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if payload == nil {
		return nil
	}

	views := s.builder.BuildViews(payload, s.groups)

	s.mu.Lock()
	s.payload = payload
	s.views = views
	s.mu.Unlock()

	s.logger.Infow("Restored views from snapshot", "items", len(payload.Items))
	return nil
}

// Run drives periodic refreshes until the context is cancelled. The guard
// still applies to every tick, so ticks during suspension are no-ops.
func (s *RefreshService) Run(ctx context.Context, interval time.Duration) {
	if err := s.Refresh(ctx, true); err != nil {
		s.logger.Errorw("Initial refresh failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Refresh loop stopped")
			return
		case <-ticker.C:
			if err := s.Refresh(ctx, false); err != nil {
				s.logger.Errorw("Scheduled refresh failed", "error", err)
			}
		}
	}
}

// Views returns the last-known output: the built views, the payload they
// were built from (for reference-table lookups), and the last update time.
// Payload is nil until the first successful refresh or restore.
func (s *RefreshService) Views() ([]entities.View, *entities.SyncPayload, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.views, s.payload, s.lastUpdate
}

// Scheduler exposes the refresh guard for the scheduler endpoints.
func (s *RefreshService) Scheduler() *Scheduler {
	return s.scheduler
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / 1e6
}
