package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"barbuddy/internal/persistence/interfaces"
	"barbuddy/internal/providers"
	"barbuddy/internal/services"
	"barbuddy/internal/structures"
)

const seedTimeout = 30 * time.Second

// Scheduler owns the periodic work: ledger snapshots, replication flushes
// and the window-reset sweep. Restore runs at boot (local snapshot first,
// then remote seed), Persist at shutdown. All scheduled ops share one mutex
// so a persist never overlaps a flush.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	service     services.InteractionServiceInterface
	fileManager *FileManager
	coordinator services.SyncCoordinatorInterface
	metrics     providers.MetricsProviderInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		start := time.Now()
		err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
		if err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
			return
		}
		s.metrics.ObservePersistenceDuration(time.Since(start))
		s.logger.Infof(providers.TypeApp, "Persisted data to file %s", s.config.Persistence.FilePath)
	})

	if s.config.Sync.FlushInterval > 0 {
		s.cron.AddFunc(gron.Every(s.config.Sync.FlushInterval), func() {
			s.opsMu.Lock()
			defer s.opsMu.Unlock()

			ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
			defer cancel()
			if err := s.coordinator.Flush(ctx); err != nil {
				s.logger.Warnf(providers.TypeApp, "Scheduled sync flush failed, will retry: %s", err)
			}
		})
	}

	s.cron.AddFunc(gron.Every(s.config.Windows.SweepInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		s.service.ApplyPendingResets()
		s.metrics.SetVenuesTotal(s.service.VenueCount())
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Restore loads the local snapshot, then seeds from the remote store so
// popularity views are populated before any local interaction this session.
// A remote failure degrades to local-only and is not fatal.
func (s *Scheduler) Restore() error {
	if err := s.fileManager.LoadFromFile(s.config.Persistence.FilePath); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()
	if err := s.coordinator.Seed(ctx); err != nil {
		s.logger.Warnf(providers.TypeApp, "Remote seed failed, continuing with local state: %s", err)
	}
	return nil
}

// Persist saves the snapshot and attempts a final replication flush.
func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()
	if err := s.coordinator.Flush(ctx); err != nil {
		s.logger.Warnf(providers.TypeApp, "Final sync flush failed, queue persisted for next start: %s", err)
	}

	s.logger.Infof(providers.TypeApp, "Persisting ledger to file...")
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.InteractionServiceInterface, fileManager *FileManager, coordinator services.SyncCoordinatorInterface, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		service:     service,
		fileManager: fileManager,
		coordinator: coordinator,
		metrics:     metrics,
	}
}
