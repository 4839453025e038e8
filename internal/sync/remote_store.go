package sync

import (
	"context"
	"fmt"

	"barbuddy/internal/models"
	"barbuddy/internal/providers"
	"barbuddy/internal/structures"
)

// RemoteStore is the remote backing table: upsert keyed by venue and window
// start, bulk read filtered by venue IDs, full read for startup seeding.
type RemoteStore interface {
	UpsertBatch(ctx context.Context, entries []*models.SyncEntry) error
	FetchByVenues(ctx context.Context, venueIDs []string) (map[string]*models.VenueRecord, error)
	FetchAll(ctx context.Context) ([]*models.VenueRecord, error)
	Close() error
}

// NewRemoteStore builds the configured remote store. With sync disabled the
// engine runs local-only against a noop store, so the rest of the pipeline
// behaves identically.
func NewRemoteStore(conf *structures.Config, logger providers.Logger) (RemoteStore, error) {
	if !conf.Sync.Enabled {
		logger.Infof(providers.TypeApp, "Remote sync disabled, running local-only")
		return &noopRemoteStore{}, nil
	}

	driver := conf.Sync.Driver
	if driver == "" {
		driver = "sqlite3"
	}
	if conf.Sync.DSN == "" {
		return nil, fmt.Errorf("sync enabled but no DSN configured")
	}
	return NewSQLiteStore(driver, conf.Sync.DSN, logger)
}

type noopRemoteStore struct{}

func (n *noopRemoteStore) UpsertBatch(_ context.Context, _ []*models.SyncEntry) error {
	return nil
}

func (n *noopRemoteStore) FetchByVenues(_ context.Context, _ []string) (map[string]*models.VenueRecord, error) {
	return map[string]*models.VenueRecord{}, nil
}

func (n *noopRemoteStore) FetchAll(_ context.Context) ([]*models.VenueRecord, error) {
	return nil, nil
}

func (n *noopRemoteStore) Close() error { return nil }
