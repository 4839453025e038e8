package sync

import (
	"context"
	"sync"
	"time"

	"barbuddy/internal/models"
	"barbuddy/internal/providers"
	"barbuddy/internal/structures"
	"barbuddy/internal/timewindow"
)

const defaultRetryBackoff = 30 * time.Second

// Coordinator replicates accepted ledger mutations to the remote store. The
// queue is FIFO and survives restarts via the persistence snapshot; a failed
// flush leaves entries queued and arms a backoff gate checked by the next
// trigger instead of looping immediately. Flush failures never reach the
// caller of the original interaction; local state already reflects it.
type Coordinator struct {
	mu         sync.Mutex
	queue      []*models.SyncEntry
	retryAfter time.Time

	remote  RemoteStore
	ledger  *models.Ledger
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	clock   timewindow.Clock
	backoff time.Duration
}

func NewCoordinator(conf *structures.Config, ledger *models.Ledger, remote RemoteStore, logger providers.Logger, metrics providers.MetricsProviderInterface, clock timewindow.Clock) *Coordinator {
	backoff := conf.Sync.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	return &Coordinator{
		remote:  remote,
		ledger:  ledger,
		logger:  logger,
		metrics: metrics,
		clock:   clock,
		backoff: backoff,
	}
}

// Enqueue captures the full current record state for later replication. The
// record must already be a copy owned by the caller.
func (c *Coordinator) Enqueue(rec *models.VenueRecord) {
	if rec == nil || rec.VenueID == "" {
		return
	}
	c.mu.Lock()
	c.queue = append(c.queue, &models.SyncEntry{
		VenueID:    rec.VenueID,
		SnapshotAt: c.clock(),
		Payload:    rec,
	})
	depth := len(c.queue)
	c.mu.Unlock()
	c.metrics.SetSyncQueueDepth(depth)
}

// Flush drains the queue and bulk-upserts to the remote store. Entries for
// the same venue collapse to the latest, since each payload is a full record
// snapshot that subsumes earlier ones. Conflicts resolve last-write-wins by
// LastMutatedAt: a strictly newer remote record is adopted into the local
// ledger and not overwritten.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	if len(c.queue) == 0 {
		c.mu.Unlock()
		return nil
	}
	if c.clock().Before(c.retryAfter) {
		c.mu.Unlock()
		return nil
	}
	batch := c.queue
	c.queue = nil
	c.mu.Unlock()

	start := c.clock()
	err := c.flushBatch(ctx, batch)
	c.metrics.ObserveSyncFlushDuration(c.clock().Sub(start))

	c.mu.Lock()
	depth := len(c.queue)
	c.mu.Unlock()
	c.metrics.SetSyncQueueDepth(depth)
	return err
}

func (c *Coordinator) flushBatch(ctx context.Context, batch []*models.SyncEntry) error {
	latest := make(map[string]*models.SyncEntry, len(batch))
	order := make([]string, 0, len(batch))
	for _, entry := range batch {
		if entry == nil || entry.Payload == nil {
			continue
		}
		if _, seen := latest[entry.VenueID]; !seen {
			order = append(order, entry.VenueID)
		}
		latest[entry.VenueID] = entry
	}
	if len(order) == 0 {
		return nil
	}

	remoteRecs, err := c.remote.FetchByVenues(ctx, order)
	if err != nil {
		c.requeue(batch)
		c.logger.Warnf(providers.TypeApp, "Sync flush: remote read failed, %d entries requeued: %s", len(batch), err)
		return err
	}

	upserts := make([]*models.SyncEntry, 0, len(order))
	for _, venueID := range order {
		entry := latest[venueID]
		if remote, ok := remoteRecs[venueID]; ok && remote.LastMutatedAt.After(entry.Payload.LastMutatedAt) {
			// Remote wins; pull its state into the local ledger.
			c.ledger.Adopt(remote)
			continue
		}
		upserts = append(upserts, entry)
	}

	if len(upserts) > 0 {
		if err := c.remote.UpsertBatch(ctx, upserts); err != nil {
			c.requeue(upserts)
			c.logger.Warnf(providers.TypeApp, "Sync flush: upsert failed, %d entries requeued: %s", len(upserts), err)
			return err
		}
	}
	c.logger.Debugf(providers.TypeApp, "Sync flush: %d venues replicated, %d adopted from remote", len(upserts), len(order)-len(upserts))
	return nil
}

// requeue puts undelivered entries back at the head of the queue in their
// original order and arms the retry gate.
func (c *Coordinator) requeue(entries []*models.SyncEntry) {
	c.mu.Lock()
	c.queue = append(entries, c.queue...)
	c.retryAfter = c.clock().Add(c.backoff)
	c.mu.Unlock()
}

// Seed populates the ledger from the remote store at startup. Local records
// with a newer LastMutatedAt are left untouched.
func (c *Coordinator) Seed(ctx context.Context) error {
	records, err := c.remote.FetchAll(ctx)
	if err != nil {
		return err
	}
	adopted := 0
	for _, rec := range records {
		if c.ledger.Adopt(rec) {
			adopted++
		}
	}
	c.logger.Infof(providers.TypeApp, "Seeded %d of %d records from remote store", adopted, len(records))
	return nil
}

// QueueDepth returns the number of pending replication entries.
func (c *Coordinator) QueueDepth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// SnapshotQueue returns a copy of the pending entries for persistence.
func (c *Coordinator) SnapshotQueue() []*models.SyncEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*models.SyncEntry, len(c.queue))
	copy(out, c.queue)
	return out
}

// RestoreQueue reloads pending entries from a persisted snapshot.
func (c *Coordinator) RestoreQueue(entries []*models.SyncEntry) {
	c.mu.Lock()
	c.queue = c.queue[:0]
	for _, entry := range entries {
		if entry == nil || entry.Payload == nil || entry.VenueID == "" {
			continue
		}
		c.queue = append(c.queue, entry)
	}
	depth := len(c.queue)
	c.mu.Unlock()
	c.metrics.SetSyncQueueDepth(depth)
}
