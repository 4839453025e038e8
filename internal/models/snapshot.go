package models

import "time"

// SyncEntry is one queued replication fact: the full record state for a venue
// as of SnapshotAt. Entries are immutable once enqueued and idempotent on the
// remote side: the upsert is keyed by venue and window start, so replaying
// an entry never double-counts.
type SyncEntry struct {
	VenueID    string       `json:"venue_id"`
	SnapshotAt time.Time    `json:"snapshot_at"`
	Payload    *VenueRecord `json:"payload"`
}

// Snapshot is the persisted on-disk envelope: all venue records ordered by
// ID, plus any replication entries that had not been flushed when the
// snapshot was taken, so queued work survives a restart.
type Snapshot struct {
	Version int            `json:"version"`
	Venues  []*VenueRecord `json:"venues"`
	Queue   []*SyncEntry   `json:"queue,omitempty"`
}

// SnapshotVersion is the current envelope version. Version 1 files were a
// bare record array without the queue; LoadFromFile still migrates them.
const SnapshotVersion = 2
