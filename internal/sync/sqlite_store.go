package sync

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"

	"barbuddy/internal/models"
	"barbuddy/internal/providers"
	"barbuddy/internal/timewindow"
)

const schema = `
CREATE TABLE IF NOT EXISTS venue_interactions (
	venue_id         TEXT    NOT NULL,
	window_start     INTEGER NOT NULL,
	visit_count      INTEGER NOT NULL,
	total_visits     INTEGER NOT NULL,
	last_visit_at    INTEGER NOT NULL,
	arrival_slot     TEXT    NOT NULL DEFAULT '',
	like_count       INTEGER NOT NULL,
	daily_likes_used INTEGER NOT NULL,
	last_like_reset  INTEGER NOT NULL,
	like_slot        TEXT    NOT NULL DEFAULT '',
	slot_stats       TEXT    NOT NULL DEFAULT '{}',
	last_mutated_at  INTEGER NOT NULL,
	PRIMARY KEY (venue_id, window_start)
)`

const upsertQuery = `
INSERT INTO venue_interactions (
	venue_id, window_start, visit_count, total_visits, last_visit_at,
	arrival_slot, like_count, daily_likes_used, last_like_reset, like_slot,
	slot_stats, last_mutated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (venue_id, window_start) DO UPDATE SET
	visit_count      = excluded.visit_count,
	total_visits     = excluded.total_visits,
	last_visit_at    = excluded.last_visit_at,
	arrival_slot     = excluded.arrival_slot,
	like_count       = excluded.like_count,
	daily_likes_used = excluded.daily_likes_used,
	last_like_reset  = excluded.last_like_reset,
	like_slot        = excluded.like_slot,
	slot_stats       = excluded.slot_stats,
	last_mutated_at  = excluded.last_mutated_at`

const selectColumns = `
SELECT venue_id, window_start, visit_count, total_visits, last_visit_at,
	arrival_slot, like_count, daily_likes_used, last_like_reset, like_slot,
	slot_stats, last_mutated_at
FROM venue_interactions`

// SQLiteStore implements RemoteStore on a SQL table keyed by
// (venue_id, window_start). Upserts make entry re-delivery harmless.
type SQLiteStore struct {
	db     *sql.DB
	logger providers.Logger
}

func NewSQLiteStore(driverName, dsn string, logger providers.Logger) (*SQLiteStore, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open remote store: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping remote store: %w", err)
	}
	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create remote schema: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) UpsertBatch(ctx context.Context, entries []*models.SyncEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, upsertQuery)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		rec := entry.Payload
		slotStats, err := json.Marshal(rec.SlotStats)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("marshal slot stats for %s: %w", rec.VenueID, err)
		}
		_, err = stmt.ExecContext(ctx,
			rec.VenueID,
			rec.LastVisitReset.UnixNano(),
			rec.VisitCount,
			rec.TotalVisits,
			rec.LastVisitAt.UnixNano(),
			rec.ArrivalSlot,
			rec.LikeCount,
			rec.DailyLikesUsed,
			rec.LastLikeReset.UnixNano(),
			rec.LikeSlot,
			string(slotStats),
			rec.LastMutatedAt.UnixNano(),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert %s: %w", rec.VenueID, err)
		}
	}
	return tx.Commit()
}

// FetchByVenues returns the newest remote record per requested venue.
func (s *SQLiteStore) FetchByVenues(ctx context.Context, venueIDs []string) (map[string]*models.VenueRecord, error) {
	if len(venueIDs) == 0 {
		return map[string]*models.VenueRecord{}, nil
	}

	placeholders := strings.Repeat("?,", len(venueIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(venueIDs))
	for i, id := range venueIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, selectColumns+" WHERE venue_id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("fetch by venues: %w", err)
	}
	defer rows.Close()
	return s.newestPerVenue(rows)
}

func (s *SQLiteStore) FetchAll(ctx context.Context) ([]*models.VenueRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns)
	if err != nil {
		return nil, fmt.Errorf("fetch all: %w", err)
	}
	defer rows.Close()

	byVenue, err := s.newestPerVenue(rows)
	if err != nil {
		return nil, err
	}
	out := make([]*models.VenueRecord, 0, len(byVenue))
	for _, rec := range byVenue {
		out = append(out, rec)
	}
	return out, nil
}

// newestPerVenue scans rows and keeps the row with the highest
// last_mutated_at per venue. Older window rows stay in the table as history.
func (s *SQLiteStore) newestPerVenue(rows *sql.Rows) (map[string]*models.VenueRecord, error) {
	out := make(map[string]*models.VenueRecord)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if prev, ok := out[rec.VenueID]; ok && !rec.LastMutatedAt.After(prev.LastMutatedAt) {
			continue
		}
		out[rec.VenueID] = rec
	}
	return out, rows.Err()
}

func scanRecord(rows *sql.Rows) (*models.VenueRecord, error) {
	var (
		rec                                                    models.VenueRecord
		windowStart, lastVisitAt, lastLikeReset, lastMutatedAt int64
		slotStats                                              string
	)
	err := rows.Scan(
		&rec.VenueID,
		&windowStart,
		&rec.VisitCount,
		&rec.TotalVisits,
		&lastVisitAt,
		&rec.ArrivalSlot,
		&rec.LikeCount,
		&rec.DailyLikesUsed,
		&lastLikeReset,
		&rec.LikeSlot,
		&slotStats,
		&lastMutatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan remote record: %w", err)
	}

	rec.LastVisitReset = timewindow.FromUnixNano(windowStart)
	rec.LastVisitAt = timewindow.FromUnixNano(lastVisitAt)
	rec.LastLikeReset = timewindow.FromUnixNano(lastLikeReset)
	rec.LastMutatedAt = timewindow.FromUnixNano(lastMutatedAt)
	rec.SlotStats = make(map[string]models.SlotTally)
	if slotStats != "" && slotStats != "{}" {
		if err := json.Unmarshal([]byte(slotStats), &rec.SlotStats); err != nil {
			// Corrupt tally blob: keep the counters, drop the breakdown.
			rec.SlotStats = make(map[string]models.SlotTally)
		}
	}
	return &rec, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
