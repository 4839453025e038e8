package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barbuddy/internal/models"
	"barbuddy/internal/testutil"
	"barbuddy/internal/timewindow"
)

func newMemoryStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore("sqlite3", ":memory:", &testutil.MockLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func storedRecord(venueID string, windowStart, mutated time.Time) *models.SyncEntry {
	rec := models.NewVenueRecord(venueID)
	rec.VisitCount = 2
	rec.TotalVisits = 5
	rec.LastVisitAt = timewindow.At(mutated)
	rec.LastVisitReset = timewindow.At(windowStart)
	rec.ArrivalSlot = "21:00"
	rec.LikeCount = 3
	rec.DailyLikesUsed = 1
	rec.LastLikeReset = timewindow.At(windowStart)
	rec.LikeSlot = "22:00"
	rec.SlotStats = map[string]models.SlotTally{"21:00": {Visits: 2, Likes: 3}}
	rec.LastMutatedAt = timewindow.At(mutated)
	return &models.SyncEntry{VenueID: venueID, SnapshotAt: mutated, Payload: rec}
}

func TestSQLiteStore_UpsertAndFetchRoundtrip(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	windowStart := time.Date(2024, 6, 15, 5, 0, 0, 0, time.UTC)
	mutated := windowStart.Add(16 * time.Hour)
	require.NoError(t, store.UpsertBatch(ctx, []*models.SyncEntry{storedRecord("bar_1", windowStart, mutated)}))

	recs, err := store.FetchByVenues(ctx, []string{"bar_1"})
	require.NoError(t, err)
	require.Contains(t, recs, "bar_1")

	got := recs["bar_1"]
	assert.Equal(t, 2, got.VisitCount)
	assert.Equal(t, 5, got.TotalVisits)
	assert.Equal(t, "21:00", got.ArrivalSlot)
	assert.Equal(t, 3, got.LikeCount)
	assert.Equal(t, 1, got.DailyLikesUsed)
	assert.Equal(t, "22:00", got.LikeSlot)
	assert.True(t, got.LastMutatedAt.Time().Equal(mutated))
	assert.Equal(t, models.SlotTally{Visits: 2, Likes: 3}, got.SlotStats["21:00"])
}

func TestSQLiteStore_UpsertSameWindowOverwrites(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	windowStart := time.Date(2024, 6, 15, 5, 0, 0, 0, time.UTC)
	first := storedRecord("bar_1", windowStart, windowStart.Add(time.Hour))
	require.NoError(t, store.UpsertBatch(ctx, []*models.SyncEntry{first}))

	second := storedRecord("bar_1", windowStart, windowStart.Add(2*time.Hour))
	second.Payload.TotalVisits = 9
	require.NoError(t, store.UpsertBatch(ctx, []*models.SyncEntry{second}))

	recs, err := store.FetchByVenues(ctx, []string{"bar_1"})
	require.NoError(t, err)
	assert.Equal(t, 9, recs["bar_1"].TotalVisits)
}

func TestSQLiteStore_FetchReturnsNewestWindowPerVenue(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	day1 := time.Date(2024, 6, 14, 5, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	old := storedRecord("bar_1", day1, day1.Add(time.Hour))
	old.Payload.TotalVisits = 1
	current := storedRecord("bar_1", day2, day2.Add(time.Hour))
	current.Payload.TotalVisits = 4
	require.NoError(t, store.UpsertBatch(ctx, []*models.SyncEntry{old, current}))

	recs, err := store.FetchByVenues(ctx, []string{"bar_1"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 4, recs["bar_1"].TotalVisits)
}

func TestSQLiteStore_FetchAll(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	windowStart := time.Date(2024, 6, 15, 5, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpsertBatch(ctx, []*models.SyncEntry{
		storedRecord("bar_1", windowStart, windowStart.Add(time.Hour)),
		storedRecord("bar_2", windowStart, windowStart.Add(2*time.Hour)),
	}))

	recs, err := store.FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestSQLiteStore_FetchMissingVenue(t *testing.T) {
	store := newMemoryStore(t)
	recs, err := store.FetchByVenues(context.Background(), []string{"nope"})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSQLiteStore_UpsertEmptyBatch(t *testing.T) {
	store := newMemoryStore(t)
	assert.NoError(t, store.UpsertBatch(context.Background(), nil))
}

func TestSQLiteStore_CorruptSlotStatsDropsBreakdown(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx, `INSERT INTO venue_interactions (
		venue_id, window_start, visit_count, total_visits, last_visit_at,
		arrival_slot, like_count, daily_likes_used, last_like_reset, like_slot,
		slot_stats, last_mutated_at
	) VALUES ('bar_1', 1, 1, 1, 1, '', 0, 0, 1, '', 'not json', 1)`)
	require.NoError(t, err)

	recs, err := store.FetchByVenues(ctx, []string{"bar_1"})
	require.NoError(t, err)
	require.Contains(t, recs, "bar_1")
	assert.Equal(t, 1, recs["bar_1"].TotalVisits)
	assert.Empty(t, recs["bar_1"].SlotStats)
}

func TestNewRemoteStore_DisabledIsNoop(t *testing.T) {
	conf := syncConfig()
	conf.Sync.Enabled = false

	store, err := NewRemoteStore(conf, &testutil.MockLogger{})
	require.NoError(t, err)

	recs, err := store.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.NoError(t, store.UpsertBatch(context.Background(), []*models.SyncEntry{storedRecord("bar_1", time.Now(), time.Now())}))
}

func TestNewRemoteStore_EnabledRequiresDSN(t *testing.T) {
	conf := syncConfig()
	conf.Sync.Enabled = true
	conf.Sync.DSN = ""

	_, err := NewRemoteStore(conf, &testutil.MockLogger{})
	assert.Error(t, err)
}
