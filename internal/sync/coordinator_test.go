package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barbuddy/internal/models"
	"barbuddy/internal/structures"
	"barbuddy/internal/testutil"
	"barbuddy/internal/timewindow"
)

func syncConfig() *structures.Config {
	return &structures.Config{
		Windows: structures.WindowsConfig{
			ResetHour:       5,
			LikeResetHour:   4,
			LikeResetMinute: 59,
			CooldownHours:   2,
			DailyLikeLimit:  3,
		},
		Sync: structures.SyncConfig{
			Enabled:      true,
			RetryBackoff: 30 * time.Second,
		},
	}
}

func newTestCoordinator(remote RemoteStore, clock timewindow.Clock) (*Coordinator, *models.Ledger) {
	conf := syncConfig()
	ledger := models.NewLedger(timewindow.NewPolicy(conf), conf)
	c := NewCoordinator(conf, ledger, remote, &testutil.MockLogger{}, testutil.NewMockMetrics(), clock)
	return c, ledger
}

func syncTime(hour, min int) time.Time {
	return time.Date(2024, 6, 15, hour, min, 0, 0, time.UTC)
}

func recordAt(venueID string, mutated time.Time) *models.VenueRecord {
	rec := models.NewVenueRecord(venueID)
	rec.TotalVisits = 1
	rec.LastMutatedAt = timewindow.At(mutated)
	return rec
}

func TestCoordinator_FlushReplicatesQueuedRecords(t *testing.T) {
	remote := testutil.NewMockRemoteStore()
	c, _ := newTestCoordinator(remote, testutil.FixedClock(syncTime(21, 0)))

	c.Enqueue(recordAt("bar_1", syncTime(20, 0)))
	c.Enqueue(recordAt("bar_2", syncTime(20, 30)))
	require.Equal(t, 2, c.QueueDepth())

	require.NoError(t, c.Flush(context.Background()))
	assert.Equal(t, 0, c.QueueDepth())
	assert.Len(t, remote.Records, 2)
}

func TestCoordinator_FlushEmptyQueueIsNoop(t *testing.T) {
	remote := testutil.NewMockRemoteStore()
	c, _ := newTestCoordinator(remote, testutil.FixedClock(syncTime(21, 0)))

	require.NoError(t, c.Flush(context.Background()))
	assert.Equal(t, 0, remote.Upserts)
}

func TestCoordinator_FlushCollapsesPerVenue(t *testing.T) {
	remote := testutil.NewMockRemoteStore()
	c, _ := newTestCoordinator(remote, testutil.FixedClock(syncTime(21, 0)))

	older := recordAt("bar_1", syncTime(20, 0))
	newer := recordAt("bar_1", syncTime(20, 30))
	newer.TotalVisits = 2
	c.Enqueue(older)
	c.Enqueue(newer)

	require.NoError(t, c.Flush(context.Background()))
	require.Contains(t, remote.Records, "bar_1")
	assert.Equal(t, 2, remote.Records["bar_1"].TotalVisits)
	assert.Equal(t, 1, remote.Upserts)
}

func TestCoordinator_FlushAdoptsNewerRemote(t *testing.T) {
	remote := testutil.NewMockRemoteStore()
	c, ledger := newTestCoordinator(remote, testutil.FixedClock(syncTime(21, 0)))

	// Remote copy mutated later than the local one.
	remoteRec := recordAt("bar_1", syncTime(20, 30))
	remoteRec.TotalVisits = 9
	remote.Put(remoteRec)

	c.Enqueue(recordAt("bar_1", syncTime(20, 0)))
	require.NoError(t, c.Flush(context.Background()))

	// Local ledger adopted the remote state, nothing was upserted over it.
	rec, ok := ledger.Get("bar_1", syncTime(21, 0))
	require.True(t, ok)
	assert.Equal(t, 9, rec.TotalVisits)
	assert.Equal(t, 9, remote.Records["bar_1"].TotalVisits)
}

func TestCoordinator_FlushOverwritesOlderRemote(t *testing.T) {
	remote := testutil.NewMockRemoteStore()
	c, _ := newTestCoordinator(remote, testutil.FixedClock(syncTime(21, 0)))

	remote.Put(recordAt("bar_1", syncTime(19, 0)))

	local := recordAt("bar_1", syncTime(20, 0))
	local.TotalVisits = 5
	c.Enqueue(local)

	require.NoError(t, c.Flush(context.Background()))
	assert.Equal(t, 5, remote.Records["bar_1"].TotalVisits)
}

func TestCoordinator_FailedFlushRequeuesAndBacksOff(t *testing.T) {
	remote := testutil.NewMockRemoteStore()
	remote.FailUpserts = true
	remote.ErrUpsert = errors.New("remote unavailable")

	clock := testutil.NewStepClock(syncTime(21, 0))
	c, _ := newTestCoordinator(remote, clock.Now)

	c.Enqueue(recordAt("bar_1", syncTime(20, 0)))
	require.Error(t, c.Flush(context.Background()))
	assert.Equal(t, 1, c.QueueDepth())

	// Within the backoff window further flushes are gated off.
	upsertsBefore := remote.Upserts
	clock.Advance(10 * time.Second)
	require.NoError(t, c.Flush(context.Background()))
	assert.Equal(t, upsertsBefore, remote.Upserts)
	assert.Equal(t, 1, c.QueueDepth())

	// After the backoff the entry is retried and succeeds.
	remote.FailUpserts = false
	clock.Advance(30 * time.Second)
	require.NoError(t, c.Flush(context.Background()))
	assert.Equal(t, 0, c.QueueDepth())
	assert.Contains(t, remote.Records, "bar_1")
}

func TestCoordinator_FlushIsIdempotent(t *testing.T) {
	remote := testutil.NewMockRemoteStore()
	c, _ := newTestCoordinator(remote, testutil.FixedClock(syncTime(21, 0)))

	c.Enqueue(recordAt("bar_1", syncTime(20, 0)))
	require.NoError(t, c.Flush(context.Background()))
	upserts := remote.Upserts

	// Nothing queued: repeated flushes touch nothing.
	require.NoError(t, c.Flush(context.Background()))
	require.NoError(t, c.Flush(context.Background()))
	assert.Equal(t, upserts, remote.Upserts)
}

func TestCoordinator_SeedAdoptsRemoteState(t *testing.T) {
	remote := testutil.NewMockRemoteStore()
	c, ledger := newTestCoordinator(remote, testutil.FixedClock(syncTime(21, 0)))

	remote.Put(recordAt("bar_1", syncTime(12, 0)))
	remote.Put(recordAt("bar_2", syncTime(13, 0)))

	require.NoError(t, c.Seed(context.Background()))
	assert.Equal(t, 2, ledger.Len())
}

func TestCoordinator_SeedKeepsNewerLocal(t *testing.T) {
	remote := testutil.NewMockRemoteStore()
	c, ledger := newTestCoordinator(remote, testutil.FixedClock(syncTime(21, 0)))

	ledger.RecordVisit("bar_1", "21:00", syncTime(20, 0))
	stale := recordAt("bar_1", syncTime(12, 0))
	stale.TotalVisits = 99
	remote.Put(stale)

	require.NoError(t, c.Seed(context.Background()))
	rec, _ := ledger.Get("bar_1", syncTime(21, 0))
	assert.Equal(t, 1, rec.TotalVisits)
}

func TestCoordinator_QueueSnapshotRestore(t *testing.T) {
	remote := testutil.NewMockRemoteStore()
	c, _ := newTestCoordinator(remote, testutil.FixedClock(syncTime(21, 0)))

	c.Enqueue(recordAt("bar_1", syncTime(20, 0)))
	c.Enqueue(recordAt("bar_2", syncTime(20, 30)))

	snap := c.SnapshotQueue()
	require.Len(t, snap, 2)

	fresh, _ := newTestCoordinator(remote, testutil.FixedClock(syncTime(21, 0)))
	fresh.RestoreQueue(snap)
	assert.Equal(t, 2, fresh.QueueDepth())

	// Invalid entries are dropped on restore.
	fresh.RestoreQueue([]*models.SyncEntry{nil, {VenueID: ""}})
	assert.Equal(t, 0, fresh.QueueDepth())
}

func TestCoordinator_EnqueueIgnoresInvalid(t *testing.T) {
	remote := testutil.NewMockRemoteStore()
	c, _ := newTestCoordinator(remote, testutil.FixedClock(syncTime(21, 0)))

	c.Enqueue(nil)
	c.Enqueue(models.NewVenueRecord(""))
	assert.Equal(t, 0, c.QueueDepth())
}
