package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barbuddy/internal/models"
	"barbuddy/internal/services"
	"barbuddy/internal/structures"
	"barbuddy/internal/testutil"
	"barbuddy/internal/timewindow"
)

func schedulerConfig(filePath string) *structures.Config {
	conf := persistenceConfig()
	conf.Persistence = structures.Persistence{
		FilePath:     filePath,
		SaveInterval: time.Second,
	}
	conf.Windows.SweepInterval = time.Second
	conf.Sync.FlushInterval = time.Second
	return conf
}

func newTestScheduler(conf *structures.Config, svc services.InteractionServiceInterface, comp *testutil.MockCompressor, coordinator *testutil.MockCoordinator) *Scheduler {
	logger := &testutil.MockLogger{}
	fm := NewFileManager(comp, svc, logger)
	s := NewScheduler(conf, logger, svc, fm, coordinator, testutil.NewMockMetrics())
	return s.(*Scheduler)
}

func TestScheduler_Restore_Success(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "restore.bin")

	rec := models.NewVenueRecord("bar_1")
	rec.TotalVisits = 42
	rec.LastVisitReset = timewindow.At(fixedNow())
	rec.LastLikeReset = timewindow.At(fixedNow())
	rec.LastMutatedAt = timewindow.At(fixedNow())
	snap := models.Snapshot{Version: models.SnapshotVersion, Venues: []*models.VenueRecord{rec}}
	jsonData, _ := json.Marshal(snap)
	require.NoError(t, os.WriteFile(path, jsonData, 0644))

	svc := newTestService(testutil.FixedClock(fixedNow()))
	coordinator := &testutil.MockCoordinator{}
	s := newTestScheduler(schedulerConfig(path), svc, &testutil.MockCompressor{}, coordinator)

	require.NoError(t, s.Restore())
	view := svc.GetVenue("bar_1")
	require.NotNil(t, view)
	assert.Equal(t, 42, view.TotalVisits)

	// Restore also seeds from the remote store.
	assert.Equal(t, 1, coordinator.Seeds)
}

func TestScheduler_Restore_FileNotExist(t *testing.T) {
	svc := newTestService(testutil.FixedClock(fixedNow()))
	s := newTestScheduler(schedulerConfig("/nonexistent/ledger.bin"), svc, &testutil.MockCompressor{}, &testutil.MockCoordinator{})
	assert.NoError(t, s.Restore())
}

func TestScheduler_Restore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.bin")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	svc := newTestService(testutil.FixedClock(fixedNow()))
	s := newTestScheduler(schedulerConfig(path), svc, &testutil.MockCompressor{}, &testutil.MockCoordinator{})
	assert.Error(t, s.Restore())
}

func TestScheduler_Persist_Success(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persist.bin")

	svc := newTestService(testutil.FixedClock(fixedNow()))
	svc.RecordVisit("bar_1", "21:00")

	coordinator := &testutil.MockCoordinator{}
	s := newTestScheduler(schedulerConfig(path), svc, &testutil.MockCompressor{}, coordinator)
	require.NoError(t, s.Persist())

	_, err := os.Stat(path)
	assert.NoError(t, err)
	// Shutdown persist attempts a final replication flush.
	assert.Equal(t, 1, coordinator.FlushCount())
}

func TestScheduler_Persist_WriteError(t *testing.T) {
	comp := &testutil.MockCompressor{
		CompressFn: func([]byte) ([]byte, error) {
			return nil, errors.New("compress error")
		},
	}
	svc := newTestService(testutil.FixedClock(fixedNow()))
	s := newTestScheduler(schedulerConfig("/tmp/barbuddy-test.bin"), svc, comp, &testutil.MockCoordinator{})
	assert.Error(t, s.Persist())
}

func TestScheduler_Persist_FlushFailureStillSaves(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persist.bin")

	svc := newTestService(testutil.FixedClock(fixedNow()))
	coordinator := &testutil.MockCoordinator{FlushErr: errors.New("remote down")}
	s := newTestScheduler(schedulerConfig(path), svc, &testutil.MockCompressor{}, coordinator)

	require.NoError(t, s.Persist())
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestScheduler_InitAndStop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ticks.bin")

	svc := newTestService(testutil.FixedClock(fixedNow()))
	s := newTestScheduler(schedulerConfig(path), svc, &testutil.MockCompressor{}, &testutil.MockCoordinator{})

	s.Init()
	s.Stop()
}
