package testutil

import (
	"context"
	"sync"
	"time"

	"barbuddy/internal/models"
	"barbuddy/internal/propagation"
	"barbuddy/internal/providers"
	"barbuddy/internal/timewindow"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// CountByLevel returns how many entries were recorded at the given level.
func (m *MockLogger) CountByLevel(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu             sync.Mutex
	Requests       int
	CacheHits      int
	CacheMisses    int
	Persists       int
	VenuesTotal    int
	Interactions   map[string]int // key: kind + ":" + result
	SyncQueueDepth int
	SyncFlushes    int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{Interactions: make(map[string]int)}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(endpoint string, duration time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObservePersistenceDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persists++
}

func (m *MockMetrics) SetVenuesTotal(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VenuesTotal = count
}

func (m *MockMetrics) IncInteraction(kind, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Interactions[kind+":"+result]++
}

func (m *MockMetrics) SetSyncQueueDepth(depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SyncQueueDepth = depth
}

func (m *MockMetrics) ObserveSyncFlushDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SyncFlushes++
}

func (m *MockMetrics) InteractionCount(kind, result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Interactions[kind+":"+result]
}

// MockRemoteStore implements sync.RemoteStore against an in-memory map.
// FailUpserts makes UpsertBatch return ErrUpsert to exercise retry paths.
type MockRemoteStore struct {
	mu          sync.Mutex
	Records     map[string]*models.VenueRecord
	Upserts     int
	Fetches     int
	FailUpserts bool
	ErrUpsert   error
}

func NewMockRemoteStore() *MockRemoteStore {
	return &MockRemoteStore{Records: make(map[string]*models.VenueRecord)}
}

func (m *MockRemoteStore) UpsertBatch(ctx context.Context, entries []*models.SyncEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Upserts++
	if m.FailUpserts {
		return m.ErrUpsert
	}
	for _, e := range entries {
		m.Records[e.VenueID] = e.Payload.Clone()
	}
	return nil
}

func (m *MockRemoteStore) FetchByVenues(ctx context.Context, venueIDs []string) (map[string]*models.VenueRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fetches++
	out := make(map[string]*models.VenueRecord, len(venueIDs))
	for _, id := range venueIDs {
		if rec, ok := m.Records[id]; ok {
			out[id] = rec.Clone()
		}
	}
	return out, nil
}

func (m *MockRemoteStore) FetchAll(ctx context.Context) ([]*models.VenueRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.VenueRecord, 0, len(m.Records))
	for _, rec := range m.Records {
		out = append(out, rec.Clone())
	}
	return out, nil
}

func (m *MockRemoteStore) Close() error { return nil }

// Put stores a record remotely without going through UpsertBatch.
func (m *MockRemoteStore) Put(rec *models.VenueRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records[rec.VenueID] = rec.Clone()
}

// MockCoordinator implements services.SyncCoordinatorInterface.
type MockCoordinator struct {
	mu       sync.Mutex
	Enqueued []*models.VenueRecord
	Flushes  int
	Seeds    int
	FlushErr error
}

func (m *MockCoordinator) Enqueue(rec *models.VenueRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Enqueued = append(m.Enqueued, rec)
}

func (m *MockCoordinator) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Flushes++
	return m.FlushErr
}

func (m *MockCoordinator) Seed(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Seeds++
	return nil
}

func (m *MockCoordinator) QueueDepth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Enqueued)
}

func (m *MockCoordinator) SnapshotQueue() []*models.SyncEntry { return nil }

func (m *MockCoordinator) RestoreQueue(entries []*models.SyncEntry) {}

func (m *MockCoordinator) EnqueueCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Enqueued)
}

func (m *MockCoordinator) FlushCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Flushes
}

// ManualTimer is a Timer whose firing is driven by the test.
type ManualTimer struct {
	mu      sync.Mutex
	fn      func()
	stopped bool
}

func (t *ManualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Fire runs the callback unless the timer was stopped.
func (t *ManualTimer) Fire() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	fn := t.fn
	t.mu.Unlock()
	fn()
}

// ManualTimerFactory collects created timers so tests control when debounce
// intervals elapse.
type ManualTimerFactory struct {
	mu     sync.Mutex
	Timers []*ManualTimer
}

func (f *ManualTimerFactory) New(d time.Duration, fn func()) propagation.Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &ManualTimer{fn: fn}
	f.Timers = append(f.Timers, t)
	return t
}

// FireLast fires the most recently created timer.
func (f *ManualTimerFactory) FireLast() {
	f.mu.Lock()
	if len(f.Timers) == 0 {
		f.mu.Unlock()
		return
	}
	t := f.Timers[len(f.Timers)-1]
	f.mu.Unlock()
	t.Fire()
}

func (f *ManualTimerFactory) Created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Timers)
}

// FixedClock returns a Clock pinned to t.
func FixedClock(t time.Time) timewindow.Clock {
	return func() time.Time { return t }
}

// StepClock returns a Clock reading from a settable time pointer.
type StepClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewStepClock(start time.Time) *StepClock {
	return &StepClock{now: start}
}

func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *StepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *StepClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
