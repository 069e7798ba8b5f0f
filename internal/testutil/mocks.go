package testutil

import (
	"ratingd/internal/models"
	"ratingd/internal/providers"
	"sync"
	"time"
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

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu        sync.Mutex
	Appends   int
	Archives  map[string]int // key: "file:reason"
	Skipped   map[string]int // key: "source:reason"
	CacheHits int
	CacheMiss int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                     {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration)     {}
func (m *MockMetrics) ObservePersistenceDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMiss++
}

func (m *MockMetrics) IncRatingsAppended() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Appends++
}

func (m *MockMetrics) IncArchives(file string, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Archives == nil {
		m.Archives = make(map[string]int)
	}
	m.Archives[file+":"+reason]++
}

func (m *MockMetrics) AddSkippedRows(source string, reason string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Skipped == nil {
		m.Skipped = make(map[string]int)
	}
	m.Skipped[source+":"+reason] += count
}

// MockRatingStore implements storage.RatingStoreInterface in memory.
type MockRatingStore struct {
	mu          sync.Mutex
	Events      []models.ListEntry
	Rows        []models.RowRecord
	AppendErr   error
	ReadErr     error
	AppendCalls []models.RatingEvent
	Replaced    map[models.Target][]byte
	Resets      int
	EnsureCalls int
	StampErr    error
	writes      int
}

func (m *MockRatingStore) EnsureIntegrity(_ models.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EnsureCalls++
	return nil
}

func (m *MockRatingStore) EnsureAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EnsureCalls++
	return nil
}

func (m *MockRatingStore) Append(rating int, timestamp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	ev := models.RatingEvent{Date: timestamp, Rating: rating}
	m.writes++
	m.AppendCalls = append(m.AppendCalls, ev)
	m.Events = append(m.Events, models.NewEventEntry(ev))
	m.Rows = append(m.Rows, models.RowRecord{Date: timestamp, Rating: itoa(rating), HasRating: true})
	return nil
}

func (m *MockRatingStore) ReplaceWholesale(target models.Target, raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Replaced == nil {
		m.Replaced = make(map[models.Target][]byte)
	}
	m.Replaced[target] = raw
	m.writes++
	return nil
}

func (m *MockRatingStore) ResetAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resets++
	m.writes++
	m.Events = nil
	m.Rows = nil
	return nil
}

func (m *MockRatingStore) ReadEventList() ([]models.ListEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return append([]models.ListEntry(nil), m.Events...), nil
}

func (m *MockRatingStore) ReadRowLog() ([]models.RowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return append([]models.RowRecord(nil), m.Rows...), nil
}

// Stamp changes with every write made through the mock. Tests that write
// Events or Rows directly call Touch.
func (m *MockRatingStore) Stamp(target models.Target) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StampErr != nil {
		return "", m.StampErr
	}
	return string(target) + ":" + itoa(m.writes), nil
}

// Touch simulates a write by another process.
func (m *MockRatingStore) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu      sync.Mutex
	Data    map[string][]byte
	Cleared int
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

// Generation follows Clear calls, the same way the freecache provider does.
func (m *MockCache) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint64(m.Cleared)
}

func (m *MockCache) Set(key string, value []byte, generation uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if uint64(m.Cleared) != generation {
		return false
	}
	m.Data[key] = value
	return true
}

func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data = make(map[string][]byte)
	m.Cleared++
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}
