package controllers

import (
	"ratingd/internal/models"
	"ratingd/internal/services"
	"time"
)

// --- local mocks (scoped to controller tests) ---

type mockRatings struct {
	rateErr   error
	replace   map[models.Target][]byte
	resets    int
	failWrite error
	rated     []any
	stats     services.RatingStats
}

func (m *mockRatings) Rate(rating any) (models.RatingEvent, error) {
	m.rated = append(m.rated, rating)
	if m.rateErr != nil {
		return models.RatingEvent{}, m.rateErr
	}
	n, _ := rating.(float64)
	return models.RatingEvent{Date: "2024-06-01T09:30:15", Rating: int(n)}, nil
}

func (m *mockRatings) Replace(target models.Target, raw []byte) error {
	if m.failWrite != nil {
		return m.failWrite
	}
	if m.replace == nil {
		m.replace = make(map[models.Target][]byte)
	}
	m.replace[target] = raw
	return nil
}

func (m *mockRatings) Reset() error {
	if m.failWrite != nil {
		return m.failWrite
	}
	m.resets++
	return nil
}

func (m *mockRatings) Stats() services.RatingStats {
	if m.stats.Started.IsZero() {
		m.stats.Started = time.Now()
	}
	return m.stats
}

type mockTimeline struct {
	result      *models.Timeline
	err         error
	calls       [][3]string
	fingerprint string
	// duringCompute runs inside Compute, standing in for a write that lands
	// while the timeline is being built.
	duringCompute func()
}

func (m *mockTimeline) Fingerprint(_ string) string { return m.fingerprint }

func (m *mockTimeline) Compute(source, rangeParam, groupBy string) (*models.Timeline, error) {
	m.calls = append(m.calls, [3]string{source, rangeParam, groupBy})
	if m.duringCompute != nil {
		hook := m.duringCompute
		m.duringCompute = nil
		hook()
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockSettings struct {
	current   *models.Settings
	mutateErr error
	mutations map[string]any
}

func newMockSettings() *mockSettings {
	return &mockSettings{current: models.DefaultSettings(), mutations: make(map[string]any)}
}

func (m *mockSettings) Current() *models.Settings { return m.current.Clone() }
func (m *mockSettings) NumButtons() int           { return m.current.NumButtons }
func (m *mockSettings) Port() int                 { return m.current.Port }

func (m *mockSettings) Mutate(path string, value any) error {
	if m.mutateErr != nil {
		return m.mutateErr
	}
	m.mutations[path] = value
	return nil
}

func (m *mockSettings) RemapHotkey(key string, rating any) error {
	if m.mutateErr != nil {
		return m.mutateErr
	}
	n, _ := rating.(float64)
	m.current.Hotkeys[key] = int(n)
	return nil
}

func (m *mockSettings) SetNumButtons(value any) error {
	return m.Mutate("num_buttons", value)
}
