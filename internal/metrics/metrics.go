package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ItemsFetched       int64
	DuplicatesFiltered int64
	ItemsAdmitted      int64
	PostsPublished     int64
	PublishFailures    int64

	// Timings
	LastRunDuration    time.Duration
	AverageRunDuration time.Duration
	totalRunDuration   time.Duration
	runCount           int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddItemsFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsFetched += int64(n)
}

func (m *Metrics) AddDuplicatesFiltered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered += int64(n)
}

func (m *Metrics) AddItemsAdmitted(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsAdmitted += int64(n)
}

func (m *Metrics) IncrementPostsPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PostsPublished++
}

func (m *Metrics) IncrementPublishFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishFailures++
}

func (m *Metrics) RecordRun(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.totalRunDuration += duration
	m.runCount++
	m.AverageRunDuration = m.totalRunDuration / time.Duration(m.runCount)
	m.LastRunTime = time.Now()
}

func (m *Metrics) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = ""
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"items_fetched":           m.ItemsFetched,
		"duplicates_filtered":     m.DuplicatesFiltered,
		"items_admitted":          m.ItemsAdmitted,
		"posts_published":         m.PostsPublished,
		"publish_failures":        m.PublishFailures,
		"last_run_duration_ms":    m.LastRunDuration.Milliseconds(),
		"average_run_duration_ms": m.AverageRunDuration.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
