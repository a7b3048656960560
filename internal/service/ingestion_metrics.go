package service

import (
	"fmt"
	"sync"
	"time"
)

// IngestionMetrics tracks statistics about one ingestion run
type IngestionMetrics struct {
	mu                 sync.RWMutex
	StartTime          time.Time
	Duration           time.Duration
	TotalRaces         int
	SuccessfulRaces    int
	TotalCompetitors   int
	HistoryRowsSkipped int
	Duplicates         int
	Errors             int
}

// NewIngestionMetrics creates a new metrics tracker
func NewIngestionMetrics() *IngestionMetrics {
	return &IngestionMetrics{
		StartTime: time.Now(),
	}
}

// Reset resets all metrics
func (m *IngestionMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.TotalRaces = 0
	m.SuccessfulRaces = 0
	m.TotalCompetitors = 0
	m.HistoryRowsSkipped = 0
	m.Duplicates = 0
	m.Errors = 0
}

// RecordRace increments successful race count
func (m *IngestionMetrics) RecordRace() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SuccessfulRaces++
}

// RecordCompetitor increments competitor count
func (m *IngestionMetrics) RecordCompetitor() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalCompetitors++
}

// RecordSkippedRows adds to the dropped history row count
func (m *IngestionMetrics) RecordSkippedRows(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HistoryRowsSkipped += n
}

// RecordDuplicate increments duplicate count
func (m *IngestionMetrics) RecordDuplicate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duplicates++
}

// RecordError increments error count
func (m *IngestionMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// String returns a formatted string representation of metrics
func (m *IngestionMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return fmt.Sprintf("races=%d/%d competitors=%d rows_skipped=%d duplicates=%d errors=%d duration=%v",
		m.SuccessfulRaces, m.TotalRaces, m.TotalCompetitors, m.HistoryRowsSkipped,
		m.Duplicates, m.Errors, m.Duration)
}
