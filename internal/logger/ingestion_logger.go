// Package logger provides ingestion audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// IngestionLogger provides dedicated logging for data ingestion runs.
type IngestionLogger struct {
	*logrus.Entry
}

// NewIngestionLogger creates a new ingestion logger.
func NewIngestionLogger(baseLogger *logrus.Logger) *IngestionLogger {
	return &IngestionLogger{
		Entry: baseLogger.WithField("component", "ingestion"),
	}
}

// LogRunStarted logs the start of an ingestion run.
func (il *IngestionLogger) LogRunStarted(runID string, raceDate string, startedAt time.Time) {
	il.WithFields(logrus.Fields{
		"run_id":     runID,
		"race_date":  raceDate,
		"started_at": startedAt.Unix(),
	}).Info("Ingestion run started")
}

// LogRunCompleted logs the completion of an ingestion run.
func (il *IngestionLogger) LogRunCompleted(runID string, racesIngested, recordsIngested, rowsSkipped int, durationMs float64) {
	il.WithFields(logrus.Fields{
		"run_id":           runID,
		"races_ingested":   racesIngested,
		"records_ingested": recordsIngested,
		"rows_skipped":     rowsSkipped,
		"duration_ms":      durationMs,
	}).Info("Ingestion run completed")
}

// LogSkippedRow logs a history row dropped during normalization.
func (il *IngestionLogger) LogSkippedRow(runID string, competitorNumber int, field, rawValue, reason string) {
	il.WithFields(logrus.Fields{
		"run_id":            runID,
		"competitor_number": competitorNumber,
		"field":             field,
		"raw_value":         rawValue,
		"reason":            reason,
	}).Warn("History row skipped")
}

// LogFetchFailure logs a failed upstream fetch.
func (il *IngestionLogger) LogFetchFailure(runID, endpoint string, attempt int, err error) {
	il.WithFields(logrus.Fields{
		"run_id":   runID,
		"endpoint": endpoint,
		"attempt":  attempt,
		"error":    err.Error(),
	}).Error("Upstream fetch failed")
}
