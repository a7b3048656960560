package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	log := NewLogger("nonsense", "development")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLoggerParsesLevel(t *testing.T) {
	log := NewLogger("debug", "development")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNewLoggerProductionUsesJSON(t *testing.T) {
	log := NewLogger("info", "production")
	_, ok := log.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)
}

func TestScoringLoggerFieldAnalysis(t *testing.T) {
	log, buf := setupTestLogger()
	scoringLogger := NewScoringLogger(log)

	scoringLogger.LogFieldAnalysis("2026-03-01", 4, 12, 11, 1, "mod_fast", 78.5, 42.0)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "scoring", logEntry["component"])
	assert.Equal(t, "mod_fast", logEntry["projected_pace"])
	assert.Equal(t, float64(12), logEntry["field_size"])
}

func TestScoringLoggerCompetitorScore(t *testing.T) {
	log, buf := setupTestLogger()
	scoringLogger := NewScoringLogger(log)

	scoringLogger.LogCompetitorScore("2026-03-01", 4, 7, "realtime", "B+", 0.68)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "B+", logEntry["grade"])
	assert.Equal(t, float64(7), logEntry["competitor_number"])
}

func TestScoringLoggerFault(t *testing.T) {
	log, buf := setupTestLogger()
	scoringLogger := NewScoringLogger(log)

	scoringLogger.LogScoringFault("2026-03-01", 4, 9, "panic: index out of range")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "panic: index out of range", logEntry["reason"])
}

func TestScoringLoggerRaceMismatch(t *testing.T) {
	log, buf := setupTestLogger()
	scoringLogger := NewScoringLogger(log)

	scoringLogger.LogRaceMismatch("2026-03-01", "2026-02-22", 4, 7)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "race_mismatch", logEntry["event_type"])
	assert.Equal(t, "error", logEntry["level"])
}

func TestIngestionLoggerRunLifecycle(t *testing.T) {
	log, buf := setupTestLogger()
	ingestionLogger := NewIngestionLogger(log)

	ingestionLogger.LogRunStarted("run_001", "2026-03-01", time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "ingestion", logEntry["component"])
	assert.Equal(t, "run_001", logEntry["run_id"])

	buf.Reset()
	ingestionLogger.LogRunCompleted("run_001", 10, 120, 3, 900.0)

	logEntry = parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(120), logEntry["records_ingested"])
	assert.Equal(t, float64(3), logEntry["rows_skipped"])
}

func TestIngestionLoggerSkippedRow(t *testing.T) {
	log, buf := setupTestLogger()
	ingestionLogger := NewIngestionLogger(log)

	ingestionLogger.LogSkippedRow("run_001", 5, "race_date", "31/13/2026", "unparseable date")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "race_date", logEntry["field"])
	assert.Equal(t, "warning", logEntry["level"])
}

func TestIngestionLoggerFetchFailure(t *testing.T) {
	log, buf := setupTestLogger()
	ingestionLogger := NewIngestionLogger(log)

	ingestionLogger.LogFetchFailure("run_001", "/races/2026-03-01", 2, errors.New("timeout"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(2), logEntry["attempt"])
	assert.Equal(t, "timeout", logEntry["error"])
}

func TestLoggerJSONFormat(t *testing.T) {
	log, buf := setupTestLogger()
	scoringLogger := NewScoringLogger(log)

	scoringLogger.LogFieldAnalysis("2026-03-01", 4, 12, 12, 0, "normal", 70.0, 18.2)

	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	assert.NoError(t, err)
	assert.NotEmpty(t, logEntry)
}

func BenchmarkScoringLoggerCompetitorScore(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	scoringLogger := NewScoringLogger(log)

	for i := 0; i < b.N; i++ {
		scoringLogger.LogCompetitorScore("2026-03-01", 4, 7, "realtime", "B+", 0.68)
	}
}

func BenchmarkIngestionLoggerSkippedRow(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	ingestionLogger := NewIngestionLogger(log)

	for i := 0; i < b.N; i++ {
		ingestionLogger.LogSkippedRow("run_001", 5, "margin", "??", "invalid marker")
	}
}
