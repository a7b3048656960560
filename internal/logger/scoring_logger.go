// Package logger provides scoring-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// ScoringLogger provides dedicated logging for scoring operations.
type ScoringLogger struct {
	*logrus.Entry
}

// NewScoringLogger creates a new scoring logger.
func NewScoringLogger(baseLogger *logrus.Logger) *ScoringLogger {
	return &ScoringLogger{
		Entry: baseLogger.WithField("component", "scoring"),
	}
}

// LogFieldAnalysis logs a completed field analysis.
func (sl *ScoringLogger) LogFieldAnalysis(raceDate string, raceNumber, fieldSize, scored, neutral int, pace string, paceConfidence, durationMs float64) {
	sl.WithFields(logrus.Fields{
		"race_date":            raceDate,
		"race_number":          raceNumber,
		"field_size":           fieldSize,
		"competitors_scored":   scored,
		"neutral_substitutions": neutral,
		"projected_pace":       pace,
		"pace_confidence":      paceConfidence,
		"analysis_duration_ms": durationMs,
	}).Info("Field analysis completed")
}

// LogCompetitorScore logs a single competitor's fitness score.
func (sl *ScoringLogger) LogCompetitorScore(raceDate string, raceNumber, competitorNumber int, profile, grade string, total float64) {
	sl.WithFields(logrus.Fields{
		"race_date":         raceDate,
		"race_number":       raceNumber,
		"competitor_number": competitorNumber,
		"profile":           profile,
		"grade":             grade,
		"total_score":       total,
	}).Debug("Competitor scored")
}

// LogScoringFault logs a recovered scoring fault.
func (sl *ScoringLogger) LogScoringFault(raceDate string, raceNumber, competitorNumber int, reason string) {
	sl.WithFields(logrus.Fields{
		"race_date":         raceDate,
		"race_number":       raceNumber,
		"competitor_number": competitorNumber,
		"reason":            reason,
	}).Warn("Scoring fault recovered with neutral breakdown")
}

// LogRaceMismatch logs a rejected cross-race statistics lookup.
func (sl *ScoringLogger) LogRaceMismatch(wantDate, gotDate string, wantRace, gotRace int) {
	sl.WithFields(logrus.Fields{
		"expected_race_date": wantDate,
		"received_race_date": gotDate,
		"expected_race":      wantRace,
		"received_race":      gotRace,
		"event_type":         "race_mismatch",
	}).Error("Draw statistics rejected for mismatched race")
}

// LogPaceDivergence logs disagreement between pace estimators.
func (sl *ScoringLogger) LogPaceDivergence(raceDate string, raceNumber int, distributionPace, pressurePace string, divergence float64) {
	sl.WithFields(logrus.Fields{
		"race_date":          raceDate,
		"race_number":        raceNumber,
		"distribution_pace":  distributionPace,
		"pressure_pace":      pressurePace,
		"divergence":         divergence,
	}).Warn("Pace estimators diverged")
}
