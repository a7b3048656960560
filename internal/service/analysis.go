package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/fitness"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/logger"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/metrics"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/pace"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/runstyle"
)

// AnalysisService runs the full prediction pipeline over a race
// field: style classification, pace diagnosis, fitness scoring.
type AnalysisService struct {
	classifier   *runstyle.Classifier
	distribution *pace.DistributionEstimator
	pressure     *pace.PressureEstimator
	fusion       *pace.FusionEngine
	scorer       *fitness.Scorer
	calculator   *fitness.Calculator
	logger       *logrus.Logger
	audit        *logger.ScoringLogger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(log *logrus.Logger) *AnalysisService {
	return &AnalysisService{
		classifier:   runstyle.NewClassifier(log),
		distribution: pace.NewDistributionEstimator(log),
		pressure:     pace.NewPressureEstimator(log),
		fusion:       pace.NewFusionEngine(log),
		scorer:       fitness.NewScorer(log),
		calculator:   fitness.NewCalculator(log),
		logger:       log,
		audit:        logger.NewScoringLogger(log),
	}
}

// AnalyzeField produces the complete field analysis for one race. A
// fault while scoring one competitor substitutes a neutral scorecard
// and the batch continues; only field-level failures abort.
func (s *AnalysisService) AnalyzeField(race *models.Race, competitors []*models.Competitor, stats *models.DrawStatistics) (*models.FieldAnalysis, error) {
	if race == nil {
		return nil, fmt.Errorf("race is nil")
	}
	if len(competitors) == 0 {
		return nil, models.ErrEmptyField
	}
	if race.FieldSize < 2 {
		return nil, models.ErrInvalidFieldSize
	}

	started := time.Now()
	analysis := &models.FieldAnalysis{
		Race:       race,
		Styles:     make(map[int]*models.StyleClassification, len(competitors)),
		Breakdowns: make(map[int]*models.FitnessBreakdown, len(competitors)),
	}
	raceKey := race.Key()

	// Pass 1: running styles.
	var counts models.StyleCounts
	styles := make([]*models.StyleClassification, 0, len(competitors))
	for _, c := range competitors {
		ctx := s.contextFor(race, c)
		classification, err := s.classifier.Classify(c, ctx)
		if err != nil {
			return nil, fmt.Errorf("classifying %s: %w", c.Name, err)
		}
		analysis.Styles[c.Number] = classification
		styles = append(styles, classification)
		switch classification.Style {
		case models.StyleFront:
			counts.Front++
		case models.StyleMid:
			counts.Mid++
		default:
			counts.Back++
		}
	}

	// Pass 2: field-level pace diagnosis.
	distribution, err := s.distribution.Estimate(counts)
	if err != nil {
		return nil, fmt.Errorf("distribution estimate: %w", err)
	}
	pressure, err := s.pressure.Estimate(styles, race.FieldSize)
	if err != nil {
		return nil, fmt.Errorf("pressure estimate: %w", err)
	}
	diagnosis, err := s.fusion.Fuse(distribution, pressure, race.Distance)
	if err != nil {
		return nil, fmt.Errorf("pace fusion: %w", err)
	}
	analysis.Pace = diagnosis
	metrics.RecordPaceDiagnosis(string(diagnosis.Pace), diagnosis.Confidence)
	if diagnosis.Divergence >= 1.0 {
		s.audit.LogPaceDivergence(raceKey.Date, race.RaceNumber,
			string(distribution.Pace), string(pressure.Pace), diagnosis.Divergence)
	}

	// Pass 3: per-competitor fitness, fault-isolated.
	neutral := 0
	for _, c := range competitors {
		breakdown := s.scoreCompetitor(c, s.contextFor(race, c), raceKey, stats)
		analysis.Breakdowns[c.Number] = breakdown
		metrics.RecordFitnessScore(breakdown.Grade, breakdown.Total)
		s.audit.LogCompetitorScore(raceKey.Date, race.RaceNumber, c.Number,
			breakdown.Profile, breakdown.Grade, breakdown.Total)
		if breakdown.Neutral {
			neutral++
		}
	}

	elapsed := time.Since(started)
	metrics.RecordFieldAnalyzed(elapsed.Seconds())
	s.audit.LogFieldAnalysis(raceKey.Date, race.RaceNumber, race.FieldSize,
		len(competitors), neutral, string(diagnosis.Pace), diagnosis.Confidence,
		float64(elapsed.Milliseconds()))

	return analysis, nil
}

// ScoreSecondary runs the calculator profile over the same field.
func (s *AnalysisService) ScoreSecondary(race *models.Race, competitors []*models.Competitor) (map[int]*models.FitnessBreakdown, error) {
	if race == nil {
		return nil, fmt.Errorf("race is nil")
	}
	results := make(map[int]*models.FitnessBreakdown, len(competitors))
	for _, c := range competitors {
		breakdown, err := s.calculator.Score(c, s.contextFor(race, c))
		if err != nil {
			s.audit.LogScoringFault(race.Key().Date, race.RaceNumber, c.Number, err.Error())
			metrics.RecordScoringFault()
			breakdown = fitness.NeutralBreakdown(c.Number, fitness.ProfileCalculator, err.Error())
		}
		results[c.Number] = breakdown
	}
	return results, nil
}

// scoreCompetitor isolates one competitor's evaluation: any error or
// panic becomes a neutral scorecard so the rest of the field still
// scores.
func (s *AnalysisService) scoreCompetitor(c *models.Competitor, ctx *models.PredictionContext, raceKey models.RaceKey, stats *models.DrawStatistics) (breakdown *models.FitnessBreakdown) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithFields(logrus.Fields{
				"competitor": c.Name,
				"panic":      r,
			}).Error("Scoring panicked, substituting neutral scorecard")
			s.audit.LogScoringFault(raceKey.Date, raceKey.RaceNumber, c.Number, fmt.Sprintf("panic: %v", r))
			metrics.RecordScoringFault()
			breakdown = fitness.NeutralBreakdown(c.Number, fitness.ProfileRealtime, fmt.Sprintf("scoring fault: %v", r))
		}
	}()

	breakdown, err := s.scorer.Score(c, ctx, raceKey, stats)
	if err != nil {
		var mismatch *models.RaceMismatchError
		if errors.As(err, &mismatch) {
			s.audit.LogRaceMismatch(mismatch.Expected.Date, mismatch.Actual.Date,
				mismatch.Expected.RaceNumber, mismatch.Actual.RaceNumber)
			metrics.RecordRaceMismatch()
		}
		s.audit.LogScoringFault(raceKey.Date, raceKey.RaceNumber, c.Number, err.Error())
		metrics.RecordScoringFault()
		return fitness.NeutralBreakdown(c.Number, fitness.ProfileRealtime, err.Error())
	}
	return breakdown
}

func (s *AnalysisService) contextFor(race *models.Race, c *models.Competitor) *models.PredictionContext {
	return &models.PredictionContext{
		Draw:      c.Draw,
		Distance:  race.Distance,
		Going:     race.Going,
		Venue:     race.Venue,
		FieldSize: race.FieldSize,
		Rating:    c.Rating,
	}
}
