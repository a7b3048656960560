package fitness

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/history"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

// fallbackProfile derives aggregates on the spot when the caller has
// not attached a prebuilt profile.
func fallbackProfile(records []models.RaceRecord) *models.CompetitorProfile {
	return history.BuildProfile(records)
}

// Scorer produces the six-dimension realtime fitness scorecard.
type Scorer struct {
	logger *logrus.Logger
	tags   *TagIdentifier
}

// NewScorer creates a new fitness scorer
func NewScorer(logger *logrus.Logger) *Scorer {
	return &Scorer{
		logger: logger,
		tags:   NewTagIdentifier(),
	}
}

// Score evaluates one competitor against the current race. A barrier
// statistic keyed to a different race fails the whole evaluation
// rather than scoring with contaminated data. stats may be nil.
func (s *Scorer) Score(competitor *models.Competitor, ctx *models.PredictionContext, raceKey models.RaceKey, stats *models.DrawStatistics) (*models.FitnessBreakdown, error) {
	if competitor == nil {
		return nil, fmt.Errorf("competitor is nil")
	}
	if ctx == nil {
		return nil, fmt.Errorf("prediction context is nil")
	}

	barrier, err := scoreBarrier(competitor.History, ctx, raceKey, stats)
	if err != nil {
		s.logger.WithError(err).WithField("competitor", competitor.Name).
			Error("Barrier dimension rejected")
		return nil, fmt.Errorf("scoring %s: %w", competitor.Name, err)
	}

	stability, pattern := scoreStability(competitor.History)
	dimensions := []models.DimensionScore{
		barrier,
		scoreDistance(competitor.History, ctx.Distance),
		scoreSurface(competitor.History, ctx.Going),
		stability,
		scoreTrend(competitor.History),
		scoreConsistency(competitor.History),
	}

	total := 0.0
	allNeutral := true
	for _, d := range dimensions {
		total += d.Score * d.Weight
		if !d.Neutral {
			allNeutral = false
		}
	}

	breakdown := &models.FitnessBreakdown{
		CompetitorNumber: competitor.Number,
		Profile:          ProfileRealtime,
		Dimensions:       dimensions,
		Total:            total,
		Grade:            gradeRealtime(total),
		Pattern:          pattern,
		Neutral:          allNeutral,
	}

	profile := competitor.Profile
	if profile == nil {
		profile = fallbackProfile(competitor.History)
	}
	breakdown.Tags = s.tags.Identify(profile)

	s.logger.WithFields(logrus.Fields{
		"competitor": competitor.Name,
		"total":      total,
		"grade":      breakdown.Grade,
	}).Debug("Fitness scored")

	return breakdown, nil
}

// NeutralBreakdown is the scorecard substituted when evaluation of a
// competitor faults: every dimension neutral, lowest grade, flagged.
func NeutralBreakdown(number int, profile string, reason string) *models.FitnessBreakdown {
	weights := realtimeWeights
	names := []string{DimBarrier, DimDistance, DimSurface, DimStability, DimTrend, DimConsistency}
	if profile == ProfileCalculator {
		weights = calculatorWeights
		names = []string{DimPlacementConsistency, DimCalcStability, DimEnvironment, DimRecentTrend}
	}

	dims := make([]models.DimensionScore, len(names))
	total := 0.0
	for i, name := range names {
		dims[i] = models.DimensionScore{Name: name, Score: 0.5, Weight: weights[name], Neutral: true}
		total += 0.5 * weights[name]
	}

	grade := "C"
	if profile == ProfileCalculator {
		grade = "E"
	}

	return &models.FitnessBreakdown{
		CompetitorNumber: number,
		Profile:          profile,
		Dimensions:       dims,
		Total:            total,
		Grade:            grade,
		Neutral:          true,
		Notes:            []string{reason},
	}
}
