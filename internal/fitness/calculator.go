package fitness

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

// Calculator is the secondary four-dimension profile. It works from
// aggregate metrics rather than raw history, so batch callers can
// score from stored profiles without rehydrating full past
// performances.
type Calculator struct {
	logger *logrus.Logger
}

// NewCalculator creates a new calculator-profile scorer
func NewCalculator(logger *logrus.Logger) *Calculator {
	return &Calculator{logger: logger}
}

// Score evaluates one competitor's aggregates.
func (c *Calculator) Score(competitor *models.Competitor, ctx *models.PredictionContext) (*models.FitnessBreakdown, error) {
	if competitor == nil {
		return nil, fmt.Errorf("competitor is nil")
	}
	if ctx == nil {
		return nil, fmt.Errorf("prediction context is nil")
	}

	profile := competitor.Profile
	if profile == nil {
		profile = fallbackProfile(competitor.History)
	}

	dimensions := []models.DimensionScore{
		c.placementConsistency(profile, ctx.Distance),
		c.stability(profile),
		c.environment(profile, ctx.Draw),
		c.recentTrend(profile),
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
		Profile:          ProfileCalculator,
		Dimensions:       dimensions,
		Total:            total,
		Grade:            gradeCalculator(total),
		Neutral:          allNeutral,
	}

	c.logger.WithFields(logrus.Fields{
		"competitor": competitor.Name,
		"total":      total,
		"grade":      breakdown.Grade,
	}).Debug("Calculator profile scored")

	return breakdown, nil
}

// placementConsistency rewards sustained placing across lifetime,
// recent form and today's trip.
func (c *Calculator) placementConsistency(p *models.CompetitorProfile, distance int) models.DimensionScore {
	dim := models.DimensionScore{Name: DimPlacementConsistency, Weight: calculatorWeights[DimPlacementConsistency], Score: 0.5}
	if p.ValidRaces == 0 {
		dim.Neutral = true
		dim.Note = "no usable history"
		return dim
	}

	sameDist, ok := p.DistancePlacementRates[distance]
	if !ok {
		sameDist = p.PlacementRate
	}
	raw := (p.PlacementRate*0.4 + p.RecentPlacementRate*0.4 + sameDist*0.2) * 1.5
	dim.Score = clamp01(raw)
	dim.SampleSize = p.ValidRaces
	return dim
}

// stability centers on a 0.4 win/place ratio: converting some but not
// every placing into a win reads as a steady profile.
func (c *Calculator) stability(p *models.CompetitorProfile) models.DimensionScore {
	dim := models.DimensionScore{Name: DimCalcStability, Weight: calculatorWeights[DimCalcStability], Score: 0.5}
	if p.ValidRaces == 0 {
		dim.Neutral = true
		dim.Note = "no usable history"
		return dim
	}

	ratioScore := 0.5
	if p.WinPlaceRatio > 0 {
		ratioScore = clamp01(1 - math.Abs(p.WinPlaceRatio-0.4)/0.4)
	}
	marginScore := math.Max(0, 1-p.AvgMargin/5)

	dim.Score = clamp01(ratioScore*0.7 + marginScore*0.3)
	dim.SampleSize = p.ValidRaces
	return dim
}

// environment combines draw advantage and venue advantage, each
// capped at 1.5x of a baseline expectation.
func (c *Calculator) environment(p *models.CompetitorProfile, draw int) models.DimensionScore {
	dim := models.DimensionScore{Name: DimEnvironment, Weight: calculatorWeights[DimEnvironment], Score: 0.5}
	if p.ValidRaces == 0 {
		dim.Neutral = true
		dim.Note = "no usable history"
		return dim
	}

	drawAdvantage := 1.0
	if rate, ok := p.DrawWinRates[draw]; ok {
		// 0.12 is the long-run win rate a random barrier yields.
		drawAdvantage = math.Min(1.5, rate/0.12)
	}

	venueAdvantage := 1.0
	if best := p.BestVenueRate(); best > 0 && p.PlacementRate > 0 {
		venueAdvantage = math.Min(1.5, best/p.PlacementRate)
	}

	dim.Score = clamp01((drawAdvantage*0.6 + venueAdvantage*0.4) / 1.5)
	dim.SampleSize = p.ValidRaces
	return dim
}

// recentTrend is a stepped read of recent form against lifetime form.
func (c *Calculator) recentTrend(p *models.CompetitorProfile) models.DimensionScore {
	dim := models.DimensionScore{Name: DimRecentTrend, Weight: calculatorWeights[DimRecentTrend], Score: 0.5}
	if p.ValidRaces == 0 {
		dim.Neutral = true
		dim.Note = "no usable history"
		return dim
	}

	ratio := 1.0
	if p.PlacementRate > 0 {
		ratio = p.RecentPlacementRate / p.PlacementRate
	}

	switch {
	case ratio >= 1.2:
		dim.Score = 0.9
	case ratio >= 1.0:
		dim.Score = 0.8
	case ratio >= 0.8:
		dim.Score = 0.7
	case ratio >= 0.5:
		dim.Score = 0.5
	default:
		dim.Score = 0.2
	}
	dim.SampleSize = p.ValidRaces
	return dim
}
