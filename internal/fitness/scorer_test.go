package fitness

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func solidHistory() []models.RaceRecord {
	return []models.RaceRecord{
		rec(10, 1, 4, 1400, "好地", 0),
		rec(25, 2, 4, 1400, "好地", 0.5),
		rec(40, 3, 5, 1450, "好地", 1),
		rec(55, 2, 4, 1400, "好快地", 0.5),
		rec(70, 5, 6, 1600, "好地", 3),
		rec(85, 1, 4, 1400, "好地", 0),
	}
}

func TestScoreProducesSixDimensions(t *testing.T) {
	s := NewScorer(testLogger())

	breakdown, err := s.Score(
		&models.Competitor{Number: 3, Name: "Beauty Star", History: solidHistory()},
		&models.PredictionContext{Draw: 4, Distance: 1400, Going: "好地", FieldSize: 12},
		raceKey(), nil,
	)
	require.NoError(t, err)

	require.Len(t, breakdown.Dimensions, 6)
	assert.Equal(t, ProfileRealtime, breakdown.Profile)
	assert.Equal(t, 3, breakdown.CompetitorNumber)
	assert.False(t, breakdown.Neutral)
	assert.NotEmpty(t, breakdown.Grade)
	assert.NotEmpty(t, breakdown.Pattern)
	assert.GreaterOrEqual(t, breakdown.Total, 0.0)
	assert.LessOrEqual(t, breakdown.Total, 1.0)

	// Total equals the weighted sum of its own dimensions.
	sum := 0.0
	for _, d := range breakdown.Dimensions {
		sum += d.Score * d.Weight
	}
	assert.InDelta(t, sum, breakdown.Total, 1e-9)
}

func TestScoreIsDeterministic(t *testing.T) {
	s := NewScorer(testLogger())
	competitor := &models.Competitor{Number: 1, Name: "Repeat", History: solidHistory()}
	ctx := &models.PredictionContext{Draw: 4, Distance: 1400, Going: "好地", FieldSize: 12}

	first, err := s.Score(competitor, ctx, raceKey(), nil)
	require.NoError(t, err)
	second, err := s.Score(competitor, ctx, raceKey(), nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScoreRejectsMismatchedStatistics(t *testing.T) {
	s := NewScorer(testLogger())

	otherRace := raceKey()
	otherRace.RaceNumber = 2
	stats := &models.DrawStatistics{
		Key:    otherRace,
		ByDraw: map[int]models.DrawStatistic{4: {Draw: 4, Top3Rate: 0.3, SampleSize: 40}},
	}

	_, err := s.Score(
		&models.Competitor{Number: 1, Name: "Guarded", History: solidHistory()},
		&models.PredictionContext{Draw: 4, Distance: 1400, Going: "好地", FieldSize: 12},
		raceKey(), stats,
	)
	require.Error(t, err)
	assert.True(t, models.IsRaceMismatch(err))
}

func TestScoreNoHistoryIsNeutral(t *testing.T) {
	s := NewScorer(testLogger())

	breakdown, err := s.Score(
		&models.Competitor{Number: 9, Name: "Debutant"},
		&models.PredictionContext{Draw: 2, Distance: 1200, Going: "好地", FieldSize: 10},
		raceKey(), nil,
	)
	require.NoError(t, err)

	assert.True(t, breakdown.Neutral)
	for _, d := range breakdown.Dimensions {
		assert.InDelta(t, 0.5, d.Score, 1e-9, d.Name)
	}
}

func TestNeutralBreakdown(t *testing.T) {
	realtime := NeutralBreakdown(5, ProfileRealtime, "scoring fault")
	assert.Len(t, realtime.Dimensions, 6)
	assert.Equal(t, "C", realtime.Grade)
	assert.True(t, realtime.Neutral)
	assert.Contains(t, realtime.Notes, "scoring fault")

	calc := NeutralBreakdown(5, ProfileCalculator, "scoring fault")
	assert.Len(t, calc.Dimensions, 4)
	assert.Equal(t, "E", calc.Grade)
}

func TestGradeLadders(t *testing.T) {
	realtime := []struct {
		total float64
		grade string
	}{
		{0.90, "A"}, {0.85, "A"}, {0.80, "A-"}, {0.70, "B+"},
		{0.60, "B"}, {0.50, "B-"}, {0.30, "C"},
	}
	for _, tt := range realtime {
		assert.Equal(t, tt.grade, gradeRealtime(tt.total), "total %.2f", tt.total)
	}

	calculator := []struct {
		total float64
		grade string
	}{
		{0.85, "A"}, {0.70, "B"}, {0.55, "C"}, {0.40, "D"}, {0.10, "E"},
	}
	for _, tt := range calculator {
		assert.Equal(t, tt.grade, gradeCalculator(tt.total), "total %.2f", tt.total)
	}
}
