package fitness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

func rec(daysAgo, position, draw, distance int, going string, margin float64) models.RaceRecord {
	return models.RaceRecord{
		Date:     time.Now().AddDate(0, 0, -daysAgo),
		Distance: distance,
		Going:    going,
		Draw:     draw,
		Position: position,
		Margin:   margin,
	}
}

func raceKey() models.RaceKey {
	return models.RaceKey{Date: "2026-08-30", RaceNumber: 1, Distance: 1400, Going: "好地"}
}

func TestRealtimeWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range realtimeWeights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestCalculatorWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range calculatorWeights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestScoreBarrierPersonalWeightSchedule(t *testing.T) {
	ctx := &models.PredictionContext{Draw: 4, Distance: 1400, FieldSize: 12}

	tests := []struct {
		races    int
		expected float64
	}{
		{2, 0.0},
		{3, 0.3},
		{5, 0.5},
		{7, 0.7},
		{8, 0.8},
		{12, 0.8},
	}

	for _, tt := range tests {
		var history []models.RaceRecord
		for i := 0; i < tt.races; i++ {
			history = append(history, rec(i*10, 2, 4, 1400, "好地", 1))
		}

		// All runs placed, none won: personal score is the place-rate
		// component alone, 0.4. With no population data the remainder
		// sits at neutral 0.5.
		dim, err := scoreBarrier(history, ctx, raceKey(), nil)
		require.NoError(t, err)

		expected := tt.expected*0.4 + (1-tt.expected)*0.5
		assert.InDelta(t, expected, dim.Score, 1e-9, "%d personal races", tt.races)
	}
}

func TestScoreBarrierPopulationShrink(t *testing.T) {
	ctx := &models.PredictionContext{Draw: 6, Distance: 1400, FieldSize: 12}

	// No personal data at draw 6; population top3 rate 0.5 over 10
	// runs. Raw stat score 0.5*0.6+0.35 = 0.65; reliability 10/20
	// pulls it halfway back to neutral: 0.575.
	stats := &models.DrawStatistics{
		Key: raceKey(),
		ByDraw: map[int]models.DrawStatistic{
			6: {Draw: 6, Top3Rate: 0.5, SampleSize: 10},
		},
	}

	dim, err := scoreBarrier(nil, ctx, raceKey(), stats)
	require.NoError(t, err)
	assert.InDelta(t, 0.575, dim.Score, 1e-9)
	assert.Equal(t, 10, dim.SampleSize)
	assert.NotEmpty(t, dim.Note)
}

func TestScoreBarrierRaceMismatch(t *testing.T) {
	ctx := &models.PredictionContext{Draw: 3, Distance: 1400, FieldSize: 12}

	wrongKey := raceKey()
	wrongKey.RaceNumber = 2
	stats := &models.DrawStatistics{
		Key:    wrongKey,
		ByDraw: map[int]models.DrawStatistic{3: {Draw: 3, Top3Rate: 0.4, SampleSize: 30}},
	}

	_, err := scoreBarrier(nil, ctx, raceKey(), stats)
	require.Error(t, err)
	assert.True(t, models.IsRaceMismatch(err))
}

func TestScoreBarrierNoDataIsNeutral(t *testing.T) {
	ctx := &models.PredictionContext{Draw: 3, Distance: 1400, FieldSize: 12}

	dim, err := scoreBarrier(nil, ctx, raceKey(), nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, dim.Score, 1e-9)
	assert.True(t, dim.Neutral)
}

func TestScoreDistance(t *testing.T) {
	history := []models.RaceRecord{
		rec(10, 1, 2, 1400, "好地", 0),
		rec(20, 2, 3, 1450, "好地", 1),
		rec(30, 8, 4, 1200, "好地", 5),
		rec(40, 6, 5, 1500, "好地", 3),
	}

	// 1400 and 1450 fall inside the window; both placed.
	dim := scoreDistance(history, 1400)
	assert.InDelta(t, 1.0*0.8+0.2, dim.Score, 1e-9)
	assert.Equal(t, 2, dim.SampleSize)
	assert.False(t, dim.Neutral)

	dim = scoreDistance(history, 2400)
	assert.True(t, dim.Neutral)
	assert.InDelta(t, 0.5, dim.Score, 1e-9)
}

func TestScoreSurfaceSubstringMatch(t *testing.T) {
	history := []models.RaceRecord{
		rec(10, 1, 2, 1400, "好地", 0),
		rec(20, 5, 3, 1400, "好快地", 2),
		rec(30, 2, 4, 1400, "黏地", 1),
	}

	// "好" matches both 好 and 好快 after suffix stripping.
	dim := scoreSurface(history, "好地")
	assert.Equal(t, 2, dim.SampleSize)
	assert.InDelta(t, 0.5*0.7+0.3, dim.Score, 1e-9)

	dim = scoreSurface(history, "爛地")
	assert.True(t, dim.Neutral)
}

func TestScoreStabilityPatterns(t *testing.T) {
	aggressive := []models.RaceRecord{
		rec(10, 1, 1, 1400, "好地", 0),
		rec(20, 1, 1, 1400, "好地", 0),
		rec(30, 3, 1, 1400, "好地", 1),
	}
	_, pattern := scoreStability(aggressive)
	assert.Equal(t, "aggressive", pattern)

	grinder := []models.RaceRecord{
		rec(10, 2, 1, 1400, "好地", 1),
		rec(20, 3, 1, 1400, "好地", 1),
		rec(30, 2, 1, 1400, "好地", 1),
	}
	_, pattern = scoreStability(grinder)
	assert.Equal(t, "grinder", pattern)
}

func TestScoreStabilityMonotonicInWinRatio(t *testing.T) {
	// Same margins, more wins converted: score must not decrease.
	low := []models.RaceRecord{
		rec(10, 2, 1, 1400, "好地", 1),
		rec(20, 2, 1, 1400, "好地", 1),
		rec(30, 3, 1, 1400, "好地", 1),
		rec(40, 2, 1, 1400, "好地", 1),
	}
	high := []models.RaceRecord{
		rec(10, 1, 1, 1400, "好地", 1),
		rec(20, 1, 1, 1400, "好地", 1),
		rec(30, 3, 1, 1400, "好地", 1),
		rec(40, 2, 1, 1400, "好地", 1),
	}

	lowDim, _ := scoreStability(low)
	highDim, _ := scoreStability(high)
	assert.Greater(t, highDim.Score, lowDim.Score)
}

func TestScoreTrendBands(t *testing.T) {
	// Lifetime 10 starts, 4 placings; recent 5 all placed: ratio
	// (5/5)/(... ) well above 1.2.
	var rising []models.RaceRecord
	for i := 0; i < 5; i++ {
		rising = append(rising, rec(i*10, 2, 1, 1400, "好地", 1))
	}
	for i := 5; i < 10; i++ {
		rising = append(rising, rec(i*10, 7, 1, 1400, "好地", 4))
	}
	dim := scoreTrend(rising)
	assert.Greater(t, dim.Score, 0.7)
	assert.Equal(t, "form rising", dim.Note)

	// Reversed: all recent unplaced.
	var falling []models.RaceRecord
	for i := 0; i < 5; i++ {
		falling = append(falling, rec(i*10, 8, 1, 1400, "好地", 5))
	}
	for i := 5; i < 10; i++ {
		falling = append(falling, rec(i*10, 2, 1, 1400, "好地", 1))
	}
	dim = scoreTrend(falling)
	assert.InDelta(t, 0.0, dim.Score, 1e-9)
	assert.Equal(t, "form falling", dim.Note)
}

func TestScoreConsistency(t *testing.T) {
	steady := []models.RaceRecord{
		rec(10, 3, 1, 1400, "好地", 1),
		rec(20, 3, 1, 1400, "好地", 1),
		rec(30, 3, 1, 1400, "好地", 1),
	}
	dim := scoreConsistency(steady)
	assert.InDelta(t, 1.0, dim.Score, 1e-9)

	single := steady[:1]
	dim = scoreConsistency(single)
	assert.True(t, dim.Neutral)

	withSentinel := append([]models.RaceRecord{
		rec(5, models.SentinelPosition, 1, 1400, "好地", 0),
	}, steady...)
	dim = scoreConsistency(withSentinel)
	assert.InDelta(t, 1.0, dim.Score, 1e-9, "sentinel must not enter the std dev")
}

func TestDimensionScoresStayInRange(t *testing.T) {
	histories := [][]models.RaceRecord{
		nil,
		{rec(10, 1, 1, 1400, "好地", 0)},
		{rec(10, 1, 1, 1400, "好地", 0), rec(20, 14, 14, 2400, "爛地", 30)},
	}
	ctx := &models.PredictionContext{Draw: 1, Distance: 1400, Going: "好地", FieldSize: 12}

	for _, h := range histories {
		barrier, err := scoreBarrier(h, ctx, raceKey(), nil)
		require.NoError(t, err)
		stability, _ := scoreStability(h)
		for _, dim := range []models.DimensionScore{
			barrier,
			scoreDistance(h, ctx.Distance),
			scoreSurface(h, ctx.Going),
			stability,
			scoreTrend(h),
			scoreConsistency(h),
		} {
			assert.GreaterOrEqual(t, dim.Score, 0.0, dim.Name)
			assert.LessOrEqual(t, dim.Score, 1.0, dim.Name)
		}
	}
}
