package pace

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

func TestEstimateFrontHeavyField(t *testing.T) {
	e := NewDistributionEstimator(testLogger())

	// 7 front runners in a field of 12 sits closest to the fast
	// archetype at distance sqrt(0.75).
	result, err := e.Estimate(models.StyleCounts{Front: 7, Mid: 3, Back: 2})
	require.NoError(t, err)

	assert.Equal(t, models.PaceFast, result.Pace)
	assert.InDelta(t, 85.566, result.Confidence, 0.01)
	assert.Equal(t, "distribution", result.Method)
}

func TestEstimateBackHeavyField(t *testing.T) {
	e := NewDistributionEstimator(testLogger())

	result, err := e.Estimate(models.StyleCounts{Front: 1, Mid: 4, Back: 7})
	require.NoError(t, err)

	assert.Equal(t, models.PaceSlow, result.Pace)
	assert.Greater(t, result.Confidence, 80.0)
}

func TestEstimateScalesSmallField(t *testing.T) {
	e := NewDistributionEstimator(testLogger())

	// 3/2/1 in a field of 6 scales to 6/4/2 on the template basis.
	result, err := e.Estimate(models.StyleCounts{Front: 3, Mid: 2, Back: 1})
	require.NoError(t, err)

	assert.Equal(t, models.PaceFast, result.Pace)
	assert.InDelta(t, 85.566, result.Confidence, 0.01)
}

func TestEstimateAmbiguityPenalty(t *testing.T) {
	e := NewDistributionEstimator(testLogger())

	// 4/5/3 is equidistant from the moderately-fast and normal
	// archetypes, so the 20% ambiguity penalty applies.
	result, err := e.Estimate(models.StyleCounts{Front: 4, Mid: 5, Back: 3})
	require.NoError(t, err)

	assert.Contains(t, []models.PaceType{models.PaceModFast, models.PaceNormal}, result.Pace)
	assert.InDelta(t, 85.566*0.8, result.Confidence, 0.01)
}

func TestEstimateEmptyField(t *testing.T) {
	e := NewDistributionEstimator(testLogger())

	_, err := e.Estimate(models.StyleCounts{})
	assert.ErrorIs(t, err, models.ErrNoStyleCounts)
}
