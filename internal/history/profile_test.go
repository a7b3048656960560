package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

func record(daysAgo, position, draw int, venue string, distance int) models.RaceRecord {
	return models.RaceRecord{
		Date:     time.Now().AddDate(0, 0, -daysAgo),
		Venue:    venue,
		Distance: distance,
		Draw:     draw,
		Position: position,
		Rating:   70,
	}
}

func TestBuildProfileEmptyHistory(t *testing.T) {
	profile := BuildProfile(nil)
	require.NotNil(t, profile)
	assert.Zero(t, profile.TotalRaces)
	assert.Zero(t, profile.WinRate)
	assert.Empty(t, profile.VenuePlacementRates)
}

func TestBuildProfileRates(t *testing.T) {
	records := []models.RaceRecord{
		record(10, 1, 3, "ST", 1200),
		record(20, 2, 3, "ST", 1200),
		record(30, 5, 7, "HV", 1200),
		record(40, models.SentinelPosition, 7, "HV", 1400),
		record(50, 3, 2, "ST", 1400),
	}

	profile := BuildProfile(records)

	assert.Equal(t, 5, profile.TotalRaces)
	assert.Equal(t, 4, profile.ValidRaces)
	assert.Equal(t, 1, profile.Wins)
	assert.Equal(t, 3, profile.Places)
	assert.InDelta(t, 0.25, profile.WinRate, 1e-9)
	assert.InDelta(t, 0.75, profile.PlacementRate, 1e-9)
	assert.InDelta(t, 1.0/3.0, profile.WinPlaceRatio, 1e-9)

	// Sentinel run is excluded from positional stats but not the count.
	assert.InDelta(t, 1.0, profile.VenuePlacementRates["ST"], 1e-9)
	assert.InDelta(t, 0.0, profile.VenuePlacementRates["HV"], 1e-9)
	assert.InDelta(t, 2.0/3.0, profile.DistancePlacementRates[1200], 1e-9)
	assert.InDelta(t, 0.5, profile.DrawWinRates[3], 1e-9)
}

func TestRecentPlacementRateWindow(t *testing.T) {
	// 12 starts most recent first: latest 10 all placed, oldest 2 unplaced.
	var records []models.RaceRecord
	for i := 0; i < 10; i++ {
		records = append(records, record(i+1, 2, 1, "ST", 1200))
	}
	records = append(records, record(100, 9, 1, "ST", 1200))
	records = append(records, record(110, 10, 1, "ST", 1200))

	profile := BuildProfile(records)
	assert.InDelta(t, 1.0, profile.RecentPlacementRate, 1e-9)
	assert.InDelta(t, 10.0/12.0, profile.PlacementRate, 1e-9)
}

func TestStdDev(t *testing.T) {
	assert.Zero(t, stdDev(nil))
	assert.Zero(t, stdDev([]float64{4}))
	assert.InDelta(t, 2.0, stdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}
