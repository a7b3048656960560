package history

import (
	"math"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

// recentWindow is how many of the most recent starts feed the
// recent-form metrics.
const recentWindow = 10

// BuildProfile aggregates a normalized, most-recent-first history into
// the metrics the scoring dimensions consume. An empty history yields
// an all-zero profile.
func BuildProfile(records []models.RaceRecord) *models.CompetitorProfile {
	profile := &models.CompetitorProfile{
		TotalRaces:             len(records),
		VenuePlacementRates:    make(map[string]float64),
		DistancePlacementRates: make(map[int]float64),
		DrawWinRates:           make(map[int]float64),
	}
	if len(records) == 0 {
		return profile
	}

	var (
		positions []float64
		ratings   []float64
		marginSum float64
		marginN   int

		venueRuns   = make(map[string]int)
		venuePlaces = make(map[string]int)
		distRuns    = make(map[int]int)
		distPlaces  = make(map[int]int)
		drawRuns    = make(map[int]int)
		drawWins    = make(map[int]int)
	)

	for _, r := range records {
		if r.Rating > 0 {
			ratings = append(ratings, float64(r.Rating))
		}
		if !r.Valid() {
			continue
		}
		profile.ValidRaces++
		positions = append(positions, float64(r.Position))
		if r.Won() {
			profile.Wins++
		}
		if r.Placed() {
			profile.Places++
		}
		marginSum += r.Margin
		marginN++

		if r.Venue != "" {
			venueRuns[r.Venue]++
			if r.Placed() {
				venuePlaces[r.Venue]++
			}
		}
		distRuns[r.Distance]++
		if r.Placed() {
			distPlaces[r.Distance]++
		}
		if r.Draw > 0 {
			drawRuns[r.Draw]++
			if r.Won() {
				drawWins[r.Draw]++
			}
		}
	}

	if profile.ValidRaces > 0 {
		profile.WinRate = float64(profile.Wins) / float64(profile.ValidRaces)
		profile.PlacementRate = float64(profile.Places) / float64(profile.ValidRaces)
	}
	if profile.Places > 0 {
		profile.WinPlaceRatio = float64(profile.Wins) / float64(profile.Places)
	}
	if marginN > 0 {
		profile.AvgMargin = marginSum / float64(marginN)
	}
	profile.RatingStdDev = stdDev(ratings)
	profile.PositionStdDev = stdDev(positions)
	profile.RecentPlacementRate = recentPlacementRate(records)

	for venue, runs := range venueRuns {
		profile.VenuePlacementRates[venue] = float64(venuePlaces[venue]) / float64(runs)
	}
	for dist, runs := range distRuns {
		profile.DistancePlacementRates[dist] = float64(distPlaces[dist]) / float64(runs)
	}
	for draw, runs := range drawRuns {
		profile.DrawWinRates[draw] = float64(drawWins[draw]) / float64(runs)
	}

	return profile
}

// recentPlacementRate covers the latest starts only. Records arrive
// most recent first so the window is a simple prefix.
func recentPlacementRate(records []models.RaceRecord) float64 {
	window := records
	if len(window) > recentWindow {
		window = window[:recentWindow]
	}
	valid, placed := 0, 0
	for _, r := range window {
		if !r.Valid() {
			continue
		}
		valid++
		if r.Placed() {
			placed++
		}
	}
	if valid == 0 {
		return 0
	}
	return float64(placed) / float64(valid)
}

// stdDev is the population standard deviation.
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}
