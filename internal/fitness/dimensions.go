package fitness

import (
	"math"
	"strings"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

const (
	distanceWindow = 100
	trendWindow    = 5
	marginWindow   = 5

	// Population statistics below this sample size are shrunk toward
	// neutral in proportion to how thin they are.
	reliableSampleSize = 20
)

// scoreBarrier blends the competitor's personal record at today's
// draw with the population statistic for today's race. The statistic
// must be keyed to the race being scored.
func scoreBarrier(history []models.RaceRecord, ctx *models.PredictionContext, raceKey models.RaceKey, stats *models.DrawStatistics) (models.DimensionScore, error) {
	dim := models.DimensionScore{Name: DimBarrier, Weight: realtimeWeights[DimBarrier]}
	if ctx.Draw <= 0 {
		dim.Score = 0.5
		dim.Neutral = true
		dim.Note = "draw unknown"
		return dim, nil
	}

	if stats != nil && !stats.Key.Equal(raceKey) {
		return dim, &models.RaceMismatchError{Expected: raceKey, Actual: stats.Key}
	}

	// Personal record at the same draw.
	var drawRaces, wins, places int
	for _, r := range history {
		if r.Draw != ctx.Draw || !r.Valid() {
			continue
		}
		drawRaces++
		if r.Won() {
			wins++
		}
		if r.Placed() {
			places++
		}
	}

	personalWeight := 0.0
	personalScore := 0.0
	switch {
	case drawRaces >= 8:
		personalWeight = 0.8
	case drawRaces >= 3:
		personalWeight = 0.3 + float64(drawRaces-3)*0.1
	}
	if personalWeight > 0 {
		winRate := float64(wins) / float64(drawRaces)
		placeRate := float64(places) / float64(drawRaces)
		personalScore = winRate*0.6 + placeRate*0.4
	}

	// Population score, shrunk toward neutral on thin samples.
	statScore := 0.5
	statFound := false
	if stat, ok := stats.Lookup(ctx.Draw); ok {
		statFound = true
		statScore = stat.Top3Rate*0.6 + 0.35
		dim.SampleSize = stat.SampleSize
		if stat.SampleSize < reliableSampleSize {
			reliability := float64(stat.SampleSize) / reliableSampleSize
			statScore = statScore*reliability + 0.5*(1-reliability)
			dim.Note = "population sample thin, shrunk toward neutral"
		}
	}

	dim.Score = clamp01(personalWeight*personalScore + (1-personalWeight)*statScore)
	if personalWeight == 0 && !statFound {
		dim.Neutral = true
		dim.Note = "no personal or population barrier data"
	}
	return dim, nil
}

// scoreDistance rates suitability over runs within 100m of today's
// trip.
func scoreDistance(history []models.RaceRecord, distance int) models.DimensionScore {
	dim := models.DimensionScore{Name: DimDistance, Weight: realtimeWeights[DimDistance], Score: 0.5}
	if len(history) == 0 || distance <= 0 {
		dim.Neutral = true
		dim.Note = "distance information incomplete"
		return dim
	}

	var runs, places int
	for _, r := range history {
		if !r.Valid() || absInt(r.Distance-distance) > distanceWindow {
			continue
		}
		runs++
		if r.Placed() {
			places++
		}
	}
	if runs == 0 {
		dim.Neutral = true
		dim.Note = "no runs near today's distance"
		return dim
	}

	placeRate := float64(places) / float64(runs)
	dim.Score = clamp01(placeRate*0.8 + 0.2)
	dim.SampleSize = runs
	return dim
}

// scoreSurface rates suitability on today's going. Going text is
// canonicalized before comparison and matched in both directions so
// compound descriptions still hit.
func scoreSurface(history []models.RaceRecord, going string) models.DimensionScore {
	dim := models.DimensionScore{Name: DimSurface, Weight: realtimeWeights[DimSurface], Score: 0.5}
	target := normalizeGoing(going)
	if len(history) == 0 || target == "" {
		dim.Neutral = true
		dim.Note = "going information incomplete"
		return dim
	}

	var runs, places int
	for _, r := range history {
		if !r.Valid() {
			continue
		}
		g := normalizeGoing(r.Going)
		if g == "" || (!strings.Contains(g, target) && !strings.Contains(target, g)) {
			continue
		}
		runs++
		if r.Placed() {
			places++
		}
	}
	if runs == 0 {
		dim.Neutral = true
		dim.Note = "no runs on similar going"
		return dim
	}

	placeRate := float64(places) / float64(runs)
	dim.Score = clamp01(placeRate*0.7 + 0.3)
	dim.SampleSize = runs
	return dim
}

// scoreStability combines win conversion with margin steadiness and
// names the competitor's winning pattern.
func scoreStability(history []models.RaceRecord) (models.DimensionScore, string) {
	dim := models.DimensionScore{Name: DimStability, Weight: realtimeWeights[DimStability], Score: 0.5}
	valid := validRecords(history)
	if len(valid) == 0 {
		dim.Neutral = true
		dim.Note = "no usable history"
		return dim, ""
	}

	var wins, places int
	for _, r := range valid {
		if r.Won() {
			wins++
		}
		if r.Placed() {
			places++
		}
	}
	ratio := 0.0
	if places > 0 {
		ratio = float64(wins) / float64(places)
	}

	dim.Score = clamp01(ratio*0.7 + marginStability(history)*0.3)
	dim.SampleSize = len(valid)

	pattern := "grinder"
	switch {
	case ratio > 0.5:
		pattern = "aggressive"
	case ratio > 0.2:
		pattern = "balanced"
	}
	return dim, pattern
}

// marginStability inverts the volatility of recent finishing margins.
func marginStability(history []models.RaceRecord) float64 {
	if len(history) < 3 {
		return 0.5
	}
	window := history
	if len(window) > marginWindow {
		window = window[:marginWindow]
	}
	margins := make([]float64, 0, len(window))
	for _, r := range window {
		if !r.Valid() {
			continue
		}
		margins = append(margins, r.Margin)
	}
	if len(margins) == 0 {
		return 0.5
	}
	return clamp01(1 - stdDev(margins)/10)
}

// scoreTrend compares recent placement form against lifetime form.
func scoreTrend(history []models.RaceRecord) models.DimensionScore {
	dim := models.DimensionScore{Name: DimTrend, Weight: realtimeWeights[DimTrend], Score: 0.5}
	valid := validRecords(history)
	if len(valid) == 0 {
		dim.Neutral = true
		dim.Note = "no usable history"
		return dim
	}

	overall := placementRate(valid)
	window := valid
	if len(window) > trendWindow {
		window = window[:trendWindow]
	}
	recent := placementRate(window)

	var ratio float64
	if overall > 0 {
		ratio = recent / overall
	} else if recent > 0 {
		ratio = 1.0
	} else {
		ratio = 0.5
	}

	switch {
	case ratio > 1.2:
		dim.Score = math.Min(1.0, 0.7+(ratio-1)*0.5)
		dim.Note = "form rising"
	case ratio < 0.8:
		dim.Score = clamp01(ratio * 0.7)
		dim.Note = "form falling"
	default:
		dim.Score = 0.7
		dim.Note = "form stable"
	}
	dim.SampleSize = len(window)
	return dim
}

// scoreConsistency inverts the volatility of finishing positions.
func scoreConsistency(history []models.RaceRecord) models.DimensionScore {
	dim := models.DimensionScore{Name: DimConsistency, Weight: realtimeWeights[DimConsistency], Score: 0.5}
	valid := validRecords(history)
	if len(valid) < 2 {
		dim.Neutral = true
		dim.Note = "too few usable placings"
		return dim
	}

	positions := make([]float64, len(valid))
	for i, r := range valid {
		positions[i] = float64(r.Position)
	}
	dim.Score = clamp01(1 - stdDev(positions)/10)
	dim.SampleSize = len(valid)
	return dim
}

// normalizeGoing strips the surface suffix and case-folds.
func normalizeGoing(going string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(going, "地", "")))
}

func validRecords(history []models.RaceRecord) []models.RaceRecord {
	valid := make([]models.RaceRecord, 0, len(history))
	for _, r := range history {
		if r.Valid() {
			valid = append(valid, r)
		}
	}
	return valid
}

func placementRate(records []models.RaceRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	places := 0
	for _, r := range records {
		if r.Placed() {
			places++
		}
	}
	return float64(places) / float64(len(records))
}

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

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
