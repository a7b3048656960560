package runstyle

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

const (
	// Distance windows tried in order until enough samples are found.
	narrowWindow = 200
	wideWindow   = 400
	minSamples   = 3

	// Style thresholds as fractions of the field size.
	frontThreshold = 0.3
	backThreshold  = 0.7
)

// Classifier derives a competitor's running style from the early
// positions recorded in its running paths.
type Classifier struct {
	logger *logrus.Logger
}

// NewClassifier creates a new running style classifier
func NewClassifier(logger *logrus.Logger) *Classifier {
	return &Classifier{logger: logger}
}

// Classify produces a style classification for one competitor in the
// given race context. Competitors with no usable running paths are
// handled through the rating-based new entrant path instead of
// failing.
func (c *Classifier) Classify(competitor *models.Competitor, ctx *models.PredictionContext) (*models.StyleClassification, error) {
	if competitor == nil {
		return nil, fmt.Errorf("competitor is nil")
	}
	if ctx == nil {
		return nil, fmt.Errorf("prediction context is nil")
	}
	if ctx.FieldSize < 2 {
		return nil, models.ErrInvalidFieldSize
	}

	positions, filtered, window := c.selectEarlyPositions(competitor.History, ctx.Distance)
	if len(positions) == 0 {
		c.logger.WithFields(logrus.Fields{
			"competitor": competitor.Name,
			"history":    len(competitor.History),
		}).Debug("No usable running paths, classifying as new entrant")
		return c.classifyNewEntrant(competitor, ctx), nil
	}

	drawAdj, drawNote := drawAnalysis(ctx.Draw, ctx.FieldSize)
	baseline := weightedBaseline(positions)
	adjusted := clamp(baseline+drawAdj, 1, float64(ctx.FieldSize))

	std := positionStdDev(positions)

	result := &models.StyleClassification{
		Style:            styleFor(adjusted, ctx.FieldSize),
		Draw:             ctx.Draw,
		FieldSize:        ctx.FieldSize,
		BaselinePosition: baseline,
		AdjustedPosition: adjusted,
		Confidence:       confidence(filtered, len(positions), std),
		SampleSize:       len(positions),
		EarlyPositions:   positions,
		PositionStdDev:   std,
		DistanceWindow:   window,
		Notes:            []string{sampleNote(len(positions)), consistencyNote(std), drawNote},
	}
	if window == 0 {
		result.Notes = append(result.Notes, "no runs near today's distance, used full history")
	}
	return result, nil
}

// selectEarlyPositions filters history to runs near the target
// distance, widening the window until at least minSamples early
// positions are found. The second return is the number of runs that
// passed the distance filter, parseable path or not; the confidence
// base works from it. window 0 means the whole history was used.
func (c *Classifier) selectEarlyPositions(history []models.RaceRecord, distance int) ([]float64, int, int) {
	for _, window := range []int{narrowWindow, wideWindow} {
		positions, filtered := earlyPositions(history, distance, window)
		if len(positions) >= minSamples {
			return positions, filtered, window
		}
	}
	positions, filtered := earlyPositions(history, 0, 0)
	return positions, filtered, 0
}

// earlyPositions extracts the first running-path token of every run
// within the window, also counting the runs inside it. window 0
// disables distance filtering.
func earlyPositions(history []models.RaceRecord, distance, window int) ([]float64, int) {
	var positions []float64
	filtered := 0
	for _, r := range history {
		if window > 0 && abs(r.Distance-distance) > window {
			continue
		}
		filtered++
		pos, ok := parseEarlyPosition(r.RunningPath)
		if !ok {
			continue
		}
		positions = append(positions, pos)
	}
	return positions, filtered
}

// parseEarlyPosition reads the first token of a running path. Paths
// are recorded as position checkpoints separated by spaces, commas or
// dashes.
func parseEarlyPosition(path string) (float64, bool) {
	fields := strings.FieldsFunc(path, func(r rune) bool {
		return r == ' ' || r == ',' || r == '-'
	})
	if len(fields) == 0 {
		return 0, false
	}
	pos, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil || pos <= 0 {
		return 0, false
	}
	return pos, true
}

// weightedBaseline averages early positions with a recency decay:
// the most recent run weighs 1.0, each older run 0.1 less, floored at
// 0.5. Positions arrive most recent first.
func weightedBaseline(positions []float64) float64 {
	var sum, weightSum float64
	for i, pos := range positions {
		w := math.Max(0.5, 1.0-0.1*float64(i))
		sum += pos * w
		weightSum += w
	}
	return sum / weightSum
}

// drawAnalysis shifts the baseline by barrier position relative to
// the field midpoint and describes the band it landed in.
func drawAnalysis(draw, fieldSize int) (float64, string) {
	mid := float64(fieldSize+1) / 2.0
	d := float64(draw)
	switch {
	case d <= mid-2:
		return -0.3, fmt.Sprintf("inside draw %d favours racing forward", draw)
	case d >= mid+2:
		return 0.5, fmt.Sprintf("wide draw %d may be forced back", draw)
	case math.Abs(d-mid) <= 1:
		return 0.0, fmt.Sprintf("middle draw %d, no material effect", draw)
	case d > mid+1:
		return 0.3, fmt.Sprintf("outer draw %d slightly against", draw)
	default:
		return -0.1, fmt.Sprintf("inner draw %d slightly favours", draw)
	}
}

func drawAdjustment(draw, fieldSize int) float64 {
	adj, _ := drawAnalysis(draw, fieldSize)
	return adj
}

// sampleNote describes how much usable history backed the estimate.
func sampleNote(parsed int) string {
	switch {
	case parsed >= 8:
		return fmt.Sprintf("ample history (%d runs)", parsed)
	case parsed >= 5:
		return fmt.Sprintf("fair history (%d runs)", parsed)
	default:
		return fmt.Sprintf("thin history (%d runs)", parsed)
	}
}

// consistencyNote describes how settled the early positions are.
func consistencyNote(std float64) string {
	switch {
	case std <= 2:
		return "steady early positions"
	case std <= 4:
		return "uneven early positions"
	default:
		return "erratic early positions"
	}
}

func styleFor(adjusted float64, fieldSize int) models.RunningStyle {
	n := float64(fieldSize)
	switch {
	case adjusted <= frontThreshold*n:
		return models.StyleFront
	case adjusted > backThreshold*n:
		return models.StyleBack
	default:
		return models.StyleMid
	}
}

// confidence starts from a base keyed to the distance-filtered run
// count, then subtracts a penalty for noisy early positions. A single
// parseable position takes a flat penalty since no spread exists.
func confidence(filtered, parsed int, std float64) float64 {
	var base float64
	switch {
	case filtered >= 6:
		base = 85
	case filtered >= 4:
		base = 75
	case filtered >= minSamples:
		base = 65
	default:
		base = 50
	}

	penalty := 0.0
	if parsed > 1 {
		switch {
		case std > 3.0:
			penalty = -15
		case std > 2.0:
			penalty = -10
		case std > 1.5:
			penalty = -5
		}
	} else {
		penalty = -10
	}

	return clamp(base+penalty, 0, 100)
}

// classifyNewEntrant rates a competitor with no usable history from
// the field midpoint, shifted by the draw band and class rating.
func (c *Classifier) classifyNewEntrant(competitor *models.Competitor, ctx *models.PredictionContext) *models.StyleClassification {
	mid := float64(ctx.FieldSize+1) / 2.0
	ratingAdj := float64(ctx.Rating-70) / 20.0 * 2.0
	drawAdj, drawNote := drawAnalysis(ctx.Draw, ctx.FieldSize)
	adjusted := clamp(mid+drawAdj+ratingAdj, 1, float64(ctx.FieldSize))

	conf := 50.0
	switch {
	case ctx.Rating >= 80:
		conf += 10
	case ctx.Rating >= 70:
		conf += 5
	}

	return &models.StyleClassification{
		Style:            styleFor(adjusted, ctx.FieldSize),
		Draw:             ctx.Draw,
		FieldSize:        ctx.FieldSize,
		BaselinePosition: mid,
		AdjustedPosition: adjusted,
		Confidence:       math.Min(60, conf),
		NewEntrant:       true,
		Notes:            []string{"no prior running paths, projected from rating", drawNote, ratingNote(ctx.Rating)},
	}
}

// ratingNote describes where the class rating sits for a debutant.
func ratingNote(rating int) string {
	switch {
	case rating >= 85:
		return fmt.Sprintf("rating %d is high class", rating)
	case rating <= 65:
		return fmt.Sprintf("rating %d is modest", rating)
	default:
		return fmt.Sprintf("rating %d near average", rating)
	}
}

func positionStdDev(positions []float64) float64 {
	if len(positions) == 0 {
		return 0
	}
	mean := 0.0
	for _, p := range positions {
		mean += p
	}
	mean /= float64(len(positions))
	variance := 0.0
	for _, p := range positions {
		variance += (p - mean) * (p - mean)
	}
	return math.Sqrt(variance / float64(len(positions)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
