package pace

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

// DistributionEstimator diagnoses race tempo by matching the field's
// style composition against the archetype templates.
type DistributionEstimator struct {
	logger *logrus.Logger
}

// NewDistributionEstimator creates a new distribution estimator
func NewDistributionEstimator(logger *logrus.Logger) *DistributionEstimator {
	return &DistributionEstimator{logger: logger}
}

// Estimate scales the style counts onto the template basis, picks the
// archetype with the smallest Euclidean distance, and derives a
// confidence from that distance. A runner-up within 0.5 of the best
// costs a 20% ambiguity penalty.
func (e *DistributionEstimator) Estimate(counts models.StyleCounts) (*models.PaceEstimate, error) {
	total := counts.Total()
	if total == 0 {
		return nil, models.ErrNoStyleCounts
	}

	scale := templateBasis / float64(total)
	front := float64(counts.Front) * scale
	mid := float64(counts.Mid) * scale
	back := float64(counts.Back) * scale

	best := models.PaceNormal
	distances := make([]float64, 0, len(paceTemplates))
	bestDist := math.Inf(1)
	for pace, tpl := range paceTemplates {
		d := math.Sqrt((front-tpl.Front)*(front-tpl.Front) +
			(mid-tpl.Mid)*(mid-tpl.Mid) +
			(back-tpl.Back)*(back-tpl.Back))
		distances = append(distances, d)
		if d < bestDist {
			bestDist = d
			best = pace
		}
	}

	conf := math.Max(0, math.Min(100, 100-(bestDist/6)*100))

	notes := []string{fmt.Sprintf("template distance %.3f on %d-runner basis", bestDist, int(templateBasis))}
	sort.Float64s(distances)
	if len(distances) >= 2 && distances[1]-bestDist < 0.5 {
		conf *= 0.8
		notes = append(notes, "runner-up archetype within 0.5, confidence reduced")
	}

	e.logger.WithFields(logrus.Fields{
		"pace":       best,
		"distance":   bestDist,
		"confidence": conf,
	}).Debug("Distribution pace estimate")

	return &models.PaceEstimate{
		Pace:       best,
		Confidence: conf,
		Method:     "distribution",
		Notes:      notes,
	}, nil
}
