package pace

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

const (
	shortCourse = 1200
	longCourse  = 2000

	shortCourseFactor = 1.15
	longCourseFactor  = 0.85
)

// FusionEngine combines the two estimators into a single diagnosis by
// confidence-weighted averaging on the ordinal pace scale.
type FusionEngine struct {
	logger *logrus.Logger
}

// NewFusionEngine creates a new pace fusion engine
func NewFusionEngine(logger *logrus.Logger) *FusionEngine {
	return &FusionEngine{logger: logger}
}

// Fuse merges a distribution estimate and a pressure estimate.
// Distance only produces advisory correction metadata, never a change
// of category.
func (f *FusionEngine) Fuse(distribution, pressure *models.PaceEstimate, distance int) (*models.PaceDiagnosis, error) {
	if distribution == nil || pressure == nil {
		return nil, fmt.Errorf("both estimates are required for fusion")
	}

	valueA := paceOrdinal[distribution.Pace]
	valueB := paceOrdinal[pressure.Pace]
	confA := distribution.Confidence
	confB := pressure.Confidence

	wA := 0.5
	if confA+confB > 0 {
		wA = confA / (confA + confB)
	}
	fusedValue := wA*valueA + (1-wA)*valueB
	fused := nearestPace(fusedValue)

	divergence := math.Abs(valueA - valueB)
	avg := (confA + confB) / 2
	var confidence float64
	switch {
	case divergence < 0.5:
		confidence = math.Min(95, avg*1.2)
	case divergence < 1.0:
		confidence = avg
	default:
		confidence = avg * 0.8
	}

	recommendation := "methods agree, use fused verdict"
	gap := confA - confB
	switch {
	case gap > 15:
		recommendation = "favor distribution method, its confidence is markedly higher"
	case gap < -15:
		recommendation = "favor pressure method, its confidence is markedly higher"
	case divergence >= 1.0:
		recommendation = "methods diverge with comparable confidence, treat verdict with caution"
	}

	correction := distanceCorrection(distance)
	base := basePaceValue[fused] * correctionFactor(correction)

	f.logger.WithFields(logrus.Fields{
		"pace":       fused,
		"confidence": confidence,
		"divergence": divergence,
	}).Debug("Fused pace diagnosis")

	return &models.PaceDiagnosis{
		Pace:           fused,
		Confidence:     confidence,
		Recommendation: recommendation,
		Divergence:     divergence,
		Distribution:   *distribution,
		Pressure:       *pressure,
		Correction:     correction,
		Sections: models.PaceSections{
			Early: base,
			Mid:   base * 0.95,
			Late:  base * 0.90,
		},
	}, nil
}

// distanceCorrection describes how course length skews tempo: sprints
// run hotter, staying trips slower.
func distanceCorrection(distance int) models.DistanceCorrection {
	c := models.DistanceCorrection{Distance: distance, Factor: 1.0}
	switch {
	case distance > 0 && distance <= shortCourse:
		c.Factor = shortCourseFactor
		c.Applied = true
	case distance >= longCourse:
		c.Factor = longCourseFactor
		c.Applied = true
	}
	return c
}

func correctionFactor(c models.DistanceCorrection) float64 {
	if !c.Applied {
		return 1.0
	}
	return c.Factor
}
