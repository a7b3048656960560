package pace

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

// outerDrawWeight is the extra pressure an outer-barrier front runner
// applies: wide gates force an early sprint for position.
const outerDrawWeight = 1.5

// pressureBand is one index band with its fixed confidence.
type pressureBand struct {
	upper      float64
	pace       models.PaceType
	confidence float64
}

// Bands are checked in order; the last entry is open-ended.
var pressureBands = []pressureBand{
	{2.0, models.PaceSlow, 75},
	{3.2, models.PaceModSlow, 72},
	{4.5, models.PaceNormal, 70},
	{5.8, models.PaceModFast, 75},
	{math.Inf(1), models.PaceFast, 80},
}

// PressureEstimator diagnoses tempo from how many runners will
// contest the early lead, independent of the style labels.
type PressureEstimator struct {
	logger *logrus.Logger
}

// NewPressureEstimator creates a new pressure estimator
func NewPressureEstimator(logger *logrus.Logger) *PressureEstimator {
	return &PressureEstimator{logger: logger}
}

// Estimate sums a weighted unit for every classification whose
// adjusted position sits at or inside the front third of the field.
func (e *PressureEstimator) Estimate(styles []*models.StyleClassification, fieldSize int) (*models.PaceEstimate, error) {
	if fieldSize < 2 {
		return nil, models.ErrInvalidFieldSize
	}
	if len(styles) == 0 {
		return nil, models.ErrEmptyField
	}

	threshold := float64(fieldSize) / 3.0
	outerBand := int(math.Ceil(0.75 * float64(fieldSize)))

	index := 0.0
	contenders := 0
	for _, s := range styles {
		if s == nil || s.AdjustedPosition > threshold {
			continue
		}
		contenders++
		if s.Draw > outerBand {
			index += outerDrawWeight
		} else {
			index += 1.0
		}
	}

	var band pressureBand
	for _, b := range pressureBands {
		if index <= b.upper {
			band = b
			break
		}
	}

	e.logger.WithFields(logrus.Fields{
		"index":      index,
		"contenders": contenders,
		"pace":       band.pace,
	}).Debug("Pressure pace estimate")

	return &models.PaceEstimate{
		Pace:       band.pace,
		Confidence: band.confidence,
		Method:     "pressure",
		Notes: []string{
			fmt.Sprintf("pressure index %.1f from %d early contenders", index, contenders),
		},
	}, nil
}
