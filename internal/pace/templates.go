package pace

import "github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"

// templateBasis is the field size the archetype triples are calibrated
// to. Actual counts are rescaled onto this basis before comparison.
const templateBasis = 12.0

// template is an archetype's expected front/mid/back split on the
// 12-runner basis.
type template struct {
	Front float64
	Mid   float64
	Back  float64
}

// paceTemplates are the five tempo archetypes.
var paceTemplates = map[models.PaceType]template{
	models.PaceFast:    {Front: 6.5, Mid: 3.5, Back: 1.5},
	models.PaceModFast: {Front: 4.5, Mid: 4.5, Back: 2.5},
	models.PaceNormal:  {Front: 3.5, Mid: 5.5, Back: 2.5},
	models.PaceModSlow: {Front: 2.5, Mid: 4.5, Back: 4.5},
	models.PaceSlow:    {Front: 1.5, Mid: 3.5, Back: 6.5},
}

// paceOrdinal maps each tempo category onto an evenly spaced scale so
// the two estimators can be averaged numerically.
var paceOrdinal = map[models.PaceType]float64{
	models.PaceSlow:    1.0,
	models.PaceModSlow: 1.5,
	models.PaceNormal:  2.0,
	models.PaceModFast: 2.5,
	models.PaceFast:    3.0,
}

// basePaceValue is the projected tempo figure per category, used for
// the sectional projection.
var basePaceValue = map[models.PaceType]float64{
	models.PaceFast:    1.2,
	models.PaceModFast: 1.1,
	models.PaceNormal:  1.0,
	models.PaceModSlow: 0.9,
	models.PaceSlow:    0.8,
}

// nearestPace maps an ordinal value back to the closest category.
func nearestPace(value float64) models.PaceType {
	best := models.PaceNormal
	bestDist := -1.0
	for _, p := range []models.PaceType{models.PaceSlow, models.PaceModSlow, models.PaceNormal, models.PaceModFast, models.PaceFast} {
		d := value - paceOrdinal[p]
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = p
		}
	}
	return best
}
