package models

// PaceType is a projected race tempo.
type PaceType string

const (
	PaceFast     PaceType = "fast"
	PaceModFast  PaceType = "moderately_fast"
	PaceNormal   PaceType = "normal"
	PaceModSlow  PaceType = "moderately_slow"
	PaceSlow     PaceType = "slow"
)

// StyleCounts is the field's composition by running style.
type StyleCounts struct {
	Front int `json:"front"`
	Mid   int `json:"mid"`
	Back  int `json:"back"`
}

// Total returns the field size implied by the counts.
func (s StyleCounts) Total() int {
	return s.Front + s.Mid + s.Back
}

// PaceEstimate is one estimator's verdict.
type PaceEstimate struct {
	Pace       PaceType `json:"pace"`
	Confidence float64  `json:"confidence"`
	Method     string   `json:"method"`
	Notes      []string `json:"notes,omitempty"`
}

// PaceDiagnosis is the fused verdict of the two estimators plus the
// per-method detail a caller needs to audit the fusion.
type PaceDiagnosis struct {
	Pace           PaceType     `json:"pace"`
	Confidence     float64      `json:"confidence"`
	Recommendation string       `json:"recommendation"`
	Divergence     float64      `json:"divergence"`
	Distribution   PaceEstimate `json:"distribution"`
	Pressure       PaceEstimate `json:"pressure"`
	Correction     DistanceCorrection `json:"distance_correction"`
	Sections       PaceSections `json:"sections"`
}

// DistanceCorrection is advisory metadata describing how race distance
// skews the projected tempo. It never alters the category itself.
type DistanceCorrection struct {
	Distance int     `json:"distance"`
	Factor   float64 `json:"factor"`
	Applied  bool    `json:"applied"`
}

// PaceSections is the projected tempo value across race phases.
type PaceSections struct {
	Early float64 `json:"early"`
	Mid   float64 `json:"mid"`
	Late  float64 `json:"late"`
}
