package models

// DimensionScore is one scored fitness dimension.
type DimensionScore struct {
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	Weight     float64 `json:"weight"`
	SampleSize int     `json:"sample_size"`
	Neutral    bool    `json:"neutral"`
	Note       string  `json:"note,omitempty"`
}

// FitnessBreakdown is the full scorecard for one competitor.
type FitnessBreakdown struct {
	CompetitorNumber int              `json:"competitor_number"`
	Profile          string           `json:"profile"`
	Dimensions       []DimensionScore `json:"dimensions"`
	Total            float64          `json:"total"`
	Grade            string           `json:"grade"`
	Pattern          string           `json:"pattern,omitempty"`
	Tags             []string         `json:"tags,omitempty"`
	Neutral          bool             `json:"neutral"`
	Notes            []string         `json:"notes,omitempty"`
}

// FieldAnalysis bundles everything the engine produces for one race.
type FieldAnalysis struct {
	Race       *Race                      `json:"race"`
	Styles     map[int]*StyleClassification `json:"styles"`
	Pace       *PaceDiagnosis             `json:"pace"`
	Breakdowns map[int]*FitnessBreakdown  `json:"breakdowns"`
}
