package models

// RunningStyle is a competitor's habitual early-race positioning.
type RunningStyle string

const (
	StyleFront RunningStyle = "front"
	StyleMid   RunningStyle = "mid"
	StyleBack  RunningStyle = "back"
)

// StyleClassification is the outcome of classifying one competitor's
// running style for a specific field size and draw.
type StyleClassification struct {
	Style            RunningStyle `json:"style"`
	Draw             int          `json:"draw"`
	FieldSize        int          `json:"field_size"`
	BaselinePosition float64      `json:"baseline_position"`
	AdjustedPosition float64      `json:"adjusted_position"`
	Confidence       float64      `json:"confidence"`
	NewEntrant       bool         `json:"new_entrant"`
	SampleSize       int          `json:"sample_size"`
	EarlyPositions   []float64    `json:"early_positions,omitempty"`
	PositionStdDev   float64      `json:"position_std_dev"`
	DistanceWindow   int          `json:"distance_window"`
	Notes            []string     `json:"notes,omitempty"`
}
