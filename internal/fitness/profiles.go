package fitness

// Profile names selectable by callers.
const (
	ProfileRealtime   = "realtime"
	ProfileCalculator = "calculator"
)

// Dimension names for the realtime profile.
const (
	DimBarrier     = "barrier"
	DimDistance    = "distance"
	DimSurface     = "surface"
	DimStability   = "stability"
	DimTrend       = "trend"
	DimConsistency = "consistency"
)

// Dimension names for the calculator profile.
const (
	DimPlacementConsistency = "placement_consistency"
	DimCalcStability        = "stability"
	DimEnvironment          = "environment"
	DimRecentTrend          = "recent_trend"
)

// realtimeWeights is the six-dimension weighting. The values sum to 1.
var realtimeWeights = map[string]float64{
	DimBarrier:     0.20,
	DimDistance:    0.20,
	DimSurface:     0.10,
	DimStability:   0.25,
	DimTrend:       0.15,
	DimConsistency: 0.10,
}

// calculatorWeights is the four-dimension weighting of the secondary
// profile. The values sum to 1.
var calculatorWeights = map[string]float64{
	DimPlacementConsistency: 0.30,
	DimCalcStability:        0.25,
	DimEnvironment:          0.25,
	DimRecentTrend:          0.20,
}
