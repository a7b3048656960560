package models

// CompetitorProfile holds the aggregate metrics derived from a
// competitor's normalized history. All rates are decimals in [0,1].
type CompetitorProfile struct {
	TotalRaces        int     `json:"total_races"`
	ValidRaces        int     `json:"valid_races"`
	Wins              int     `json:"wins"`
	Places            int     `json:"places"`
	WinRate           float64 `json:"win_rate"`
	PlacementRate     float64 `json:"placement_rate"`
	RecentPlacementRate float64 `json:"recent_placement_rate"`
	WinPlaceRatio     float64 `json:"win_place_ratio"`
	AvgMargin         float64 `json:"avg_margin"`
	RatingStdDev      float64 `json:"rating_std_dev"`
	PositionStdDev    float64 `json:"position_std_dev"`

	// Placement rate keyed by venue and by exact distance.
	VenuePlacementRates    map[string]float64 `json:"venue_placement_rates"`
	DistancePlacementRates map[int]float64    `json:"distance_placement_rates"`

	// Win rate at each draw the competitor has raced from.
	DrawWinRates map[int]float64 `json:"draw_win_rates"`
}

// BestVenueRate returns the highest per-venue placement rate, or zero
// when the competitor has no venue history.
func (p *CompetitorProfile) BestVenueRate() float64 {
	best := 0.0
	for _, rate := range p.VenuePlacementRates {
		if rate > best {
			best = rate
		}
	}
	return best
}
