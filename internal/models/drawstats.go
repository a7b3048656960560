package models

// RaceKey identifies the exact race a block of statistics was computed
// for. Population statistics are only usable when their key matches the
// race under analysis.
type RaceKey struct {
	Date       string `json:"date"`
	RaceNumber int    `json:"race_number"`
	Distance   int    `json:"distance"`
	Going      string `json:"going"`
}

// Equal compares every identity field.
func (k RaceKey) Equal(other RaceKey) bool {
	return k == other
}

// DrawStatistic is the population-level record for one barrier draw.
type DrawStatistic struct {
	Draw       int     `db:"draw" json:"draw"`
	Runs       int     `db:"runs" json:"runs"`
	Wins       int     `db:"wins" json:"wins"`
	Top3       int     `db:"top3" json:"top3"`
	WinRate    float64 `db:"win_rate" json:"win_rate"`
	Top3Rate   float64 `db:"top3_rate" json:"top3_rate"`
	SampleSize int     `db:"sample_size" json:"sample_size"`
}

// DrawStatistics is a race-keyed set of per-draw population records.
type DrawStatistics struct {
	Key    RaceKey               `json:"key"`
	ByDraw map[int]DrawStatistic `json:"by_draw"`
}

// Lookup returns the statistic for a draw and whether it exists.
func (d *DrawStatistics) Lookup(draw int) (DrawStatistic, bool) {
	if d == nil || d.ByDraw == nil {
		return DrawStatistic{}, false
	}
	stat, ok := d.ByDraw[draw]
	return stat, ok
}
