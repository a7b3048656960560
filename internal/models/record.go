package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SentinelPosition marks a finish position that could not be parsed
// (withdrawn, disqualified, pulled up, or plain garbage). Records
// carrying it stay in the history for counting purposes but are
// excluded from every positional statistic.
const SentinelPosition = 99

// RawRecord is a past-performance row exactly as scraped: every field
// is a string and nothing is trusted. The normalizer turns it into a
// RaceRecord.
type RawRecord struct {
	Date        string `json:"date"`
	Venue       string `json:"venue"`
	RaceClass   string `json:"race_class"`
	Distance    string `json:"distance"`
	Going       string `json:"going"`
	Draw        string `json:"draw"`
	Position    string `json:"position"`
	Margin      string `json:"margin"`
	RunningPath string `json:"running_path"`
	Rating      string `json:"rating"`
	WinOdds     string `json:"win_odds"`
}

// RaceRecord is one normalized past performance.
type RaceRecord struct {
	Date        time.Time       `db:"race_date" json:"date"`
	Venue       string          `db:"venue" json:"venue"`
	RaceClass   string          `db:"race_class" json:"race_class"`
	Distance    int             `db:"distance" json:"distance"`
	Going       string          `db:"going" json:"going"`
	Draw        int             `db:"draw" json:"draw"`
	Position    int             `db:"finish_position" json:"position"`
	Margin      float64         `db:"margin" json:"margin"`
	RunningPath string          `db:"running_path" json:"running_path"`
	Rating      int             `db:"rating" json:"rating"`
	WinOdds     decimal.Decimal `db:"win_odds" json:"win_odds"`
}

// Valid reports whether the record carries a usable finish position.
func (r *RaceRecord) Valid() bool {
	return r.Position != SentinelPosition && r.Position > 0
}

// Won reports a win.
func (r *RaceRecord) Won() bool {
	return r.Position == 1
}

// Placed reports a top-three finish.
func (r *RaceRecord) Placed() bool {
	return r.Valid() && r.Position <= 3
}
