package models

import "github.com/google/uuid"

// Competitor is one runner in today's race along with its normalized
// past performances.
type Competitor struct {
	ID      uuid.UUID          `db:"id" json:"id"`
	Number  int                `db:"number" json:"number" validate:"required,gt=0"`
	Name    string             `db:"name" json:"name" validate:"required"`
	Draw    int                `db:"draw" json:"draw" validate:"gt=0"`
	Rating  int                `db:"rating" json:"rating"`
	History []RaceRecord       `json:"history"`
	Profile *CompetitorProfile `json:"profile,omitempty"`
}

// HasHistory reports whether any past performance is on record.
func (c *Competitor) HasHistory() bool {
	return len(c.History) > 0
}
