package models

import (
	"time"

	"github.com/google/uuid"
)

// Race represents a race meeting entry in the system
type Race struct {
	ID             uuid.UUID  `db:"id" json:"id" validate:"required,uuid4"`
	Date           time.Time  `db:"race_date" json:"race_date" validate:"required"`
	RaceNumber     int        `db:"race_number" json:"race_number" validate:"required,gt=0"`
	Venue          string     `db:"venue" json:"venue" validate:"required"`
	Distance       int        `db:"distance" json:"distance" validate:"required,gt=0"`
	Going          string     `db:"going" json:"going"`
	RaceClass      string     `db:"race_class" json:"race_class"`
	FieldSize      int        `db:"field_size" json:"field_size" validate:"required,gt=1"`
	ScheduledStart time.Time  `db:"scheduled_start" json:"scheduled_start"`
	ActualStart    *time.Time `db:"actual_start" json:"actual_start"`
	Status         string     `db:"status" json:"status" validate:"oneof=scheduled started finished cancelled"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// IsUpcoming checks if the race hasn't started yet
func (r *Race) IsUpcoming() bool {
	return r.ActualStart == nil && r.Status == "scheduled"
}

// IsFinished checks if the race has completed
func (r *Race) IsFinished() bool {
	return r.Status == "finished" && r.ActualStart != nil
}

// TimeToStart returns the duration until race start
func (r *Race) TimeToStart() time.Duration {
	return time.Until(r.ScheduledStart)
}

// Key builds the identity used to pin per-race statistics to this race.
func (r *Race) Key() RaceKey {
	return RaceKey{
		Date:       r.Date.Format("2006-01-02"),
		RaceNumber: r.RaceNumber,
		Distance:   r.Distance,
		Going:      r.Going,
	}
}

// PredictionContext carries the race-day inputs a single competitor is
// analyzed against. Everything here describes today's race, not the
// competitor's history.
type PredictionContext struct {
	Draw      int    `json:"draw" validate:"required,gt=0"`
	Distance  int    `json:"distance" validate:"required,gt=0"`
	Going     string `json:"going"`
	Venue     string `json:"venue"`
	FieldSize int    `json:"field_size" validate:"required,gt=1"`
	Rating    int    `json:"rating"`
}
