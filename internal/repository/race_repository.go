package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/database"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

const raceColumns = `id, race_date, race_number, venue, distance, going, race_class,
	       field_size, scheduled_start, actual_start, status, created_at, updated_at`

// PostgresRaceRepository implements RaceRepository for PostgreSQL
type PostgresRaceRepository struct {
	db *database.DB
}

// NewPostgresRaceRepository creates a new race repository
func NewPostgresRaceRepository(db *database.DB) RaceRepository {
	return &PostgresRaceRepository{db: db}
}

// Create inserts a new race
func (r *PostgresRaceRepository) Create(ctx context.Context, race *models.Race) error {
	query := `
		INSERT INTO races (id, race_date, race_number, venue, distance, going, race_class,
		                   field_size, scheduled_start, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		race.ID, race.Date, race.RaceNumber, race.Venue, race.Distance, race.Going,
		race.RaceClass, race.FieldSize, race.ScheduledStart, race.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create race: %w", err)
	}

	return nil
}

// GetByID retrieves a race by ID
func (r *PostgresRaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE id = $1`

	race := &models.Race{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&race.ID, &race.Date, &race.RaceNumber, &race.Venue, &race.Distance, &race.Going,
		&race.RaceClass, &race.FieldSize, &race.ScheduledStart, &race.ActualStart,
		&race.Status, &race.CreatedAt, &race.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race: %w", err)
	}

	return race, nil
}

// GetByKey retrieves a race by meeting date and race number
func (r *PostgresRaceRepository) GetByKey(ctx context.Context, date time.Time, raceNumber int) (*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE race_date = $1 AND race_number = $2`

	race := &models.Race{}
	err := r.db.GetPool().QueryRow(ctx, query, date, raceNumber).Scan(
		&race.ID, &race.Date, &race.RaceNumber, &race.Venue, &race.Distance, &race.Going,
		&race.RaceClass, &race.FieldSize, &race.ScheduledStart, &race.ActualStart,
		&race.Status, &race.CreatedAt, &race.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race by key: %w", err)
	}

	return race, nil
}

// GetUpcoming retrieves upcoming races ordered by scheduled start time
func (r *PostgresRaceRepository) GetUpcoming(ctx context.Context, limit int) ([]*models.Race, error) {
	query := `
		SELECT ` + raceColumns + `
		FROM races
		WHERE status = 'scheduled' AND scheduled_start > NOW()
		ORDER BY scheduled_start
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming races: %w", err)
	}
	defer rows.Close()

	return scanRaces(rows)
}

// GetByDateRange retrieves races within a date range
func (r *PostgresRaceRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Race, error) {
	query := `
		SELECT ` + raceColumns + `
		FROM races
		WHERE race_date BETWEEN $1 AND $2
		ORDER BY race_date, race_number
	`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query races by date range: %w", err)
	}
	defer rows.Close()

	return scanRaces(rows)
}

// Update updates an existing race
func (r *PostgresRaceRepository) Update(ctx context.Context, race *models.Race) error {
	query := `
		UPDATE races
		SET venue = $2, distance = $3, going = $4, race_class = $5, field_size = $6,
		    scheduled_start = $7, actual_start = $8, status = $9, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.GetPool().Exec(ctx, query,
		race.ID, race.Venue, race.Distance, race.Going, race.RaceClass, race.FieldSize,
		race.ScheduledStart, race.ActualStart, race.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update race: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Delete removes a race
func (r *PostgresRaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.GetPool().Exec(ctx, `DELETE FROM races WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete race: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func scanRaces(rows pgx.Rows) ([]*models.Race, error) {
	var races []*models.Race
	for rows.Next() {
		race := &models.Race{}
		err := rows.Scan(
			&race.ID, &race.Date, &race.RaceNumber, &race.Venue, &race.Distance, &race.Going,
			&race.RaceClass, &race.FieldSize, &race.ScheduledStart, &race.ActualStart,
			&race.Status, &race.CreatedAt, &race.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan race: %w", err)
		}
		races = append(races, race)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate races: %w", err)
	}

	return races, nil
}
