package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/database"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

// PostgresCompetitorRepository implements CompetitorRepository for PostgreSQL
type PostgresCompetitorRepository struct {
	db *database.DB
}

// NewPostgresCompetitorRepository creates a new competitor repository
func NewPostgresCompetitorRepository(db *database.DB) CompetitorRepository {
	return &PostgresCompetitorRepository{db: db}
}

// Create inserts a competitor for a race
func (r *PostgresCompetitorRepository) Create(ctx context.Context, raceID uuid.UUID, competitor *models.Competitor) error {
	query := `
		INSERT INTO competitors (id, race_id, number, name, draw, rating)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		competitor.ID, raceID, competitor.Number, competitor.Name, competitor.Draw, competitor.Rating,
	)
	if err != nil {
		return fmt.Errorf("failed to create competitor: %w", err)
	}

	return nil
}

// GetByRaceID retrieves every competitor entered in a race, history
// not attached.
func (r *PostgresCompetitorRepository) GetByRaceID(ctx context.Context, raceID uuid.UUID) ([]*models.Competitor, error) {
	query := `
		SELECT id, number, name, draw, rating
		FROM competitors
		WHERE race_id = $1
		ORDER BY number
	`

	rows, err := r.db.GetPool().Query(ctx, query, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query competitors: %w", err)
	}
	defer rows.Close()

	var competitors []*models.Competitor
	for rows.Next() {
		c := &models.Competitor{}
		if err := rows.Scan(&c.ID, &c.Number, &c.Name, &c.Draw, &c.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan competitor: %w", err)
		}
		competitors = append(competitors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate competitors: %w", err)
	}

	return competitors, nil
}

// SaveHistory replaces a competitor's stored past performances in one
// transaction.
func (r *PostgresCompetitorRepository) SaveHistory(ctx context.Context, competitorID uuid.UUID, records []models.RaceRecord) error {
	tx, err := r.db.GetPool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM race_records WHERE competitor_id = $1`, competitorID); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	query := `
		INSERT INTO race_records (competitor_id, race_date, venue, race_class, distance,
		                          going, draw, finish_position, margin, running_path, rating, win_odds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	for _, rec := range records {
		_, err := tx.Exec(ctx, query,
			competitorID, rec.Date, rec.Venue, rec.RaceClass, rec.Distance, rec.Going,
			rec.Draw, rec.Position, rec.Margin, rec.RunningPath, rec.Rating, rec.WinOdds,
		)
		if err != nil {
			return fmt.Errorf("failed to insert history record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit history: %w", err)
	}

	return nil
}

// GetHistory retrieves a competitor's past performances, most recent
// first. limit <= 0 means no limit.
func (r *PostgresCompetitorRepository) GetHistory(ctx context.Context, competitorID uuid.UUID, limit int) ([]models.RaceRecord, error) {
	query := `
		SELECT race_date, venue, race_class, distance, going, draw,
		       finish_position, margin, running_path, rating, win_odds
		FROM race_records
		WHERE competitor_id = $1
		ORDER BY race_date DESC
	`
	args := []interface{}{competitorID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]models.RaceRecord, error) {
	var records []models.RaceRecord
	for rows.Next() {
		var rec models.RaceRecord
		err := rows.Scan(
			&rec.Date, &rec.Venue, &rec.RaceClass, &rec.Distance, &rec.Going, &rec.Draw,
			&rec.Position, &rec.Margin, &rec.RunningPath, &rec.Rating, &rec.WinOdds,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history records: %w", err)
	}

	return records, nil
}
