package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/database"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

// PostgresAnalysisRepository implements AnalysisRepository for
// PostgreSQL. Dimension detail is kept as JSONB since consumers only
// filter on the scalar columns.
type PostgresAnalysisRepository struct {
	db *database.DB
}

// NewPostgresAnalysisRepository creates a new analysis repository
func NewPostgresAnalysisRepository(db *database.DB) AnalysisRepository {
	return &PostgresAnalysisRepository{db: db}
}

// SaveBreakdown stores one competitor's scorecard for a race.
func (r *PostgresAnalysisRepository) SaveBreakdown(ctx context.Context, raceID uuid.UUID, breakdown *models.FitnessBreakdown) error {
	if breakdown == nil {
		return fmt.Errorf("breakdown is nil")
	}

	detail, err := json.Marshal(breakdown.Dimensions)
	if err != nil {
		return fmt.Errorf("failed to marshal dimensions: %w", err)
	}

	query := `
		INSERT INTO fitness_breakdowns (race_id, competitor_number, profile, total, grade,
		                                pattern, tags, neutral, dimensions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (race_id, competitor_number, profile)
		DO UPDATE SET total = EXCLUDED.total, grade = EXCLUDED.grade,
		              pattern = EXCLUDED.pattern, tags = EXCLUDED.tags,
		              neutral = EXCLUDED.neutral, dimensions = EXCLUDED.dimensions
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		raceID, breakdown.CompetitorNumber, breakdown.Profile, breakdown.Total,
		breakdown.Grade, breakdown.Pattern, breakdown.Tags, breakdown.Neutral, detail,
	)
	if err != nil {
		return fmt.Errorf("failed to save breakdown: %w", err)
	}

	return nil
}

// GetBreakdowns retrieves every stored scorecard for a race and
// profile, ordered by total score descending.
func (r *PostgresAnalysisRepository) GetBreakdowns(ctx context.Context, raceID uuid.UUID, profile string) ([]*models.FitnessBreakdown, error) {
	query := `
		SELECT competitor_number, profile, total, grade, pattern, tags, neutral, dimensions
		FROM fitness_breakdowns
		WHERE race_id = $1 AND profile = $2
		ORDER BY total DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, raceID, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to query breakdowns: %w", err)
	}
	defer rows.Close()

	var breakdowns []*models.FitnessBreakdown
	for rows.Next() {
		b := &models.FitnessBreakdown{}
		var detail []byte
		err := rows.Scan(&b.CompetitorNumber, &b.Profile, &b.Total, &b.Grade,
			&b.Pattern, &b.Tags, &b.Neutral, &detail)
		if err != nil {
			return nil, fmt.Errorf("failed to scan breakdown: %w", err)
		}
		if err := json.Unmarshal(detail, &b.Dimensions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal dimensions: %w", err)
		}
		breakdowns = append(breakdowns, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate breakdowns: %w", err)
	}

	return breakdowns, nil
}
