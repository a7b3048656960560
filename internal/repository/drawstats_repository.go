package repository

import (
	"context"
	"fmt"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/database"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

// PostgresDrawStatisticsRepository implements DrawStatisticsRepository
// for PostgreSQL. Statistics are stored per (race key, draw) so a
// lookup can never hand back numbers computed for another race.
type PostgresDrawStatisticsRepository struct {
	db *database.DB
}

// NewPostgresDrawStatisticsRepository creates a new draw statistics repository
func NewPostgresDrawStatisticsRepository(db *database.DB) DrawStatisticsRepository {
	return &PostgresDrawStatisticsRepository{db: db}
}

// Upsert stores the full per-draw statistic set for one race.
func (r *PostgresDrawStatisticsRepository) Upsert(ctx context.Context, stats *models.DrawStatistics) error {
	if stats == nil {
		return fmt.Errorf("statistics are nil")
	}

	query := `
		INSERT INTO draw_statistics (race_date, race_number, distance, going, draw,
		                             runs, wins, top3, win_rate, top3_rate, sample_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (race_date, race_number, draw)
		DO UPDATE SET distance = EXCLUDED.distance, going = EXCLUDED.going,
		              runs = EXCLUDED.runs, wins = EXCLUDED.wins, top3 = EXCLUDED.top3,
		              win_rate = EXCLUDED.win_rate, top3_rate = EXCLUDED.top3_rate,
		              sample_size = EXCLUDED.sample_size
	`

	for draw, stat := range stats.ByDraw {
		_, err := r.db.GetPool().Exec(ctx, query,
			stats.Key.Date, stats.Key.RaceNumber, stats.Key.Distance, stats.Key.Going,
			draw, stat.Runs, stat.Wins, stat.Top3, stat.WinRate, stat.Top3Rate, stat.SampleSize,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert draw statistic: %w", err)
		}
	}

	return nil
}

// GetByRaceKey retrieves the per-draw statistics for one race. The
// returned set carries the key it was queried with.
func (r *PostgresDrawStatisticsRepository) GetByRaceKey(ctx context.Context, key models.RaceKey) (*models.DrawStatistics, error) {
	query := `
		SELECT draw, runs, wins, top3, win_rate, top3_rate, sample_size
		FROM draw_statistics
		WHERE race_date = $1 AND race_number = $2 AND distance = $3 AND going = $4
	`

	rows, err := r.db.GetPool().Query(ctx, query, key.Date, key.RaceNumber, key.Distance, key.Going)
	if err != nil {
		return nil, fmt.Errorf("failed to query draw statistics: %w", err)
	}
	defer rows.Close()

	stats := &models.DrawStatistics{Key: key, ByDraw: make(map[int]models.DrawStatistic)}
	for rows.Next() {
		var stat models.DrawStatistic
		err := rows.Scan(&stat.Draw, &stat.Runs, &stat.Wins, &stat.Top3,
			&stat.WinRate, &stat.Top3Rate, &stat.SampleSize)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draw statistic: %w", err)
		}
		stats.ByDraw[stat.Draw] = stat
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate draw statistics: %w", err)
	}

	if len(stats.ByDraw) == 0 {
		return nil, models.ErrNotFound
	}

	return stats, nil
}
