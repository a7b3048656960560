package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

// RaceRepository defines the interface for race data access
type RaceRepository interface {
	Create(ctx context.Context, race *models.Race) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Race, error)
	GetByKey(ctx context.Context, date time.Time, raceNumber int) (*models.Race, error)
	GetUpcoming(ctx context.Context, limit int) ([]*models.Race, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Race, error)
	Update(ctx context.Context, race *models.Race) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CompetitorRepository defines the interface for competitor and
// past-performance data access
type CompetitorRepository interface {
	Create(ctx context.Context, raceID uuid.UUID, competitor *models.Competitor) error
	GetByRaceID(ctx context.Context, raceID uuid.UUID) ([]*models.Competitor, error)
	SaveHistory(ctx context.Context, competitorID uuid.UUID, records []models.RaceRecord) error
	GetHistory(ctx context.Context, competitorID uuid.UUID, limit int) ([]models.RaceRecord, error)
}

// DrawStatisticsRepository defines the interface for race-keyed
// population barrier statistics
type DrawStatisticsRepository interface {
	Upsert(ctx context.Context, stats *models.DrawStatistics) error
	GetByRaceKey(ctx context.Context, key models.RaceKey) (*models.DrawStatistics, error)
}

// AnalysisRepository defines the interface for persisted scorecards
type AnalysisRepository interface {
	SaveBreakdown(ctx context.Context, raceID uuid.UUID, breakdown *models.FitnessBreakdown) error
	GetBreakdowns(ctx context.Context, raceID uuid.UUID, profile string) ([]*models.FitnessBreakdown, error)
}
