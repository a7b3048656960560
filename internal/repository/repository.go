package repository

import (
	"fmt"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Race           RaceRepository
	Competitor     CompetitorRepository
	DrawStatistics DrawStatisticsRepository
	Analysis       AnalysisRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Race:           NewPostgresRaceRepository(db),
		Competitor:     NewPostgresCompetitorRepository(db),
		DrawStatistics: NewPostgresDrawStatisticsRepository(db),
		Analysis:       NewPostgresAnalysisRepository(db),
	}, nil
}
