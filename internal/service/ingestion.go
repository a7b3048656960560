package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/datasource"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/history"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/logger"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/metrics"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/repository"
)

// IngestionService pulls a meeting's race cards, competitor histories
// and barrier statistics from the data source and persists them.
type IngestionService struct {
	source       datasource.DataSource
	repos        *repository.Repositories
	normalizer   *history.Normalizer
	auditLog     *logger.IngestionLogger
	log          *logrus.Logger
	batchSize    int
	historyDepth int
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	source datasource.DataSource,
	repos *repository.Repositories,
	log *logrus.Logger,
	batchSize int,
	historyDepth int,
) *IngestionService {
	if batchSize <= 0 {
		batchSize = 50
	}
	if historyDepth <= 0 {
		historyDepth = 10
	}

	return &IngestionService{
		source:       source,
		repos:        repos,
		normalizer:   history.NewNormalizer(log),
		auditLog:     logger.NewIngestionLogger(log),
		log:          log,
		batchSize:    batchSize,
		historyDepth: historyDepth,
	}
}

// IngestMeeting fetches and persists everything for one meeting date
func (s *IngestionService) IngestMeeting(ctx context.Context, date time.Time) (*IngestionMetrics, error) {
	runID := uuid.NewString()
	run := NewIngestionMetrics()
	startTime := time.Now()

	s.auditLog.LogRunStarted(runID, date.Format("2006-01-02"), startTime)

	cards, err := s.source.FetchRaceCards(ctx, date)
	if err != nil {
		run.RecordError()
		s.auditLog.LogFetchFailure(runID, "racecards", 1, err)
		return run, fmt.Errorf("failed to fetch race cards: %w", err)
	}
	run.TotalRaces = len(cards)

	for i := 0; i < len(cards); i += s.batchSize {
		end := i + s.batchSize
		if end > len(cards) {
			end = len(cards)
		}
		for j := i; j < end; j++ {
			if err := s.ingestCard(ctx, runID, run, &cards[j]); err != nil {
				run.RecordError()
				s.log.WithFields(logrus.Fields{
					"run_id":      runID,
					"race_number": cards[j].RaceNumber,
					"error":       err.Error(),
				}).Error("Failed to ingest race card")
			}
		}
	}

	run.Duration = time.Since(startTime)
	metrics.UpdateIngestionTotals(float64(run.SuccessfulRaces), float64(run.TotalCompetitors))
	s.auditLog.LogRunCompleted(runID, run.SuccessfulRaces, run.TotalCompetitors,
		run.HistoryRowsSkipped, float64(run.Duration.Milliseconds()))

	return run, nil
}

// ingestCard persists one race card, its entries, their histories and
// the race's barrier statistics.
func (s *IngestionService) ingestCard(ctx context.Context, runID string, run *IngestionMetrics, card *datasource.RaceCard) error {
	race, err := s.upsertRace(ctx, run, card)
	if err != nil {
		return err
	}

	for i := range card.Entries {
		entry := &card.Entries[i]
		if err := s.ingestEntry(ctx, runID, run, race, entry); err != nil {
			run.RecordError()
			s.log.WithFields(logrus.Fields{
				"run_id":            runID,
				"race_number":       race.RaceNumber,
				"competitor_number": entry.Number,
				"error":             err.Error(),
			}).Warn("Failed to ingest competitor")
		}
	}

	if err := s.ingestDrawStatistics(ctx, race); err != nil {
		// Barrier statistics are optional; scoring falls back to the
		// personal dimension when they are absent.
		s.log.WithFields(logrus.Fields{
			"run_id":      runID,
			"race_number": race.RaceNumber,
			"error":       err.Error(),
		}).Warn("Draw statistics unavailable")
	}

	run.RecordRace()
	return nil
}

// upsertRace creates the race row or reuses the stored one
func (s *IngestionService) upsertRace(ctx context.Context, run *IngestionMetrics, card *datasource.RaceCard) (*models.Race, error) {
	existing, err := s.repos.Race.GetByKey(ctx, card.Date, card.RaceNumber)
	if err == nil {
		run.RecordDuplicate()
		return existing, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up race: %w", err)
	}

	race := &models.Race{
		ID:             uuid.New(),
		Date:           card.Date,
		RaceNumber:     card.RaceNumber,
		Venue:          card.Venue,
		Distance:       card.Distance,
		Going:          card.Going,
		RaceClass:      card.RaceClass,
		FieldSize:      card.FieldSize,
		ScheduledStart: card.Date,
		Status:         "scheduled",
	}
	if err := s.repos.Race.Create(ctx, race); err != nil {
		return nil, fmt.Errorf("failed to create race: %w", err)
	}
	return race, nil
}

// ingestEntry persists one competitor and its normalized history
func (s *IngestionService) ingestEntry(ctx context.Context, runID string, run *IngestionMetrics, race *models.Race, entry *datasource.EntryData) error {
	competitor := &models.Competitor{
		ID:     uuid.New(),
		Number: entry.Number,
		Name:   entry.Name,
		Draw:   entry.Draw,
		Rating: entry.Rating,
	}
	if err := s.repos.Competitor.Create(ctx, race.ID, competitor); err != nil {
		return fmt.Errorf("failed to create competitor: %w", err)
	}
	run.RecordCompetitor()

	raws, err := s.source.FetchCompetitorHistory(ctx, entry.SourceID, s.historyDepth)
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}

	records := s.normalizer.NormalizeHistory(raws)
	skipped := len(raws) - len(records)
	if skipped > 0 {
		run.RecordSkippedRows(skipped)
		for i := 0; i < skipped; i++ {
			metrics.RecordSkippedHistoryRow()
		}
		s.auditLog.LogSkippedRow(runID, entry.Number, "history", "", fmt.Sprintf("%d unparseable rows", skipped))
	}

	if len(records) > 0 {
		if err := s.repos.Competitor.SaveHistory(ctx, competitor.ID, records); err != nil {
			return fmt.Errorf("failed to save history: %w", err)
		}
	}
	return nil
}

// ingestDrawStatistics fetches and stores the race-keyed barrier stats
func (s *IngestionService) ingestDrawStatistics(ctx context.Context, race *models.Race) error {
	key := models.RaceKey{
		Date:       race.Date.Format("2006-01-02"),
		RaceNumber: race.RaceNumber,
		Distance:   race.Distance,
		Going:      race.Going,
	}

	stats, err := s.source.FetchDrawStatistics(ctx, key)
	if err != nil {
		return err
	}
	if !stats.Key.Equal(key) {
		return &models.RaceMismatchError{Expected: key, Actual: stats.Key}
	}

	return s.repos.DrawStatistics.Upsert(ctx, stats)
}
