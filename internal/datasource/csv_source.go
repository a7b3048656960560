package datasource

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

const csvSourceName = "csv"

// CSVSource implements DataSource against a directory of flat files.
// It backs local development and backfills where no feed access exists.
//
// Layout under the root directory:
//
//	racecards_<date>.csv   one row per entry, race fields repeated
//	history_<id>.csv       one row per past performance
//	draws_<date>_<race>.csv one row per barrier draw
type CSVSource struct {
	root    string
	enabled bool
}

// NewCSVSource creates a flat-file data source rooted at dir
func NewCSVSource(dir string, enabled bool) *CSVSource {
	return &CSVSource{root: dir, enabled: enabled}
}

// FetchRaceCards reads the race card file for a meeting date
func (s *CSVSource) FetchRaceCards(ctx context.Context, date time.Time) ([]RaceCard, error) {
	if !s.enabled {
		return nil, NewDataSourceError(csvSourceName, ErrCodeNetworkError, "data source is disabled", nil)
	}

	rows, err := s.readAll(filepath.Join(s.root, fmt.Sprintf("racecards_%s.csv", date.Format(hkjcDateLayout))))
	if err != nil {
		return nil, err
	}

	// rows: race_number,venue,distance,going,race_class,field_size,number,name,draw,rating,jockey,trainer,win_odds
	cards := make(map[int]*RaceCard)
	order := make([]int, 0)
	for _, row := range rows {
		if len(row) < 13 {
			return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData,
				fmt.Sprintf("race card row has %d columns, want 13", len(row)), nil)
		}

		raceNumber := atoi(row[0])
		card, ok := cards[raceNumber]
		if !ok {
			card = &RaceCard{
				Date:       date,
				Venue:      row[1],
				RaceNumber: raceNumber,
				Distance:   atoi(row[2]),
				Going:      row[3],
				RaceClass:  row[4],
				FieldSize:  atoi(row[5]),
				CreatedAt:  time.Now(),
			}
			cards[raceNumber] = card
			order = append(order, raceNumber)
		}

		card.Entries = append(card.Entries, EntryData{
			Number:  atoi(row[6]),
			Name:    row[7],
			Draw:    atoi(row[8]),
			Rating:  atoi(row[9]),
			Jockey:  row[10],
			Trainer: row[11],
			WinOdds: row[12],
		})
	}

	out := make([]RaceCard, 0, len(order))
	for _, n := range order {
		card := cards[n]
		if card.FieldSize == 0 {
			card.FieldSize = len(card.Entries)
		}
		out = append(out, *card)
	}
	return out, nil
}

// FetchCompetitorHistory reads the history file for a competitor
func (s *CSVSource) FetchCompetitorHistory(ctx context.Context, competitorID string, depth int) ([]models.RawRecord, error) {
	if !s.enabled {
		return nil, NewDataSourceError(csvSourceName, ErrCodeNetworkError, "data source is disabled", nil)
	}

	rows, err := s.readAll(filepath.Join(s.root, fmt.Sprintf("history_%s.csv", competitorID)))
	if err != nil {
		return nil, err
	}

	// rows: date,venue,race_class,distance,going,draw,position,margin,running_path,rating,win_odds
	records := make([]models.RawRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) < 11 {
			return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData,
				fmt.Sprintf("history row has %d columns, want 11", len(row)), nil)
		}
		records = append(records, models.RawRecord{
			Date:        row[0],
			Venue:       row[1],
			RaceClass:   row[2],
			Distance:    row[3],
			Going:       row[4],
			Draw:        row[5],
			Position:    row[6],
			Margin:      row[7],
			RunningPath: row[8],
			Rating:      row[9],
			WinOdds:     row[10],
		})
		if depth > 0 && len(records) == depth {
			break
		}
	}

	return records, nil
}

// FetchDrawStatistics reads the barrier statistics file for a race
func (s *CSVSource) FetchDrawStatistics(ctx context.Context, key models.RaceKey) (*models.DrawStatistics, error) {
	if !s.enabled {
		return nil, NewDataSourceError(csvSourceName, ErrCodeNetworkError, "data source is disabled", nil)
	}

	rows, err := s.readAll(filepath.Join(s.root, fmt.Sprintf("draws_%s_%d.csv", key.Date, key.RaceNumber)))
	if err != nil {
		return nil, err
	}

	stats := &models.DrawStatistics{
		Key:    key,
		ByDraw: make(map[int]models.DrawStatistic, len(rows)),
	}

	// rows: draw,runs,wins,top3
	sampleSize := 0
	parsed := make([]models.DrawStatistic, 0, len(rows))
	for _, row := range rows {
		if len(row) < 4 {
			return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData,
				fmt.Sprintf("draw row has %d columns, want 4", len(row)), nil)
		}
		stat := models.DrawStatistic{
			Draw: atoi(row[0]),
			Runs: atoi(row[1]),
			Wins: atoi(row[2]),
			Top3: atoi(row[3]),
		}
		sampleSize += stat.Runs
		parsed = append(parsed, stat)
	}

	for _, stat := range parsed {
		stat.SampleSize = sampleSize
		if stat.Runs > 0 {
			stat.WinRate = float64(stat.Wins) / float64(stat.Runs)
			stat.Top3Rate = float64(stat.Top3) / float64(stat.Runs)
		}
		stats.ByDraw[stat.Draw] = stat
	}

	return stats, nil
}

// Name returns the data source name
func (s *CSVSource) Name() string {
	return csvSourceName
}

// IsEnabled returns whether this data source is enabled
func (s *CSVSource) IsEnabled() bool {
	return s.enabled
}

// Healthy reports whether the flat-file root is readable.
func (s *CSVSource) Healthy() error {
	if !s.enabled {
		return NewDataSourceError(csvSourceName, ErrCodeNetworkError, "data source is disabled", nil)
	}
	if _, err := os.Stat(s.root); err != nil {
		return NewDataSourceError(csvSourceName, ErrCodeNotFound, s.root, err)
	}
	return nil
}

// readAll reads a CSV file and strips its header row
func (s *CSVSource) readAll(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewDataSourceError(csvSourceName, ErrCodeNotFound, path, err)
		}
		return nil, NewDataSourceError(csvSourceName, ErrCodeNetworkError, "failed to open file", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, "failed to parse CSV", err)
	}

	if len(rows) > 0 {
		rows = rows[1:]
	}
	return rows, nil
}

// atoi parses a numeric field, returning 0 for blanks and garbage
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
