package export

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

func testAnalysis() *models.FieldAnalysis {
	race := &models.Race{
		Date:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		RaceNumber: 4,
		Venue:      "沙田",
		Distance:   1400,
		Going:      "好地",
		FieldSize:  2,
	}

	return &models.FieldAnalysis{
		Race: race,
		Styles: map[int]*models.StyleClassification{
			1: {Style: models.StyleFront, Confidence: 80},
			2: {Style: models.StyleBack, Confidence: 65},
		},
		Pace: &models.PaceDiagnosis{
			Pace:           models.PaceModFast,
			Confidence:     74.2,
			Recommendation: "favor_distribution",
			Divergence:     0.5,
			Distribution:   models.PaceEstimate{Pace: models.PaceModFast, Confidence: 80},
			Pressure:       models.PaceEstimate{Pace: models.PaceNormal, Confidence: 70},
			Correction:     models.DistanceCorrection{Distance: 1400, Factor: 1.0},
			Sections:       models.PaceSections{Early: 1.1, Mid: 1.045, Late: 0.99},
		},
		Breakdowns: map[int]*models.FitnessBreakdown{
			1: {
				CompetitorNumber: 1,
				Profile:          "realtime",
				Total:            0.72,
				Grade:            "A-",
				Pattern:          "balanced",
				Tags:             []string{"reliable_performer"},
				Dimensions: []models.DimensionScore{
					{Name: "barrier", Score: 0.6},
					{Name: "distance", Score: 0.8},
				},
			},
			2: {
				CompetitorNumber: 2,
				Profile:          "realtime",
				Total:            0.5,
				Grade:            "B-",
				Neutral:          true,
				Dimensions: []models.DimensionScore{
					{Name: "barrier", Score: 0.5, Neutral: true},
					{Name: "distance", Score: 0.5, Neutral: true},
				},
			},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestExportFieldAnalysis(t *testing.T) {
	dir := t.TempDir()
	log := logrus.New()
	log.SetOutput(io.Discard)

	exporter := NewExporter(dir, log)
	require.NoError(t, exporter.ExportFieldAnalysis(testAnalysis()))

	scorecards := readCSV(t, filepath.Join(dir, "scorecards_2026-03-01_4.csv"))
	require.Len(t, scorecards, 3)

	header := scorecards[0]
	assert.Equal(t, "race_date", header[0])
	assert.Contains(t, header, "barrier")
	assert.Contains(t, header, "distance")

	// Rows come out in competitor-number order
	assert.Equal(t, "1", scorecards[1][2])
	assert.Equal(t, "A-", scorecards[1][6])
	assert.Equal(t, "reliable_performer", scorecards[1][9])
	assert.Equal(t, "2", scorecards[2][2])
	assert.Equal(t, "true", scorecards[2][8])

	pace := readCSV(t, filepath.Join(dir, "pace_2026-03-01_4.csv"))
	require.Len(t, pace, 2)
	assert.Equal(t, string(models.PaceModFast), pace[1][2])
	assert.Equal(t, "favor_distribution", pace[1][4])
}

func TestExportNilAnalysis(t *testing.T) {
	exporter := NewExporter(t.TempDir(), nil)
	assert.Error(t, exporter.ExportFieldAnalysis(nil))
	assert.Error(t, exporter.ExportFieldAnalysis(&models.FieldAnalysis{}))
}

func TestExportWithoutPace(t *testing.T) {
	dir := t.TempDir()
	analysis := testAnalysis()
	analysis.Pace = nil

	exporter := NewExporter(dir, nil)
	require.NoError(t, exporter.ExportFieldAnalysis(analysis))

	_, err := os.Stat(filepath.Join(dir, "pace_2026-03-01_4.csv"))
	assert.True(t, os.IsNotExist(err))
}
