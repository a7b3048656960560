// Package export writes analysis results to flat files for downstream
// consumers.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

// Exporter writes field analyses as CSV files into a target directory.
type Exporter struct {
	dir    string
	logger *logrus.Logger
}

// NewExporter creates a new CSV exporter
func NewExporter(dir string, logger *logrus.Logger) *Exporter {
	return &Exporter{dir: dir, logger: logger}
}

// ExportFieldAnalysis writes one race's scorecards and pace diagnosis.
// It produces scorecards_<date>_<race>.csv and pace_<date>_<race>.csv.
func (e *Exporter) ExportFieldAnalysis(analysis *models.FieldAnalysis) error {
	if analysis == nil || analysis.Race == nil {
		return fmt.Errorf("analysis is incomplete")
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	date := analysis.Race.Date.Format("2006-01-02")
	if err := e.writeScorecards(analysis, date); err != nil {
		return err
	}
	if err := e.writePace(analysis, date); err != nil {
		return err
	}

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"race_date":   date,
			"race_number": analysis.Race.RaceNumber,
			"dir":         e.dir,
		}).Info("Field analysis exported")
	}
	return nil
}

func (e *Exporter) writeScorecards(analysis *models.FieldAnalysis, date string) error {
	path := filepath.Join(e.dir, fmt.Sprintf("scorecards_%s_%d.csv", date, analysis.Race.RaceNumber))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"race_date", "race_number", "competitor_number", "profile", "style",
		"total", "grade", "pattern", "neutral", "tags",
	}
	dimNames := dimensionNames(analysis)
	header = append(header, dimNames...)
	if err := w.Write(header); err != nil {
		return err
	}

	numbers := sortedNumbers(analysis.Breakdowns)
	for _, number := range numbers {
		b := analysis.Breakdowns[number]
		style := ""
		if s, ok := analysis.Styles[number]; ok {
			style = string(s.Style)
		}

		row := []string{
			date,
			strconv.Itoa(analysis.Race.RaceNumber),
			strconv.Itoa(number),
			b.Profile,
			style,
			formatFloat(b.Total),
			b.Grade,
			b.Pattern,
			strconv.FormatBool(b.Neutral),
			strings.Join(b.Tags, "|"),
		}
		scores := make(map[string]float64, len(b.Dimensions))
		for _, d := range b.Dimensions {
			scores[d.Name] = d.Score
		}
		for _, name := range dimNames {
			row = append(row, formatFloat(scores[name]))
		}

		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func (e *Exporter) writePace(analysis *models.FieldAnalysis, date string) error {
	if analysis.Pace == nil {
		return nil
	}

	path := filepath.Join(e.dir, fmt.Sprintf("pace_%s_%d.csv", date, analysis.Race.RaceNumber))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{
		"race_date", "race_number", "pace", "confidence", "recommendation", "divergence",
		"distribution_pace", "distribution_confidence", "pressure_pace", "pressure_confidence",
		"correction_factor", "section_early", "section_mid", "section_late",
	}); err != nil {
		return err
	}

	p := analysis.Pace
	if err := w.Write([]string{
		date,
		strconv.Itoa(analysis.Race.RaceNumber),
		string(p.Pace),
		formatFloat(p.Confidence),
		p.Recommendation,
		formatFloat(p.Divergence),
		string(p.Distribution.Pace),
		formatFloat(p.Distribution.Confidence),
		string(p.Pressure.Pace),
		formatFloat(p.Pressure.Confidence),
		formatFloat(p.Correction.Factor),
		formatFloat(p.Sections.Early),
		formatFloat(p.Sections.Mid),
		formatFloat(p.Sections.Late),
	}); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

// dimensionNames returns the dimension column order from the first
// scorecard; all scorecards in one analysis share a profile.
func dimensionNames(analysis *models.FieldAnalysis) []string {
	for _, number := range sortedNumbers(analysis.Breakdowns) {
		b := analysis.Breakdowns[number]
		names := make([]string, len(b.Dimensions))
		for i, d := range b.Dimensions {
			names[i] = d.Name
		}
		return names
	}
	return nil
}

func sortedNumbers(breakdowns map[int]*models.FitnessBreakdown) []int {
	numbers := make([]int, 0, len(breakdowns))
	for n := range breakdowns {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
