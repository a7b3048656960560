package history

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

// invalidMarkers are the scrape values that mean "no usable finish":
// withdrawals, refusals, falls and disqualifications all collapse to
// the sentinel position.
var invalidMarkers = map[string]struct{}{
	"":     {},
	"-":    {},
	"--":   {},
	"n/a":  {},
	"na":   {},
	"null": {},
	"wv":   {},
	"wr":   {},
	"rr":   {},
	"pu":   {},
	"ur":   {},
	"fe":   {},
	"dsq":  {},
}

// marginTokens maps the named winning-distance terms to lengths.
var marginTokens = map[string]float64{
	"鼻位": 0.02,
	"短頭": 0.04,
	"頭位": 0.08,
	"頸位": 0.3,
	"馬身": 1.0,
}

var dateLayouts = []string{"02/01/2006", "2006-01-02", "02/01/06"}

// Normalizer converts raw scraped performance rows into RaceRecords.
type Normalizer struct {
	logger *logrus.Logger
}

// NewNormalizer creates a new history normalizer
func NewNormalizer(logger *logrus.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// CleanPosition parses a raw finish position. Anything that is not a
// plain placing or a dead-heat marker becomes the sentinel.
func (n *Normalizer) CleanPosition(raw string) int {
	v := strings.ToLower(strings.TrimSpace(raw))
	if _, bad := invalidMarkers[v]; bad {
		return models.SentinelPosition
	}
	if strings.HasPrefix(v, "dh") {
		v = strings.TrimSpace(strings.TrimPrefix(v, "dh"))
	}
	pos, err := strconv.Atoi(v)
	if err != nil || pos <= 0 {
		return models.SentinelPosition
	}
	return pos
}

// CleanMargin parses a winning-distance cell. Named tokens map to
// fixed lengths; "1-1/4" style values become 1.25. Unparseable input
// yields zero.
func (n *Normalizer) CleanMargin(raw string) float64 {
	v := strings.TrimSpace(raw)
	if v == "" || v == "-" {
		return 0
	}
	if lengths, ok := marginTokens[v]; ok {
		return lengths
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
		return f
	}
	// Mixed number: whole part, dash, fraction.
	whole := 0.0
	frac := v
	if i := strings.Index(v, "-"); i > 0 {
		w, err := strconv.ParseFloat(v[:i], 64)
		if err != nil {
			return 0
		}
		whole = w
		frac = v[i+1:]
	}
	parts := strings.Split(frac, "/")
	if len(parts) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return whole + num/den
}

// NormalizeRecord converts one raw row. A failed date or distance makes
// the whole row unusable and returns an error; every other field
// degrades to a safe default instead.
func (n *Normalizer) NormalizeRecord(raw *models.RawRecord) (*models.RaceRecord, error) {
	if raw == nil {
		return nil, fmt.Errorf("raw record is nil")
	}

	date, err := parseDate(raw.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to parse record date %q: %w", raw.Date, err)
	}
	distance, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(raw.Distance), "m"))
	if err != nil || distance <= 0 {
		return nil, fmt.Errorf("failed to parse record distance %q", raw.Distance)
	}

	record := &models.RaceRecord{
		Date:        date,
		Venue:       strings.TrimSpace(raw.Venue),
		RaceClass:   strings.TrimSpace(raw.RaceClass),
		Distance:    distance,
		Going:       strings.TrimSpace(raw.Going),
		Position:    n.CleanPosition(raw.Position),
		Margin:      n.CleanMargin(raw.Margin),
		RunningPath: strings.TrimSpace(raw.RunningPath),
	}

	if draw, err := strconv.Atoi(strings.TrimSpace(raw.Draw)); err == nil && draw > 0 {
		record.Draw = draw
	}
	if rating, err := strconv.Atoi(strings.TrimSpace(raw.Rating)); err == nil {
		record.Rating = rating
	}
	if odds, err := decimal.NewFromString(strings.TrimSpace(raw.WinOdds)); err == nil {
		record.WinOdds = odds
	}

	return record, nil
}

// NormalizeHistory converts a full set of raw rows, dropping rows that
// cannot be normalized at all, and returns records sorted most recent
// first.
func (n *Normalizer) NormalizeHistory(raws []models.RawRecord) []models.RaceRecord {
	records := make([]models.RaceRecord, 0, len(raws))
	for i := range raws {
		record, err := n.NormalizeRecord(&raws[i])
		if err != nil {
			n.logger.WithError(err).WithField("row", i).Warn("Skipping unusable history row")
			continue
		}
		records = append(records, *record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})

	return records
}

func parseDate(raw string) (time.Time, error) {
	v := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}
