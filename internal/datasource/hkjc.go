package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

const (
	hkjcSourceName = "hkjc"
	hkjcDateLayout = "2006-01-02"
)

// HKJCClient implements DataSource against the HKJC results feed
type HKJCClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	cache      *gocache.Cache
	logger     *logrus.Logger
}

// hkjcRaceCard mirrors the feed's race card payload
type hkjcRaceCard struct {
	ID         string      `json:"id"`
	Date       string      `json:"date"`
	Venue      string      `json:"venue"`
	RaceNumber int         `json:"raceNumber"`
	Distance   int         `json:"distance"`
	Going      string      `json:"going"`
	RaceClass  string      `json:"raceClass"`
	FieldSize  int         `json:"fieldSize"`
	Entries    []hkjcEntry `json:"entries"`
}

type hkjcEntry struct {
	ID      string `json:"id"`
	Number  int    `json:"number"`
	Name    string `json:"name"`
	Draw    int    `json:"draw"`
	Rating  int    `json:"rating"`
	Jockey  string `json:"jockey"`
	Trainer string `json:"trainer"`
	WinOdds string `json:"winOdds"`
}

// hkjcHistoryRow mirrors the feed's past-performance payload. Every
// field arrives as a string and is normalized downstream.
type hkjcHistoryRow struct {
	Date        string `json:"date"`
	Venue       string `json:"venue"`
	RaceClass   string `json:"raceClass"`
	Distance    string `json:"distance"`
	Going       string `json:"going"`
	Draw        string `json:"draw"`
	Position    string `json:"position"`
	Margin      string `json:"margin"`
	RunningPath string `json:"runningPath"`
	Rating      string `json:"rating"`
	WinOdds     string `json:"winOdds"`
}

type hkjcDrawStat struct {
	Draw int `json:"draw"`
	Runs int `json:"runs"`
	Wins int `json:"wins"`
	Top3 int `json:"top3"`
}

type hkjcDrawStatsPayload struct {
	Date       string         `json:"date"`
	RaceNumber int            `json:"raceNumber"`
	Distance   int            `json:"distance"`
	Going      string         `json:"going"`
	Draws      []hkjcDrawStat `json:"draws"`
}

// NewHKJCClient creates a new HKJC feed client
func NewHKJCClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, cacheTTL time.Duration, enabled bool, logger *logrus.Logger) *HKJCClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &HKJCClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		enabled:    enabled,
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
		logger:     logger,
	}
}

// FetchRaceCards retrieves the race cards for a meeting date
func (c *HKJCClient) FetchRaceCards(ctx context.Context, date time.Time) ([]RaceCard, error) {
	if !c.enabled {
		return nil, NewDataSourceError(hkjcSourceName, ErrCodeNetworkError, "data source is disabled", nil)
	}

	endpoint := fmt.Sprintf("%s/racecards?date=%s", c.baseURL, date.Format(hkjcDateLayout))

	if cached, ok := c.cache.Get(endpoint); ok {
		return cached.([]RaceCard), nil
	}

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var feedCards []hkjcRaceCard
	if err := json.Unmarshal(body, &feedCards); err != nil {
		return nil, NewDataSourceError(hkjcSourceName, ErrCodeInvalidData, "failed to parse race cards", err)
	}

	cards := make([]RaceCard, 0, len(feedCards))
	for _, fc := range feedCards {
		card, err := c.convertCard(&fc)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"race_id": fc.ID,
				"error":   err.Error(),
			}).Warn("Skipping unconvertible race card")
			continue
		}
		cards = append(cards, *card)
	}

	c.cache.SetDefault(endpoint, cards)
	return cards, nil
}

// FetchCompetitorHistory retrieves raw past-performance rows for a competitor
func (c *HKJCClient) FetchCompetitorHistory(ctx context.Context, competitorID string, depth int) ([]models.RawRecord, error) {
	if !c.enabled {
		return nil, NewDataSourceError(hkjcSourceName, ErrCodeNetworkError, "data source is disabled", nil)
	}

	endpoint := fmt.Sprintf("%s/competitors/%s/history?depth=%d", c.baseURL, url.PathEscape(competitorID), depth)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var rows []hkjcHistoryRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, NewDataSourceError(hkjcSourceName, ErrCodeInvalidData, "failed to parse history rows", err)
	}

	records := make([]models.RawRecord, len(rows))
	for i, row := range rows {
		records[i] = models.RawRecord{
			Date:        row.Date,
			Venue:       row.Venue,
			RaceClass:   row.RaceClass,
			Distance:    row.Distance,
			Going:       row.Going,
			Draw:        row.Draw,
			Position:    row.Position,
			Margin:      row.Margin,
			RunningPath: row.RunningPath,
			Rating:      row.Rating,
			WinOdds:     row.WinOdds,
		}
	}

	return records, nil
}

// FetchDrawStatistics retrieves population barrier statistics for a race
func (c *HKJCClient) FetchDrawStatistics(ctx context.Context, key models.RaceKey) (*models.DrawStatistics, error) {
	if !c.enabled {
		return nil, NewDataSourceError(hkjcSourceName, ErrCodeNetworkError, "data source is disabled", nil)
	}

	endpoint := fmt.Sprintf("%s/statistics/draws?date=%s&race=%d&distance=%d&going=%s",
		c.baseURL, key.Date, key.RaceNumber, key.Distance, url.QueryEscape(key.Going))

	if cached, ok := c.cache.Get(endpoint); ok {
		return cached.(*models.DrawStatistics), nil
	}

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var payload hkjcDrawStatsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, NewDataSourceError(hkjcSourceName, ErrCodeInvalidData, "failed to parse draw statistics", err)
	}

	stats := &models.DrawStatistics{
		Key: models.RaceKey{
			Date:       payload.Date,
			RaceNumber: payload.RaceNumber,
			Distance:   payload.Distance,
			Going:      payload.Going,
		},
		ByDraw: make(map[int]models.DrawStatistic, len(payload.Draws)),
	}

	sampleSize := 0
	for _, d := range payload.Draws {
		sampleSize += d.Runs
	}

	for _, d := range payload.Draws {
		stat := models.DrawStatistic{
			Draw:       d.Draw,
			Runs:       d.Runs,
			Wins:       d.Wins,
			Top3:       d.Top3,
			SampleSize: sampleSize,
		}
		if d.Runs > 0 {
			stat.WinRate = float64(d.Wins) / float64(d.Runs)
			stat.Top3Rate = float64(d.Top3) / float64(d.Runs)
		}
		stats.ByDraw[d.Draw] = stat
	}

	c.cache.SetDefault(endpoint, stats)
	return stats, nil
}

// Name returns the data source name
func (c *HKJCClient) Name() string {
	return hkjcSourceName
}

// IsEnabled returns whether this data source is enabled
func (c *HKJCClient) IsEnabled() bool {
	return c.enabled
}

// Healthy reports whether the feed can be reached: disabled sources
// and an open circuit breaker both fail readiness.
func (c *HKJCClient) Healthy() error {
	if !c.enabled {
		return NewDataSourceError(hkjcSourceName, ErrCodeNetworkError, "data source is disabled", nil)
	}
	return c.httpClient.Healthy()
}

// get executes an authenticated GET and maps HTTP failures onto
// DataSourceError codes.
func (c *HKJCClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewDataSourceError(hkjcSourceName, ErrCodeNetworkError, "failed to create request", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(hkjcSourceName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, NewDataSourceError(hkjcSourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case http.StatusNotFound:
		return nil, NewDataSourceError(hkjcSourceName, ErrCodeNotFound, "resource not found", nil)
	case http.StatusTooManyRequests:
		return nil, NewDataSourceError(hkjcSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, NewDataSourceError(hkjcSourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewDataSourceError(hkjcSourceName, ErrCodeNetworkError, "failed to read response body", err)
	}
	return body, nil
}

// convertCard converts a feed race card into the normalized form
func (c *HKJCClient) convertCard(fc *hkjcRaceCard) (*RaceCard, error) {
	date, err := time.Parse(hkjcDateLayout, fc.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid meeting date %q: %w", fc.Date, err)
	}
	if fc.RaceNumber <= 0 {
		return nil, fmt.Errorf("invalid race number %d", fc.RaceNumber)
	}

	card := &RaceCard{
		SourceID:   fc.ID,
		Date:       date,
		Venue:      fc.Venue,
		RaceNumber: fc.RaceNumber,
		Distance:   fc.Distance,
		Going:      fc.Going,
		RaceClass:  fc.RaceClass,
		FieldSize:  fc.FieldSize,
		Entries:    make([]EntryData, len(fc.Entries)),
		CreatedAt:  time.Now(),
	}
	if card.FieldSize == 0 {
		card.FieldSize = len(fc.Entries)
	}

	for i, e := range fc.Entries {
		card.Entries[i] = EntryData{
			SourceID: e.ID,
			Number:   e.Number,
			Name:     e.Name,
			Draw:     e.Draw,
			Rating:   e.Rating,
			Jockey:   e.Jockey,
			Trainer:  e.Trainer,
			WinOdds:  e.WinOdds,
		}
	}

	return card, nil
}
