package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
)

// DataSource defines the interface for fetching racing data from external providers
type DataSource interface {
	// FetchRaceCards retrieves the race cards for a meeting date
	FetchRaceCards(ctx context.Context, date time.Time) ([]RaceCard, error)

	// FetchCompetitorHistory retrieves raw past-performance rows for a competitor
	FetchCompetitorHistory(ctx context.Context, competitorID string, depth int) ([]models.RawRecord, error)

	// FetchDrawStatistics retrieves population barrier statistics for a race
	FetchDrawStatistics(ctx context.Context, key models.RaceKey) (*models.DrawStatistics, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// HealthReporter is implemented by sources that can report their
// ability to serve requests, for readiness probes.
type HealthReporter interface {
	Healthy() error
}

// RaceCard represents one race on a meeting card together with its entries
type RaceCard struct {
	SourceID   string      `json:"source_id"`   // Provider's unique race ID
	Date       time.Time   `json:"date"`        // Meeting date
	Venue      string      `json:"venue"`       // Course name (e.g., "Sha Tin")
	RaceNumber int         `json:"race_number"` // Race number on the card
	Distance   int         `json:"distance"`    // Distance in meters
	Going      string      `json:"going"`       // Track condition
	RaceClass  string      `json:"race_class"`  // Class or grade
	FieldSize  int         `json:"field_size"`  // Declared field size
	Entries    []EntryData `json:"entries"`     // Declared runners
	CreatedAt  time.Time   `json:"created_at"`  // When data was fetched
}

// EntryData represents one declared runner on a race card
type EntryData struct {
	SourceID string `json:"source_id"` // Provider's unique runner ID
	Number   int    `json:"number"`    // Saddlecloth number
	Name     string `json:"name"`      // Runner name
	Draw     int    `json:"draw"`      // Barrier draw
	Rating   int    `json:"rating"`    // Official rating, 0 when unrated
	Jockey   string `json:"jockey"`
	Trainer  string `json:"trainer"`
	WinOdds  string `json:"win_odds"` // Raw odds string, may be empty pre-market
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// Error constructors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
