package datasource

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/config"
)

// SourceType represents the type of data source
type SourceType string

const (
	// HKJC feed data source type
	HKJCSourceType SourceType = "hkjc"
	// CSV file data source type
	CSVSourceType SourceType = "csv"
)

// Factory creates DataSource implementations based on configuration
type Factory struct {
	logger *logrus.Logger
	config *config.Config
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, logger *logrus.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// Create creates a new data source based on the type
func (f *Factory) Create(sourceType SourceType) (DataSource, error) {
	switch sourceType {
	case HKJCSourceType:
		return f.createHKJCSource()
	case CSVSourceType:
		return f.createCSVSource()
	default:
		return nil, fmt.Errorf("unknown data source type: %s", sourceType)
	}
}

// createHKJCSource creates the HKJC feed client from configuration
func (f *Factory) createHKJCSource() (DataSource, error) {
	dsCfg := f.config.DataSource
	if dsCfg.BaseURL == "" {
		return nil, fmt.Errorf("datasource base_url is required")
	}

	httpCfg := HTTPClientConfig{
		Timeout:           time.Duration(dsCfg.TimeoutSeconds) * time.Second,
		MaxRetries:        dsCfg.RetryAttempts,
		RetryWaitMin:      100 * time.Millisecond,
		RetryWaitMax:      10 * time.Second,
		RateLimit:         dsCfg.RateLimitPerSec,
		RateBurst:         dsCfg.RateLimitBurst,
		CircuitBreakerMax: 5,
	}
	httpClient := NewRateLimitedHTTPClient(httpCfg, f.logger)

	cacheTTL := time.Duration(dsCfg.CacheTTLSeconds) * time.Second
	client := NewHKJCClient(httpClient, dsCfg.BaseURL, dsCfg.APIKey, cacheTTL, true, f.logger)

	if f.logger != nil {
		f.logger.WithFields(logrus.Fields{
			"source":   hkjcSourceName,
			"base_url": dsCfg.BaseURL,
		}).Info("Created data source")
	}
	return client, nil
}

// createCSVSource creates a flat-file data source from configuration
func (f *Factory) createCSVSource() (DataSource, error) {
	if f.config.Export.OutputPath == "" {
		return nil, fmt.Errorf("csv source requires export output_path as its root directory")
	}
	return NewCSVSource(f.config.Export.OutputPath, true), nil
}

// ListAvailableSources returns a list of available source types
func (f *Factory) ListAvailableSources() []SourceType {
	return []SourceType{HKJCSourceType, CSVSourceType}
}
