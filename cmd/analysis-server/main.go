// Package main provides the entry point for the racing analysis service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/config"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/database"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/datasource"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/health"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/logger"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/metrics"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/repository"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/scheduler"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithDefaults("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("HKJC racing analysis service starting")

	metrics.InitRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()
	appLog.Info("Database connection established")

	// Initialize repositories
	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}
	if cfg.Scoring.DrawStatCacheTTLSec > 0 {
		repos.DrawStatistics = repository.NewCachedDrawStatisticsRepository(
			repos.DrawStatistics, time.Duration(cfg.Scoring.DrawStatCacheTTLSec)*time.Second)
	}

	// Initialize data source
	factory := datasource.NewFactory(cfg, appLog)
	source, err := factory.Create(datasource.HKJCSourceType)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create data source")
	}

	// Initialize ingestion and scheduling
	ingestionSvc := service.NewIngestionService(source, repos, appLog,
		cfg.Ingestion.BatchSize, cfg.Ingestion.HistoryDepth)

	sched := scheduler.NewScheduler(ingestionSvc, appLog)
	if err := sched.ScheduleMeetingIngestion(cfg.Ingestion.Schedule); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule meeting ingestion")
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			appLog.WithError(err).Error("Failed to stop scheduler")
		}
	}()

	// Health and metrics endpoints
	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        portString(cfg.Health.Port),
		Logger:      appLog,
		DB:          db,
	}
	if cfg.Metrics.Enabled {
		healthCfg.MetricsHandler = metrics.Handler()
		healthCfg.MetricsPath = cfg.Metrics.Path
	}
	healthServer := health.NewServer(healthCfg)
	if reporter, ok := source.(datasource.HealthReporter); ok {
		healthServer.RegisterCheck("datasource", func(context.Context) error {
			return reporter.Healthy()
		})
	}
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}
	healthServer.SetReady(true)

	appLog.WithField("next_run", sched.GetNextRun()).Info("Service ready")

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	received := <-sig

	appLog.WithField("signal", received.String()).Info("Shutting down")
	healthServer.SetReady(false)
	cancel()
}

func portString(port int) string {
	if port == 0 {
		return ""
	}
	return strconv.Itoa(port)
}
