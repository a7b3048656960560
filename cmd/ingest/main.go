// Package main provides a one-shot data ingestion run.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/config"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/database"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/datasource"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/logger"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/metrics"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/repository"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/service"
)

func main() {
	var (
		configPath string
		dateStr    string
		sourceName string
		timeoutMin int
	)

	flag.StringVar(&configPath, "config", "config/config.yaml", "path to configuration file")
	flag.StringVar(&dateStr, "date", time.Now().Format("2006-01-02"), "meeting date to ingest (YYYY-MM-DD)")
	flag.StringVar(&sourceName, "source", string(datasource.HKJCSourceType), "data source type (hkjc or csv)")
	flag.IntVar(&timeoutMin, "timeout", 30, "run timeout in minutes")
	flag.Parse()

	// Local development convenience; a missing .env file is fine
	_ = godotenv.Load()

	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

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

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		log.Fatalf("Invalid date %q: %v", dateStr, err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	metrics.InitRegistry()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutMin)*time.Minute)
	defer cancel()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	factory := datasource.NewFactory(cfg, appLog)
	source, err := factory.Create(datasource.SourceType(sourceName))
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create data source")
	}

	ingestionSvc := service.NewIngestionService(source, repos, appLog,
		cfg.Ingestion.BatchSize, cfg.Ingestion.HistoryDepth)

	run, err := ingestionSvc.IngestMeeting(ctx, date)
	if err != nil {
		appLog.WithError(err).Fatal("Ingestion failed")
	}

	appLog.WithField("summary", run.String()).Info("Ingestion complete")
	if run.Errors > 0 {
		os.Exit(1)
	}
}
