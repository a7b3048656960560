// Package main provides the race prediction CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/config"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/database"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/export"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/logger"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/metrics"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/models"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/repository"
	"github.com/wongwong123w-sys/hkjc-racing-analysis/internal/service"
)

// Build information - set via ldflags
var (
	Version = "dev"
)

var (
	configFile string
	dateStr    string
	raceNumber int
	exportDir  string
	secondary  bool

	appLog *logrus.Logger
	cfg    *config.Config
	db     *database.DB
	repos  *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&dateStr, "date", "d", time.Now().Format("2006-01-02"), "Meeting date (YYYY-MM-DD)")
	rootCmd.Flags().IntVarP(&raceNumber, "race", "r", 1, "Race number")
	rootCmd.Flags().StringVar(&exportDir, "export", "", "Directory to export CSV results to")
	rootCmd.Flags().BoolVar(&secondary, "secondary", false, "Also run the calculator profile")
}

var rootCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score a race field",
	Long:  `Runs style classification, pace diagnosis and fitness scoring over one race and prints the scorecards.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		appLog = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		metrics.InitRegistry()

		db, err = database.Initialize(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		repos, err = repository.NewRepositories(db)
		if err != nil {
			return fmt.Errorf("failed to initialize repositories: %w", err)
		}
		if cfg.Scoring.DrawStatCacheTTLSec > 0 {
			repos.DrawStatistics = repository.NewCachedDrawStatisticsRepository(
				repos.DrawStatistics, time.Duration(cfg.Scoring.DrawStatCacheTTLSec)*time.Second)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPrediction(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runPrediction(ctx context.Context) error {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", dateStr, err)
	}

	race, err := repos.Race.GetByKey(ctx, date, raceNumber)
	if err != nil {
		return fmt.Errorf("failed to load race %d on %s: %w", raceNumber, dateStr, err)
	}

	competitors, err := loadField(ctx, race)
	if err != nil {
		return err
	}

	stats, err := repos.DrawStatistics.GetByRaceKey(ctx, race.Key())
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("failed to load draw statistics: %w", err)
		}
		stats = nil // scoring falls back to personal draw history
	}

	svc := service.NewAnalysisService(appLog)
	analysis, err := svc.AnalyzeField(race, competitors, stats)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	printAnalysis(analysis)

	if secondary {
		results, err := svc.ScoreSecondary(race, competitors)
		if err != nil {
			return fmt.Errorf("calculator profile failed: %w", err)
		}
		printSecondary(results)
	}

	if cfg.Scoring.PersistBreakdowns {
		for _, breakdown := range analysis.Breakdowns {
			if err := repos.Analysis.SaveBreakdown(ctx, race.ID, breakdown); err != nil {
				appLog.WithError(err).Warn("Failed to persist scorecard")
			}
		}
	}

	if exportDir != "" {
		exporter := export.NewExporter(exportDir, appLog)
		if err := exporter.ExportFieldAnalysis(analysis); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
	}

	return nil
}

// loadField loads the declared runners and attaches their histories
func loadField(ctx context.Context, race *models.Race) ([]*models.Competitor, error) {
	competitors, err := repos.Competitor.GetByRaceID(ctx, race.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load competitors: %w", err)
	}
	if len(competitors) == 0 {
		return nil, fmt.Errorf("no competitors stored for race %d on %s", race.RaceNumber, race.Date.Format("2006-01-02"))
	}

	for _, c := range competitors {
		history, err := repos.Competitor.GetHistory(ctx, c.ID, cfg.Ingestion.HistoryDepth)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("failed to load history for %s: %w", c.Name, err)
		}
		c.History = history
	}

	return competitors, nil
}

func printAnalysis(analysis *models.FieldAnalysis) {
	race := analysis.Race
	fmt.Printf("\n%s R%d  %s  %dm  %s\n", race.Date.Format("2006-01-02"), race.RaceNumber, race.Venue, race.Distance, race.Going)
	fmt.Printf("Projected pace: %s (confidence %.1f, %s)\n\n", analysis.Pace.Pace, analysis.Pace.Confidence, analysis.Pace.Recommendation)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NO\tSTYLE\tTOTAL\tGRADE\tPATTERN\tTAGS\tNOTES")

	for _, number := range sortedKeys(analysis.Breakdowns) {
		b := analysis.Breakdowns[number]
		style := ""
		if s, ok := analysis.Styles[number]; ok {
			style = string(s.Style)
		}
		notes := ""
		if b.Neutral {
			notes = "neutral"
		}
		fmt.Fprintf(w, "%d\t%s\t%.3f\t%s\t%s\t%s\t%s\n",
			number, style, b.Total, b.Grade, b.Pattern, joinTags(b.Tags), notes)
	}
	w.Flush()
}

func printSecondary(results map[int]*models.FitnessBreakdown) {
	fmt.Println("\nCalculator profile:")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NO\tTOTAL\tGRADE")
	for _, number := range sortedKeys(results) {
		b := results[number]
		fmt.Fprintf(w, "%d\t%.3f\t%s\n", number, b.Total, b.Grade)
	}
	w.Flush()
}

func sortedKeys(m map[int]*models.FitnessBreakdown) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	out := tags[0]
	for _, t := range tags[1:] {
		out += "," + t
	}
	return out
}
