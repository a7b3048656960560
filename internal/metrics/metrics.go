// Package metrics provides the centralized Prometheus metrics registry for the analysis engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	FieldsAnalyzedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hkjc_analysis",
		Name:      "fields_analyzed_total",
		Help:      "Total number of race fields analyzed",
	})
	ScoringFaultsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hkjc_analysis",
		Name:      "scoring_faults_total",
		Help:      "Total number of per-competitor scoring faults replaced by neutral scorecards",
	})
	HistoryRowsSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hkjc_analysis",
		Name:      "history_rows_skipped_total",
		Help:      "Total number of scraped history rows dropped during normalization",
	})
	RaceMismatchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hkjc_analysis",
		Name:      "race_mismatches_total",
		Help:      "Total number of draw statistics rejected for carrying the wrong race key",
	})
)

// Gauge metrics
var (
	LastIngestedRaces = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hkjc_analysis",
		Name:      "last_ingested_races",
		Help:      "Number of races stored by the most recent ingestion run",
	})
	LastIngestedRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hkjc_analysis",
		Name:      "last_ingested_records",
		Help:      "Number of past-performance records stored by the most recent ingestion run",
	})
)

// Histogram metrics
var (
	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hkjc_analysis",
		Name:      "field_analysis_duration_seconds",
		Help:      "Duration of full field analysis in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	FitnessTotalScore = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hkjc_analysis",
		Name:      "fitness_total_score",
		Help:      "Fitness total scores by grade",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	}, []string{"grade"})
	PaceConfidence = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hkjc_analysis",
		Name:      "pace_confidence",
		Help:      "Fused pace diagnosis confidence by pace category",
		Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	}, []string{"pace"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(FieldsAnalyzedTotal)
		registry.MustRegister(ScoringFaultsTotal)
		registry.MustRegister(HistoryRowsSkippedTotal)
		registry.MustRegister(RaceMismatchesTotal)

		// Register gauge metrics
		registry.MustRegister(LastIngestedRaces)
		registry.MustRegister(LastIngestedRecords)

		// Register histogram metrics
		registry.MustRegister(AnalysisDuration)
		registry.MustRegister(FitnessTotalScore)
		registry.MustRegister(PaceConfidence)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordFieldAnalyzed records a completed field analysis.
func RecordFieldAnalyzed(durationSeconds float64) {
	FieldsAnalyzedTotal.Inc()
	AnalysisDuration.Observe(durationSeconds)
}

// RecordScoringFault records a per-competitor scoring fault.
func RecordScoringFault() {
	ScoringFaultsTotal.Inc()
}

// RecordSkippedHistoryRow records a history row dropped during normalization.
func RecordSkippedHistoryRow() {
	HistoryRowsSkippedTotal.Inc()
}

// RecordRaceMismatch records a rejected draw statistic.
func RecordRaceMismatch() {
	RaceMismatchesTotal.Inc()
}

// RecordFitnessScore records a fitness scorecard.
func RecordFitnessScore(grade string, total float64) {
	FitnessTotalScore.WithLabelValues(grade).Observe(total)
}

// RecordPaceDiagnosis records a fused pace diagnosis.
func RecordPaceDiagnosis(pace string, confidence float64) {
	PaceConfidence.WithLabelValues(pace).Observe(confidence)
}

// UpdateIngestionTotals updates the gauges for the latest ingestion run.
func UpdateIngestionTotals(races, records float64) {
	LastIngestedRaces.Set(races)
	LastIngestedRecords.Set(records)
}
