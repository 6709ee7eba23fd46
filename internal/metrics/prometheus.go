package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "student_insight_analysis_duration_seconds",
			Help:    "Analysis request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"source"},
	)

	AnalysisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "student_insight_analysis_total",
			Help: "Total number of analysis requests",
		},
		[]string{"status"},
	)

	SectionUnavailable = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "student_insight_section_unavailable_total",
			Help: "Report sections skipped for insufficient data",
		},
		[]string{"section", "reason"},
	)

	PredictionConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "student_insight_prediction_confidence",
			Help:    "R squared of SGPA forecasts",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "student_insight_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "student_insight_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	SemestersUploaded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "student_insight_semesters_uploaded_total",
			Help: "Total semester records stored",
		},
		[]string{"source"},
	)

	SubjectsIngested = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "student_insight_subjects_ingested_total",
			Help: "Total subject rows parsed from uploads",
		},
	)

	ReportsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "student_insight_reports_generated_total",
			Help: "Total report documents generated",
		},
		[]string{"type", "format"},
	)

	LoginTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "student_insight_login_total",
			Help: "Total login attempts",
		},
		[]string{"status"},
	)
)

func Init() {
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(AnalysisTotal)
	prometheus.MustRegister(SectionUnavailable)
	prometheus.MustRegister(PredictionConfidence)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(SemestersUploaded)
	prometheus.MustRegister(SubjectsIngested)
	prometheus.MustRegister(ReportsGenerated)
	prometheus.MustRegister(LoginTotal)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
