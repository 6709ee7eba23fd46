package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/student-insight/backend/internal/analytics"
	"github.com/student-insight/backend/internal/cache/redis"
	"github.com/student-insight/backend/internal/metrics"
	"github.com/student-insight/backend/internal/storage/models"
	"github.com/student-insight/backend/internal/storage/sqlite"
	"github.com/student-insight/backend/pkg/circuitbreaker"
	"github.com/student-insight/backend/pkg/logger"
	"github.com/student-insight/backend/pkg/utils"
)

// Service computes analytics reports on demand. Reports are cached by a hash
// of the history plus the engine configuration, so a cache entry can never
// serve stale analysis; the cache sits behind a circuit breaker and an outage
// degrades to recomputing.
type Service struct {
	db       *sqlite.Client
	cache    *redis.Client
	breaker  *circuitbreaker.CircuitBreaker
	engine   *analytics.Engine
	cacheTTL time.Duration
}

type cachePayload struct {
	History models.StudentHistory `json:"history"`
	Config  analytics.Config      `json:"config"`
}

// NewService validates the engine configuration up front; a nil cache client
// disables caching entirely.
func NewService(db *sqlite.Client, cache *redis.Client, cfg analytics.Config, cacheTTL time.Duration) (*Service, error) {
	engine, err := analytics.NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	s := &Service{
		db:       db,
		cache:    cache,
		engine:   engine,
		cacheTTL: cacheTTL,
	}

	if cache != nil {
		s.breaker = circuitbreaker.NewCircuitBreaker("report-cache", circuitbreaker.Config{
			Timeout:          30 * time.Second,
			FailureThreshold: 3,
			SuccessThreshold: 1,
			Logger:           logger.Log,
		})
	}

	return s, nil
}

func (s *Service) Analyze(ctx context.Context, userID string) (*analytics.Report, error) {
	start := time.Now()

	history, err := s.db.GetStudentHistory(userID)
	if err != nil {
		metrics.AnalysisTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	hash, err := utils.HashContent(cachePayload{History: history, Config: s.engine.Config()})
	if err != nil {
		metrics.AnalysisTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to hash history: %w", err)
	}

	if report, ok := s.cachedReport(ctx, userID, hash); ok {
		latency := time.Since(start)
		metrics.CacheHits.WithLabelValues("report").Inc()
		metrics.AnalysisTotal.WithLabelValues("ok").Inc()
		metrics.AnalysisDuration.WithLabelValues("cached").Observe(latency.Seconds())
		s.recordRun(userID, hash, true, latency)
		return report, nil
	}
	metrics.CacheMisses.WithLabelValues("report").Inc()

	report := s.engine.Analyze(history)
	report.GeneratedAt = time.Now()

	s.storeReport(ctx, userID, hash, &report)
	observeSections(&report)

	latency := time.Since(start)
	metrics.AnalysisTotal.WithLabelValues("ok").Inc()
	metrics.AnalysisDuration.WithLabelValues("computed").Observe(latency.Seconds())
	s.recordRun(userID, hash, false, latency)

	logger.Info("Analysis completed",
		zap.String("user_id", userID),
		zap.String("content_hash", hash),
		zap.Int("semesters", len(history.Semesters)),
		zap.Int64("latency_ms", latency.Milliseconds()),
	)

	return &report, nil
}

// InvalidateReports drops the user's cached reports after a record mutation.
func (s *Service) InvalidateReports(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}

	err := s.breaker.Execute(ctx, func() error {
		return s.cache.InvalidateReports(ctx, userID)
	})
	if err != nil {
		logger.Warn("Report cache invalidation failed", zap.Error(err))
	}
}

func (s *Service) cachedReport(ctx context.Context, userID, hash string) (*analytics.Report, bool) {
	if s.cache == nil {
		return nil, false
	}

	var report analytics.Report
	found := false

	err := s.breaker.Execute(ctx, func() error {
		var err error
		found, err = s.cache.GetReport(ctx, userID, hash, &report)
		return err
	})
	if err != nil {
		logger.Warn("Report cache read failed", zap.Error(err))
		return nil, false
	}

	if !found {
		return nil, false
	}

	return &report, true
}

func (s *Service) storeReport(ctx context.Context, userID, hash string, report *analytics.Report) {
	if s.cache == nil {
		return
	}

	err := s.breaker.Execute(ctx, func() error {
		return s.cache.SetReport(ctx, userID, hash, report, s.cacheTTL)
	})
	if err != nil {
		logger.Warn("Report cache write failed", zap.Error(err))
	}
}

func (s *Service) recordRun(userID, hash string, cached bool, latency time.Duration) {
	run := &models.AnalysisRun{
		ID:          uuid.New().String(),
		UserID:      userID,
		ContentHash: hash,
		Cached:      cached,
		LatencyMS:   latency.Milliseconds(),
		CreatedAt:   time.Now(),
	}

	if err := s.db.SaveAnalysisRun(run); err != nil {
		logger.Warn("Failed to record analysis run", zap.Error(err))
	}
}

func observeSections(report *analytics.Report) {
	sections := []struct {
		name      string
		available bool
		reason    string
	}{
		{"metrics", report.Metrics.Available, report.Metrics.Reason},
		{"trend", report.Trend.Available, report.Trend.Reason},
		{"subject_classification", report.Classification.Available, report.Classification.Reason},
		{"correlation", report.Correlation.Available, report.Correlation.Reason},
		{"clusters", report.Clusters.Available, report.Clusters.Reason},
		{"projection", report.Projection.Available, report.Projection.Reason},
		{"prediction", report.Prediction.Available, report.Prediction.Reason},
		{"statistics", report.Statistics.Available, report.Statistics.Reason},
		{"patterns", report.Patterns.Available, report.Patterns.Reason},
	}

	for _, section := range sections {
		if !section.available {
			metrics.SectionUnavailable.WithLabelValues(section.name, section.reason).Inc()
		}
	}

	if report.Prediction.Available {
		metrics.PredictionConfidence.Observe(report.Prediction.RSquared)
	}
}
