package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/seismeta/internal/core/domain"
	"github.com/samirrijal/seismeta/internal/core/ports"
	"github.com/samirrijal/seismeta/internal/pkg/metrics"
)

// SurveyService handles survey registration and lookup.
type SurveyService struct {
	surveys   ports.SurveyRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
}

// NewSurveyService creates a new SurveyService. cache and publisher may be nil.
func NewSurveyService(surveys ports.SurveyRepository, cache ports.CacheService, publisher ports.EventPublisher) *SurveyService {
	return &SurveyService{surveys: surveys, cache: cache, publisher: publisher}
}

// Register validates and stores a survey, dropping any cached bin grid for it.
func (s *SurveyService) Register(ctx context.Context, survey *domain.Survey) error {
	if err := survey.Validate(); err != nil {
		metrics.SurveysRegistered.WithLabelValues("invalid").Inc()
		return err
	}
	if err := s.surveys.Upsert(ctx, survey); err != nil {
		metrics.SurveysRegistered.WithLabelValues("error").Inc()
		return fmt.Errorf("upsert survey: %w", err)
	}
	metrics.SurveysRegistered.WithLabelValues("ok").Inc()

	s.registered(ctx, survey)
	return nil
}

// RegisterBatch stores every valid survey in one round trip. Invalid surveys
// are skipped and reported in the returned map, keyed by sdpath.
func (s *SurveyService) RegisterBatch(ctx context.Context, surveys []domain.Survey) (map[string]error, error) {
	rejected := make(map[string]error)
	valid := make([]domain.Survey, 0, len(surveys))
	for _, sv := range surveys {
		if err := sv.Validate(); err != nil {
			rejected[sv.SDPath] = err
			metrics.SurveysRegistered.WithLabelValues("invalid").Inc()
			continue
		}
		valid = append(valid, sv)
	}

	if len(valid) == 0 {
		return rejected, nil
	}
	if err := s.surveys.UpsertBatch(ctx, valid); err != nil {
		metrics.SurveysRegistered.WithLabelValues("error").Add(float64(len(valid)))
		return rejected, fmt.Errorf("upsert surveys: %w", err)
	}
	metrics.SurveysRegistered.WithLabelValues("ok").Add(float64(len(valid)))

	for i := range valid {
		s.registered(ctx, &valid[i])
	}
	return rejected, nil
}

// GetBySDPath returns a survey by its storage path.
func (s *SurveyService) GetBySDPath(ctx context.Context, sdpath string) (*domain.Survey, error) {
	if sdpath == "" {
		return nil, fmt.Errorf("%w: sdpath must not be empty", domain.ErrInvalidSurvey)
	}
	return s.surveys.GetBySDPath(ctx, sdpath)
}

// List returns all registered surveys.
func (s *SurveyService) List(ctx context.Context) ([]domain.Survey, error) {
	return s.surveys.List(ctx)
}

func (s *SurveyService) registered(ctx context.Context, survey *domain.Survey) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, BinGridCacheKey(survey.SDPath))
	}
	if s.publisher != nil {
		if err := s.publisher.PublishSurveyRegistered(ctx, survey); err != nil {
			slog.WarnContext(ctx, "publish survey event failed", "sdpath", survey.SDPath, "error", err)
		}
	}
}
