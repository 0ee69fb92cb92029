package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/seismeta/internal/core/bingrid"
	"github.com/samirrijal/seismeta/internal/core/domain"
	"github.com/samirrijal/seismeta/internal/core/ports"
	"github.com/samirrijal/seismeta/internal/pkg/metrics"
)

const defaultBinGridCacheTTL = 600 // seconds

var tracer = otel.Tracer("github.com/samirrijal/seismeta/internal/core/usecases")

// BinGridCacheKey is the cache key holding the derived grid of a survey.
func BinGridCacheKey(sdpath string) string {
	return "bingrid:" + sdpath
}

// BinGridService derives bin grids for posted geometry and registered surveys.
type BinGridService struct {
	surveys   ports.SurveyRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
	ttl       int
	now       func() time.Time
}

// NewBinGridService creates a new BinGridService. cache and publisher may be nil.
func NewBinGridService(surveys ports.SurveyRepository, cache ports.CacheService, publisher ports.EventPublisher) *BinGridService {
	return &BinGridService{surveys: surveys, cache: cache, publisher: publisher, ttl: defaultBinGridCacheTTL, now: time.Now}
}

// WithCacheTTL overrides how long derived grids stay cached.
func (s *BinGridService) WithCacheTTL(seconds int) *BinGridService {
	if seconds > 0 {
		s.ttl = seconds
	}
	return s
}

// Derive validates the geometry and computes its bin grid.
func (s *BinGridService) Derive(ctx context.Context, g domain.VolumeGeometry) (domain.BinGrid, error) {
	start := time.Now()
	_, span := tracer.Start(ctx, "bingrid.Derive")
	defer span.End()

	grid, err := derive(g)
	metrics.BinGridDerivations.WithLabelValues("request", outcome(err)).Inc()
	metrics.BinGridDeriveDuration.WithLabelValues("request").Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return grid, nil
}

// DeriveForSurvey returns the bin grid of a registered survey, served from
// cache when available.
func (s *BinGridService) DeriveForSurvey(ctx context.Context, sdpath string) (domain.BinGrid, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, BinGridCacheKey(sdpath)); err == nil {
			var grid domain.BinGrid
			if err := json.Unmarshal(data, &grid); err == nil {
				metrics.CacheHits.WithLabelValues("bingrid").Inc()
				return grid, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("bingrid").Inc()
	}
	return s.Refresh(ctx, sdpath)
}

// Refresh recomputes a survey's bin grid, stores it in the cache and
// announces it to subscribers.
func (s *BinGridService) Refresh(ctx context.Context, sdpath string) (domain.BinGrid, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "bingrid.Refresh", trace.WithAttributes(attribute.String("sdpath", sdpath)))
	defer span.End()

	survey, err := s.surveys.GetBySDPath(ctx, sdpath)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load survey %s: %w", sdpath, err)
	}

	grid, err := derive(survey.Geometry)
	metrics.BinGridDerivations.WithLabelValues("survey", outcome(err)).Inc()
	metrics.BinGridDeriveDuration.WithLabelValues("survey").Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("survey %s: %w", sdpath, err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(grid); err == nil {
			_ = s.cache.Set(ctx, BinGridCacheKey(sdpath), data, s.ttl)
		}
	}

	if s.publisher != nil {
		event := &domain.BinGridEvent{
			SurveyID:  survey.ID,
			SDPath:    survey.SDPath,
			BinGrid:   grid,
			DerivedAt: s.now().UTC(),
		}
		if err := s.publisher.PublishBinGridDerived(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish bin grid event failed", "sdpath", sdpath, "error", err)
		}
	}

	return grid, nil
}

func derive(g domain.VolumeGeometry) (domain.BinGrid, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return bingrid.FromGeometry(g).DeriveAll()
}

// outcome labels an error for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrAxisCountTooSmall):
		return "axis_count_too_small"
	case errors.Is(err, domain.ErrDegenerateGeometry):
		return "degenerate_geometry"
	default:
		return "error"
	}
}
