package ports

import (
	"context"

	"github.com/samirrijal/seismeta/internal/core/domain"
)

// SurveyRepository persists registered surveys and their geometry.
type SurveyRepository interface {
	Upsert(ctx context.Context, survey *domain.Survey) error
	UpsertBatch(ctx context.Context, surveys []domain.Survey) error
	GetBySDPath(ctx context.Context, sdpath string) (*domain.Survey, error)
	List(ctx context.Context) ([]domain.Survey, error)
}
