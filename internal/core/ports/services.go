package ports

import (
	"context"

	"github.com/samirrijal/seismeta/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishSurveyRegistered(ctx context.Context, survey *domain.Survey) error
	PublishBinGridDerived(ctx context.Context, event *domain.BinGridEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeSurveyRegistered(ctx context.Context, handler func(ctx context.Context, survey *domain.Survey) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
