package ports

import (
	"context"

	"github.com/samirrijal/campusnav/internal/core/domain"
)

// EventPublisher publishes navigation events and commands to a message broker.
type EventPublisher interface {
	PublishSessionEvent(ctx context.Context, event *domain.SessionEvent) error
	PublishCommand(ctx context.Context, cmd *domain.SessionCommand) error
}

// CommandSubscriber delivers asynchronous session commands (location fixes, timer ticks).
type CommandSubscriber interface {
	SubscribeCommands(ctx context.Context, handler func(ctx context.Context, cmd *domain.SessionCommand) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
