package ports

import (
	"context"
	"time"

	"github.com/samirrijal/campusnav/internal/core/domain"
)

// GraphSource supplies the raw campus data the graph is built from.
// Adjacency is returned exactly as stored; reverse links are not added.
type GraphSource interface {
	LoadCampus(ctx context.Context) ([]domain.Location, map[string][]string, error)
}

// LocationRepository persists campus locations and the links between them.
type LocationRepository interface {
	GraphSource
	UpsertBatch(ctx context.Context, locations []domain.Location) error
	ReplaceLinks(ctx context.Context, adjacency map[string][]string) error
}

// SessionStore persists navigation sessions so they survive a restart
// and can be inspected by other processes.
type SessionStore interface {
	Save(ctx context.Context, rec *domain.SessionRecord, ttl time.Duration) error
	// Get returns domain.ErrSessionNotFound when no record exists for id.
	Get(ctx context.Context, id string) (*domain.SessionRecord, error)
	Delete(ctx context.Context, id string) error
}
