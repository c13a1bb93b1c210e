package valkey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samirrijal/campusnav/internal/core/domain"
)

const sessionKeyPrefix = "nav:session:"

// SessionStore implements ports.SessionStore on top of a Cache connection.
// Records are stored as JSON under nav:session:<id> and expire after the given TTL.
type SessionStore struct {
	cache *Cache
}

// NewSessionStore creates a SessionStore sharing the cache's client.
func NewSessionStore(cache *Cache) *SessionStore {
	return &SessionStore{cache: cache}
}

// Save writes the record, refreshing its TTL.
func (s *SessionStore) Save(ctx context.Context, rec *domain.SessionRecord, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", rec.ID, err)
	}
	if err := s.cache.setTTL(ctx, sessionKeyPrefix+rec.ID, data, ttl); err != nil {
		return fmt.Errorf("save session %s: %w", rec.ID, err)
	}
	return nil
}

// Get reads a record, returning domain.ErrSessionNotFound when it is absent or expired.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.SessionRecord, error) {
	data, err := s.cache.Get(ctx, sessionKeyPrefix+id)
	if errors.Is(err, ErrMiss) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	var rec domain.SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &rec, nil
}

// Delete removes a record.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+id)
}
