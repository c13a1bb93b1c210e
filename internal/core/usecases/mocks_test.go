package usecases_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/samirrijal/campusnav/internal/core/domain"
)

// campusGraph is a small campus:
//
//	LIBRARY
//	   |
//	ENTRY - R0 - R3 - ADMIN_BLOCK       ISLAND
func campusGraph(t *testing.T) *domain.Graph {
	t.Helper()
	g, err := domain.NewGraph(
		[]domain.Location{
			{ID: "ENTRY", Name: "Main gate", X: 0, Z: 0},
			{ID: "R0", X: 2, Z: 0},
			{ID: "R3", X: 4, Z: 0},
			{ID: "ADMIN_BLOCK", Name: "Administration", X: 6, Z: 0},
			{ID: "LIBRARY", Name: "Library", X: 2, Z: 3},
			{ID: "ISLAND", X: 50, Z: 50},
		},
		domain.Symmetrize(map[string][]string{
			"ENTRY": {"R0"},
			"R0":    {"R3", "LIBRARY"},
			"R3":    {"ADMIN_BLOCK"},
		}),
	)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return g
}

// --- Mock CacheService ---

var errCacheMiss = errors.New("cache miss")

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return b, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock SessionStore ---

type mockStore struct {
	mu      sync.Mutex
	records map[string]domain.SessionRecord
	saveFn  func(ctx context.Context, rec *domain.SessionRecord, ttl time.Duration) error
}

func newMockStore() *mockStore { return &mockStore{records: map[string]domain.SessionRecord{}} }

func (m *mockStore) Save(ctx context.Context, rec *domain.SessionRecord, ttl time.Duration) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, rec, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = *rec
	return nil
}

func (m *mockStore) Get(ctx context.Context, id string) (*domain.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &rec, nil
}

func (m *mockStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

func (m *mockStore) record(id string) (domain.SessionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	return rec, ok
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu       sync.Mutex
	events   []domain.SessionEvent
	commands []domain.SessionCommand
}

func (m *mockPublisher) PublishSessionEvent(ctx context.Context, event *domain.SessionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *event)
	return nil
}

func (m *mockPublisher) PublishCommand(ctx context.Context, cmd *domain.SessionCommand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, *cmd)
	return nil
}

func (m *mockPublisher) types() []domain.SessionEventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SessionEventType, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}

// --- Mock GraphSource ---

type mockSource struct {
	loadFn func(ctx context.Context) ([]domain.Location, map[string][]string, error)
}

func (m *mockSource) LoadCampus(ctx context.Context) ([]domain.Location, map[string][]string, error) {
	return m.loadFn(ctx)
}
