package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/campusnav/internal/core/domain"
	"github.com/samirrijal/campusnav/internal/core/ports"
	"github.com/samirrijal/campusnav/internal/pkg/telemetry"
)

// LoadGraph reads campus data from src and builds the immutable graph.
// With bidirectional set, every link is mirrored before the graph is checked.
func LoadGraph(ctx context.Context, src ports.GraphSource, bidirectional bool) (*domain.Graph, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanLoadGraph)
	defer span.End()

	locations, adjacency, err := src.LoadCampus(ctx)
	if err != nil {
		return nil, fmt.Errorf("load campus: %w", err)
	}
	if bidirectional {
		adjacency = domain.Symmetrize(adjacency)
	}

	g, err := domain.NewGraph(locations, adjacency)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("campus.locations", g.Len()),
		attribute.Int("campus.links", g.EdgeCount()),
	)
	slog.InfoContext(ctx, "campus graph loaded", "locations", g.Len(), "links", g.EdgeCount())
	return g, nil
}

// LocationService answers read-only questions about the campus graph.
type LocationService struct {
	graph *domain.Graph
}

// NewLocationService creates a new LocationService.
func NewLocationService(graph *domain.Graph) *LocationService {
	return &LocationService{graph: graph}
}

// Graph returns the underlying campus graph.
func (s *LocationService) Graph() *domain.Graph {
	return s.graph
}

// List returns a page of locations ordered by ID, together with the total count.
func (s *LocationService) List(offset, limit int) ([]domain.Location, int) {
	all := s.graph.Locations()
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []domain.Location{}, len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all)
}

// GetByID returns a single location.
func (s *LocationService) GetByID(id string) (domain.Location, error) {
	return s.graph.Location(id)
}

// Neighbors returns the locations directly reachable from id.
func (s *LocationService) Neighbors(id string) ([]domain.Location, error) {
	ids, err := s.graph.Neighbors(id)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Location, 0, len(ids))
	for _, n := range ids {
		loc, _ := s.graph.Location(n)
		out = append(out, loc)
	}
	return out, nil
}
