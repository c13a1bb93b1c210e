package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/campusnav/internal/core/domain"
	"github.com/samirrijal/campusnav/internal/core/ports"
	"github.com/samirrijal/campusnav/internal/core/routing"
	"github.com/samirrijal/campusnav/internal/pkg/metrics"
	"github.com/samirrijal/campusnav/internal/pkg/telemetry"
)

// RouteService plans walking routes across the campus.
type RouteService struct {
	graph    *domain.Graph
	cache    ports.CacheService
	cacheTTL int
	cacheTag string
}

// NewRouteService creates a new RouteService. A nil cache or a zero TTL disables caching.
func NewRouteService(graph *domain.Graph, cache ports.CacheService, cacheTTLSeconds int) *RouteService {
	return &RouteService{
		graph:    graph,
		cache:    cache,
		cacheTTL: cacheTTLSeconds,
		// Routes cached against another version of the campus must not be served.
		cacheTag: graph.Fingerprint(),
	}
}

// Plan computes the shortest route between two location IDs and returns it as a handoff snapshot.
// IDs must already be normalized.
func (s *RouteService) Plan(ctx context.Context, from, to string) (*domain.RouteSnapshot, error) {
	if from == "" || to == "" {
		return nil, fmt.Errorf("%w: from and to are required", domain.ErrUnknownLocation)
	}

	cacheKey := fmt.Sprintf("routes:%s:%s:%s", s.cacheTag, from, to)
	if s.cachingEnabled() {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var snap domain.RouteSnapshot
			if err := json.Unmarshal(data, &snap); err == nil {
				metrics.CacheHits.WithLabelValues("route").Inc()
				return &snap, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("route").Inc()
	}

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanPlanRoute)
	defer span.End()
	span.SetAttributes(
		attribute.String(telemetry.AttrFrom, from),
		attribute.String(telemetry.AttrTo, to),
	)

	start := time.Now()
	plan, err := routing.PlanRoute(s.graph, from, to)
	metrics.PathfinderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RoutesPlanned.WithLabelValues(outcome(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	metrics.RoutesPlanned.WithLabelValues("ok").Inc()
	metrics.PathfinderExpanded.Observe(float64(plan.Expanded))
	span.SetAttributes(attribute.Int(telemetry.AttrExpanded, plan.Expanded))

	snap := &domain.RouteSnapshot{
		Source:      from,
		Destination: to,
		Path:        plan.Route,
		Distance:    plan.Cost,
	}

	if s.cachingEnabled() {
		if data, err := json.Marshal(snap); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}

	return snap, nil
}

func (s *RouteService) cachingEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoPath):
		return "no_path"
	case errors.Is(err, domain.ErrUnknownLocation):
		return "unknown_location"
	default:
		return "error"
	}
}
