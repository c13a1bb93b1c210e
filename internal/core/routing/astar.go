// Package routing finds shortest walking routes over the campus graph.
//
// The search is A* with Euclidean edge costs and a Euclidean heuristic. Because the graph is
// embedded in a metric plane the heuristic is admissible and consistent, so the first time the
// goal is popped from the frontier its cost is optimal. The frontier is a binary heap keyed by
// f = g + h with lazy decrease-key: improved nodes are pushed again and stale entries are
// skipped when popped. Ties on f are broken by heap order; among equal-cost routes any one
// may be returned.
package routing

import (
	"container/heap"
	"fmt"
	"math"
	"slices"

	"github.com/samirrijal/campusnav/internal/core/domain"
	"github.com/samirrijal/campusnav/internal/pkg/geospatial"
)

// Plan is a route together with search statistics.
type Plan struct {
	Route    domain.Route
	Cost     float64 // metres
	Expanded int     // nodes popped from the frontier
}

type frontierItem struct {
	id    string
	g     float64 // cost-so-far when pushed
	f     float64 // g + heuristic
	index int
}

// frontier implements heap.Interface as a min-heap on f.
type frontier []*frontierItem

func (pq frontier) Len() int { return len(pq) }

func (pq frontier) Less(i, j int) bool { return pq[i].f < pq[j].f }

func (pq frontier) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *frontier) Push(x any) {
	item := x.(*frontierItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *frontier) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// FindPath returns a cost-optimal route from start to goal.
//
// It fails with domain.ErrUnknownLocation if either end is not in the graph and with
// domain.ErrNoPath if goal is unreachable from start.
func FindPath(g *domain.Graph, start, goal string) (domain.Route, error) {
	p, err := PlanRoute(g, start, goal)
	if err != nil {
		return nil, err
	}
	return p.Route, nil
}

// PlanRoute is FindPath plus the route cost and the number of expanded nodes.
func PlanRoute(g *domain.Graph, start, goal string) (Plan, error) {
	startPt, err := g.Coordinates(start)
	if err != nil {
		return Plan{}, err
	}
	goalPt, err := g.Coordinates(goal)
	if err != nil {
		return Plan{}, err
	}

	if start == goal {
		return Plan{Route: domain.Route{start}}, nil
	}

	h := func(p domain.Point) float64 {
		return geospatial.Euclidean(p.X, p.Z, goalPt.X, goalPt.Z)
	}

	// Missing entries in gScore read as +Inf.
	gScore := map[string]float64{start: 0}
	cameFrom := make(map[string]string)
	closed := make(map[string]bool)
	cost := func(id string) float64 {
		if v, ok := gScore[id]; ok {
			return v
		}
		return math.Inf(1)
	}

	pq := make(frontier, 0, g.Len())
	heap.Push(&pq, &frontierItem{id: start, g: 0, f: h(startPt)})

	expanded := 0
	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*frontierItem)
		if closed[item.id] || item.g > cost(item.id) {
			continue // stale entry
		}
		closed[item.id] = true
		expanded++

		if item.id == goal {
			route := reconstruct(cameFrom, start, goal)
			return Plan{Route: route, Cost: gScore[goal], Expanded: expanded}, nil
		}

		cur, err := g.Coordinates(item.id)
		if err != nil {
			return Plan{}, err
		}
		neighbors, err := g.Neighbors(item.id)
		if err != nil {
			return Plan{}, err
		}

		for _, next := range neighbors {
			np, err := g.Coordinates(next)
			if err != nil {
				return Plan{}, err
			}
			tentative := gScore[item.id] + geospatial.Euclidean(cur.X, cur.Z, np.X, np.Z)
			if tentative < cost(next) {
				cameFrom[next] = item.id
				gScore[next] = tentative
				// A consistent heuristic never reopens closed nodes, but directed
				// data with odd coordinates is tolerated by reopening.
				delete(closed, next)
				heap.Push(&pq, &frontierItem{id: next, g: tentative, f: tentative + h(np)})
			}
		}
	}

	return Plan{}, fmt.Errorf("%w: %s to %s", domain.ErrNoPath, start, goal)
}

func reconstruct(cameFrom map[string]string, start, goal string) domain.Route {
	route := domain.Route{goal}
	for at := goal; at != start; {
		at = cameFrom[at]
		route = append(route, at)
	}
	slices.Reverse(route)
	return route
}

// Cost sums the Euclidean lengths of consecutive route legs.
// It fails with domain.ErrUnknownLocation for identifiers outside the graph.
func Cost(g *domain.Graph, route domain.Route) (float64, error) {
	total := 0.0
	for i := 1; i < len(route); i++ {
		a, err := g.Coordinates(route[i-1])
		if err != nil {
			return 0, err
		}
		b, err := g.Coordinates(route[i])
		if err != nil {
			return 0, err
		}
		total += geospatial.Euclidean(a.X, a.Z, b.X, b.Z)
	}
	return total, nil
}
