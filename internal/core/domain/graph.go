package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Graph is the static campus map: locations with coordinates plus a directed adjacency relation.
// It is built once and never mutated, so it can be shared across sessions without locking.
type Graph struct {
	locations map[string]Location
	adj       map[string][]string
	edges     int
	digest    string
}

// NewGraph validates the campus data and builds a Graph.
// Every neighbour must also be a location; otherwise ErrGraphIntegrity is returned.
// Locations with no adjacency entry are dead ends.
func NewGraph(locations []Location, adjacency map[string][]string) (*Graph, error) {
	g := &Graph{
		locations: make(map[string]Location, len(locations)),
		adj:       make(map[string][]string, len(locations)),
	}

	for _, loc := range locations {
		if loc.ID == "" {
			return nil, fmt.Errorf("%w: location with empty id", ErrGraphIntegrity)
		}
		if _, dup := g.locations[loc.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate location %q", ErrGraphIntegrity, loc.ID)
		}
		g.locations[loc.ID] = loc
	}

	for from, neighbors := range adjacency {
		if _, ok := g.locations[from]; !ok {
			return nil, fmt.Errorf("%w: adjacency for %q which has no coordinates", ErrGraphIntegrity, from)
		}
		seen := make(map[string]bool, len(neighbors))
		list := make([]string, 0, len(neighbors))
		for _, to := range neighbors {
			if _, ok := g.locations[to]; !ok {
				return nil, fmt.Errorf("%w: %q lists neighbour %q which has no coordinates", ErrGraphIntegrity, from, to)
			}
			if seen[to] {
				continue
			}
			seen[to] = true
			list = append(list, to)
		}
		g.adj[from] = list
		g.edges += len(list)
	}

	g.digest = g.fingerprint()
	return g, nil
}

// Fingerprint identifies the graph's content: every location's ID and position plus every link.
// Two graphs with the same fingerprint plan the same routes.
func (g *Graph) Fingerprint() string { return g.digest }

func (g *Graph) fingerprint() string {
	h := sha256.New()
	for _, loc := range g.Locations() {
		fmt.Fprintf(h, "L %s %g %g\n", loc.ID, loc.X, loc.Z)
		// Neighbour order steers tie-breaking in the search, so it is hashed as stored.
		for _, n := range g.adj[loc.ID] {
			fmt.Fprintf(h, "E %s %s\n", loc.ID, n)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Has reports whether id is a location of the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.locations[id]
	return ok
}

// Location returns the full location record.
func (g *Graph) Location(id string) (Location, error) {
	loc, ok := g.locations[id]
	if !ok {
		return Location{}, fmt.Errorf("%w: %s", ErrUnknownLocation, id)
	}
	return loc, nil
}

// Coordinates returns the ground-plane position of id.
func (g *Graph) Coordinates(id string) (Point, error) {
	loc, err := g.Location(id)
	if err != nil {
		return Point{}, err
	}
	return loc.Point(), nil
}

// Neighbors returns the locations directly reachable from id.
// A dead end yields an empty slice, not an error. The returned slice must not be modified.
func (g *Graph) Neighbors(id string) ([]string, error) {
	if !g.Has(id) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLocation, id)
	}
	if n := g.adj[id]; n != nil {
		return n, nil
	}
	return []string{}, nil
}

// Linked reports whether to is a neighbour of from.
func (g *Graph) Linked(from, to string) bool {
	for _, n := range g.adj[from] {
		if n == to {
			return true
		}
	}
	return false
}

// CheckRoute verifies that every element of route is a location and that each step follows a link.
func (g *Graph) CheckRoute(route []string) error {
	for i, id := range route {
		if !g.Has(id) {
			return fmt.Errorf("%w: %s", ErrUnknownLocation, id)
		}
		if i > 0 && !g.Linked(route[i-1], id) {
			return fmt.Errorf("%w: %s is not linked to %s", ErrInvalidRoute, route[i-1], id)
		}
	}
	return nil
}

// Locations returns every location sorted by ID.
func (g *Graph) Locations() []Location {
	out := make([]Location, 0, len(g.locations))
	for _, loc := range g.locations {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of locations.
func (g *Graph) Len() int { return len(g.locations) }

// EdgeCount returns the number of directed links.
func (g *Graph) EdgeCount() int { return g.edges }

// Symmetrize returns adjacency with every link mirrored, used by loaders for walkable campuses
// where paths can be walked both ways.
func Symmetrize(adjacency map[string][]string) map[string][]string {
	out := make(map[string][]string, len(adjacency))
	has := make(map[[2]string]bool)
	add := func(from, to string) {
		if has[[2]string{from, to}] {
			return
		}
		has[[2]string{from, to}] = true
		out[from] = append(out[from], to)
	}

	// Sorted keys keep neighbour order stable between loads.
	keys := make([]string, 0, len(adjacency))
	for k := range adjacency {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, from := range keys {
		for _, to := range adjacency[from] {
			add(from, to)
			add(to, from)
		}
	}
	return out
}
