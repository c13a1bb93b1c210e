// Package navigation tracks a walker's progress along a planned route and derives the
// next-step directive from it.
//
// A Session is a plain value owned by whoever created it; there is no package-level route
// store. All Session methods lock an internal mutex, so events arriving from different
// sources (taps, timer ticks, QR scans) are applied one at a time.
package navigation

import (
	"fmt"
	"sync"

	"github.com/samirrijal/campusnav/internal/core/domain"
	"github.com/samirrijal/campusnav/internal/core/routing"
)

// Status is the session state machine position.
type Status string

const (
	StatusIdle      Status = "idle" // no route, or ended
	StatusFollowing Status = "following"
	StatusArrived   Status = "arrived"
)

// State is an immutable view of a session.
type State struct {
	Status      Status       `json:"status"`
	Route       domain.Route `json:"route"`
	Index       int          `json:"index"`
	Current     string       `json:"current"`
	Previous    string       `json:"previous,omitempty"`
	Next        string       `json:"next,omitempty"`
	Destination string       `json:"destination"`
	Arrived     bool         `json:"arrived"`
	Remaining   int          `json:"remaining_steps"`
}

// Session is the mutable navigation state for one walker.
// The zero value is an idle session; every operation except Start and Resume
// fails on it with domain.ErrNoActiveRoute.
type Session struct {
	mu      sync.Mutex
	route   domain.Route
	index   int
	arrived bool
}

// NewSession starts a session on route.
func NewSession(route domain.Route) (*Session, error) {
	s := &Session{}
	if err := s.Start(route); err != nil {
		return nil, err
	}
	return s, nil
}

// Start replaces any previous route and positions the walker on its first element.
func (s *Session) Start(route domain.Route) error {
	if len(route) == 0 {
		return domain.ErrEmptyRoute
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.route = route.Clone()
	s.index = 0
	s.arrived = len(route) == 1
	return nil
}

// Resume restores a session from a handoff snapshot and a saved cursor.
// Only snapshot.Path is needed; an out-of-range index is clamped onto the route.
func (s *Session) Resume(snapshot domain.RouteSnapshot, index int) error {
	if err := s.Start(snapshot.Path); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	last := len(s.route) - 1
	switch {
	case index < 0:
		index = 0
	case index > last:
		index = last
	}
	s.index = index
	s.arrived = index == last
	return nil
}

// Advance moves one step along the route. It reports whether the cursor moved;
// on an arrived session it is a no-op.
func (s *Session) Advance() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.route == nil {
		return false, domain.ErrNoActiveRoute
	}
	if s.arrived {
		return false, nil
	}
	s.index++
	s.arrived = s.index == len(s.route)-1
	return true, nil
}

// ReAnchor re-synchronises progress with an external location fix.
//
// Only the active route is searched. A fix that is not on the route is ignored and
// leaves the session untouched (matched=false): a noisy or off-route scan must not
// corrupt progress. Matching the last element moves the session to arrived from any state.
func (s *Session) ReAnchor(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.route == nil {
		return false, domain.ErrNoActiveRoute
	}

	pos := -1
	for i := s.index; i < len(s.route); i++ {
		if s.route[i] == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		for i := 0; i < s.index; i++ {
			if s.route[i] == id {
				pos = i
				break
			}
		}
	}
	if pos < 0 {
		return false, nil
	}

	s.index = pos
	s.arrived = pos == len(s.route)-1
	return true, nil
}

// Reroute plans a fresh route from the current location to goal and restarts the cursor on it.
// An empty goal keeps the current destination. On failure, including domain.ErrNoPath,
// the session is left exactly as it was.
func (s *Session) Reroute(goal string, g *domain.Graph) (domain.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.route == nil {
		return nil, domain.ErrNoActiveRoute
	}
	if goal == "" {
		goal = s.route.Destination()
	}

	route, err := routing.FindPath(g, s.route[s.index], goal)
	if err != nil {
		return nil, fmt.Errorf("reroute from %s: %w", s.route[s.index], err)
	}

	s.route = route
	s.index = 0
	s.arrived = len(route) == 1
	return route.Clone(), nil
}

// Reset puts the walker back on the first element without recomputing the route.
// A single-element route stays arrived, since source and destination coincide.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.route == nil {
		return domain.ErrNoActiveRoute
	}
	s.index = 0
	s.arrived = len(s.route) == 1
	return nil
}

// End discards the route. Subsequent operations fail with domain.ErrNoActiveRoute.
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.route == nil {
		return domain.ErrNoActiveRoute
	}
	s.route = nil
	s.index = 0
	s.arrived = false
	return nil
}

// State returns a snapshot of the session.
func (s *Session) State() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.route == nil {
		return State{Status: StatusIdle}, domain.ErrNoActiveRoute
	}

	st := State{
		Status:      StatusFollowing,
		Route:       s.route.Clone(),
		Index:       s.index,
		Current:     s.route[s.index],
		Destination: s.route.Destination(),
		Arrived:     s.arrived,
		Remaining:   len(s.route) - 1 - s.index,
	}
	if s.arrived {
		st.Status = StatusArrived
	}
	if s.index > 0 {
		st.Previous = s.route[s.index-1]
	}
	if s.index+1 < len(s.route) {
		st.Next = s.route[s.index+1]
	}
	return st, nil
}
