package domain

import (
	"time"
)

// Point is a position on the campus ground plane, in metres.
type Point struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Location is a named point of the campus graph (gate, junction, building entrance).
type Location struct {
	ID   string  `json:"id"`
	Name string  `json:"name,omitempty"`
	X    float64 `json:"x"`
	Z    float64 `json:"z"`
}

// Point returns the location's coordinates.
func (l Location) Point() Point {
	return Point{X: l.X, Z: l.Z}
}

// Route is an ordered sequence of location IDs where consecutive elements are adjacent.
// A route of length 1 means source equals destination.
type Route []string

// Destination returns the last element, or "" for an empty route.
func (r Route) Destination() string {
	if len(r) == 0 {
		return ""
	}
	return r[len(r)-1]
}

// Clone returns a copy that does not share the backing array.
func (r Route) Clone() Route {
	if r == nil {
		return nil
	}
	out := make(Route, len(r))
	copy(out, r)
	return out
}

// RouteSnapshot is the handoff produced after a successful route computation.
// A navigation session can be resumed from Path alone.
type RouteSnapshot struct {
	Source      string  `json:"source"`
	Destination string  `json:"destination"`
	Path        Route   `json:"path"`
	Distance    float64 `json:"distance,omitempty"` // metres
}

// SessionRecord is the persisted form of a navigation session.
type SessionRecord struct {
	ID        string        `json:"id"`
	Snapshot  RouteSnapshot `json:"snapshot"`
	Index     int           `json:"index"`
	Arrived   bool          `json:"arrived"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Anchor is an out-of-band location fix, e.g. a scanned QR marker.
type Anchor struct {
	ID      string   `json:"id"`
	Heading *float64 `json:"heading,omitempty"` // compass degrees
}

// CommandKind identifies what a SessionCommand asks the session to do.
type CommandKind string

const (
	CommandAdvance CommandKind = "advance"
	CommandAnchor  CommandKind = "anchor"
	CommandReroute CommandKind = "reroute"
	CommandReset   CommandKind = "reset"
)

// SessionCommand is a navigation event delivered asynchronously (sensor fix, timer tick).
type SessionCommand struct {
	SessionID string      `json:"session_id"`
	Kind      CommandKind `json:"kind"`
	Anchor    *Anchor     `json:"anchor,omitempty"`
	Goal      string      `json:"goal,omitempty"`
}

// SessionEventType names the mutation a SessionEvent reports.
type SessionEventType string

const (
	EventStarted  SessionEventType = "started"
	EventAdvanced SessionEventType = "advanced"
	EventAnchored SessionEventType = "anchored"
	EventRerouted SessionEventType = "rerouted"
	EventReset    SessionEventType = "reset"
	EventArrived  SessionEventType = "arrived"
	EventEnded    SessionEventType = "ended"
)

// SessionEvent is published after every session mutation.
type SessionEvent struct {
	SessionID string           `json:"session_id"`
	Type      SessionEventType `json:"type"`
	Current   string           `json:"current,omitempty"`
	Index     int              `json:"index"`
	Arrived   bool             `json:"arrived"`
	Path      Route            `json:"path,omitempty"`
	Time      time.Time        `json:"time"`
}
