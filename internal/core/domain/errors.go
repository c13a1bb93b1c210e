package domain

import "errors"

var (
	// ErrUnknownLocation is returned when an identifier is not part of the campus graph.
	ErrUnknownLocation = errors.New("unknown location")

	// ErrEmptyRoute is returned when a session is started with a route that has no elements.
	ErrEmptyRoute = errors.New("empty route")

	// ErrInvalidRoute is returned when consecutive route elements are not linked in the campus graph.
	ErrInvalidRoute = errors.New("invalid route")

	// ErrNoActiveRoute is returned by session operations before Start or after End.
	ErrNoActiveRoute = errors.New("no active route")

	// ErrNoPath means the search finished without reaching the goal.
	// It is an expected outcome for disconnected locations, not a fault.
	ErrNoPath = errors.New("no path between locations")

	// ErrGraphIntegrity is returned when campus data references a location that has no coordinates.
	ErrGraphIntegrity = errors.New("campus graph integrity")

	// ErrSessionNotFound is returned when no session exists for an ID.
	ErrSessionNotFound = errors.New("session not found")
)
