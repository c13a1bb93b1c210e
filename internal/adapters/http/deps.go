package http

import (
	"github.com/nats-io/nats.go"
	"github.com/samirrijal/campusnav/internal/adapters/postgres"
	"github.com/samirrijal/campusnav/internal/adapters/valkey"
	"github.com/samirrijal/campusnav/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
// NATS, DB and Cache are optional; the campus graph can be served from a file alone.
type Dependencies struct {
	Locations  *usecases.LocationService
	Routes     *usecases.RouteService
	Navigation *usecases.NavigationService
	NATS       *nats.Conn
	DB         *postgres.DB
	Cache      *valkey.Cache
}
