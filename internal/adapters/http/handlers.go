package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/campusnav/internal/core/domain"
)

// ListLocationsHandler returns the campus locations, sorted by ID and paginated.
func ListLocationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		if offset < 0 {
			offset = 0
		}
		limit := c.QueryInt("limit", 50)

		locations, total := deps.Locations.List(offset, limit)
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: locations, Pagination: pg})
	}
}

// GetLocationHandler returns a single location by ID.
func GetLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := domain.NormalizeID(c.Params("id"))
		if id == "" {
			return errBadRequest(c, "location id is required")
		}
		loc, err := deps.Locations.GetByID(id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(loc)
	}
}

// LocationNeighborsHandler returns the locations directly reachable from a location.
func LocationNeighborsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := domain.NormalizeID(c.Params("id"))
		if id == "" {
			return errBadRequest(c, "location id is required")
		}
		neighbors, err := deps.Locations.Neighbors(id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(neighbors)
	}
}

// PlanRouteHandler computes the shortest walking route between two locations.
func PlanRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from := domain.NormalizeID(c.Query("from"))
		to := domain.NormalizeID(c.Query("to"))
		if from == "" || to == "" {
			return errBadRequest(c, "from and to query parameters are required")
		}

		snap, err := deps.Routes.Plan(c.UserContext(), from, to)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(snap)
	}
}

// StartSessionHandler starts a navigation session from a route snapshot.
// A body with source and destination but no path is planned first.
func StartSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var snap domain.RouteSnapshot
		if err := c.BodyParser(&snap); err != nil {
			return errBadRequest(c, "invalid route snapshot: "+err.Error())
		}

		snap.Source = domain.NormalizeID(snap.Source)
		snap.Destination = domain.NormalizeID(snap.Destination)
		for i, id := range snap.Path {
			snap.Path[i] = domain.NormalizeID(id)
		}

		ctx := c.UserContext()
		if len(snap.Path) == 0 && snap.Source != "" && snap.Destination != "" {
			planned, err := deps.Routes.Plan(ctx, snap.Source, snap.Destination)
			if err != nil {
				return errFromDomain(c, err)
			}
			snap = *planned
		}

		view, err := deps.Navigation.Start(ctx, snap)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Location("/v1/sessions/" + view.ID)
		return c.Status(fiber.StatusCreated).JSON(view)
	}
}

// GetSessionHandler returns the current state of a session.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Navigation.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(view)
	}
}

// SessionInstructionHandler returns the directive for the session's current position.
// An optional heading (compass degrees) enables wrong-way detection.
func SessionInstructionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var heading *float64
		if raw := c.Query("heading"); raw != "" {
			deg, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return errBadRequest(c, "heading must be a number of degrees")
			}
			heading = &deg
		}

		view, err := deps.Navigation.Instruction(c.UserContext(), c.Params("id"), heading)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(view)
	}
}

// AdvanceSessionHandler moves the walker one step along the route.
func AdvanceSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Navigation.Advance(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(view)
	}
}

// AnchorSessionHandler repositions the walker from an out-of-band fix such as a scanned marker.
// Fixes that are not on the route are ignored and reported with matched=false.
func AnchorSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var anchor domain.Anchor
		if err := c.BodyParser(&anchor); err != nil {
			return errBadRequest(c, "invalid anchor: "+err.Error())
		}
		anchor.ID = domain.NormalizeID(anchor.ID)
		if anchor.ID == "" {
			return errBadRequest(c, "anchor id is required")
		}

		view, err := deps.Navigation.Anchor(c.UserContext(), c.Params("id"), anchor)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(view)
	}
}

type rerouteRequest struct {
	Goal string `json:"goal"`
}

// RerouteSessionHandler replans from the walker's current position.
// An empty goal keeps the session's destination.
func RerouteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req rerouteRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid reroute request: "+err.Error())
			}
		}

		view, err := deps.Navigation.Reroute(c.UserContext(), c.Params("id"), domain.NormalizeID(req.Goal))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(view)
	}
}

// ResetSessionHandler moves the walker back to the start of the route.
func ResetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Navigation.Reset(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(view)
	}
}

// EndSessionHandler ends a session and discards its state.
func EndSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Navigation.End(c.UserContext(), c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
