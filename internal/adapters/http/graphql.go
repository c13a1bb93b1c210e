package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/campusnav/internal/core/domain"
	"github.com/samirrijal/campusnav/internal/core/navigation"
)

// buildSchema creates the GraphQL schema wired to our services.
// Object fields resolve through the json tags of the domain types.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Location",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.String},
			"name": &graphql.Field{Type: graphql.String},
			"x":    &graphql.Field{Type: graphql.Float},
			"z":    &graphql.Field{Type: graphql.Float},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Route",
		Fields: graphql.Fields{
			"source":      &graphql.Field{Type: graphql.String},
			"destination": &graphql.Field{Type: graphql.String},
			"path":        &graphql.Field{Type: graphql.NewList(graphql.String)},
			"distance":    &graphql.Field{Type: graphql.Float},
		},
	})

	stateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SessionState",
		Fields: graphql.Fields{
			"status":          &graphql.Field{Type: graphql.String},
			"route":           &graphql.Field{Type: graphql.NewList(graphql.String)},
			"index":           &graphql.Field{Type: graphql.Int},
			"current":         &graphql.Field{Type: graphql.String},
			"previous":        &graphql.Field{Type: graphql.String},
			"next":            &graphql.Field{Type: graphql.String},
			"destination":     &graphql.Field{Type: graphql.String},
			"arrived":         &graphql.Field{Type: graphql.Boolean},
			"remaining_steps": &graphql.Field{Type: graphql.Int},
		},
	})

	directiveType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Directive",
		Fields: graphql.Fields{
			"action":    &graphql.Field{Type: graphql.String},
			"from":      &graphql.Field{Type: graphql.String},
			"to":        &graphql.Field{Type: graphql.String},
			"distance":  &graphql.Field{Type: graphql.Float},
			"bearing":   &graphql.Field{Type: graphql.Float},
			"delta":     &graphql.Field{Type: graphql.Float},
			"wrong_way": &graphql.Field{Type: graphql.Boolean},
			"text": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					d, ok := p.Source.(navigation.Directive)
					if !ok {
						return nil, fmt.Errorf("unexpected directive source %T", p.Source)
					}
					return d.Text(), nil
				},
			},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"state":       &graphql.Field{Type: stateType},
			"directive":   &graphql.Field{Type: directiveType},
			"instruction": &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"locations": &graphql.Field{
				Type:        graphql.NewList(locationType),
				Description: "List campus locations ordered by ID",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					offset := p.Args["offset"].(int)
					limit := p.Args["limit"].(int)
					locations, _ := deps.Locations.List(offset, limit)
					return locations, nil
				},
			},
			"location": &graphql.Field{
				Type:        locationType,
				Description: "Get a location by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := domain.NormalizeID(p.Args["id"].(string))
					return deps.Locations.GetByID(id)
				},
			},
			"neighbors": &graphql.Field{
				Type:        graphql.NewList(locationType),
				Description: "Locations directly reachable from a location",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := domain.NormalizeID(p.Args["id"].(string))
					return deps.Locations.Neighbors(id)
				},
			},
			"route": &graphql.Field{
				Type:        routeType,
				Description: "Shortest walking route between two locations",
				Args: graphql.FieldConfigArgument{
					"from": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"to":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					from := domain.NormalizeID(p.Args["from"].(string))
					to := domain.NormalizeID(p.Args["to"].(string))
					return deps.Routes.Plan(p.Context, from, to)
				},
			},
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Current state of a navigation session",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Navigation.Get(p.Context, p.Args["id"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
