package http_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/campusnav/internal/adapters/http"
	"github.com/samirrijal/campusnav/internal/core/domain"
	"github.com/samirrijal/campusnav/internal/core/navigation"
	"github.com/samirrijal/campusnav/internal/core/usecases"
)

// ---- Test campus ----
//
//	LIBRARY
//	   |
//	ENTRY - R0 - R3 - ADMIN_BLOCK       ISLAND
func testGraph(t *testing.T) *domain.Graph {
	t.Helper()
	g, err := domain.NewGraph(
		[]domain.Location{
			{ID: "ENTRY", Name: "Main gate", X: 0, Z: 0},
			{ID: "R0", X: 2, Z: 0},
			{ID: "R3", X: 4, Z: 0},
			{ID: "ADMIN_BLOCK", Name: "Administration", X: 6, Z: 0},
			{ID: "LIBRARY", Name: "Library", X: 2, Z: 3},
			{ID: "ISLAND", X: 50, Z: 50},
		},
		domain.Symmetrize(map[string][]string{
			"ENTRY": {"R0"},
			"R0":    {"R3", "LIBRARY"},
			"R3":    {"ADMIN_BLOCK"},
		}),
	)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return g
}

// ---- Helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(t *testing.T, opts ...func(*handler.Dependencies)) *handler.Dependencies {
	t.Helper()
	g := testGraph(t)
	d := &handler.Dependencies{
		Locations:  usecases.NewLocationService(g),
		Routes:     usecases.NewRouteService(g, nil, 0),
		Navigation: usecases.NewNavigationService(g, nil, nil, usecases.NavigationOptions{WrongWaySamples: 2}),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func decodeError(t *testing.T, body io.Reader) handler.APIError {
	t.Helper()
	var apiErr handler.APIError
	if err := json.Unmarshal(readBody(t, body), &apiErr); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return apiErr
}

func decodeSession(t *testing.T, body io.Reader) usecases.SessionView {
	t.Helper()
	var v usecases.SessionView
	if err := json.Unmarshal(readBody(t, body), &v); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return v
}

// startSession creates a session over the given JSON snapshot and returns its view.
func startSession(t *testing.T, app *fiber.App, body string) usecases.SessionView {
	t.Helper()
	req := httptest.NewRequest("POST", "/v1/sessions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}
	return decodeSession(t, resp.Body)
}

func post(t *testing.T, app *fiber.App, path, body string) *httpResponse {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest("POST", path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return &httpResponse{status: resp.StatusCode, body: readBody(t, resp.Body)}
}

type httpResponse struct {
	status int
	body   []byte
}

func (r *httpResponse) session(t *testing.T) usecases.SessionView {
	t.Helper()
	var v usecases.SessionView
	if err := json.Unmarshal(r.body, &v); err != nil {
		t.Fatalf("decode session: %v (%s)", err, r.body)
	}
	return v
}

// ---- Location handler tests ----

func TestListLocations_Success(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/locations", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Location `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 6 {
		t.Errorf("expected total 6, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 6 {
		t.Fatalf("expected 6 locations, got %d", len(result.Data))
	}
	if result.Data[0].ID != "ADMIN_BLOCK" {
		t.Errorf("expected locations sorted by id, first is %s", result.Data[0].ID)
	}
}

func TestListLocations_Pagination(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/locations?offset=2&limit=2", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Location `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Data) != 2 {
		t.Fatalf("expected 2 locations in page, got %d", len(result.Data))
	}
	if result.Data[0].ID != "ISLAND" || result.Data[1].ID != "LIBRARY" {
		t.Errorf("expected ISLAND, LIBRARY, got %s, %s", result.Data[0].ID, result.Data[1].ID)
	}
	if result.Pagination.Offset != 2 || result.Pagination.Limit != 2 {
		t.Errorf("expected offset 2 limit 2, got %d %d", result.Pagination.Offset, result.Pagination.Limit)
	}

	link := resp.Header.Get("Link")
	for _, rel := range []string{`rel="first"`, `rel="prev"`, `rel="next"`, `rel="last"`} {
		if !strings.Contains(link, rel) {
			t.Errorf("expected %s in Link header, got %s", rel, link)
		}
	}
}

func TestListLocations_CacheControlHeader(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/locations", nil)
	resp, _ := app.Test(req, -1)

	cc := resp.Header.Get("Cache-Control")
	if cc != "public, max-age=3600" {
		t.Errorf("expected long-lived Cache-Control, got %q", cc)
	}
}

func TestGetLocation_NormalizesID(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/locations/admin_block", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var loc domain.Location
	json.NewDecoder(resp.Body).Decode(&loc)
	if loc.ID != "ADMIN_BLOCK" || loc.Name != "Administration" {
		t.Errorf("unexpected location %+v", loc)
	}
}

func TestGetLocation_NotFound(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/locations/NOWHERE", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp.Body); apiErr.Code != "unknown_location" {
		t.Errorf("expected unknown_location, got %s", apiErr.Code)
	}
}

func TestLocationNeighbors_Success(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/locations/R0/neighbors", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var neighbors []domain.Location
	json.NewDecoder(resp.Body).Decode(&neighbors)
	if len(neighbors) != 3 {
		t.Errorf("expected 3 neighbors, got %d", len(neighbors))
	}
}

// ---- Route handler tests ----

func TestPlanRoute_Success(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/routes?from=entry&to=admin_block", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var snap domain.RouteSnapshot
	json.NewDecoder(resp.Body).Decode(&snap)
	want := []string{"ENTRY", "R0", "R3", "ADMIN_BLOCK"}
	if strings.Join(snap.Path, ",") != strings.Join(want, ",") {
		t.Errorf("expected path %v, got %v", want, snap.Path)
	}
	if snap.Distance != 6 {
		t.Errorf("expected distance 6, got %v", snap.Distance)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=600" {
		t.Errorf("expected route Cache-Control, got %q", cc)
	}
}

func TestPlanRoute_MissingParams(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/routes?from=ENTRY", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestPlanRoute_NoPath(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/routes?from=ENTRY&to=ISLAND", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 422 {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp.Body); apiErr.Code != "no_path" {
		t.Errorf("expected no_path, got %s", apiErr.Code)
	}
}

func TestPlanRoute_UnknownLocation(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/routes?from=ENTRY&to=MOON", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

// ---- Session handler tests ----

func TestStartSession_WithPath(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("POST", "/v1/sessions",
		strings.NewReader(`{"path":["ENTRY","R0","R3","ADMIN_BLOCK"]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	v := decodeSession(t, resp.Body)
	if v.ID == "" {
		t.Fatal("expected session id")
	}
	if resp.Header.Get("Location") != "/v1/sessions/"+v.ID {
		t.Errorf("expected Location header for %s, got %q", v.ID, resp.Header.Get("Location"))
	}
	if v.State.Status != navigation.StatusFollowing || v.State.Current != "ENTRY" {
		t.Errorf("expected following at ENTRY, got %s at %s", v.State.Status, v.State.Current)
	}
	if v.State.Remaining != 3 {
		t.Errorf("expected 3 remaining steps, got %d", v.State.Remaining)
	}
	if v.Directive.Action != navigation.ActionProceed || v.Directive.To != "R0" {
		t.Errorf("expected proceed to R0, got %s to %s", v.Directive.Action, v.Directive.To)
	}
	if v.Text != "Proceed to R0, 2 m" {
		t.Errorf("unexpected instruction %q", v.Text)
	}
}

func TestStartSession_PlansFromEndpoints(t *testing.T) {
	app := setupApp(makeDeps(t))

	v := startSession(t, app, `{"source":"entry","destination":"library"}`)
	want := "ENTRY,R0,LIBRARY"
	if got := strings.Join(v.State.Route, ","); got != want {
		t.Errorf("expected route %s, got %s", want, got)
	}
	if v.State.Destination != "LIBRARY" {
		t.Errorf("expected destination LIBRARY, got %s", v.State.Destination)
	}
}

func TestStartSession_EmptyRoute(t *testing.T) {
	app := setupApp(makeDeps(t))

	r := post(t, app, "/v1/sessions", `{"path":[]}`)
	if r.status != 400 {
		t.Fatalf("expected 400, got %d", r.status)
	}
	var apiErr handler.APIError
	json.Unmarshal(r.body, &apiErr)
	if apiErr.Code != "empty_route" {
		t.Errorf("expected empty_route, got %s", apiErr.Code)
	}
}

func TestStartSession_UnknownLocation(t *testing.T) {
	app := setupApp(makeDeps(t))

	r := post(t, app, "/v1/sessions", `{"path":["ENTRY","MOON"]}`)
	if r.status != 404 {
		t.Fatalf("expected 404, got %d", r.status)
	}
}

func TestStartSession_NonAdjacentPath(t *testing.T) {
	app := setupApp(makeDeps(t))

	r := post(t, app, "/v1/sessions", `{"path":["ENTRY","ADMIN_BLOCK"]}`)
	if r.status != 422 {
		t.Fatalf("expected 422, got %d", r.status)
	}
	var apiErr handler.APIError
	json.Unmarshal(r.body, &apiErr)
	if apiErr.Code != "invalid_route" {
		t.Errorf("expected invalid_route, got %s", apiErr.Code)
	}
}

func TestStartSession_InvalidBody(t *testing.T) {
	app := setupApp(makeDeps(t))

	r := post(t, app, "/v1/sessions", `{"path":`)
	if r.status != 400 {
		t.Fatalf("expected 400, got %d", r.status)
	}
}

func TestSession_AdvanceToArrival(t *testing.T) {
	app := setupApp(makeDeps(t))
	v := startSession(t, app, `{"path":["ENTRY","R0","R3","ADMIN_BLOCK"]}`)

	var last usecases.SessionView
	for i := 0; i < 3; i++ {
		r := post(t, app, "/v1/sessions/"+v.ID+"/advance", "")
		if r.status != 200 {
			t.Fatalf("advance %d: expected 200, got %d", i, r.status)
		}
		last = r.session(t)
	}

	if !last.State.Arrived || last.State.Current != "ADMIN_BLOCK" {
		t.Errorf("expected arrival at ADMIN_BLOCK, got %+v", last.State)
	}
	if last.Directive.Action != navigation.ActionArrived {
		t.Errorf("expected arrived directive, got %s", last.Directive.Action)
	}

	// Advancing an arrived session is a no-op.
	r := post(t, app, "/v1/sessions/"+v.ID+"/advance", "")
	if r.status != 200 {
		t.Fatalf("expected 200 after arrival, got %d", r.status)
	}
	if got := r.session(t).State.Index; got != 3 {
		t.Errorf("expected index to stay 3, got %d", got)
	}
}

func TestSession_Anchor(t *testing.T) {
	app := setupApp(makeDeps(t))
	v := startSession(t, app, `{"path":["ENTRY","R0","R3","ADMIN_BLOCK"]}`)

	r := post(t, app, "/v1/sessions/"+v.ID+"/anchor", `{"id":"library"}`)
	if r.status != 200 {
		t.Fatalf("expected 200, got %d", r.status)
	}
	off := r.session(t)
	if off.Matched == nil || *off.Matched {
		t.Errorf("expected matched=false for off-route anchor")
	}
	if off.State.Index != 0 {
		t.Errorf("expected index unchanged, got %d", off.State.Index)
	}

	r = post(t, app, "/v1/sessions/"+v.ID+"/anchor", `{"id":"r3"}`)
	on := r.session(t)
	if on.Matched == nil || !*on.Matched {
		t.Errorf("expected matched=true")
	}
	if on.State.Current != "R3" || on.State.Index != 2 {
		t.Errorf("expected R3 at index 2, got %s at %d", on.State.Current, on.State.Index)
	}
}

func TestSession_AnchorRequiresID(t *testing.T) {
	app := setupApp(makeDeps(t))
	v := startSession(t, app, `{"path":["ENTRY","R0"]}`)

	r := post(t, app, "/v1/sessions/"+v.ID+"/anchor", `{"heading":90}`)
	if r.status != 400 {
		t.Fatalf("expected 400, got %d", r.status)
	}
}

func TestSession_Reroute(t *testing.T) {
	app := setupApp(makeDeps(t))
	v := startSession(t, app, `{"path":["ENTRY","R0","R3","ADMIN_BLOCK"]}`)
	post(t, app, "/v1/sessions/"+v.ID+"/advance", "")

	r := post(t, app, "/v1/sessions/"+v.ID+"/reroute", `{"goal":"library"}`)
	if r.status != 200 {
		t.Fatalf("expected 200, got %d: %s", r.status, r.body)
	}
	got := r.session(t)
	if strings.Join(got.State.Route, ",") != "R0,LIBRARY" {
		t.Errorf("expected route R0,LIBRARY, got %v", got.State.Route)
	}

	// No body keeps the current destination.
	r = post(t, app, "/v1/sessions/"+v.ID+"/reroute", "")
	if r.status != 200 {
		t.Fatalf("expected 200, got %d", r.status)
	}
	if d := r.session(t).State.Destination; d != "LIBRARY" {
		t.Errorf("expected destination LIBRARY, got %s", d)
	}
}

func TestSession_RerouteNoPath(t *testing.T) {
	app := setupApp(makeDeps(t))
	v := startSession(t, app, `{"path":["ENTRY","R0"]}`)

	r := post(t, app, "/v1/sessions/"+v.ID+"/reroute", `{"goal":"ISLAND"}`)
	if r.status != 422 {
		t.Fatalf("expected 422, got %d", r.status)
	}
}

func TestSession_Reset(t *testing.T) {
	app := setupApp(makeDeps(t))
	v := startSession(t, app, `{"path":["ENTRY","R0","R3"]}`)
	post(t, app, "/v1/sessions/"+v.ID+"/advance", "")

	r := post(t, app, "/v1/sessions/"+v.ID+"/reset", "")
	if r.status != 200 {
		t.Fatalf("expected 200, got %d", r.status)
	}
	if got := r.session(t); got.State.Index != 0 || got.State.Current != "ENTRY" {
		t.Errorf("expected reset to ENTRY, got %s at %d", got.State.Current, got.State.Index)
	}
}

func TestSession_InstructionHeading(t *testing.T) {
	app := setupApp(makeDeps(t))
	v := startSession(t, app, `{"path":["ENTRY","R0","R3"]}`)
	path := "/v1/sessions/" + v.ID + "/instruction"

	req := httptest.NewRequest("GET", path+"?heading=north", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 for bad heading, got %d", resp.StatusCode)
	}

	// Walking the opposite way twice in a row trips the wrong-way monitor.
	var view usecases.SessionView
	for i := 0; i < 2; i++ {
		req = httptest.NewRequest("GET", path+"?heading=180", nil)
		resp, _ = app.Test(req, -1)
		if resp.StatusCode != 200 {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		view = decodeSession(t, resp.Body)
	}
	if !view.Directive.WrongWay {
		t.Error("expected wrong-way after two opposite headings")
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected no-store for session state, got %q", cc)
	}
}

func TestSession_EndThenGone(t *testing.T) {
	app := setupApp(makeDeps(t))
	v := startSession(t, app, `{"path":["ENTRY","R0"]}`)

	req := httptest.NewRequest("DELETE", "/v1/sessions/"+v.ID, nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 204 {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/v1/sessions/"+v.ID, nil)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp.Body); apiErr.Code != "session_not_found" {
		t.Errorf("expected session_not_found, got %s", apiErr.Code)
	}
}

// ---- GraphQL ----

func TestGraphQL_RouteAndSession(t *testing.T) {
	app := setupApp(makeDeps(t))
	v := startSession(t, app, `{"path":["ENTRY","R0","LIBRARY"]}`)

	query := `{"query":"query($id: String!) { route(from: \"entry\", to: \"r3\") { path distance } session(id: $id) { state { current remaining_steps } directive { action to text } } }",` +
		`"variables":{"id":"` + v.ID + `"}}`
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(query))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Route struct {
				Path     []string `json:"path"`
				Distance float64  `json:"distance"`
			} `json:"route"`
			Session struct {
				State struct {
					Current        string `json:"current"`
					RemainingSteps int    `json:"remaining_steps"`
				} `json:"state"`
				Directive struct {
					Action string `json:"action"`
					To     string `json:"to"`
					Text   string `json:"text"`
				} `json:"directive"`
			} `json:"session"`
		} `json:"data"`
		Errors []map[string]interface{} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected graphql errors: %v", result.Errors)
	}
	if strings.Join(result.Data.Route.Path, ",") != "ENTRY,R0,R3" {
		t.Errorf("unexpected route %v", result.Data.Route.Path)
	}
	if result.Data.Session.State.Current != "ENTRY" || result.Data.Session.State.RemainingSteps != 2 {
		t.Errorf("unexpected state %+v", result.Data.Session.State)
	}
	if result.Data.Session.Directive.Action != "proceed" || result.Data.Session.Directive.Text != "Proceed to R0, 2 m" {
		t.Errorf("unexpected directive %+v", result.Data.Session.Directive)
	}
}

// ---- Health handler tests ----

func TestDocs_LinksSessionFlow(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/docs", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"#/routes/planRoute", "#/sessions/startSession", "POST /v1/sessions", "/ws?session="} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected docs page to mention %q", want)
		}
	}
}

func TestDocs_ServesOpenAPIDocument(t *testing.T) {
	app := setupApp(makeDeps(t))

	// Tests run from the package directory; the document lives at the repository root.
	req := httptest.NewRequest("GET", "/docs/openapi.yaml", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("expected application/yaml, got %s", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "title: Campus Navigation API") {
		t.Error("expected the campus navigation OpenAPI document")
	}
}

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if result["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", result["status"])
	}
}

func TestReady_GraphOnly(t *testing.T) {
	// DB, NATS, Cache are nil: optional backends do not fail readiness.
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Checks map[string]string `json:"checks"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Checks["graph"] != "ok" || result.Checks["database"] != "not configured" {
		t.Errorf("unexpected checks %v", result.Checks)
	}
}

func TestReady_EmptyGraph(t *testing.T) {
	empty, err := domain.NewGraph(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	deps := makeDeps(t, func(d *handler.Dependencies) {
		d.Locations = usecases.NewLocationService(empty)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

// ---- Conditional requests ----

func TestETag_NotModified(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/locations/ENTRY", nil)
	resp, _ := app.Test(req, -1)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req = httptest.NewRequest("GET", "/v1/locations/ENTRY", nil)
	req.Header.Set("If-None-Match", `"other", `+etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Fatalf("expected 304, got %d", resp.StatusCode)
	}
}

// ---- X-API-Version header ----

func TestAPIVersionHeader(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	v := resp.Header.Get("X-API-Version")
	if v != "1.0.0" {
		t.Errorf("expected X-API-Version 1.0.0, got %q", v)
	}
}

// TestAccessLogMiddleware verifies structured access logging does not alter the response.
func TestAccessLogMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(handler.AccessLogMiddleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "ok") {
		t.Errorf("expected response body to contain 'ok', got %s", string(body))
	}
}
