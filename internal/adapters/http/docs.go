package http

import (
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
)

// openAPIFile is the OpenAPI document, relative to the repository root.
const openAPIFile = "api/openapi.yaml"

// The banner walks through a navigation: plan a route, start a session on it, then follow it.
// Links are Swagger UI deep links (#/<tag>/<operationId>).
const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Campus Navigation API · Swagger UI</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
  <style>
    html{box-sizing:border-box}*,*::before,*::after{box-sizing:inherit}body{margin:0;background:#fafafa}
    .campus{font-family:sans-serif;padding:12px 20px;background:#1b4332;color:#fff}
    .campus a{color:#b7e4c7;margin-right:14px}
    .campus ol{margin:6px 0 0;padding-left:20px}
  </style>
</head>
<body>
  <div class="campus">
    <strong>Campus navigation</strong>
    <ol>
      <li><a href="#/locations/listLocations">GET /v1/locations</a>pick a source and a destination</li>
      <li><a href="#/routes/planRoute">GET /v1/routes</a>plan the shortest walking route</li>
      <li><a href="#/sessions/startSession">POST /v1/sessions</a>start following it</li>
      <li><a href="#/sessions/sessionInstruction">GET /v1/sessions/{id}/instruction</a>next directive, with an optional compass heading</li>
      <li><a href="#/sessions/advanceSession">POST /v1/sessions/{id}/advance</a>or <a href="#/sessions/anchorSession">/anchor</a>after a marker scan</li>
    </ol>
    <p>Live session events: <code>ws://&lt;host&gt;/ws?session=&lt;id&gt;</code> · <a href="/docs/openapi.yaml">openapi.yaml</a></p>
  </div>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: '/docs/openapi.yaml',
      dom_id: '#swagger-ui',
      deepLinking: true,
      docExpansion: 'list',
      displayOperationId: true,
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
      layout: 'BaseLayout',
    });
  </script>
</body>
</html>`

// findOpenAPIFile looks for the OpenAPI document in the working directory and its parents,
// so the API serves it whether started from the repository root or from a package directory.
func findOpenAPIFile() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, openAPIFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		dir = filepath.Dir(dir)
	}
	return "", false
}

// SetupDocs registers Swagger UI at /docs and the raw OpenAPI document at /docs/openapi.yaml.
func SetupDocs(app *fiber.App) {
	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/html; charset=utf-8")
		return c.SendString(swaggerUIHTML)
	})

	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		path, ok := findOpenAPIFile()
		if !ok {
			return newError(c, 404, "not_found", "openapi.yaml not found")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return errInternal(c, "read openapi.yaml")
		}
		c.Set("Content-Type", "application/yaml")
		return c.Send(data)
	})
}
