package http

import (
	"fmt"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

// OpenAPIPath is where the OpenAPI document is read from at request time.
var OpenAPIPath = "api/openapi.yaml"

const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>%[1]s</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body style="margin:0">
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({url: '%[2]s', dom_id: '#swagger-ui', deepLinking: true});
  </script>
</body>
</html>`

func loadOpenAPI() (*openapi3.T, error) {
	return openapi3.NewLoader().LoadFromFile(OpenAPIPath)
}

// SetupDocs serves Swagger UI at /docs and the OpenAPI document as YAML and JSON.
func SetupDocs(app *fiber.App) {
	app.Get("/docs", func(c *fiber.Ctx) error {
		title := "Seismeta API"
		if doc, err := loadOpenAPI(); err == nil && doc.Info != nil {
			title = doc.Info.Title
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(fmt.Sprintf(swaggerPage, title, "/docs/openapi.json"))
	})

	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		data, err := os.ReadFile(OpenAPIPath)
		if err != nil {
			return errNotFound(c, "openapi document not found")
		}
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(data)
	})

	app.Get("/docs/openapi.json", func(c *fiber.Ctx) error {
		doc, err := loadOpenAPI()
		if err != nil {
			return errNotFound(c, "openapi document not found")
		}
		data, err := doc.MarshalJSON()
		if err != nil {
			return errInternal(c, "failed to encode openapi document")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(data)
	})
}
