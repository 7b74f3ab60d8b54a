package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>nodeimages · Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document for the JSON endpoints and login flow.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "nodeimages", "version": "v1.0.0" },
  "paths": {
    "/login": { "get": { "summary": "Start login at the identity provider", "responses": { "302": { "description": "redirect to provider" } } } },
    "/callback": { "get": { "summary": "Provider callback", "parameters": [{"name":"code","in":"query","schema":{"type":"string"}},{"name":"state","in":"query","schema":{"type":"string"}}], "responses": { "302": { "description": "redirect to /dashboard, or /login on failure" } } } },
    "/logout": { "get": { "summary": "End session and provider session", "responses": { "302": { "description": "redirect to provider logout" } } } },
    "/user": { "get": { "summary": "Session identity", "responses": { "200": { "description": "id and displayName" }, "302": { "description": "not logged in" } } } },
    "/search": {
      "post": {
        "summary": "Image search",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"Query":{"type":"string"}}}}}},
        "responses": {
          "200": { "description": "userId, searchResults, elapsedTime, suggestions, errorMessage, isMisspelled, Query" },
          "400": { "description": "empty query" },
          "429": { "description": "upstream rate limited" },
          "500": { "description": "upstream failure" }
        }
      }
    },
    "/add-to-favorites": {
      "post": {
        "summary": "Save an image to the caller's favourites",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"title":{"type":"string"},"byteSize":{"type":"string"},"imageUrl":{"type":"string"}}}}}},
        "responses": {
          "200": { "description": "successMessage" },
          "400": { "description": "invalid entry" },
          "409": { "description": "already in favourites" },
          "500": { "description": "storage failure" }
        }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition" } } } }
  }
}`
