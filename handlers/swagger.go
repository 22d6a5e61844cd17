package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the content API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
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
    <title>impact-content Swagger</title>
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

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "impact-content", "version": "v1.0.0" },
  "components": { "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } } },
  "paths": {
    "/api/impact": {
      "get": { "summary": "All sections of a report", "parameters": [{"name":"slug","in":"query","schema":{"type":"string"}}], "responses": { "200": { "description": "map of section path to data" } } }
    },
    "/api/sections": {
      "get": { "summary": "Registered sections and their allowed keys", "responses": { "200": { "description": "section list" } } }
    },
    "/api/impact/{section}": {
      "get": {
        "summary": "Read one section",
        "parameters": [{"name":"section","in":"path","required":true,"schema":{"type":"string"}},{"name":"slug","in":"query","schema":{"type":"string"}}],
        "responses": { "200": { "description": "section data in API shape" }, "404": { "description": "unknown section or missing document" } }
      },
      "put": {
        "summary": "Update one section",
        "security": [{"bearer": []}],
        "parameters": [{"name":"section","in":"path","required":true,"schema":{"type":"string"}},{"name":"slug","in":"query","schema":{"type":"string"}}],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object"} } } },
        "responses": { "200": { "description": "updated section" }, "400": { "description": "missing fields" }, "401": { "description": "not authorized" }, "404": { "description": "unknown section" }, "500": { "description": "storage failure" } }
      }
    },
    "/api/auth/login": {
      "post": {
        "summary": "Email/password login",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "user and access token" }, "401": { "description": "invalid credentials" } }
      }
    },
    "/api/auth/logout": {
      "post": { "summary": "Revoke the presented token", "security": [{"bearer": []}], "responses": { "200": { "description": "logged out" } } }
    },
    "/api/auth/me": {
      "get": { "summary": "Identity of the presented token", "security": [{"bearer": []}], "responses": { "200": { "description": "user" } } }
    },
    "/api/upload/sign": {
      "post": {
        "summary": "Presigned image upload URL",
        "security": [{"bearer": []}],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"contentType":{"type":"string"},"extension":{"type":"string"},"key":{"type":"string"}}}}}},
        "responses": { "200": { "description": "upload ticket" }, "400": { "description": "unsupported content type" }, "503": { "description": "storage not configured" } }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
