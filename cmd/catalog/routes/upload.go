package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/toolworks/catalog/cmd/catalog/container"
	"github.com/toolworks/catalog/cmd/catalog/handlers"
	"github.com/toolworks/catalog/cmd/catalog/middleware"
)

// RegisterUploadRoutes registers the standalone image upload route
func RegisterUploadRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewUploadHandler(c.CatalogService, c.Components.Logger)
	auth := middleware.BasicAuth(c.Components.Config.Admin)

	e.POST("/api/upload", h.UploadImage, auth) // POST /api/upload
}
