package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/toolworks/catalog/cmd/catalog/container"
	"github.com/toolworks/catalog/cmd/catalog/handlers"
	"github.com/toolworks/catalog/cmd/catalog/middleware"
)

// RegisterProductRoutes registers the product lifecycle routes.
// Reads are public; every mutation sits behind the auth gate.
func RegisterProductRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewProductHandler(c.CatalogService, c.Components.Logger)
	auth := middleware.BasicAuth(c.Components.Config.Admin)

	products := e.Group("/api/products")
	{
		products.GET("", h.ListProducts)                   // GET /api/products
		products.POST("", h.CreateProduct, auth)           // POST /api/products
		products.PUT("/:id", h.UpdateProduct, auth)        // PUT /api/products/:id
		products.DELETE("/:id", h.DeleteProduct, auth)     // DELETE /api/products/:id
	}
}
