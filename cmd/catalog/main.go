package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/toolworks/catalog/cmd/catalog/container"
	"github.com/toolworks/catalog/cmd/catalog/middleware"
	"github.com/toolworks/catalog/cmd/catalog/routes"
	"github.com/toolworks/catalog/common/bootstrap"
	"github.com/toolworks/catalog/common/server"
)

func main() {
	ctx := context.Background()

	// Bootstrap common components (config, logger, storage layout, cache, telemetry)
	components, err := bootstrap.Setup(ctx, "catalog")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap catalog: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	// Initialize service container (singleton pattern - all services created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	// Initialize Echo server
	e := setupEcho()

	// Setup middleware
	setupMiddleware(e, components)

	// Setup health check
	setupHealthCheck(e, components)

	// Static mounts: public site, uploaded assets, auth-gated admin UI
	setupStatic(e, serviceContainer)

	// Register all routes
	registerRoutes(e, serviceContainer)

	// Start server
	startServer(e, components)
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo, components *bootstrap.Components) {
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.RequestID())

	// Above the asset cap so the store-level size check stays authoritative
	bodyLimit := fmt.Sprintf("%dK", components.Config.Storage.MaxUploadBytes/1024+1024)
	e.Use(echomw.BodyLimit(bodyLimit))
}

// setupHealthCheck registers the health check endpoint
func setupHealthCheck(e *echo.Echo, components *bootstrap.Components) {
	e.GET("/health", func(c echo.Context) error {
		if err := components.Health(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
			})
		}
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "catalog",
		})
	})
}

// setupStatic mounts the static file trees
func setupStatic(e *echo.Echo, serviceContainer *container.Container) {
	cfg := serviceContainer.Components.Config

	e.Static("/uploads", cfg.Storage.UploadsDir)
	e.Static("/", cfg.Storage.PublicDir)

	admin := e.Group("/admin", middleware.BasicAuth(cfg.Admin))
	admin.Static("/", cfg.Storage.AdminDir)
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	routes.RegisterProductRoutes(e, serviceContainer)
	routes.RegisterUploadRoutes(e, serviceContainer)
}

// startServer runs the Echo handler behind the graceful-shutdown server
func startServer(e *echo.Echo, components *bootstrap.Components) {
	port := components.Config.Service.Port
	components.Logger.Info("Starting catalog", "port", port)

	srv := server.New("catalog", port, e, components.Logger)
	if err := srv.Start(); err != nil {
		components.Logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
