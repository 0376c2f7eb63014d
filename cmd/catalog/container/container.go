package container

import (
	"github.com/toolworks/catalog/cmd/catalog/assets"
	"github.com/toolworks/catalog/cmd/catalog/repository"
	"github.com/toolworks/catalog/cmd/catalog/service"
	"github.com/toolworks/catalog/common/bootstrap"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components

	// Repositories and stores
	ProductRepo *repository.ProductRepository
	AssetStore  *assets.Store

	// Services
	CatalogService *service.CatalogService
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	cfg := components.Config

	// Initialize leaf stores first
	productRepo := repository.NewProductRepository(cfg.Storage.DataFile, components.Logger.WithComponent("repository"))
	assetStore := assets.NewStore(cfg.Storage.UploadsDir, cfg.Storage.MaxUploadBytes, components.Logger.WithComponent("assets"))

	// Compose the catalog service on top
	catalogService := service.NewCatalogService(
		productRepo,
		assetStore,
		components.Cache,
		cfg.Cache.DefaultTTL,
		components.Logger.WithComponent("catalog"),
	)

	return &Container{
		Components:     components,
		ProductRepo:    productRepo,
		AssetStore:     assetStore,
		CatalogService: catalogService,
	}, nil
}
