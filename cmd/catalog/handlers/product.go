package handlers

import (
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/toolworks/catalog/cmd/catalog/service"
	"github.com/toolworks/catalog/common/logger"
)

// ProductHandler handles product lifecycle requests
type ProductHandler struct {
	catalog *service.CatalogService
	log     *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog *service.CatalogService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		log:     log,
	}
}

// ListProducts returns the full product list
// GET /api/products
func (h *ProductHandler) ListProducts(c echo.Context) error {
	products, err := h.catalog.List(c.Request().Context())
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(http.StatusOK, products)
}

// CreateProduct creates a new product from multipart form fields and an
// optional image file
// POST /api/products
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	input, err := bindProductInput(c)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	product, err := h.catalog.Create(c.Request().Context(), input, imageUpload(c))
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct applies the supplied fields to an existing product
// PUT /api/products/:id
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id := c.Param("id")

	input, err := bindProductInput(c)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	product, err := h.catalog.Update(c.Request().Context(), id, input, imageUpload(c))
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product and its owned asset
// DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id := c.Param("id")

	if err := h.catalog.Delete(c.Request().Context(), id); err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// bindProductInput collects the form fields that were actually supplied;
// absent fields stay nil so updates merge instead of replacing
func bindProductInput(c echo.Context) (service.ProductInput, error) {
	values, err := c.FormParams()
	if err != nil {
		return service.ProductInput{}, err
	}

	return service.ProductInput{
		Name:              formField(values, "name"),
		Tag:               formField(values, "tag"),
		Description:       formField(values, "description"),
		DetailDescription: formField(values, "detailDescription"),
		ExistingImage:     formField(values, "existingImage"),
		Specs:             formField(values, "specs"),
	}, nil
}

func formField(values url.Values, key string) *string {
	if vs, ok := values[key]; ok && len(vs) > 0 {
		v := vs[0]
		return &v
	}
	return nil
}

// imageUpload returns the optional image file part, nil when absent
func imageUpload(c echo.Context) *multipart.FileHeader {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil
	}
	return fh
}
