package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/toolworks/catalog/cmd/catalog/service"
	"github.com/toolworks/catalog/common/logger"
)

// UploadHandler handles standalone image uploads
type UploadHandler struct {
	catalog *service.CatalogService
	log     *logger.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(catalog *service.CatalogService, log *logger.Logger) *UploadHandler {
	return &UploadHandler{
		catalog: catalog,
		log:     log,
	}
}

// UploadImage stores an image and returns its public URL, so the editing
// UI can obtain a reference before a create/update call
// POST /api/upload
func (h *UploadHandler) UploadImage(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "no file uploaded",
		})
	}

	url, err := h.catalog.Upload(fh)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
