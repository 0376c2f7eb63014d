package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/toolworks/catalog/cmd/catalog/assets"
	"github.com/toolworks/catalog/cmd/catalog/repository"
	"github.com/toolworks/catalog/cmd/catalog/service"
	"github.com/toolworks/catalog/common/logger"
)

// errorResponse maps service errors onto the HTTP surface. Expected
// outcomes (unknown id, rejected input) carry their detail; storage
// failures are logged and answered with a generic message.
func errorResponse(c echo.Context, log *logger.Logger, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "product not found",
		})

	case errors.Is(err, service.ErrValidation),
		errors.Is(err, assets.ErrInvalidMediaType),
		errors.Is(err, assets.ErrTooLarge):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})

	default:
		log.Error("request failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}
}
