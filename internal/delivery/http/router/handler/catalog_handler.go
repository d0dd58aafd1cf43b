package handler

import (
	"log/slog"
	"net/http"

	"peppers/internal/delivery/http/response"
	"peppers/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CatalogHandler serves the public menu and product images.
type CatalogHandler struct {
	catalog usecase.CatalogUsecase
	images  usecase.ImageUsecase
	logger  *slog.Logger
}

// NewCatalogHandler is the constructor for CatalogHandler, injected by Fx.
func NewCatalogHandler(catalog usecase.CatalogUsecase, images usecase.ImageUsecase, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		images:  images,
		logger:  logger,
	}
}

// GetMenu serves the normalized menu under the canonical data envelope.
func (h *CatalogHandler) GetMenu(c echo.Context) error {
	catalog, err := h.catalog.GetMenu(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, catalog, "")
}

// ListImages returns the image filenames available locally.
func (h *CatalogHandler) ListImages(c echo.Context) error {
	names, err := h.images.ListImages(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, names, "")
}

// GetImage serves one image through the resolution chain. The handler emits
// raw bytes, not the JSON envelope.
func (h *CatalogHandler) GetImage(c echo.Context) error {
	img, err := h.images.GetImage(c.Request().Context(), c.Param("name"))
	if err != nil {
		return errors.WithStack(err)
	}

	if img.CacheControl != "" {
		c.Response().Header().Set("Cache-Control", img.CacheControl)
	}

	return c.Blob(http.StatusOK, img.ContentType, img.Data)
}
