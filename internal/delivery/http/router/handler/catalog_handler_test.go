package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"peppers/internal/domain/entity"
	domainerrors "peppers/internal/domain/errors"
	"peppers/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalogUsecase struct {
	catalog *entity.Catalog
	err     error
}

func (s *stubCatalogUsecase) GetMenu(context.Context) (*entity.Catalog, error) {
	return s.catalog, s.err
}

type stubImageUsecase struct {
	image *service.ResolvedImage
	names []string
	err   error
}

func (s *stubImageUsecase) GetImage(context.Context, string) (*service.ResolvedImage, error) {
	return s.image, s.err
}

func (s *stubImageUsecase) ListImages(context.Context) ([]string, error) {
	return s.names, s.err
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCatalogHandler_GetMenu_Envelope(t *testing.T) {
	sort := 1
	handler := NewCatalogHandler(&stubCatalogUsecase{catalog: &entity.Catalog{
		Categories: []entity.Category{{Ref: "pizzas", Name: "Pizzas", Sort: &sort}},
		Products:   []entity.Product{{Ref: "margherita", Name: "Margherita", Price: "14.50"}},
	}}, &stubImageUsecase{}, newDiscardLogger())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/public/menu", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler.GetMenu(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Ok   bool `json:"ok"`
		Data struct {
			Categories []map[string]any `json:"categories"`
			Products   []map[string]any `json:"products"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Ok)
	require.Len(t, body.Data.Categories, 1)
	require.Len(t, body.Data.Products, 1)
	assert.Equal(t, "Pizzas", body.Data.Categories[0]["name"])
}

func TestCatalogHandler_GetImage_ServesBytesWithCacheControl(t *testing.T) {
	handler := NewCatalogHandler(&stubCatalogUsecase{}, &stubImageUsecase{image: &service.ResolvedImage{
		Data:         []byte("image-bytes"),
		ContentType:  "image/jpeg",
		CacheControl: "public, max-age=31536000, immutable",
	}}, newDiscardLogger())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/images/margherita.jpg", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues("margherita.jpg")

	require.NoError(t, handler.GetImage(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image-bytes", rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "image/jpeg")
	assert.Equal(t, "public, max-age=31536000, immutable", rec.Header().Get("Cache-Control"))
}

func TestCatalogHandler_GetImage_NotFoundPropagates(t *testing.T) {
	handler := NewCatalogHandler(&stubCatalogUsecase{}, &stubImageUsecase{err: domainerrors.ErrImageNotFound}, newDiscardLogger())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/images/missing.jpg", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues("missing.jpg")

	err := handler.GetImage(c)

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrImageNotFound)
}
