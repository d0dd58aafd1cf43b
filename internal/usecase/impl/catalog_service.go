package impl

import (
	"context"
	"log/slog"

	"peppers/internal/domain/entity"
	"peppers/internal/domain/service"
	"peppers/internal/usecase"

	"go.uber.org/fx"
)

// catalogService implements the CatalogUsecase and ImageUsecase interfaces
// by delegating to the infrastructure resolvers.
type catalogService struct {
	catalog service.CatalogResolver
	images  service.ImageResolver
	logger  *slog.Logger
}

// CatalogServiceParams holds dependencies for catalogService, injected by Fx.
type CatalogServiceParams struct {
	fx.In

	Catalog service.CatalogResolver
	Images  service.ImageResolver
	Logger  *slog.Logger
}

// CatalogServiceResult bundles the two usecase interfaces the service
// satisfies.
type CatalogServiceResult struct {
	fx.Out

	Catalog usecase.CatalogUsecase
	Images  usecase.ImageUsecase
}

// NewCatalogService is the constructor for catalogService.
func NewCatalogService(params CatalogServiceParams) CatalogServiceResult {
	srv := &catalogService{
		catalog: params.Catalog,
		images:  params.Images,
		logger:  params.Logger,
	}

	return CatalogServiceResult{Catalog: srv, Images: srv}
}

func (srv *catalogService) GetMenu(ctx context.Context) (*entity.Catalog, error) {
	return srv.catalog.Resolve(ctx)
}

func (srv *catalogService) GetImage(ctx context.Context, name string) (*service.ResolvedImage, error) {
	return srv.images.Resolve(ctx, name)
}

func (srv *catalogService) ListImages(ctx context.Context) ([]string, error) {
	return srv.images.List(ctx)
}
