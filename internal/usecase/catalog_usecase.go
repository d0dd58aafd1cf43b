package usecase

import (
	"context"

	"peppers/internal/domain/entity"
	"peppers/internal/domain/service"
)

// CatalogUsecase exposes the resolved, normalized menu.
type CatalogUsecase interface {
	GetMenu(ctx context.Context) (*entity.Catalog, error)
}

// ImageUsecase exposes the image resolution chain.
type ImageUsecase interface {
	GetImage(ctx context.Context, name string) (*service.ResolvedImage, error)
	ListImages(ctx context.Context) ([]string, error)
}
