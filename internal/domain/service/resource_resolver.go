package service

import (
	"context"

	"peppers/internal/domain/entity"
)

// CatalogResolver resolves the menu catalog from its configured source
// chain: upstream fetch when a URL is configured, local files otherwise.
type CatalogResolver interface {
	Resolve(ctx context.Context) (*entity.Catalog, error)
}

// ResolvedImage is the output of a successful image resolution: raw bytes,
// a content type, and the cache directive the handler should emit.
type ResolvedImage struct {
	Data         []byte
	ContentType  string
	CacheControl string
}

// ImageResolver resolves product images across priority-ordered local
// directories with an optional authenticated upstream proxy fallback.
type ImageResolver interface {
	// Resolve returns the image for the requested filename, or
	// domain/errors.ErrImageNotFound when every chain step misses.
	Resolve(ctx context.Context, name string) (*ResolvedImage, error)

	// List returns the deduplicated image filenames available locally.
	List(ctx context.Context) ([]string, error)
}
