// Package catalog resolves menu data from an upstream origin or bundled
// local files, normalizing heterogeneous payload shapes into one canonical
// catalog.
package catalog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"

	"github.com/pkg/errors"

	"peppers/config"
	"peppers/internal/domain/entity"
	domainerrors "peppers/internal/domain/errors"
	"peppers/internal/domain/service"
)

// localCandidates are the conventional bundled menu locations, consulted in
// order after the configured override path.
var localCandidates = []string{"data/menu.json", "static/menu.json"}

type resolver struct {
	cfg    *config.CatalogConfig
	client *http.Client
	logger *slog.Logger
}

// NewResolver builds the catalog resolution chain. The HTTP client carries
// the configured timeout so a slow upstream cannot stall unrelated requests.
func NewResolver(cfg *config.Config, logger *slog.Logger) service.CatalogResolver {
	return &resolver{
		cfg:    cfg.Catalog,
		client: &http.Client{Timeout: cfg.Catalog.Timeout},
		logger: logger,
	}
}

// Resolve fetches and normalizes the catalog. When an upstream URL is
// configured there is no fallback to local data: a stale menu is worse than
// a visible error.
func (r *resolver) Resolve(ctx context.Context) (*entity.Catalog, error) {
	if r.cfg.UpstreamURL != "" {
		raw, err := r.fetchUpstream(ctx)
		if err != nil {
			r.logger.Warn("Upstream catalog fetch failed", slog.Any("error", err))

			return nil, domainerrors.ErrUpstreamFailed.WrapMessage(err.Error())
		}

		return Normalize(raw)
	}

	raw, err := r.readLocal()
	if err != nil {
		return nil, err
	}

	return Normalize(raw)
}

func (r *resolver) fetchUpstream(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.UpstreamURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build upstream request")
	}

	req.Header.Set("Accept", "application/json")
	if r.cfg.APIKey != "" {
		// The upstream's expected header convention is unknown, so the key
		// is sent under both at once.
		req.Header.Set("X-API-Key", r.cfg.APIKey)
		req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "upstream request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("upstream returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read upstream body")
	}

	return body, nil
}

// readLocal returns the first existing file among the override path and the
// conventional bundled locations. A missing menu degrades to an empty
// catalog rather than an error.
func (r *resolver) readLocal() ([]byte, error) {
	candidates := make([]string, 0, len(localCandidates)+1)
	if r.cfg.LocalPath != "" {
		candidates = append(candidates, r.cfg.LocalPath)
	}
	candidates = append(candidates, localCandidates...)

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read local menu %s", path)
		}
	}

	return []byte("{}"), nil
}

// envelope accepts both payload shapes the upstream is known to produce:
// an already-nested data object, or flat top-level categories/products.
type envelope struct {
	Data       json.RawMessage `json:"data"`
	Categories json.RawMessage `json:"categories"`
	Products   json.RawMessage `json:"products"`
}

// Normalize converts whatever shape was obtained into the canonical catalog.
// Missing fields normalize to empty sequences; a field that is present but
// not a sequence is rejected.
func Normalize(raw []byte) (*entity.Catalog, error) {
	var outer envelope
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("catalog payload is not an object")
	}

	// A data object is authoritative: top-level fields beside it are ignored.
	inner := outer
	if len(outer.Data) > 0 && string(outer.Data) != "null" {
		inner = envelope{}
		if err := json.Unmarshal(outer.Data, &inner); err != nil {
			return nil, domainerrors.ErrValidationFailed.WrapMessage("catalog data field is not an object")
		}
	}

	catalog := &entity.Catalog{
		Categories: []entity.Category{},
		Products:   []entity.Product{},
	}

	if len(inner.Categories) > 0 && string(inner.Categories) != "null" {
		if err := json.Unmarshal(inner.Categories, &catalog.Categories); err != nil {
			return nil, domainerrors.ErrValidationFailed.WrapMessage("categories is not a sequence")
		}
	}
	if len(inner.Products) > 0 && string(inner.Products) != "null" {
		if err := json.Unmarshal(inner.Products, &catalog.Products); err != nil {
			return nil, domainerrors.ErrValidationFailed.WrapMessage("products is not a sequence")
		}
	}

	// Clients compare prices in integer cents, whatever shape the source used.
	for i := range catalog.Products {
		product := &catalog.Products[i]
		product.PriceCents = entity.PriceCents(product.Price)
		for j := range product.SKUs {
			product.SKUs[j].PriceCents = entity.PriceCents(product.SKUs[j].Price)
		}
	}

	// Categories are served in menu order; entries without a sort value go last.
	sort.SliceStable(catalog.Categories, func(i, j int) bool {
		return catalog.Categories[i].SortKey() < catalog.Categories[j].SortKey()
	})

	return catalog, nil
}
