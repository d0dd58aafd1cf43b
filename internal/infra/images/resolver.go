// Package images resolves product images across priority-ordered local
// directories, with fuzzy filename matching and an authenticated upstream
// proxy as the final fallback.
package images

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"peppers/config"
	domainerrors "peppers/internal/domain/errors"
	"peppers/internal/domain/service"
)

// proxyCacheControl is the directive attached to proxied upstream images;
// filenames are content-addressed upstream, so they can be cached hard.
const proxyCacheControl = "public, max-age=31536000, immutable"

// imageContentTypes doubles as the extension allow-list for fuzzy matching.
var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

type resolver struct {
	dirs   []string // Priority order: persistent storage before bundled repository files.
	cfg    *config.ImagesConfig
	client *http.Client
	logger *slog.Logger
}

// NewResolver builds the image resolution chain from configuration.
func NewResolver(cfg *config.Config, logger *slog.Logger) service.ImageResolver {
	dirs := make([]string, 0, 2)
	for _, dir := range []string{cfg.Images.StorageDir, cfg.Images.BundledDir} {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}

	return &resolver{
		dirs:   dirs,
		cfg:    cfg.Images,
		client: &http.Client{Timeout: cfg.Images.Timeout},
		logger: logger,
	}
}

// Resolve walks the chain: exact match, fuzzy match, upstream proxy.
func (r *resolver) Resolve(ctx context.Context, name string) (*service.ResolvedImage, error) {
	if !safeName(name) {
		return nil, domainerrors.ErrImageNotFound
	}

	// Step 1: exact filename match, first directory wins.
	for _, dir := range r.dirs {
		if img := readLocal(filepath.Join(dir, name)); img != nil {
			return img, nil
		}
	}

	// Step 2: fuzzy-normalized stem match within each directory in order.
	for _, dir := range r.dirs {
		if match := bestFuzzyMatch(dir, name); match != "" {
			if img := readLocal(filepath.Join(dir, match)); img != nil {
				return img, nil
			}
		}
	}

	// Step 3: authenticated upstream proxy; any failure falls through.
	if r.cfg.UpstreamBaseURL != "" {
		if img := r.fetchUpstream(ctx, name); img != nil {
			return img, nil
		}
	}

	return nil, domainerrors.ErrImageNotFound
}

// List returns the deduplicated union of image filenames across the local
// directories, sorted for stable output.
func (r *resolver) List(_ context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	names := make([]string, 0)

	for _, dir := range r.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !isImageFile(entry.Name()) {
				continue
			}
			if _, ok := seen[entry.Name()]; ok {
				continue
			}
			seen[entry.Name()] = struct{}{}
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)

	return names, nil
}

func (r *resolver) fetchUpstream(ctx context.Context, name string) *service.ResolvedImage {
	fetchURL := strings.TrimSuffix(r.cfg.UpstreamBaseURL, "/") + "/" + url.PathEscape(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil
	}
	if r.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", r.cfg.APIKey)
		req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("Upstream image fetch failed", slog.String("name", name), slog.Any("error", err))

		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &service.ResolvedImage{
		Data:         data,
		ContentType:  contentType,
		CacheControl: proxyCacheControl,
	}
}

// readLocal returns the image at path, or nil when it does not exist or is
// not a regular file.
func readLocal(path string) *service.ResolvedImage {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	contentType := imageContentTypes[strings.ToLower(filepath.Ext(path))]
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &service.ResolvedImage{Data: data, ContentType: contentType}
}

// bestFuzzyMatch scans dir for image files whose normalized stem equals the
// requested name's normalized stem, and picks the winner by the documented
// tie-break order: exact case-insensitive stem, then filenames free of
// spaces and parentheses, then shortest, then lexicographic.
func bestFuzzyMatch(dir, requested string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	reqStem := stem(requested)
	reqNorm := normalizeStem(reqStem)
	if reqNorm == "" {
		return ""
	}

	candidates := make([]string, 0, 4)
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		if normalizeStem(stem(entry.Name())) == reqNorm {
			candidates = append(candidates, entry.Name())
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]

		aExact := strings.EqualFold(stem(a), reqStem)
		bExact := strings.EqualFold(stem(b), reqStem)
		if aExact != bExact {
			return aExact
		}

		aClean := isCleanName(a)
		bClean := isCleanName(b)
		if aClean != bClean {
			return aClean
		}

		if len(a) != len(b) {
			return len(a) < len(b)
		}

		return a < b
	})

	return candidates[0]
}

// safeName rejects anything that could escape the image directories.
func safeName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}

	return !strings.ContainsAny(name, "/\\")
}

func isImageFile(name string) bool {
	_, ok := imageContentTypes[strings.ToLower(filepath.Ext(name))]

	return ok
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// normalizeStem strips every non-alphanumeric character and lower-cases the
// rest, so "Margherita (1)" and "margherita-1" compare equal.
func normalizeStem(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}

	return b.String()
}

func isCleanName(name string) bool {
	return !strings.ContainsAny(name, " ()")
}
