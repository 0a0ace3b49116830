package repository

import (
	"context"
	"image"
	"net/http"
	"path"
	"strings"
	"time"

	"go-mser-detector/internal/storage"
	"go-mser-detector/pkg/models"
	"go-mser-detector/pkg/validation"
)

// HTTPImageRepository implements ImageRepository on top of an ImageFetcher
type HTTPImageRepository struct {
	fetcher   storage.ImageFetcher
	validator *validation.URLValidator
	client    *http.Client
}

// NewHTTPImageRepository creates a new HTTP-based image repository
func NewHTTPImageRepository(fetcher storage.ImageFetcher) ImageRepository {
	return &HTTPImageRepository{
		fetcher:   fetcher,
		validator: validation.NewURLValidator(),
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchImage retrieves an image from a URL
func (r *HTTPImageRepository) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	return r.fetcher.FetchImage(ctx, imageURL)
}

// ValidateImageURL validates if the provided URL is acceptable
func (r *HTTPImageRepository) ValidateImageURL(imageURL string) error {
	return r.validator.ValidateImageURL(imageURL)
}

// GetImageMetadata issues a HEAD request for content type and length. Width,
// height and format stay zero-valued when the server does not expose them.
func (r *HTTPImageRepository) GetImageMetadata(ctx context.Context, imageURL string) (*models.ImageMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return nil, ErrInvalidImageURL
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrImageNotFound
	}

	meta := &models.ImageMetadata{
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Format:        formatFromContentType(resp.Header.Get("Content-Type"), imageURL),
	}
	return meta, nil
}

func formatFromContentType(contentType, imageURL string) string {
	if idx := strings.Index(contentType, "image/"); idx >= 0 {
		format := contentType[idx+len("image/"):]
		if sep := strings.IndexAny(format, "; "); sep >= 0 {
			format = format[:sep]
		}
		return format
	}
	// Fall back to the URL extension
	ext := strings.TrimPrefix(path.Ext(imageURL), ".")
	return strings.ToLower(ext)
}
