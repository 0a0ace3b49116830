package repository

import (
	"context"
	"image"

	"go-mser-detector/pkg/models"
)

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// FetchImage retrieves an image from a URL
	FetchImage(ctx context.Context, imageURL string) (image.Image, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error

	// GetImageMetadata retrieves metadata about an image without downloading it
	GetImageMetadata(ctx context.Context, imageURL string) (*models.ImageMetadata, error)
}

// DetectionRepository defines the interface for detection result operations
type DetectionRepository interface {
	// SaveDetection stores a detection result
	SaveDetection(ctx context.Context, result *models.DetectionResult) error

	// GetDetection retrieves a stored detection result by ID
	GetDetection(ctx context.Context, id string) (*models.DetectionResult, error)

	// GetDetectionHistory retrieves detection history for a specific image URL
	GetDetectionHistory(ctx context.Context, imageURL string) ([]*models.DetectionResult, error)
}
