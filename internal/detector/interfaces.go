package detector

import (
	"image"

	"go-mser-detector/internal/mser"
	"go-mser-detector/pkg/models"
)

// RegionDetector defines the main interface for MSER region detection
type RegionDetector interface {
	// Detect runs detection with the default options
	Detect(img image.Image) models.DetectionResult

	// DetectWithOptions runs detection with flexible configuration
	DetectWithOptions(img image.Image, options DetectionOptions) models.DetectionResult

	// Lifecycle management
	Close() error
}

// RegionMeasurer computes per-region geometry and aggregate statistics
type RegionMeasurer interface {
	// MeasureRegion derives bounding box, centroid and optionally the
	// moment ellipse of a region. Scale maps detection coordinates back to
	// the original image.
	MeasureRegion(m *mser.Mser, darkOnBright bool, scale float64, fitEllipse bool) models.Region

	// AggregateStats summarizes the detected regions
	AggregateStats(regions []models.Region) models.RegionStats
}
