package models

import "time"

// DetectionResult represents the complete result of MSER region detection
type DetectionResult struct {
	ID                string    `json:"id,omitempty"`
	ImageURL          string    `json:"image_url,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
	ProcessingTimeSec float64   `json:"processing_time_sec"`

	// Dimensions of the analyzed image and the downscale factor applied
	// before detection (1 when the image was processed at full size).
	ImageWidth  int     `json:"image_width"`
	ImageHeight int     `json:"image_height"`
	Scale       float64 `json:"scale"`

	// Detected regions across all requested sweep directions
	Regions []Region `json:"regions"`

	// Aggregate statistics over the detected regions
	Stats RegionStats `json:"stats"`

	// OCR specific (optional)
	OCRResult *OCRResult `json:"ocr_result,omitempty"`

	// Non-fatal detection errors
	Errors []string `json:"errors,omitempty"`
}

// Region represents one maximally stable extremal region. Coordinates are in
// the original image's coordinate space, even when detection ran on a
// downscaled copy.
type Region struct {
	Size         int     `json:"size"`
	Threshold    uint8   `json:"threshold"`
	Score        float64 `json:"score"`
	DarkOnBright bool    `json:"dark_on_bright"`

	BoundingBox BoundingBox `json:"bounding_box"`
	CentroidX   float64     `json:"centroid_x"`
	CentroidY   float64     `json:"centroid_y"`

	// Ellipse fitted from second-order pixel moments (optional)
	Ellipse *EllipseFit `json:"ellipse,omitempty"`
}

// BoundingBox is an axis-aligned pixel rectangle
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// EllipseFit describes the 2-sigma covariance ellipse of a region's pixels
type EllipseFit struct {
	CenterX   float64 `json:"center_x"`
	CenterY   float64 `json:"center_y"`
	SemiMajor float64 `json:"semi_major"`
	SemiMinor float64 `json:"semi_minor"`
	// Angle is the orientation of the major axis in radians, measured from
	// the positive x axis.
	Angle float64 `json:"angle"`
}

// RegionStats represents aggregate statistics over detected regions
type RegionStats struct {
	Count       int     `json:"count"`
	MeanSize    float64 `json:"mean_size,omitempty"`
	MeanScore   float64 `json:"mean_score,omitempty"`
	ScoreStdDev float64 `json:"score_std_dev,omitempty"`
}

// OCRResult represents OCR results over the detected text regions
type OCRResult struct {
	ExtractedText string  `json:"extracted_text"`
	ExpectedText  string  `json:"expected_text,omitempty"`
	Confidence    float64 `json:"confidence"`

	// Error rates against the expected text
	WER      float64 `json:"word_error_rate,omitempty"`
	CER      float64 `json:"character_error_rate,omitempty"`
	OCRError string  `json:"ocr_error,omitempty"`
}

// ImageMetadata contains metadata about a fetched image
type ImageMetadata struct {
	ContentType   string `json:"content_type"`
	ContentLength int64  `json:"content_length"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Format        string `json:"format"`
}

// ValidationError represents a structured validation error
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}
