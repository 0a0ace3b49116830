package models

// DetectionRequest represents a request for MSER region detection
type DetectionRequest struct {
	URL          string `json:"url" binding:"required,url"`
	IsOCR        bool   `json:"is_ocr,omitempty"`
	ExpectedText string `json:"expected_text,omitempty"`

	// Preset selects a named options preset: "default", "text" or "fast".
	Preset string `json:"preset,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// DetectionResponse represents the response from region detection
type DetectionResponse struct {
	ID                string      `json:"id"`
	ImageURL          string      `json:"image_url"`
	Timestamp         string      `json:"timestamp"`
	ProcessingTimeSec float64     `json:"processing_time_sec"`
	ImageWidth        int         `json:"image_width"`
	ImageHeight       int         `json:"image_height"`
	Regions           []Region    `json:"regions"`
	Stats             RegionStats `json:"stats"`
	OCRResult         *OCRResult  `json:"ocr_result,omitempty"`
	Errors            []string    `json:"errors,omitempty"`
}
