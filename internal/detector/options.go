package detector

import "go-mser-detector/internal/mser"

// DetectionOptions provides flexible configuration for region detection
type DetectionOptions struct {
	// MSER parameters
	Delta        uint8
	MinSize      int
	MaxSize      int
	MaxVar       float64
	MinDiversity float64

	// Sweep selection. The dark-to-bright sweep always runs; the reverse
	// sweep finds bright-on-dark regions and can be skipped.
	SkipBrightToDark bool

	// Preprocessing
	// MaxDimension caps the longer image side before detection; 0 disables
	// downscaling. Region coordinates are always reported in the original
	// image space.
	MaxDimension int

	// Feature toggles
	SkipEllipseFit bool

	// OCR-specific options
	OCRMode         bool
	OCRExpectedText string
	OCRLanguage     string

	// Performance options
	UseWorkerPool bool
	MaxWorkers    int
}

// DefaultOptions returns default detection options. The MSER parameter
// defaults follow the values commonly used for natural images.
func DefaultOptions() DetectionOptions {
	return DetectionOptions{
		Delta:            5,
		MinSize:          60,
		MaxSize:          14400,
		MaxVar:           0.25,
		MinDiversity:     0.2,
		SkipBrightToDark: false,
		MaxDimension:     1600,
		SkipEllipseFit:   false,
		UseWorkerPool:    true,
		MaxWorkers:       0, // Use default CPU count
	}
}

// TextOptions returns options tuned for text region detection
func TextOptions() DetectionOptions {
	opts := DefaultOptions()
	opts.MinSize = 30       // Small glyphs matter for text
	opts.MaxVar = 0.2       // Stricter stability for letter shapes
	opts.MinDiversity = 0.5 // Collapse nested near-duplicates aggressively
	opts.OCRMode = true
	opts.OCRLanguage = "eng"
	return opts
}

// FastOptions returns options for fast detection
func FastOptions() DetectionOptions {
	opts := DefaultOptions()
	opts.MaxDimension = 800
	opts.SkipBrightToDark = true
	opts.SkipEllipseFit = true
	return opts
}

// WithOCR returns options with OCR enabled and expected text
func (opts DetectionOptions) WithOCR(expectedText string) DetectionOptions {
	opts.OCRMode = true
	opts.OCRExpectedText = expectedText
	if opts.OCRLanguage == "" {
		opts.OCRLanguage = "eng"
	}
	return opts
}

// WithSizeBounds allows setting custom region size bounds
func (opts DetectionOptions) WithSizeBounds(minSize, maxSize int) DetectionOptions {
	opts.MinSize = minSize
	opts.MaxSize = maxSize
	return opts
}

// WithDelta sets the threshold offset of the instability score
func (opts DetectionOptions) WithDelta(delta uint8) DetectionOptions {
	opts.Delta = delta
	return opts
}

// WithoutBrightToDark disables the bright-on-dark sweep
func (opts DetectionOptions) WithoutBrightToDark() DetectionOptions {
	opts.SkipBrightToDark = true
	return opts
}

// WithMaxDimension sets the downscale cap; 0 disables downscaling
func (opts DetectionOptions) WithMaxDimension(maxDimension int) DetectionOptions {
	opts.MaxDimension = maxDimension
	return opts
}

// MserParams converts the options into core sweep parameters for the given
// direction.
func (opts DetectionOptions) MserParams(darkToBright bool) mser.Params {
	return mser.Params{
		Delta:        opts.Delta,
		MinSize:      opts.MinSize,
		MaxSize:      opts.MaxSize,
		MaxVar:       opts.MaxVar,
		MinDiversity: opts.MinDiversity,
		DarkToBright: darkToBright,
	}
}
