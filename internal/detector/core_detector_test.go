package detector

import (
	"image"
	"image/color"
	"testing"
)

// createSquareImage creates a bright test image with a dark square at the
// given position
func createSquareImage(width, height int, square image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA{230, 230, 230, 255}
			if image.Pt(x, y).In(square) {
				c = color.RGBA{20, 20, 20, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestNewRegionDetector(t *testing.T) {
	det, err := NewRegionDetector()
	if err != nil {
		t.Fatalf("Failed to create region detector: %v", err)
	}
	if det == nil {
		t.Fatal("Expected non-nil detector")
	}
	if err := det.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestDetect_DarkSquare(t *testing.T) {
	det, err := NewRegionDetector()
	if err != nil {
		t.Fatalf("Failed to create region detector: %v", err)
	}
	defer det.Close()

	img := createSquareImage(200, 200, image.Rect(80, 80, 120, 120))
	result := det.Detect(img)

	if result.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}
	if result.ProcessingTimeSec <= 0 {
		t.Error("Expected processing time to be positive")
	}
	if result.ImageWidth != 200 || result.ImageHeight != 200 {
		t.Errorf("Expected 200x200 dimensions, got %dx%d", result.ImageWidth, result.ImageHeight)
	}
	if result.Scale != 1 {
		t.Errorf("Expected no downscaling, got scale %g", result.Scale)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("Expected no errors, got %v", result.Errors)
	}

	squareIdx := -1
	for i, r := range result.Regions {
		if r.DarkOnBright && r.Size == 1600 {
			squareIdx = i
			break
		}
	}
	if squareIdx < 0 {
		t.Fatalf("Expected a dark region of 1600 pixels, got %+v", result.Regions)
	}
	r := result.Regions[squareIdx]
	if r.Score != 0 {
		t.Errorf("Expected score 0 for a flat square, got %g", r.Score)
	}
	bb := r.BoundingBox
	if bb.X != 80 || bb.Y != 80 || bb.Width != 40 || bb.Height != 40 {
		t.Errorf("Expected bounding box {80 80 40 40}, got %+v", bb)
	}
	if r.CentroidX < 99 || r.CentroidX > 100 || r.CentroidY < 99 || r.CentroidY > 100 {
		t.Errorf("Expected centroid near (99.5, 99.5), got (%g, %g)", r.CentroidX, r.CentroidY)
	}
	if r.Ellipse == nil {
		t.Fatal("Expected an ellipse fit")
	}
	if diff := r.Ellipse.SemiMajor - r.Ellipse.SemiMinor; diff > 0.01 {
		t.Errorf("Expected near-equal axes for a square, got %g and %g", r.Ellipse.SemiMajor, r.Ellipse.SemiMinor)
	}

	if result.Stats.Count != len(result.Regions) {
		t.Errorf("Expected stats count %d, got %d", len(result.Regions), result.Stats.Count)
	}
}

func TestDetectWithOptions_FastMode(t *testing.T) {
	det, err := NewRegionDetector()
	if err != nil {
		t.Fatalf("Failed to create region detector: %v", err)
	}
	defer det.Close()

	img := createSquareImage(200, 200, image.Rect(80, 80, 120, 120))
	result := det.DetectWithOptions(img, FastOptions())

	if len(result.Regions) == 0 {
		t.Fatal("Expected regions in fast mode")
	}
	for _, r := range result.Regions {
		if !r.DarkOnBright {
			t.Error("Expected only dark-on-bright regions with the reverse sweep skipped")
		}
		if r.Ellipse != nil {
			t.Error("Expected no ellipse fit in fast mode")
		}
	}
}

func TestDetectWithOptions_Downscale(t *testing.T) {
	det, err := NewRegionDetector()
	if err != nil {
		t.Fatalf("Failed to create region detector: %v", err)
	}
	defer det.Close()

	img := createSquareImage(1600, 800, image.Rect(400, 200, 600, 400))
	options := DefaultOptions().WithMaxDimension(400).WithoutBrightToDark()
	result := det.DetectWithOptions(img, options)

	if result.Scale != 4 {
		t.Fatalf("Expected scale 4, got %g", result.Scale)
	}
	if result.ImageWidth != 1600 || result.ImageHeight != 800 {
		t.Errorf("Expected original dimensions, got %dx%d", result.ImageWidth, result.ImageHeight)
	}

	best := -1
	for i, r := range result.Regions {
		if best < 0 || r.Size > result.Regions[best].Size {
			best = i
		}
	}
	if best < 0 {
		t.Fatal("Expected at least one region")
	}
	bb := result.Regions[best].BoundingBox
	// Resampling softens the edges; the reported box must still be close to
	// the original square.
	if !near(bb.X, 400, 20) || !near(bb.Y, 200, 20) || !near(bb.Width, 200, 40) || !near(bb.Height, 200, 40) {
		t.Errorf("Expected bounding box near {400 200 200 200}, got %+v", bb)
	}
}

func near(got, want, tolerance int) bool {
	d := got - want
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}

func TestDetectWithOptions_InvalidParams(t *testing.T) {
	det, err := NewRegionDetector()
	if err != nil {
		t.Fatalf("Failed to create region detector: %v", err)
	}
	defer det.Close()

	options := DefaultOptions()
	options.Delta = 0
	result := det.DetectWithOptions(createSquareImage(50, 50, image.Rect(10, 10, 30, 30)), options)

	if len(result.Errors) == 0 {
		t.Fatal("Expected parameter errors to be reported")
	}
	if len(result.Regions) != 0 {
		t.Errorf("Expected no regions, got %d", len(result.Regions))
	}
}

func TestDetectWithOptions_BothDirections(t *testing.T) {
	det, err := NewRegionDetector()
	if err != nil {
		t.Fatalf("Failed to create region detector: %v", err)
	}
	defer det.Close()

	// A dark square and a bright square on a mid-gray background.
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			c := color.RGBA{128, 128, 128, 255}
			switch {
			case image.Pt(x, y).In(image.Rect(30, 30, 70, 70)):
				c = color.RGBA{10, 10, 10, 255}
			case image.Pt(x, y).In(image.Rect(130, 30, 170, 70)):
				c = color.RGBA{245, 245, 245, 255}
			}
			img.Set(x, y, c)
		}
	}

	result := det.DetectWithOptions(img, DefaultOptions())

	var dark, bright bool
	for _, r := range result.Regions {
		if r.Size == 1600 {
			if r.DarkOnBright {
				dark = true
			} else {
				bright = true
			}
		}
	}
	if !dark {
		t.Error("Expected the dark square from the dark-to-bright sweep")
	}
	if !bright {
		t.Error("Expected the bright square from the bright-to-dark sweep")
	}
}
