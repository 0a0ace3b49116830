package detector

import (
	"image"
	"image/color"
	"math"
	"testing"

	"go-mser-detector/internal/mser"
	"go-mser-detector/pkg/models"
)

// detectRectRegion runs the core sweep on a bright image containing one dark
// rectangle and returns the accepted region.
func detectRectRegion(t *testing.T, w, h int, rect image.Rectangle) *mser.Mser {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(200)
			if image.Pt(x, y).In(rect) {
				v = 10
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	params := mser.Params{Delta: 5, MinSize: 10, MaxSize: 100, MaxVar: 0.5, MinDiversity: 0.2, DarkToBright: true}
	tree, err := mser.BuildTree(img, params)
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}
	if tree.Size() != 1 {
		t.Fatalf("Expected 1 region, got %d", tree.Size())
	}
	return tree.Nodes()[0]
}

func TestMeasureRegion_Rectangle(t *testing.T) {
	m := detectRectRegion(t, 30, 10, image.Rect(5, 3, 17, 7))
	rm := NewRegionMeasurer()

	region := rm.MeasureRegion(m, true, 1, true)

	if region.Size != 48 {
		t.Errorf("Expected size 48, got %d", region.Size)
	}
	if !region.DarkOnBright {
		t.Error("Expected dark-on-bright flag")
	}
	bb := region.BoundingBox
	if bb.X != 5 || bb.Y != 3 || bb.Width != 12 || bb.Height != 4 {
		t.Errorf("Expected bounding box {5 3 12 4}, got %+v", bb)
	}
	if math.Abs(region.CentroidX-10.5) > 1e-9 || math.Abs(region.CentroidY-4.5) > 1e-9 {
		t.Errorf("Expected centroid (10.5, 4.5), got (%g, %g)", region.CentroidX, region.CentroidY)
	}

	e := region.Ellipse
	if e == nil {
		t.Fatal("Expected an ellipse fit")
	}
	// Uniform rectangle: variance (n^2-1)/12 per axis.
	wantMajor := 2 * math.Sqrt((12*12-1)/12.0)
	wantMinor := 2 * math.Sqrt((4*4-1)/12.0)
	if math.Abs(e.SemiMajor-wantMajor) > 1e-9 {
		t.Errorf("Expected semi-major %g, got %g", wantMajor, e.SemiMajor)
	}
	if math.Abs(e.SemiMinor-wantMinor) > 1e-9 {
		t.Errorf("Expected semi-minor %g, got %g", wantMinor, e.SemiMinor)
	}
	// The major axis must lie along x (angle 0 modulo pi).
	if math.Abs(math.Sin(e.Angle)) > 1e-9 {
		t.Errorf("Expected horizontal major axis, got angle %g", e.Angle)
	}
}

func TestMeasureRegion_Scale(t *testing.T) {
	m := detectRectRegion(t, 30, 10, image.Rect(5, 3, 17, 7))
	rm := NewRegionMeasurer()

	region := rm.MeasureRegion(m, true, 2, false)

	bb := region.BoundingBox
	if bb.X != 10 || bb.Y != 6 || bb.Width != 24 || bb.Height != 8 {
		t.Errorf("Expected scaled bounding box {10 6 24 8}, got %+v", bb)
	}
	if math.Abs(region.CentroidX-21) > 1e-9 || math.Abs(region.CentroidY-9) > 1e-9 {
		t.Errorf("Expected scaled centroid (21, 9), got (%g, %g)", region.CentroidX, region.CentroidY)
	}
	if region.Ellipse != nil {
		t.Error("Expected no ellipse fit when disabled")
	}
	// Size stays in detection pixels; the scale only maps coordinates.
	if region.Size != 48 {
		t.Errorf("Expected size 48, got %d", region.Size)
	}
}

func TestAggregateStats(t *testing.T) {
	rm := NewRegionMeasurer()

	empty := rm.AggregateStats(nil)
	if empty.Count != 0 || empty.MeanScore != 0 || empty.ScoreStdDev != 0 {
		t.Errorf("Expected zero stats for no regions, got %+v", empty)
	}

	single := rm.AggregateStats([]models.Region{{Size: 100, Score: 0.1}})
	if single.Count != 1 || single.MeanScore != 0.1 || single.ScoreStdDev != 0 {
		t.Errorf("Expected {1 100 0.1 0}, got %+v", single)
	}

	stats := rm.AggregateStats([]models.Region{
		{Size: 100, Score: 0.1},
		{Size: 200, Score: 0.3},
	})
	if stats.Count != 2 {
		t.Errorf("Expected count 2, got %d", stats.Count)
	}
	if math.Abs(stats.MeanScore-0.2) > 1e-9 {
		t.Errorf("Expected mean score 0.2, got %g", stats.MeanScore)
	}
	if math.Abs(stats.MeanSize-150) > 1e-9 {
		t.Errorf("Expected mean size 150, got %g", stats.MeanSize)
	}
	if math.Abs(stats.ScoreStdDev-math.Sqrt(0.02)) > 1e-9 {
		t.Errorf("Expected score standard deviation %g, got %g", math.Sqrt(0.02), stats.ScoreStdDev)
	}
}
