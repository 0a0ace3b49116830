package detector

import (
	"image"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"go-mser-detector/internal/mser"
	"go-mser-detector/pkg/models"
)

// regionMeasurer implements RegionMeasurer using pixel moments
type regionMeasurer struct{}

// NewRegionMeasurer creates a new moment-based region measurer
func NewRegionMeasurer() RegionMeasurer {
	return &regionMeasurer{}
}

// MeasureRegion derives bounding box, centroid and optionally the moment
// ellipse of a region, mapped back to original image coordinates.
func (rm *regionMeasurer) MeasureRegion(m *mser.Mser, darkOnBright bool, scale float64, fitEllipse bool) models.Region {
	pts := m.Points()

	minX, minY := math.MaxInt32, math.MaxInt32
	maxX, maxY := math.MinInt32, math.MinInt32
	var sx, sy float64
	for _, p := range pts {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
		sx += float64(p.X)
		sy += float64(p.Y)
	}

	n := float64(len(pts))
	mx, my := sx/n, sy/n

	region := models.Region{
		Size:         m.Size(),
		Threshold:    m.Value(),
		Score:        m.Score(),
		DarkOnBright: darkOnBright,
		CentroidX:    mx * scale,
		CentroidY:    my * scale,
		BoundingBox: models.BoundingBox{
			X:      int(math.Round(float64(minX) * scale)),
			Y:      int(math.Round(float64(minY) * scale)),
			Width:  int(math.Round(float64(maxX-minX+1) * scale)),
			Height: int(math.Round(float64(maxY-minY+1) * scale)),
		},
	}

	if fitEllipse {
		region.Ellipse = fitMomentEllipse(pts, mx, my, scale)
	}
	return region
}

// fitMomentEllipse fits the 2-sigma ellipse of the pixel distribution via an
// eigendecomposition of the second-order central moments.
func fitMomentEllipse(pts []image.Point, mx, my, scale float64) *models.EllipseFit {
	var cxx, cyy, cxy float64
	for _, p := range pts {
		dx := float64(p.X) - mx
		dy := float64(p.Y) - my
		cxx += dx * dx
		cyy += dy * dy
		cxy += dx * dy
	}
	n := float64(len(pts))
	cov := mat.NewSymDense(2, []float64{cxx / n, cxy / n, cxy / n, cyy / n})

	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return nil
	}
	vals := eig.Values(nil) // ascending
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	minor := vals[0]
	if minor < 0 {
		minor = 0
	}
	return &models.EllipseFit{
		CenterX:   mx * scale,
		CenterY:   my * scale,
		SemiMajor: 2 * math.Sqrt(vals[1]) * scale,
		SemiMinor: 2 * math.Sqrt(minor) * scale,
		Angle:     math.Atan2(vecs.At(1, 1), vecs.At(0, 1)),
	}
}

// AggregateStats summarizes the detected regions
func (rm *regionMeasurer) AggregateStats(regions []models.Region) models.RegionStats {
	stats := models.RegionStats{Count: len(regions)}
	if len(regions) == 0 {
		return stats
	}

	scores := make([]float64, len(regions))
	sizes := make([]float64, len(regions))
	for i, r := range regions {
		scores[i] = r.Score
		sizes[i] = float64(r.Size)
	}

	stats.MeanScore = stat.Mean(scores, nil)
	stats.MeanSize = stat.Mean(sizes, nil)
	if len(regions) > 1 {
		stats.ScoreStdDev = stat.StdDev(scores, nil)
	}
	return stats
}
