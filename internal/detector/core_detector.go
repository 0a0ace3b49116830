package detector

import (
	"image"
	"image/draw"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"go-mser-detector/internal/mser"
	"go-mser-detector/pkg/models"
)

// coreDetector implements RegionDetector and orchestrates preprocessing,
// the threshold sweeps and region measurement
type coreDetector struct {
	workerPool *WorkerPool
	measurer   RegionMeasurer
	grayPool   sync.Pool
}

// NewRegionDetector creates a new region detector with all components
func NewRegionDetector() (RegionDetector, error) {
	workerPool := NewWorkerPool(0) // Use default CPU count
	workerPool.Start()

	return &coreDetector{
		workerPool: workerPool,
		measurer:   NewRegionMeasurer(),
		grayPool: sync.Pool{
			New: func() interface{} {
				return &image.Gray{}
			},
		},
	}, nil
}

// Detect runs detection with the default options
func (cd *coreDetector) Detect(img image.Image) models.DetectionResult {
	return cd.DetectWithOptions(img, DefaultOptions())
}

type sweepResult struct {
	regions []models.Region
	err     error
}

// DetectWithOptions runs region detection with flexible configuration
func (cd *coreDetector) DetectWithOptions(img image.Image, options DetectionOptions) models.DetectionResult {
	start := time.Now()

	bounds := img.Bounds()
	result := models.DetectionResult{
		Timestamp:   start,
		ImageWidth:  bounds.Dx(),
		ImageHeight: bounds.Dy(),
		Scale:       1,
	}

	// Record expected text so downstream OCR can score against it
	if options.OCRExpectedText != "" {
		result.OCRResult = &models.OCRResult{ExpectedText: options.OCRExpectedText}
	}

	working := img
	if options.MaxDimension > 0 && (bounds.Dx() > options.MaxDimension || bounds.Dy() > options.MaxDimension) {
		working = imaging.Fit(img, options.MaxDimension, options.MaxDimension, imaging.Lanczos)
		if wb := working.Bounds(); wb.Dx() > 0 {
			result.Scale = float64(bounds.Dx()) / float64(wb.Dx())
		}
	}

	// Convert to grayscale for the sweeps
	gray := cd.grayPool.Get().(*image.Gray)
	defer cd.grayPool.Put(gray)
	wb := working.Bounds()
	*gray = *image.NewGray(wb)
	draw.Draw(gray, wb, working, wb.Min, draw.Src)

	directions := []bool{true}
	if !options.SkipBrightToDark {
		directions = append(directions, false)
	}

	// Each sweep is sequential internally; opposite directions are
	// independent and share the grayscale image read-only.
	sweeps := make([]sweepResult, len(directions))
	if options.UseWorkerPool && len(directions) > 1 {
		var wg sync.WaitGroup
		for i, dir := range directions {
			i, dir := i, dir
			wg.Add(1)
			cd.workerPool.Submit(func() {
				defer wg.Done()
				sweeps[i] = cd.sweep(gray, dir, options, result.Scale)
			})
		}
		wg.Wait()
	} else {
		for i, dir := range directions {
			sweeps[i] = cd.sweep(gray, dir, options, result.Scale)
		}
	}

	for _, sr := range sweeps {
		if sr.err != nil {
			result.Errors = append(result.Errors, sr.err.Error())
			continue
		}
		result.Regions = append(result.Regions, sr.regions...)
	}

	result.Stats = cd.measurer.AggregateStats(result.Regions)
	result.ProcessingTimeSec = time.Since(start).Seconds()
	return result
}

// sweep runs one full detection pass in the given direction
func (cd *coreDetector) sweep(gray *image.Gray, darkToBright bool, options DetectionOptions, scale float64) sweepResult {
	tree, err := mser.BuildTree(gray, options.MserParams(darkToBright))
	if err != nil {
		return sweepResult{err: err}
	}

	regions := make([]models.Region, 0, tree.Size())
	for _, m := range tree.Nodes() {
		regions = append(regions, cd.measurer.MeasureRegion(m, darkToBright, scale, !options.SkipEllipseFit))
	}
	return sweepResult{regions: regions}
}

// Close shuts down the detector's worker pool
func (cd *coreDetector) Close() error {
	cd.workerPool.Close()
	return nil
}
