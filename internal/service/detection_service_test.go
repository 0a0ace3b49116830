package service

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"go-mser-detector/internal/detector"
	apperrors "go-mser-detector/internal/errors"
	"go-mser-detector/internal/repository"
	"go-mser-detector/pkg/models"
)

// fakeImageRepo serves a fixed image and validation result
type fakeImageRepo struct {
	img         image.Image
	fetchErr    error
	validateErr error
}

func (f *fakeImageRepo) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.img, nil
}

func (f *fakeImageRepo) ValidateImageURL(imageURL string) error {
	return f.validateErr
}

func (f *fakeImageRepo) GetImageMetadata(ctx context.Context, imageURL string) (*models.ImageMetadata, error) {
	return &models.ImageMetadata{}, nil
}

// fakeDetector returns a canned detection result
type fakeDetector struct {
	result  models.DetectionResult
	gotOpts detector.DetectionOptions
}

func (f *fakeDetector) Detect(img image.Image) models.DetectionResult {
	return f.DetectWithOptions(img, detector.DefaultOptions())
}

func (f *fakeDetector) DetectWithOptions(img image.Image, options detector.DetectionOptions) models.DetectionResult {
	f.gotOpts = options
	result := f.result
	if options.OCRExpectedText != "" {
		result.OCRResult = &models.OCRResult{ExpectedText: options.OCRExpectedText}
	}
	return result
}

func (f *fakeDetector) Close() error { return nil }

// fakeOCREngine recognizes a fixed string
type fakeOCREngine struct {
	text      string
	err       error
	available bool
	gotRegion image.Rectangle
}

func (f *fakeOCREngine) Recognize(img image.Image) (string, error) {
	return f.text, f.err
}

func (f *fakeOCREngine) RecognizeRegion(img image.Image, r image.Rectangle) (string, error) {
	f.gotRegion = r
	return f.text, f.err
}

func (f *fakeOCREngine) Available() bool { return f.available }

func (f *fakeOCREngine) Close() error { return nil }

func testImage() image.Image {
	return image.NewGray(image.Rect(0, 0, 10, 10))
}

func cannedResult() models.DetectionResult {
	return models.DetectionResult{
		Timestamp:   time.Now(),
		ImageWidth:  10,
		ImageHeight: 10,
		Scale:       1,
		Regions: []models.Region{
			{Size: 40, Score: 0.1, BoundingBox: models.BoundingBox{X: 2, Y: 3, Width: 4, Height: 5}},
		},
		Stats: models.RegionStats{Count: 1, MeanSize: 40, MeanScore: 0.1},
	}
}

func newTestService(imageRepo repository.ImageRepository, det detector.RegionDetector, engine *fakeOCREngine) (DetectionService, repository.DetectionRepository) {
	resultRepo := repository.NewMemoryDetectionRepository()
	svc := NewDetectionService(imageRepo, resultRepo, det, engine, nil)
	return svc, resultRepo
}

func TestDetectRegions_Success(t *testing.T) {
	svc, resultRepo := newTestService(
		&fakeImageRepo{img: testImage()},
		&fakeDetector{result: cannedResult()},
		&fakeOCREngine{},
	)

	response, err := svc.DetectRegions(context.Background(), "http://example.com/img.png")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if response.ImageURL != "http://example.com/img.png" {
		t.Errorf("Expected image URL in response, got %q", response.ImageURL)
	}
	if len(response.Regions) != 1 {
		t.Fatalf("Expected 1 region, got %d", len(response.Regions))
	}
	if response.Stats.Count != 1 {
		t.Errorf("Expected stats count 1, got %d", response.Stats.Count)
	}

	// Result must be retrievable through the history
	history, err := resultRepo.GetDetectionHistory(context.Background(), "http://example.com/img.png")
	if err != nil {
		t.Fatalf("Expected no history error, got %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 stored result, got %d", len(history))
	}
	if history[0].ID == "" {
		t.Error("Expected stored result to have an ID")
	}
	if response.ID != history[0].ID {
		t.Errorf("Expected response ID %q to match the stored result, got %q", history[0].ID, response.ID)
	}
}

func TestDetectRegions_InvalidURL(t *testing.T) {
	svc, _ := newTestService(
		&fakeImageRepo{validateErr: errors.New("bad url")},
		&fakeDetector{result: cannedResult()},
		&fakeOCREngine{},
	)

	_, err := svc.DetectRegions(context.Background(), "not a url")
	if err == nil {
		t.Fatal("Expected error for invalid URL")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestDetectRegions_FetchError(t *testing.T) {
	svc, _ := newTestService(
		&fakeImageRepo{fetchErr: errors.New("connection refused")},
		&fakeDetector{result: cannedResult()},
		&fakeOCREngine{},
	)

	_, err := svc.DetectRegions(context.Background(), "http://example.com/img.png")
	if err == nil {
		t.Fatal("Expected error when fetch fails")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeNetwork) {
		t.Errorf("Expected network error, got %v", err)
	}
}

func TestDetectRegionsWithOCR_ScoresAgainstExpectedText(t *testing.T) {
	engine := &fakeOCREngine{text: "hello world", available: true}
	svc, _ := newTestService(
		&fakeImageRepo{img: testImage()},
		&fakeDetector{result: cannedResult()},
		engine,
	)

	response, err := svc.DetectRegionsWithOCR(context.Background(), "http://example.com/img.png", "hello world")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if response.OCRResult == nil {
		t.Fatal("Expected OCR result")
	}
	if response.OCRResult.ExtractedText != "hello world" {
		t.Errorf("Expected extracted text 'hello world', got %q", response.OCRResult.ExtractedText)
	}
	if response.OCRResult.WER != 0 || response.OCRResult.CER != 0 {
		t.Errorf("Expected zero error rates for exact match, got WER=%f CER=%f",
			response.OCRResult.WER, response.OCRResult.CER)
	}
	if response.OCRResult.Confidence != 1 {
		t.Errorf("Expected confidence 1 for exact match, got %f", response.OCRResult.Confidence)
	}

	// OCR must run over the union of the detected regions
	want := image.Rect(2, 3, 6, 8)
	if engine.gotRegion != want {
		t.Errorf("Expected OCR region %v, got %v", want, engine.gotRegion)
	}
}

func TestDetectRegionsWithOCR_EngineUnavailable(t *testing.T) {
	svc, _ := newTestService(
		&fakeImageRepo{img: testImage()},
		&fakeDetector{result: cannedResult()},
		&fakeOCREngine{available: false},
	)

	response, err := svc.DetectRegionsWithOCR(context.Background(), "http://example.com/img.png", "hello")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if response.OCRResult == nil || response.OCRResult.OCRError == "" {
		t.Fatal("Expected OCR error to be recorded")
	}
	if len(response.Errors) == 0 {
		t.Error("Expected OCR failure in the error list")
	}
}

func TestDetectRegionsWithOCR_RecognitionError(t *testing.T) {
	svc, _ := newTestService(
		&fakeImageRepo{img: testImage()},
		&fakeDetector{result: cannedResult()},
		&fakeOCREngine{available: true, err: errors.New("tesseract crashed")},
	)

	response, err := svc.DetectRegionsWithOCR(context.Background(), "http://example.com/img.png", "hello")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if response.OCRResult == nil || !strings.Contains(response.OCRResult.OCRError, "tesseract crashed") {
		t.Fatal("Expected recognition error to be recorded")
	}
}

func TestGetDetection_NotFound(t *testing.T) {
	svc, _ := newTestService(
		&fakeImageRepo{img: testImage()},
		&fakeDetector{result: cannedResult()},
		&fakeOCREngine{},
	)

	_, err := svc.GetDetection(context.Background(), "missing")
	if err == nil {
		t.Fatal("Expected error for unknown detection ID")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestGetDetection_RoundTrip(t *testing.T) {
	svc, _ := newTestService(
		&fakeImageRepo{img: testImage()},
		&fakeDetector{result: cannedResult()},
		&fakeOCREngine{},
	)

	ctx := context.Background()
	response, err := svc.DetectRegions(ctx, "http://example.com/img.png")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if response.ID == "" {
		t.Fatal("Expected a detection ID in the response")
	}

	stored, err := svc.GetDetection(ctx, response.ID)
	if err != nil {
		t.Fatalf("Expected stored result, got error %v", err)
	}
	if stored.ID != response.ID {
		t.Errorf("Expected stored ID %q, got %q", response.ID, stored.ID)
	}
	if stored.ImageURL != "http://example.com/img.png" {
		t.Errorf("Expected stored image URL, got %q", stored.ImageURL)
	}
	if stored.Timestamp != response.Timestamp {
		t.Errorf("Expected timestamp %q in both responses, got %q", response.Timestamp, stored.Timestamp)
	}
}
