package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"image"
	"time"

	"go-mser-detector/internal/detector"
	apperrors "go-mser-detector/internal/errors"
	"go-mser-detector/internal/observer"
	"go-mser-detector/internal/ocr"
	"go-mser-detector/internal/repository"
	"go-mser-detector/pkg/models"
)

// DetectionService orchestrates image fetching, region detection and OCR
type DetectionService interface {
	// DetectRegions runs detection with the default options
	DetectRegions(ctx context.Context, imageURL string) (*models.DetectionResponse, error)

	// DetectRegionsWithOCR runs text-tuned detection and recognizes the text
	// covered by the detected regions
	DetectRegionsWithOCR(ctx context.Context, imageURL string, expectedText string) (*models.DetectionResponse, error)

	// DetectRegionsWithOptions runs detection with flexible configuration
	DetectRegionsWithOptions(ctx context.Context, imageURL string, options detector.DetectionOptions) (*models.DetectionResponse, error)

	// GetDetection retrieves a stored detection result by ID
	GetDetection(ctx context.Context, id string) (*models.DetectionResponse, error)

	// ValidateImageURL validates the image URL
	ValidateImageURL(imageURL string) error
}

// detectionService implements DetectionService
type detectionService struct {
	imageRepo  repository.ImageRepository
	resultRepo repository.DetectionRepository
	detector   detector.RegionDetector
	ocrEngine  ocr.Engine
	events     observer.Subject
}

// NewDetectionService creates a new detection service
func NewDetectionService(
	imageRepository repository.ImageRepository,
	resultRepository repository.DetectionRepository,
	regionDetector detector.RegionDetector,
	ocrEngine ocr.Engine,
	events observer.Subject,
) DetectionService {
	return &detectionService{
		imageRepo:  imageRepository,
		resultRepo: resultRepository,
		detector:   regionDetector,
		ocrEngine:  ocrEngine,
		events:     events,
	}
}

func (s *detectionService) DetectRegions(ctx context.Context, imageURL string) (*models.DetectionResponse, error) {
	return s.DetectRegionsWithOptions(ctx, imageURL, detector.DefaultOptions())
}

func (s *detectionService) DetectRegionsWithOCR(ctx context.Context, imageURL string, expectedText string) (*models.DetectionResponse, error) {
	options := detector.TextOptions().WithOCR(expectedText)
	return s.DetectRegionsWithOptions(ctx, imageURL, options)
}

func (s *detectionService) DetectRegionsWithOptions(ctx context.Context, imageURL string, options detector.DetectionOptions) (*models.DetectionResponse, error) {
	if err := s.ValidateImageURL(imageURL); err != nil {
		return nil, apperrors.NewValidationError("invalid image URL", err)
	}

	start := time.Now()
	s.publish(ctx, observer.DetectionEvent{
		EventType: observer.DetectionStarted,
		Timestamp: start,
		ImageURL:  imageURL,
	})

	img, err := s.imageRepo.FetchImage(ctx, imageURL)
	if err != nil {
		s.publish(ctx, observer.DetectionEvent{
			EventType:    observer.ImageFetchFailed,
			Timestamp:    time.Now(),
			ImageURL:     imageURL,
			ErrorMessage: err.Error(),
		})
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	}
	s.publish(ctx, observer.DetectionEvent{
		EventType: observer.ImageFetched,
		Timestamp: time.Now(),
		ImageURL:  imageURL,
		Success:   true,
	})

	result := s.detector.DetectWithOptions(img, options)
	result.ID = newDetectionID()
	result.ImageURL = imageURL

	if options.OCRMode {
		s.runOCR(img, options, &result)
	}

	if err := s.resultRepo.SaveDetection(ctx, &result); err != nil {
		result.Errors = append(result.Errors, "failed to store detection result: "+err.Error())
	}

	s.publish(ctx, observer.DetectionEvent{
		EventType:      observer.DetectionCompleted,
		Timestamp:      time.Now(),
		ImageURL:       imageURL,
		ProcessingTime: time.Since(start),
		RegionCount:    result.Stats.Count,
		Success:        true,
	})

	return convertToResponse(&result), nil
}

func (s *detectionService) GetDetection(ctx context.Context, id string) (*models.DetectionResponse, error) {
	result, err := s.resultRepo.GetDetection(ctx, id)
	if err != nil {
		return nil, apperrors.NewNotFoundError("detection result not found", err)
	}
	return convertToResponse(result), nil
}

func (s *detectionService) ValidateImageURL(imageURL string) error {
	return s.imageRepo.ValidateImageURL(imageURL)
}

// runOCR recognizes text inside the union of the detected regions, falling
// back to the whole image when nothing was detected. Accuracy rates are
// computed when an expected text was supplied.
func (s *detectionService) runOCR(img image.Image, options detector.DetectionOptions, result *models.DetectionResult) {
	if result.OCRResult == nil {
		result.OCRResult = &models.OCRResult{ExpectedText: options.OCRExpectedText}
	}
	ocrResult := result.OCRResult

	if s.ocrEngine == nil || !s.ocrEngine.Available() {
		ocrResult.OCRError = ocr.ErrUnavailable.Error()
		result.Errors = append(result.Errors, ocrResult.OCRError)
		return
	}

	var text string
	var err error
	if r, ok := regionUnion(result.Regions); ok {
		text, err = s.ocrEngine.RecognizeRegion(img, r)
	} else {
		text, err = s.ocrEngine.Recognize(img)
	}
	if err != nil {
		ocrResult.OCRError = err.Error()
		result.Errors = append(result.Errors, "OCR failed: "+err.Error())
		return
	}

	ocrResult.ExtractedText = text
	if ocrResult.ExpectedText != "" {
		ocrResult.WER = ocr.WordErrorRate(ocrResult.ExpectedText, text)
		ocrResult.CER = ocr.CharacterErrorRate(ocrResult.ExpectedText, text)
		// Character accuracy doubles as a confidence estimate
		confidence := 1 - ocrResult.CER
		if confidence < 0 {
			confidence = 0
		}
		ocrResult.Confidence = confidence
	}
}

// regionUnion returns the bounding rectangle covering all detected regions
func regionUnion(regions []models.Region) (image.Rectangle, bool) {
	var union image.Rectangle
	for _, r := range regions {
		b := image.Rect(r.BoundingBox.X, r.BoundingBox.Y,
			r.BoundingBox.X+r.BoundingBox.Width, r.BoundingBox.Y+r.BoundingBox.Height)
		union = union.Union(b)
	}
	return union, !union.Empty()
}

func convertToResponse(result *models.DetectionResult) *models.DetectionResponse {
	return &models.DetectionResponse{
		ID:                result.ID,
		ImageURL:          result.ImageURL,
		Timestamp:         result.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		ProcessingTimeSec: result.ProcessingTimeSec,
		ImageWidth:        result.ImageWidth,
		ImageHeight:       result.ImageHeight,
		Regions:           result.Regions,
		Stats:             result.Stats,
		OCRResult:         result.OCRResult,
		Errors:            result.Errors,
	}
}

func newDetectionID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().UTC().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(b[:])
}

func (s *detectionService) publish(ctx context.Context, event observer.DetectionEvent) {
	if s.events != nil {
		s.events.NotifyObservers(ctx, event)
	}
}
