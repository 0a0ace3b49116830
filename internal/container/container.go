package container

import (
	"fmt"
	"net/http"

	"go-mser-detector/internal/config"
	"go-mser-detector/internal/detector"
	"go-mser-detector/internal/logger"
	"go-mser-detector/internal/observer"
	"go-mser-detector/internal/ocr"
	"go-mser-detector/internal/repository"
	"go-mser-detector/internal/service"
	"go-mser-detector/internal/storage"
	"go-mser-detector/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config           *config.Config
	imageFetcher     storage.ImageFetcher
	regionDetector   detector.RegionDetector
	ocrEngine        ocr.Engine
	imageRepository  repository.ImageRepository
	resultRepository repository.DetectionRepository
	metrics          *observer.MetricsObserver
	detectionService service.DetectionService
	handler          http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	imageFetcher, err := newImageFetcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}

	regionDetector, err := detector.NewRegionDetector()
	if err != nil {
		return nil, err
	}

	ocrEngine, err := ocr.NewEngine(cfg.OCRLanguage)
	if err != nil {
		return nil, fmt.Errorf("failed to create OCR engine: %w", err)
	}

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	imageRepository := repository.NewHTTPImageRepository(imageFetcher)
	resultRepository := repository.NewMemoryDetectionRepository()
	detectionService := service.NewDetectionService(imageRepository, resultRepository, regionDetector, ocrEngine, events)
	handler := transport.NewHandler(detectionService, metrics, cfg)

	return &Container{
		config:           cfg,
		imageFetcher:     imageFetcher,
		regionDetector:   regionDetector,
		ocrEngine:        ocrEngine,
		imageRepository:  imageRepository,
		resultRepository: resultRepository,
		metrics:          metrics,
		detectionService: detectionService,
		handler:          handler,
	}, nil
}

// newImageFetcher selects the storage backend from the configuration
func newImageFetcher(cfg *config.Config) (storage.ImageFetcher, error) {
	switch cfg.StorageBackend {
	case "azure":
		return storage.NewAzureStorage(cfg.AzureStorageAccount, cfg.AzureStorageKey)
	default:
		return storage.NewHTTPImageFetcher(), nil
	}
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases detector and OCR resources
func (c *Container) Close() error {
	var firstErr error
	if err := c.regionDetector.Close(); err != nil {
		firstErr = err
	}
	if err := c.ocrEngine.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
