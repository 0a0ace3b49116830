package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-mser-detector/internal/config"
	"go-mser-detector/internal/detector"
	apperrors "go-mser-detector/internal/errors"
	"go-mser-detector/internal/logger"
	"go-mser-detector/internal/observer"
	"go-mser-detector/internal/service"
	"go-mser-detector/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewHandler builds the HTTP API around the detection service
func NewHandler(svc service.DetectionService, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.POST("/detect", detectRegions(svc, cfg))
	r.GET("/detections/:id", getDetection(svc))
	r.GET("/metrics", getMetrics(metrics))

	return r
}

func detectRegions(svc service.DetectionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		// Log request start
		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing region detection request")

		var req models.DetectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"ip": c.ClientIP(),
			}).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		// Validate image URL
		if err := svc.ValidateImageURL(req.URL); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"url": req.URL,
				"ip":  c.ClientIP(),
			}).Error("Invalid image URL")

			statusCode := apperrors.GetStatusCode(err)
			respondError(c, statusCode, "invalid image URL", err)
			return
		}

		// Check for IsOCR in query parameter (takes precedence over JSON body)
		if isOCRQuery := c.Query("is_ocr"); isOCRQuery != "" {
			req.IsOCR = isOCRQuery == "true"
		}

		options, err := optionsForRequest(req, cfg)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid preset", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"url":    req.URL,
			"is_ocr": req.IsOCR,
			"preset": req.Preset,
		}).Debug("Starting detection")

		response, err := svc.DetectRegionsWithOptions(ctx, req.URL, options)
		if err != nil {
			respondError(c, determineStatusCode(err), "detection failed", err)
			return
		}

		duration := time.Since(startTime)
		logger.WithFields(logrus.Fields{
			"url":                req.URL,
			"is_ocr":             req.IsOCR,
			"processing_time_ms": duration.Milliseconds(),
			"region_count":       response.Stats.Count,
		}).Info("Region detection completed successfully")

		c.JSON(http.StatusOK, response)
	}
}

// optionsForRequest maps the request preset onto detection options, seeded
// with the configured detection defaults.
func optionsForRequest(req models.DetectionRequest, cfg *config.Config) (detector.DetectionOptions, error) {
	var options detector.DetectionOptions
	switch req.Preset {
	case "", "default":
		options = detector.DefaultOptions().
			WithDelta(cfg.Delta).
			WithSizeBounds(cfg.MinRegionSize, cfg.MaxRegionSize).
			WithMaxDimension(cfg.MaxImageDimension)
		options.MaxVar = cfg.MaxVariation
		options.MinDiversity = cfg.MinDiversity
	case "text":
		options = detector.TextOptions()
	case "fast":
		options = detector.FastOptions()
	default:
		return options, fmt.Errorf("unknown preset %q", req.Preset)
	}

	if req.IsOCR {
		options = options.WithOCR(req.ExpectedText)
		if options.OCRLanguage == "" || options.OCRLanguage == "eng" {
			options.OCRLanguage = cfg.OCRLanguage
		}
	}
	return options, nil
}

func getDetection(svc service.DetectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := svc.GetDetection(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "detection result not found", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func getMetrics(metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.JSON(http.StatusOK, gin.H{})
			return
		}
		c.JSON(http.StatusOK, metrics.GetMetrics())
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
