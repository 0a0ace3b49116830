package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	DetectionTimeout   time.Duration
	MaxRequestBodySize int64

	// Storage backend: "http" or "azure"
	StorageBackend      string
	AzureStorageAccount string
	AzureStorageKey     string

	// Detection defaults, overridable per request via presets
	Delta             uint8
	MinRegionSize     int
	MaxRegionSize     int
	MaxVariation      float64
	MinDiversity      float64
	MaxImageDimension int

	OCRLanguage string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		DetectionTimeout:   parseDurationOrDefault("DETECTION_TIMEOUT", 20*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB

		StorageBackend:      getEnvOrDefault("STORAGE_BACKEND", "http"),
		AzureStorageAccount: os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureStorageKey:     os.Getenv("AZURE_STORAGE_KEY"),

		MinRegionSize:     int(parseIntOrDefault("MSER_MIN_SIZE", 60)),
		MaxRegionSize:     int(parseIntOrDefault("MSER_MAX_SIZE", 14400)),
		MaxVariation:      parseFloatOrDefault("MSER_MAX_VAR", 0.25),
		MinDiversity:      parseFloatOrDefault("MSER_MIN_DIVERSITY", 0.2),
		MaxImageDimension: int(parseIntOrDefault("MAX_IMAGE_DIMENSION", 1600)),

		OCRLanguage: getEnvOrDefault("OCR_LANGUAGE", "eng"),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.ImageFetchTimeout <= 0 || cfg.DetectionTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, detection=%s)",
			cfg.RequestTimeout, cfg.ImageFetchTimeout, cfg.DetectionTimeout)
	}
	switch cfg.StorageBackend {
	case "http", "azure":
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND: %q (must be http or azure)", cfg.StorageBackend)
	}
	if cfg.StorageBackend == "azure" && (cfg.AzureStorageAccount == "" || cfg.AzureStorageKey == "") {
		return nil, fmt.Errorf("azure backend requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
	}
	// Range-check before narrowing so an out-of-range value fails loudly
	// instead of wrapping around.
	delta := parseIntOrDefault("MSER_DELTA", 5)
	if delta < 1 || delta > 255 {
		return nil, fmt.Errorf("MSER_DELTA must be in 1..255 (got %d)", delta)
	}
	cfg.Delta = uint8(delta)
	if cfg.MinRegionSize < 1 || cfg.MaxRegionSize < cfg.MinRegionSize {
		return nil, fmt.Errorf("invalid region size bounds: min=%d max=%d", cfg.MinRegionSize, cfg.MaxRegionSize)
	}
	if cfg.MaxVariation <= 0 {
		return nil, fmt.Errorf("MSER_MAX_VAR must be > 0 (got %g)", cfg.MaxVariation)
	}
	if cfg.MinDiversity < 0 || cfg.MinDiversity >= 1 {
		return nil, fmt.Errorf("MSER_MIN_DIVERSITY must be in [0,1) (got %g)", cfg.MinDiversity)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
