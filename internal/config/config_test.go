package config

import (
	"strings"
	"testing"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected defaults to load, got %v", err)
	}
	if cfg.Delta != 5 {
		t.Errorf("Expected default delta 5, got %d", cfg.Delta)
	}
	if cfg.MinRegionSize != 60 || cfg.MaxRegionSize != 14400 {
		t.Errorf("Expected default size bounds 60..14400, got %d..%d", cfg.MinRegionSize, cfg.MaxRegionSize)
	}
	if cfg.StorageBackend != "http" {
		t.Errorf("Expected default storage backend http, got %q", cfg.StorageBackend)
	}
}

func TestLoadFromEnv_DeltaInRange(t *testing.T) {
	t.Setenv("MSER_DELTA", "12")
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Delta != 12 {
		t.Errorf("Expected delta 12, got %d", cfg.Delta)
	}
}

func TestLoadFromEnv_DeltaOutOfRange(t *testing.T) {
	for _, value := range []string{"0", "256", "300", "-3"} {
		t.Setenv("MSER_DELTA", value)
		_, err := LoadFromEnv()
		if err == nil {
			t.Errorf("Expected error for MSER_DELTA=%s", value)
			continue
		}
		if !strings.Contains(err.Error(), "MSER_DELTA") {
			t.Errorf("Expected MSER_DELTA in error, got %v", err)
		}
	}
}

func TestLoadFromEnv_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "99999")
	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error for out-of-range port")
	}
}

func TestLoadFromEnv_AzureRequiresCredentials(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "azure")
	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error for azure backend without credentials")
	}
}
