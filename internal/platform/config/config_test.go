package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Catalog.BaseURL != "https://fakestoreapi.com" {
		t.Errorf("Catalog.BaseURL = %q, want fakestoreapi default", cfg.Catalog.BaseURL)
	}
	if cfg.Catalog.FeaturedCount != 4 {
		t.Errorf("Catalog.FeaturedCount = %d, want 4", cfg.Catalog.FeaturedCount)
	}
	if cfg.Checkout.ProcessingDelay != 2*time.Second {
		t.Errorf("Checkout.ProcessingDelay = %v, want 2s", cfg.Checkout.ProcessingDelay)
	}
	if !cfg.Storage.SyncWrites {
		t.Error("Storage.SyncWrites = false, want true by default")
	}
}

func TestLoadEnvMapOverrides(t *testing.T) {
	cfg, err := Load(
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{
			"STOREFRONT_SERVER_PORT":               "9090",
			"STOREFRONT_CATALOG_TIMEOUT":           "5s",
			"STOREFRONT_CATALOG_FEATURED_COUNT":    "6",
			"STOREFRONT_STORAGE_SYNC_WRITES":       "false",
			"STOREFRONT_CHECKOUT_PROCESSING_DELAY": "0s",
		}),
	)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "9090")
	}
	if cfg.Catalog.Timeout != 5*time.Second {
		t.Errorf("Catalog.Timeout = %v, want 5s", cfg.Catalog.Timeout)
	}
	if cfg.Catalog.FeaturedCount != 6 {
		t.Errorf("Catalog.FeaturedCount = %d, want 6", cfg.Catalog.FeaturedCount)
	}
	if cfg.Storage.SyncWrites {
		t.Error("Storage.SyncWrites = true, want false")
	}
	if cfg.Checkout.ProcessingDelay != 0 {
		t.Errorf("Checkout.ProcessingDelay = %v, want 0", cfg.Checkout.ProcessingDelay)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	contents := "# local overrides\nSTOREFRONT_SERVER_PORT=7070\nexport STOREFRONT_STORAGE_DATA_DIR=\"/var/lib/storefront\"\n"
	if err := os.WriteFile(envPath, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp .env: %v", err)
	}

	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(envPath))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "7070")
	}
	if cfg.Storage.DataDir != "/var/lib/storefront" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/var/lib/storefront")
	}
}

func TestLoadEnvMapBeatsDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("STOREFRONT_SERVER_PORT=7070\n"), 0o600); err != nil {
		t.Fatalf("writing temp .env: %v", err)
	}

	cfg, err := Load(
		WithoutSystemEnv(),
		WithEnvFile(envPath),
		WithEnvMap(map[string]string{"STOREFRONT_SERVER_PORT": "6060"}),
	)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "6060" {
		t.Errorf("Server.Port = %q, want env map value %q", cfg.Server.Port, "6060")
	}
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{
			"STOREFRONT_CATALOG_BASE_URL":    " ",
			"STOREFRONT_STORAGE_DATA_DIR":    " ",
			"STOREFRONT_SERVER_READ_TIMEOUT": "15s",
		}),
	)
	if err == nil {
		t.Fatal("Load() error = nil, want validation error")
	}
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Load() error = %v, want *ValidationError", err)
	}
	fields := validationErr.Fields()
	if len(fields) != 2 {
		t.Fatalf("Fields() = %v, want 2 entries", fields)
	}
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	cfg, err := Load(
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{"STOREFRONT_CATALOG_TIMEOUT": "not-a-duration"}),
	)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Catalog.Timeout != 10*time.Second {
		t.Errorf("Catalog.Timeout = %v, want 10s fallback", cfg.Catalog.Timeout)
	}
}
