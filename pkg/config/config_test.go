package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}

	if cfg.Sheets.OrdersSheet != "Orders" {
		t.Fatalf("unexpected orders sheet default: %q", cfg.Sheets.OrdersSheet)
	}

	if cfg.IdoSell.BaseURL != "https://vedion.pl/api/admin/v5" {
		t.Fatalf("unexpected IdoSell base URL: %q", cfg.IdoSell.BaseURL)
	}

	if got := cfg.Sync.LockTTL; got != 10*time.Minute {
		t.Fatalf("expected lock TTL 10m, got %v", got)
	}

	if got := cfg.Sync.StateRatePerSec; got != 5 {
		t.Fatalf("expected state rate 5/s, got %v", got)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvRefurbedToken); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvRefurbedToken, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_MissingGoogleCredentials(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvGCPCredentials); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvGCPCredentials, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing credentials to return an error")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvSpreadsheetID, "sheet-id-123")
	t.Setenv(EnvGCPCredentials, `{"type":"service_account"}`)
	t.Setenv(EnvRefurbedToken, "refurbed-token")
	t.Setenv(EnvIdoSellAPIKey, "idosell-key")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "Production"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}
