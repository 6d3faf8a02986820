package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "SOLARADVISOR_DB_DRIVER", "SOLARADVISOR_LLM_PROVIDER",
		"SOLARADVISOR_LLM_TIMEOUT_SECONDS", "SOLARADVISOR_TARIFF_PDF_PATH",
		"SOLARADVISOR_CORS_ORIGINS", "SOLARADVISOR_AUTH", "SOLARADVISOR_RETENTION_DAYS",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	if cfg.Addr != ":8000" {
		t.Errorf("Addr = %q, want :8000", cfg.Addr)
	}
	if cfg.LLMTimeout != 30*time.Second {
		t.Errorf("LLMTimeout = %v, want 30s", cfg.LLMTimeout)
	}
	if cfg.TariffPDFPath != "/data/nepra_tariff.pdf" {
		t.Errorf("TariffPDFPath = %q", cfg.TariffPDFPath)
	}
	if cfg.CORSOrigins != "*" {
		t.Errorf("CORSOrigins = %q, want *", cfg.CORSOrigins)
	}
	if cfg.AuthEnabled {
		t.Error("auth should default to disabled")
	}
	if cfg.RetentionDays != 90 {
		t.Errorf("RetentionDays = %d, want 90", cfg.RetentionDays)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SOLARADVISOR_DB_DRIVER", "postgres")
	t.Setenv("SOLARADVISOR_DB_DSN", "postgres://localhost/solar")
	t.Setenv("SOLARADVISOR_AUTO_MIGRATE", "true")
	t.Setenv("SOLARADVISOR_LLM_PROVIDER", "Gemini")
	t.Setenv("SOLARADVISOR_LLM_API_KEY", "k")
	t.Setenv("SOLARADVISOR_LLM_TIMEOUT_SECONDS", "5")
	t.Setenv("SOLARADVISOR_AUTH", "1")
	t.Setenv("SOLARADVISOR_RETENTION_DAYS", "0")

	cfg := FromEnv()
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Addr)
	}
	if cfg.DBDriver != "postgres" || cfg.DBDSN != "postgres://localhost/solar" {
		t.Errorf("db config = %q %q", cfg.DBDriver, cfg.DBDSN)
	}
	if !cfg.AutoMigrate {
		t.Error("AutoMigrate should be true")
	}
	if cfg.LLMProvider != "gemini" {
		t.Errorf("provider should be lowercased, got %q", cfg.LLMProvider)
	}
	if cfg.LLMTimeout != 5*time.Second {
		t.Errorf("LLMTimeout = %v, want 5s", cfg.LLMTimeout)
	}
	if !cfg.AuthEnabled {
		t.Error("AuthEnabled should be true")
	}
	if cfg.RetentionDays != 0 {
		t.Errorf("RetentionDays = %d, want 0 (pruning disabled)", cfg.RetentionDays)
	}
}

func TestFromEnvIgnoresBadTimeout(t *testing.T) {
	t.Setenv("SOLARADVISOR_LLM_TIMEOUT_SECONDS", "banana")
	if cfg := FromEnv(); cfg.LLMTimeout != 30*time.Second {
		t.Errorf("bad timeout should keep default, got %v", cfg.LLMTimeout)
	}
}
