package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds process-wide settings read from the environment.
type Config struct {
	Addr string

	DBDriver    string
	DBDSN       string
	AutoMigrate bool

	// LLM completion provider: "gemini", "openai", or "" (disabled).
	LLMProvider string
	LLMModel    string
	LLMAPIKey   string
	// LLMEndpoint overrides the provider's default API base URL.
	LLMEndpoint string
	LLMTimeout  time.Duration

	// TariffPDFPath overrides the default path of the cached tariff PDF.
	TariffPDFPath string

	// CORSOrigins is a comma-separated allowlist; "*" allows any origin.
	CORSOrigins string

	AuthEnabled bool

	// RetentionDays controls how long analysis history is kept before the
	// worker prunes it. Zero disables pruning.
	RetentionDays int
}

// FromEnv builds a Config from environment variables, with sane defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:          ":" + envOr("PORT", "8000"),
		DBDriver:      os.Getenv("SOLARADVISOR_DB_DRIVER"),
		DBDSN:         os.Getenv("SOLARADVISOR_DB_DSN"),
		AutoMigrate:   envBool("SOLARADVISOR_AUTO_MIGRATE"),
		LLMProvider:   strings.ToLower(os.Getenv("SOLARADVISOR_LLM_PROVIDER")),
		LLMModel:      os.Getenv("SOLARADVISOR_LLM_MODEL"),
		LLMAPIKey:     os.Getenv("SOLARADVISOR_LLM_API_KEY"),
		LLMEndpoint:   os.Getenv("SOLARADVISOR_LLM_ENDPOINT"),
		LLMTimeout:    30 * time.Second,
		TariffPDFPath: envOr("SOLARADVISOR_TARIFF_PDF_PATH", "/data/nepra_tariff.pdf"),
		CORSOrigins:   envOr("SOLARADVISOR_CORS_ORIGINS", "*"),
		AuthEnabled:   envBool("SOLARADVISOR_AUTH"),
		RetentionDays: 90,
	}

	if raw := os.Getenv("SOLARADVISOR_LLM_TIMEOUT_SECONDS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.LLMTimeout = time.Duration(v) * time.Second
		}
	}
	if raw := os.Getenv("SOLARADVISOR_RETENTION_DAYS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			cfg.RetentionDays = v
		}
	}

	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}
