// Package config loads the two configuration layers: runtime settings from
// the environment (Load) and the feed document from disk (LoadDocument).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// App settings
	Debug bool

	// Feed fetching
	RequestTimeout  time.Duration
	MaxItemsPerFeed int

	// Enrichment
	EnrichEnabled       bool
	EnrichTimeout       time.Duration
	EnrichDelay         time.Duration // pause after every page request
	MinDescriptionRunes int           // shorter descriptions count as incomplete
	MaxPageBytes        int64
	UserAgent           string

	// Gemini settings (optional digest of detailed content)
	GeminiAPIKey      string
	GeminiModel       string
	MaxGeminiRequests int // per run, 0 = unlimited
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		RequestTimeout:      10 * time.Second,
		MaxItemsPerFeed:     20,
		EnrichEnabled:       true,
		EnrichTimeout:       10 * time.Second,
		EnrichDelay:         500 * time.Millisecond,
		MinDescriptionRunes: 50,
		MaxPageBytes:        5 * 1024 * 1024,
		UserAgent:           "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		GeminiModel:         "gemini-1.5-flash",
		MaxGeminiRequests:   3,
	}

	cfg.Debug = os.Getenv("DEBUG") == "true"

	cfg.RequestTimeout = getEnvDurationOrDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.MaxItemsPerFeed = getEnvIntOrDefault("MAX_ITEMS_PER_FEED", cfg.MaxItemsPerFeed)

	if v := os.Getenv("ENRICH_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EnrichEnabled = b
		}
	}
	cfg.EnrichTimeout = getEnvDurationOrDefault("ENRICH_TIMEOUT", cfg.EnrichTimeout)
	cfg.EnrichDelay = getEnvDurationOrDefault("ENRICH_DELAY", cfg.EnrichDelay)
	cfg.MinDescriptionRunes = getEnvIntOrDefault("MIN_DESCRIPTION_RUNES", cfg.MinDescriptionRunes)
	if v := os.Getenv("MAX_PAGE_BYTES"); v != "" {
		if val, err := strconv.ParseInt(v, 10, 64); err == nil && val > 0 {
			cfg.MaxPageBytes = val
		}
	}
	cfg.UserAgent = getEnvOrDefault("USER_AGENT", cfg.UserAgent)

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	if gr := os.Getenv("MAX_GEMINI_REQUESTS"); gr != "" {
		if val, err := strconv.Atoi(gr); err == nil && val >= 0 {
			cfg.MaxGeminiRequests = val
		}
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("750ms") and bare seconds ("10").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.EnrichTimeout <= 0 {
		return fmt.Errorf("ENRICH_TIMEOUT must be positive")
	}
	if c.EnrichDelay < 0 {
		return fmt.Errorf("ENRICH_DELAY must not be negative")
	}
	if c.MaxItemsPerFeed <= 0 {
		return fmt.Errorf("MAX_ITEMS_PER_FEED must be positive")
	}
	if c.MinDescriptionRunes < 0 {
		return fmt.Errorf("MIN_DESCRIPTION_RUNES must not be negative")
	}
	return nil
}
