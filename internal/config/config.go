// Package config loads runtime configuration from the environment and the
// YAML keyword tables that drive classification.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Posting limits
	MinMinutesBetweenPosts int
	DailyPostCap           int

	// X/Twitter settings
	XAPIBaseURL        string
	XAPIKey            string
	XAPISecret         string
	XAccessToken       string
	XAccessTokenSecret string

	// Source settings
	SourcesConfigPath  string
	KeywordsConfigPath string
	MaxItemsPerRun     int
	NewsMaxAge         time.Duration

	// Summarizer settings
	MaxSentences int
	Language     string

	// App settings
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration

	// Store settings
	DatabaseURL   string
	StoreFilePath string
	CleanupDays   int

	// Scheduler settings
	CronSpec string
}

func Load() (*Config, error) {
	cfg := &Config{
		MinMinutesBetweenPosts: 10,
		DailyPostCap:           30,
		XAPIBaseURL:            "https://api.twitter.com",
		SourcesConfigPath:      "configs/sources.yaml",
		KeywordsConfigPath:     "configs/keywords.yaml",
		MaxItemsPerRun:         10,
		NewsMaxAge:             24 * time.Hour,
		MaxSentences:           2,
		Language:               "tr",
		RequestTimeout:         30 * time.Second,
		RetryAttempts:          3,
		RetryDelay:             5 * time.Second,
		StoreFilePath:          "posted.json",
		CleanupDays:            30,
		CronSpec:               "*/30 * * * *",
	}

	cfg.XAPIKey = os.Getenv("X_API_KEY")
	cfg.XAPISecret = os.Getenv("X_API_SECRET")
	cfg.XAccessToken = os.Getenv("X_ACCESS_TOKEN")
	cfg.XAccessTokenSecret = os.Getenv("X_ACCESS_TOKEN_SECRET")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.SourcesConfigPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesConfigPath)
	cfg.KeywordsConfigPath = getEnvOrDefault("KEYWORDS_CONFIG_PATH", cfg.KeywordsConfigPath)
	cfg.StoreFilePath = getEnvOrDefault("STORE_FILE_PATH", cfg.StoreFilePath)
	cfg.CronSpec = getEnvOrDefault("CRON_SPEC", cfg.CronSpec)
	cfg.Language = getEnvOrDefault("LANGUAGE", cfg.Language)
	if base := os.Getenv("X_API_BASE_URL"); base != "" {
		cfg.XAPIBaseURL = base
	}

	cfg.MinMinutesBetweenPosts = getEnvIntOrDefault("MIN_MINUTES_BETWEEN_POSTS", cfg.MinMinutesBetweenPosts)
	cfg.DailyPostCap = getEnvIntOrDefault("DAILY_POST_CAP", cfg.DailyPostCap)
	cfg.MaxItemsPerRun = getEnvIntOrDefault("MAX_ITEMS_PER_RUN", cfg.MaxItemsPerRun)
	cfg.MaxSentences = getEnvIntOrDefault("MAX_SENTENCES", cfg.MaxSentences)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	cfg.CleanupDays = getEnvIntOrDefault("CLEANUP_DAYS", cfg.CleanupDays)

	if v := os.Getenv("NEWS_MAX_AGE_HOURS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.NewsMaxAge = time.Duration(val) * time.Hour
		}
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("RETRY_DELAY_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RetryDelay = time.Duration(val) * time.Second
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

func (c *Config) Validate() error {
	if c.MinMinutesBetweenPosts < 1 {
		return fmt.Errorf("MIN_MINUTES_BETWEEN_POSTS must be at least 1")
	}
	if c.DailyPostCap < 1 {
		return fmt.Errorf("DAILY_POST_CAP must be at least 1")
	}
	if c.MaxSentences < 1 {
		return fmt.Errorf("MAX_SENTENCES must be at least 1")
	}
	// The cleanup horizon bounds the dedup window: records removed too early
	// make a re-published story look new again.
	if c.CleanupDays < 7 {
		return fmt.Errorf("CLEANUP_DAYS must be at least 7")
	}
	return nil
}

// HasXCredentials reports whether all four X API credentials are set.
func (c *Config) HasXCredentials() bool {
	return c.XAPIKey != "" && c.XAPISecret != "" && c.XAccessToken != "" && c.XAccessTokenSecret != ""
}
