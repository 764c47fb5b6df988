package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 10, cfg.MinMinutesBetweenPosts)
	require.Equal(t, 30, cfg.DailyPostCap)
	require.Equal(t, 2, cfg.MaxSentences)
	require.Equal(t, "tr", cfg.Language)
	require.Equal(t, 24*time.Hour, cfg.NewsMaxAge)
	require.Equal(t, 30, cfg.CleanupDays)
	require.Equal(t, "*/30 * * * *", cfg.CronSpec)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MIN_MINUTES_BETWEEN_POSTS", "20")
	t.Setenv("DAILY_POST_CAP", "5")
	t.Setenv("NEWS_MAX_AGE_HOURS", "6")
	t.Setenv("RETRY_DELAY_SECONDS", "2")
	t.Setenv("STORE_FILE_PATH", "/tmp/records.json")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 20, cfg.MinMinutesBetweenPosts)
	require.Equal(t, 5, cfg.DailyPostCap)
	require.Equal(t, 6*time.Hour, cfg.NewsMaxAge)
	require.Equal(t, 2*time.Second, cfg.RetryDelay)
	require.Equal(t, "/tmp/records.json", cfg.StoreFilePath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"zero spacing", func(c *Config) { c.MinMinutesBetweenPosts = 0 }, true},
		{"zero cap", func(c *Config) { c.DailyPostCap = 0 }, true},
		{"zero sentences", func(c *Config) { c.MaxSentences = 0 }, true},
		{"cleanup shorter than dedup window", func(c *Config) { c.CleanupDays = 3 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestHasXCredentials(t *testing.T) {
	cfg := &Config{}
	require.False(t, cfg.HasXCredentials())

	cfg.XAPIKey = "k"
	cfg.XAPISecret = "s"
	cfg.XAccessToken = "t"
	require.False(t, cfg.HasXCredentials())

	cfg.XAccessTokenSecret = "ts"
	require.True(t, cfg.HasXCredentials())
}
