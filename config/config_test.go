package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(NewViper())
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.AppPort)
	require.Equal(t, 5, cfg.Scraper.ListingLimit)
	require.Equal(t, 5, cfg.Scraper.DetailWorkers)
	require.Equal(t, 30*time.Second, cfg.Scraper.Timeout)
	require.Equal(t, "deepseek-chat", cfg.DeepSeek.Model)
	require.Equal(t, "product_results.xlsx", cfg.Export.ObjectName)
	require.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	require.True(t, cfg.StoreAutoMigrate)
}

func TestNewConfig_RejectsUnknownStoreDriver(t *testing.T) {
	v := NewViper()
	v.Set("STORE_DRIVER", "dynamo")

	_, err := NewConfig(v)
	require.Error(t, err)
	require.Contains(t, err.Error(), "STORE_DRIVER")
}

func TestNewConfig_RejectsInvalidPort(t *testing.T) {
	v := NewViper()
	v.Set("APP_PORT", 70000)

	_, err := NewConfig(v)
	require.Error(t, err)
}

func TestNewConfig_TrimsScraperBaseURL(t *testing.T) {
	v := NewViper()
	v.Set("SCRAPER_BASE_URL", "https://www.amazon.com/")

	cfg, err := NewConfig(v)
	require.NoError(t, err)
	require.Equal(t, "https://www.amazon.com", cfg.Scraper.BaseURL)
}

func TestNewConfig_SQLiteDriverGetsLocalPath(t *testing.T) {
	v := NewViper()
	v.Set("STORE_DRIVER", "sqlite")
	v.Set("TURSO_SQLITE_DSN", "")
	v.Set("TURSO_SQLITE_PATH", "")

	cfg, err := NewConfig(v)
	require.NoError(t, err)
	require.Equal(t, DefaultSQLitePath, cfg.Turso.Path)
}

func TestNewConfig_SplitsCORSOrigins(t *testing.T) {
	v := NewViper()
	v.Set("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := NewConfig(v)
	require.NoError(t, err)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}
