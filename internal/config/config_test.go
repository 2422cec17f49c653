package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/tutoring")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 30*time.Second, cfg.CatalogCacheTTL)
	assert.Equal(t, 10*time.Second, cfg.MeetingTimeout)
	assert.Equal(t, "bookings", cfg.AMQPExchange)
	assert.Equal(t, "https://api.zoom.us/v2", cfg.ZoomAPIURL)
	assert.False(t, cfg.TelegramEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CATALOG_CACHE_TTL", "2m")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 2*time.Minute, cfg.CatalogCacheTTL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.TelegramEnabled())
	assert.True(t, cfg.IsProduction())
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "postgres without dsn",
			env:  map[string]string{"JWT_SECRET": "secret"},
		},
		{
			name: "missing jwt secret",
			env:  map[string]string{"STORAGE_DRIVER": "memory"},
		},
		{
			name: "unknown driver",
			env:  map[string]string{"STORAGE_DRIVER": "mysql", "JWT_SECRET": "secret"},
		},
		{
			name: "zero meeting timeout",
			env:  map[string]string{"STORAGE_DRIVER": "memory", "JWT_SECRET": "secret", "MEETING_TIMEOUT": "0s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"DB_DSN", "JWT_SECRET", "STORAGE_DRIVER", "MEETING_TIMEOUT"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
