package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Environment   string `mapstructure:"ENV"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	HTTPAddr      string `mapstructure:"HTTP_ADDR"`
	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	DBDSN         string `mapstructure:"DB_DSN"`
	JWTSecret     string `mapstructure:"JWT_SECRET"`

	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	CatalogCacheTTL time.Duration `mapstructure:"CATALOG_CACHE_TTL"`

	AMQPURL      string `mapstructure:"AMQP_URL"`
	AMQPExchange string `mapstructure:"AMQP_EXCHANGE"`

	ZoomAccountID    string        `mapstructure:"ZOOM_ACCOUNT_ID"`
	ZoomClientID     string        `mapstructure:"ZOOM_CLIENT_ID"`
	ZoomClientSecret string        `mapstructure:"ZOOM_CLIENT_SECRET"`
	ZoomAPIURL       string        `mapstructure:"ZOOM_API_URL"`
	ZoomTokenURL     string        `mapstructure:"ZOOM_TOKEN_URL"`
	MeetingTimeout   time.Duration `mapstructure:"MEETING_TIMEOUT"`

	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`
}

var defaults = map[string]any{
	"ENV":                "development",
	"LOG_LEVEL":          "",
	"HTTP_ADDR":          ":8080",
	"STORAGE_DRIVER":     StoragePostgres,
	"DB_DSN":             "",
	"JWT_SECRET":         "",
	"REDIS_ADDR":         "",
	"REDIS_PASSWORD":     "",
	"REDIS_DB":           0,
	"CATALOG_CACHE_TTL":  "30s",
	"AMQP_URL":           "",
	"AMQP_EXCHANGE":      "bookings",
	"ZOOM_ACCOUNT_ID":    "",
	"ZOOM_CLIENT_ID":     "",
	"ZOOM_CLIENT_SECRET": "",
	"ZOOM_API_URL":       "https://api.zoom.us/v2",
	"ZOOM_TOKEN_URL":     "https://zoom.us/oauth/token",
	"MEETING_TIMEOUT":    "10s",
	"TELEGRAM_TOKEN":     "",
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	} else {
		log.Println("Loaded configuration from .env file")
	}

	return FromEnv()
}

// FromEnv builds the config from environment variables only.
func FromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required but not set")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required but not set")
	}
	if c.CatalogCacheTTL <= 0 {
		return fmt.Errorf("CATALOG_CACHE_TTL must be positive")
	}
	if c.MeetingTimeout <= 0 {
		return fmt.Errorf("MEETING_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}
