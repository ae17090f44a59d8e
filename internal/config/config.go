package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the ads-insights pipeline.
type Config struct {
	Env      string
	Database DatabaseConfig
	Redis    RedisConfig
	Platform PlatformConfig
	Cache    CacheConfig
	Batch    BatchConfig
	ROI      ROIConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PlatformConfig configures the ads-platform API client.
type PlatformConfig struct {
	BaseURL     string
	APIVersion  string
	AccessToken string
	Timeout     time.Duration
	MaxPages    int
	MaxRetries  int
	RetryDelay  time.Duration
}

// CacheConfig configures the analytics snapshot cache.
type CacheConfig struct {
	TTL time.Duration
}

// BatchConfig configures multi-client collection runs.
type BatchConfig struct {
	DelayBetweenClients time.Duration
	ContinueOnError     bool
}

// ROIConfig holds the business-rule thresholds for ROI status labels.
type ROIConfig struct {
	ProfitableROAS float64
	BreakEvenROAS  float64
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
	Port    string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Env: getEnv("ADS_INSIGHTS_ENV", "development"),
		Database: DatabaseConfig{
			Host:     getEnv("ADS_INSIGHTS_DB_HOST", "localhost"),
			Port:     getIntEnv("ADS_INSIGHTS_DB_PORT", 5432),
			User:     getEnv("ADS_INSIGHTS_DB_USER", "insights"),
			Password: getEnv("ADS_INSIGHTS_DB_PASSWORD", "insights_secret"),
			DBName:   getEnv("ADS_INSIGHTS_DB_NAME", "insights"),
			SSLMode:  getEnv("ADS_INSIGHTS_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("ADS_INSIGHTS_DB_MAX_CONNS", 25),
			MinConns: getIntEnv("ADS_INSIGHTS_DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("ADS_INSIGHTS_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("ADS_INSIGHTS_REDIS_PASSWORD", ""),
			DB:       getIntEnv("ADS_INSIGHTS_REDIS_DB", 0),
		},
		Platform: PlatformConfig{
			BaseURL:     getEnv("ADS_INSIGHTS_API_BASE_URL", "https://graph.facebook.com"),
			APIVersion:  getEnv("ADS_INSIGHTS_API_VERSION", "v19.0"),
			AccessToken: getEnv("ADS_INSIGHTS_API_TOKEN", ""),
			Timeout:     getDurationEnv("ADS_INSIGHTS_API_TIMEOUT", 30*time.Second),
			MaxPages:    getIntEnv("ADS_INSIGHTS_API_MAX_PAGES", 10),
			MaxRetries:  getIntEnv("ADS_INSIGHTS_API_MAX_RETRIES", 3),
			RetryDelay:  getDurationEnv("ADS_INSIGHTS_API_RETRY_DELAY", 500*time.Millisecond),
		},
		Cache: CacheConfig{
			TTL: getDurationEnv("ADS_INSIGHTS_CACHE_TTL", 1*time.Hour),
		},
		Batch: BatchConfig{
			DelayBetweenClients: getDurationEnv("ADS_INSIGHTS_BATCH_DELAY", 2*time.Second),
			ContinueOnError:     getBoolEnv("ADS_INSIGHTS_BATCH_CONTINUE_ON_ERROR", true),
		},
		ROI: ROIConfig{
			ProfitableROAS: getFloatEnv("ADS_INSIGHTS_ROI_PROFITABLE_ROAS", 2.0),
			BreakEvenROAS:  getFloatEnv("ADS_INSIGHTS_ROI_BREAKEVEN_ROAS", 1.0),
		},
		Log: LogConfig{
			Level:  getEnv("ADS_INSIGHTS_LOG_LEVEL", "info"),
			Format: getEnv("ADS_INSIGHTS_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("ADS_INSIGHTS_METRICS_ENABLED", true),
			Path:    getEnv("ADS_INSIGHTS_METRICS_PATH", "/metrics"),
			Port:    getEnv("ADS_INSIGHTS_METRICS_PORT", "9090"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Platform.AccessToken == "" {
		return fmt.Errorf("ADS_INSIGHTS_API_TOKEN is required")
	}
	if c.ROI.BreakEvenROAS > c.ROI.ProfitableROAS {
		return fmt.Errorf("break-even ROAS threshold cannot exceed profitable threshold")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
