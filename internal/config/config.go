package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Fetcher   FetcherConfig   `mapstructure:"fetcher"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
	RequestTimeout int      `mapstructure:"request_timeout"` // seconds
}

// CacheConfig holds contest cache settings
type CacheConfig struct {
	TTLSeconds                  int `mapstructure:"ttl_seconds"`
	StaleWhileRevalidateSeconds int `mapstructure:"stale_while_revalidate_seconds"`
}

// FetcherConfig holds upstream contest API settings
type FetcherConfig struct {
	BaseURL        string   `mapstructure:"base_url"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"` // per-platform fetch timeout
	Platforms      []string `mapstructure:"platforms"`
}

// SchedulerConfig holds background refresh settings
type SchedulerConfig struct {
	RefreshCron string `mapstructure:"refresh_cron"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout or file path
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	// Load .env file if present (ignore errors if not found)
	_ = godotenv.Load()
	_ = godotenv.Load(".env.local")

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in current directory and configs folder
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")

		// Also check user's home directory
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".contesthub"))
		}
	}

	// Environment variables
	v.SetEnvPrefix("CONTESTHUB")
	v.AutomaticEnv()

	// Explicit bindings for nested keys (Viper doesn't auto-bind underscored nested keys)
	v.BindEnv("server.port", "CONTESTHUB_SERVER_PORT")
	v.BindEnv("cache.ttl_seconds", "CONTESTHUB_CACHE_TTL_SECONDS")
	v.BindEnv("fetcher.base_url", "CONTESTHUB_FETCHER_BASE_URL")
	v.BindEnv("fetcher.timeout_seconds", "CONTESTHUB_FETCHER_TIMEOUT_SECONDS")
	v.BindEnv("scheduler.refresh_cron", "CONTESTHUB_SCHEDULER_REFRESH_CRON")
	v.BindEnv("logging.level", "CONTESTHUB_LOGGING_LEVEL")

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.request_timeout", 30)

	// Cache defaults
	v.SetDefault("cache.ttl_seconds", 60)
	v.SetDefault("cache.stale_while_revalidate_seconds", 300)

	// Fetcher defaults
	v.SetDefault("fetcher.base_url", "https://kontests.net/api/v1")
	v.SetDefault("fetcher.timeout_seconds", 5)
	v.SetDefault("fetcher.platforms", []string{
		"codeforces", "codechef", "leetcode", "atcoder",
		"topcoder", "hackerrank", "hackerearth",
	})

	// Scheduler defaults
	v.SetDefault("scheduler.refresh_cron", "@every 5m")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stdout")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Fetcher.BaseURL == "" {
		return fmt.Errorf("fetcher.base_url is required")
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be positive")
	}
	if c.Fetcher.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetcher.timeout_seconds must be positive")
	}
	return nil
}
