package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the main structure mapping the entire application configuration.
// This struct uses mapstructure tags to map YAML/JSON keys to Go struct fields.
type Config struct {
	// Server configuration section containing HTTP server settings
	Server struct {
		Port    int    `mapstructure:"port"`     // HTTP server port (default: 8080)
		BaseURL string `mapstructure:"base_url"` // Base URL for generating short links
	} `mapstructure:"server"`

	// Database configuration section for SQLite settings
	Database struct {
		Name string `mapstructure:"name"` // SQLite database file name
	} `mapstructure:"database"`

	// Redis configuration for the click counter
	Redis struct {
		Addr      string `mapstructure:"addr"`       // host:port of the Redis server
		Password  string `mapstructure:"password"`   // empty when Redis runs without auth
		DB        int    `mapstructure:"db"`         // Redis logical database index
		KeyPrefix string `mapstructure:"key_prefix"` // prefix for pending-click keys
	} `mapstructure:"redis"`

	// JWT configuration for issuing and verifying access tokens
	JWT struct {
		Secret            string `mapstructure:"secret"`             // HMAC signing key
		ExpirationMinutes int    `mapstructure:"expiration_minutes"` // access token lifetime
	} `mapstructure:"jwt"`

	// Analytics configuration for the periodic click flush
	Analytics struct {
		FlushIntervalSeconds int `mapstructure:"flush_interval_seconds"` // seconds between flush runs
	} `mapstructure:"analytics"`

	// Monitor configuration for URL health checking
	Monitor struct {
		IntervalMinutes int `mapstructure:"interval_minutes"` // Interval in minutes between URL health checks
	} `mapstructure:"monitor"`
}

// FlushInterval returns the click flush interval as a time.Duration.
func (c *Config) FlushInterval() time.Duration {
	return time.Duration(c.Analytics.FlushIntervalSeconds) * time.Second
}

// TokenTTL returns the configured access token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.ExpirationMinutes) * time.Minute
}

// LoadConfig loads the application configuration using Viper.
// It supports environment variable overrides and YAML configuration files.
// Returns a populated Config struct or an error if configuration loading fails.
func LoadConfig() (*Config, error) {
	// Enable automatic environment variable binding
	// This allows config values to be overridden via environment variables
	viper.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	// e.g., "server.port" becomes "SERVER_PORT"
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Specify the directory path where Viper should look for config files
	viper.AddConfigPath("./configs")

	// Specify the name of the config file (without the extension)
	viper.SetConfigName("config")

	// Specify the type/format of the config file (YAML in this case)
	viper.SetConfigType("yaml")

	// Set default values for all configuration options
	// These will be used if no config file is found or if specific keys are missing
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("database.name", "linkshort.db")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.key_prefix", "link-")
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expiration_minutes", 60)
	viper.SetDefault("analytics.flush_interval_seconds", 60)
	viper.SetDefault("monitor.interval_minutes", 5)

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		// Check if the error is specifically "config file not found"
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// This is not a fatal error - we'll use default values
			log.Println("Config file not found, using default values")
		} else {
			// Any other error (permissions, malformed YAML, etc.) is fatal
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal the loaded configuration into our Config structure
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Log the loaded configuration for debugging and verification purposes
	log.Printf("Configuration loaded: Server Port=%d, DB Name=%s, Redis=%s, Flush Interval=%ds",
		cfg.Server.Port, cfg.Database.Name, cfg.Redis.Addr, cfg.Analytics.FlushIntervalSeconds)

	return &cfg, nil
}
