package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Default values used when neither the config file nor the environment set a key
const (
	DefaultBaseURL        = "http://localhost:8080"
	DefaultPollInterval   = 5 * time.Second
	DefaultRequestTimeout = 10 * time.Second
	DefaultLogLevel       = "info"
	DefaultLogFile        = "dex-bridge.log"
)

// Config holds the application configuration
type Config struct {
	BaseURL        string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	LogLevel       string
	LogFile        string
	MetricsAddr    string
	JWTToken       string
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".dex-bridge")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("base_url", DefaultBaseURL)
	viper.SetDefault("poll_interval", DefaultPollInterval)
	viper.SetDefault("request_timeout", DefaultRequestTimeout)
	viper.SetDefault("log_level", DefaultLogLevel)
	viper.SetDefault("log_file", DefaultLogFile)
	viper.SetDefault("metrics_addr", "")
	viper.SetDefault("jwt_token", "")

	// Read from environment variables
	viper.SetEnvPrefix("DEX_BRIDGE")
	viper.AutomaticEnv()

	// Read config file (optional)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		BaseURL:        viper.GetString("base_url"),
		PollInterval:   viper.GetDuration("poll_interval"),
		RequestTimeout: viper.GetDuration("request_timeout"),
		LogLevel:       viper.GetString("log_level"),
		LogFile:        viper.GetString("log_file"),
		MetricsAddr:    viper.GetString("metrics_addr"),
		JWTToken:       viper.GetString("jwt_token"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig = cfg
	return cfg, nil
}

// Validate checks the values that would otherwise fail much later
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is empty. Please set DEX_BRIDGE_BASE_URL or base_url in .dex-bridge.yaml")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

// RequireJWT returns an error unless a 1Click API token is configured
func (c *Config) RequireJWT() error {
	if c.JWTToken == "" {
		return fmt.Errorf("JWT token not found. Please set DEX_BRIDGE_JWT_TOKEN environment variable or add jwt_token to .dex-bridge.yaml")
	}
	return nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
