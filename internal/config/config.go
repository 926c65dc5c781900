package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where LoadConfig looks when no path is given
const DefaultConfigPath = "config/config.yaml"

const (
	DefaultBaseURL    = "https://ccview.io"
	DefaultAuthHeader = "X-API-Key"
	DefaultTimeoutMs  = 30000
	DefaultPacingMs   = 100
	DefaultOutputFile = "ccview-test-results.json"
	DefaultLogLevel   = "info"
)

// Environment variables that override the config file
const (
	EnvAPIKey  = "CCVIEW_API_KEY"
	EnvBaseURL = "CCVIEW_BASE_URL"
)

// Config holds the application configuration
type Config struct {
	Environment Environment     `yaml:"environment"`
	Test        TestConfig      `yaml:"test"`
	Reporting   ReportingConfig `yaml:"reporting"`
	Logging     LoggingConfig   `yaml:"logging"`
}

// Environment holds the target service configuration
type Environment struct {
	BaseURL string     `yaml:"base_url"`
	Auth    AuthConfig `yaml:"auth"`
}

// AuthConfig holds the API credential and the header it is sent in
type AuthConfig struct {
	Header string `yaml:"header"`
	Token  string `yaml:"token"`
}

// TestConfig holds test execution configuration
type TestConfig struct {
	TimeoutMs int    `yaml:"timeout_ms"`
	PacingMs  int    `yaml:"pacing_ms"`
	Catalog   string `yaml:"catalog"`
}

// ReportingConfig holds reporting configuration
type ReportingConfig struct {
	OutputFile string `yaml:"output_file"`
	ASCII      bool   `yaml:"ascii"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Timeout returns the per-request timeout
func (t TestConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutMs) * time.Millisecond
}

// Pacing returns the delay between requests
func (t TestConfig) Pacing() time.Duration {
	return time.Duration(t.PacingMs) * time.Millisecond
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Environment: Environment{
			BaseURL: DefaultBaseURL,
			Auth: AuthConfig{
				Header: DefaultAuthHeader,
			},
		},
		Test: TestConfig{
			TimeoutMs: DefaultTimeoutMs,
			PacingMs:  DefaultPacingMs,
		},
		Reporting: ReportingConfig{
			OutputFile: DefaultOutputFile,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// LoadEnv loads variables from a .env file. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// LoadConfig loads the configuration from the config file and environment
// variables. A missing file yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	config := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Override from environment variables if set
	if token := os.Getenv(EnvAPIKey); token != "" {
		config.Environment.Auth.Token = token
	}
	if baseURL := os.Getenv(EnvBaseURL); baseURL != "" {
		config.Environment.BaseURL = baseURL
	}

	config.applyDefaults()
	return config, nil
}

// applyDefaults fills in zero values left by a partial config file
func (c *Config) applyDefaults() {
	if c.Environment.BaseURL == "" {
		c.Environment.BaseURL = DefaultBaseURL
	}
	if c.Environment.Auth.Header == "" {
		c.Environment.Auth.Header = DefaultAuthHeader
	}
	if c.Test.TimeoutMs <= 0 {
		c.Test.TimeoutMs = DefaultTimeoutMs
	}
	if c.Test.PacingMs < 0 {
		c.Test.PacingMs = DefaultPacingMs
	}
	if c.Reporting.OutputFile == "" {
		c.Reporting.OutputFile = DefaultOutputFile
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}
