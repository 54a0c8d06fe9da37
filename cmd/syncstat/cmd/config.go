package cmd

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/good-yellow-bee/syncstat/internal/models"
)

// Config represents the syncstat configuration file.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Data    DataConfig     `yaml:"data"`
	Columns models.Columns `yaml:"columns"`
	Verbose bool           `yaml:"-"` // set via CLI flag
}

// ServerConfig contains settings of the serve command.
type ServerConfig struct {
	HTTPAddress        string  `yaml:"http_address"`          // HTTP listen address (default: :8080)
	MetricsAddress     string  `yaml:"metrics_address"`       // Prometheus listen address, empty disables (default: :9090)
	RateLimitPerSecond float64 `yaml:"rate_limit_per_second"` // per client IP, 0 disables
	RateLimitBurst     int     `yaml:"rate_limit_burst"`
}

// DataConfig describes where the activity log lives and how it is reloaded.
type DataConfig struct {
	Paths        []string `yaml:"paths"`         // files or glob patterns
	Watch        bool     `yaml:"watch"`         // reload on file change (default: true)
	PollInterval string   `yaml:"poll_interval"` // fallback polling interval (default: 5s)
	Debounce     string   `yaml:"debounce"`      // quiet period before reload (default: 500ms)
	Workers      int      `yaml:"workers"`       // parallel file readers, 0 = auto
}

// LoadConfig loads configuration from a YAML file. Keys absent from the
// file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{
			MetricsAddress: ":9090",
		},
		Data: DataConfig{
			Watch: true,
		},
	}
	cfg.setDefaults()
	return cfg
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.Server.HTTPAddress == "" {
		c.Server.HTTPAddress = ":8080"
	}
	if c.Server.RateLimitBurst == 0 {
		c.Server.RateLimitBurst = 20
	}
	if c.Data.PollInterval == "" {
		c.Data.PollInterval = "5s"
	}
	if c.Data.Debounce == "" {
		c.Data.Debounce = "500ms"
	}
	c.Columns = c.Columns.WithDefaults()
}

// Validate checks the configuration for errors. Data paths are checked by
// the commands that need them since they may come from arguments.
func (c *Config) Validate() error {
	if c.Server.HTTPAddress == "" {
		return fmt.Errorf("server.http_address is required")
	}
	if c.Server.MetricsAddress != "" && c.Server.MetricsAddress == c.Server.HTTPAddress {
		return fmt.Errorf("server.metrics_address must differ from server.http_address")
	}
	if c.Server.RateLimitPerSecond < 0 {
		return fmt.Errorf("server.rate_limit_per_second must not be negative")
	}
	if c.Server.RateLimitBurst < 0 {
		return fmt.Errorf("server.rate_limit_burst must not be negative")
	}
	if c.Data.Workers < 0 {
		return fmt.Errorf("data.workers must not be negative")
	}
	if d, err := time.ParseDuration(c.Data.PollInterval); err != nil || d <= 0 {
		return fmt.Errorf("data.poll_interval must be a positive duration, got %q", c.Data.PollInterval)
	}
	if d, err := time.ParseDuration(c.Data.Debounce); err != nil || d < 0 {
		return fmt.Errorf("data.debounce must be a non-negative duration, got %q", c.Data.Debounce)
	}
	return nil
}

// PollIntervalDuration returns the parsed poll interval.
func (c *Config) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.Data.PollInterval)
	return d
}

// DebounceDuration returns the parsed debounce period.
func (c *Config) DebounceDuration() time.Duration {
	d, _ := time.ParseDuration(c.Data.Debounce)
	return d
}
