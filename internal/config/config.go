package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the public ECMWF open data store.
const DefaultBaseURL = "https://data.ecmwf.int/forecasts/"

// fileName is the settings file under the user's home directory.
const fileName = ".ecmwfget.yaml"

// Config defines the persisted downloader settings.
type Config struct {
	BaseURL        string      `yaml:"base_url"`
	OutputDir      string      `yaml:"output_dir"`
	Concurrency    int         `yaml:"concurrency"`
	TimeoutSeconds int         `yaml:"timeout_seconds"`
	Archive        string      `yaml:"archive,omitempty"`
	Retry          RetryConfig `yaml:"retry"`
}

// RetryConfig defines the per-task retry behavior.
type RetryConfig struct {
	Attempts   int           `yaml:"attempts"`
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		OutputDir:      "./ecmwf_data",
		Concurrency:    5,
		TimeoutSeconds: 300,
		Retry: RetryConfig{
			Attempts:   3,
			Backoff:    time.Second,
			MaxBackoff: 30 * time.Second,
		},
	}
}

// DefaultPath returns the settings file location in the user's home
// directory, or "" if the home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, fileName)
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	BaseURL        string          `yaml:"base_url"`
	OutputDir      string          `yaml:"output_dir"`
	Concurrency    int             `yaml:"concurrency"`
	TimeoutSeconds int             `yaml:"timeout_seconds"`
	Archive        string          `yaml:"archive,omitempty"`
	Retry          yamlRetryConfig `yaml:"retry"`
}

type yamlRetryConfig struct {
	Attempts   int    `yaml:"attempts"`
	Backoff    string `yaml:"backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

// Load reads the settings file at path on top of the defaults. A missing
// file is not an error; it simply yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	if yc.BaseURL != "" {
		cfg.BaseURL = yc.BaseURL
	}
	if yc.OutputDir != "" {
		cfg.OutputDir = yc.OutputDir
	}
	if yc.Concurrency != 0 {
		cfg.Concurrency = yc.Concurrency
	}
	if yc.TimeoutSeconds != 0 {
		cfg.TimeoutSeconds = yc.TimeoutSeconds
	}
	if yc.Archive != "" {
		cfg.Archive = yc.Archive
	}
	if yc.Retry.Attempts != 0 {
		cfg.Retry.Attempts = yc.Retry.Attempts
	}
	if yc.Retry.Backoff != "" {
		d, err := time.ParseDuration(yc.Retry.Backoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.backoff: %w", err)
		}
		cfg.Retry.Backoff = d
	}
	if yc.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(yc.Retry.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.max_backoff: %w", err)
		}
		cfg.Retry.MaxBackoff = d
	}

	return cfg, nil
}

// LoadFromEnv applies ECMWF_* environment variable overrides.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("ECMWF_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("ECMWF_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("ECMWF_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse ECMWF_CONCURRENCY: %w", err)
		}
		c.Concurrency = n
	}
	if v := os.Getenv("ECMWF_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse ECMWF_TIMEOUT_SECONDS: %w", err)
		}
		c.TimeoutSeconds = n
	}
	if v := os.Getenv("ECMWF_ARCHIVE"); v != "" {
		c.Archive = v
	}
	if v := os.Getenv("ECMWF_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse ECMWF_RETRY_ATTEMPTS: %w", err)
		}
		c.Retry.Attempts = n
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("config: base_url is required")
	}
	if c.OutputDir == "" {
		return errors.New("config: output_dir is required")
	}
	if c.Concurrency <= 0 {
		return errors.New("config: concurrency must be positive")
	}
	if c.TimeoutSeconds < 0 {
		return errors.New("config: timeout_seconds must not be negative")
	}
	if c.Retry.Attempts <= 0 {
		return errors.New("config: retry.attempts must be positive")
	}
	return nil
}

// Merge merges override values into c, returning a new Config. Zero values
// in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.BaseURL != "" {
		c.BaseURL = override.BaseURL
	}
	if override.OutputDir != "" {
		c.OutputDir = override.OutputDir
	}
	if override.Concurrency != 0 {
		c.Concurrency = override.Concurrency
	}
	if override.TimeoutSeconds != 0 {
		c.TimeoutSeconds = override.TimeoutSeconds
	}
	if override.Archive != "" {
		c.Archive = override.Archive
	}
	if override.Retry.Attempts != 0 {
		c.Retry.Attempts = override.Retry.Attempts
	}
	if override.Retry.Backoff != 0 {
		c.Retry.Backoff = override.Retry.Backoff
	}
	if override.Retry.MaxBackoff != 0 {
		c.Retry.MaxBackoff = override.Retry.MaxBackoff
	}
	return c
}

// Save writes the configuration to path, creating parent directories as
// needed. The write goes through a temp sibling and rename so a crashed
// save never clobbers the previous settings.
func (c Config) Save(path string) error {
	out := yamlConfig{
		BaseURL:        c.BaseURL,
		OutputDir:      c.OutputDir,
		Concurrency:    c.Concurrency,
		TimeoutSeconds: c.TimeoutSeconds,
		Archive:        c.Archive,
		Retry: yamlRetryConfig{
			Attempts:   c.Retry.Attempts,
			Backoff:    c.Retry.Backoff.String(),
			MaxBackoff: c.Retry.MaxBackoff.String(),
		},
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
