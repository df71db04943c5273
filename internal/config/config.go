package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all stringact configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// string/random
	Random RandomConfig `yaml:"random"`

	// string/replace
	Replace ReplaceConfig `yaml:"replace"`

	// Host dispatch
	Host HostConfig `yaml:"host"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// RandomConfig configures the random string generator.
type RandomConfig struct {
	// Maximum code points per generated string; 0 disables the cap.
	MaxLength int `yaml:"max_length"`

	// Fixed seed for reproducible output. Nil uses the shared generator.
	Seed *uint64 `yaml:"seed,omitempty"`

	// Drop whitespace from every alphabet before drawing.
	SkipWhitespace bool `yaml:"skip_whitespace"`

	// Drop control and other non-graphic code points from every alphabet.
	PrintableOnly bool `yaml:"printable_only"`
}

// ReplaceConfig configures the regex replacer.
type ReplaceConfig struct {
	// regexp2 options: ignore_case, multiline, singleline, explicit_capture,
	// ignore_whitespace, ecmascript, re2
	Options []string `yaml:"options"`

	// Per-subject match timeout, e.g. "250ms". Empty means unbounded.
	MatchTimeout string `yaml:"match_timeout"`

	// Compiled pattern LRU size; 0 disables caching.
	CacheSize int `yaml:"cache_size"`
}

// HostConfig configures the evaluator.
type HostConfig struct {
	// Maximum concurrent invocations in a batch; 0 means unlimited.
	BatchConcurrency int `yaml:"batch_concurrency"`

	// Invocations slower than this log a warning.
	SlowThreshold string `yaml:"slow_threshold"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "stringact",
		Version: "0.3.0",

		Random: RandomConfig{
			MaxLength: 1 << 20,
		},

		Replace: ReplaceConfig{
			MatchTimeout: "2s",
			CacheSize:    64,
		},

		Host: HostConfig{
			BatchConcurrency: 8,
			SlowThreshold:    "500ms",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
// Unparseable numeric values are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("STRINGACT_RANDOM_MAX_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Random.MaxLength = n
		}
	}
	if v := os.Getenv("STRINGACT_RANDOM_SEED"); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Random.Seed = &seed
		}
	}
	if v := os.Getenv("STRINGACT_REPLACE_TIMEOUT"); v != "" {
		c.Replace.MatchTimeout = v
	}
	if v := os.Getenv("STRINGACT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
		c.Logging.DebugMode = true
	}
}

// GetMatchTimeout returns the replace match timeout. An empty value
// means no timeout; an invalid one falls back to 2s.
func (c *Config) GetMatchTimeout() time.Duration {
	if c.Replace.MatchTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Replace.MatchTimeout)
	if err != nil || d < 0 {
		return 2 * time.Second
	}
	return d
}

// GetSlowThreshold returns the slow invocation threshold as a duration.
func (c *Config) GetSlowThreshold() time.Duration {
	d, err := time.ParseDuration(c.Host.SlowThreshold)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// ValidRegexOptions lists the accepted replace.options entries.
var ValidRegexOptions = []string{
	"ignore_case", "multiline", "singleline", "explicit_capture",
	"ignore_whitespace", "ecmascript", "re2",
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Random.MaxLength < 0 {
		return fmt.Errorf("random.max_length must not be negative: %d", c.Random.MaxLength)
	}
	if c.Replace.CacheSize < 0 {
		return fmt.Errorf("replace.cache_size must not be negative: %d", c.Replace.CacheSize)
	}
	if c.Host.BatchConcurrency < 0 {
		return fmt.Errorf("host.batch_concurrency must not be negative: %d", c.Host.BatchConcurrency)
	}
	if c.Replace.MatchTimeout != "" {
		if d, err := time.ParseDuration(c.Replace.MatchTimeout); err != nil || d < 0 {
			return fmt.Errorf("invalid replace.match_timeout: %q", c.Replace.MatchTimeout)
		}
	}

	for _, opt := range c.Replace.Options {
		valid := false
		for _, known := range ValidRegexOptions {
			if opt == known {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid replace option: %s (valid: %v)", opt, ValidRegexOptions)
		}
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "console", "text":
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	return nil
}
