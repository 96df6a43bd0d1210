// Package config provides configuration management for sbk.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultContentDir is where synced MDX files are written when no directory is configured.
var DefaultContentDir = filepath.Join("content", "substack")

// DefaultCacheTTL is how long a cached feed stays fresh.
const DefaultCacheTTL = time.Hour

// Config holds the sbk configuration.
type Config struct {
	URL          string `yaml:"url"`
	ContentDir   string `yaml:"content_dir,omitempty"`
	CacheDir     string `yaml:"cache_dir,omitempty"`
	CacheTTL     string `yaml:"cache_ttl,omitempty"`
	RedisAddr    string `yaml:"redis_addr,omitempty"`
	OutputFormat string `yaml:"output_format,omitempty"`
}

// Validate checks that all required fields are present and valid.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("url is required")
	}
	if !strings.HasPrefix(c.URL, "https://") && !strings.HasPrefix(c.URL, "http://") {
		return errors.New("url must use http or https")
	}
	if _, err := c.TTL(); err != nil {
		return err
	}
	return nil
}

// NormalizeURL trims whitespace and trailing slashes and adds https:// when no
// scheme is given.
func (c *Config) NormalizeURL() {
	c.URL = strings.TrimRight(strings.TrimSpace(c.URL), "/")
	if c.URL != "" && !strings.Contains(c.URL, "://") {
		c.URL = "https://" + c.URL
	}
}

// TTL returns the parsed cache TTL, or DefaultCacheTTL when unset.
func (c *Config) TTL() (time.Duration, error) {
	if c.CacheTTL == "" {
		return DefaultCacheTTL, nil
	}
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid cache_ttl %q: %w", c.CacheTTL, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid cache_ttl %q: must be positive", c.CacheTTL)
	}
	return d, nil
}

// ContentDirOrDefault returns the configured content directory or DefaultContentDir.
func (c *Config) ContentDirOrDefault() string {
	if c.ContentDir != "" {
		return c.ContentDir
	}
	return DefaultContentDir
}

// CacheDirOrDefault returns the configured cache directory, or sbk's directory
// under the user cache directory.
func (c *Config) CacheDirOrDefault() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".", ".sbk", "cache")
	}
	return filepath.Join(dir, "sbk")
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
// Precedence: SBK_* → SUBSTACK_* → existing config value
func (c *Config) LoadFromEnv() {
	if url := getEnvWithFallback("SBK_URL", "SUBSTACK_URL"); url != "" {
		c.URL = url
	}
	if dir := os.Getenv("SBK_CONTENT_DIR"); dir != "" {
		c.ContentDir = dir
	}
	if dir := os.Getenv("SBK_CACHE_DIR"); dir != "" {
		c.CacheDir = dir
	}
	if ttl := os.Getenv("SBK_CACHE_TTL"); ttl != "" {
		c.CacheTTL = ttl
	}
	if addr := os.Getenv("SBK_REDIS_ADDR"); addr != "" {
		c.RedisAddr = addr
	}
}

// getEnvWithFallback returns the value of the primary env var, or the fallback if primary is empty.
func getEnvWithFallback(primary, fallback string) string {
	if v := os.Getenv(primary); v != "" {
		return v
	}
	return os.Getenv(fallback)
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "sbk", "config.yml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".sbk", "config.yml")
	}

	return filepath.Join(home, ".config", "sbk", "config.yml")
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// User read/write only
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnv loads configuration from file and overrides with environment variables.
// A missing file yields an empty config; a malformed one is an error.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = &Config{}
	}

	cfg.LoadFromEnv()
	return cfg, nil
}
