// Package config loads the server configuration from a TOML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultIndexURL    = "https://algebraicjulia.github.io/StructuredDecompositions.jl/dev/search_index.js"
	DefaultBaseURL     = "https://algebraicjulia.github.io/StructuredDecompositions.jl/dev/"
	DefaultCacheTTL    = 7 * 24 * time.Hour
	DefaultMaxResults  = 10
	DefaultLockTimeout = 5 * time.Second

	// DefaultRefreshInterval is the minimum gap between two downloads
	DefaultRefreshInterval = time.Minute

	// MaxResultsLimit caps any single search
	MaxResultsLimit = 50
)

// Environment variables that override file values
const (
	EnvDataDir  = "DOCSEARCH_DATA_DIR"
	EnvIndexURL = "DOCSEARCH_INDEX_URL"
	EnvBaseURL  = "DOCSEARCH_BASE_URL"
)

// Config holds the runtime configuration
type Config struct {
	DataDir     string        // Root for docs/ and search/; resolved at startup when empty
	IndexURL    string        // Where refresh downloads search_index.js from
	BaseURL     string        // Prefix for record locations in results
	CacheTTL    time.Duration // Age after which the downloaded payload is stale
	MaxResults  int           // Default result count for searches
	LockTimeout time.Duration // Max wait for the index lock
	HTTPAddr    string        // Serve MCP over HTTP on this address instead of stdio

	// Watch rebuilds the index whenever the local payload file is rewritten
	Watch bool

	RefreshInterval time.Duration
}

// fileConfig is the on-disk TOML form
type fileConfig struct {
	DataDir     string `toml:"data_dir,omitempty"`
	IndexURL    string `toml:"index_url,omitempty"`
	BaseURL     string `toml:"base_url,omitempty"`
	CacheTTL    string `toml:"cache_ttl,omitempty"`
	MaxResults  int    `toml:"max_results,omitempty"`
	LockTimeout string `toml:"lock_timeout,omitempty"`
	HTTPAddr    string `toml:"http_addr,omitempty"`
	Watch       bool   `toml:"watch,omitempty"`

	RefreshInterval string `toml:"refresh_interval,omitempty"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		IndexURL:    DefaultIndexURL,
		BaseURL:     DefaultBaseURL,
		CacheTTL:    DefaultCacheTTL,
		MaxResults:  DefaultMaxResults,
		LockTimeout: DefaultLockTimeout,

		RefreshInterval: DefaultRefreshInterval,
	}
}

// Load reads the TOML file at path over the defaults and applies the
// environment overrides, including those from a .env file in the working
// directory. A missing file is not an error. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	// Variables already set win over .env
	_ = godotenv.Load()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := cfg.merge(data); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// defaults
		default:
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) merge(data []byte) error {
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.DataDir != "" {
		c.DataDir = fc.DataDir
	}
	if fc.IndexURL != "" {
		c.IndexURL = fc.IndexURL
	}
	if fc.BaseURL != "" {
		c.BaseURL = fc.BaseURL
	}
	if fc.MaxResults != 0 {
		c.MaxResults = fc.MaxResults
	}
	if fc.HTTPAddr != "" {
		c.HTTPAddr = fc.HTTPAddr
	}
	if fc.Watch {
		c.Watch = true
	}
	if fc.CacheTTL != "" {
		d, err := time.ParseDuration(fc.CacheTTL)
		if err != nil {
			return fmt.Errorf("cache_ttl: %w", err)
		}
		c.CacheTTL = d
	}
	if fc.LockTimeout != "" {
		d, err := time.ParseDuration(fc.LockTimeout)
		if err != nil {
			return fmt.Errorf("lock_timeout: %w", err)
		}
		c.LockTimeout = d
	}
	if fc.RefreshInterval != "" {
		d, err := time.ParseDuration(fc.RefreshInterval)
		if err != nil {
			return fmt.Errorf("refresh_interval: %w", err)
		}
		c.RefreshInterval = d
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvIndexURL); v != "" {
		c.IndexURL = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
}

// Validate checks value ranges and URLs
func (c Config) Validate() error {
	if c.MaxResults <= 0 || c.MaxResults > MaxResultsLimit {
		return fmt.Errorf("max_results must be between 1 and %d, got %d", MaxResultsLimit, c.MaxResults)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative")
	}
	if c.LockTimeout <= 0 {
		return fmt.Errorf("lock_timeout must be positive")
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval must not be negative")
	}
	if err := checkURL("index_url", c.IndexURL); err != nil {
		return err
	}
	if c.BaseURL != "" {
		if err := checkURL("base_url", c.BaseURL); err != nil {
			return err
		}
	}
	return nil
}

func checkURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", name, raw)
	}
	return nil
}

// Save writes cfg to path as TOML
func (c Config) Save(path string) error {
	fc := fileConfig{
		DataDir:     c.DataDir,
		IndexURL:    c.IndexURL,
		BaseURL:     c.BaseURL,
		CacheTTL:    c.CacheTTL.String(),
		MaxResults:  c.MaxResults,
		LockTimeout: c.LockTimeout.String(),
		HTTPAddr:    c.HTTPAddr,
		Watch:       c.Watch,

		RefreshInterval: c.RefreshInterval.String(),
	}

	data, err := toml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
