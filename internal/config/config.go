// Package config loads the storefront server configuration.
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

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Default configuration values.
const (
	DefaultAddr          = ":3000"
	DefaultClientDir     = "client"
	DefaultDistDir       = "client/dist"
	DefaultManifestPath  = "client/dist/.vite/manifest.json"
	DefaultPublicDir     = "server/public"
	DefaultAssetBase     = "/"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultShutdownGrace = 5 * time.Second
	DefaultAdminEntry    = "src/entry-admin.ts"
	DefaultClientEntry   = "src/entry-client.ts"
)

// ErrInvalidConfig is returned when a configuration fails validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds the server configuration.
type Config struct {
	// Env is "development" or "production". In development islands render
	// client-only unless a route asks otherwise, and assets come from the
	// Vite dev server.
	Env string `yaml:"env"`

	// Addr is the listen address.
	Addr string `yaml:"addr"`

	// ClientDir is the front-end project root, where the Vite dev server
	// is started.
	ClientDir string `yaml:"client_dir"`

	// ViteServer is the URL of an already running Vite dev server. When
	// set in development no dev server is started.
	ViteServer string `yaml:"vite_server"`

	// DistDir holds the production build output.
	DistDir string `yaml:"dist_dir"`

	// ManifestPath is the build manifest; a missing file degrades to no
	// preload tags.
	ManifestPath string `yaml:"manifest"`

	// AssetBase is prefixed to relative manifest files in preload and
	// script tags, for example "/" or "https://cdn.example.com/".
	AssetBase string `yaml:"asset_base"`

	// PublicDir holds static files served under /public/.
	PublicDir string `yaml:"public_dir"`

	// CatalogPath is an optional YAML product catalog. The built-in
	// catalog is used when empty.
	CatalogPath string `yaml:"catalog"`

	// ClientEntry and AdminEntry are the build entries for the hydrator
	// bundle and the admin SPA.
	ClientEntry string `yaml:"client_entry"`
	AdminEntry  string `yaml:"admin_entry"`

	// SecretKey signs fragment URLs. A random key is used when empty,
	// which invalidates fragment URLs across restarts.
	SecretKey string `yaml:"secret_key"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == EnvDevelopment
}

// Load reads the configuration at path, applies environment overrides and
// defaults, and validates the result. An empty path yields the defaults
// plus overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	cfg.applyEnvOverrides(os.Getenv)
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides reads the environment once, at startup. ISLANDS_ENV
// wins over NODE_ENV.
func (c *Config) applyEnvOverrides(getenv func(string) string) {
	for _, key := range []string{"ISLANDS_ENV", "NODE_ENV"} {
		if v := getenv(key); v != "" {
			c.Env = strings.ToLower(v)
			break
		}
	}
	if v := getenv("ISLANDS_ADDR"); v != "" {
		c.Addr = v
	}
	if v := getenv("ISLANDS_SECRET_KEY"); v != "" {
		c.SecretKey = v
	}
	if v := getenv("ISLANDS_VITE_SERVER"); v != "" {
		c.ViteServer = v
	}
	if v := getenv("ISLANDS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// applyDefaults fills in default values for zero-valued fields.
func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = EnvDevelopment
	}
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ClientDir == "" {
		c.ClientDir = DefaultClientDir
	}
	if c.DistDir == "" {
		c.DistDir = DefaultDistDir
	}
	if c.ManifestPath == "" {
		c.ManifestPath = DefaultManifestPath
	}
	if c.PublicDir == "" {
		c.PublicDir = DefaultPublicDir
	}
	if c.AssetBase == "" {
		c.AssetBase = DefaultAssetBase
	}
	if c.ClientEntry == "" {
		c.ClientEntry = DefaultClientEntry
	}
	if c.AdminEntry == "" {
		c.AdminEntry = DefaultAdminEntry
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.ShutdownGrace == 0 {
		c.ShutdownGrace = DefaultShutdownGrace
	}
}

// validate checks the configuration for errors.
func (c *Config) validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("%w: env %q", ErrInvalidConfig, c.Env)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.ShutdownGrace < 0 {
		return fmt.Errorf("%w: negative shutdown_grace", ErrInvalidConfig)
	}
	return nil
}
