package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Storage backend names.
const (
	BackendSurrealDB = "surrealdb"
	BackendMemory    = "memory"
)

// Config holds all configuration for stockhistory
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Reconcile   ReconcileConfig `toml:"reconcile"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig selects and configures the history store backend.
type StorageConfig struct {
	Backend   string `toml:"backend"` // "surrealdb" (default) or "memory"
	Address   string `toml:"address"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	PageSize  int    `toml:"page_size"` // records per page when scanning the collection
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Finnhub FinnhubConfig `toml:"finnhub"`
}

// FinnhubConfig holds Finnhub API configuration
type FinnhubConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	Exchange  string `toml:"exchange"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *FinnhubConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// ReconcileConfig controls the daily quote reconciliation pass.
type ReconcileConfig struct {
	Enabled      bool   `toml:"enabled"`
	Interval     string `toml:"interval"`
	RunOnStartup bool   `toml:"run_on_startup"`
	Concurrency  int    `toml:"concurrency"`
	Timezone     string `toml:"timezone"`
	Timeout      string `toml:"timeout"`
}

// GetInterval parses and returns the scheduler interval
func (c *ReconcileConfig) GetInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// GetTimeout parses and returns the per-pass deadline
func (c *ReconcileConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// GetConcurrency returns the number of symbols processed in parallel (minimum 1).
func (c *ReconcileConfig) GetConcurrency() int {
	if c.Concurrency < 1 {
		return 1
	}
	return c.Concurrency
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend:   BackendSurrealDB,
			Address:   "ws://localhost:8000/rpc",
			Username:  "root",
			Password:  "root",
			Namespace: "stockhistory",
			Database:  "stockhistory",
			PageSize:  100,
		},
		Clients: ClientsConfig{
			Finnhub: FinnhubConfig{
				BaseURL:   "https://finnhub.io/api/v1",
				Exchange:  "US",
				RateLimit: 5,
				Timeout:   "30s",
			},
		},
		Reconcile: ReconcileConfig{
			Enabled:      true,
			Interval:     "1h",
			RunOnStartup: true,
			Concurrency:  1,
			Timezone:     "America/New_York",
			Timeout:      "10m",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			Outputs:    []string{"console"},
			FilePath:   "./logs/stockhistory.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("STOCKHISTORY_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("STOCKHISTORY_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("STOCKHISTORY_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("STOCKHISTORY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if backend := os.Getenv("STOCKHISTORY_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = strings.ToLower(backend)
	}

	if addr := os.Getenv("STOCKHISTORY_STORAGE_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}

	for _, name := range []string{"FINNHUB_API_KEY", "STOCKHISTORY_FINNHUB_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			config.Clients.Finnhub.APIKey = key
			break
		}
	}

	if c := os.Getenv("STOCKHISTORY_RECONCILE_CONCURRENCY"); c != "" {
		if n, err := strconv.Atoi(c); err == nil {
			config.Reconcile.Concurrency = n
		}
	}
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSurrealDB, BackendMemory:
	case "":
		c.Storage.Backend = BackendSurrealDB
	default:
		return fmt.Errorf("unknown storage backend: %s (supported: surrealdb, memory)", c.Storage.Backend)
	}
	if c.Storage.PageSize <= 0 {
		c.Storage.PageSize = 100
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
