package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CLIPVAULT_"

// Config represents the clipvault configuration
type Config struct {
	DataDir           string        `yaml:"data_dir,omitempty" env:"DATA_DIR"`
	LogLevel          string        `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat         string        `yaml:"log_format" env:"LOG_FORMAT"`
	ThumbnailWorkers  int           `yaml:"thumbnail_workers" env:"THUMBNAIL_WORKERS"`
	EventBuffer       int           `yaml:"event_buffer" env:"EVENT_BUFFER"`
	RetentionInterval time.Duration `yaml:"retention_interval" env:"RETENTION_INTERVAL"`
	DB                DBConfig      `yaml:"db" envPrefix:"DB_"`
}

// DBConfig holds database connection settings
type DBConfig struct {
	MaxOpenConns  int  `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	BusyTimeoutMs int  `yaml:"busy_timeout_ms" env:"BUSY_TIMEOUT_MS"`
	WAL           bool `yaml:"wal" env:"WAL"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "console",
		EventBuffer:       64,
		RetentionInterval: time.Hour,
		DB: DBConfig{
			MaxOpenConns:  1,
			BusyTimeoutMs: 5000,
			WAL:           true,
		},
	}
}

// ConfigManager manages configuration persistence
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() (*ConfigManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "clipvault")
	configPath := filepath.Join(configDir, "config.yaml")

	return &ConfigManager{
		configPath: configPath,
	}, nil
}

// NewConfigManagerWithPath creates a config manager with custom config path
func NewConfigManagerWithPath(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// Load reads the configuration from file, or returns default if file doesn't exist.
// Fields missing from the file keep their defaults.
func (cm *ConfigManager) Load() (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(cm.configPath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Resolve loads the file configuration and applies CLIPVAULT_* environment
// overrides on top. The result is never saved.
func (cm *ConfigManager) Resolve() (*Config, error) {
	config, err := cm.Load()
	if err != nil {
		return nil, err
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save writes the configuration to file
func (cm *ConfigManager) Save(config *Config) error {
	if err := validate(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	configDir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cm.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// validate checks every field of the configuration
func validate(config *Config) error {
	if _, err := zerolog.ParseLevel(config.LogLevel); err != nil || config.LogLevel == "" {
		return fmt.Errorf("log_level must be one of trace, debug, info, warn, error")
	}

	if config.LogFormat != "console" && config.LogFormat != "json" {
		return fmt.Errorf("log_format must be console or json")
	}

	if config.ThumbnailWorkers < 0 {
		return fmt.Errorf("thumbnail_workers cannot be negative")
	}

	if config.EventBuffer <= 0 {
		return fmt.Errorf("event_buffer must be greater than 0")
	}

	if config.RetentionInterval < 0 {
		return fmt.Errorf("retention_interval cannot be negative")
	}

	if config.DB.MaxOpenConns <= 0 {
		return fmt.Errorf("db.max_open_conns must be greater than 0")
	}

	if config.DB.BusyTimeoutMs < 0 {
		return fmt.Errorf("db.busy_timeout_ms cannot be negative")
	}

	return nil
}

// GetConfigPath returns the path to the config file
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// field binds a user-facing key to a config field
type field struct {
	get func(c *Config) string
	set func(c *Config, value string) error
}

var fields = map[string]field{
	"data-dir": {
		get: func(c *Config) string {
			if c.DataDir == "" {
				return "[default]"
			}
			return c.DataDir
		},
		set: func(c *Config, v string) error { c.DataDir = v; return nil },
	},
	"log-level": {
		get: func(c *Config) string { return c.LogLevel },
		set: func(c *Config, v string) error { c.LogLevel = v; return nil },
	},
	"log-format": {
		get: func(c *Config) string { return c.LogFormat },
		set: func(c *Config, v string) error { c.LogFormat = v; return nil },
	},
	"thumbnail-workers": {
		get: func(c *Config) string { return strconv.Itoa(c.ThumbnailWorkers) },
		set: intSetter("thumbnail-workers", func(c *Config, n int) { c.ThumbnailWorkers = n }),
	},
	"event-buffer": {
		get: func(c *Config) string { return strconv.Itoa(c.EventBuffer) },
		set: intSetter("event-buffer", func(c *Config, n int) { c.EventBuffer = n }),
	},
	"retention-interval": {
		get: func(c *Config) string { return c.RetentionInterval.String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid duration value for retention-interval: %s", v)
			}
			c.RetentionInterval = d
			return nil
		},
	},
	"db-max-open-conns": {
		get: func(c *Config) string { return strconv.Itoa(c.DB.MaxOpenConns) },
		set: intSetter("db-max-open-conns", func(c *Config, n int) { c.DB.MaxOpenConns = n }),
	},
	"db-busy-timeout-ms": {
		get: func(c *Config) string { return strconv.Itoa(c.DB.BusyTimeoutMs) },
		set: intSetter("db-busy-timeout-ms", func(c *Config, n int) { c.DB.BusyTimeoutMs = n }),
	},
	"db-wal": {
		get: func(c *Config) string { return strconv.FormatBool(c.DB.WAL) },
		set: func(c *Config, v string) error {
			switch v {
			case "true":
				c.DB.WAL = true
			case "false":
				c.DB.WAL = false
			default:
				return fmt.Errorf("invalid boolean value for db-wal: %s (must be 'true' or 'false')", v)
			}
			return nil
		},
	},
}

func intSetter(key string, apply func(c *Config, n int)) func(c *Config, value string) error {
	return func(c *Config, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %s", key, value)
		}
		apply(c, n)
		return nil
	}
}

// Keys returns every configuration key in sorted order
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Update modifies a specific configuration value
func (cm *ConfigManager) Update(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	config, err := cm.Load()
	if err != nil {
		return err
	}

	if err := f.set(config, value); err != nil {
		return err
	}

	return cm.Save(config)
}

// Get returns the value for a specific configuration key
func (cm *ConfigManager) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}

	config, err := cm.Load()
	if err != nil {
		return "", err
	}

	return f.get(config), nil
}

// List returns all configuration keys and values
func (cm *ConfigManager) List() (map[string]string, error) {
	config, err := cm.Load()
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(fields))
	for key, f := range fields {
		result[key] = f.get(config)
	}

	return result, nil
}
