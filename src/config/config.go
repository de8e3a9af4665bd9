package config

import (
	"fmt"
	"os"

	"trade-bridge/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides validation and persistence.
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from a YAML file, applies
// environment overrides for secrets, and validates the result.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyEnvOverrides()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyEnvOverrides lets secrets come from the environment (a .env file is
// loaded by main before this runs) rather than living in the YAML.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BRIDGE_SHARED_SECRET"); v != "" {
		c.Bridge.SharedSecret = v
	}
	if v := os.Getenv("TERMINAL_WS_URL"); v != "" {
		c.Broker.LiveURL = v
	}
	if v := os.Getenv("TERMINAL_WS_SECRET"); v != "" {
		c.Broker.LiveSecret = v
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Server
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Broker
	switch c.Broker.Source {
	case "live":
		if c.Broker.LiveURL == "" {
			return fmt.Errorf("live source requires broker.live_url")
		}
	case "file":
		if c.Broker.FilePath == "" {
			return fmt.Errorf("file source requires broker.file_path")
		}
	case "mock":
		// nothing to check
	default:
		return fmt.Errorf("unknown broker source: %q (want live, file or mock)", c.Broker.Source)
	}
	if c.Broker.Symbol == "" {
		return fmt.Errorf("broker symbol cannot be empty")
	}
	if c.Broker.Timeframe != "" {
		if _, ok := models.TimeframeDuration(c.Broker.Timeframe); !ok {
			return fmt.Errorf("unknown timeframe: %q", c.Broker.Timeframe)
		}
	}
	if c.Broker.RequestTimeoutSeconds < 0 || c.Broker.MaxAgeSeconds < 0 {
		return fmt.Errorf("broker timeouts cannot be negative")
	}

	// Stream
	if c.Stream.TickIntervalSeconds < 0 || c.Stream.AccountIntervalSeconds < 0 || c.Stream.CandleIntervalSeconds < 0 {
		return fmt.Errorf("stream intervals cannot be negative")
	}
	if c.Stream.SessionQueueSize < 0 {
		return fmt.Errorf("session queue size cannot be negative")
	}

	// Storage
	if c.Storage.DBType == "" {
		return fmt.Errorf("database type cannot be empty")
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}

	// Bridge API
	if c.Bridge.Enabled && c.Bridge.SharedSecret == "" {
		return fmt.Errorf("bridge API is enabled but no shared secret is configured")
	}
	if c.Bridge.Enabled && c.Broker.FilePath == "" {
		return fmt.Errorf("bridge API requires broker.file_path for terminal updates")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
