// Package config loads the application configuration.
//
// Configuration is read from config.yaml (working directory or ./config)
// with defaults for every key, so the server starts with no file present.
// Environment variables prefixed with CODEROOM_ override file values,
// e.g. CODEROOM_SANDBOX_TIMEOUT_MS=5000.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Sandbox SandboxConfig `mapstructure:"sandbox"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the HTTP/WebSocket listener configuration.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// SandboxConfig holds execution defaults and limits.
type SandboxConfig struct {
	// ScratchRoot is the host directory under which per-session
	// workspaces are created. Empty means the system temp dir.
	ScratchRoot string `mapstructure:"scratch_root"`

	TimeoutMs   int64  `mapstructure:"timeout_ms"`
	MemoryLimit string `mapstructure:"memory_limit"`

	// AllowNetwork restores the legacy network-on behavior. Sandboxed
	// code runs with networking disabled unless this is set AND the
	// request does not ask for isolation itself.
	AllowNetwork bool `mapstructure:"allow_network"`

	MaxConcurrent int   `mapstructure:"max_concurrent"`
	NanoCPUs      int64 `mapstructure:"nano_cpus"`
	PidsLimit     int64 `mapstructure:"pids_limit"`

	// PreloadImages pulls every registered language image at startup.
	PreloadImages bool `mapstructure:"preload_images"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// New loads and validates the application configuration.
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("coderoom")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("sandbox.scratch_root", "")
	v.SetDefault("sandbox.timeout_ms", 10000)
	v.SetDefault("sandbox.memory_limit", "256m")
	v.SetDefault("sandbox.allow_network", false)
	v.SetDefault("sandbox.max_concurrent", 10)
	v.SetDefault("sandbox.nano_cpus", 500_000_000)
	v.SetDefault("sandbox.pids_limit", 64)
	v.SetDefault("sandbox.preload_images", false)

	v.SetDefault("logging.mode", "production")
	v.SetDefault("logging.level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file: run on defaults.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}

	if c.Sandbox.TimeoutMs <= 0 {
		return fmt.Errorf("sandbox.timeout_ms must be positive, got: %d", c.Sandbox.TimeoutMs)
	}

	if c.Sandbox.MemoryLimit == "" {
		return fmt.Errorf("sandbox.memory_limit must not be empty")
	}

	if c.Sandbox.MaxConcurrent <= 0 {
		return fmt.Errorf("sandbox.max_concurrent must be positive, got: %d", c.Sandbox.MaxConcurrent)
	}

	if c.Sandbox.PidsLimit <= 0 {
		return fmt.Errorf("sandbox.pids_limit must be positive, got: %d", c.Sandbox.PidsLimit)
	}

	if c.Logging.Mode != "production" && c.Logging.Mode != "development" {
		return fmt.Errorf("invalid logging.mode: %s, must be 'production' or 'development'", c.Logging.Mode)
	}

	return nil
}
