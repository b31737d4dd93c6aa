// Package config provides configuration management using Viper.
// It loads configuration from environment variables, .env files, and config files.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerPort               = 8080
	defaultServerHost               = "0.0.0.0"
	defaultReadTimeout              = 30 * time.Second
	defaultWriteTimeout             = 30 * time.Second
	defaultLogLevel                 = "info"
	defaultLogPretty                = false
	defaultTrackerBufferingLookback = 3
	defaultTrackerProbePeekSize     = 512
	defaultTrackerSwitchCooldown    = 2 * time.Second
	defaultSyncStorePath            = "./data/segtrack.db"
	defaultSyncStoreMigrationsPath  = "file://internal/syncstore/migrations"
	defaultSyncStoreConnTimeout     = 5 * time.Second
	envPrefix                      = "SEGTRACK"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Tracker   TrackerConfig
	SyncStore SyncStoreConfig
}

// ServerConfig holds HTTP server configuration for cmd/trackerdemo.
type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// TrackerConfig holds the knobs the demo uses to drive a tracker.Tracker:
// how far behind the live edge buffering logic should target, how many
// bytes the format prober peeks before falling back to MIME sniffing, and
// how long the demo waits between representation switch attempts.
type TrackerConfig struct {
	BufferingLookback uint64
	ProbePeekSize     int
	SwitchCooldown    time.Duration
}

// SyncStoreConfig holds the sqlite-backed synchronization reference store's
// connection settings.
type SyncStoreConfig struct {
	Path              string
	MigrationsPath    string
	ConnectionTimeout time.Duration
}

// Load reads configuration from .env file, config files, environment variables, and defaults
func Load() (*Config, error) {
	// Load .env file if present (optional, won't error if missing)
	// .env files are optional in production and CI where env vars are set directly
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/segtrack")

	// Environment variable settings
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Unmarshal into struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.host", defaultServerHost)
	v.SetDefault("server.readtimeout", defaultReadTimeout)
	v.SetDefault("server.writetimeout", defaultWriteTimeout)

	// Logging defaults
	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.pretty", defaultLogPretty)

	// Tracker defaults
	v.SetDefault("tracker.bufferinglookback", defaultTrackerBufferingLookback)
	v.SetDefault("tracker.probepeeksize", defaultTrackerProbePeekSize)
	v.SetDefault("tracker.switchcooldown", defaultTrackerSwitchCooldown)

	// SyncStore defaults
	v.SetDefault("syncstore.path", defaultSyncStorePath)
	v.SetDefault("syncstore.migrationspath", defaultSyncStoreMigrationsPath)
	v.SetDefault("syncstore.connectiontimeout", defaultSyncStoreConnTimeout)
}

// Validate checks that configuration values are valid
func (c *Config) Validate() error {
	// Validate server port
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}

	// Validate timeout durations
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout: %v (must be > 0)", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("invalid write timeout: %v (must be > 0)", c.Server.WriteTimeout)
	}

	// Validate log level
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Logging.Level, strings.Join(validLevels, ", "))
	}

	// Validate tracker knobs
	if c.Tracker.ProbePeekSize <= 0 {
		return fmt.Errorf("invalid tracker probe peek size: %d (must be > 0)", c.Tracker.ProbePeekSize)
	}
	if c.Tracker.SwitchCooldown < 0 {
		return fmt.Errorf("invalid tracker switch cooldown: %v (must be >= 0)", c.Tracker.SwitchCooldown)
	}

	// Validate sync store settings
	if c.SyncStore.Path == "" {
		return errors.New("sync store path must not be empty")
	}
	if c.SyncStore.MigrationsPath == "" {
		return errors.New("sync store migrations path must not be empty")
	}
	if c.SyncStore.ConnectionTimeout <= 0 {
		return fmt.Errorf("invalid sync store connection timeout: %v (must be > 0)", c.SyncStore.ConnectionTimeout)
	}

	return nil
}

// contains checks if a string slice contains a specific value
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
