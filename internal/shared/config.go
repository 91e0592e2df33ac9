package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Source   SourceConfig   `toml:"source"`
	Database DatabaseConfig `toml:"database"`
	Account  AccountConfig  `toml:"account"`
	Engine   EngineConfig   `toml:"engine"`
	Wizard   WizardConfig   `toml:"wizard"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// SourceConfig points at the legacy app's database.
type SourceConfig struct {
	Path string `toml:"path"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// AccountConfig configures verification of the migrated account token.
type AccountConfig struct {
	ProfileURL     string `toml:"profile_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the profile request timeout.
func (a AccountConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// EngineConfig tunes the local migration engine.
type EngineConfig struct {
	Workers     int     `toml:"workers"`
	RateLimit   float64 `toml:"rate_limit"`
	StepDelayMS int     `toml:"step_delay_ms"`
}

// StepDelay returns the pause inserted between engine steps.
func (e EngineConfig) StepDelay() time.Duration {
	return time.Duration(e.StepDelayMS) * time.Millisecond
}

// WizardConfig contains wizard presentation and event settings.
type WizardConfig struct {
	EventBuffer      int    `toml:"event_buffer"`
	AvatarSize       int    `toml:"avatar_size"`
	IconSize         int    `toml:"icon_size"`
	HelpURL          string `toml:"help_url"`
	ClassifyFailures bool   `toml:"classify_failures"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port for [net/http.Server].
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate rejects values the engine and wizard cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Source.Path == "":
		return fmt.Errorf("%w: source.path is required", ErrInvalidConfig)
	case c.Database.Path == "":
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	case c.Engine.Workers < 0:
		return fmt.Errorf("%w: engine.workers must not be negative", ErrInvalidConfig)
	case c.Engine.RateLimit < 0:
		return fmt.Errorf("%w: engine.rate_limit must not be negative", ErrInvalidConfig)
	case c.Wizard.EventBuffer < 0:
		return fmt.Errorf("%w: wizard.event_buffer must not be negative", ErrInvalidConfig)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
