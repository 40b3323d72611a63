// Package config loads drover configuration from file and environment.
// Precedence is flags > environment (DROVER_ prefix) > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggerConfig controls the zap logger.
type LoggerConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"` // "console" | "json"
	AddSource  bool   `mapstructure:"add_source" yaml:"add_source"`
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// ModelConfig selects the completion provider and model.
type ModelConfig struct {
	Provider  string `mapstructure:"provider" yaml:"provider"`
	Model     string `mapstructure:"model" yaml:"model"`
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// SandboxConfig selects the instance provider and size.
type SandboxConfig struct {
	Provider string `mapstructure:"provider" yaml:"provider"`
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`
	Size     string `mapstructure:"size" yaml:"size"`
}

// AgentConfig bounds the run loop.
type AgentConfig struct {
	MaxIterations int `mapstructure:"max_iterations" yaml:"max_iterations"`
	TokenBudget   int `mapstructure:"token_budget" yaml:"token_budget"`
}

// TranscriptConfig controls run persistence.
type TranscriptConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	DSN     string `mapstructure:"dsn" yaml:"dsn"`
}

// TelemetryConfig controls tracing.
type TelemetryConfig struct {
	Stdout bool `mapstructure:"stdout" yaml:"stdout"`
}

// Config is the root configuration.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	Model      ModelConfig      `mapstructure:"model" yaml:"model"`
	Sandbox    SandboxConfig    `mapstructure:"sandbox" yaml:"sandbox"`
	Agent      AgentConfig      `mapstructure:"agent" yaml:"agent"`
	Transcript TranscriptConfig `mapstructure:"transcript" yaml:"transcript"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry" yaml:"telemetry"`
}

// SetDefaults initializes default values.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	v.SetDefault("model.provider", "anthropic")
	v.SetDefault("model.model", "")
	v.SetDefault("model.max_tokens", 4096)

	v.SetDefault("sandbox.provider", "scrapybara")
	v.SetDefault("sandbox.size", "small")

	v.SetDefault("agent.max_iterations", 40)
	v.SetDefault("agent.token_budget", 0)

	v.SetDefault("transcript.enabled", false)
	v.SetDefault("transcript.dsn", "file:drover.sqlite?_pragma=busy_timeout(5000)")

	v.SetDefault("telemetry.stdout", false)
}

// New builds a viper instance wired for drover: DROVER_ env prefix with
// dots mapped to underscores, optional config file, defaults applied.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("DROVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("drover")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/drover")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// running without a config file is fine
	}
	return v, nil
}

// FromViper unmarshals and validates configuration.
func FromViper(v *viper.Viper) (*Config, error) {
	// sensitive values come from the environment
	v.BindEnv("model.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("sandbox.api_key", "SCRAPYBARA_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Load reads configuration in one step.
func Load(configFile string) (*Config, error) {
	v, err := New(configFile)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// Validate checks for sane values.
func (c *Config) Validate() error {
	if c.Model.Provider == "" {
		return fmt.Errorf("model.provider is required")
	}
	if c.Sandbox.Provider == "" {
		return fmt.Errorf("sandbox.provider is required")
	}
	switch c.Sandbox.Size {
	case "small", "medium", "large":
	default:
		return fmt.Errorf("sandbox.size must be small, medium, or large")
	}
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent.max_iterations must be a positive integer")
	}
	if c.Agent.TokenBudget < 0 {
		return fmt.Errorf("agent.token_budget must not be negative")
	}
	return nil
}
