// Package config handles configuration loading and management for Quorum.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/kwhitfield/quorum/pkg/models"
)

// Config holds all configuration for Quorum.
type Config struct {
	Anthropic AnthropicConfig       `mapstructure:"anthropic"`
	Defaults  DefaultsConfig        `mapstructure:"defaults"`
	Ensemble  models.EnsembleConfig `mapstructure:"ensemble"`
	Timeouts  TimeoutsConfig        `mapstructure:"timeouts"`
	Patterns  PatternsConfig        `mapstructure:"patterns"`
	TUI       TUIConfig             `mapstructure:"tui"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	// UseAWSBedrock routes calls through AWS Bedrock instead of the
	// direct API.
	UseAWSBedrock bool   `mapstructure:"use_aws_bedrock"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`
}

// DefaultsConfig holds default values for production runs.
type DefaultsConfig struct {
	// Tier is the default production tier name.
	Tier string `mapstructure:"tier"`
	// Language is the default target language for generated code.
	Language string `mapstructure:"language"`
	// TierFile points at an optional YAML tier override file.
	TierFile string `mapstructure:"tier_file"`
}

// TimeoutsConfig holds per-collaborator timeout settings.
type TimeoutsConfig struct {
	Generation time.Duration `mapstructure:"generation"`
	Sandbox    time.Duration `mapstructure:"sandbox"`
	Analyzer   time.Duration `mapstructure:"analyzer"`
}

// PatternsConfig holds outcome-store settings.
type PatternsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// TUIConfig holds TUI display settings.
type TUIConfig struct {
	RefreshRate time.Duration `mapstructure:"refresh_rate"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, QUORUM_*)
// 2. Project config (.quorum.yaml in current directory or parent)
// 3. User config (~/.config/quorum/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("QUORUM")
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("anthropic.aws_region", "AWS_REGION")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Ensemble = cfg.Ensemble.Normalize()

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Ensemble = cfg.Ensemble.Normalize()

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.use_aws_bedrock", cfg.Anthropic.UseAWSBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("defaults.tier", cfg.Defaults.Tier)
	v.Set("defaults.language", cfg.Defaults.Language)
	v.Set("defaults.tier_file", cfg.Defaults.TierFile)
	v.Set("ensemble.min_agents", cfg.Ensemble.MinAgents)
	v.Set("ensemble.max_agents", cfg.Ensemble.MaxAgents)
	v.Set("ensemble.voting_strategy", string(cfg.Ensemble.Strategy))
	v.Set("ensemble.consensus_threshold", cfg.Ensemble.ConsensusThreshold)
	v.Set("ensemble.parallel", cfg.Ensemble.Parallel)
	v.Set("ensemble.cross_validation", cfg.Ensemble.CrossValidation)
	v.Set("ensemble.adaptive_selection", cfg.Ensemble.AdaptiveSelection)
	v.Set("timeouts.generation", cfg.Timeouts.Generation.String())
	v.Set("timeouts.sandbox", cfg.Timeouts.Sandbox.String())
	v.Set("timeouts.analyzer", cfg.Timeouts.Analyzer.String())
	v.Set("patterns.enabled", cfg.Patterns.Enabled)
	v.Set("patterns.db_path", cfg.Patterns.DBPath)
	v.Set("tui.refresh_rate", cfg.TUI.RefreshRate.String())

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.use_aws_bedrock", false)

	v.SetDefault("defaults.tier", "development")
	v.SetDefault("defaults.language", "python")
	v.SetDefault("defaults.tier_file", "")

	v.SetDefault("ensemble.min_agents", 3)
	v.SetDefault("ensemble.max_agents", 5)
	v.SetDefault("ensemble.voting_strategy", "weighted_voting")
	v.SetDefault("ensemble.consensus_threshold", 0.7)
	v.SetDefault("ensemble.parallel", true)
	v.SetDefault("ensemble.cross_validation", true)
	v.SetDefault("ensemble.adaptive_selection", true)

	v.SetDefault("timeouts.generation", "2m")
	v.SetDefault("timeouts.sandbox", "30s")
	v.SetDefault("timeouts.analyzer", "15s")

	v.SetDefault("patterns.enabled", true)
	v.SetDefault("patterns.db_path", "")

	v.SetDefault("tui.refresh_rate", "100ms")
}

// getUserConfigDir returns the XDG config directory for Quorum.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "quorum")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "quorum")
	}
	return filepath.Join(home, ".config", "quorum")
}

// findProjectConfig searches for .quorum.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".quorum.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Tier:     "development",
			Language: "python",
		},
		Ensemble: models.DefaultEnsembleConfig(),
		Timeouts: TimeoutsConfig{
			Generation: 2 * time.Minute,
			Sandbox:    30 * time.Second,
			Analyzer:   15 * time.Second,
		},
		Patterns: PatternsConfig{Enabled: true},
		TUI: TUIConfig{
			RefreshRate: 100 * time.Millisecond,
		},
	}
}
