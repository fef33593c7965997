package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kwhitfield/quorum/internal/config"
	"github.com/kwhitfield/quorum/pkg/models"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify Quorum configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/quorum/config.yaml
Project-specific overrides can be placed in .quorum.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	// Mask API key if set
	apiKeyDisplay := "(not set)"
	if cfg.Anthropic.APIKey != "" {
		apiKeyDisplay = "****"
	}

	fmt.Printf("anthropic.api_key: %s\n", apiKeyDisplay)
	fmt.Printf("anthropic.use_aws_bedrock: %t\n", cfg.Anthropic.UseAWSBedrock)
	fmt.Printf("defaults.tier: %s\n", cfg.Defaults.Tier)
	fmt.Printf("defaults.language: %s\n", cfg.Defaults.Language)
	fmt.Printf("defaults.tier_file: %s\n", cfg.Defaults.TierFile)
	fmt.Printf("ensemble.min_agents: %d\n", cfg.Ensemble.MinAgents)
	fmt.Printf("ensemble.max_agents: %d\n", cfg.Ensemble.MaxAgents)
	fmt.Printf("ensemble.voting_strategy: %s\n", cfg.Ensemble.Strategy)
	fmt.Printf("ensemble.consensus_threshold: %.2f\n", cfg.Ensemble.ConsensusThreshold)
	fmt.Printf("ensemble.parallel: %t\n", cfg.Ensemble.Parallel)
	fmt.Printf("ensemble.cross_validation: %t\n", cfg.Ensemble.CrossValidation)
	fmt.Printf("ensemble.adaptive_selection: %t\n", cfg.Ensemble.AdaptiveSelection)
	fmt.Printf("timeouts.generation: %s\n", cfg.Timeouts.Generation)
	fmt.Printf("timeouts.sandbox: %s\n", cfg.Timeouts.Sandbox)
	fmt.Printf("timeouts.analyzer: %s\n", cfg.Timeouts.Analyzer)
	fmt.Printf("patterns.enabled: %t\n", cfg.Patterns.Enabled)
	fmt.Printf("tui.refresh_rate: %s\n", cfg.TUI.RefreshRate)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		if cfg.Anthropic.APIKey == "" {
			return "(not set)", nil
		}
		return "****", nil
	case "anthropic.use_aws_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseAWSBedrock), nil
	case "anthropic.aws_region":
		return cfg.Anthropic.AWSRegion, nil
	case "anthropic.aws_profile":
		return cfg.Anthropic.AWSProfile, nil
	case "defaults.tier":
		return cfg.Defaults.Tier, nil
	case "defaults.language":
		return cfg.Defaults.Language, nil
	case "defaults.tier_file":
		return cfg.Defaults.TierFile, nil
	case "ensemble.min_agents":
		return strconv.Itoa(cfg.Ensemble.MinAgents), nil
	case "ensemble.max_agents":
		return strconv.Itoa(cfg.Ensemble.MaxAgents), nil
	case "ensemble.voting_strategy":
		return string(cfg.Ensemble.Strategy), nil
	case "ensemble.consensus_threshold":
		return strconv.FormatFloat(cfg.Ensemble.ConsensusThreshold, 'f', 2, 64), nil
	case "ensemble.parallel":
		return strconv.FormatBool(cfg.Ensemble.Parallel), nil
	case "ensemble.cross_validation":
		return strconv.FormatBool(cfg.Ensemble.CrossValidation), nil
	case "ensemble.adaptive_selection":
		return strconv.FormatBool(cfg.Ensemble.AdaptiveSelection), nil
	case "timeouts.generation":
		return cfg.Timeouts.Generation.String(), nil
	case "timeouts.sandbox":
		return cfg.Timeouts.Sandbox.String(), nil
	case "timeouts.analyzer":
		return cfg.Timeouts.Analyzer.String(), nil
	case "patterns.enabled":
		return strconv.FormatBool(cfg.Patterns.Enabled), nil
	case "patterns.db_path":
		return cfg.Patterns.DBPath, nil
	case "tui.refresh_rate":
		return cfg.TUI.RefreshRate.String(), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.use_aws_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for use_aws_bedrock: %w", err)
		}
		cfg.Anthropic.UseAWSBedrock = b
	case "anthropic.aws_region":
		cfg.Anthropic.AWSRegion = value
	case "anthropic.aws_profile":
		cfg.Anthropic.AWSProfile = value
	case "defaults.tier":
		if !models.ProductionTier(value).Valid() {
			return fmt.Errorf("unknown tier: %s", value)
		}
		cfg.Defaults.Tier = value
	case "defaults.language":
		cfg.Defaults.Language = value
	case "defaults.tier_file":
		cfg.Defaults.TierFile = value
	case "ensemble.min_agents":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for min_agents: %w", err)
		}
		cfg.Ensemble.MinAgents = n
	case "ensemble.max_agents":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_agents: %w", err)
		}
		cfg.Ensemble.MaxAgents = n
	case "ensemble.voting_strategy":
		s := models.VotingStrategy(value)
		if !s.Valid() {
			return fmt.Errorf("unknown voting strategy: %s", value)
		}
		cfg.Ensemble.Strategy = s
	case "ensemble.consensus_threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid value for consensus_threshold: %w", err)
		}
		cfg.Ensemble.ConsensusThreshold = f
	case "ensemble.parallel":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for ensemble.parallel: %w", err)
		}
		cfg.Ensemble.Parallel = b
	case "ensemble.cross_validation":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for cross_validation: %w", err)
		}
		cfg.Ensemble.CrossValidation = b
	case "ensemble.adaptive_selection":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for adaptive_selection: %w", err)
		}
		cfg.Ensemble.AdaptiveSelection = b
	case "timeouts.generation":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for timeouts.generation: %w", err)
		}
		cfg.Timeouts.Generation = d
	case "timeouts.sandbox":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for timeouts.sandbox: %w", err)
		}
		cfg.Timeouts.Sandbox = d
	case "timeouts.analyzer":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for timeouts.analyzer: %w", err)
		}
		cfg.Timeouts.Analyzer = d
	case "patterns.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for patterns.enabled: %w", err)
		}
		cfg.Patterns.Enabled = b
	case "patterns.db_path":
		cfg.Patterns.DBPath = value
	case "tui.refresh_rate":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for refresh_rate: %w", err)
		}
		cfg.TUI.RefreshRate = d
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	cfg.Ensemble = cfg.Ensemble.Normalize()
	return nil
}
