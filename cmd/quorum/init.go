package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kwhitfield/quorum/internal/config"
)

var (
	initForce     bool
	initWithTiers bool
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a Quorum project",
	Long: `Initialize a directory for use with Quorum.

This command sets up everything needed to run Quorum:
  - Creates the user config file if missing
  - Creates a .quorum.yaml project override template
  - Optionally creates an example tier override file

The directory argument is optional and defaults to the current directory.

Examples:
  quorum init               # Initialize current directory
  quorum init ./myproject   # Initialize specific directory
  quorum init --force       # Overwrite existing templates
  quorum init --with-tiers  # Create an example tiers.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing template files")
	initCmd.Flags().BoolVar(&initWithTiers, "with-tiers", false, "Create an example tier override file")
}

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", absPath, err)
	}

	fmt.Printf("Initializing Quorum in %s...\n\n", absPath)

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		printStatus("⚠", "ANTHROPIC_API_KEY not set (you can set it later)", color.FgYellow)
	} else {
		printStatus("✓", "ANTHROPIC_API_KEY is set", color.FgGreen)
	}

	created, err := ensureUserConfig()
	if err != nil {
		return fmt.Errorf("creating user config: %w", err)
	}
	if created {
		printStatus("✓", fmt.Sprintf("Created user config at %s", config.GetUserConfigPath()), color.FgGreen)
	} else {
		printStatus("✓", "User config exists", color.FgGreen)
	}

	wrote, err := createProjectConfig(absPath)
	if err != nil {
		return fmt.Errorf("creating project config: %w", err)
	}
	if wrote {
		printStatus("✓", "Created .quorum.yaml template", color.FgGreen)
	} else {
		printStatus("✓", ".quorum.yaml exists (use --force to overwrite)", color.FgGreen)
	}

	if initWithTiers {
		wrote, err := createTierConfig(absPath)
		if err != nil {
			return fmt.Errorf("creating tier config: %w", err)
		}
		if wrote {
			printStatus("✓", "Created tiers.yaml example", color.FgGreen)
		} else {
			printStatus("✓", "tiers.yaml exists (use --force to overwrite)", color.FgGreen)
		}
	}

	fmt.Printf("\n%s Quorum initialization complete!\n\n", color.GreenString("✓"))
	fmt.Println("Next steps:")
	if apiKey == "" {
		fmt.Println("  1. Set your API key:")
		fmt.Println("     export ANTHROPIC_API_KEY=your-key-here")
		fmt.Println()
	}
	fmt.Println("  2. Run an ensemble:")
	fmt.Println("     quorum run \"your task here\"")
	fmt.Println()
	fmt.Println("  3. Generate production-grade code:")
	fmt.Println("     quorum produce --tier production \"your task here\"")
	fmt.Println()
	fmt.Println("  4. Learn more:")
	fmt.Println("     quorum --help")

	return nil
}

// ensureUserConfig writes a default user config file if none exists.
func ensureUserConfig() (bool, error) {
	path := config.GetUserConfigPath()
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := config.Save(config.Default()); err != nil {
		return false, err
	}
	return true, nil
}

// createProjectConfig writes a commented .quorum.yaml template.
func createProjectConfig(repoPath string) (bool, error) {
	configPath := filepath.Join(repoPath, ".quorum.yaml")
	if _, err := os.Stat(configPath); err == nil && !initForce {
		return false, nil
	}

	template := `# Quorum Project Configuration
# This file overrides defaults from ~/.config/quorum/config.yaml

# defaults:
#   tier: production
#   language: python
#   tier_file: tiers.yaml

# ensemble:
#   min_agents: 3
#   max_agents: 5
#   voting_strategy: weighted_voting
#   consensus_threshold: 0.7
#   parallel: true
#   cross_validation: true
#   adaptive_selection: true

# timeouts:
#   generation: 2m
#   sandbox: 30s
#   analyzer: 15s
`
	if err := os.WriteFile(configPath, []byte(template), 0644); err != nil {
		return false, err
	}
	return true, nil
}

// createTierConfig writes an example tier override file.
func createTierConfig(repoPath string) (bool, error) {
	tierPath := filepath.Join(repoPath, "tiers.yaml")
	if _, err := os.Stat(tierPath); err == nil && !initForce {
		return false, nil
	}

	template := `# Quorum tier overrides. Only the fields you set here change;
# everything else keeps its built-in value.
tiers:
  - tier: development
    target_confidence: 0.80
  - tier: production
    max_iterations: 4
`
	if err := os.WriteFile(tierPath, []byte(template), 0644); err != nil {
		return false, err
	}
	return true, nil
}

// printStatus prints a status line with color
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}
