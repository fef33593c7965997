package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kwhitfield/quorum/pkg/models"
)

var (
	runLanguage   string
	runComplexity string
	runStrategy   string
	runSequential bool
	runOutput     string
)

var runCmd = &cobra.Command{
	Use:   "run [task description]",
	Short: "Run one ensemble pass and print the synthesized result",
	Long: `Run a single ensemble generation: select a producer roster for the
task, fan it out, cross-validate, and merge the contributions with the
configured voting strategy. No readiness loop, no tier gating.

Examples:
  quorum run "parse RFC 3339 timestamps from a log file"
  quorum run --strategy confidence_based --complexity complex "implement an LRU cache"
  quorum run --output solution.py "deduplicate a csv by key column"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runLanguage, "language", "l", "", "Target language (default from config)")
	runCmd.Flags().StringVarP(&runComplexity, "complexity", "c", "medium", "Task complexity (trivial, simple, medium, complex, meta)")
	runCmd.Flags().StringVarP(&runStrategy, "strategy", "s", "", "Voting strategy override")
	runCmd.Flags().BoolVar(&runSequential, "sequential", false, "Run producers sequentially with context threading")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Write the synthesized code to a file")
}

func runRun(cmd *cobra.Command, args []string) error {
	complexity := models.Complexity(runComplexity)
	if !complexity.Valid() {
		return fmt.Errorf("unknown complexity %q", runComplexity)
	}

	a, err := buildApp(runLanguage)
	if err != nil {
		return err
	}
	defer a.Close()

	task := models.Task{
		ID:          uuid.New().String()[:8],
		Description: strings.Join(args, " "),
		Complexity:  complexity,
		Language:    pickLanguage(a, runLanguage),
	}

	cfg := a.cfg.Ensemble
	if runStrategy != "" {
		strategy := models.VotingStrategy(runStrategy)
		if !strategy.Valid() {
			return fmt.Errorf("unknown strategy %q", runStrategy)
		}
		cfg.Strategy = strategy
	}
	if runSequential {
		cfg.Parallel = false
	}

	result, err := a.orchestrator.RunEnsemble(context.Background(), task, cfg)
	if err != nil {
		return fmt.Errorf("ensemble run: %w", err)
	}

	printSynthesized(result)
	fmt.Printf("\nusage: %s\n", a.client.Tracker().Summary())

	if runOutput != "" {
		if err := os.WriteFile(runOutput, []byte(result.Code), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		color.Green("code written to %s", runOutput)
	}
	return nil
}

func pickLanguage(a *app, flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.Defaults.Language
}

func printSynthesized(result *models.SynthesizedResult) {
	bold := color.New(color.Bold)

	bold.Printf("method: ")
	fmt.Println(result.Method)
	bold.Printf("confidence: ")
	fmt.Printf("%.2f\n", result.Confidence)

	bold.Println("\nproducers:")
	for _, p := range result.Provenance {
		fmt.Printf("  %-16s %s  score %.2f\n", p.Role, p.ProducerID, p.Score)
	}

	bold.Println("\ncode:")
	fmt.Println(result.Code)

	if result.Tests != "" {
		bold.Println("tests:")
		fmt.Println(result.Tests)
	}
	if result.Documentation != "" {
		bold.Println("documentation:")
		fmt.Println(result.Documentation)
	}
	if result.SecurityNotes != "" {
		bold.Println("security notes:")
		fmt.Println(result.SecurityNotes)
	}
}
