package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kwhitfield/quorum/internal/config"
	"github.com/kwhitfield/quorum/internal/tui"
	"github.com/kwhitfield/quorum/pkg/models"
)

var (
	produceTier       string
	produceLanguage   string
	produceComplexity string
	produceOutput     string
	produceTUI        bool
)

var produceCmd = &cobra.Command{
	Use:   "produce [task description]",
	Short: "Generate code that meets a production tier's bar",
	Long: `Run the full readiness loop: ensemble generation, comprehensive
validation, test execution, and iteration with feedback until the
tier's readiness threshold is met or iterations are exhausted. Staging
and stricter tiers run hardening checks after the loop.

Examples:
  quorum produce "rate limiter with sliding window" --tier production
  quorum produce --tier prototype "one-off report script"
  quorum produce --tier mission_critical --tui "payment reconciliation job"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProduce,
}

func init() {
	produceCmd.Flags().StringVarP(&produceTier, "tier", "t", "", "Production tier (prototype, development, staging, production, mission_critical)")
	produceCmd.Flags().StringVarP(&produceLanguage, "language", "l", "", "Target language (default from config)")
	produceCmd.Flags().StringVarP(&produceComplexity, "complexity", "c", "medium", "Task complexity")
	produceCmd.Flags().StringVarP(&produceOutput, "output", "o", "", "Write the final code to a file")
	produceCmd.Flags().BoolVar(&produceTUI, "tui", false, "Show live progress in a TUI")
}

func runProduce(cmd *cobra.Command, args []string) error {
	complexity := models.Complexity(produceComplexity)
	if !complexity.Valid() {
		return fmt.Errorf("unknown complexity %q", produceComplexity)
	}

	a, err := buildApp(produceLanguage)
	if err != nil {
		return err
	}
	defer a.Close()

	tierName := produceTier
	if tierName == "" {
		tierName = a.cfg.Defaults.Tier
	}
	tier := models.ProductionTier(tierName)
	if !tier.Valid() {
		return fmt.Errorf("unknown tier %q", tierName)
	}

	task := models.Task{
		ID:          uuid.New().String()[:8],
		Description: strings.Join(args, " "),
		Complexity:  complexity,
		Language:    pickLanguage(a, produceLanguage),
	}

	// Hot-reload the project config during the run: edits to
	// .quorum.yaml swap the ensemble settings for later iterations.
	if path := config.GetProjectConfigPath(); path != "" {
		watcher, err := config.NewWatcher(path, func(cfg *config.Config) {
			a.loop.SetEnsembleConfig(cfg.Ensemble)
			log.Printf("[produce] ensemble config reloaded from %s", path)
		})
		if err != nil {
			log.Printf("[produce] config watch unavailable: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	var result *models.ProductionResult
	if produceTUI {
		result, err = runWithTUI(a, task, tier)
		if err != nil {
			return err
		}
	} else {
		result = a.loop.GenerateProductionCode(context.Background(), task, tier, nil)
		printProductionResult(result)
	}
	fmt.Printf("\nusage: %s\n", a.client.Tracker().Summary())

	if produceOutput != "" && result.Best != nil {
		if err := os.WriteFile(produceOutput, []byte(result.Best.Result.Code), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		color.Green("code written to %s", produceOutput)
	}

	if result.Status == models.ProductionStatusFailed {
		return fmt.Errorf("production run failed: %s", result.FailureReason)
	}
	return nil
}

// runWithTUI drives the loop in the background and streams its events
// into the live view. Log output is silenced so it does not tear the
// screen.
func runWithTUI(a *app, task models.Task, tier models.ProductionTier) (*models.ProductionResult, error) {
	log.SetOutput(io.Discard)
	defer log.SetOutput(os.Stderr)

	program := tea.NewProgram(tui.New(task.Description, tier, a.loop.Events()))

	done := make(chan *models.ProductionResult, 1)
	go func() {
		result := a.loop.GenerateProductionCode(context.Background(), task, tier, nil)
		done <- result
		program.Send(tui.DoneMsg{Result: result})
	}()

	if _, err := program.Run(); err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	return <-done, nil
}

func printProductionResult(result *models.ProductionResult) {
	bold := color.New(color.Bold)

	switch result.Status {
	case models.ProductionStatusReady:
		color.Green("READY  tier %s  confidence %.2f", result.Tier, result.Confidence)
	case models.ProductionStatusNotReady:
		color.Yellow("NOT READY  tier %s  confidence %.2f", result.Tier, result.Confidence)
	default:
		color.Red("FAILED  %s", result.FailureReason)
		return
	}

	bold.Println("\niterations:")
	for _, it := range iterationRecords(result) {
		mark := color.YellowString("•")
		if it.MeetsStandards {
			mark = color.GreenString("✓")
		}
		fmt.Printf("  %s pass %d  readiness %.2f  status %s\n", mark, it.Index, it.ReadinessScore, it.Report.Status)
	}

	if len(result.Hardening) > 0 {
		bold.Println("\nhardening:")
		for _, h := range result.Hardening {
			mark := color.RedString("✗")
			if h.Passed {
				mark = color.GreenString("✓")
			}
			fmt.Printf("  %s %-24s %.2f\n", mark, h.Name, h.Score)
		}
	}

	if result.Best != nil {
		bold.Println("\ncode:")
		fmt.Println(result.Best.Result.Code)
	}
}

// iterationRecords returns the recorded passes; only the best is kept,
// so this is a single-element view today.
func iterationRecords(result *models.ProductionResult) []*models.IterationRecord {
	if result.Best == nil {
		return nil
	}
	return []*models.IterationRecord{result.Best}
}
