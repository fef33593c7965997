package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kwhitfield/quorum/internal/config"
	"github.com/kwhitfield/quorum/internal/patterns"
	"github.com/kwhitfield/quorum/pkg/models"
)

var (
	statsComplexity string
	statsLimit      int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show recorded outcome statistics",
	Long: `Summarize past production runs from the outcome store: which
voting strategies have performed best per task complexity.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVarP(&statsComplexity, "complexity", "c", "medium", "Task complexity to report on")
	statsCmd.Flags().IntVarP(&statsLimit, "limit", "n", 5, "Maximum strategies to show")
}

// runStats opens the store directly; no API client is needed.
func runStats(cmd *cobra.Command, args []string) error {
	complexity := models.Complexity(statsComplexity)
	if !complexity.Valid() {
		return fmt.Errorf("unknown complexity %q", statsComplexity)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dbPath := cfg.Patterns.DBPath
	if dbPath == "" {
		dbPath = patterns.DefaultDBPath()
	}
	store, err := patterns.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open outcome store: %w", err)
	}
	defer store.Close()

	total, err := store.Count()
	if err != nil {
		return err
	}
	if total == 0 {
		fmt.Println("no outcomes recorded yet")
		return nil
	}

	stats, err := store.TopStrategies(complexity, statsLimit)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	bold.Printf("%d outcomes recorded (%s)\n\n", total, store.Path())
	bold.Printf("top strategies for %s tasks:\n", complexity)
	if len(stats) == 0 {
		fmt.Println("  (none at this complexity)")
		return nil
	}
	for _, st := range stats {
		rate := color.YellowString("%3.0f%% ready", st.ReadyRate*100)
		if st.ReadyRate >= 0.8 {
			rate = color.GreenString("%3.0f%% ready", st.ReadyRate*100)
		}
		fmt.Printf("  %-24s uses %-4d avg readiness %.2f  %s\n", st.Strategy, st.Uses, st.AvgReadiness, rate)
	}
	return nil
}
