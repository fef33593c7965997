package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quorum",
	Short: "Ensemble code synthesis with production readiness gating",
	Long: `Quorum generates code by running an ensemble of specialized model
producers against the same task, merging their outputs through a voting
strategy, and iterating until the result clears a production tier's bar.

Core capabilities:
- Fans a task out to architect / implementer / reviewer / specialist producers
- Merges contributions via majority, weighted, confidence, quality, or adaptive voting
- Validates artifacts with static, security, performance, and runtime checks
- Iterates with validation feedback until a tier's readiness threshold is met
- Records outcomes so strategy effectiveness is queryable per task complexity`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(produceCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}
