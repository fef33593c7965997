// Package ensemble coordinates redundant producer calls against one
// task and merges their outputs into a single result via configurable
// voting strategies.
package ensemble

import (
	"context"
	"time"

	"github.com/kwhitfield/quorum/pkg/models"
)

// Generator is the producer backend. A call must honor the context
// deadline; errors are recoverable and exclude that contribution only.
type Generator interface {
	// Generate produces an artifact for the task as the given role and
	// tier. The returned confidence is the producer's self-estimate in
	// [0,1].
	Generate(ctx context.Context, role models.Role, tier models.ProducerTier, task models.Task) (models.Artifact, float64, error)
}

// AnalyzerReport mirrors one static analyzer's verdict.
type AnalyzerReport struct {
	// Name identifies the analyzer.
	Name string
	// Passed is true when the analyzer reported no problems.
	Passed bool
	// Findings lists reported problems.
	Findings []string
}

// Analyzers runs static analysis over code. Implementations never
// return errors; an unavailable analyzer yields a not-passed report.
type Analyzers interface {
	Analyze(ctx context.Context, code string) []AnalyzerReport
}

// ExecutionResult mirrors one sandboxed run of code plus tests.
type ExecutionResult struct {
	// Success is true when the run exited cleanly.
	Success bool
	// Output is combined program output.
	Output string
	// Error describes the failure, empty on success.
	Error string
	// Duration is wall-clock run time.
	Duration time.Duration
}

// Sandbox executes code in isolation. The error return is reserved for
// setup problems; run failures live inside the ExecutionResult.
type Sandbox interface {
	Execute(ctx context.Context, code, language, tests string) (ExecutionResult, error)
}
