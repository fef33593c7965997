package production

import (
	"context"

	"github.com/kwhitfield/quorum/pkg/models"
)

// EnsembleRunner is the generation side of the readiness loop,
// satisfied by the ensemble orchestrator.
type EnsembleRunner interface {
	RunEnsemble(ctx context.Context, task models.Task, cfg models.EnsembleConfig) (*models.SynthesizedResult, error)
}

// ExecutionResult reports one sandboxed run.
type ExecutionResult struct {
	Success bool
	Output  string
	Error   string
}

// Sandbox executes generated code in isolation.
type Sandbox interface {
	Execute(ctx context.Context, code, language, tests string) (ExecutionResult, error)
}

// TestService generates and executes a test suite for an artifact.
type TestService interface {
	GenerateTests(ctx context.Context, code, language string, targetCoverage float64) (string, error)
	RunTests(ctx context.Context, code, tests, language string) (models.TestSummary, error)
}

// Recorder persists run outcomes best-effort. Implementations must
// never block the caller on storage failures.
type Recorder interface {
	Record(rec PatternRecord)
}

// PatternRecord is one readiness-loop outcome worth remembering.
type PatternRecord struct {
	TaskID     string
	Complexity models.Complexity
	Tier       models.ProductionTier
	Strategy   models.VotingStrategy
	Readiness  float64
	Ready      bool
	Iterations int
}
