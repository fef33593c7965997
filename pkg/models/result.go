package models

// TestSummary is the outcome of running a generated test suite.
type TestSummary struct {
	// Total is the number of tests executed.
	Total int `json:"total"`
	// Passed is the number of tests that passed.
	Passed int `json:"passed"`
	// Failed is the number of tests that failed.
	Failed int `json:"failed"`
	// Coverage is the estimated coverage fraction in [0,1].
	Coverage float64 `json:"coverage"`
}

// PassRate returns the fraction of tests that passed, 0 if none ran.
func (s TestSummary) PassRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Total)
}

// IterationRecord is one pass of the readiness loop.
type IterationRecord struct {
	// Index is the 1-based iteration number.
	Index int `json:"index"`
	// Result is the synthesized artifact of this pass.
	Result *SynthesizedResult `json:"result"`
	// Report is the comprehensive validation of the artifact.
	Report *ValidationReport `json:"report"`
	// Tests is the test run summary, nil when the tier skips testing.
	Tests *TestSummary `json:"tests,omitempty"`
	// ReadinessScore is the blended 0-1 score for this pass.
	ReadinessScore float64 `json:"readiness_score"`
	// MeetsStandards is true when this pass cleared the tier's bar.
	MeetsStandards bool `json:"meets_standards"`
}

// HardeningReport is the outcome of one post-loop hardening check.
type HardeningReport struct {
	// Name identifies the check (security_penetration,
	// performance_benchmark, load_test, chaos_test).
	Name string `json:"name"`
	// Score is the 0-1 outcome of the check.
	Score float64 `json:"score"`
	// Passed is true when the check cleared its own bar.
	Passed bool `json:"passed"`
	// Details describes what was checked.
	Details string `json:"details"`
}

// ProductionStatus is the terminal status of a production run.
type ProductionStatus string

const (
	// ProductionStatusReady means the result cleared the tier threshold.
	ProductionStatusReady ProductionStatus = "ready"
	// ProductionStatusNotReady means iterations were exhausted or the
	// final score fell short; the best attempt is still returned.
	ProductionStatusNotReady ProductionStatus = "not_ready"
	// ProductionStatusFailed means every generation attempt errored.
	ProductionStatusFailed ProductionStatus = "failed"
)

// ProductionResult is the terminal, immutable output of the readiness
// loop. It is always returned, never replaced by an error: total
// failure is encoded as ProductionStatusFailed with zero confidence.
type ProductionResult struct {
	// TaskID is the task this result belongs to.
	TaskID string `json:"task_id"`
	// Tier is the readiness bar that was targeted.
	Tier ProductionTier `json:"tier"`
	// Status is the terminal status of the run.
	Status ProductionStatus `json:"status"`
	// Best is the best-by-score iteration, nil only on total failure.
	Best *IterationRecord `json:"best,omitempty"`
	// Iterations is how many loop passes actually ran.
	Iterations int `json:"iterations"`
	// Hardening lists tier-specific post-loop check reports.
	Hardening []HardeningReport `json:"hardening,omitempty"`
	// ProductionReady is true when the final score cleared the tier
	// threshold on a converged run.
	ProductionReady bool `json:"production_ready"`
	// Confidence is the final blended confidence score in [0,1].
	Confidence float64 `json:"confidence_score"`
	// FailureReason carries the error message on total failure.
	FailureReason string `json:"failure_reason,omitempty"`
}
