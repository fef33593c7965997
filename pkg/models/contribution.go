package models

import "time"

// Artifact is the named-text output of a single producer call.
type Artifact struct {
	// Code is the primary implementation.
	Code string `json:"code"`
	// Tests is the accompanying test suite, if any.
	Tests string `json:"tests,omitempty"`
	// Documentation is prose documentation, if any.
	Documentation string `json:"documentation,omitempty"`
	// SecurityNotes holds security observations, if any.
	SecurityNotes string `json:"security_notes,omitempty"`
}

// IsEmpty returns true if every field of the artifact is empty.
func (a Artifact) IsEmpty() bool {
	return a.Code == "" && a.Tests == "" && a.Documentation == "" && a.SecurityNotes == ""
}

// Completeness returns the fraction of artifact fields that are
// non-empty, in [0,1].
func (a Artifact) Completeness() float64 {
	n := 0
	if a.Code != "" {
		n++
	}
	if a.Tests != "" {
		n++
	}
	if a.Documentation != "" {
		n++
	}
	if a.SecurityNotes != "" {
		n++
	}
	return float64(n) / 4.0
}

// Contribution is one producer's output plus its quality signals.
// A Contribution is written once by the execution engine; only
// ValidationScore may be overwritten, exactly once, by cross-validation.
type Contribution struct {
	// ProducerID uniquely identifies the producer call.
	ProducerID string `json:"producer_id"`
	// Role is the specialization the producer ran as.
	Role Role `json:"role"`
	// Tier is the capability level the producer ran at.
	Tier ProducerTier `json:"tier"`
	// Artifact is the produced output.
	Artifact Artifact `json:"artifact"`
	// Confidence is the producer's quality estimate in [0,1].
	Confidence float64 `json:"confidence"`
	// ValidationScore is the externally assessed quality in [0,1].
	ValidationScore float64 `json:"validation_score"`
	// ExecutionTime is how long the producer call took.
	ExecutionTime time.Duration `json:"execution_time"`
	// Metadata carries producer-specific details (model name, tokens).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Clamp01 constrains v to the [0,1] interval.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
