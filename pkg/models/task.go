// Package models defines the shared data types for Quorum: tasks,
// producer roles, contributions, ensemble configuration, synthesis
// results, validation reports, and production tiers.
package models

// Complexity classifies how hard a task is expected to be.
type Complexity string

const (
	// ComplexityTrivial is for one-liner or boilerplate tasks.
	ComplexityTrivial Complexity = "trivial"
	// ComplexitySimple is for small, self-contained tasks.
	ComplexitySimple Complexity = "simple"
	// ComplexityMedium is for typical implementation tasks.
	ComplexityMedium Complexity = "medium"
	// ComplexityComplex is for multi-component or design-heavy tasks.
	ComplexityComplex Complexity = "complex"
	// ComplexityMeta is for tasks about the system itself (tooling,
	// generators, orchestration).
	ComplexityMeta Complexity = "meta"
)

// Valid returns true if the complexity is a known value.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexityTrivial, ComplexitySimple, ComplexityMedium, ComplexityComplex, ComplexityMeta:
		return true
	default:
		return false
	}
}

// Task describes one unit of work submitted to the ensemble.
// A Task is immutable once an ensemble run starts; the readiness loop
// copies the context map before injecting feedback for the next pass.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`
	// Description is the free-text description of the work.
	Description string `json:"description"`
	// Complexity is the estimated difficulty class.
	Complexity Complexity `json:"complexity"`
	// Language is the target implementation language (e.g. "python", "go").
	Language string `json:"language,omitempty"`
	// Metadata carries structured task attributes (caller-defined).
	Metadata map[string]string `json:"metadata,omitempty"`
	// Context carries accumulated context for producers, including
	// prior-producer artifacts in sequential mode and validation
	// feedback between readiness iterations.
	Context map[string]string `json:"context,omitempty"`
}

// WithContext returns a copy of the task with the given key set in a
// copied context map. The receiver is not modified.
func (t Task) WithContext(key, value string) Task {
	ctx := make(map[string]string, len(t.Context)+1)
	for k, v := range t.Context {
		ctx[k] = v
	}
	ctx[key] = value
	t.Context = ctx
	return t
}
