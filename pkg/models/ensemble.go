package models

// VotingStrategy selects how an ensemble's contributions are merged
// into one result. It is a closed set: synthesis dispatches with an
// exhaustive switch, never reflection.
type VotingStrategy string

const (
	// StrategyMajority picks the single highest-confidence contribution.
	StrategyMajority VotingStrategy = "majority_voting"
	// StrategyWeighted merges the top contributions using static
	// per-role weights.
	StrategyWeighted VotingStrategy = "weighted_voting"
	// StrategyConfidence keeps the best contribution's code and attaches
	// role-specific enhancements from high-confidence peers.
	StrategyConfidence VotingStrategy = "confidence_based"
	// StrategyQuality assembles each field from the highest
	// quality-scored contribution that supplies it.
	StrategyQuality VotingStrategy = "quality_weighted"
	// StrategyAdaptive deterministically maps task attributes to one of
	// the concrete strategies above.
	StrategyAdaptive VotingStrategy = "adaptive"
)

// Valid returns true if the strategy is a known value.
func (s VotingStrategy) Valid() bool {
	switch s {
	case StrategyMajority, StrategyWeighted, StrategyConfidence, StrategyQuality, StrategyAdaptive:
		return true
	default:
		return false
	}
}

// EnsembleConfig controls how many producers run and how their outputs
// are merged.
type EnsembleConfig struct {
	// MinAgents is the minimum roster size.
	MinAgents int `json:"min_agents" mapstructure:"min_agents"`
	// MaxAgents is the maximum roster size (1-10).
	MaxAgents int `json:"max_agents" mapstructure:"max_agents"`
	// Strategy is the voting strategy used at synthesis.
	Strategy VotingStrategy `json:"voting_strategy" mapstructure:"voting_strategy"`
	// ConsensusThreshold is the confidence bar for enhancement
	// attachment, in [0.5,1.0].
	ConsensusThreshold float64 `json:"consensus_threshold" mapstructure:"consensus_threshold"`
	// Parallel runs the roster concurrently when true, sequentially
	// with context threading when false.
	Parallel bool `json:"parallel" mapstructure:"parallel"`
	// CrossValidation lets reviewer contributions re-score peers.
	CrossValidation bool `json:"cross_validation" mapstructure:"cross_validation"`
	// AdaptiveSelection lets the composer upgrade producer tiers for
	// harder tasks.
	AdaptiveSelection bool `json:"adaptive_selection" mapstructure:"adaptive_selection"`
}

// DefaultEnsembleConfig returns the stock configuration: three to five
// parallel producers, weighted voting, cross-validation on.
func DefaultEnsembleConfig() EnsembleConfig {
	return EnsembleConfig{
		MinAgents:          3,
		MaxAgents:          5,
		Strategy:           StrategyWeighted,
		ConsensusThreshold: 0.7,
		Parallel:           true,
		CrossValidation:    true,
		AdaptiveSelection:  true,
	}
}

// Normalize clamps all fields into their documented ranges and fills
// zero values with defaults. It returns the normalized copy.
func (c EnsembleConfig) Normalize() EnsembleConfig {
	if c.MaxAgents < 1 {
		c.MaxAgents = 1
	}
	if c.MaxAgents > 10 {
		c.MaxAgents = 10
	}
	if c.MinAgents < 1 {
		c.MinAgents = 1
	}
	if c.MinAgents > c.MaxAgents {
		c.MinAgents = c.MaxAgents
	}
	if c.ConsensusThreshold == 0 {
		c.ConsensusThreshold = 0.7
	}
	if c.ConsensusThreshold < 0.5 {
		c.ConsensusThreshold = 0.5
	}
	if c.ConsensusThreshold > 1.0 {
		c.ConsensusThreshold = 1.0
	}
	if !c.Strategy.Valid() {
		c.Strategy = StrategyWeighted
	}
	return c
}

// ProvenanceEntry records one contribution's part in a synthesized result.
type ProvenanceEntry struct {
	// ProducerID is the contributing producer.
	ProducerID string `json:"producer_id"`
	// Role is the contributing producer's role.
	Role Role `json:"role"`
	// Score is the selection score the contribution held at merge time.
	Score float64 `json:"score"`
}

// SynthesizedResult is the single merged artifact of an ensemble run.
// If at least one contribution carried non-empty code, Code is never empty.
type SynthesizedResult struct {
	// Code is the merged implementation.
	Code string `json:"code"`
	// Tests is the merged test suite.
	Tests string `json:"tests,omitempty"`
	// Documentation is the merged documentation.
	Documentation string `json:"documentation,omitempty"`
	// SecurityNotes is the merged security observations.
	SecurityNotes string `json:"security_notes,omitempty"`
	// Method is the concrete strategy that produced this result. For
	// adaptive runs it names the resolved strategy, not "adaptive".
	Method VotingStrategy `json:"synthesis_method"`
	// Provenance lists the contributions that supplied fields.
	Provenance []ProvenanceEntry `json:"provenance"`
	// Confidence is the aggregate confidence of the merge in [0,1].
	Confidence float64 `json:"confidence"`
}

// Artifact returns the result's fields as an Artifact for validation.
func (r *SynthesizedResult) Artifact() Artifact {
	return Artifact{
		Code:          r.Code,
		Tests:         r.Tests,
		Documentation: r.Documentation,
		SecurityNotes: r.SecurityNotes,
	}
}
