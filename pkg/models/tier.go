package models

// ProductionTier names the readiness bar a result must clear.
type ProductionTier string

const (
	// TierPrototype is for throwaway exploration.
	TierPrototype ProductionTier = "prototype"
	// TierDevelopment is for internal development use.
	TierDevelopment ProductionTier = "development"
	// TierStaging is for pre-production environments.
	TierStaging ProductionTier = "staging"
	// TierProduction is for production deployment.
	TierProduction ProductionTier = "production"
	// TierMissionCritical is for systems where failure is unacceptable.
	TierMissionCritical ProductionTier = "mission_critical"
)

// Valid returns true if the tier is a known value.
func (t ProductionTier) Valid() bool {
	switch t {
	case TierPrototype, TierDevelopment, TierStaging, TierProduction, TierMissionCritical:
		return true
	default:
		return false
	}
}

// Rank returns the ordinal strictness of the tier, 0 being loosest.
func (t ProductionTier) Rank() int {
	switch t {
	case TierPrototype:
		return 0
	case TierDevelopment:
		return 1
	case TierStaging:
		return 2
	case TierProduction:
		return 3
	case TierMissionCritical:
		return 4
	default:
		return 0
	}
}

// AtLeast returns true if the tier is as strict as other or stricter.
func (t ProductionTier) AtLeast(other ProductionTier) bool {
	return t.Rank() >= other.Rank()
}

// CheckKind names one category of comprehensive validation.
type CheckKind string

const (
	// CheckStatic is static analysis (complexity, structure).
	CheckStatic CheckKind = "static"
	// CheckSecurity is the security pattern scan.
	CheckSecurity CheckKind = "security"
	// CheckTests is test generation and execution.
	CheckTests CheckKind = "tests"
	// CheckPerformance is the performance anti-pattern scan.
	CheckPerformance CheckKind = "performance"
	// CheckArchitecture is the architecture/SOLID heuristic scan.
	CheckArchitecture CheckKind = "architecture"
	// CheckRuntime is the sandboxed execution check.
	CheckRuntime CheckKind = "runtime"
	// CheckDocumentation is the documentation coverage check.
	CheckDocumentation CheckKind = "documentation"
)

// TierConfig holds the per-tier knobs for the readiness loop.
type TierConfig struct {
	// Tier is the tier this config belongs to.
	Tier ProductionTier `json:"tier" yaml:"tier"`
	// QualityLevel is a human-readable label for the bar.
	QualityLevel string `json:"quality_level" yaml:"quality_level"`
	// TargetConfidence is the readiness score required to converge.
	TargetConfidence float64 `json:"target_confidence" yaml:"target_confidence"`
	// TargetTestCoverage is the coverage fraction aimed for.
	TargetTestCoverage float64 `json:"target_test_coverage" yaml:"target_test_coverage"`
	// MaxIterations caps the readiness loop (at most 5).
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`
	// EnabledChecks lists the validation checks this tier runs.
	EnabledChecks []CheckKind `json:"enabled_checks" yaml:"enabled_checks"`
}

// Enables returns true if the tier config enables the given check.
func (c TierConfig) Enables(kind CheckKind) bool {
	for _, k := range c.EnabledChecks {
		if k == kind {
			return true
		}
	}
	return false
}

// DefaultTierConfigs returns the static five-tier lookup table.
// Target confidence rises strictly from 0.60 to 0.98 and each tier
// enables a superset of the previous tier's checks.
func DefaultTierConfigs() map[ProductionTier]TierConfig {
	return map[ProductionTier]TierConfig{
		TierPrototype: {
			Tier:               TierPrototype,
			QualityLevel:       "works on the happy path",
			TargetConfidence:   0.60,
			TargetTestCoverage: 0.40,
			MaxIterations:      1,
			EnabledChecks:      []CheckKind{CheckStatic},
		},
		TierDevelopment: {
			Tier:               TierDevelopment,
			QualityLevel:       "tested, reviewable",
			TargetConfidence:   0.75,
			TargetTestCoverage: 0.60,
			MaxIterations:      2,
			EnabledChecks:      []CheckKind{CheckStatic, CheckTests},
		},
		TierStaging: {
			Tier:               TierStaging,
			QualityLevel:       "pre-production quality",
			TargetConfidence:   0.85,
			TargetTestCoverage: 0.75,
			MaxIterations:      3,
			EnabledChecks: []CheckKind{
				CheckStatic, CheckTests, CheckSecurity, CheckPerformance,
			},
		},
		TierProduction: {
			Tier:               TierProduction,
			QualityLevel:       "production hardened",
			TargetConfidence:   0.90,
			TargetTestCoverage: 0.85,
			MaxIterations:      4,
			EnabledChecks: []CheckKind{
				CheckStatic, CheckTests, CheckSecurity, CheckPerformance,
				CheckArchitecture, CheckRuntime,
			},
		},
		TierMissionCritical: {
			Tier:               TierMissionCritical,
			QualityLevel:       "mission critical",
			TargetConfidence:   0.98,
			TargetTestCoverage: 0.95,
			MaxIterations:      5,
			EnabledChecks: []CheckKind{
				CheckStatic, CheckTests, CheckSecurity, CheckPerformance,
				CheckArchitecture, CheckRuntime, CheckDocumentation,
			},
		},
	}
}

// ReadinessThreshold returns the final score a ProductionResult must
// reach for production_ready at the given tier. This table is applied
// after hardening and is intentionally separate from TargetConfidence,
// which gates individual iterations.
func ReadinessThreshold(tier ProductionTier) float64 {
	switch tier {
	case TierPrototype:
		return 0.60
	case TierDevelopment:
		return 0.75
	case TierStaging:
		return 0.85
	case TierProduction:
		return 0.90
	case TierMissionCritical:
		return 0.95
	default:
		return 0.90
	}
}
