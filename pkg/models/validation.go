package models

// ValidationStatus is the overall outcome of comprehensive validation.
type ValidationStatus string

const (
	// StatusPassed means no issues were found.
	StatusPassed ValidationStatus = "passed"
	// StatusPassedWithWarnings means only non-fatal issues were found.
	StatusPassedWithWarnings ValidationStatus = "passed_with_warnings"
	// StatusFailed means the artifact does not meet the tier's bar.
	StatusFailed ValidationStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s ValidationStatus) Valid() bool {
	switch s {
	case StatusPassed, StatusPassedWithWarnings, StatusFailed:
		return true
	default:
		return false
	}
}

// Acceptable returns true for Passed and PassedWithWarnings.
func (s ValidationStatus) Acceptable() bool {
	return s == StatusPassed || s == StatusPassedWithWarnings
}

// Severity ranks how serious a validation finding is.
type Severity string

const (
	// SeverityBlocker must be fixed before any release.
	SeverityBlocker Severity = "blocker"
	// SeverityCritical must be fixed for production tiers.
	SeverityCritical Severity = "critical"
	// SeverityMajor should be fixed soon.
	SeverityMajor Severity = "major"
	// SeverityMinor is a small defect.
	SeverityMinor Severity = "minor"
	// SeverityInfo is informational.
	SeverityInfo Severity = "info"
)

// Valid returns true if the severity is a known value.
func (s Severity) Valid() bool {
	switch s {
	case SeverityBlocker, SeverityCritical, SeverityMajor, SeverityMinor, SeverityInfo:
		return true
	default:
		return false
	}
}

// CheckResult is one finding from one validation check.
type CheckResult struct {
	// Category names the check that produced the finding
	// (static, security, coverage, performance, architecture,
	// runtime, documentation).
	Category string `json:"category"`
	// Severity is how serious the finding is.
	Severity Severity `json:"severity"`
	// Message describes the finding.
	Message string `json:"message"`
}

// QualityMetrics aggregates the numeric scores from validation.
// All scores are 0-100 except Complexity, which is a raw estimate.
type QualityMetrics struct {
	// Complexity is the estimated cyclomatic complexity of the code.
	Complexity float64 `json:"complexity"`
	// TestCoverage is the estimated test coverage percentage.
	TestCoverage float64 `json:"test_coverage"`
	// SecurityScore reflects the security pattern scan.
	SecurityScore float64 `json:"security_score"`
	// Maintainability reflects structure and size heuristics.
	Maintainability float64 `json:"maintainability"`
	// Documentation reflects doc-comment coverage.
	Documentation float64 `json:"documentation"`
	// OverallScore is the blended 0-100 quality score.
	OverallScore float64 `json:"overall_score"`
}

// ValidationReport is the immutable output of comprehensive validation.
type ValidationReport struct {
	// Status is the overall outcome.
	Status ValidationStatus `json:"overall_status"`
	// Checks lists every finding across all checks.
	Checks []CheckResult `json:"checks"`
	// ConfidenceScore is the validator's confidence in [0,1].
	ConfidenceScore float64 `json:"confidence_score"`
	// Metrics holds the aggregated quality metrics.
	Metrics QualityMetrics `json:"quality_metrics"`
	// RequiresHumanReview is set when validation itself failed or the
	// findings warrant manual inspection.
	RequiresHumanReview bool `json:"requires_human_review"`
}

// CountSeverity returns how many findings carry the given severity.
func (r *ValidationReport) CountSeverity(sev Severity) int {
	n := 0
	for _, c := range r.Checks {
		if c.Severity == sev {
			n++
		}
	}
	return n
}

// IssueSummary renders the findings as one line per issue, suitable for
// feeding back into the next generation pass.
func (r *ValidationReport) IssueSummary() string {
	out := ""
	for _, c := range r.Checks {
		out += string(c.Severity) + " [" + c.Category + "]: " + c.Message + "\n"
	}
	return out
}
