package production

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kwhitfield/quorum/pkg/models"
)

// Validator runs every check a tier enables and folds the findings
// into one ValidationReport. Checks are independent: a crashing or
// failing check never prevents the others from running.
type Validator struct {
	sandbox Sandbox
	timeout time.Duration
}

// NewValidator creates a Validator. The sandbox is optional; without
// one the runtime check reports not-executable. A zero timeout
// defaults to 30s for the runtime check.
func NewValidator(sandbox Sandbox, timeout time.Duration) *Validator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Validator{sandbox: sandbox, timeout: timeout}
}

// checkOutcome is one check's contribution to the report.
type checkOutcome struct {
	findings []models.CheckResult
	score    float64
	weight   float64
}

// Validate runs the enabled checks against the artifact and derives
// the overall status per the tier's rules.
func (v *Validator) Validate(ctx context.Context, art models.Artifact, cfg models.TierConfig, language string) *models.ValidationReport {
	report := &models.ValidationReport{Status: models.StatusPassed}

	var outcomes []checkOutcome
	systemErr := false

	run := func(kind models.CheckKind, weight float64, fn func() ([]models.CheckResult, float64)) {
		if !cfg.Enables(kind) {
			return
		}
		findings, score, err := recoverCheck(kind, fn)
		if err != nil {
			log.Printf("[validator] %s check crashed: %v", kind, err)
			systemErr = true
			return
		}
		outcomes = append(outcomes, checkOutcome{findings, score, weight})
	}

	run(models.CheckStatic, 0.20, func() ([]models.CheckResult, float64) {
		findings, complexity, maintainability := staticCheck(art)
		report.Metrics.Complexity = complexity
		report.Metrics.Maintainability = maintainability
		return findings, maintainability
	})
	run(models.CheckSecurity, 0.25, func() ([]models.CheckResult, float64) {
		findings, score := securityCheck(art)
		report.Metrics.SecurityScore = score
		return findings, score
	})
	run(models.CheckTests, 0.20, func() ([]models.CheckResult, float64) {
		findings, score := coverageCheck(art, cfg.TargetTestCoverage)
		report.Metrics.TestCoverage = score
		return findings, score
	})
	run(models.CheckPerformance, 0.10, func() ([]models.CheckResult, float64) {
		return performanceCheck(art)
	})
	run(models.CheckArchitecture, 0.10, func() ([]models.CheckResult, float64) {
		return architectureCheck(art)
	})
	run(models.CheckRuntime, 0.10, func() ([]models.CheckResult, float64) {
		return v.runtimeCheck(ctx, art, language)
	})
	run(models.CheckDocumentation, 0.05, func() ([]models.CheckResult, float64) {
		findings, score := documentationCheck(art)
		report.Metrics.Documentation = score
		return findings, score
	})

	weightSum := 0.0
	weighted := 0.0
	for _, o := range outcomes {
		report.Checks = append(report.Checks, o.findings...)
		weighted += o.score * o.weight
		weightSum += o.weight
	}
	if weightSum > 0 {
		report.Metrics.OverallScore = weighted / weightSum
	}
	// Security defaults to a full score for tiers that never scan.
	if !cfg.Enables(models.CheckSecurity) {
		report.Metrics.SecurityScore = 100
	}

	report.ConfidenceScore = deriveConfidence(report)
	report.Status = deriveStatus(report, cfg.Tier)

	if systemErr {
		report.Status = models.StatusFailed
		report.RequiresHumanReview = true
		report.Checks = append(report.Checks, models.CheckResult{
			Category: "system", Severity: models.SeverityBlocker,
			Message: "a validation check crashed, manual review required",
		})
	}
	return report
}

// runtimeCheck executes the artifact in the sandbox. An unavailable
// or erroring sandbox counts as a failed check.
func (v *Validator) runtimeCheck(ctx context.Context, art models.Artifact, language string) ([]models.CheckResult, float64) {
	if v.sandbox == nil {
		return []models.CheckResult{{
			Category: string(models.CheckRuntime), Severity: models.SeverityMajor,
			Message: "no sandbox configured, runtime behavior unverified",
		}}, 50
	}

	sctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	res, err := v.sandbox.Execute(sctx, art.Code, language, art.Tests)
	if err != nil {
		return []models.CheckResult{{
			Category: string(models.CheckRuntime), Severity: models.SeverityMajor,
			Message: "sandbox unavailable: " + err.Error(),
		}}, 50
	}
	if !res.Success {
		msg := "code failed to execute"
		if res.Error != "" {
			msg += ": " + res.Error
		}
		return []models.CheckResult{{
			Category: string(models.CheckRuntime), Severity: models.SeverityCritical, Message: msg,
		}}, 0
	}
	return nil, 100
}

// recoverCheck isolates one check so a panic inside it degrades the
// report instead of crashing the loop.
func recoverCheck(kind models.CheckKind, fn func() ([]models.CheckResult, float64)) (findings []models.CheckResult, score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", kind, r)
		}
	}()
	findings, score = fn()
	return findings, score, nil
}

// deriveConfidence converts the blended score and severity counts into
// the validator's confidence.
func deriveConfidence(r *models.ValidationReport) float64 {
	conf := r.Metrics.OverallScore / 100
	conf -= 0.25 * float64(r.CountSeverity(models.SeverityBlocker))
	conf -= 0.10 * float64(r.CountSeverity(models.SeverityCritical))
	conf -= 0.02 * float64(r.CountSeverity(models.SeverityMajor))
	return models.Clamp01(conf)
}

// deriveStatus applies the tier's pass/fail rules to the findings.
func deriveStatus(r *models.ValidationReport, tier models.ProductionTier) models.ValidationStatus {
	blockers := r.CountSeverity(models.SeverityBlocker)
	criticals := r.CountSeverity(models.SeverityCritical)

	switch {
	case blockers > 0:
		return models.StatusFailed
	case tier == models.TierMissionCritical && (criticals > 0 || r.Metrics.OverallScore < 95):
		return models.StatusFailed
	case tier == models.TierProduction && r.Metrics.OverallScore < 85:
		return models.StatusFailed
	case criticals > 3:
		return models.StatusFailed
	case len(r.Checks) > 0:
		return models.StatusPassedWithWarnings
	default:
		return models.StatusPassed
	}
}
