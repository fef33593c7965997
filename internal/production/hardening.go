package production

import (
	"fmt"
	"strings"

	"github.com/kwhitfield/quorum/pkg/models"
)

// Hardening checks run once, after the readiness loop settles, for
// Staging and stricter tiers. Each check scores one production concern
// from the best iteration's artifact and report.

// runHardening returns the tier's hardening reports. Prototype and
// Development run none.
func runHardening(tier models.ProductionTier, best *models.IterationRecord) []models.HardeningReport {
	if best == nil || !tier.AtLeast(models.TierStaging) {
		return nil
	}
	art := best.Result.Artifact()

	reports := []models.HardeningReport{
		securityPenetration(art, best.Report),
		performanceBenchmark(art),
	}
	if tier.AtLeast(models.TierProduction) {
		reports = append(reports, loadTest(best.Report))
	}
	if tier == models.TierMissionCritical {
		reports = append(reports, chaosTest(art))
	}
	return reports
}

// securityPenetration re-scores the security posture with the
// validation findings counted against it.
func securityPenetration(art models.Artifact, report *models.ValidationReport) models.HardeningReport {
	_, raw := securityCheck(art)
	score := raw / 100
	if report != nil {
		score -= 0.15 * float64(report.CountSeverity(models.SeverityCritical))
		score -= 0.30 * float64(report.CountSeverity(models.SeverityBlocker))
	}
	score = models.Clamp01(score)
	return models.HardeningReport{
		Name:    "security_penetration",
		Score:   score,
		Passed:  score >= 0.8,
		Details: "pattern scan cross-checked against validation findings",
	}
}

// performanceBenchmark scores the artifact against the anti-pattern
// table.
func performanceBenchmark(art models.Artifact) models.HardeningReport {
	_, raw := performanceCheck(art)
	score := raw / 100
	return models.HardeningReport{
		Name:    "performance_benchmark",
		Score:   score,
		Passed:  score >= 0.7,
		Details: "static scan for quadratic and blocking patterns",
	}
}

// loadTest estimates behavior under load from structural metrics.
func loadTest(report *models.ValidationReport) models.HardeningReport {
	score := 0.7
	if report != nil {
		structural := models.Clamp01(1 - report.Metrics.Complexity/20)
		score = models.Clamp01(0.5*structural + 0.5*report.Metrics.Maintainability/100)
	}
	return models.HardeningReport{
		Name:    "load_test",
		Score:   score,
		Passed:  score >= 0.7,
		Details: fmt.Sprintf("structural load estimate, score %.2f", score),
	}
}

// chaosTest scores resilience from error-handling density.
func chaosTest(art models.Artifact) models.HardeningReport {
	handlers := 0
	for _, kw := range []string{"try:", "except ", "catch", "if err", "raise ", "finally"} {
		handlers += strings.Count(art.Code, kw)
	}
	funcs := countFunctions(art.Code)
	if funcs == 0 {
		funcs = 1
	}
	score := models.Clamp01(0.4 + 0.3*float64(handlers)/float64(funcs))
	return models.HardeningReport{
		Name:    "chaos_test",
		Score:   score,
		Passed:  score >= 0.6,
		Details: fmt.Sprintf("%d error-handling sites across %d functions", handlers, funcs),
	}
}

// blendHardening folds hardening scores into the readiness score. With
// no hardening checks the readiness score passes through unchanged.
func blendHardening(readiness float64, reports []models.HardeningReport) float64 {
	if len(reports) == 0 {
		return readiness
	}
	sum := 0.0
	for _, r := range reports {
		sum += r.Score
	}
	avg := sum / float64(len(reports))
	return models.Clamp01(0.7*readiness + 0.3*avg)
}
