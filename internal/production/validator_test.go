package production

import (
	"context"
	"errors"
	"testing"

	"github.com/kwhitfield/quorum/pkg/models"
)

// scriptedSandbox returns a fixed execution result.
type scriptedSandbox struct {
	result ExecutionResult
	err    error
}

func (s *scriptedSandbox) Execute(ctx context.Context, code, language, tests string) (ExecutionResult, error) {
	return s.result, s.err
}

func cleanArtifact() models.Artifact {
	return models.Artifact{
		Code: `# add returns the sum of two numbers.
def add(a, b):
    return a + b
`,
		Tests: `def test_add():
    assert add(1, 2) == 3
`,
		Documentation: "add(a, b) returns a+b.",
	}
}

func tierCfg(tier models.ProductionTier) models.TierConfig {
	return models.DefaultTierConfigs()[tier]
}

func TestValidator_CleanArtifactAtDevelopment(t *testing.T) {
	v := NewValidator(nil, 0)
	report := v.Validate(context.Background(), cleanArtifact(), tierCfg(models.TierDevelopment), "python")

	if !report.Status.Acceptable() {
		t.Errorf("status = %s, want acceptable for a clean artifact", report.Status)
	}
	if report.Metrics.OverallScore <= 50 {
		t.Errorf("overall = %v, want above 50", report.Metrics.OverallScore)
	}
	if report.RequiresHumanReview {
		t.Error("clean artifact must not require human review")
	}
}

func TestValidator_DisabledChecksDoNotRun(t *testing.T) {
	// Prototype only runs the static check, so a blatant eval must
	// produce no security finding.
	art := models.Artifact{Code: "eval(input())\n"}
	v := NewValidator(nil, 0)
	report := v.Validate(context.Background(), art, tierCfg(models.TierPrototype), "python")

	for _, c := range report.Checks {
		if c.Category == string(models.CheckSecurity) {
			t.Errorf("security finding %q at prototype tier, security is not enabled there", c.Message)
		}
	}
	if report.Metrics.SecurityScore != 100 {
		t.Errorf("security score = %v, want neutral 100 when the scan is disabled", report.Metrics.SecurityScore)
	}
}

func TestValidator_SecurityFindingsAtStaging(t *testing.T) {
	art := cleanArtifact()
	art.Code += "\npassword = \"hunter2\"\n"
	v := NewValidator(nil, 0)
	report := v.Validate(context.Background(), art, tierCfg(models.TierStaging), "python")

	if report.CountSeverity(models.SeverityCritical) == 0 {
		t.Fatal("hardcoded credential must produce a critical finding")
	}
	if report.Metrics.SecurityScore >= 100 {
		t.Errorf("security score = %v, want reduced", report.Metrics.SecurityScore)
	}
}

func TestValidator_StatusRules(t *testing.T) {
	mk := func(overall float64, severities ...models.Severity) *models.ValidationReport {
		r := &models.ValidationReport{}
		r.Metrics.OverallScore = overall
		for _, s := range severities {
			r.Checks = append(r.Checks, models.CheckResult{Category: "x", Severity: s, Message: "finding"})
		}
		return r
	}

	tests := []struct {
		name   string
		report *models.ValidationReport
		tier   models.ProductionTier
		want   models.ValidationStatus
	}{
		{"no findings", mk(90), models.TierDevelopment, models.StatusPassed},
		{"minor only", mk(90, models.SeverityMinor), models.TierDevelopment, models.StatusPassedWithWarnings},
		{"blocker always fails", mk(99, models.SeverityBlocker), models.TierPrototype, models.StatusFailed},
		{"mission critical rejects one critical", mk(99, models.SeverityCritical), models.TierMissionCritical, models.StatusFailed},
		{"mission critical rejects 94", mk(94), models.TierMissionCritical, models.StatusFailed},
		{"production rejects 84", mk(84), models.TierProduction, models.StatusFailed},
		{"production accepts 86 with warning", mk(86, models.SeverityMinor), models.TierProduction, models.StatusPassedWithWarnings},
		{"four criticals fail anywhere", mk(95, models.SeverityCritical, models.SeverityCritical, models.SeverityCritical, models.SeverityCritical), models.TierDevelopment, models.StatusFailed},
		{"three criticals pass with warnings at staging", mk(95, models.SeverityCritical, models.SeverityCritical, models.SeverityCritical), models.TierStaging, models.StatusPassedWithWarnings},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveStatus(tt.report, tt.tier); got != tt.want {
				t.Errorf("deriveStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidator_RuntimeFailureIsCritical(t *testing.T) {
	sandbox := &scriptedSandbox{result: ExecutionResult{Success: false, Error: "NameError: bar"}}
	v := NewValidator(sandbox, 0)
	report := v.Validate(context.Background(), cleanArtifact(), tierCfg(models.TierProduction), "python")

	found := false
	for _, c := range report.Checks {
		if c.Category == string(models.CheckRuntime) && c.Severity == models.SeverityCritical {
			found = true
		}
	}
	if !found {
		t.Error("failed execution must produce a critical runtime finding")
	}
}

func TestValidator_SandboxErrorDegradesNotCrashes(t *testing.T) {
	sandbox := &scriptedSandbox{err: errors.New("sandbox offline")}
	v := NewValidator(sandbox, 0)
	report := v.Validate(context.Background(), cleanArtifact(), tierCfg(models.TierProduction), "python")

	if report == nil {
		t.Fatal("validator must always return a report")
	}
	found := false
	for _, c := range report.Checks {
		if c.Category == string(models.CheckRuntime) {
			found = true
		}
	}
	if !found {
		t.Error("unavailable sandbox must surface as a runtime finding")
	}
}

func TestValidator_ConfidenceWithinRange(t *testing.T) {
	artifacts := []models.Artifact{
		{},
		{Code: "eval(exec(os.system(x)))\npassword = \"x\"\napi_key = \"y\"\nsecret = \"z\"\n"},
		cleanArtifact(),
	}
	v := NewValidator(nil, 0)
	for _, art := range artifacts {
		report := v.Validate(context.Background(), art, tierCfg(models.TierMissionCritical), "python")
		if report.ConfidenceScore < 0 || report.ConfidenceScore > 1 {
			t.Errorf("confidence = %v, want within [0,1]", report.ConfidenceScore)
		}
	}
}
