package production

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kwhitfield/quorum/pkg/models"
)

// fakeEnsemble returns scripted results per call, cycling the last
// entry when calls outnumber the script.
type fakeEnsemble struct {
	results  []*models.SynthesizedResult
	errs     []error
	calls    int
	seen     []models.Task
	seenCfgs []models.EnsembleConfig
	onCall   func(call int)
}

func (f *fakeEnsemble) RunEnsemble(ctx context.Context, task models.Task, cfg models.EnsembleConfig) (*models.SynthesizedResult, error) {
	idx := f.calls
	f.calls++
	f.seen = append(f.seen, task)
	f.seenCfgs = append(f.seenCfgs, cfg)
	if f.onCall != nil {
		f.onCall(idx)
	}
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	return f.results[idx], nil
}

// fakeValidator returns scripted reports per call.
type fakeValidator struct {
	reports []*models.ValidationReport
	calls   int
}

func (f *fakeValidator) Validate(ctx context.Context, art models.Artifact, cfg models.TierConfig, language string) *models.ValidationReport {
	idx := f.calls
	f.calls++
	if idx >= len(f.reports) {
		idx = len(f.reports) - 1
	}
	return f.reports[idx]
}

// fakeTests returns one scripted summary for every run.
type fakeTests struct {
	summary models.TestSummary
	genErr  error
}

func (f *fakeTests) GenerateTests(ctx context.Context, code, language string, target float64) (string, error) {
	if f.genErr != nil {
		return "", f.genErr
	}
	return "def test_x():\n    assert True\n", nil
}

func (f *fakeTests) RunTests(ctx context.Context, code, tests, language string) (models.TestSummary, error) {
	return f.summary, nil
}

type fakeRecorder struct {
	records []PatternRecord
}

func (f *fakeRecorder) Record(rec PatternRecord) {
	f.records = append(f.records, rec)
}

func synthResult(code string) *models.SynthesizedResult {
	return &models.SynthesizedResult{
		Code:       code,
		Method:     models.StrategyWeighted,
		Confidence: 0.8,
	}
}

// uniformReport builds a report whose confidence, overall, and
// security scores are all the same fraction, so the readiness blend
// equals that fraction when no tests run.
func uniformReport(level float64, status models.ValidationStatus) *models.ValidationReport {
	return &models.ValidationReport{
		Status:          status,
		ConfidenceScore: level,
		Metrics: models.QualityMetrics{
			OverallScore:  level * 100,
			SecurityScore: level * 100,
		},
	}
}

func TestLoop_PrototypeConvergesInOneIteration(t *testing.T) {
	ens := &fakeEnsemble{results: []*models.SynthesizedResult{synthResult("def f():\n    return 1\n")}}
	val := &fakeValidator{reports: []*models.ValidationReport{uniformReport(0.65, models.StatusPassed)}}
	loop := NewLoop(ens, val)

	result := loop.GenerateProductionCode(context.Background(), models.Task{ID: "t1"}, models.TierPrototype, nil)

	if result.Status != models.ProductionStatusReady {
		t.Fatalf("status = %s, want ready", result.Status)
	}
	if !result.ProductionReady {
		t.Error("score 0.65 at prototype (threshold 0.60) must be production ready")
	}
	if result.Iterations != 1 {
		t.Errorf("iterations = %d, want 1", result.Iterations)
	}
	if result.Best == nil || !result.Best.MeetsStandards {
		t.Error("best iteration must meet standards")
	}
	if len(result.Hardening) != 0 {
		t.Errorf("prototype tier ran %d hardening checks, want 0", len(result.Hardening))
	}
}

func TestLoop_ProductionCriticalOverridesScore(t *testing.T) {
	report := uniformReport(0.95, models.StatusPassedWithWarnings)
	report.Checks = []models.CheckResult{{
		Category: string(models.CheckSecurity), Severity: models.SeverityCritical,
		Message: "dynamic eval of untrusted input",
	}}

	ens := &fakeEnsemble{results: []*models.SynthesizedResult{synthResult("eval(x)")}}
	val := &fakeValidator{reports: []*models.ValidationReport{report}}
	loop := NewLoop(ens, val)

	result := loop.GenerateProductionCode(context.Background(), models.Task{ID: "t2"}, models.TierProduction, nil)

	if result.Best == nil {
		t.Fatal("best iteration missing")
	}
	if result.Best.ReadinessScore < models.ReadinessThreshold(models.TierProduction) {
		t.Fatalf("readiness = %v, scenario needs a score above the tier bar", result.Best.ReadinessScore)
	}
	if result.Best.MeetsStandards {
		t.Error("one critical finding must override the score at production tier")
	}
	if result.Status == models.ProductionStatusReady {
		t.Error("unconverged run must not be ready")
	}
}

func TestLoop_NeverExceedsMaxIterations(t *testing.T) {
	for tier, cfg := range models.DefaultTierConfigs() {
		ens := &fakeEnsemble{results: []*models.SynthesizedResult{synthResult("x = 1")}}
		val := &fakeValidator{reports: []*models.ValidationReport{uniformReport(0.10, models.StatusFailed)}}
		loop := NewLoop(ens, val)

		result := loop.GenerateProductionCode(context.Background(), models.Task{ID: "t3"}, tier, nil)

		if result.Iterations > cfg.MaxIterations {
			t.Errorf("tier %s: iterations = %d, want at most %d", tier, result.Iterations, cfg.MaxIterations)
		}
		if ens.calls > cfg.MaxIterations {
			t.Errorf("tier %s: %d generation calls, want at most %d", tier, ens.calls, cfg.MaxIterations)
		}
		if result.Status != models.ProductionStatusNotReady {
			t.Errorf("tier %s: status = %s, want not_ready on exhaustion", tier, result.Status)
		}
	}
}

func TestLoop_ConvergenceStopsIterating(t *testing.T) {
	ens := &fakeEnsemble{results: []*models.SynthesizedResult{synthResult("x = 1")}}
	val := &fakeValidator{reports: []*models.ValidationReport{uniformReport(0.95, models.StatusPassed)}}
	loop := NewLoop(ens, val)

	result := loop.GenerateProductionCode(context.Background(), models.Task{ID: "t4"}, models.TierDevelopment, nil)

	if result.Iterations != 1 {
		t.Errorf("iterations = %d, want 1 when the first pass meets standards", result.Iterations)
	}
	if ens.calls != 1 {
		t.Errorf("generation calls = %d, want no pass after convergence", ens.calls)
	}
}

func TestLoop_TotalFailureReturnsResultNotError(t *testing.T) {
	boom := errors.New("backend down")
	ens := &fakeEnsemble{
		results: []*models.SynthesizedResult{nil},
		errs:    []error{boom, boom, boom, boom, boom},
	}
	val := &fakeValidator{reports: []*models.ValidationReport{uniformReport(0.9, models.StatusPassed)}}
	loop := NewLoop(ens, val)

	result := loop.GenerateProductionCode(context.Background(), models.Task{ID: "t5"}, models.TierStaging, nil)

	if result == nil {
		t.Fatal("loop must always return a result")
	}
	if result.Status != models.ProductionStatusFailed {
		t.Errorf("status = %s, want failed", result.Status)
	}
	if result.Confidence != 0 {
		t.Errorf("confidence = %v, want 0 on total failure", result.Confidence)
	}
	if result.ProductionReady {
		t.Error("total failure must not be production ready")
	}
	if result.TaskID != "t5" {
		t.Errorf("task id = %q, want preserved on failure", result.TaskID)
	}
	if result.FailureReason == "" {
		t.Error("failure reason missing")
	}
}

func TestLoop_FeedsValidationIssuesForward(t *testing.T) {
	report := uniformReport(0.2, models.StatusFailed)
	report.Checks = []models.CheckResult{{
		Category: string(models.CheckStatic), Severity: models.SeverityMajor,
		Message: "estimated complexity 14 exceeds 10 per function",
	}}

	ens := &fakeEnsemble{results: []*models.SynthesizedResult{synthResult("x = 1")}}
	val := &fakeValidator{reports: []*models.ValidationReport{report}}
	loop := NewLoop(ens, val)

	loop.GenerateProductionCode(context.Background(), models.Task{ID: "t6"}, models.TierDevelopment, nil)

	if len(ens.seen) < 2 {
		t.Fatalf("generation calls = %d, want a second pass", len(ens.seen))
	}
	if ens.seen[0].Context[feedbackContextKey] != "" {
		t.Error("first pass must not carry feedback")
	}
	feedback := ens.seen[1].Context[feedbackContextKey]
	if feedback == "" {
		t.Fatal("second pass missing validation feedback in context")
	}
	if want := "complexity 14"; !strings.Contains(feedback, want) {
		t.Errorf("feedback %q does not mention %q", feedback, want)
	}
}

func TestLoop_FailedTestsBlockConvergence(t *testing.T) {
	ens := &fakeEnsemble{results: []*models.SynthesizedResult{synthResult("def f():\n    return 1\n")}}
	val := &fakeValidator{reports: []*models.ValidationReport{uniformReport(0.95, models.StatusPassed)}}
	tests := &fakeTests{summary: models.TestSummary{Total: 4, Passed: 3, Failed: 1, Coverage: 0.9}}
	loop := NewLoop(ens, val, WithTestService(tests))

	result := loop.GenerateProductionCode(context.Background(), models.Task{ID: "t7"}, models.TierDevelopment, nil)

	if result.Best == nil {
		t.Fatal("best iteration missing")
	}
	if result.Best.MeetsStandards {
		t.Error("a failing test must block convergence")
	}
	if result.Best.Tests == nil || result.Best.Tests.Failed != 1 {
		t.Error("test summary not recorded on the iteration")
	}
}

func TestLoop_RecordsOutcome(t *testing.T) {
	ens := &fakeEnsemble{results: []*models.SynthesizedResult{synthResult("x = 1")}}
	val := &fakeValidator{reports: []*models.ValidationReport{uniformReport(0.9, models.StatusPassed)}}
	rec := &fakeRecorder{}
	loop := NewLoop(ens, val, WithRecorder(rec))

	loop.GenerateProductionCode(context.Background(), models.Task{ID: "t8", Complexity: models.ComplexityMedium}, models.TierDevelopment, nil)

	if len(rec.records) != 1 {
		t.Fatalf("records = %d, want 1", len(rec.records))
	}
	r := rec.records[0]
	if r.TaskID != "t8" || r.Tier != models.TierDevelopment || r.Strategy != models.StrategyWeighted {
		t.Errorf("record = %+v, fields not carried through", r)
	}
}

func TestLoop_OverrideTightensTier(t *testing.T) {
	ens := &fakeEnsemble{results: []*models.SynthesizedResult{synthResult("x = 1")}}
	val := &fakeValidator{reports: []*models.ValidationReport{uniformReport(0.70, models.StatusPassed)}}
	loop := NewLoop(ens, val)

	override := &models.TierConfig{TargetConfidence: 0.99}
	result := loop.GenerateProductionCode(context.Background(), models.Task{ID: "t9"}, models.TierPrototype, override)

	if result.Best != nil && result.Best.MeetsStandards {
		t.Error("override target 0.99 must prevent convergence at score 0.70")
	}
}

func TestLoop_EnsembleConfigSwapsMidRun(t *testing.T) {
	ens := &fakeEnsemble{results: []*models.SynthesizedResult{synthResult("x = 1")}}
	val := &fakeValidator{reports: []*models.ValidationReport{uniformReport(0.10, models.StatusFailed)}}
	loop := NewLoop(ens, val)

	swapped := models.EnsembleConfig{Strategy: models.StrategyConfidence, MaxAgents: 4}
	ens.onCall = func(call int) {
		if call == 0 {
			loop.SetEnsembleConfig(swapped)
		}
	}

	loop.GenerateProductionCode(context.Background(), models.Task{ID: "t10"}, models.TierDevelopment, nil)

	if len(ens.seenCfgs) < 2 {
		t.Fatalf("generation passes = %d, want at least 2", len(ens.seenCfgs))
	}
	if ens.seenCfgs[0].Strategy == models.StrategyConfidence {
		t.Error("first pass already used the swapped strategy")
	}
	if ens.seenCfgs[1].Strategy != models.StrategyConfidence {
		t.Errorf("second pass strategy = %s, want %s", ens.seenCfgs[1].Strategy, models.StrategyConfidence)
	}
}
