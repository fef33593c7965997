package ensemble

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeAnalyzers returns scripted analyzer reports.
type fakeAnalyzers struct {
	reports []AnalyzerReport
	delay   time.Duration
}

func (f *fakeAnalyzers) Analyze(ctx context.Context, code string) []AnalyzerReport {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			// A timed-out analyzer batch reports nothing passed.
			out := make([]AnalyzerReport, len(f.reports))
			for i, r := range f.reports {
				out[i] = AnalyzerReport{Name: r.Name, Findings: []string{"analyzer timed out"}}
			}
			return out
		}
	}
	return f.reports
}

// fakeSandbox returns a scripted execution result.
type fakeSandbox struct {
	result ExecutionResult
	err    error
}

func (f *fakeSandbox) Execute(ctx context.Context, code, language, tests string) (ExecutionResult, error) {
	return f.result, f.err
}

func TestExecutionValidator_BoostIsBounded(t *testing.T) {
	tests := []struct {
		name      string
		analyzers Analyzers
		sandbox   Sandbox
	}{
		{
			name:      "all passing",
			analyzers: &fakeAnalyzers{reports: []AnalyzerReport{{Name: "a", Passed: true}, {Name: "b", Passed: true}}},
			sandbox:   &fakeSandbox{result: ExecutionResult{Success: true}},
		},
		{
			name: "everything failing",
			analyzers: &fakeAnalyzers{reports: []AnalyzerReport{
				{Name: "a", Findings: []string{"x", "y", "z"}},
				{Name: "b", Findings: []string{"p", "q", "r", "s", "t", "u"}},
			}},
			sandbox: &fakeSandbox{result: ExecutionResult{Success: false, Error: "boom"}},
		},
		{
			name:      "no collaborators",
			analyzers: nil,
			sandbox:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewExecutionValidator(tt.analyzers, tt.sandbox, "python", time.Second)
			outcome := v.Validate(context.Background(), "code", "tests")
			if outcome.ConfidenceBoost < -0.2 || outcome.ConfidenceBoost > 0.2 {
				t.Errorf("boost = %v, want within [-0.2, 0.2]", outcome.ConfidenceBoost)
			}
		})
	}
}

func TestExecutionValidator_PositiveWhenClean(t *testing.T) {
	v := NewExecutionValidator(
		&fakeAnalyzers{reports: []AnalyzerReport{{Name: "a", Passed: true}}},
		&fakeSandbox{result: ExecutionResult{Success: true}},
		"python", time.Second,
	)
	outcome := v.Validate(context.Background(), "code", "tests")

	if !outcome.Executable {
		t.Error("successful run should mark the artifact executable")
	}
	if outcome.ConfidenceBoost <= 0 {
		t.Errorf("boost = %v, want positive for a clean artifact", outcome.ConfidenceBoost)
	}
	if len(outcome.Issues) != 0 {
		t.Errorf("issues = %v, want none", outcome.Issues)
	}
}

func TestExecutionValidator_NegativeWhenBroken(t *testing.T) {
	v := NewExecutionValidator(
		&fakeAnalyzers{reports: []AnalyzerReport{{Name: "a", Findings: []string{"undefined name"}}}},
		&fakeSandbox{result: ExecutionResult{Success: false, Error: "SyntaxError"}},
		"python", time.Second,
	)
	outcome := v.Validate(context.Background(), "broken", "")

	if outcome.Executable {
		t.Error("failed run must not mark the artifact executable")
	}
	if outcome.ConfidenceBoost >= 0 {
		t.Errorf("boost = %v, want negative for a broken artifact", outcome.ConfidenceBoost)
	}
	if len(outcome.Issues) < 2 {
		t.Errorf("issues = %v, want analyzer finding plus execution error", outcome.Issues)
	}
}

func TestExecutionValidator_SandboxErrorIsFailedCheckNotCrash(t *testing.T) {
	v := NewExecutionValidator(nil, &fakeSandbox{err: errors.New("sandbox offline")}, "python", time.Second)
	outcome := v.Validate(context.Background(), "code", "")

	if outcome.Executable {
		t.Error("unavailable sandbox must count as not executable")
	}
	if len(outcome.Issues) == 0 {
		t.Error("sandbox failure should be recorded as an issue")
	}
}

func TestExecutionValidator_TimeoutCountsAsFailure(t *testing.T) {
	slow := &fakeAnalyzers{
		reports: []AnalyzerReport{{Name: "a", Passed: true}},
		delay:   200 * time.Millisecond,
	}
	v := NewExecutionValidator(slow, nil, "python", 10*time.Millisecond)

	start := time.Now()
	outcome := v.Validate(context.Background(), "code", "")
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("validation blocked for %v, want prompt timeout", elapsed)
	}
	if outcome.ConfidenceBoost > 0 {
		t.Errorf("boost = %v, timed-out analyzer must not raise confidence", outcome.ConfidenceBoost)
	}
}
