package production

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kwhitfield/quorum/pkg/models"
)

type scriptedRunner struct {
	output string
	err    error
}

func (r *scriptedRunner) RunWithSystem(ctx context.Context, system, prompt string) (string, error) {
	return r.output, r.err
}

func TestParseTestOutput(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		success bool
		suite   string
		want    models.TestSummary
	}{
		{
			name:   "pytest summary line",
			output: "==== 7 passed, 2 failed in 0.41s ====",
			want:   models.TestSummary{Total: 9, Passed: 7, Failed: 2},
		},
		{
			name:   "all passing summary",
			output: "5 passed in 0.1s",
			want:   models.TestSummary{Total: 5, Passed: 5},
		},
		{
			name:    "no summary, successful run counts asserts",
			output:  "ok",
			success: true,
			suite:   "assert a\nassert b\nassert c\n",
			want:    models.TestSummary{Total: 3, Passed: 3},
		},
		{
			name:   "no summary, failed run counts asserts as failures",
			output: "Traceback ...",
			suite:  "assert a\n",
			want:   models.TestSummary{Total: 1, Failed: 1},
		},
		{
			name:   "no summary and no asserts",
			output: "",
			suite:  "",
			want:   models.TestSummary{Total: 1, Failed: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTestOutput(tt.output, tt.success, tt.suite)
			if got.Total != tt.want.Total || got.Passed != tt.want.Passed || got.Failed != tt.want.Failed {
				t.Errorf("parseTestOutput() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEstimateCoverage(t *testing.T) {
	code := "def add(a, b):\n    return a + b\n\ndef sub(a, b):\n    return a - b\n"
	if got := estimateCoverage(code, "assert add(1, 2) == 3"); got != 0.5 {
		t.Errorf("coverage = %v, want 0.5 with one of two functions tested", got)
	}
	if got := estimateCoverage(code, ""); got != 0 {
		t.Errorf("coverage = %v, want 0 with no tests", got)
	}
	if got := estimateCoverage("x = 1", "assert x"); got != 0 {
		t.Errorf("coverage = %v, want 0 with no functions", got)
	}
}

func TestLLMTestService_GenerateStripsFences(t *testing.T) {
	runner := &scriptedRunner{output: "```python\ndef test_add():\n    assert add(1, 2) == 3\n```"}
	svc := NewLLMTestService(runner, nil)

	suite, err := svc.GenerateTests(context.Background(), "def add(a, b): ...", "python", 0.8)
	if err != nil {
		t.Fatalf("GenerateTests() error = %v", err)
	}
	if strings.Contains(suite, "```") {
		t.Errorf("suite still fenced: %q", suite)
	}
	if !strings.Contains(suite, "def test_add") {
		t.Errorf("suite = %q, body lost", suite)
	}
}

func TestLLMTestService_RunnerErrorPropagates(t *testing.T) {
	svc := NewLLMTestService(&scriptedRunner{err: errors.New("rate limited")}, nil)
	if _, err := svc.GenerateTests(context.Background(), "x", "python", 0.5); err == nil {
		t.Error("runner error must propagate")
	}
}

func TestLLMTestService_RunTests(t *testing.T) {
	sandbox := &scriptedSandbox{result: ExecutionResult{Success: true, Output: "3 passed in 0.2s"}}
	svc := NewLLMTestService(nil, sandbox)

	code := "def add(a, b):\n    return a + b\n"
	sum, err := svc.RunTests(context.Background(), code, "assert add(1, 1) == 2", "python")
	if err != nil {
		t.Fatalf("RunTests() error = %v", err)
	}
	if sum.Passed != 3 || sum.Failed != 0 {
		t.Errorf("summary = %+v, want 3 passed", sum)
	}
	if sum.Coverage != 1.0 {
		t.Errorf("coverage = %v, want 1.0", sum.Coverage)
	}
}
