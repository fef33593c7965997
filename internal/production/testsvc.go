package production

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kwhitfield/quorum/pkg/models"
)

// promptRunner is the completion surface the test service needs from
// the API layer.
type promptRunner interface {
	RunWithSystem(ctx context.Context, system, prompt string) (string, error)
}

// LLMTestService generates a test suite with the model and executes
// it in the sandbox.
type LLMTestService struct {
	runner  promptRunner
	sandbox Sandbox
}

// NewLLMTestService creates the test generation/execution service.
func NewLLMTestService(runner promptRunner, sandbox Sandbox) *LLMTestService {
	return &LLMTestService{runner: runner, sandbox: sandbox}
}

const testGenSystem = `You are a test engineer. Given source code, write a complete,
runnable test suite for it. Output only the test code, no prose, no fences.`

// GenerateTests asks the model for a test suite targeting the given
// coverage fraction.
func (s *LLMTestService) GenerateTests(ctx context.Context, code, language string, targetCoverage float64) (string, error) {
	if s.runner == nil {
		return "", fmt.Errorf("test generation: no model runner configured")
	}
	prompt := fmt.Sprintf(
		"Language: %s\nTarget coverage: %.0f%%\n\nCode under test:\n%s\n",
		language, targetCoverage*100, code,
	)
	out, err := s.runner.RunWithSystem(ctx, testGenSystem, prompt)
	if err != nil {
		return "", fmt.Errorf("test generation: %w", err)
	}
	return stripFences(out), nil
}

// RunTests executes the suite in the sandbox and summarizes the run.
func (s *LLMTestService) RunTests(ctx context.Context, code, tests, language string) (models.TestSummary, error) {
	if s.sandbox == nil {
		return models.TestSummary{}, fmt.Errorf("test execution: no sandbox configured")
	}
	res, err := s.sandbox.Execute(ctx, code, language, tests)
	if err != nil {
		return models.TestSummary{}, fmt.Errorf("test execution: %w", err)
	}

	summary := parseTestOutput(res.Output, res.Success, tests)
	summary.Coverage = estimateCoverage(code, tests)
	return summary, nil
}

var (
	passedRe = regexp.MustCompile(`(\d+) passed`)
	failedRe = regexp.MustCompile(`(\d+) failed`)
)

// parseTestOutput extracts pass/fail counts from runner output,
// falling back to assertion counting when the output has no summary
// line.
func parseTestOutput(output string, success bool, tests string) models.TestSummary {
	var s models.TestSummary
	if m := passedRe.FindStringSubmatch(output); m != nil {
		s.Passed, _ = strconv.Atoi(m[1])
	}
	if m := failedRe.FindStringSubmatch(output); m != nil {
		s.Failed, _ = strconv.Atoi(m[1])
	}
	s.Total = s.Passed + s.Failed
	if s.Total > 0 {
		return s
	}

	asserts := strings.Count(tests, "assert")
	if asserts == 0 {
		asserts = 1
	}
	s.Total = asserts
	if success {
		s.Passed = asserts
	} else {
		s.Failed = asserts
	}
	return s
}

// estimateCoverage approximates coverage as the fraction of defined
// functions the test text references.
func estimateCoverage(code, tests string) float64 {
	names := definedFunctionNames(code)
	if len(names) == 0 {
		return 0
	}
	covered := 0
	for _, name := range names {
		if strings.Contains(tests, name) {
			covered++
		}
	}
	return float64(covered) / float64(len(names))
}

// stripFences removes a single surrounding markdown code fence.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
