// Package sandbox executes generated code in an isolated scratch
// directory with a hard timeout. It is an external collaborator of the
// ensemble core: a timed-out or failed execution is reported as an
// unsuccessful result, never as a hang or crash.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/kwhitfield/quorum/internal/exec"
)

// Result is the outcome of one sandboxed execution.
type Result struct {
	// Success is true when the program ran and exited zero.
	Success bool
	// Output is the combined stdout/stderr of the run.
	Output string
	// Error describes why the run failed, empty on success.
	Error string
	// Duration is wall-clock execution time.
	Duration time.Duration
}

// langSpec describes how to materialize and run code for one language.
type langSpec struct {
	codeFile string
	testFile string
	runCmd   []string // {name, args...}; testFile appended when tests exist
}

// langSpecs maps supported languages to their toolchain invocation.
var langSpecs = map[string]langSpec{
	"python": {
		codeFile: "main.py",
		testFile: "test_main.py",
		runCmd:   []string{"python3"},
	},
	"javascript": {
		codeFile: "index.js",
		testFile: "index.test.js",
		runCmd:   []string{"node"},
	},
	"bash": {
		codeFile: "main.sh",
		testFile: "test_main.sh",
		runCmd:   []string{"bash"},
	},
}

// ErrUnsupportedLanguage is returned when no toolchain is known for
// the requested language.
var ErrUnsupportedLanguage = errors.New("unsupported sandbox language")

// Service runs code through the local toolchain in a temp directory.
type Service struct {
	runner  exec.CommandRunner
	timeout time.Duration
}

// NewService creates a sandbox service. A zero timeout defaults to 30s.
func NewService(runner exec.CommandRunner, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{runner: runner, timeout: timeout}
}

// Execute writes code (and tests, when non-empty) into a scratch
// directory and runs it. The error return is reserved for setup
// problems (unsupported language, unwritable scratch dir); execution
// failures and timeouts are reported inside the Result.
func (s *Service) Execute(ctx context.Context, code, language, tests string) (Result, error) {
	spec, ok := langSpecs[language]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	if !s.runner.LookPath(spec.runCmd[0]) {
		return Result{}, fmt.Errorf("toolchain %q not available", spec.runCmd[0])
	}

	dir, err := os.MkdirTemp("", "quorum-sandbox-")
	if err != nil {
		return Result{}, fmt.Errorf("create sandbox dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := os.WriteFile(filepath.Join(dir, spec.codeFile), []byte(code), 0644); err != nil {
		return Result{}, fmt.Errorf("write code: %w", err)
	}
	target := spec.codeFile
	if tests != "" {
		if err := os.WriteFile(filepath.Join(dir, spec.testFile), []byte(tests), 0644); err != nil {
			return Result{}, fmt.Errorf("write tests: %w", err)
		}
		target = spec.testFile
	}

	args := append(append([]string{}, spec.runCmd[1:]...), target)
	start := time.Now()
	out, runErr := exec.RunWithTimeout(ctx, s.runner, s.timeout, dir, spec.runCmd[0], args...)
	elapsed := time.Since(start)

	res := Result{
		Success:  runErr == nil,
		Output:   string(out),
		Duration: elapsed,
	}
	if runErr != nil {
		if errors.Is(runErr, context.DeadlineExceeded) || elapsed >= s.timeout {
			res.Error = fmt.Sprintf("execution timed out after %v", s.timeout)
		} else {
			res.Error = runErr.Error()
		}
		log.Printf("[sandbox] %s execution failed: %s", language, res.Error)
	}
	return res, nil
}

// Supports returns true if the sandbox can execute the given language.
func (s *Service) Supports(language string) bool {
	_, ok := langSpecs[language]
	return ok
}
