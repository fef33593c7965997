// Package analyzer wraps external static-analysis tools. Each analyzer
// invocation is bounded by a timeout; an analyzer that is missing,
// errors, or times out counts as not-passed rather than failing the
// caller.
package analyzer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kwhitfield/quorum/internal/exec"
)

// Report is the outcome of one analyzer over one piece of code.
type Report struct {
	// Name identifies the analyzer tool.
	Name string
	// Passed is true when the analyzer ran and reported no problems.
	Passed bool
	// Findings lists problems reported by the analyzer, one per line.
	Findings []string
}

// toolSpec describes one analyzer command. The file path is appended
// to Args at invocation time.
type toolSpec struct {
	Name string
	Cmd  string
	Args []string
	Ext  string
}

// toolSpecs maps languages to the analyzers run over them.
var toolSpecs = map[string][]toolSpec{
	"python": {
		{Name: "pyflakes", Cmd: "python3", Args: []string{"-m", "pyflakes"}, Ext: ".py"},
		{Name: "compile", Cmd: "python3", Args: []string{"-m", "py_compile"}, Ext: ".py"},
	},
	"javascript": {
		{Name: "node-check", Cmd: "node", Args: []string{"--check"}, Ext: ".js"},
	},
	"bash": {
		{Name: "bash-n", Cmd: "bash", Args: []string{"-n"}, Ext: ".sh"},
		{Name: "shellcheck", Cmd: "shellcheck", Args: nil, Ext: ".sh"},
	},
}

// Service runs the configured analyzers for a language.
type Service struct {
	language string
	runner   exec.CommandRunner
	timeout  time.Duration
}

// NewService creates an analyzer service for the given language.
// A zero timeout defaults to 20s.
func NewService(language string, runner exec.CommandRunner, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Service{language: language, runner: runner, timeout: timeout}
}

// Analyze runs every configured analyzer over the code and returns one
// report per analyzer. It never returns an error: an analyzer that
// cannot run produces a not-passed report.
func (s *Service) Analyze(ctx context.Context, code string) []Report {
	specs := toolSpecs[s.language]
	if len(specs) == 0 {
		return nil
	}

	dir, err := os.MkdirTemp("", "quorum-analyze-")
	if err != nil {
		log.Printf("[analyzer] scratch dir unavailable: %v", err)
		return notPassedAll(specs, "scratch directory unavailable")
	}
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, "artifact"+specs[0].Ext)
	if err := os.WriteFile(file, []byte(code), 0644); err != nil {
		log.Printf("[analyzer] write artifact: %v", err)
		return notPassedAll(specs, "artifact not writable")
	}

	reports := make([]Report, 0, len(specs))
	for _, spec := range specs {
		reports = append(reports, s.runOne(ctx, spec, dir, file))
	}
	return reports
}

// runOne runs a single analyzer tool over the artifact file.
func (s *Service) runOne(ctx context.Context, spec toolSpec, dir, file string) Report {
	rep := Report{Name: spec.Name}

	if !s.runner.LookPath(spec.Cmd) {
		rep.Findings = []string{fmt.Sprintf("%s not installed", spec.Cmd)}
		return rep
	}

	args := append(append([]string{}, spec.Args...), file)
	out, err := exec.RunWithTimeout(ctx, s.runner, s.timeout, dir, spec.Cmd, args...)
	if err != nil {
		rep.Findings = splitFindings(string(out))
		if len(rep.Findings) == 0 {
			rep.Findings = []string{fmt.Sprintf("%s did not complete: %v", spec.Name, err)}
		}
		return rep
	}

	rep.Passed = true
	return rep
}

// notPassedAll builds a failing report for every spec with one reason.
func notPassedAll(specs []toolSpec, reason string) []Report {
	reports := make([]Report, 0, len(specs))
	for _, spec := range specs {
		reports = append(reports, Report{Name: spec.Name, Findings: []string{reason}})
	}
	return reports
}

// splitFindings turns analyzer output into one finding per non-empty line.
func splitFindings(out string) []string {
	var findings []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			findings = append(findings, line)
		}
	}
	return findings
}
