package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeRunner struct {
	output  []byte
	err     error
	missing map[string]bool
}

func (f *fakeRunner) Run(ctx context.Context, workDir, name string, args ...string) ([]byte, error) {
	return f.output, f.err
}

func (f *fakeRunner) LookPath(name string) bool {
	return !f.missing[name]
}

func TestAnalyze_UnknownLanguageHasNoReports(t *testing.T) {
	svc := NewService("cobol", &fakeRunner{}, time.Second)
	if got := svc.Analyze(context.Background(), "code"); got != nil {
		t.Errorf("Analyze() = %v, want nil", got)
	}
}

func TestAnalyze_CleanRunPasses(t *testing.T) {
	svc := NewService("python", &fakeRunner{}, time.Second)

	reports := svc.Analyze(context.Background(), "x = 1\n")
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
	for _, rep := range reports {
		if !rep.Passed {
			t.Errorf("%s: Passed = false, want true", rep.Name)
		}
		if len(rep.Findings) != 0 {
			t.Errorf("%s: Findings = %v, want none", rep.Name, rep.Findings)
		}
	}
}

func TestAnalyze_MissingToolNotPassed(t *testing.T) {
	runner := &fakeRunner{missing: map[string]bool{"shellcheck": true}}
	svc := NewService("bash", runner, time.Second)

	reports := svc.Analyze(context.Background(), "echo hi\n")
	var shellcheck *Report
	for i := range reports {
		if reports[i].Name == "shellcheck" {
			shellcheck = &reports[i]
		}
	}
	if shellcheck == nil {
		t.Fatal("no shellcheck report")
	}
	if shellcheck.Passed {
		t.Error("Passed = true for missing tool")
	}
	if len(shellcheck.Findings) != 1 || !strings.Contains(shellcheck.Findings[0], "not installed") {
		t.Errorf("Findings = %v, want not-installed reason", shellcheck.Findings)
	}
}

func TestAnalyze_FindingsSplitPerLine(t *testing.T) {
	runner := &fakeRunner{
		output: []byte("main.py:1: undefined name 'foo'\n\nmain.py:3: unused import 'os'\n"),
		err:    errors.New("exit status 1"),
	}
	svc := NewService("python", runner, time.Second)

	reports := svc.Analyze(context.Background(), "foo()\n")
	if len(reports) == 0 {
		t.Fatal("no reports")
	}
	rep := reports[0]
	if rep.Passed {
		t.Error("Passed = true, want false")
	}
	if len(rep.Findings) != 2 {
		t.Fatalf("Findings = %v, want 2 lines", rep.Findings)
	}
	if !strings.Contains(rep.Findings[0], "undefined name") {
		t.Errorf("Findings[0] = %q", rep.Findings[0])
	}
}

func TestAnalyze_SilentFailureGetsReason(t *testing.T) {
	runner := &fakeRunner{err: errors.New("signal: killed")}
	svc := NewService("javascript", runner, time.Second)

	reports := svc.Analyze(context.Background(), "let x = 1\n")
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
	if reports[0].Passed {
		t.Error("Passed = true, want false")
	}
	if len(reports[0].Findings) != 1 || !strings.Contains(reports[0].Findings[0], "did not complete") {
		t.Errorf("Findings = %v, want did-not-complete reason", reports[0].Findings)
	}
}
