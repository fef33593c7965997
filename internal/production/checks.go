package production

import (
	"fmt"
	"strings"

	"github.com/kwhitfield/quorum/pkg/models"
)

// Each check inspects the artifact text with fixed keyword tables and
// returns findings plus a 0-100 score. Checks are independent: one
// check's findings never change another's score.

// branchKeywords approximate cyclomatic complexity across the
// supported languages.
var branchKeywords = []string{
	"if ", "elif ", "else if", "for ", "while ", "case ", "catch ",
	"except ", "&&", "||",
}

// securityPatterns maps a suspicious substring to its severity.
var securityPatterns = []struct {
	pattern  string
	severity models.Severity
	message  string
}{
	{"eval(", models.SeverityCritical, "dynamic eval of untrusted input"},
	{"exec(", models.SeverityCritical, "dynamic exec of untrusted input"},
	{"os.system(", models.SeverityCritical, "shell command built from code"},
	{"shell=True", models.SeverityCritical, "subprocess with shell=True"},
	{"pickle.loads", models.SeverityCritical, "unpickling untrusted data"},
	{"password = \"", models.SeverityCritical, "hardcoded credential"},
	{"api_key = \"", models.SeverityCritical, "hardcoded credential"},
	{"secret = \"", models.SeverityCritical, "hardcoded credential"},
	{"md5(", models.SeverityMajor, "weak hash algorithm"},
	{"verify=False", models.SeverityMajor, "TLS verification disabled"},
	{"% (", models.SeverityMinor, "string interpolation near query text"},
}

// perfPatterns flag common performance anti-patterns.
var perfPatterns = []struct {
	pattern string
	message string
}{
	{"time.sleep(", "blocking sleep in generated code"},
	{".readlines()", "whole-file read into memory"},
	{"+= \"", "string concatenation in a loop is quadratic"},
	{"SELECT *", "unbounded select"},
}

// staticCheck estimates complexity and structural health.
func staticCheck(art models.Artifact) ([]models.CheckResult, float64, float64) {
	var findings []models.CheckResult
	lines := strings.Split(art.Code, "\n")

	branches := 0
	for _, kw := range branchKeywords {
		branches += strings.Count(art.Code, kw)
	}
	funcs := countFunctions(art.Code)
	complexity := float64(branches + 1)
	if funcs > 1 {
		complexity = float64(branches)/float64(funcs) + 1
	}

	if complexity > 10 {
		findings = append(findings, models.CheckResult{
			Category: string(models.CheckStatic), Severity: models.SeverityMajor,
			Message: fmt.Sprintf("estimated complexity %.0f exceeds 10 per function", complexity),
		})
	}
	longest := longestRun(lines)
	if longest > 60 {
		findings = append(findings, models.CheckResult{
			Category: string(models.CheckStatic), Severity: models.SeverityMinor,
			Message: fmt.Sprintf("longest unbroken block is %d lines", longest),
		})
	}
	if funcs == 0 && len(strings.TrimSpace(art.Code)) > 0 {
		findings = append(findings, models.CheckResult{
			Category: string(models.CheckStatic), Severity: models.SeverityMinor,
			Message: "no function boundaries detected",
		})
	}

	maintainability := 100.0 - 5*complexity - 10*float64(len(findings))
	return findings, complexity, clampScore(maintainability)
}

// securityCheck scans for dangerous patterns.
func securityCheck(art models.Artifact) ([]models.CheckResult, float64) {
	var findings []models.CheckResult
	score := 100.0
	for _, p := range securityPatterns {
		if strings.Contains(art.Code, p.pattern) {
			findings = append(findings, models.CheckResult{
				Category: string(models.CheckSecurity), Severity: p.severity, Message: p.message,
			})
			switch p.severity {
			case models.SeverityCritical:
				score -= 25
			case models.SeverityMajor:
				score -= 10
			default:
				score -= 5
			}
		}
	}
	return findings, clampScore(score)
}

// coverageCheck estimates how much of the code the tests touch.
func coverageCheck(art models.Artifact, target float64) ([]models.CheckResult, float64) {
	var findings []models.CheckResult

	if strings.TrimSpace(art.Tests) == "" {
		findings = append(findings, models.CheckResult{
			Category: string(models.CheckTests), Severity: models.SeverityMajor,
			Message: "no tests supplied with the artifact",
		})
		return findings, 0
	}

	names := definedFunctionNames(art.Code)
	covered := 0
	for _, name := range names {
		if strings.Contains(art.Tests, name) {
			covered++
		}
	}
	coverage := 100.0
	if len(names) > 0 {
		coverage = 100 * float64(covered) / float64(len(names))
	}
	if coverage < target*100 {
		findings = append(findings, models.CheckResult{
			Category: string(models.CheckTests), Severity: models.SeverityMinor,
			Message: fmt.Sprintf("estimated coverage %.0f%% below the %.0f%% target", coverage, target*100),
		})
	}
	return findings, coverage
}

// performanceCheck scans for well-known anti-patterns.
func performanceCheck(art models.Artifact) ([]models.CheckResult, float64) {
	var findings []models.CheckResult
	score := 100.0
	for _, p := range perfPatterns {
		if strings.Contains(art.Code, p.pattern) {
			findings = append(findings, models.CheckResult{
				Category: string(models.CheckPerformance), Severity: models.SeverityMinor, Message: p.message,
			})
			score -= 10
		}
	}
	return findings, clampScore(score)
}

// architectureCheck applies coarse structure heuristics.
func architectureCheck(art models.Artifact) ([]models.CheckResult, float64) {
	var findings []models.CheckResult
	score := 100.0

	if strings.Contains(art.Code, "global ") {
		findings = append(findings, models.CheckResult{
			Category: string(models.CheckArchitecture), Severity: models.SeverityMajor,
			Message: "mutable global state",
		})
		score -= 15
	}
	if run := longestRun(strings.Split(art.Code, "\n")); run > 80 {
		findings = append(findings, models.CheckResult{
			Category: string(models.CheckArchitecture), Severity: models.SeverityMajor,
			Message: "single oversized unit, consider splitting responsibilities",
		})
		score -= 15
	}
	total := len(strings.Split(art.Code, "\n"))
	if funcs := countFunctions(art.Code); funcs > 0 && total/funcs > 50 {
		findings = append(findings, models.CheckResult{
			Category: string(models.CheckArchitecture), Severity: models.SeverityMinor,
			Message: "average function length exceeds 50 lines",
		})
		score -= 10
	}
	return findings, clampScore(score)
}

// documentationCheck measures doc coverage of the artifact.
func documentationCheck(art models.Artifact) ([]models.CheckResult, float64) {
	var findings []models.CheckResult

	docLines := 0
	for _, line := range strings.Split(art.Code, "\n") {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "#") || strings.HasPrefix(t, "//") ||
			strings.HasPrefix(t, "\"\"\"") || strings.HasPrefix(t, "* ") {
			docLines++
		}
	}
	funcs := countFunctions(art.Code)

	score := 40.0
	if art.Documentation != "" {
		score += 40
	}
	if funcs > 0 && docLines >= funcs {
		score += 20
	} else if docLines > 0 {
		score += 10
	}

	if art.Documentation == "" {
		findings = append(findings, models.CheckResult{
			Category: string(models.CheckDocumentation), Severity: models.SeverityMinor,
			Message: "artifact carries no standalone documentation",
		})
	}
	if funcs > 0 && docLines == 0 {
		findings = append(findings, models.CheckResult{
			Category: string(models.CheckDocumentation), Severity: models.SeverityMinor,
			Message: "no inline documentation on any function",
		})
	}
	return findings, clampScore(score)
}

// countFunctions counts function definitions across the supported
// languages.
func countFunctions(code string) int {
	n := 0
	for _, line := range strings.Split(code, "\n") {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "def ") || strings.HasPrefix(t, "func ") ||
			strings.HasPrefix(t, "function ") || strings.Contains(t, "=> {") {
			n++
		}
	}
	return n
}

// definedFunctionNames extracts defined function names for coverage
// estimation.
func definedFunctionNames(code string) []string {
	var names []string
	for _, line := range strings.Split(code, "\n") {
		t := strings.TrimSpace(line)
		var rest string
		switch {
		case strings.HasPrefix(t, "def "):
			rest = t[len("def "):]
		case strings.HasPrefix(t, "function "):
			rest = t[len("function "):]
		case strings.HasPrefix(t, "func "):
			rest = t[len("func "):]
		default:
			continue
		}
		if i := strings.IndexAny(rest, "( "); i > 0 {
			names = append(names, rest[:i])
		}
	}
	return names
}

// longestRun returns the longest run of consecutive non-blank lines.
func longestRun(lines []string) int {
	longest, run := 0, 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if run > longest {
				longest = run
			}
			run = 0
			continue
		}
		run++
	}
	if run > longest {
		longest = run
	}
	return longest
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
