package ensemble

import (
	"strings"

	"github.com/kwhitfield/quorum/pkg/models"
)

// maxConfidence caps the scorer output: no static heuristic should
// ever claim certainty.
const maxConfidence = 0.99

// ConfidenceScorer scores a single artifact on static, multi-factor
// heuristics. Every factor degrades to zero on unparsable input; the
// scorer never fails.
type ConfidenceScorer struct{}

// NewConfidenceScorer creates a ConfidenceScorer.
func NewConfidenceScorer() *ConfidenceScorer {
	return &ConfidenceScorer{}
}

// Score returns a confidence estimate in [0, 0.99] for the artifact.
// securityScore and reviewScore are externally supplied factors in
// [0,1] (pass 0 when unknown).
func (s *ConfidenceScorer) Score(artifact models.Artifact, securityScore, reviewScore float64) float64 {
	code := artifact.Code
	tests := artifact.Tests

	score := 0.0
	score += 0.20 * syntaxValidity(code)
	score += 0.15 * testsPresence(tests)
	score += 0.20 * testPassEstimate(code, tests)
	score += 0.10 * errorHandling(code)
	score += 0.05 * typeAnnotationRatio(code)
	score += 0.05 * docRatio(code, artifact.Documentation)
	score += 0.05 * nestingAppropriateness(code)
	score += 0.10 * models.Clamp01(securityScore)
	score += 0.10 * models.Clamp01(reviewScore)

	if score > maxConfidence {
		score = maxConfidence
	}
	if score < 0 {
		score = 0
	}
	return score
}

// syntaxValidity estimates structural well-formedness from delimiter
// balance. Empty code scores zero.
func syntaxValidity(code string) float64 {
	if strings.TrimSpace(code) == "" {
		return 0
	}
	pairs := [][2]rune{{'(', ')'}, {'[', ']'}, {'{', '}'}}
	balanced := 0
	for _, p := range pairs {
		if strings.Count(code, string(p[0])) == strings.Count(code, string(p[1])) {
			balanced++
		}
	}
	// Odd quote counts suggest an unterminated string.
	quotes := 1.0
	if strings.Count(code, `"`)%2 != 0 {
		quotes = 0.5
	}
	return float64(balanced) / 3.0 * quotes
}

// testsPresence scores whether tests exist and look non-trivial.
func testsPresence(tests string) float64 {
	trimmed := strings.TrimSpace(tests)
	if trimmed == "" {
		return 0
	}
	lower := strings.ToLower(trimmed)
	if !strings.Contains(lower, "test") {
		return 0.3
	}
	asserts := strings.Count(lower, "assert") + strings.Count(lower, "expect")
	if asserts == 0 {
		return 0.5
	}
	if asserts >= 3 {
		return 1.0
	}
	return 0.7
}

// testPassEstimate heuristically estimates whether the tests would
// pass: every name the tests reference should be defined in the code.
func testPassEstimate(code, tests string) float64 {
	if strings.TrimSpace(code) == "" || strings.TrimSpace(tests) == "" {
		return 0
	}
	names := definedNames(code)
	if len(names) == 0 {
		return 0.4
	}
	referenced, found := 0, 0
	for _, name := range names {
		if strings.Contains(tests, name) {
			found++
		}
		referenced++
	}
	// Tests that exercise more of the defined surface are more credible.
	return 0.4 + 0.6*float64(found)/float64(referenced)
}

// definedNames extracts function/method names from def/func/function
// declarations.
func definedNames(code string) []string {
	var names []string
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		for _, prefix := range []string{"def ", "func ", "function "} {
			if strings.HasPrefix(line, prefix) {
				rest := line[len(prefix):]
				if end := strings.IndexAny(rest, "( "); end > 0 {
					names = append(names, rest[:end])
				}
			}
		}
	}
	return names
}

// errorHandling scores the presence of error-handling constructs.
func errorHandling(code string) float64 {
	lower := strings.ToLower(code)
	hits := 0
	for _, marker := range []string{"try:", "except", "catch", "if err", "raise ", "throw "} {
		if strings.Contains(lower, marker) {
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	if hits >= 2 {
		return 1.0
	}
	return 0.6
}

// typeAnnotationRatio scores the density of type annotations on
// declaration lines.
func typeAnnotationRatio(code string) float64 {
	decls, annotated := 0, 0
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "def ") || strings.HasPrefix(trimmed, "function ") {
			decls++
			if strings.Contains(trimmed, "->") || strings.Contains(trimmed, ": ") {
				annotated++
			}
		}
	}
	if decls == 0 {
		return 0
	}
	return float64(annotated) / float64(decls)
}

// docRatio scores doc-comment density plus standalone documentation.
func docRatio(code, documentation string) float64 {
	lines := strings.Split(code, "\n")
	if len(lines) == 0 {
		return 0
	}
	docLines := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") ||
			strings.HasPrefix(trimmed, `"""`) || strings.HasPrefix(trimmed, "'''") {
			docLines++
		}
	}
	ratio := float64(docLines) / float64(len(lines)) * 5 // 20% comments = full marks
	if documentation != "" {
		ratio += 0.3
	}
	return models.Clamp01(ratio)
}

// nestingAppropriateness penalizes deeply indented code.
func nestingAppropriateness(code string) float64 {
	maxDepth := 0
	for _, line := range strings.Split(code, "\n") {
		indent := 0
		for _, r := range line {
			if r == ' ' {
				indent++
			} else if r == '\t' {
				indent += 4
			} else {
				break
			}
		}
		depth := indent / 4
		if depth > maxDepth {
			maxDepth = depth
		}
	}
	switch {
	case maxDepth <= 3:
		return 1.0
	case maxDepth <= 5:
		return 0.6
	default:
		return 0.2
	}
}
