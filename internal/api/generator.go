package api

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kwhitfield/quorum/pkg/models"
)

// rolePrompts maps each producer role to its system prompt.
var rolePrompts = map[models.Role]string{
	models.RoleArchitect:      "You are a software architect. Produce a clean, well-structured design and skeleton implementation for the task.",
	models.RoleImplementer:    "You are a senior implementer. Produce complete, working code for the task.",
	models.RoleReviewer:       "You are a code reviewer. Produce an improved implementation of the task and note what you would flag in review.",
	models.RoleOptimizer:      "You are a performance engineer. Produce an implementation of the task optimized for speed and memory.",
	models.RoleSecurityExpert: "You are a security engineer. Produce a hardened implementation of the task and document its security posture.",
	models.RoleTestEngineer:   "You are a test engineer. Produce an implementation of the task with a thorough test suite.",
	models.RoleDocumentor:     "You are a technical writer. Produce an implementation of the task with excellent documentation.",
}

// responseFormat tells the model how to structure its answer so the
// parser can split it into artifact fields.
const responseFormat = `Structure your response with these exact section headers:

### CODE
<the implementation>

### TESTS
<the test suite, if any>

### DOCS
<documentation, if any>

### SECURITY
<security notes, if any>

### CONFIDENCE
<a single number between 0 and 1 rating your confidence in the implementation>

Omit a section entirely if you have nothing for it. Do not add other sections.`

// Generator turns (role, tier, task) into an Artifact by prompting
// the model and parsing the sectioned response. It implements the
// producer contract the ensemble engine consumes.
type Generator struct {
	runner *Runner
	client *Client
}

// NewGenerator creates a Generator on top of a client and its runner.
func NewGenerator(client *Client) *Generator {
	return &Generator{runner: NewRunner(client), client: client}
}

// Generate produces one contribution's artifact and the model's
// self-reported confidence.
func (g *Generator) Generate(ctx context.Context, role models.Role, tier models.ProducerTier, task models.Task) (models.Artifact, float64, error) {
	system, ok := rolePrompts[role]
	if !ok {
		return models.Artifact{}, 0, fmt.Errorf("no prompt for role %q", role)
	}

	prompt := buildPrompt(task)
	out, err := g.runner.RunWithModel(ctx, g.client.ModelFor(tier), system+"\n\n"+responseFormat, prompt)
	if err != nil {
		return models.Artifact{}, 0, fmt.Errorf("generate %s: %w", role, err)
	}

	art, confidence := ParseArtifact(out)
	if art.IsEmpty() {
		return models.Artifact{}, 0, fmt.Errorf("generate %s: empty response", role)
	}
	return art, confidence, nil
}

// buildPrompt renders the task and its context map. Context keys are
// sorted so prompts are stable across runs.
func buildPrompt(task models.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", task.Description)
	if task.Language != "" {
		fmt.Fprintf(&b, "Language: %s\n", task.Language)
	}
	if task.Complexity != "" {
		fmt.Fprintf(&b, "Complexity: %s\n", task.Complexity)
	}

	if len(task.Context) > 0 {
		keys := make([]string, 0, len(task.Context))
		for k := range task.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\nContext:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s:\n%s\n", k, task.Context[k])
		}
	}
	return b.String()
}

// sectionHeaders in the order the format prescribes.
var sectionHeaders = []string{"### CODE", "### TESTS", "### DOCS", "### SECURITY", "### CONFIDENCE"}

// ParseArtifact splits a sectioned model response into an Artifact
// and a confidence in [0, 0.99]. A response with no section headers
// is treated as all code with a neutral confidence.
func ParseArtifact(response string) (models.Artifact, float64) {
	sections := splitSections(response)
	if len(sections) == 0 {
		return models.Artifact{Code: stripFence(response)}, 0.5
	}

	art := models.Artifact{
		Code:          stripFence(sections["### CODE"]),
		Tests:         stripFence(sections["### TESTS"]),
		Documentation: strings.TrimSpace(sections["### DOCS"]),
		SecurityNotes: strings.TrimSpace(sections["### SECURITY"]),
	}

	confidence := 0.5
	if raw := strings.TrimSpace(sections["### CONFIDENCE"]); raw != "" {
		if f, err := strconv.ParseFloat(strings.Fields(raw)[0], 64); err == nil {
			confidence = f
		}
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 0.99 {
		confidence = 0.99
	}
	return art, confidence
}

// splitSections maps each known header to the text that follows it,
// up to the next header. It returns nil when no header is present.
func splitSections(response string) map[string]string {
	indices := make(map[string]int)
	for _, h := range sectionHeaders {
		if i := strings.Index(response, h); i >= 0 {
			indices[h] = i
		}
	}
	if len(indices) == 0 {
		return nil
	}

	sections := make(map[string]string)
	for h, start := range indices {
		bodyStart := start + len(h)
		end := len(response)
		for other, i := range indices {
			if other != h && i > start && i < end {
				end = i
			}
		}
		sections[h] = response[bodyStart:end]
	}
	return sections
}

// stripFence trims a single surrounding markdown code fence.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
