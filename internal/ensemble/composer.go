package ensemble

import (
	"strings"

	"github.com/kwhitfield/quorum/pkg/models"
)

// securityKeywords flag tasks that warrant a security expert.
var securityKeywords = []string{
	"security",
	"auth",
	"authentication",
	"authorization",
	"password",
	"crypto",
	"token",
	"api",
	"endpoint",
}

// testKeywords flag tasks that warrant a dedicated test engineer.
var testKeywords = []string{
	"test",
	"testing",
	"coverage",
	"quality",
	"tdd",
	"regression",
}

// performanceKeywords flag tasks that warrant an optimizer.
var performanceKeywords = []string{
	"performance",
	"optimize",
	"optimization",
	"scale",
	"latency",
	"throughput",
	"memory",
	"cache",
}

// fallbackRoles is the fixed padding order when a roster is below the
// configured minimum.
var fallbackRoles = []models.Role{
	models.RoleDocumentor,
	models.RoleOptimizer,
	models.RoleSecurityExpert,
}

// RosterEntry is one producer slot selected by the composer.
type RosterEntry struct {
	// Role is the specialization for this slot.
	Role models.Role
	// Tier is the capability class for this slot.
	Tier models.ProducerTier
}

// Composer decides which roles and tiers of producer run for a task.
// Selection is deterministic: identical task and config always yield
// the identical ordered roster.
type Composer struct{}

// NewComposer creates a Composer.
func NewComposer() *Composer {
	return &Composer{}
}

// Select builds the ordered producer roster for a task. The roster
// length is within [cfg.MinAgents, cfg.MaxAgents] and roles are never
// duplicated.
func (c *Composer) Select(task models.Task, cfg models.EnsembleConfig) []RosterEntry {
	cfg = cfg.Normalize()
	desc := strings.ToLower(task.Description)

	var roles []models.Role
	seen := make(map[models.Role]bool)
	add := func(r models.Role) {
		if !seen[r] {
			seen[r] = true
			roles = append(roles, r)
		}
	}

	// An implementer always runs.
	add(models.RoleImplementer)

	if task.Complexity == models.ComplexityComplex || task.Complexity == models.ComplexityMeta {
		add(models.RoleArchitect)
	}

	// A reviewer always runs for quality.
	add(models.RoleReviewer)

	if containsAny(desc, securityKeywords) {
		add(models.RoleSecurityExpert)
	}
	if containsAny(desc, testKeywords) {
		add(models.RoleTestEngineer)
	}
	if containsAny(desc, performanceKeywords) {
		add(models.RoleOptimizer)
	}

	// Pad with the fixed fallback order until the minimum is met.
	for _, r := range fallbackRoles {
		if len(roles) >= cfg.MinAgents {
			break
		}
		add(r)
	}

	if len(roles) > cfg.MaxAgents {
		roles = roles[:cfg.MaxAgents]
	}

	roster := make([]RosterEntry, 0, len(roles))
	for _, r := range roles {
		roster = append(roster, RosterEntry{Role: r, Tier: c.tierFor(r, task, cfg)})
	}
	return roster
}

// tierFor picks the producer capability class for a role. With
// adaptive selection enabled, design-heavy roles on hard tasks run at
// the heavy tier and the documentor runs light.
func (c *Composer) tierFor(role models.Role, task models.Task, cfg models.EnsembleConfig) models.ProducerTier {
	if !cfg.AdaptiveSelection {
		return models.ProducerTierStandard
	}

	hard := task.Complexity == models.ComplexityComplex || task.Complexity == models.ComplexityMeta
	switch role {
	case models.RoleArchitect:
		return models.ProducerTierHeavy
	case models.RoleImplementer:
		if hard {
			return models.ProducerTierHeavy
		}
		return models.ProducerTierStandard
	case models.RoleDocumentor:
		return models.ProducerTierLight
	default:
		return models.ProducerTierStandard
	}
}

// containsAny reports whether text contains any of the keywords.
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
