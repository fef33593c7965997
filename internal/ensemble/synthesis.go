package ensemble

import (
	"errors"
	"sort"
	"strings"

	"github.com/kwhitfield/quorum/pkg/models"
)

// ErrNoContributions is returned when synthesis is asked to merge an
// empty contribution list.
var ErrNoContributions = errors.New("no contributions to synthesize")

// roleWeights is the static per-role weight table for weighted voting.
var roleWeights = map[models.Role]float64{
	models.RoleArchitect:      1.5,
	models.RoleImplementer:    1.3,
	models.RoleReviewer:       1.2,
	models.RoleSecurityExpert: 1.2,
	models.RoleOptimizer:      1.1,
	models.RoleTestEngineer:   1.0,
	models.RoleDocumentor:     0.8,
}

// criticalKeywords steer adaptive synthesis toward confidence-based
// voting with a raised consensus bar.
var criticalKeywords = []string{
	"critical",
	"security",
	"production",
	"payment",
	"compliance",
}

// Synthesizer merges contributions into one result per the selected
// voting strategy.
type Synthesizer struct{}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize merges the contributions. Contributions must be in roster
// order: the majority tie-break picks the earliest index. Returns
// ErrNoContributions on an empty list.
func (s *Synthesizer) Synthesize(contributions []models.Contribution, task models.Task, cfg models.EnsembleConfig) (*models.SynthesizedResult, error) {
	if len(contributions) == 0 {
		return nil, ErrNoContributions
	}
	cfg = cfg.Normalize()

	strategy := cfg.Strategy
	threshold := cfg.ConsensusThreshold
	if strategy == models.StrategyAdaptive {
		strategy, threshold = resolveAdaptive(task, threshold)
	}

	var result *models.SynthesizedResult
	switch strategy {
	case models.StrategyMajority:
		result = majorityVote(contributions)
	case models.StrategyWeighted:
		result = weightedVote(contributions)
	case models.StrategyConfidence:
		result = confidenceVote(contributions, threshold)
	case models.StrategyQuality:
		result = qualityVote(contributions)
	default:
		result = weightedVote(contributions)
	}

	// A result is never returned with empty code while any contribution
	// carried code.
	if result.Code == "" {
		for _, c := range contributions {
			if c.Artifact.Code != "" {
				result.Code = c.Artifact.Code
				break
			}
		}
	}
	return result, nil
}

// resolveAdaptive deterministically maps task attributes to a concrete
// strategy and possibly a raised consensus threshold.
func resolveAdaptive(task models.Task, threshold float64) (models.VotingStrategy, float64) {
	if task.Complexity == models.ComplexityMeta {
		return models.StrategyQuality, threshold
	}
	if containsAny(strings.ToLower(task.Description), criticalKeywords) {
		if threshold < 0.8 {
			threshold = 0.8
		}
		return models.StrategyConfidence, threshold
	}
	if task.Complexity == models.ComplexityTrivial {
		return models.StrategyMajority, threshold
	}
	return models.StrategyWeighted, threshold
}

// majorityVote picks the contribution with maximum confidence, first
// listed winning ties. Its artifact is carried verbatim.
func majorityVote(contributions []models.Contribution) *models.SynthesizedResult {
	best := 0
	for i, c := range contributions {
		if c.Confidence > contributions[best].Confidence {
			best = i
		}
	}
	winner := contributions[best]
	return &models.SynthesizedResult{
		Code:          winner.Artifact.Code,
		Tests:         winner.Artifact.Tests,
		Documentation: winner.Artifact.Documentation,
		SecurityNotes: winner.Artifact.SecurityNotes,
		Method:        models.StrategyMajority,
		Provenance:    []models.ProvenanceEntry{{ProducerID: winner.ProducerID, Role: winner.Role, Score: winner.Confidence}},
		Confidence:    winner.Confidence,
	}
}

// weightedVote scores each contribution as confidence x validation x
// role weight, then merges the top three by role specialization.
func weightedVote(contributions []models.Contribution) *models.SynthesizedResult {
	type scored struct {
		c     models.Contribution
		score float64
	}
	ranked := make([]scored, 0, len(contributions))
	for _, c := range contributions {
		w, ok := roleWeights[c.Role]
		if !ok {
			w = 1.0
		}
		ranked = append(ranked, scored{c: c, score: c.Confidence * c.ValidationScore * w})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	top := ranked
	if len(top) > 3 {
		top = top[:3]
	}

	result := &models.SynthesizedResult{Method: models.StrategyWeighted}
	confSum := 0.0
	for _, entry := range top {
		c := entry.c
		result.Provenance = append(result.Provenance, models.ProvenanceEntry{
			ProducerID: c.ProducerID, Role: c.Role, Score: entry.score,
		})
		confSum += c.Confidence

		switch c.Role {
		case models.RoleImplementer:
			if result.Code == "" {
				result.Code = c.Artifact.Code
			}
		case models.RoleTestEngineer:
			if result.Tests == "" {
				result.Tests = c.Artifact.Tests
			}
		case models.RoleDocumentor:
			if result.Documentation == "" {
				result.Documentation = c.Artifact.Documentation
			}
		case models.RoleSecurityExpert:
			if result.SecurityNotes == "" {
				result.SecurityNotes = c.Artifact.SecurityNotes
			}
		}
	}

	// No implementer among the top three: fall back to the single
	// highest-scored contribution's code.
	if result.Code == "" {
		result.Code = top[0].c.Artifact.Code
	}
	// Fill remaining fields from the top entries in rank order.
	for _, entry := range top {
		if result.Tests == "" {
			result.Tests = entry.c.Artifact.Tests
		}
		if result.Documentation == "" {
			result.Documentation = entry.c.Artifact.Documentation
		}
	}

	result.Confidence = models.Clamp01(confSum / float64(len(top)))
	return result
}

// confidenceVote keeps the strongest contribution's code as the base
// and attaches role-specific fields from peers whose confidence clears
// the consensus threshold.
func confidenceVote(contributions []models.Contribution, threshold float64) *models.SynthesizedResult {
	idx := make([]int, len(contributions))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ca, cb := contributions[idx[a]], contributions[idx[b]]
		return ca.Confidence*ca.ValidationScore > cb.Confidence*cb.ValidationScore
	})

	base := contributions[idx[0]]
	result := &models.SynthesizedResult{
		Code:          base.Artifact.Code,
		Tests:         base.Artifact.Tests,
		Documentation: base.Artifact.Documentation,
		SecurityNotes: base.Artifact.SecurityNotes,
		Method:        models.StrategyConfidence,
		Provenance:    []models.ProvenanceEntry{{ProducerID: base.ProducerID, Role: base.Role, Score: base.Confidence * base.ValidationScore}},
		Confidence:    base.Confidence,
	}

	for _, i := range idx[1:] {
		c := contributions[i]
		if c.Confidence <= threshold {
			continue
		}
		attached := false
		switch c.Role {
		case models.RoleTestEngineer:
			if c.Artifact.Tests != "" {
				result.Tests = mergeSection(result.Tests, c.Artifact.Tests)
				attached = true
			}
		case models.RoleSecurityExpert:
			if c.Artifact.SecurityNotes != "" {
				result.SecurityNotes = mergeSection(result.SecurityNotes, c.Artifact.SecurityNotes)
				attached = true
			}
		case models.RoleDocumentor:
			if c.Artifact.Documentation != "" {
				result.Documentation = mergeSection(result.Documentation, c.Artifact.Documentation)
				attached = true
			}
		default:
			if c.Artifact.Tests != "" && result.Tests == "" {
				result.Tests = c.Artifact.Tests
				attached = true
			}
		}
		if attached {
			result.Provenance = append(result.Provenance, models.ProvenanceEntry{
				ProducerID: c.ProducerID, Role: c.Role, Score: c.Confidence * c.ValidationScore,
			})
		}
	}
	return result
}

// qualityVote computes a blended quality score per contribution and
// assembles each output field from the first contribution, in quality
// order, that supplies it.
func qualityVote(contributions []models.Contribution) *models.SynthesizedResult {
	type scored struct {
		c     models.Contribution
		score float64
	}
	ranked := make([]scored, 0, len(contributions))
	for _, c := range contributions {
		ranked = append(ranked, scored{c: c, score: qualityScore(c)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	result := &models.SynthesizedResult{
		Method:     models.StrategyQuality,
		Confidence: models.Clamp01(ranked[0].score),
	}
	used := make(map[string]bool)
	take := func(entry scored) {
		if !used[entry.c.ProducerID] {
			used[entry.c.ProducerID] = true
			result.Provenance = append(result.Provenance, models.ProvenanceEntry{
				ProducerID: entry.c.ProducerID, Role: entry.c.Role, Score: entry.score,
			})
		}
	}

	for _, entry := range ranked {
		if result.Code == "" && entry.c.Artifact.Code != "" {
			result.Code = entry.c.Artifact.Code
			take(entry)
		}
		if result.Tests == "" && entry.c.Artifact.Tests != "" {
			result.Tests = entry.c.Artifact.Tests
			take(entry)
		}
		if result.Documentation == "" && entry.c.Artifact.Documentation != "" {
			result.Documentation = entry.c.Artifact.Documentation
			take(entry)
		}
		if result.SecurityNotes == "" && entry.c.Artifact.SecurityNotes != "" {
			result.SecurityNotes = entry.c.Artifact.SecurityNotes
			take(entry)
		}
	}
	return result
}

// qualityScore blends confidence, validation, and field presence.
func qualityScore(c models.Contribution) float64 {
	score := 0.3*c.Confidence + 0.3*c.ValidationScore
	if c.Artifact.Code != "" {
		score += 0.2
	}
	if c.Artifact.Tests != "" {
		score += 0.1
	}
	if c.Artifact.Documentation != "" {
		score += 0.1
	}
	return score
}

// mergeSection appends an enhancement to an existing section without
// replacing it.
func mergeSection(base, addition string) string {
	if base == "" {
		return addition
	}
	if addition == "" || strings.Contains(base, addition) {
		return base
	}
	return base + "\n\n" + addition
}
