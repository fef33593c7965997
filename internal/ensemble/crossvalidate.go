package ensemble

import (
	"github.com/kwhitfield/quorum/pkg/models"
)

// selfWeight and reviewerWeight set the blend between a contribution's
// own confidence and the reviewer-derived assessment.
const (
	selfWeight     = 0.8
	reviewerWeight = 0.2
)

// CrossValidator lets reviewer contributions re-score their peers.
// The blend is fully deterministic.
type CrossValidator struct{}

// NewCrossValidator creates a CrossValidator.
func NewCrossValidator() *CrossValidator {
	return &CrossValidator{}
}

// Revalidate overwrites each non-reviewer contribution's validation
// score, once, with an 80/20 blend of its own confidence and the
// average reviewer assessment. It is a no-op when cross-validation is
// disabled or no reviewer contribution exists. The returned slice has
// the same length and order as the input.
func (v *CrossValidator) Revalidate(contributions []models.Contribution, cfg models.EnsembleConfig) []models.Contribution {
	if !cfg.CrossValidation {
		return contributions
	}

	var reviewers []models.Contribution
	for _, c := range contributions {
		if c.Role == models.RoleReviewer {
			reviewers = append(reviewers, c)
		}
	}
	if len(reviewers) == 0 {
		return contributions
	}

	out := make([]models.Contribution, len(contributions))
	for i, c := range contributions {
		out[i] = c
		if c.Role == models.RoleReviewer {
			continue
		}

		total := 0.0
		for _, r := range reviewers {
			total += assess(c, r)
		}
		avg := total / float64(len(reviewers))
		out[i].ValidationScore = models.Clamp01(selfWeight*c.Confidence + reviewerWeight*avg)
	}
	return out
}

// assess derives a reviewer's verdict on a peer contribution from the
// reviewer's own confidence and the peer artifact's completeness.
func assess(target, reviewer models.Contribution) float64 {
	return models.Clamp01(0.5*reviewer.Confidence + 0.5*target.Artifact.Completeness())
}
