package models

// Role identifies the specialization of a producer in an ensemble.
// Roles are orthogonal to capability: any role may run at any producer tier.
type Role string

const (
	// RoleArchitect designs structure and interfaces.
	RoleArchitect Role = "architect"
	// RoleImplementer writes the primary code.
	RoleImplementer Role = "implementer"
	// RoleReviewer critiques peer contributions.
	RoleReviewer Role = "reviewer"
	// RoleOptimizer focuses on performance and efficiency.
	RoleOptimizer Role = "optimizer"
	// RoleSecurityExpert focuses on vulnerabilities and hardening.
	RoleSecurityExpert Role = "security_expert"
	// RoleTestEngineer writes and strengthens tests.
	RoleTestEngineer Role = "test_engineer"
	// RoleDocumentor writes documentation.
	RoleDocumentor Role = "documentor"
)

// Valid returns true if the role is a known value.
func (r Role) Valid() bool {
	switch r {
	case RoleArchitect, RoleImplementer, RoleReviewer, RoleOptimizer,
		RoleSecurityExpert, RoleTestEngineer, RoleDocumentor:
		return true
	default:
		return false
	}
}

// ProducerTier is the capability/cost level of a producer call,
// cheapest to most capable. Distinct from ProductionTier, which names
// the readiness bar for the overall result.
type ProducerTier string

const (
	// ProducerTierLight is the cheapest, fastest producer class.
	ProducerTierLight ProducerTier = "light"
	// ProducerTierStandard is the balanced default producer class.
	ProducerTierStandard ProducerTier = "standard"
	// ProducerTierHeavy is the most capable producer class.
	ProducerTierHeavy ProducerTier = "heavy"
)

// Valid returns true if the tier is a known value.
func (t ProducerTier) Valid() bool {
	switch t {
	case ProducerTierLight, ProducerTierStandard, ProducerTierHeavy:
		return true
	default:
		return false
	}
}

// Rank returns the ordinal position of the tier, 0 being cheapest.
// Unknown tiers rank as standard.
func (t ProducerTier) Rank() int {
	switch t {
	case ProducerTierLight:
		return 0
	case ProducerTierHeavy:
		return 2
	default:
		return 1
	}
}
