package models

import "testing"

func TestDefaultTierConfigs_Monotonic(t *testing.T) {
	configs := DefaultTierConfigs()
	order := []ProductionTier{TierPrototype, TierDevelopment, TierStaging, TierProduction, TierMissionCritical}

	if len(configs) != len(order) {
		t.Fatalf("expected %d tier configs, got %d", len(order), len(configs))
	}

	for i := 1; i < len(order); i++ {
		prev, cur := configs[order[i-1]], configs[order[i]]
		if cur.TargetConfidence <= prev.TargetConfidence {
			t.Errorf("%s target confidence %v not above %s's %v",
				order[i], cur.TargetConfidence, order[i-1], prev.TargetConfidence)
		}
		if len(cur.EnabledChecks) < len(prev.EnabledChecks) {
			t.Errorf("%s enables fewer checks than %s", order[i], order[i-1])
		}
		// Each tier must enable a superset of the previous tier's checks.
		for _, k := range prev.EnabledChecks {
			if !cur.Enables(k) {
				t.Errorf("%s drops check %q enabled by %s", order[i], k, order[i-1])
			}
		}
	}

	if configs[TierPrototype].TargetConfidence != 0.60 {
		t.Errorf("prototype target = %v, want 0.60", configs[TierPrototype].TargetConfidence)
	}
	if configs[TierMissionCritical].TargetConfidence != 0.98 {
		t.Errorf("mission critical target = %v, want 0.98", configs[TierMissionCritical].TargetConfidence)
	}
}

func TestDefaultTierConfigs_IterationCeiling(t *testing.T) {
	for tier, cfg := range DefaultTierConfigs() {
		if cfg.MaxIterations < 1 || cfg.MaxIterations > 5 {
			t.Errorf("%s MaxIterations = %d, want 1..5", tier, cfg.MaxIterations)
		}
	}
}

func TestReadinessThreshold(t *testing.T) {
	tests := []struct {
		tier ProductionTier
		want float64
	}{
		{TierPrototype, 0.60},
		{TierDevelopment, 0.75},
		{TierStaging, 0.85},
		{TierProduction, 0.90},
		{TierMissionCritical, 0.95},
		{ProductionTier("unknown"), 0.90},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			if got := ReadinessThreshold(tt.tier); got != tt.want {
				t.Errorf("ReadinessThreshold(%q) = %v, want %v", tt.tier, got, tt.want)
			}
		})
	}
}

func TestProductionTier_AtLeast(t *testing.T) {
	if !TierProduction.AtLeast(TierStaging) {
		t.Error("production should be at least staging")
	}
	if TierDevelopment.AtLeast(TierStaging) {
		t.Error("development should not be at least staging")
	}
	if !TierMissionCritical.AtLeast(TierMissionCritical) {
		t.Error("a tier is at least itself")
	}
}

func TestValidationReport_CountSeverity(t *testing.T) {
	r := &ValidationReport{Checks: []CheckResult{
		{Category: "security", Severity: SeverityCritical, Message: "a"},
		{Category: "static", Severity: SeverityMinor, Message: "b"},
		{Category: "security", Severity: SeverityCritical, Message: "c"},
	}}

	if got := r.CountSeverity(SeverityCritical); got != 2 {
		t.Errorf("CountSeverity(critical) = %d, want 2", got)
	}
	if got := r.CountSeverity(SeverityBlocker); got != 0 {
		t.Errorf("CountSeverity(blocker) = %d, want 0", got)
	}
}
