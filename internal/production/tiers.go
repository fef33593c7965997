package production

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kwhitfield/quorum/pkg/models"
)

// maxLoopIterations is the hard ceiling on readiness-loop passes no
// tier override may exceed.
const maxLoopIterations = 5

// tierFile is the YAML shape of a tier override file.
type tierFile struct {
	Tiers []models.TierConfig `yaml:"tiers"`
}

// LoadTierConfigs returns the tier table, with per-tier overrides
// applied from the YAML file at path when it exists. An empty path or
// missing file yields the defaults unchanged.
func LoadTierConfigs(path string) (map[models.ProductionTier]models.TierConfig, error) {
	configs := models.DefaultTierConfigs()
	if path == "" {
		return configs, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return configs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading tier config %s: %w", path, err)
	}

	var file tierFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing tier config %s: %w", path, err)
	}

	for _, override := range file.Tiers {
		base, ok := configs[override.Tier]
		if !ok {
			return nil, fmt.Errorf("tier config %s: unknown tier %q", path, override.Tier)
		}
		configs[override.Tier] = mergeTierConfig(base, override)
	}
	return configs, nil
}

// mergeTierConfig overlays the non-zero fields of override onto base
// and clamps the result into valid ranges.
func mergeTierConfig(base, override models.TierConfig) models.TierConfig {
	if override.QualityLevel != "" {
		base.QualityLevel = override.QualityLevel
	}
	if override.TargetConfidence > 0 {
		base.TargetConfidence = models.Clamp01(override.TargetConfidence)
	}
	if override.TargetTestCoverage > 0 {
		base.TargetTestCoverage = models.Clamp01(override.TargetTestCoverage)
	}
	if override.MaxIterations > 0 {
		base.MaxIterations = override.MaxIterations
	}
	if base.MaxIterations > maxLoopIterations {
		base.MaxIterations = maxLoopIterations
	}
	if len(override.EnabledChecks) > 0 {
		base.EnabledChecks = override.EnabledChecks
	}
	return base
}

// TierConfigFor resolves the effective config for one tier: the table
// entry, or the production defaults for an unknown tier.
func TierConfigFor(configs map[models.ProductionTier]models.TierConfig, tier models.ProductionTier) models.TierConfig {
	if cfg, ok := configs[tier]; ok {
		return cfg
	}
	return configs[models.TierProduction]
}
