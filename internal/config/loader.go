package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/halverson/pennantcast/internal/curve"
)

// Load reads a tuning configuration from a YAML file. Fields absent
// from the file keep their baseline defaults, so a config file only
// needs to name the constants it overrides.
func Load(path string) (TuningConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return TuningConfig{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return TuningConfig{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return TuningConfig{}, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks structural invariants of the configuration.
func (c TuningConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config name is required")
	}
	if len(c.Pitcher.YearWeights) == 0 || len(c.Batter.YearWeights) == 0 {
		return fmt.Errorf("year weights must be non-empty")
	}
	for _, w := range c.Pitcher.YearWeights {
		if w < 0 {
			return fmt.Errorf("pitcher year weights must be non-negative")
		}
	}
	for _, w := range c.Batter.YearWeights {
		if w < 0 {
			return fmt.Errorf("batter year weights must be non-negative")
		}
	}

	curves := map[string]curve.Curve{
		"pitcher.regression.target_offsets":       c.Pitcher.Regression.TargetOffsets,
		"pitcher.regression.strength_multipliers": c.Pitcher.Regression.StrengthMultipliers,
		"pitcher.codec.k9":                        c.Pitcher.Codec.K9,
		"pitcher.codec.bb9":                       c.Pitcher.Codec.BB9,
		"pitcher.codec.hr9":                       c.Pitcher.Codec.HR9,
		"pitcher.playtime.age_cliff":              c.Pitcher.Playtime.AgeCliff,
		"pitcher.war.elite_multiplier":            c.Pitcher.WAR.EliteMultiplier,
		"batter.regression.target_offsets":        c.Batter.Regression.TargetOffsets,
		"batter.regression.strength_multipliers":  c.Batter.Regression.StrengthMultipliers,
		"batter.codec.bb_pct":                     c.Batter.Codec.BBPct,
		"batter.codec.k_pct":                      c.Batter.Codec.KPct,
		"batter.codec.hr_pct":                     c.Batter.Codec.HRPct,
		"batter.codec.avg":                        c.Batter.Codec.AVG,
		"batter.playtime.age_curve":               c.Batter.Playtime.AgeCurve,
	}
	for name, cv := range curves {
		if err := cv.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	for _, ens := range []EnsembleTuning{c.Pitcher.Ensemble, c.Batter.Ensemble} {
		sum := ens.BaseOptimistic + ens.BaseNeutral + ens.BasePessimistic
		if sum <= 0 {
			return fmt.Errorf("ensemble base weights must sum to a positive value, got %.3f", sum)
		}
		if ens.AgingDampening < 0 || ens.AgingDampening > 1 {
			return fmt.Errorf("aging dampening must be in [0,1], got %.3f", ens.AgingDampening)
		}
	}

	if c.Pitcher.Playtime.ModelWeight < 0 || c.Pitcher.Playtime.ModelWeight > 1 {
		return fmt.Errorf("pitcher playtime model weight must be in [0,1], got %.3f", c.Pitcher.Playtime.ModelWeight)
	}
	if c.Batter.Playtime.TrustCap >= 1 {
		return fmt.Errorf("batter playtime trust cap must be below 1.0, got %.3f", c.Batter.Playtime.TrustCap)
	}

	if c.Roster.RotationSize <= 0 || c.Roster.LineupSize <= 0 {
		return fmt.Errorf("rotation and lineup sizes must be positive")
	}
	if c.Calibration.GamesPerSeason <= 0 {
		return fmt.Errorf("games per season must be positive, got %d", c.Calibration.GamesPerSeason)
	}
	if c.Calibration.MinTeamsPerSeason < 2 {
		return fmt.Errorf("calibration needs at least 2 teams per season, got %d", c.Calibration.MinTeamsPerSeason)
	}

	return nil
}
