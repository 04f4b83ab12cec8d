// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"plantops-sim/internal/telemetry"
)

// Asset describes a single motor-driven asset in the fleet.
type Asset struct {
	ID   string   `yaml:"id"`
	Type string   `yaml:"type"`
	Load *float64 `yaml:"load,omitempty"`
}

// SeedProfile configures bulk historical data generation.
type SeedProfile struct {
	AssetCount      int    `yaml:"asset_count"`
	AssetType       string `yaml:"asset_type"`
	DurationDays    int    `yaml:"duration_days"`
	IntervalMinutes int    `yaml:"interval_minutes"`
	BatchSize       int    `yaml:"batch_size"`
	RandomSeed      *int64 `yaml:"random_seed,omitempty"`
}

// SimulationConfig is the root configuration for a site's asset fleet.
type SimulationConfig struct {
	SiteID string      `yaml:"site_id"`
	Assets []Asset     `yaml:"assets"`
	Seed   SeedProfile `yaml:"seed"`
}

// Load loads YAML config and validates it against a CUE schema.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	// Validate with CUE first
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	zap.S().Debugw("configuration loaded", "site_id", cfg.SiteID, "assets", len(cfg.Assets))

	return &cfg, nil
}

// Validate applies the semantic checks the schema cannot express.
func (c *SimulationConfig) Validate() error {
	if len(c.Assets) == 0 {
		return fmt.Errorf("config needs at least one asset")
	}
	seen := make(map[string]bool, len(c.Assets))
	for _, a := range c.Assets {
		if a.ID == "" {
			return fmt.Errorf("asset id must not be empty")
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate asset id %q", a.ID)
		}
		seen[a.ID] = true
		switch a.Type {
		case telemetry.TypeConveyor, telemetry.TypeFan, telemetry.TypePump, telemetry.TypeGeneric:
		default:
			return fmt.Errorf("asset %s: unknown type %q", a.ID, a.Type)
		}
		if a.Load != nil && (*a.Load < 0 || *a.Load > 1) {
			return fmt.Errorf("asset %s: load %.2f outside [0,1]", a.ID, *a.Load)
		}
	}
	return nil
}
