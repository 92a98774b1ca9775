// Package config defines the configuration surface of the core and its
// validation rules. It is loaded from an optional YAML file
// (gopkg.in/yaml.v3) and may be overlaid by CLI flags in cmd/optimoldiq.
package config

import (
	"fmt"
	"os"

	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/errs"
	"github.com/ThuyHaLE/optimoldiq-core/pkg/optimold/types"
	"gopkg.in/yaml.v3"
)

// Scaling selects how the Feature Weight Engine's traditional weights are
// normalized against feature targets.
type Scaling string

const (
	ScalingAbsolute Scaling = "absolute"
	ScalingRelative Scaling = "relative"
)

// Target is either the literal "minimize" or a positive numeric target
// for a feature.
type Target struct {
	Minimize bool
	Value    float64
}

func (t Target) String() string {
	if t.Minimize {
		return "minimize"
	}
	return fmt.Sprintf("%v", t.Value)
}

// UnmarshalYAML accepts either the string "minimize" or a YAML number.
func (t *Target) UnmarshalYAML(node *yaml.Node) error {
	var asString string
	if err := node.Decode(&asString); err == nil && asString == "minimize" {
		t.Minimize = true
		return nil
	}
	var asFloat float64
	if err := node.Decode(&asFloat); err != nil {
		return fmt.Errorf("target must be 'minimize' or a positive number: %w", err)
	}
	t.Minimize = false
	t.Value = asFloat
	return nil
}

// Config is the full configuration surface recognized by the core.
type Config struct {
	Efficiency float64 `yaml:"efficiency"` // (0,1], default 0.85
	Loss       float64 `yaml:"loss"`       // [0,1), default 0.03; requires Efficiency>Loss

	CavityStabilityThreshold float64 `yaml:"cavity_stability_threshold"` // advisory only
	CycleStabilityThreshold  float64 `yaml:"cycle_stability_threshold"`  // advisory only

	TotalRecordsThreshold int `yaml:"total_records_threshold"` // >=1, default 30

	Scaling          Scaling `yaml:"scaling"`           // default absolute
	ConfidenceWeight float64 `yaml:"confidence_weight"` // [0,1], default 0.3
	NBootstrap       int     `yaml:"n_bootstrap"`       // >=1, default 500
	ConfidenceLevel  float64 `yaml:"confidence_level"`  // (0,1), default 0.95
	MinSampleSize    int     `yaml:"min_sample_size"`   // >=1, default 10

	Targets        map[types.FeatureName]Target  `yaml:"targets"`
	FeatureWeights map[types.FeatureName]float64 `yaml:"feature_weights"` // optional override

	MaxLoadThreshold float64             `yaml:"max_load_threshold"` // >0, default 30 (days)
	PriorityOrder    types.PriorityOrder `yaml:"priority_order"`

	HistoricalInsightThreshold int  `yaml:"historical_insight_threshold"` // >=1, default 30; advisory
	Regenerate                 bool `yaml:"regenerate"`                   // caller-controlled recompute flag

	RandomSeed *int64 `yaml:"random_seed"` // optional, forces deterministic bootstrap
}

// Default returns the configuration with every documented default applied.
func Default() Config {
	return Config{
		Efficiency:               0.85,
		Loss:                     0.03,
		CavityStabilityThreshold: 0.6,
		CycleStabilityThreshold:  0.4,
		TotalRecordsThreshold:    30,
		Scaling:                  ScalingAbsolute,
		ConfidenceWeight:         0.3,
		NBootstrap:               500,
		ConfidenceLevel:          0.95,
		MinSampleSize:            10,
		Targets: map[types.FeatureName]Target{
			types.FeatureNGRate:        {Minimize: true},
			types.FeatureCavityRate:    {Value: 1.0},
			types.FeatureCycleTimeRate: {Value: 1.0},
			types.FeatureCapacityRate:  {Value: 1.0},
		},
		MaxLoadThreshold:           30,
		PriorityOrder:              types.Priority1,
		HistoricalInsightThreshold: 30,
	}
}

// Validate enforces the InvalidConfig rules.
func (c Config) Validate() error {
	const stage = "config"
	if c.Efficiency <= 0 || c.Efficiency > 1 {
		return errs.New(errs.InvalidConfig, stage, fmt.Errorf("efficiency must be in (0,1], got %v", c.Efficiency))
	}
	if c.Loss < 0 || c.Loss >= 1 {
		return errs.New(errs.InvalidConfig, stage, fmt.Errorf("loss must be in [0,1), got %v", c.Loss))
	}
	if c.Efficiency <= c.Loss {
		return errs.New(errs.InvalidConfig, stage, fmt.Errorf("efficiency (%v) must exceed loss (%v)", c.Efficiency, c.Loss))
	}
	if c.CavityStabilityThreshold < 0 || c.CavityStabilityThreshold > 1 {
		return errs.New(errs.InvalidConfig, stage, fmt.Errorf("cavity_stability_threshold must be in [0,1]"))
	}
	if c.CycleStabilityThreshold < 0 || c.CycleStabilityThreshold > 1 {
		return errs.New(errs.InvalidConfig, stage, fmt.Errorf("cycle_stability_threshold must be in [0,1]"))
	}
	if c.TotalRecordsThreshold < 1 {
		return errs.New(errs.InvalidConfig, stage, fmt.Errorf("total_records_threshold must be >=1"))
	}
	if c.Scaling != ScalingAbsolute && c.Scaling != ScalingRelative {
		return errs.New(errs.InvalidConfig, stage, fmt.Errorf("scaling must be 'absolute' or 'relative', got %q", c.Scaling))
	}
	if c.ConfidenceWeight < 0 || c.ConfidenceWeight > 1 {
		return errs.New(errs.InvalidConfig, stage, fmt.Errorf("confidence_weight must be in [0,1]"))
	}
	if c.NBootstrap < 1 {
		return errs.New(errs.InvalidConfig, stage, fmt.Errorf("n_bootstrap must be >=1"))
	}
	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		return errs.New(errs.InvalidConfig, stage, fmt.Errorf("confidence_level must be in (0,1)"))
	}
	if c.MinSampleSize < 1 {
		return errs.New(errs.InvalidConfig, stage, fmt.Errorf("min_sample_size must be >=1"))
	}
	if c.MaxLoadThreshold <= 0 {
		return errs.New(errs.InvalidConfig, stage, fmt.Errorf("max_load_threshold must be >0"))
	}
	switch c.PriorityOrder {
	case types.Priority1, types.Priority2, types.Priority3:
	default:
		return errs.New(errs.InvalidConfig, stage, fmt.Errorf("priority_order must be one of PRIORITY_1/2/3, got %q", c.PriorityOrder))
	}
	for name, target := range c.FeatureWeights {
		if target < 0 {
			return errs.New(errs.InvalidConfig, stage, fmt.Errorf("feature_weights[%s] must be >=0", name))
		}
	}
	return nil
}

// LoadYAML reads a Config from a YAML file, starting from Default() so
// omitted fields keep their documented defaults.
func LoadYAML(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
