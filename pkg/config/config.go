// Package config loads and validates the engine configuration. Files may
// be TOML, YAML or JSON; whatever the format, the raw document is checked
// against an embedded JSON schema before unmarshaling, so a typo in a key
// fails loudly instead of silently keeping a default.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml"

	"github.com/augurlabs/augur/pkg/analyzer/cycles"
	"github.com/augurlabs/augur/pkg/analyzer/ddd"
	"github.com/augurlabs/augur/pkg/analyzer/score"
	"github.com/augurlabs/augur/pkg/analyzer/suggest"
)

// Config holds all configuration for the analysis engine.
type Config struct {
	// Engine settings
	Engine EngineConfig `koanf:"engine" toml:"engine"`

	// Cycle detection settings
	Cycles CyclesConfig `koanf:"cycles" toml:"cycles"`

	// Quality score weighting
	Scoring ScoringConfig `koanf:"scoring" toml:"scoring"`

	// DDD pattern detection
	Patterns PatternsConfig `koanf:"patterns" toml:"patterns"`

	// Refactoring suggestion thresholds
	Suggestions SuggestionsConfig `koanf:"suggestions" toml:"suggestions"`
}

// EngineConfig controls how the engine runs.
type EngineConfig struct {
	// Workers bounds the per-class analysis pool. Zero picks a size from
	// the CPU count.
	Workers int `koanf:"workers" toml:"workers"`
}

// CyclesConfig controls dependency cycle detection.
type CyclesConfig struct {
	CrossPackagePairSeverity string `koanf:"cross_package_pair_severity" toml:"cross_package_pair_severity"`
	MaxCycleLength           int    `koanf:"max_cycle_length" toml:"max_cycle_length"`
	MaxCycles                int    `koanf:"max_cycles" toml:"max_cycles"`
}

// ScoringConfig holds the quality score weights.
type ScoringConfig struct {
	Weights score.Weights `koanf:"weights" toml:"weights"`
}

// PatternsConfig controls DDD pattern detection.
type PatternsConfig struct {
	DetectionThreshold float64 `koanf:"detection_threshold" toml:"detection_threshold"`
}

// SuggestionsConfig holds the suggestion rule thresholds.
type SuggestionsConfig struct {
	LCOM             int `koanf:"lcom" toml:"lcom"`
	MethodComplexity int `koanf:"method_complexity" toml:"method_complexity"`
	ComplexMethods   int `koanf:"complex_methods" toml:"complex_methods"`
	CBO              int `koanf:"cbo" toml:"cbo"`
	RFC              int `koanf:"rfc" toml:"rfc"`
	DIT              int `koanf:"dit" toml:"dit"`
}

// Thresholds converts the section to the suggestion generator's
// threshold set.
func (s SuggestionsConfig) Thresholds() suggest.Thresholds {
	return suggest.Thresholds{
		LCOM:             s.LCOM,
		MethodComplexity: s.MethodComplexity,
		ComplexMethods:   s.ComplexMethods,
		CBO:              s.CBO,
		RFC:              s.RFC,
		DIT:              s.DIT,
	}
}

// DefaultConfig returns a config with the analyzer defaults.
func DefaultConfig() *Config {
	st := suggest.DefaultThresholds()
	return &Config{
		Engine: EngineConfig{
			Workers: 0,
		},
		Cycles: CyclesConfig{
			CrossPackagePairSeverity: cycles.SeverityMedium.String(),
			MaxCycleLength:           cycles.DefaultMaxCycleLength,
			MaxCycles:                cycles.DefaultMaxCycles,
		},
		Scoring: ScoringConfig{
			Weights: score.DefaultWeights(),
		},
		Patterns: PatternsConfig{
			DetectionThreshold: ddd.DefaultDetectionThreshold,
		},
		Suggestions: SuggestionsConfig{
			LCOM:             st.LCOM,
			MethodComplexity: st.MethodComplexity,
			ComplexMethods:   st.ComplexMethods,
			CBO:              st.CBO,
			RFC:              st.RFC,
			DIT:              st.DIT,
		},
	}
}

// Load loads configuration from a file, layered over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := configSchema.Validate(k.Raw()); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns
// the defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"augur.toml",
		"augur.yaml",
		"augur.yml",
		"augur.json",
		".augur.toml",
		".augur.yaml",
		".augur.yml",
		".augur.json",
	}
	searchDirs := []string{".", ".augur"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}

// Validate checks the constraints the schema cannot express.
func (c *Config) Validate() error {
	if _, ok := cycles.ParseSeverity(c.Cycles.CrossPackagePairSeverity); !ok {
		return fmt.Errorf("cycles.cross_package_pair_severity: unknown severity %q", c.Cycles.CrossPackagePairSeverity)
	}
	if sum := c.Scoring.Weights.Sum(); math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("scoring.weights: weights sum to %.3f, want 1.0", sum)
	}
	return nil
}

// DefaultTOML renders the default configuration as a commented TOML
// document, ready to be written as a starter config file.
func DefaultTOML() (string, error) {
	content, err := gotoml.Marshal(*DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("marshal default config: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# Augur analysis engine configuration\n")
	buf.WriteString("# Documentation: https://github.com/augurlabs/augur\n\n")
	buf.Write(content)
	return buf.String(), nil
}
