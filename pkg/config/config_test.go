package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, 0, cfg.Engine.Workers)
	assert.Equal(t, "medium", cfg.Cycles.CrossPackagePairSeverity)
	assert.Equal(t, 12, cfg.Cycles.MaxCycleLength)
	assert.Equal(t, 256, cfg.Cycles.MaxCycles)
	assert.InDelta(t, 1.0, cfg.Scoring.Weights.Sum(), 1e-9)
	assert.Equal(t, 0.5, cfg.Patterns.DetectionThreshold)
	assert.Equal(t, 5, cfg.Suggestions.LCOM)
	assert.Equal(t, 7, cfg.Suggestions.MethodComplexity)
	assert.NoError(t, cfg.Validate())
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "augur.toml", `
[engine]
workers = 8

[cycles]
cross_package_pair_severity = "low"
max_cycles = 64

[scoring.weights]
cohesion = 0.40
complexity = 0.30
coupling = 0.20
inheritance = 0.05
architecture = 0.05

[suggestions]
lcom = 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Engine.Workers)
	assert.Equal(t, "low", cfg.Cycles.CrossPackagePairSeverity)
	assert.Equal(t, 64, cfg.Cycles.MaxCycles)
	// Unset keys keep their defaults.
	assert.Equal(t, 12, cfg.Cycles.MaxCycleLength)
	assert.Equal(t, 0.40, cfg.Scoring.Weights.Cohesion)
	assert.InDelta(t, 1.0, cfg.Scoring.Weights.Sum(), 1e-9)
	assert.Equal(t, 3, cfg.Suggestions.LCOM)
	assert.Equal(t, 7, cfg.Suggestions.MethodComplexity)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "augur.yaml", `
engine:
  workers: 4

cycles:
  max_cycles: 32
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.Equal(t, 32, cfg.Cycles.MaxCycles)
	assert.Equal(t, "medium", cfg.Cycles.CrossPackagePairSeverity)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "augur.json", `{
  "patterns": { "detection_threshold": 0.8 },
  "suggestions": { "lcom": 3, "dit": 6 }
}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.8, cfg.Patterns.DetectionThreshold)
	assert.Equal(t, 3, cfg.Suggestions.LCOM)
	assert.Equal(t, 6, cfg.Suggestions.DIT)
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/augur.toml")
	assert.Error(t, err)
}

func TestLoadInvalidSyntax(t *testing.T) {
	path := writeConfig(t, "augur.toml", `[engine
not toml`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "augur.toml", `
[cylces]
max_cycles = 64
`)

	_, err := Load(path)
	require.Error(t, err, "a misspelled section must not be silently ignored")
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadRejectsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"cycle length below two", "[cycles]\nmax_cycle_length = 1\n"},
		{"negative workers", "[engine]\nworkers = -2\n"},
		{"threshold above one", "[patterns]\ndetection_threshold = 1.5\n"},
		{"unknown severity", "[cycles]\ncross_package_pair_severity = \"catastrophic\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "augur.toml", tt.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsUnbalancedWeights(t *testing.T) {
	// Overriding a single weight throws the sum off; weights have to be
	// rebalanced together.
	path := writeConfig(t, "augur.toml", `
[scoring.weights]
cohesion = 0.5
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights")
}

func TestLoadOrDefault(t *testing.T) {
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldWd)

	require.NoError(t, os.Chdir(t.TempDir()))

	cfg := LoadOrDefault()
	require.NotNil(t, cfg)
	assert.Equal(t, 12, cfg.Cycles.MaxCycleLength)
}

func TestLoadOrDefaultWithConfigFile(t *testing.T) {
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldWd)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "augur.toml"), []byte("[engine]\nworkers = 6\n"), 0o644))
	require.NoError(t, os.Chdir(dir))

	cfg := LoadOrDefault()
	assert.Equal(t, 6, cfg.Engine.Workers)
}

func TestDefaultTOMLRoundTrips(t *testing.T) {
	content, err := DefaultTOML()
	require.NoError(t, err)
	assert.Contains(t, content, "[cycles]")
	assert.Contains(t, content, "cross_package_pair_severity")

	path := writeConfig(t, "augur.toml", content)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
