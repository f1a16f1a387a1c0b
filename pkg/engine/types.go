package engine

import (
	"time"

	"github.com/augurlabs/augur/pkg/analyzer/cycles"
	"github.com/augurlabs/augur/pkg/analyzer/ddd"
	"github.com/augurlabs/augur/pkg/analyzer/layers"
	"github.com/augurlabs/augur/pkg/analyzer/metrics"
	"github.com/augurlabs/augur/pkg/analyzer/score"
	"github.com/augurlabs/augur/pkg/analyzer/suggest"
)

// ClassAnalysis bundles every per-class result the pipeline produces.
type ClassAnalysis struct {
	Metrics     metrics.ClassMetrics `json:"metrics"`
	Score       score.QualityScore   `json:"score"`
	Risk        score.RiskAssessment `json:"risk"`
	Suggestions []suggest.Suggestion `json:"suggestions,omitempty"`
}

// GraphSummary captures the shape of the dependency graph.
type GraphSummary struct {
	Nodes     int     `json:"nodes"`
	Edges     int     `json:"edges"`
	Density   float64 `json:"density"`
	AvgDegree float64 `json:"avg_degree"`

	// SCCs counts strongly connected groups of two or more classes.
	SCCs int `json:"sccs"`
}

// PackageMetrics aggregates coupling at the package level.
type PackageMetrics struct {
	Name    string `json:"name"`
	Classes int    `json:"classes"`

	// Afferent coupling - outside classes that depend on this package
	CA int `json:"ca"`

	// Efferent coupling - classes in this package that depend on outsiders
	CE int `json:"ce"`

	Instability float64 `json:"instability"`

	// Fraction of the package's edges that stay inside it
	Cohesion float64 `json:"cohesion"`

	AvgWMC  float64 `json:"avg_wmc"`
	AvgLCOM float64 `json:"avg_lcom"`
}

// CalculateInstability calculates Martin's Instability metric.
// I = CE / (CA + CE)
// Returns 0 for stable packages (all incoming), 1 for unstable (all outgoing)
func (p *PackageMetrics) CalculateInstability() float64 {
	total := p.CA + p.CE
	if total == 0 {
		return 0
	}
	p.Instability = float64(p.CE) / float64(total)
	return p.Instability
}

// Report is the complete result of a single engine run.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`

	// FactsDigest fingerprints the input facts. Identical inputs produce
	// identical digests regardless of declaration order.
	FactsDigest string `json:"facts_digest"`

	// Classes holds per-class metrics, scores, risk, and suggestions in
	// input order.
	Classes []ClassAnalysis `json:"classes"`
	Summary metrics.Summary `json:"summary"`

	Graph    GraphSummary              `json:"graph"`
	Packages []PackageMetrics          `json:"packages,omitempty"`
	Coupling map[string]map[string]int `json:"coupling,omitempty"`

	Cycles   *cycles.Analysis `json:"cycles"`
	Patterns *ddd.Analysis    `json:"patterns"`
	Layers   *layers.Analysis `json:"layers"`

	Score         score.QualityScore            `json:"score"`
	Distributions map[string]score.Distribution `json:"distributions,omitempty"`

	// Risks lists every class ordered worst-first by priority.
	Risks []score.RiskAssessment `json:"risks,omitempty"`
}

// Class returns the analysis row for the given class id.
func (r *Report) Class(id string) (ClassAnalysis, bool) {
	for _, c := range r.Classes {
		if c.Metrics.ID == id {
			return c, true
		}
	}
	return ClassAnalysis{}, false
}

// Package returns the package row for the given package name.
func (r *Report) Package(name string) (PackageMetrics, bool) {
	for _, p := range r.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return PackageMetrics{}, false
}
