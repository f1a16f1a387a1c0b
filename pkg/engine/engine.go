// Package engine wires the individual analyzers into one pipeline and
// assembles their results into a single report.
//
// A run has two phases. The fact-driven analyzers (CK metrics, DDD
// pattern detection) and the dependency graph build are independent of
// each other and run concurrently. Everything that consumes the graph
// runs after the barrier in dependency order: cycle detection, the
// graph-dependent metrics, layer analysis, and finally scoring, which
// needs both the metrics and the layer violations.
package engine

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/zeebo/blake3"

	"github.com/augurlabs/augur/pkg/analyzer/cycles"
	"github.com/augurlabs/augur/pkg/analyzer/ddd"
	"github.com/augurlabs/augur/pkg/analyzer/depgraph"
	"github.com/augurlabs/augur/pkg/analyzer/layers"
	"github.com/augurlabs/augur/pkg/analyzer/metrics"
	"github.com/augurlabs/augur/pkg/analyzer/score"
	"github.com/augurlabs/augur/pkg/analyzer/suggest"
	"github.com/augurlabs/augur/pkg/config"
	"github.com/augurlabs/augur/pkg/facts"
)

// Engine runs the full analysis pipeline over a set of class facts.
type Engine struct {
	cfg     *config.Config
	workers int
}

// Option configures the Engine.
type Option func(*Engine)

// WithConfig replaces the default configuration.
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) {
		if cfg != nil {
			e.cfg = cfg
		}
	}
}

// WithWorkers overrides the configured worker count for per-class work.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// New creates an Engine. Without options it runs with the defaults from
// config.DefaultConfig.
func New(opts ...Option) *Engine {
	e := &Engine{cfg: config.DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers <= 0 {
		e.workers = e.cfg.Engine.Workers
	}
	return e
}

// Analyze runs every analyzer over the given facts and assembles the
// report. The per-class rows keep the input order.
func (e *Engine) Analyze(ctx context.Context, classes []facts.ClassFact) (*Report, error) {
	// Create sub-analyzers
	metricsAnalyzer := metrics.New(metrics.WithWorkers(e.workers))
	defer metricsAnalyzer.Close()

	patternDetector := ddd.New(ddd.WithDetectionThreshold(e.cfg.Patterns.DetectionThreshold))
	defer patternDetector.Close()

	layerAnalyzer := layers.New()
	builder := depgraph.New(depgraph.WithLayerResolver(layerAnalyzer.InferLayer))

	cycleOpts := []cycles.Option{
		cycles.WithMaxCycleLength(e.cfg.Cycles.MaxCycleLength),
		cycles.WithMaxCycles(e.cfg.Cycles.MaxCycles),
	}
	if severity, ok := cycles.ParseSeverity(e.cfg.Cycles.CrossPackagePairSeverity); ok {
		cycleOpts = append(cycleOpts, cycles.WithCrossPackagePairSeverity(severity))
	}
	cycleDetector := cycles.New(cycleOpts...)

	scorer := score.New(score.WithWeights(e.cfg.Scoring.Weights))
	suggester := suggest.New(suggest.WithThresholds(e.cfg.Suggestions.Thresholds()))

	report := &Report{
		GeneratedAt: time.Now().UTC(),
		FactsDigest: Digest(classes),
	}

	// Run the fact-driven analyzers and the graph build in parallel.
	var (
		metricsResult *metrics.Analysis
		metricsErr    error
		patternResult *ddd.Analysis
		patternErr    error
		g             *depgraph.DependencyGraph
	)

	wg := conc.NewWaitGroup()

	wg.Go(func() {
		metricsResult, metricsErr = metricsAnalyzer.Analyze(ctx, classes)
	})
	wg.Go(func() {
		patternResult, patternErr = patternDetector.Analyze(ctx, classes)
	})
	wg.Go(func() {
		g = builder.Build(classes)
	})

	wg.Wait()

	if metricsErr != nil {
		return nil, fmt.Errorf("metrics: %w", metricsErr)
	}
	if patternErr != nil {
		return nil, fmt.Errorf("patterns: %w", patternErr)
	}

	// Everything below needs the graph (must be after the barrier).
	cycleResult := cycleDetector.AnalyzeGraph(g)
	metrics.ApplyGraph(metricsResult, g)

	cyclePaths := make([][]string, 0, len(cycleResult.Cycles))
	for _, c := range cycleResult.Cycles {
		cyclePaths = append(cyclePaths, c.Nodes)
	}
	layerResult := layerAnalyzer.AnalyzeGraph(g, cyclePaths)

	// Per-class violation counts feed the architecture score component.
	violations := make(map[string]int)
	for _, v := range layerResult.Violations {
		violations[v.From]++
	}

	report.Classes = make([]ClassAnalysis, 0, len(metricsResult.Classes))
	classScores := make([]score.QualityScore, 0, len(metricsResult.Classes))
	risks := make([]score.RiskAssessment, 0, len(metricsResult.Classes))

	for _, m := range metricsResult.Classes {
		classScore := scorer.ScoreClass(m, violations[m.ID])
		risk := scorer.AssessRisk(m, classScore)
		report.Classes = append(report.Classes, ClassAnalysis{
			Metrics:     m,
			Score:       classScore,
			Risk:        risk,
			Suggestions: suggester.Generate(m),
		})
		classScores = append(classScores, classScore)
		risks = append(risks, risk)
	}
	score.SortByPriority(risks)

	report.Summary = metricsResult.Summary
	report.Graph = GraphSummary{
		Nodes:     len(g.Nodes),
		Edges:     len(g.Edges),
		Density:   g.Density(),
		AvgDegree: g.AvgDegree(),
		SCCs:      cycleResult.Summary.SCCCount,
	}
	report.Packages = packageMetrics(g, metricsResult.Classes, cycleResult.PackageCohesion)
	report.Coupling = couplingMatrix(g)
	report.Cycles = cycleResult
	report.Patterns = patternResult
	report.Layers = layerResult
	report.Score = scorer.ScoreProject(classScores, len(layerResult.Violations))
	report.Distributions = distributions(metricsResult.Classes)
	report.Risks = risks

	return report, nil
}

// Digest fingerprints class facts. The facts are hashed in qualified
// name order, so two runs over the same classes agree no matter how the
// caller ordered them.
func Digest(classes []facts.ClassFact) string {
	sorted := make([]facts.ClassFact, len(classes))
	copy(sorted, classes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].QualifiedName() < sorted[j].QualifiedName()
	})

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range sorted {
		// ClassFact is plain data; encoding it cannot fail.
		_ = enc.Encode(sorted[i])
	}

	hash := blake3.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:])
}

// packageMetrics aggregates class-level results up to packages. CA and
// CE count distinct classes per Martin's definitions: CA is the number
// of outside classes depending on the package, CE the number of inside
// classes depending outward.
func packageMetrics(g *depgraph.DependencyGraph, classes []metrics.ClassMetrics, cohesion map[string]float64) []PackageMetrics {
	classCount := make(map[string]int)
	for _, n := range g.Nodes {
		classCount[n.Package]++
	}
	if len(classCount) == 0 {
		return nil
	}

	afferent := make(map[string]map[string]bool)
	efferent := make(map[string]map[string]bool)
	for _, edge := range g.Edges {
		from, okFrom := g.Node(edge.From)
		to, okTo := g.Node(edge.To)
		if !okFrom || !okTo || from.Package == to.Package {
			continue
		}
		if efferent[from.Package] == nil {
			efferent[from.Package] = make(map[string]bool)
		}
		efferent[from.Package][edge.From] = true
		if afferent[to.Package] == nil {
			afferent[to.Package] = make(map[string]bool)
		}
		afferent[to.Package][edge.From] = true
	}

	wmcTotal := make(map[string]int)
	lcomTotal := make(map[string]int)
	measured := make(map[string]int)
	for _, m := range classes {
		wmcTotal[m.Package] += m.WMC
		lcomTotal[m.Package] += m.LCOM
		measured[m.Package]++
	}

	result := make([]PackageMetrics, 0, len(classCount))
	for name, count := range classCount {
		pm := PackageMetrics{
			Name:     name,
			Classes:  count,
			CA:       len(afferent[name]),
			CE:       len(efferent[name]),
			Cohesion: 1.0,
		}
		pm.CalculateInstability()
		if c, ok := cohesion[name]; ok {
			pm.Cohesion = c
		}
		if n := measured[name]; n > 0 {
			pm.AvgWMC = float64(wmcTotal[name]) / float64(n)
			pm.AvgLCOM = float64(lcomTotal[name]) / float64(n)
		}
		result = append(result, pm)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// couplingMatrix sums edge strengths between class pairs. A pair linked
// by several dependency kinds gets their combined strength. The outer
// key is the depending class, the inner key the dependency.
func couplingMatrix(g *depgraph.DependencyGraph) map[string]map[string]int {
	matrix := make(map[string]map[string]int)
	for _, edge := range g.Edges {
		if matrix[edge.From] == nil {
			matrix[edge.From] = make(map[string]int)
		}
		matrix[edge.From][edge.To] += edge.Strength
	}
	if len(matrix) == 0 {
		return nil
	}
	return matrix
}

// distributions summarizes how the headline metrics spread across the
// analyzed classes.
func distributions(classes []metrics.ClassMetrics) map[string]score.Distribution {
	if len(classes) == 0 {
		return nil
	}

	wmc := make([]float64, 0, len(classes))
	cbo := make([]float64, 0, len(classes))
	rfc := make([]float64, 0, len(classes))
	lcom := make([]float64, 0, len(classes))
	for _, m := range classes {
		wmc = append(wmc, float64(m.WMC))
		cbo = append(cbo, float64(m.CBO))
		rfc = append(rfc, float64(m.RFC))
		lcom = append(lcom, float64(m.LCOM))
	}

	return map[string]score.Distribution{
		"wmc":  score.Distribute(wmc),
		"cbo":  score.Distribute(cbo),
		"rfc":  score.Distribute(rfc),
		"lcom": score.Distribute(lcom),
	}
}
