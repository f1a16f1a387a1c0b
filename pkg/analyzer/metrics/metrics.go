// Package metrics computes the CK object-oriented metric suite from
// class facts. WMC, RFC, and LCOM come straight from the facts; CBO,
// CA, CE, DIT, and NOC need the dependency graph.
//
// Per-class metrics are independent of each other and computed in
// parallel. The coupling and inheritance metrics depend on the whole
// dependency graph and are filled in by ApplyGraph in a second phase.
package metrics

import (
	"context"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/augurlabs/augur/internal/factproc"
	"github.com/augurlabs/augur/pkg/analyzer"
	"github.com/augurlabs/augur/pkg/analyzer/depgraph"
	"github.com/augurlabs/augur/pkg/facts"
)

// decisionTokens maps normalized control-flow tokens to decision points.
// Each occurrence adds one to a method's cyclomatic complexity. Tokens
// cover branch, loop, exception, and short-circuit constructs across the
// supported source languages; unknown tokens are ignored.
var decisionTokens = map[string]bool{
	"if":          true,
	"elif":        true,
	"elsif":       true,
	"else_if":     true,
	"case":        true,
	"default":     true,
	"when":        true,
	"when_entry":  true,
	"for":         true,
	"foreach":     true,
	"while":       true,
	"do_while":    true,
	"loop":        true,
	"catch":       true,
	"except":      true,
	"rescue":      true,
	"&&":          true,
	"||":          true,
	"and":         true,
	"or":          true,
	"??":          true,
	"?:":          true,
	"ternary":     true,
	"conditional": true,
}

// Analyzer computes CK metrics for class facts.
type Analyzer struct {
	workers int
}

// Compile-time check that Analyzer implements analyzer.FactAnalyzer[*Analysis]
var _ analyzer.FactAnalyzer[*Analysis] = (*Analyzer)(nil)

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithWorkers sets the number of parallel workers.
// Values below 1 keep the default of 2x NumCPU.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// New creates a new CK metrics analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes per-class metrics for all classes. Results keep the
// input order. The graph-dependent metrics (CBO, CA, CE, DIT, NOC) are
// zero until ApplyGraph runs.
func (a *Analyzer) Analyze(ctx context.Context, classes []facts.ClassFact) (*Analysis, error) {
	analysis := &Analysis{
		GeneratedAt: time.Now().UTC(),
		Classes:     make([]ClassMetrics, 0, len(classes)),
	}

	// Get progress tracker from context
	tracker := analyzer.TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Add(len(classes))
	}

	results, errs := factproc.MapWithContextN(ctx, classes, a.workers, func(fact facts.ClassFact) (ClassMetrics, error) {
		if tracker != nil {
			tracker.Tick(fact.QualifiedName())
		}
		return analyzeClass(fact), nil
	}, nil)
	if errs != nil && errs.HasErrors() {
		return nil, errs
	}

	analysis.Classes = append(analysis.Classes, results...)
	analysis.CalculateSummary()
	return analysis, nil
}

// Close releases analyzer resources.
func (a *Analyzer) Close() {}

// analyzeClass computes the graph-independent metrics for one class.
// Total: malformed or empty facts yield zero-valued metrics, not errors.
func analyzeClass(fact facts.ClassFact) ClassMetrics {
	m := ClassMetrics{
		ID:            fact.QualifiedName(),
		ClassName:     fact.Name,
		Package:       fact.Package,
		File:          fact.File,
		Language:      string(fact.Language),
		Kind:          string(fact.Kind),
		MethodCount:   len(fact.Methods),
		PropertyCount: len(fact.Properties),
	}

	if len(fact.Methods) > 0 {
		m.Complexities = make([]MethodComplexity, 0, len(fact.Methods))
		for _, method := range fact.Methods {
			c := methodComplexity(method)
			m.Complexities = append(m.Complexities, MethodComplexity{Name: method.Name, Complexity: c})
			m.WMC += c
		}
	}
	m.CyclomaticComplexity = m.WMC

	m.LCOM, m.UnreadProperties = calculateLcom(fact)
	m.RFC = calculateRfc(fact)
	return m
}

// methodComplexity computes cyclomatic complexity for one method: one
// base path plus one per decision point. Front-ends that already carry
// a complexity value win over token counting.
func methodComplexity(m facts.Method) int {
	if m.Complexity > 0 {
		return m.Complexity
	}
	c := 1
	for _, token := range m.ControlFlow {
		if decisionTokens[strings.ToLower(token)] {
			c++
		}
	}
	return c
}

// calculateLcom counts method pairs that share no property access and
// subtracts the pairs that do, floored at zero. A pair of methods that
// both touch no properties counts as non-cohesive. Classes with fewer
// than two methods score 0.
//
// Property references are tracked as bitmaps keyed by declaration index;
// the union across methods also yields the properties no method reads.
func calculateLcom(fact facts.ClassFact) (int, []string) {
	propIndex := make(map[string]uint32, len(fact.Properties))
	for i, p := range fact.Properties {
		propIndex[p.Name] = uint32(i)
	}

	refs := make([]*roaring.Bitmap, len(fact.Methods))
	union := roaring.New()
	for i, method := range fact.Methods {
		bm := roaring.New()
		for _, name := range method.References {
			if idx, ok := propIndex[name]; ok {
				bm.Add(idx)
			}
		}
		refs[i] = bm
		union.Or(bm)
	}

	var unread []string
	for i, p := range fact.Properties {
		if !union.Contains(uint32(i)) {
			unread = append(unread, p.Name)
		}
	}

	if len(fact.Methods) < 2 {
		return 0, unread
	}

	cohesive, nonCohesive := 0, 0
	for i := 0; i < len(refs); i++ {
		for j := i + 1; j < len(refs); j++ {
			if refs[i].Intersects(refs[j]) {
				cohesive++
			} else {
				nonCohesive++
			}
		}
	}

	if nonCohesive <= cohesive {
		return 0, unread
	}
	return nonCohesive - cohesive, unread
}

// calculateRfc counts the response set: the class's own methods plus the
// distinct external signatures its methods invoke. Calls whose callee
// name matches an own method are internal and not counted again.
func calculateRfc(fact facts.ClassFact) int {
	own := make(map[string]bool, len(fact.Methods))
	for _, m := range fact.Methods {
		own[m.Name] = true
	}

	external := make(map[string]bool)
	for _, m := range fact.Methods {
		for _, call := range m.Calls {
			if call == "" {
				continue
			}
			if own[calleeName(call)] {
				continue
			}
			external[call] = true
		}
	}
	return len(fact.Methods) + len(external)
}

// calleeName strips receiver and argument syntax from an invoked
// signature: "repository.save(Order)" reduces to "save".
func calleeName(call string) string {
	name := call
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// ApplyGraph fills in the graph-dependent metrics for every class in the
// analysis and refreshes the summary. The graph is only read.
func ApplyGraph(analysis *Analysis, g *depgraph.DependencyGraph) {
	if analysis == nil || g == nil {
		return
	}

	for i := range analysis.Classes {
		m := &analysis.Classes[i]

		out := g.OutNeighbors(m.ID)
		in := g.InNeighbors(m.ID)
		m.CE = len(out)
		m.CA = len(in)

		coupled := make(map[string]bool, len(out)+len(in))
		for _, id := range out {
			coupled[id] = true
		}
		for _, id := range in {
			coupled[id] = true
		}
		m.CBO = len(coupled)

		// Martin's instability: I = CE / (CA + CE). Classes nothing
		// couples to stay at 0.
		if total := m.CA + m.CE; total > 0 {
			m.Instability = float64(m.CE) / float64(total)
		}

		m.DIT = inheritanceDepth(g, m.ID, make(map[string]bool))
		m.NOC = len(g.InheritanceChildren(m.ID))
	}
	analysis.CalculateSummary()
}

// inheritanceDepth walks inheritance edges toward the root, taking the
// longest path when a class has several parents. Roots have depth 0.
// The on-path set guards against inheritance cycles in malformed input.
func inheritanceDepth(g *depgraph.DependencyGraph, id string, onPath map[string]bool) int {
	if onPath[id] {
		return 0
	}
	onPath[id] = true
	defer delete(onPath, id)

	depth := 0
	for _, parent := range g.InheritanceParents(id) {
		if d := inheritanceDepth(g, parent, onPath) + 1; d > depth {
			depth = d
		}
	}
	return depth
}
