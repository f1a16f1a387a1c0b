// Package layers assigns classes to architectural layers and checks the
// dependency graph against the layering rules. Assignment is rule based:
// package segments are matched against layer keywords first and class
// name suffixes second, so a class in an unambiguous package never
// changes layer because of its name. The package also classifies the
// overall architecture pattern and reports every dependency that crosses
// layers in a forbidden direction.
package layers

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/augurlabs/augur/pkg/analyzer/depgraph"
)

// Analyzer infers layers and derives the layered view of a dependency
// graph. The zero value is not usable; call New.
type Analyzer struct {
	rules *ruleTable
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// New creates a layer analyzer backed by the embedded rule table.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{rules: defaultRules}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Infer assigns a layer to a class. Package rules win over class rules:
// each dot-separated package segment is compared prefix-wise against the
// layer keywords in rule order, and only when no segment matches is the
// class name checked against the suffix rules. Classes matching nothing
// stay unknown.
func (a *Analyzer) Infer(packageName, className string) LayerType {
	if packageName != "" {
		segments := strings.Split(strings.ToLower(packageName), ".")
		for _, rule := range a.rules.packageRules {
			for _, keyword := range rule.keywords {
				for _, segment := range segments {
					if strings.HasPrefix(segment, keyword) {
						return rule.layer
					}
				}
			}
		}
	}
	for _, rule := range a.rules.classRules {
		for _, suffix := range rule.suffixes {
			if strings.HasSuffix(className, suffix) {
				return rule.layer
			}
		}
	}
	return LayerUnknown
}

// InferLayer adapts Infer to the resolver signature the dependency graph
// builder accepts, so nodes carry their layer from the moment they are
// created.
func (a *Analyzer) InferLayer(packageName, className string) (string, bool) {
	layer := a.Infer(packageName, className)
	if layer == LayerUnknown {
		return "", false
	}
	return string(layer), true
}

// validTargets encodes the allowed reach of each layer beyond itself.
// The domain sits at the centre and depends on nothing outside itself.
var validTargets = map[LayerType]map[LayerType]bool{
	LayerPresentation:   {LayerApplication: true, LayerDomain: true},
	LayerApplication:    {LayerDomain: true, LayerData: true},
	LayerData:           {LayerDomain: true},
	LayerInfrastructure: {LayerDomain: true},
	LayerDomain:         {},
}

// IsValidLayerDependency reports whether a dependency from one layer to
// another respects the layering rules. Dependencies within a layer are
// always allowed, and edges touching unclassified code are never
// flagged.
func IsValidLayerDependency(from, to LayerType) bool {
	if from == to || from == LayerUnknown || to == LayerUnknown {
		return true
	}
	return validTargets[from][to]
}

// DeterminePattern classifies the architecture from the layers present
// and the aggregated cross-layer dependencies. Fewer than two classified
// layers is unknown rather than a guess, and layers with no cross-layer
// edges between them fall back to plain layered.
func DeterminePattern(layers []Layer, deps []LayerDependency) ArchitecturePattern {
	present := make(map[LayerType]bool, len(layers))
	for _, l := range layers {
		if l.ClassCount > 0 {
			present[l.Type] = true
		}
	}
	if len(present) < 2 {
		return PatternUnknown
	}
	if len(deps) == 0 {
		return PatternLayered
	}

	allInward := true
	allValid := true
	allTargetDomain := true
	for _, dep := range deps {
		if dep.To.Level() <= dep.From.Level() {
			allInward = false
		}
		if !dep.IsValid {
			allValid = false
		}
		if dep.To != LayerDomain {
			allTargetDomain = false
		}
	}

	switch {
	case present[LayerDomain] && present[LayerApplication] && present[LayerInfrastructure] && allInward && allValid:
		return PatternClean
	case present[LayerDomain] && allTargetDomain:
		return PatternHexagonal
	case present[LayerDomain] && present[LayerApplication] && allInward:
		return PatternOnion
	default:
		return PatternLayered
	}
}

// AnalyzeGraph derives the layered view of a dependency graph: layer
// membership, aggregated cross-layer dependencies, the architecture
// pattern, and all violations. cyclePaths carries the node lists of
// previously detected dependency cycles so each participant can be
// reported as a violation.
func (a *Analyzer) AnalyzeGraph(g *depgraph.DependencyGraph, cyclePaths [][]string) *Analysis {
	analysis := &Analysis{
		GeneratedAt:  time.Now().UTC(),
		Pattern:      PatternUnknown,
		Layers:       make([]Layer, 0),
		Dependencies: make([]LayerDependency, 0),
		Violations:   make([]Violation, 0),
	}
	if g == nil || len(g.Nodes) == 0 {
		analysis.CalculateSummary()
		return analysis
	}

	membership := make(map[LayerType][]string)
	unclassified := 0
	for _, node := range g.Nodes {
		layer := a.nodeLayer(g, node.ID)
		if layer == LayerUnknown {
			unclassified++
			continue
		}
		membership[layer] = append(membership[layer], node.ID)
	}
	for layer, classes := range membership {
		analysis.Layers = append(analysis.Layers, Layer{
			Type:       layer,
			Level:      layer.Level(),
			Classes:    classes,
			ClassCount: len(classes),
		})
	}
	analysis.SortLayers()

	counts := make(map[[2]LayerType]int)
	for _, edge := range g.Edges {
		fromLayer := a.nodeLayer(g, edge.From)
		toLayer := a.nodeLayer(g, edge.To)
		if fromLayer == LayerUnknown || toLayer == LayerUnknown || fromLayer == toLayer {
			continue
		}
		counts[[2]LayerType{fromLayer, toLayer}]++
	}
	for pair, count := range counts {
		analysis.Dependencies = append(analysis.Dependencies, LayerDependency{
			From:    pair[0],
			To:      pair[1],
			Count:   count,
			IsValid: IsValidLayerDependency(pair[0], pair[1]),
		})
	}
	sort.Slice(analysis.Dependencies, func(i, j int) bool {
		di, dj := analysis.Dependencies[i], analysis.Dependencies[j]
		if di.From != dj.From {
			if di.From.Level() != dj.From.Level() {
				return di.From.Level() < dj.From.Level()
			}
			return di.From < dj.From
		}
		if di.To.Level() != dj.To.Level() {
			return di.To.Level() < dj.To.Level()
		}
		return di.To < dj.To
	})

	analysis.Pattern = DeterminePattern(analysis.Layers, analysis.Dependencies)
	analysis.Violations = a.DetectViolations(g, cyclePaths)
	analysis.Summary.UnclassifiedClasses = unclassified
	analysis.CalculateSummary()
	return analysis
}

// DetectViolations reports one violation per class dependency that
// crosses layers in a forbidden direction and one per class
// participating in a dependency cycle. An outward edge from the domain
// to a concrete class is reported as an inversion; every other
// forbidden edge, including domain edges to interfaces and abstract
// classes, is a plain layer violation.
func (a *Analyzer) DetectViolations(g *depgraph.DependencyGraph, cyclePaths [][]string) []Violation {
	violations := make([]Violation, 0)
	if g != nil {
		for _, edge := range g.Edges {
			fromLayer := a.nodeLayer(g, edge.From)
			toLayer := a.nodeLayer(g, edge.To)
			if IsValidLayerDependency(fromLayer, toLayer) {
				continue
			}
			vtype := ViolationLayer
			if fromLayer == LayerDomain && isConcrete(g, edge.To) {
				vtype = ViolationInversion
			}
			violations = append(violations, Violation{
				Type:      vtype,
				From:      edge.From,
				To:        edge.To,
				FromLayer: fromLayer,
				ToLayer:   toLayer,
				Description: fmt.Sprintf("%s (%s) must not depend on %s (%s)",
					edge.From, fromLayer, edge.To, toLayer),
			})
		}
	}

	seen := make(map[string]bool)
	for _, path := range cyclePaths {
		for _, id := range path {
			if seen[id] {
				continue
			}
			seen[id] = true
			violations = append(violations, Violation{
				Type:        ViolationCircular,
				From:        id,
				Description: fmt.Sprintf("%s participates in a dependency cycle", id),
			})
		}
	}
	return violations
}

// nodeLayer resolves the layer of a graph node, trusting a layer already
// recorded on the node before re-running inference.
func (a *Analyzer) nodeLayer(g *depgraph.DependencyGraph, id string) LayerType {
	node, ok := g.Node(id)
	if !ok {
		return LayerUnknown
	}
	if layer, ok := ParseLayerType(node.Layer); ok {
		return layer
	}
	return a.Infer(node.Package, node.Name)
}

// isConcrete reports whether a node is neither an interface nor an
// abstract class. A domain edge to a contract is a misplaced port, not
// an inversion.
func isConcrete(g *depgraph.DependencyGraph, id string) bool {
	node, ok := g.Node(id)
	if !ok {
		return true
	}
	return !node.Kind.IsContract()
}
