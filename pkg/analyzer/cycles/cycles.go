// Package cycles enumerates minimal dependency cycles in a class
// dependency graph and scores package cohesion.
//
// A Tarjan SCC pre-pass narrows the search to strongly connected
// components; a bounded DFS then enumerates the simple cycles within
// each component. Every simple cycle is reported exactly once, rooted
// at its lexicographically smallest node.
package cycles

import (
	"sort"
	"strings"
	"time"

	"github.com/augurlabs/augur/pkg/analyzer/depgraph"
	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// DefaultMaxCycleLength bounds the DFS depth. Cycles longer than this
// are almost always unions of shorter ones already reported.
const DefaultMaxCycleLength = 12

// DefaultMaxCycles bounds the number of enumerated cycles. Dense SCCs
// can hold exponentially many simple cycles.
const DefaultMaxCycles = 256

// Detector enumerates dependency cycles.
type Detector struct {
	crossPackagePairSeverity Severity
	maxCycleLength           int
	maxCycles                int
}

// Option is a functional option for configuring Detector.
type Option func(*Detector)

// WithCrossPackagePairSeverity sets the severity assigned to two-class
// cycles that span packages. Defaults to medium.
func WithCrossPackagePairSeverity(s Severity) Option {
	return func(d *Detector) {
		if s.Weight() > 0 {
			d.crossPackagePairSeverity = s
		}
	}
}

// WithMaxCycleLength sets the maximum cycle length to enumerate.
func WithMaxCycleLength(n int) Option {
	return func(d *Detector) {
		if n >= 2 {
			d.maxCycleLength = n
		}
	}
}

// WithMaxCycles sets the maximum number of cycles to report.
func WithMaxCycles(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.maxCycles = n
		}
	}
}

// New creates a new cycle detector.
func New(opts ...Option) *Detector {
	d := &Detector{
		crossPackagePairSeverity: SeverityMedium,
		maxCycleLength:           DefaultMaxCycleLength,
		maxCycles:                DefaultMaxCycles,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AnalyzeGraph enumerates cycles and package cohesion for the graph.
// Acyclic graphs yield an empty cycle list, never an error.
func (d *Detector) AnalyzeGraph(g *depgraph.DependencyGraph) *Analysis {
	analysis := &Analysis{
		GeneratedAt:     time.Now().UTC(),
		Cycles:          make([]Cycle, 0),
		PackageCohesion: CalculatePackageCohesion(g),
	}
	if g == nil || len(g.Nodes) == 0 {
		analysis.CalculateSummary()
		return analysis
	}

	cycles, sccs, truncated := d.detect(g)
	analysis.Cycles = cycles
	analysis.Summary.SCCCount = sccs
	analysis.Summary.Truncated = truncated
	analysis.SortBySeverity()
	analysis.CalculateSummary()
	return analysis
}

// gonumGraph holds the gonum representation and id mappings.
type gonumGraph struct {
	directed   *simple.DirectedGraph
	idToNodeID map[int64]string
}

// toGonumGraph converts the dependency graph to a gonum directed graph
// with sequential int64 ids. Parallel edges of different dependency
// types collapse; only connectivity matters here.
func toGonumGraph(g *depgraph.DependencyGraph) *gonumGraph {
	gg := &gonumGraph{
		directed:   simple.NewDirectedGraph(),
		idToNodeID: make(map[int64]string, len(g.Nodes)),
	}
	nodeIDToID := make(map[string]int64, len(g.Nodes))

	for i, node := range g.Nodes {
		id := int64(i)
		nodeIDToID[node.ID] = id
		gg.idToNodeID[id] = node.ID
		gg.directed.AddNode(simple.Node(id))
	}

	for _, edge := range g.Edges {
		fromID := nodeIDToID[edge.From]
		toID := nodeIDToID[edge.To]
		if fromID != toID {
			gg.directed.SetEdge(simple.Edge{F: simple.Node(fromID), T: simple.Node(toID)})
		}
	}
	return gg
}

// detect enumerates simple cycles. It also reports the number of
// multi-node strongly connected components and whether the cycle cap
// cut enumeration short.
func (d *Detector) detect(g *depgraph.DependencyGraph) ([]Cycle, int, bool) {
	gg := toGonumGraph(g)
	sccs := topo.TarjanSCC(gg.directed)

	cycles := make([]Cycle, 0)
	seen := make(map[uint64]bool)

	// Count the cyclic groups up front so the figure stays exact even
	// when enumeration is cut short below.
	groups := 0
	for _, scc := range sccs {
		if len(scc) >= 2 {
			groups++
		}
	}

	for _, scc := range sccs {
		// Single-node SCCs cannot carry a cycle (self edges are
		// rejected at graph construction).
		if len(scc) < 2 {
			continue
		}

		members := make(map[string]bool, len(scc))
		ids := make([]string, 0, len(scc))
		for _, n := range scc {
			id := gg.idToNodeID[n.ID()]
			members[id] = true
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, start := range ids {
			if !d.enumerate(g, start, members, seen, &cycles) {
				return cycles, groups, true
			}
		}
	}
	return cycles, groups, false
}

// enumerate walks simple cycles rooted at start. Only nodes that are
// lexicographically >= start are visited, so each cycle is found once,
// from its smallest member. Returns false once MaxCycles is reached.
func (d *Detector) enumerate(g *depgraph.DependencyGraph, start string, members map[string]bool, seen map[uint64]bool, cycles *[]Cycle) bool {
	path := []string{start}
	onPath := map[string]bool{start: true}

	var dfs func(node string) bool
	dfs = func(node string) bool {
		for _, next := range g.OutNeighbors(node) {
			if !members[next] || next < start {
				continue
			}
			if next == start {
				if len(path) < 2 {
					continue
				}
				sig := cycleSignature(path)
				if seen[sig] {
					continue
				}
				seen[sig] = true
				*cycles = append(*cycles, d.classify(g, append([]string(nil), path...)))
				if len(*cycles) >= d.maxCycles {
					return false
				}
				continue
			}
			if onPath[next] || len(path) >= d.maxCycleLength {
				continue
			}
			onPath[next] = true
			path = append(path, next)
			if !dfs(next) {
				return false
			}
			path = path[:len(path)-1]
			delete(onPath, next)
		}
		return true
	}

	return dfs(start)
}

// cycleSignature hashes the canonical node sequence for deduplication.
func cycleSignature(nodes []string) uint64 {
	return xxhash.Sum64String(strings.Join(nodes, "->"))
}

// classify assigns a severity: two-class cycles inside one package are
// low, two-class cycles across packages default to medium, and anything
// longer is high.
func (d *Detector) classify(g *depgraph.DependencyGraph, nodes []string) Cycle {
	crossPackage := false
	first := packageOf(g, nodes[0])
	for _, id := range nodes[1:] {
		if packageOf(g, id) != first {
			crossPackage = true
			break
		}
	}

	severity := SeverityHigh
	if len(nodes) == 2 {
		if crossPackage {
			severity = d.crossPackagePairSeverity
		} else {
			severity = SeverityLow
		}
	}

	return Cycle{
		Nodes:        nodes,
		Length:       len(nodes),
		Severity:     severity,
		CrossPackage: crossPackage,
	}
}

func packageOf(g *depgraph.DependencyGraph, id string) string {
	if n, ok := g.Node(id); ok {
		return n.Package
	}
	return ""
}

// CalculatePackageCohesion computes, for every package in the graph,
// the fraction of edges touching the package that stay inside it.
// Cross-package edges count against both endpoints' packages. Packages
// with no edges at all score a neutral 1.0.
func CalculatePackageCohesion(g *depgraph.DependencyGraph) map[string]float64 {
	cohesion := make(map[string]float64)
	if g == nil {
		return cohesion
	}

	internal := make(map[string]int)
	touching := make(map[string]int)

	for _, e := range g.Edges {
		fromPkg := packageOf(g, e.From)
		toPkg := packageOf(g, e.To)
		if fromPkg == toPkg {
			internal[fromPkg]++
			touching[fromPkg]++
		} else {
			touching[fromPkg]++
			touching[toPkg]++
		}
	}

	for _, n := range g.Nodes {
		if _, done := cohesion[n.Package]; done {
			continue
		}
		if touching[n.Package] == 0 {
			cohesion[n.Package] = 1.0
			continue
		}
		cohesion[n.Package] = float64(internal[n.Package]) / float64(touching[n.Package])
	}
	return cohesion
}
