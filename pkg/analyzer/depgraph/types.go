package depgraph

import "github.com/augurlabs/augur/pkg/facts"

// DependencyType classifies how one class depends on another.
type DependencyType string

const (
	DependencyInheritance DependencyType = "inheritance"
	DependencyComposition DependencyType = "composition"
	DependencyUsage       DependencyType = "usage"
)

// String returns the string representation.
func (d DependencyType) String() string {
	return string(d)
}

// Strength returns the fixed edge weight for the dependency type.
// Inheritance binds tighter than composition, which binds tighter than
// plain usage. Strength is never set independently of the type.
func (d DependencyType) Strength() int {
	switch d {
	case DependencyInheritance:
		return 3
	case DependencyComposition:
		return 2
	case DependencyUsage:
		return 1
	default:
		return 0
	}
}

// Node is one analyzed class in the dependency graph. Exactly one node
// exists per input fact; external types never get nodes.
type Node struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	File     string         `json:"file,omitempty"`
	Package  string         `json:"package,omitempty"`
	Kind     facts.Kind     `json:"kind,omitempty"`
	Language facts.Language `json:"language,omitempty"`

	// Layer is the inferred architecture layer, empty when no rule
	// matched (the layered-architecture analyzer treats empty as
	// unresolved).
	Layer string `json:"layer,omitempty"`
}

// Edge is a typed dependency between two nodes. Strength always equals
// Type.Strength().
type Edge struct {
	From     string         `json:"from"`
	To       string         `json:"to"`
	Type     DependencyType `json:"type"`
	Strength int            `json:"strength"`
}

type edgeKey struct {
	from, to string
	typ      DependencyType
}

// DependencyGraph is the immutable class-dependency structure handed to
// the whole-graph analysis phase. It enforces its own invariants: both
// edge endpoints must be existing nodes, self-edges are skipped, and at
// most one edge exists per (from, to, type) triple.
type DependencyGraph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	nodeIndex map[string]int
	edgeSet   map[edgeKey]struct{}
	outEdges  map[string][]int
	inEdges   map[string][]int
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		Nodes:     make([]Node, 0),
		Edges:     make([]Edge, 0),
		nodeIndex: make(map[string]int),
		edgeSet:   make(map[edgeKey]struct{}),
		outEdges:  make(map[string][]int),
		inEdges:   make(map[string][]int),
	}
}

// AddNode adds a node to the graph. A node with an already-registered ID
// is ignored.
func (g *DependencyGraph) AddNode(node Node) {
	if _, exists := g.nodeIndex[node.ID]; exists {
		return
	}
	g.nodeIndex[node.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, node)
}

// AddEdge adds an edge, deriving its strength from the dependency type.
// Edges to or from unknown nodes, self-edges, and duplicates of an
// existing (from, to, type) edge are silently skipped.
func (g *DependencyGraph) AddEdge(from, to string, typ DependencyType) {
	if from == to {
		return
	}
	if _, ok := g.nodeIndex[from]; !ok {
		return
	}
	if _, ok := g.nodeIndex[to]; !ok {
		return
	}
	key := edgeKey{from: from, to: to, typ: typ}
	if _, dup := g.edgeSet[key]; dup {
		return
	}
	g.edgeSet[key] = struct{}{}

	idx := len(g.Edges)
	g.Edges = append(g.Edges, Edge{From: from, To: to, Type: typ, Strength: typ.Strength()})
	g.outEdges[from] = append(g.outEdges[from], idx)
	g.inEdges[to] = append(g.inEdges[to], idx)
}

// Node returns the node with the given ID.
func (g *DependencyGraph) Node(id string) (Node, bool) {
	idx, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[idx], true
}

// HasNode reports whether a node with the given ID exists.
func (g *DependencyGraph) HasNode(id string) bool {
	_, ok := g.nodeIndex[id]
	return ok
}

// OutEdges returns the edges leaving the given node, in insertion order.
func (g *DependencyGraph) OutEdges(id string) []Edge {
	return g.edgesAt(g.outEdges[id])
}

// InEdges returns the edges arriving at the given node, in insertion order.
func (g *DependencyGraph) InEdges(id string) []Edge {
	return g.edgesAt(g.inEdges[id])
}

func (g *DependencyGraph) edgesAt(indexes []int) []Edge {
	if len(indexes) == 0 {
		return nil
	}
	edges := make([]Edge, len(indexes))
	for i, idx := range indexes {
		edges[i] = g.Edges[idx]
	}
	return edges
}

// OutNeighbors returns the distinct targets of edges leaving the node,
// in first-seen order.
func (g *DependencyGraph) OutNeighbors(id string) []string {
	return distinctEndpoints(g.edgesAt(g.outEdges[id]), false)
}

// InNeighbors returns the distinct sources of edges arriving at the
// node, in first-seen order.
func (g *DependencyGraph) InNeighbors(id string) []string {
	return distinctEndpoints(g.edgesAt(g.inEdges[id]), true)
}

func distinctEndpoints(edges []Edge, useFrom bool) []string {
	if len(edges) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(edges))
	var out []string
	for _, e := range edges {
		end := e.To
		if useFrom {
			end = e.From
		}
		if _, ok := seen[end]; ok {
			continue
		}
		seen[end] = struct{}{}
		out = append(out, end)
	}
	return out
}

// InheritanceParents returns the distinct inheritance targets of the
// node (resolved supertype and interfaces).
func (g *DependencyGraph) InheritanceParents(id string) []string {
	var parents []string
	seen := make(map[string]struct{})
	for _, e := range g.edgesAt(g.outEdges[id]) {
		if e.Type != DependencyInheritance {
			continue
		}
		if _, ok := seen[e.To]; ok {
			continue
		}
		seen[e.To] = struct{}{}
		parents = append(parents, e.To)
	}
	return parents
}

// InheritanceChildren returns the distinct nodes that inherit from the
// given node.
func (g *DependencyGraph) InheritanceChildren(id string) []string {
	var children []string
	seen := make(map[string]struct{})
	for _, e := range g.edgesAt(g.inEdges[id]) {
		if e.Type != DependencyInheritance {
			continue
		}
		if _, ok := seen[e.From]; ok {
			continue
		}
		seen[e.From] = struct{}{}
		children = append(children, e.From)
	}
	return children
}

// Density returns the ratio of edges to possible directed edges.
func (g *DependencyGraph) Density() float64 {
	n := len(g.Nodes)
	if n < 2 {
		return 0
	}
	return float64(len(g.Edges)) / float64(n*(n-1))
}

// AvgDegree returns the average out-degree across nodes.
func (g *DependencyGraph) AvgDegree() float64 {
	if len(g.Nodes) == 0 {
		return 0
	}
	return float64(len(g.Edges)) / float64(len(g.Nodes))
}
