// Package depgraph builds the typed, weighted class-dependency graph
// that the whole-graph analysis phase works on. Edges are derived from
// the facts, never declared: inheritance from supertype and interface
// references, composition from property types, usage from any other
// resolvable type reference in a method signature or body.
package depgraph

import (
	"strings"

	"github.com/augurlabs/augur/pkg/facts"
)

// LayerResolver maps a package and class name to an architecture layer.
// The second return value reports whether any rule matched. Injected by
// the caller so the graph package stays independent of the layer rule
// table.
type LayerResolver func(packageName, className string) (string, bool)

// Builder constructs dependency graphs from class facts. A single
// builder instance owns the node and edge lists it accumulates; the
// finished graph is treated as immutable by every downstream phase.
type Builder struct {
	layerResolver LayerResolver
}

// Option is a functional option for configuring the Builder.
type Option func(*Builder)

// WithLayerResolver sets the resolver used to annotate nodes with their
// inferred architecture layer. Without one, every node's layer stays
// unresolved.
func WithLayerResolver(r LayerResolver) Option {
	return func(b *Builder) {
		b.layerResolver = r
	}
}

// New creates a new graph builder.
func New(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build constructs the dependency graph for the given facts: one node
// per fact, edges only between analyzed classes. Type references that
// do not resolve against the importing class's import list or its own
// package are dropped silently; a missing edge is preferred over an
// edge to a node that does not exist.
func (b *Builder) Build(classes []facts.ClassFact) *DependencyGraph {
	g := NewDependencyGraph()

	known := make(map[string]struct{}, len(classes))
	for _, class := range classes {
		known[class.QualifiedName()] = struct{}{}
	}

	for _, class := range classes {
		node := Node{
			ID:       class.QualifiedName(),
			Name:     class.Name,
			File:     class.File,
			Package:  class.Package,
			Kind:     class.Kind,
			Language: class.Language,
		}
		if b.layerResolver != nil {
			if layer, ok := b.layerResolver(class.Package, class.Name); ok {
				node.Layer = layer
			}
		}
		g.AddNode(node)
	}

	for _, class := range classes {
		from := class.QualifiedName()

		if class.SuperType != "" {
			if to, ok := b.resolveRef(class.SuperType, class, known); ok {
				g.AddEdge(from, to, DependencyInheritance)
			}
		}
		for _, iface := range class.Interfaces {
			if to, ok := b.resolveRef(iface, class, known); ok {
				g.AddEdge(from, to, DependencyInheritance)
			}
		}

		for _, prop := range class.Properties {
			for _, cand := range typeTokens(prop.Type) {
				if to, ok := b.resolveRef(cand, class, known); ok {
					g.AddEdge(from, to, DependencyComposition)
				}
			}
		}

		for _, method := range class.Methods {
			for _, param := range method.Parameters {
				for _, cand := range typeTokens(param) {
					if to, ok := b.resolveRef(cand, class, known); ok {
						g.AddEdge(from, to, DependencyUsage)
					}
				}
			}
			for _, cand := range typeTokens(method.ReturnType) {
				if to, ok := b.resolveRef(cand, class, known); ok {
					g.AddEdge(from, to, DependencyUsage)
				}
			}
		}
		for _, ref := range class.TypeRefs {
			for _, cand := range typeTokens(ref) {
				if to, ok := b.resolveRef(cand, class, known); ok {
					g.AddEdge(from, to, DependencyUsage)
				}
			}
		}
	}

	return g
}

// resolveRef resolves a type name against the referencing class's import
// list, then against its own package. Only names that land on an
// analyzed class resolve; everything else fails.
func (b *Builder) resolveRef(name string, from facts.ClassFact, known map[string]struct{}) (string, bool) {
	if name == "" || isPrimitiveType(name) {
		return "", false
	}

	if strings.Contains(name, ".") {
		if _, ok := known[name]; ok {
			return name, true
		}
		return "", false
	}

	for _, imp := range from.Imports {
		if strings.HasSuffix(imp, "."+name) {
			if _, ok := known[imp]; ok {
				return imp, true
			}
		}
		if strings.HasSuffix(imp, ".*") {
			cand := strings.TrimSuffix(imp, "*") + name
			if _, ok := known[cand]; ok {
				return cand, true
			}
		}
	}

	cand := facts.ID(from.Package, name)
	if _, ok := known[cand]; ok {
		return cand, true
	}

	return "", false
}

// typeTokens splits a declared type into candidate class names: the
// outer type plus any generic arguments. "Map<String, Order>" yields
// Map, String, and Order; nullability markers and array brackets are
// stripped.
func typeTokens(typ string) []string {
	if typ == "" {
		return nil
	}

	var tokens []string
	start := -1
	for i := 0; i <= len(typ); i++ {
		var c byte
		if i < len(typ) {
			c = typ[i]
		}
		isIdent := c == '.' || c == '_' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if isIdent {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tok := strings.Trim(typ[start:i], ".")
			if tok != "" {
				tokens = append(tokens, tok)
			}
			start = -1
		}
	}
	return tokens
}

// primitiveTypes is a pre-allocated set of primitive and built-in type
// names that can never resolve to an analyzed class.
var primitiveTypes = map[string]bool{
	"int": true, "long": true, "short": true, "byte": true, "char": true,
	"float": true, "double": true, "bool": true, "boolean": true,
	"Int": true, "Long": true, "Short": true, "Byte": true, "Char": true,
	"Float": true, "Double": true, "Boolean": true,
	"string": true, "String": true, "str": true,
	"void": true, "Void": true, "Unit": true, "None": true,
	"null": true, "nil": true, "undefined": true,
	"any": true, "Any": true, "object": true, "Object": true, "Nothing": true,
	"number": true, "Number": true,
	"true": true, "false": true,
	"self": true, "this": true, "super": true,
}

// isPrimitiveType checks if a type name is a primitive or built-in.
func isPrimitiveType(name string) bool {
	return primitiveTypes[name]
}
