// Package facts defines the normalized class model produced by language
// front-ends and consumed by every analyzer. A ClassFact is a plain data
// snapshot of one declared type: the engine never mutates one after it
// has been handed in.
package facts

import "strings"

// Kind identifies what sort of type declaration a fact describes.
type Kind string

const (
	KindClass         Kind = "class"
	KindInterface     Kind = "interface"
	KindAbstractClass Kind = "abstract_class"
	KindEnum          Kind = "enum"
	KindObject        Kind = "object"
)

// String returns the string representation.
func (k Kind) String() string {
	return string(k)
}

// IsContract reports whether the kind declares behavior without a full
// concrete implementation (interfaces and abstract classes).
func (k Kind) IsContract() bool {
	return k == KindInterface || k == KindAbstractClass
}

// Language tags the source dialect a fact was extracted from. The engine
// treats it as opaque; front-ends should use the constants below where
// they apply.
type Language string

const (
	LangKotlin     Language = "kotlin"
	LangJava       Language = "java"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangCSharp     Language = "csharp"
)

// Property is a declared field or property of a class.
type Property struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Mutable bool   `json:"mutable"`
}

// Method is a declared method with the structural information the
// analyzers need: parameter and return types for coupling, the names of
// class properties its body touches for cohesion, invoked method
// signatures for RFC, and control-flow tokens for complexity.
type Method struct {
	Name       string   `json:"name"`
	Parameters []string `json:"parameters,omitempty"`
	ReturnType string   `json:"return_type,omitempty"`

	// References holds the names of properties of the declaring class
	// that the method body reads or writes.
	References []string `json:"references,omitempty"`

	// Calls holds the signatures of methods invoked in the body, own
	// and foreign alike. Front-ends report them as opaque strings.
	Calls []string `json:"calls,omitempty"`

	// ControlFlow holds one token per complexity-relevant construct in
	// the body (see pkg/analyzer/metrics for the token vocabulary).
	// Front-ends that already count complexity may leave it empty and
	// set Complexity instead.
	ControlFlow []string `json:"control_flow,omitempty"`

	// Complexity is a precomputed cyclomatic complexity. Zero means
	// "not provided"; the metrics analyzer then counts ControlFlow.
	Complexity int `json:"complexity,omitempty"`
}

// Signature renders the method as name(paramType, ...).
func (m Method) Signature() string {
	return m.Name + "(" + strings.Join(m.Parameters, ", ") + ")"
}

// ClassFact is the normalized description of a single declared type.
// A partially parsed or malformed declaration is represented as a fact
// with empty collections, never as an error: every analyzer is total
// over arbitrary facts.
type ClassFact struct {
	Name     string   `json:"name"`
	File     string   `json:"file,omitempty"`
	Package  string   `json:"package,omitempty"`
	Language Language `json:"language,omitempty"`
	Kind     Kind     `json:"kind,omitempty"`

	// SuperType is the declared supertype name, simple or qualified.
	// Empty when the class extends nothing the front-end could see.
	SuperType  string   `json:"super_type,omitempty"`
	Interfaces []string `json:"interfaces,omitempty"`

	Properties []Property `json:"properties,omitempty"`
	Methods    []Method   `json:"methods,omitempty"`

	// Imports lists the qualified names this class's file imports,
	// used to resolve simple type names to analyzed classes.
	Imports []string `json:"imports,omitempty"`

	// TypeRefs lists additional type names referenced in method bodies
	// (local variables, call receivers) that do not already appear in
	// method signatures.
	TypeRefs []string `json:"type_refs,omitempty"`
}

// ID returns the graph identity for a class in a package, in the form
// "package.Name" (or just the name for the default package).
func ID(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// QualifiedName returns the fact's graph identity (see ID).
func (f ClassFact) QualifiedName() string {
	return ID(f.Package, f.Name)
}

// Property returns the declared property with the given name, if any.
func (f ClassFact) Property(name string) (Property, bool) {
	for _, p := range f.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// MethodNames returns the declared method names in declaration order.
func (f ClassFact) MethodNames() []string {
	names := make([]string, len(f.Methods))
	for i, m := range f.Methods {
		names[i] = m.Name
	}
	return names
}
