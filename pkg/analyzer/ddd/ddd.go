// Package ddd recognizes tactical domain-driven design building blocks
// (entities, value objects, services, repositories, aggregates, domain
// events) from class facts.
//
// Each pattern is scored by a fixed table of weighted signals. A class
// matches when the clamped sum of its fired signals reaches the
// detection threshold. Signals read only declared structure, never
// behavior, so detection is deterministic and total: a malformed or
// empty fact simply fires no signals.
package ddd

import (
	"context"
	"strings"
	"time"

	"github.com/augurlabs/augur/pkg/analyzer"
	"github.com/augurlabs/augur/pkg/facts"
)

// DefaultDetectionThreshold is the minimum confidence for a match.
const DefaultDetectionThreshold = 0.5

// signal is one weighted structural heuristic for a pattern.
type signal struct {
	name   string
	weight float64
	test   func(facts.ClassFact) bool
}

var entitySignals = []signal{
	{"identifier property", 0.40, hasIDProperty},
	{"mutable state", 0.30, hasMutableState},
	{"identity equality", 0.30, hasIdentityEquality},
}

var valueObjectSignals = []signal{
	{"immutable properties", 0.50, allPropertiesReadOnly},
	{"structural equality", 0.30, hasStructuralEquality},
	{"no identifier", 0.20, func(f facts.ClassFact) bool {
		return len(f.Properties) > 0 && !hasIDProperty(f)
	}},
}

var serviceSignals = []signal{
	{"service suffix", 0.40, hasServiceSuffix},
	{"read-only dependencies", 0.30, hasReadOnlyDependencies},
	{"non-trivial methods", 0.30, hasNonTrivialMethods},
}

var repositorySignals = []signal{
	{"contract kind", 0.40, func(f facts.ClassFact) bool { return f.Kind.IsContract() }},
	{"crud verbs", 0.30, func(f facts.ClassFact) bool { return crudVerbCount(f) >= 1 }},
	{"full crud surface", 0.30, func(f facts.ClassFact) bool { return crudVerbCount(f) >= 3 }},
}

var aggregateSignals = []signal{
	{"identifier property", 0.30, hasIDProperty},
	{"owned collections", 0.40, hasClassCollection},
	{"aggregate suffix", 0.30, func(f facts.ClassFact) bool {
		return strings.HasSuffix(f.Name, "Aggregate") || strings.HasSuffix(f.Name, "AggregateRoot")
	}},
}

var domainEventSignals = []signal{
	{"event suffix", 0.40, func(f facts.ClassFact) bool { return strings.HasSuffix(f.Name, "Event") }},
	{"timestamp property", 0.30, hasTimestampProperty},
	{"fully immutable", 0.30, allPropertiesReadOnly},
}

// patternSignals maps each pattern to its signal table.
var patternSignals = map[Pattern][]signal{
	PatternEntity:      entitySignals,
	PatternValueObject: valueObjectSignals,
	PatternService:     serviceSignals,
	PatternRepository:  repositorySignals,
	PatternAggregate:   aggregateSignals,
	PatternDomainEvent: domainEventSignals,
}

// Detector recognizes DDD patterns in class facts.
type Detector struct {
	threshold float64
}

// Compile-time check that Detector implements analyzer.FactAnalyzer[*Analysis]
var _ analyzer.FactAnalyzer[*Analysis] = (*Detector)(nil)

// Option is a functional option for configuring Detector.
type Option func(*Detector)

// WithDetectionThreshold sets the minimum confidence for a match (0-1].
func WithDetectionThreshold(threshold float64) Option {
	return func(d *Detector) {
		if threshold > 0 && threshold <= 1 {
			d.threshold = threshold
		}
	}
}

// New creates a new DDD pattern detector.
func New(opts ...Option) *Detector {
	d := &Detector{threshold: DefaultDetectionThreshold}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Confidence scores one class against one pattern, returning the clamped
// confidence and the names of the fired signals.
func (d *Detector) Confidence(fact facts.ClassFact, pattern Pattern) (float64, []string) {
	signals, ok := patternSignals[pattern]
	if !ok {
		return 0, nil
	}

	confidence := 0.0
	var fired []string
	for _, s := range signals {
		if s.test(fact) {
			confidence += s.weight
			fired = append(fired, s.name)
		}
	}
	if confidence > 1 {
		confidence = 1
	}
	return confidence, fired
}

// Analyze classifies every class against every pattern. A class may
// match several patterns; each match carries its own confidence.
func (d *Detector) Analyze(ctx context.Context, classes []facts.ClassFact) (*Analysis, error) {
	analysis := &Analysis{
		GeneratedAt:  time.Now().UTC(),
		Entities:     make([]Match, 0),
		ValueObjects: make([]Match, 0),
		Services:     make([]Match, 0),
		Repositories: make([]Match, 0),
		Aggregates:   make([]Match, 0),
		DomainEvents: make([]Match, 0),
	}

	// Get progress tracker from context
	tracker := analyzer.TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Add(len(classes))
	}

	buckets := []struct {
		pattern Pattern
		into    *[]Match
	}{
		{PatternEntity, &analysis.Entities},
		{PatternValueObject, &analysis.ValueObjects},
		{PatternService, &analysis.Services},
		{PatternRepository, &analysis.Repositories},
		{PatternAggregate, &analysis.Aggregates},
		{PatternDomainEvent, &analysis.DomainEvents},
	}

	for _, fact := range classes {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if tracker != nil {
			tracker.Tick(fact.QualifiedName())
		}

		for _, b := range buckets {
			confidence, fired := d.Confidence(fact, b.pattern)
			if confidence >= d.threshold {
				*b.into = append(*b.into, Match{
					ClassName:  fact.Name,
					Package:    fact.Package,
					File:       fact.File,
					Pattern:    b.pattern,
					Confidence: confidence,
					Signals:    fired,
				})
			}
		}
	}

	analysis.CalculateSummary()
	return analysis, nil
}

// Close releases detector resources.
func (d *Detector) Close() {}

// idPropertyNames are exact (lowercased) property names treated as
// identifiers.
var idPropertyNames = map[string]bool{
	"id":   true,
	"uuid": true,
	"guid": true,
	"key":  true,
}

// idPropertyTypes are type names treated as identifier types.
var idPropertyTypes = map[string]bool{
	"UUID":     true,
	"Uuid":     true,
	"GUID":     true,
	"ObjectId": true,
	"ULID":     true,
}

func isIDProperty(p facts.Property) bool {
	lower := strings.ToLower(p.Name)
	if idPropertyNames[lower] {
		return true
	}
	if strings.HasSuffix(p.Name, "Id") || strings.HasSuffix(p.Name, "ID") || strings.HasSuffix(lower, "_id") {
		return true
	}
	return idPropertyTypes[p.Type]
}

func hasIDProperty(f facts.ClassFact) bool {
	for _, p := range f.Properties {
		if isIDProperty(p) {
			return true
		}
	}
	return false
}

// isSetterMethod reports whether a method looks like a property setter.
func isSetterMethod(m facts.Method) bool {
	if len(m.Name) <= 3 || !strings.HasPrefix(m.Name, "set") && !strings.HasPrefix(m.Name, "Set") {
		return false
	}
	c := m.Name[3]
	return c >= 'A' && c <= 'Z' || c == '_'
}

func hasMutableState(f facts.ClassFact) bool {
	for _, p := range f.Properties {
		if p.Mutable {
			return true
		}
	}
	for _, m := range f.Methods {
		if isSetterMethod(m) {
			return true
		}
	}
	return false
}

// equalityMethodNames covers equality and hashing hooks across the
// supported source languages.
var equalityMethodNames = map[string]bool{
	"equals":      true,
	"hashcode":    true,
	"gethashcode": true,
	"__eq__":      true,
	"__hash__":    true,
}

// hasIdentityEquality reports whether an equality method compares only
// identifier properties.
func hasIdentityEquality(f facts.ClassFact) bool {
	for _, m := range f.Methods {
		if !equalityMethodNames[strings.ToLower(m.Name)] || len(m.References) == 0 {
			continue
		}
		identityOnly := true
		for _, name := range m.References {
			if p, ok := f.Property(name); !ok || !isIDProperty(p) {
				identityOnly = false
				break
			}
		}
		if identityOnly {
			return true
		}
	}
	return false
}

// hasStructuralEquality reports whether an equality method compares
// every declared property.
func hasStructuralEquality(f facts.ClassFact) bool {
	if len(f.Properties) == 0 {
		return false
	}
	for _, m := range f.Methods {
		if !equalityMethodNames[strings.ToLower(m.Name)] {
			continue
		}
		referenced := make(map[string]bool, len(m.References))
		for _, name := range m.References {
			referenced[name] = true
		}
		all := true
		for _, p := range f.Properties {
			if !referenced[p.Name] {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// allPropertiesReadOnly requires at least one property, no mutable
// properties, and no setters.
func allPropertiesReadOnly(f facts.ClassFact) bool {
	if len(f.Properties) == 0 {
		return false
	}
	for _, p := range f.Properties {
		if p.Mutable {
			return false
		}
	}
	for _, m := range f.Methods {
		if isSetterMethod(m) {
			return false
		}
	}
	return true
}

var serviceSuffixes = []string{
	"Service", "Manager", "Handler", "UseCase", "Interactor", "Facade", "Processor",
}

func hasServiceSuffix(f facts.ClassFact) bool {
	for _, suffix := range serviceSuffixes {
		if strings.HasSuffix(f.Name, suffix) && f.Name != suffix {
			return true
		}
	}
	return false
}

// hasReadOnlyDependencies reports whether a class with behavior keeps
// its collaborators immutable.
func hasReadOnlyDependencies(f facts.ClassFact) bool {
	if len(f.Methods) == 0 {
		return false
	}
	for _, p := range f.Properties {
		if p.Mutable {
			return false
		}
	}
	return true
}

func hasNonTrivialMethods(f facts.ClassFact) bool {
	for _, m := range f.Methods {
		if len(m.Parameters) > 0 || len(m.ControlFlow) > 0 || m.Complexity > 1 {
			return true
		}
	}
	return false
}

// crudVerbs are the verb prefixes of a repository contract.
var crudVerbs = []string{"save", "find", "delete", "exists", "count"}

// crudVerbCount counts the distinct repository verbs among method names.
func crudVerbCount(f facts.ClassFact) int {
	matched := make(map[string]bool)
	for _, m := range f.Methods {
		lower := strings.ToLower(m.Name)
		for _, verb := range crudVerbs {
			if strings.HasPrefix(lower, verb) {
				matched[verb] = true
			}
		}
	}
	return len(matched)
}

// timestampPropertyNames are exact (lowercased) names of event clocks.
var timestampPropertyNames = map[string]bool{
	"timestamp":  true,
	"occurredat": true,
	"occurredon": true,
	"createdat":  true,
	"happenedat": true,
	"eventtime":  true,
	"time":       true,
}

// timestampTypeFragments mark temporal types across languages.
var timestampTypeFragments = []string{"Instant", "DateTime", "Timestamp", "Date", "Time"}

func hasTimestampProperty(f facts.ClassFact) bool {
	for _, p := range f.Properties {
		if timestampPropertyNames[strings.ToLower(p.Name)] {
			return true
		}
		for _, fragment := range timestampTypeFragments {
			if strings.Contains(p.Type, fragment) {
				return true
			}
		}
	}
	return false
}

// collectionPrefixes mark container types whose element may be an owned
// class.
var collectionPrefixes = []string{"List<", "Set<", "Collection<", "Array<", "MutableList<", "MutableSet<"}

// basicElementTypes are element types that do not indicate ownership of
// other domain classes.
var basicElementTypes = map[string]bool{
	"String": true, "Int": true, "Integer": true, "Long": true, "Short": true,
	"Byte": true, "Boolean": true, "Double": true, "Float": true, "Char": true,
	"Character": true, "Number": true, "Object": true, "Any": true,
	"UUID": true, "BigDecimal": true, "Date": true, "Instant": true,
	"LocalDate": true, "LocalDateTime": true,
	"string": true, "int": true, "long": true, "bool": true, "boolean": true,
	"number": true, "any": true, "float": true, "double": true,
}

// hasClassCollection reports whether any property holds a collection of
// class-like elements.
func hasClassCollection(f facts.ClassFact) bool {
	for _, p := range f.Properties {
		if element, ok := collectionElement(p.Type); ok && isClassElement(element) {
			return true
		}
	}
	return false
}

func collectionElement(typ string) (string, bool) {
	for _, prefix := range collectionPrefixes {
		if strings.HasPrefix(typ, prefix) && strings.HasSuffix(typ, ">") {
			return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(typ, prefix), ">")), true
		}
	}
	if strings.HasSuffix(typ, "[]") {
		return strings.TrimSuffix(typ, "[]"), true
	}
	return "", false
}

func isClassElement(element string) bool {
	if element == "" || basicElementTypes[element] {
		return false
	}
	c := element[0]
	return c >= 'A' && c <= 'Z'
}
