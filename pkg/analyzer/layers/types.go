package layers

import (
	"sort"
	"time"
)

// LayerType identifies an architectural layer.
type LayerType string

const (
	LayerPresentation   LayerType = "presentation"
	LayerApplication    LayerType = "application"
	LayerDomain         LayerType = "domain"
	LayerData           LayerType = "data"
	LayerInfrastructure LayerType = "infrastructure"
	LayerUnknown        LayerType = "unknown"
)

// String returns the string representation of the layer type.
func (l LayerType) String() string {
	return string(l)
}

// Level returns the ring number of the layer: lower numbers sit further
// out, and the domain forms the center. Data and infrastructure share a
// ring. Unknown is 0.
func (l LayerType) Level() int {
	switch l {
	case LayerPresentation:
		return 1
	case LayerApplication:
		return 2
	case LayerData, LayerInfrastructure:
		return 3
	case LayerDomain:
		return 4
	default:
		return 0
	}
}

// ParseLayerType converts a string to a LayerType. Unknown values
// report false.
func ParseLayerType(s string) (LayerType, bool) {
	switch LayerType(s) {
	case LayerPresentation, LayerApplication, LayerDomain, LayerData, LayerInfrastructure:
		return LayerType(s), true
	default:
		return LayerUnknown, false
	}
}

// ArchitecturePattern identifies the overall architectural style.
type ArchitecturePattern string

const (
	PatternLayered   ArchitecturePattern = "layered"
	PatternClean     ArchitecturePattern = "clean"
	PatternHexagonal ArchitecturePattern = "hexagonal"
	PatternOnion     ArchitecturePattern = "onion"
	PatternUnknown   ArchitecturePattern = "unknown"
)

// String returns the string representation of the pattern.
func (p ArchitecturePattern) String() string {
	return string(p)
}

// Layer groups the classes assigned to one architectural layer.
type Layer struct {
	Type       LayerType `json:"type"`
	Level      int       `json:"level"`
	Classes    []string  `json:"classes"`
	ClassCount int       `json:"class_count"`
}

// LayerDependency aggregates the class-level edges crossing from one
// layer into another.
type LayerDependency struct {
	From    LayerType `json:"from"`
	To      LayerType `json:"to"`
	Count   int       `json:"count"`
	IsValid bool      `json:"is_valid"`
}

// ViolationType classifies an architecture violation.
type ViolationType string

const (
	// ViolationLayer marks a class edge that breaks the layering rules.
	ViolationLayer ViolationType = "layer_violation"
	// ViolationCircular marks a class that participates in a dependency
	// cycle.
	ViolationCircular ViolationType = "circular_dependency"
	// ViolationInversion marks a domain class reaching out to an outer
	// technical layer.
	ViolationInversion ViolationType = "dependency_inversion"
)

// Violation is a single architecture violation, reported per class edge
// (or per class, for cycle participation).
type Violation struct {
	Type        ViolationType `json:"type"`
	From        string        `json:"from"`
	To          string        `json:"to,omitempty"`
	FromLayer   LayerType     `json:"from_layer,omitempty"`
	ToLayer     LayerType     `json:"to_layer,omitempty"`
	Description string        `json:"description"`
}

// Summary provides aggregate architecture statistics.
type Summary struct {
	LayerCount           int `json:"layer_count"`
	ClassifiedClasses    int `json:"classified_classes"`
	UnclassifiedClasses  int `json:"unclassified_classes"`
	DependencyCount      int `json:"dependency_count"`
	InvalidDependencies  int `json:"invalid_dependencies"`
	LayerViolations      int `json:"layer_violations"`
	CircularDependencies int `json:"circular_dependencies"`
	Inversions           int `json:"inversions"`
	TotalViolations      int `json:"total_violations"`
}

// Analysis represents the full architecture analysis result.
type Analysis struct {
	GeneratedAt  time.Time           `json:"generated_at"`
	Pattern      ArchitecturePattern `json:"pattern"`
	Layers       []Layer             `json:"layers"`
	Dependencies []LayerDependency   `json:"dependencies"`
	Violations   []Violation         `json:"violations"`
	Summary      Summary             `json:"summary"`
}

// SortLayers orders layers from the outside in; layers sharing a ring
// sort by name.
func (a *Analysis) SortLayers() {
	sort.Slice(a.Layers, func(i, j int) bool {
		if a.Layers[i].Level != a.Layers[j].Level {
			return a.Layers[i].Level < a.Layers[j].Level
		}
		return a.Layers[i].Type < a.Layers[j].Type
	})
}

// CalculateSummary computes summary statistics.
func (a *Analysis) CalculateSummary() {
	unclassified := a.Summary.UnclassifiedClasses
	a.Summary = Summary{UnclassifiedClasses: unclassified}

	a.Summary.LayerCount = len(a.Layers)
	for _, layer := range a.Layers {
		a.Summary.ClassifiedClasses += layer.ClassCount
	}
	for _, dep := range a.Dependencies {
		a.Summary.DependencyCount += dep.Count
		if !dep.IsValid {
			a.Summary.InvalidDependencies += dep.Count
		}
	}
	for _, v := range a.Violations {
		switch v.Type {
		case ViolationLayer:
			a.Summary.LayerViolations++
		case ViolationCircular:
			a.Summary.CircularDependencies++
		case ViolationInversion:
			a.Summary.Inversions++
		}
	}
	a.Summary.TotalViolations = len(a.Violations)
}
