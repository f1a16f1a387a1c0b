// Package suggest maps class metrics to refactoring suggestions through
// a fixed rule table. Every rule whose threshold is crossed produces a
// suggestion; rules never suppress each other, so a class in bad shape
// collects the full list.
package suggest

import (
	"fmt"
	"strings"

	"github.com/augurlabs/augur/pkg/analyzer/metrics"
)

// Generator produces suggestions for classes.
type Generator struct {
	thresholds Thresholds
}

// Option is a functional option for configuring Generator.
type Option func(*Generator)

// WithThresholds sets custom rule thresholds.
func WithThresholds(t Thresholds) Option {
	return func(g *Generator) {
		g.thresholds = t
	}
}

// New creates a suggestion generator. Non-positive thresholds fall back
// to the defaults.
func New(opts ...Option) *Generator {
	g := &Generator{thresholds: DefaultThresholds()}
	for _, opt := range opts {
		opt(g)
	}

	defaults := DefaultThresholds()
	if g.thresholds.LCOM <= 0 {
		g.thresholds.LCOM = defaults.LCOM
	}
	if g.thresholds.MethodComplexity <= 0 {
		g.thresholds.MethodComplexity = defaults.MethodComplexity
	}
	if g.thresholds.ComplexMethods <= 0 {
		g.thresholds.ComplexMethods = defaults.ComplexMethods
	}
	if g.thresholds.CBO <= 0 {
		g.thresholds.CBO = defaults.CBO
	}
	if g.thresholds.RFC <= 0 {
		g.thresholds.RFC = defaults.RFC
	}
	if g.thresholds.DIT <= 0 {
		g.thresholds.DIT = defaults.DIT
	}

	return g
}

// rule is one row of the suggestion table. applies reports whether the
// rule fires for the class and returns the metric name and value that
// triggered it; tooltip renders the justification from those numbers.
type rule struct {
	icon    string
	message string
	applies func(t Thresholds, m metrics.ClassMetrics) (string, int, bool)
	tooltip func(t Thresholds, m metrics.ClassMetrics, value int) string
}

var rules = []rule{
	{
		icon:    "🧩",
		message: "Split this class into smaller, focused classes",
		applies: func(t Thresholds, m metrics.ClassMetrics) (string, int, bool) {
			return "lcom", m.LCOM, m.LCOM > t.LCOM
		},
		tooltip: func(t Thresholds, m metrics.ClassMetrics, value int) string {
			return fmt.Sprintf("LCOM %d: the methods form disjoint property clusters; each cluster is a candidate class", value)
		},
	},
	{
		icon:    "🔧",
		message: "Extract complex methods",
		applies: func(t Thresholds, m metrics.ClassMetrics) (string, int, bool) {
			count := 0
			for _, mc := range m.Complexities {
				if mc.Complexity > t.MethodComplexity {
					count++
				}
			}
			return "complex_methods", count, count >= t.ComplexMethods
		},
		tooltip: func(t Thresholds, m metrics.ClassMetrics, value int) string {
			return fmt.Sprintf("%d methods exceed cyclomatic complexity %d; extract their branches into smaller methods", value, t.MethodComplexity)
		},
	},
	{
		icon:    "🗑️",
		message: "Remove unused properties",
		applies: func(t Thresholds, m metrics.ClassMetrics) (string, int, bool) {
			return "unread_properties", len(m.UnreadProperties), len(m.UnreadProperties) > 0
		},
		tooltip: func(t Thresholds, m metrics.ClassMetrics, value int) string {
			return fmt.Sprintf("%d properties are never read by any method: %s", value, strings.Join(m.UnreadProperties, ", "))
		},
	},
	{
		icon:    "🔌",
		message: "Reduce coupling with a facade or dependency injection",
		applies: func(t Thresholds, m metrics.ClassMetrics) (string, int, bool) {
			if m.CBO > t.CBO {
				return "cbo", m.CBO, true
			}
			return "rfc", m.RFC, m.RFC > t.RFC
		},
		tooltip: func(t Thresholds, m metrics.ClassMetrics, value int) string {
			return fmt.Sprintf("CBO %d, RFC %d: this class touches too many collaborators; a facade or injected interfaces narrow the surface", m.CBO, m.RFC)
		},
	},
	{
		icon:    "🌳",
		message: "Prefer composition over inheritance",
		applies: func(t Thresholds, m metrics.ClassMetrics) (string, int, bool) {
			return "dit", m.DIT, m.DIT > t.DIT
		},
		tooltip: func(t Thresholds, m metrics.ClassMetrics, value int) string {
			return fmt.Sprintf("inheritance depth %d: behavior resolves across %d ancestor classes", value, value)
		},
	},
}

// Generate returns the suggestions for one class, in rule-table order.
func (g *Generator) Generate(m metrics.ClassMetrics) []Suggestion {
	var out []Suggestion
	for _, r := range rules {
		metric, value, triggered := r.applies(g.thresholds, m)
		if !triggered {
			continue
		}
		out = append(out, Suggestion{
			Icon:    r.icon,
			Message: r.message,
			Tooltip: r.tooltip(g.thresholds, m, value),
			Metric:  metric,
			Value:   value,
		})
	}
	return out
}

// ForClasses generates suggestions for every class and returns a map
// keyed by class ID, with classes needing no work left out.
func (g *Generator) ForClasses(classes []metrics.ClassMetrics) map[string][]Suggestion {
	out := make(map[string][]Suggestion)
	for _, m := range classes {
		if suggestions := g.Generate(m); len(suggestions) > 0 {
			out[m.ID] = suggestions
		}
	}
	return out
}
