// Package score turns class metrics into quality scores and risk
// verdicts. Scoring is pure table lookup over the metrics a class
// already carries; nothing here re-analyzes code.
package score

import (
	"math"
	"sort"

	"github.com/augurlabs/augur/pkg/analyzer/metrics"
)

// Scorer computes quality scores and risk assessments.
type Scorer struct {
	weights Weights
}

// Option configures the Scorer.
type Option func(*Scorer)

// WithWeights sets custom component weights for the overall score.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		s.weights = w
	}
}

// New creates a scorer with the default weights.
func New(opts ...Option) *Scorer {
	s := &Scorer{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the weights the scorer applies.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// ScoreClass computes the quality score for one class. violations is the
// number of architecture violations attributed to the class.
func (s *Scorer) ScoreClass(m metrics.ClassMetrics, violations int) QualityScore {
	q := QualityScore{
		Cohesion:     ScoreCohesion(m.LCOM),
		Complexity:   ScoreComplexity(m.WMC),
		Coupling:     ScoreCoupling(m.CBO, m.RFC, m.CA, m.CE),
		Inheritance:  ScoreInheritance(m.DIT, m.NOC),
		Architecture: ScoreArchitecture(violations),
	}
	q.ComputeOverall(s.weights)
	return q
}

// ScoreProject aggregates per-class scores into a project score. The
// structural components are the rounded mean over all classes; the
// architecture component is recomputed from the project-wide violation
// count, since violations are properties of the structure rather than of
// single classes. A project with no classes scores a neutral 10 on every
// structural component.
func (s *Scorer) ScoreProject(classScores []QualityScore, totalViolations int) QualityScore {
	project := QualityScore{
		Cohesion:    10,
		Complexity:  10,
		Coupling:    10,
		Inheritance: 10,
	}
	if len(classScores) > 0 {
		var cohesion, complexity, coupling, inheritance float64
		for _, cs := range classScores {
			cohesion += float64(cs.Cohesion)
			complexity += float64(cs.Complexity)
			coupling += float64(cs.Coupling)
			inheritance += float64(cs.Inheritance)
		}
		n := float64(len(classScores))
		project.Cohesion = int(math.Round(cohesion / n))
		project.Complexity = int(math.Round(complexity / n))
		project.Coupling = int(math.Round(coupling / n))
		project.Inheritance = int(math.Round(inheritance / n))
	}
	project.Architecture = ScoreArchitecture(totalViolations)
	project.ComputeOverall(s.weights)
	return project
}

// breachChecks are the hard limits that escalate risk regardless of the
// composite score. A class can average out to a decent overall while one
// metric is far past the point where refactoring is optional.
var breachChecks = []struct {
	metric string
	limit  int
	value  func(m metrics.ClassMetrics) int
	impact string
}{
	{"lcom", 10, func(m metrics.ClassMetrics) int { return m.LCOM }, "methods split into unrelated responsibility clusters"},
	{"wmc", 50, func(m metrics.ClassMetrics) int { return m.WMC }, "class is too complex to test as one unit"},
	{"cbo", 20, func(m metrics.ClassMetrics) int { return m.CBO }, "changes ripple across too many collaborators"},
	{"dit", 6, func(m metrics.ClassMetrics) int { return m.DIT }, "behavior is buried under too many inheritance levels"},
}

// AssessRisk derives the risk verdict for a class from its overall score
// and its hard-limit breaches. One breach raises the level to at least
// high, two or more to critical, no matter the score.
func (s *Scorer) AssessRisk(m metrics.ClassMetrics, q QualityScore) RiskAssessment {
	var breaches []Breach
	for _, check := range breachChecks {
		if v := check.value(m); v > check.limit {
			breaches = append(breaches, Breach{
				Metric: check.metric,
				Value:  v,
				Limit:  check.limit,
				Impact: check.impact,
			})
		}
	}

	level := levelForOverall(q.Overall)
	switch {
	case len(breaches) >= 2:
		level = RiskCritical
	case len(breaches) == 1 && level.Weight() < RiskHigh.Weight():
		level = RiskHigh
	}

	return RiskAssessment{
		ID:       m.ID,
		Level:    level,
		Overall:  q.Overall,
		Breaches: breaches,
		Priority: priority(level, len(breaches), q.Overall),
	}
}

func levelForOverall(overall float64) RiskLevel {
	switch {
	case overall >= 9:
		return RiskLow
	case overall >= 5:
		return RiskMedium
	case overall >= 3:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// priority orders worst-offender lists: level dominates, then breach
// count, then how far the overall score has fallen. Higher is worse.
func priority(level RiskLevel, breaches int, overall float64) int {
	return level.Weight()*100 + breaches*10 + clamp(10-int(math.Round(overall)), 0, 9)
}

// SortByPriority orders assessments worst first. Ties fall back to the
// class id so repeated runs list classes in the same order.
func SortByPriority(assessments []RiskAssessment) {
	sort.Slice(assessments, func(i, j int) bool {
		if assessments[i].Priority != assessments[j].Priority {
			return assessments[i].Priority > assessments[j].Priority
		}
		return assessments[i].ID < assessments[j].ID
	})
}
