package score

import "math"

// Weights defines the weight of each component in the overall quality
// score. The defaults sum to 1.0; custom weights should too, or the
// overall score drifts out of the 0-10 range.
type Weights struct {
	Cohesion     float64 `json:"cohesion" toml:"cohesion"`
	Complexity   float64 `json:"complexity" toml:"complexity"`
	Coupling     float64 `json:"coupling" toml:"coupling"`
	Inheritance  float64 `json:"inheritance" toml:"inheritance"`
	Architecture float64 `json:"architecture" toml:"architecture"`
}

// DefaultWeights returns the default weights (sum to 1.0).
func DefaultWeights() Weights {
	return Weights{
		Cohesion:     0.25,
		Complexity:   0.25,
		Coupling:     0.25,
		Inheritance:  0.15,
		Architecture: 0.10,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Cohesion + w.Complexity + w.Coupling + w.Inheritance + w.Architecture
}

// QualityScore holds the component scores (0-10 each, higher is better)
// and the weighted overall score.
type QualityScore struct {
	Cohesion     int     `json:"cohesion"`
	Complexity   int     `json:"complexity"`
	Coupling     int     `json:"coupling"`
	Inheritance  int     `json:"inheritance"`
	Architecture int     `json:"architecture"`
	Overall      float64 `json:"overall"`
}

// ComputeOverall calculates the weighted overall score, rounded to two
// decimals.
func (q *QualityScore) ComputeOverall(w Weights) {
	overall := float64(q.Cohesion)*w.Cohesion +
		float64(q.Complexity)*w.Complexity +
		float64(q.Coupling)*w.Coupling +
		float64(q.Inheritance)*w.Inheritance +
		float64(q.Architecture)*w.Architecture

	q.Overall = math.Round(overall*100) / 100
}

// RiskLevel grades how urgently a class needs attention.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// String returns the string representation.
func (r RiskLevel) String() string {
	return string(r)
}

// Weight returns the sort weight of the level; higher means worse.
func (r RiskLevel) Weight() int {
	switch r {
	case RiskCritical:
		return 4
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// Breach records a single metric crossing its hard limit. A breach
// escalates the risk level regardless of how good the overall score is.
type Breach struct {
	Metric string `json:"metric"`
	Value  int    `json:"value"`
	Limit  int    `json:"limit"`
	Impact string `json:"impact"`
}

// RiskAssessment is the risk verdict for one class: the level derived
// from its overall score and hard-limit breaches, plus a priority used
// to order worst-offender lists.
type RiskAssessment struct {
	ID       string    `json:"id"`
	Level    RiskLevel `json:"level"`
	Overall  float64   `json:"overall"`
	Breaches []Breach  `json:"breaches,omitempty"`
	Priority int       `json:"priority"`
}
