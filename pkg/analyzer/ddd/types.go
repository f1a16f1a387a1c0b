package ddd

import (
	"sort"
	"time"
)

// Pattern identifies a tactical domain-driven design building block.
type Pattern string

const (
	PatternEntity      Pattern = "entity"
	PatternValueObject Pattern = "value_object"
	PatternService     Pattern = "service"
	PatternRepository  Pattern = "repository"
	PatternAggregate   Pattern = "aggregate"
	PatternDomainEvent Pattern = "domain_event"
)

// String returns the string representation of the pattern.
func (p Pattern) String() string {
	return string(p)
}

// Match records a class recognized as a DDD building block.
type Match struct {
	ClassName string  `json:"class_name"`
	Package   string  `json:"package"`
	File      string  `json:"file,omitempty"`
	Pattern   Pattern `json:"pattern"`
	// Confidence is the clamped sum of fired signal weights, in [0, 1].
	Confidence float64 `json:"confidence"`
	// Signals lists the names of the fired signals, in table order.
	Signals []string `json:"signals,omitempty"`
}

// Summary provides aggregate pattern counts.
type Summary struct {
	TotalMatches     int `json:"total_matches"`
	EntityCount      int `json:"entity_count"`
	ValueObjectCount int `json:"value_object_count"`
	ServiceCount     int `json:"service_count"`
	RepositoryCount  int `json:"repository_count"`
	AggregateCount   int `json:"aggregate_count"`
	DomainEventCount int `json:"domain_event_count"`
}

// Analysis represents the full DDD pattern detection result.
type Analysis struct {
	GeneratedAt  time.Time `json:"generated_at"`
	Entities     []Match   `json:"entities"`
	ValueObjects []Match   `json:"value_objects"`
	Services     []Match   `json:"services"`
	Repositories []Match   `json:"repositories"`
	Aggregates   []Match   `json:"aggregates"`
	DomainEvents []Match   `json:"domain_events"`
	Summary      Summary   `json:"summary"`
}

// All returns every match across patterns, highest confidence first.
func (a *Analysis) All() []Match {
	matches := make([]Match, 0,
		len(a.Entities)+len(a.ValueObjects)+len(a.Services)+
			len(a.Repositories)+len(a.Aggregates)+len(a.DomainEvents))
	matches = append(matches, a.Entities...)
	matches = append(matches, a.ValueObjects...)
	matches = append(matches, a.Services...)
	matches = append(matches, a.Repositories...)
	matches = append(matches, a.Aggregates...)
	matches = append(matches, a.DomainEvents...)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

// CalculateSummary computes summary statistics.
func (a *Analysis) CalculateSummary() {
	a.Summary = Summary{
		EntityCount:      len(a.Entities),
		ValueObjectCount: len(a.ValueObjects),
		ServiceCount:     len(a.Services),
		RepositoryCount:  len(a.Repositories),
		AggregateCount:   len(a.Aggregates),
		DomainEventCount: len(a.DomainEvents),
	}
	a.Summary.TotalMatches = a.Summary.EntityCount + a.Summary.ValueObjectCount +
		a.Summary.ServiceCount + a.Summary.RepositoryCount +
		a.Summary.AggregateCount + a.Summary.DomainEventCount
}
