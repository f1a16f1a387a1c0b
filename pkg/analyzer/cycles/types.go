package cycles

import (
	"sort"
	"strings"
	"time"
)

// Severity classifies how damaging a dependency cycle is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// Weight returns a numeric weight for sorting (higher = more severe).
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ParseSeverity converts a string to a Severity. Matching is
// case-insensitive; unknown values report false.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(strings.ToLower(s)) {
	case SeverityLow:
		return SeverityLow, true
	case SeverityMedium:
		return SeverityMedium, true
	case SeverityHigh:
		return SeverityHigh, true
	default:
		return "", false
	}
}

// Cycle is a minimal dependency cycle. Nodes are listed in traversal
// order starting from the lexicographically smallest member; the edge
// from the last node back to the first closes the cycle.
type Cycle struct {
	Nodes        []string `json:"nodes"`
	Length       int      `json:"length"`
	Severity     Severity `json:"severity"`
	CrossPackage bool     `json:"cross_package"`
}

// Summary provides aggregate cycle statistics.
type Summary struct {
	TotalCycles     int `json:"total_cycles"`
	HighCount       int `json:"high_count"`
	MediumCount     int `json:"medium_count"`
	LowCount        int `json:"low_count"`
	MaxLength       int `json:"max_length"`
	AffectedClasses int `json:"affected_classes"`

	// SCCCount is the number of strongly connected groups of two or
	// more classes. Unlike TotalCycles it stays exact even when
	// MaxCycles truncates the cycle list.
	SCCCount int `json:"scc_count"`

	Truncated bool `json:"truncated,omitempty"`
}

// Analysis represents the full cycle analysis result.
type Analysis struct {
	GeneratedAt time.Time `json:"generated_at"`
	Cycles      []Cycle   `json:"cycles"`
	// PackageCohesion maps each package to the fraction of its edges
	// that stay inside the package. Packages without edges score 1.0.
	PackageCohesion map[string]float64 `json:"package_cohesion"`
	Summary         Summary            `json:"summary"`
}

// CalculateSummary computes summary statistics. SCCCount and Truncated
// come from the detector, not the cycle list, and are preserved.
func (c *Analysis) CalculateSummary() {
	c.Summary = Summary{SCCCount: c.Summary.SCCCount, Truncated: c.Summary.Truncated}

	affected := make(map[string]bool)
	for _, cycle := range c.Cycles {
		c.Summary.TotalCycles++
		switch cycle.Severity {
		case SeverityHigh:
			c.Summary.HighCount++
		case SeverityMedium:
			c.Summary.MediumCount++
		case SeverityLow:
			c.Summary.LowCount++
		}
		if cycle.Length > c.Summary.MaxLength {
			c.Summary.MaxLength = cycle.Length
		}
		for _, id := range cycle.Nodes {
			affected[id] = true
		}
	}
	c.Summary.AffectedClasses = len(affected)
}

// SortBySeverity sorts cycles worst first: severity descending, then
// shorter cycles first, then by first node for a stable order.
func (c *Analysis) SortBySeverity() {
	sort.Slice(c.Cycles, func(i, j int) bool {
		a, b := c.Cycles[i], c.Cycles[j]
		if a.Severity.Weight() != b.Severity.Weight() {
			return a.Severity.Weight() > b.Severity.Weight()
		}
		if a.Length != b.Length {
			return a.Length < b.Length
		}
		return a.Nodes[0] < b.Nodes[0]
	})
}
