package metrics

import (
	"sort"
	"time"
)

// MethodComplexity records the cyclomatic complexity of a single method.
type MethodComplexity struct {
	Name       string `json:"name"`
	Complexity int    `json:"complexity"`
}

// ClassMetrics represents the CK metric suite for a single class.
type ClassMetrics struct {
	ID        string `json:"id"`
	ClassName string `json:"class_name"`
	Package   string `json:"package"`
	File      string `json:"file,omitempty"`
	Language  string `json:"language,omitempty"`
	Kind      string `json:"kind,omitempty"`

	// Weighted Methods per Class - sum of cyclomatic complexity of all methods
	WMC int `json:"wmc"`

	// Total cyclomatic complexity of the class; equals WMC by construction
	CyclomaticComplexity int `json:"cyclomatic_complexity"`

	// Coupling Between Objects - distinct classes coupled in either direction
	CBO int `json:"cbo"`

	// Response For Class - own methods plus distinct external calls
	RFC int `json:"rfc"`

	// Afferent coupling - distinct classes that depend on this one
	CA int `json:"ca"`

	// Efferent coupling - distinct classes this one depends on
	CE int `json:"ce"`

	// Martin's instability I = CE / (CA + CE); 0 for uncoupled classes
	Instability float64 `json:"instability"`

	// Lack of Cohesion in Methods - non-cohesive method pairs in excess
	// of cohesive ones; 0 = fully cohesive
	LCOM int `json:"lcom"`

	// Depth of Inheritance Tree - root classes are 0
	DIT int `json:"dit"`

	// Number of Children (direct subtypes)
	NOC int `json:"noc"`

	MethodCount   int `json:"method_count"`
	PropertyCount int `json:"property_count"`

	// Per-method complexity in declaration order
	Complexities []MethodComplexity `json:"complexities,omitempty"`

	// Properties never referenced by any method
	UnreadProperties []string `json:"unread_properties,omitempty"`
}

// Summary provides aggregate CK metrics.
type Summary struct {
	TotalClasses    int     `json:"total_classes"`
	TotalPackages   int     `json:"total_packages"`
	TotalMethods    int     `json:"total_methods"`
	TotalProperties int     `json:"total_properties"`
	AvgWMC          float64 `json:"avg_wmc"`
	AvgCBO          float64 `json:"avg_cbo"`
	AvgRFC          float64 `json:"avg_rfc"`
	AvgLCOM         float64 `json:"avg_lcom"`
	MaxWMC          int     `json:"max_wmc"`
	MaxCBO          int     `json:"max_cbo"`
	MaxRFC          int     `json:"max_rfc"`
	MaxLCOM         int     `json:"max_lcom"`
	MaxDIT          int     `json:"max_dit"`

	// Classes with LCOM of 3 or more that may need splitting
	LowCohesionCount int `json:"low_cohesion_count"`
}

// Analysis represents the full CK metrics analysis result.
type Analysis struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Classes     []ClassMetrics `json:"classes"`
	Summary     Summary        `json:"summary"`
}

// Class returns the metrics row for the given class id.
func (c *Analysis) Class(id string) (ClassMetrics, bool) {
	for _, cls := range c.Classes {
		if cls.ID == id {
			return cls, true
		}
	}
	return ClassMetrics{}, false
}

// CalculateSummary computes summary statistics. Safe to call again after
// the graph-dependent metrics have been filled in.
func (c *Analysis) CalculateSummary() {
	c.Summary = Summary{}
	if len(c.Classes) == 0 {
		return
	}

	packages := make(map[string]bool)
	var totalWMC, totalCBO, totalRFC, totalLCOM int

	for _, cls := range c.Classes {
		packages[cls.Package] = true
		totalWMC += cls.WMC
		totalCBO += cls.CBO
		totalRFC += cls.RFC
		totalLCOM += cls.LCOM
		c.Summary.TotalMethods += cls.MethodCount
		c.Summary.TotalProperties += cls.PropertyCount

		if cls.WMC > c.Summary.MaxWMC {
			c.Summary.MaxWMC = cls.WMC
		}
		if cls.CBO > c.Summary.MaxCBO {
			c.Summary.MaxCBO = cls.CBO
		}
		if cls.RFC > c.Summary.MaxRFC {
			c.Summary.MaxRFC = cls.RFC
		}
		if cls.LCOM > c.Summary.MaxLCOM {
			c.Summary.MaxLCOM = cls.LCOM
		}
		if cls.DIT > c.Summary.MaxDIT {
			c.Summary.MaxDIT = cls.DIT
		}
		if cls.LCOM >= 3 {
			c.Summary.LowCohesionCount++
		}
	}

	n := float64(len(c.Classes))
	c.Summary.TotalClasses = len(c.Classes)
	c.Summary.TotalPackages = len(packages)
	c.Summary.AvgWMC = float64(totalWMC) / n
	c.Summary.AvgCBO = float64(totalCBO) / n
	c.Summary.AvgRFC = float64(totalRFC) / n
	c.Summary.AvgLCOM = float64(totalLCOM) / n
}

// SortByLCOM sorts classes by LCOM in descending order (least cohesive first).
func (c *Analysis) SortByLCOM() {
	sort.Slice(c.Classes, func(i, j int) bool {
		return c.Classes[i].LCOM > c.Classes[j].LCOM
	})
}

// SortByWMC sorts classes by WMC in descending order (most complex first).
func (c *Analysis) SortByWMC() {
	sort.Slice(c.Classes, func(i, j int) bool {
		return c.Classes[i].WMC > c.Classes[j].WMC
	})
}

// SortByCBO sorts classes by CBO in descending order (most coupled first).
func (c *Analysis) SortByCBO() {
	sort.Slice(c.Classes, func(i, j int) bool {
		return c.Classes[i].CBO > c.Classes[j].CBO
	})
}

// SortByDIT sorts classes by DIT in descending order (deepest inheritance first).
func (c *Analysis) SortByDIT() {
	sort.Slice(c.Classes, func(i, j int) bool {
		return c.Classes[i].DIT > c.Classes[j].DIT
	})
}
