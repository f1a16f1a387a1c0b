package suggest

// Suggestion is one actionable refactoring recommendation for a class.
// Icon and Message are what a UI shows inline; Tooltip carries the
// numbers that justify the advice.
type Suggestion struct {
	Icon    string `json:"icon"`
	Message string `json:"message"`
	Tooltip string `json:"tooltip"`
	Metric  string `json:"metric"`
	Value   int    `json:"value"`
}

// Thresholds configures when each suggestion rule fires.
type Thresholds struct {
	LCOM             int `json:"lcom" toml:"lcom"`                           // split class above this LCOM
	MethodComplexity int `json:"method_complexity" toml:"method_complexity"` // a method above this is "complex"
	ComplexMethods   int `json:"complex_methods" toml:"complex_methods"`     // suggest extraction at this many complex methods
	CBO              int `json:"cbo" toml:"cbo"`                             // coupling advice above this CBO
	RFC              int `json:"rfc" toml:"rfc"`                             // coupling advice above this RFC
	DIT              int `json:"dit" toml:"dit"`                             // composition advice above this depth
}

// DefaultThresholds returns the default rule thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LCOM:             5,
		MethodComplexity: 7,
		ComplexMethods:   2,
		CBO:              10,
		RFC:              30,
		DIT:              4,
	}
}
