package score

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Distribution summarizes how one metric is spread across the project's
// classes. Worst-offender views read Max and P90; the mean alone hides
// exactly the classes this tool exists to find.
type Distribution struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

// Distribute computes the distribution of a metric over all classes.
// Returns zero values for an empty input.
func Distribute(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	d := Distribution{
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
		Max:    sorted[n-1],
	}
	if n > 1 {
		d.StdDev = stat.StdDev(sorted, nil)
	}
	return d
}
