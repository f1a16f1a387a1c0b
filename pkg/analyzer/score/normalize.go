package score

import "math"

// =============================================================================
// SCORE NORMALIZATION
// =============================================================================
//
// Each component metric is normalized to a 0-10 score where higher is better.
// Normalization is a fixed lookup ladder per metric, so identical inputs
// always produce identical scores and a score can be explained by pointing at
// the band the metric landed in.
//
// 1. DETERMINISTIC: No statistics over the project; one class scores the
//    same alone as inside a large codebase
// 2. CALIBRATED: Band boundaries follow the published CK thresholds
// 3. STEPPED: Bands, not curves, since the upstream metrics are small ints
//
// References:
// - Chidamber & Kemerer, "A Metrics Suite for Object Oriented Design" (1994)
// - McCabe, "A Complexity Measure" (1976): cyclomatic complexity > 10
// - NASA SATC object-oriented threshold studies
// =============================================================================

// -----------------------------------------------------------------------------
// Cohesion
// -----------------------------------------------------------------------------
//
// LCOM counts method pairs sharing no properties in excess of pairs that do.
// Zero is a perfectly cohesive class; small values are routine in classes
// with a few stateless helpers; 6+ means the class has at least two disjoint
// responsibility clusters and splitting it is usually mechanical.
// -----------------------------------------------------------------------------

// ScoreCohesion converts LCOM to a 0-10 score.
func ScoreCohesion(lcom int) int {
	switch {
	case lcom <= 0:
		return 10
	case lcom <= 2:
		return 8
	case lcom <= 5:
		return 5
	default:
		return 2
	}
}

// -----------------------------------------------------------------------------
// Complexity
// -----------------------------------------------------------------------------
//
// WMC sums the cyclomatic complexity of all methods, so it grows both with
// method count and with branching. Up to 10 is a small focused class; past
// 50 the class cannot be covered by a reviewable test suite.
// -----------------------------------------------------------------------------

// ScoreComplexity converts WMC to a 0-10 score.
func ScoreComplexity(wmc int) int {
	switch {
	case wmc <= 10:
		return 10
	case wmc <= 20:
		return 8
	case wmc <= 35:
		return 5
	case wmc <= 50:
		return 3
	default:
		return 1
	}
}

// -----------------------------------------------------------------------------
// Coupling
// -----------------------------------------------------------------------------
//
// Four signals, averaged: CBO (distinct collaborators either direction),
// RFC (methods plus distinct outbound calls), CA (who depends on us) and
// CE (whom we depend on). Averaging keeps one noisy signal from dominating:
// a stable utility class legitimately has high CA but low everything else.
// -----------------------------------------------------------------------------

func scoreCbo(cbo int) int {
	switch {
	case cbo <= 5:
		return 10
	case cbo <= 10:
		return 8
	case cbo <= 20:
		return 5
	default:
		return 2
	}
}

func scoreRfc(rfc int) int {
	switch {
	case rfc <= 15:
		return 10
	case rfc <= 30:
		return 8
	case rfc <= 50:
		return 5
	default:
		return 2
	}
}

func scoreCa(ca int) int {
	switch {
	case ca <= 3:
		return 10
	case ca <= 8:
		return 8
	case ca <= 15:
		return 5
	default:
		return 2
	}
}

func scoreCe(ce int) int {
	switch {
	case ce <= 5:
		return 10
	case ce <= 10:
		return 8
	case ce <= 20:
		return 5
	default:
		return 2
	}
}

// ScoreCoupling converts the coupling metrics to a 0-10 score by averaging
// the per-signal ladders.
func ScoreCoupling(cbo, rfc, ca, ce int) int {
	avg := float64(scoreCbo(cbo)+scoreRfc(rfc)+scoreCa(ca)+scoreCe(ce)) / 4
	return clamp(int(math.Round(avg)), 0, 10)
}

// -----------------------------------------------------------------------------
// Inheritance
// -----------------------------------------------------------------------------
//
// DIT and NOC, averaged. Depth beyond 4 makes behavior lookup an exercise
// in archaeology; a wide child fan-out means every change to the parent is
// a change to many classes at once.
// -----------------------------------------------------------------------------

func scoreDit(dit int) int {
	switch {
	case dit <= 2:
		return 10
	case dit <= 4:
		return 8
	case dit <= 6:
		return 5
	default:
		return 2
	}
}

func scoreNoc(noc int) int {
	switch {
	case noc <= 3:
		return 10
	case noc <= 7:
		return 8
	case noc <= 12:
		return 5
	default:
		return 2
	}
}

// ScoreInheritance converts DIT and NOC to a 0-10 score by averaging the
// per-signal ladders.
func ScoreInheritance(dit, noc int) int {
	avg := float64(scoreDit(dit)+scoreNoc(noc)) / 2
	return clamp(int(math.Round(avg)), 0, 10)
}

// -----------------------------------------------------------------------------
// Architecture
// -----------------------------------------------------------------------------
//
// Counts architecture violations attributed to the class (or, at project
// level, in total): forbidden layer dependencies, dependency inversions and
// cycle participation. The ladder is steep because a single violation is
// already a structural defect, not a style issue.
// -----------------------------------------------------------------------------

// ScoreArchitecture converts a violation count to a 0-10 score.
func ScoreArchitecture(violations int) int {
	switch {
	case violations <= 0:
		return 10
	case violations == 1:
		return 7
	case violations <= 3:
		return 4
	default:
		return 1
	}
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
