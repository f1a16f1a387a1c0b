package analyzer

import (
	"context"

	"github.com/augurlabs/augur/pkg/facts"
)

// FactAnalyzer is the interface implemented by analyzers that work from
// class facts alone, without needing the dependency graph.
type FactAnalyzer[T any] interface {
	// Analyze processes a collection of class facts and returns the
	// analysis result. The context can be used for cancellation and
	// progress reporting.
	Analyze(ctx context.Context, classes []facts.ClassFact) (T, error)

	// Close releases any resources held by the analyzer.
	Close()
}
