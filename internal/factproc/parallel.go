// Package factproc provides concurrent processing utilities for class
// facts. Results are slot-ordered: the result for classes[i] is always
// written to results[i], so callers get deterministic output regardless
// of scheduling.
package factproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/augurlabs/augur/pkg/facts"
	"github.com/sourcegraph/conc/pool"
)

// ProcessingError represents an error that occurred while processing a
// single class.
type ProcessingError struct {
	Class string
	Err   error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Class, e.Err)
}

// ProcessingErrors collects multiple class processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(class string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Class: class, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d classes failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// Unwrap returns nil (ProcessingErrors doesn't wrap a single error).
func (e *ProcessingErrors) Unwrap() error {
	return nil
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker
// count. Per-class analysis is CPU-bound string and set work; 2x keeps
// the pool busy across uneven class sizes.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each class is processed.
type ProgressFunc func()

// ErrorFunc is called when processing a class fails.
// Receives the class's qualified name and the error. If nil, errors are
// silently skipped.
type ErrorFunc func(class string, err error)

// Map processes classes in parallel, calling fn for each fact.
// The result of fn(classes[i]) lands in slot i of the returned slice;
// slots for failed classes hold the zero value.
// Uses 2x NumCPU workers.
func Map[T any](classes []facts.ClassFact, fn func(facts.ClassFact) (T, error)) []T {
	return MapN(classes, 0, fn, nil, nil)
}

// MapN processes classes with configurable worker count and callbacks.
// If maxWorkers is <= 0, defaults to 2x NumCPU.
func MapN[T any](classes []facts.ClassFact, maxWorkers int, fn func(facts.ClassFact) (T, error), onProgress ProgressFunc, onError ErrorFunc) []T {
	if len(classes) == 0 {
		return nil
	}

	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	// Fixed slots: each goroutine writes only results[i], so no mutex
	// is needed for the result slice itself.
	results := make([]T, len(classes))

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for i, class := range classes {
		p.Go(func() {
			result, err := fn(class)

			if err != nil {
				if onError != nil {
					onError(class.QualifiedName(), err)
				}
				if onProgress != nil {
					onProgress()
				}
				return
			}

			results[i] = result

			if onProgress != nil {
				onProgress()
			}
		})
	}
	p.Wait()

	return results
}

// MapWithContext processes classes in parallel with context cancellation
// support. Results keep their slot order; any per-class or context errors
// are collected and returned alongside the partial results.
func MapWithContext[T any](ctx context.Context, classes []facts.ClassFact, fn func(facts.ClassFact) (T, error)) ([]T, *ProcessingErrors) {
	return MapWithContextN(ctx, classes, 0, fn, nil)
}

// MapWithContextN processes classes with context, worker count, and an
// optional progress callback.
func MapWithContextN[T any](ctx context.Context, classes []facts.ClassFact, maxWorkers int, fn func(facts.ClassFact) (T, error), onProgress ProgressFunc) ([]T, *ProcessingErrors) {
	if len(classes) == 0 {
		return nil, nil
	}

	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	results := make([]T, len(classes))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for i, class := range classes {
		p.Go(func(ctx context.Context) error {
			// Check for cancellation before processing
			select {
			case <-ctx.Done():
				errs.Add(class.QualifiedName(), ctx.Err())
				if onProgress != nil {
					onProgress()
				}
				return ctx.Err()
			default:
			}

			result, err := fn(class)

			if err != nil {
				errs.Add(class.QualifiedName(), err)
				if onProgress != nil {
					onProgress()
				}
				return nil // Don't stop the pool on individual class errors
			}

			results[i] = result

			if onProgress != nil {
				onProgress()
			}
			return nil
		})
	}
	_ = p.Wait() // Context errors are already captured in errs

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}
