package factproc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/augurlabs/augur/pkg/facts"
)

func testClasses(n int) []facts.ClassFact {
	classes := make([]facts.ClassFact, n)
	for i := range classes {
		classes[i] = facts.ClassFact{
			Name:    fmt.Sprintf("Class%d", i),
			Package: "example",
		}
	}
	return classes
}

func TestMap_PreservesOrder(t *testing.T) {
	classes := testClasses(50)

	results := Map(classes, func(f facts.ClassFact) (string, error) {
		return f.Name, nil
	})

	if len(results) != 50 {
		t.Fatalf("expected 50 results, got %d", len(results))
	}
	for i, got := range results {
		want := fmt.Sprintf("Class%d", i)
		if got != want {
			t.Errorf("results[%d] = %q, want %q", i, got, want)
		}
	}
}

func TestMap_Empty(t *testing.T) {
	results := Map(nil, func(f facts.ClassFact) (int, error) {
		return 1, nil
	})
	if results != nil {
		t.Errorf("expected nil results for empty input, got %v", results)
	}
}

func TestMapN_WorkerLimit(t *testing.T) {
	classes := testClasses(20)

	var active, peak int32
	var mu sync.Mutex

	MapN(classes, 4, func(f facts.ClassFact) (int, error) {
		n := atomic.AddInt32(&active, 1)
		mu.Lock()
		if n > peak {
			peak = n
		}
		mu.Unlock()
		atomic.AddInt32(&active, -1)
		return 0, nil
	}, nil, nil)

	mu.Lock()
	defer mu.Unlock()
	if peak > 4 {
		t.Errorf("observed %d concurrent workers, limit was 4", peak)
	}
}

func TestMapN_ErrorCallback(t *testing.T) {
	classes := testClasses(3)

	var mu sync.Mutex
	var failed []string
	boom := errors.New("boom")

	results := MapN(classes, 0, func(f facts.ClassFact) (string, error) {
		if f.Name == "Class1" {
			return "", boom
		}
		return f.Name, nil
	}, nil, func(class string, err error) {
		mu.Lock()
		failed = append(failed, class)
		mu.Unlock()
	})

	if len(failed) != 1 || failed[0] != "example.Class1" {
		t.Errorf("error callback got %v, want [example.Class1]", failed)
	}
	// Failed slot holds the zero value; others keep their results.
	if results[1] != "" {
		t.Errorf("failed slot = %q, want zero value", results[1])
	}
	if results[0] != "Class0" || results[2] != "Class2" {
		t.Errorf("successful slots corrupted: %v", results)
	}
}

func TestMapN_Progress(t *testing.T) {
	classes := testClasses(10)

	var ticks int32
	MapN(classes, 0, func(f facts.ClassFact) (int, error) {
		return 0, nil
	}, func() {
		atomic.AddInt32(&ticks, 1)
	}, nil)

	if got := atomic.LoadInt32(&ticks); got != 10 {
		t.Errorf("progress ticks = %d, want 10", got)
	}
}

func TestMapWithContext_Cancellation(t *testing.T) {
	classes := testClasses(100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel before processing starts

	results, errs := MapWithContext(ctx, classes, func(f facts.ClassFact) (int, error) {
		return 1, nil
	})

	if errs == nil || !errs.HasErrors() {
		t.Fatal("expected errors from cancelled context")
	}
	if len(results) != 100 {
		t.Errorf("expected 100 result slots, got %d", len(results))
	}
}

func TestMapWithContext_NoErrors(t *testing.T) {
	classes := testClasses(5)

	results, errs := MapWithContext(context.Background(), classes, func(f facts.ClassFact) (string, error) {
		return f.QualifiedName(), nil
	})

	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if results[3] != "example.Class3" {
		t.Errorf("results[3] = %q, want example.Class3", results[3])
	}
}

func TestProcessingError(t *testing.T) {
	err := ProcessingError{Class: "example.User", Err: errors.New("bad fact")}
	want := "example.User: bad fact"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestProcessingErrors(t *testing.T) {
	errs := &ProcessingErrors{}
	if errs.HasErrors() {
		t.Error("new ProcessingErrors should have no errors")
	}
	if errs.Error() != "no errors" {
		t.Errorf("empty Error() = %q", errs.Error())
	}

	errs.Add("a.A", errors.New("first"))
	if !errs.HasErrors() {
		t.Error("expected HasErrors after Add")
	}
	if errs.Error() != "a.A: first" {
		t.Errorf("single Error() = %q", errs.Error())
	}

	errs.Add("b.B", errors.New("second"))
	want := "2 classes failed to process (first: a.A: first)"
	if errs.Error() != want {
		t.Errorf("multi Error() = %q, want %q", errs.Error(), want)
	}
}

func TestProcessingErrors_ThreadSafe(t *testing.T) {
	errs := &ProcessingErrors{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs.Add(fmt.Sprintf("c.C%d", n), errors.New("err"))
		}(i)
	}
	wg.Wait()

	if len(errs.Errors) != 50 {
		t.Errorf("expected 50 errors, got %d", len(errs.Errors))
	}
}

func TestProcessingErrors_Unwrap(t *testing.T) {
	errs := &ProcessingErrors{}
	errs.Add("a.A", errors.New("x"))
	if errs.Unwrap() != nil {
		t.Error("Unwrap should return nil")
	}
}
