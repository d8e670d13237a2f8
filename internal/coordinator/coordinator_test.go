package coordinator

import (
	"context"
	"errors"
	"testing"

	"marketbrief/internal/metric"
	"marketbrief/internal/retrieval"
	"marketbrief/internal/testutil"
	"marketbrief/internal/validate"
)

func newTestEngine(name string, value float64, err error) *retrieval.Engine {
	return retrieval.New(retrieval.Config{
		Name:     name,
		Sources:  []metric.Source{testutil.NewMockSource(name, value, err)},
		Bounds:   validate.YieldBounds(),
		Fallback: 1,
	})
}

func TestNew(t *testing.T) {
	retrievers := []Retriever{
		newTestEngine("one", 100.0, nil),
		newTestEngine("two", 200.0, nil),
	}

	coord := New(retrievers)
	if coord == nil {
		t.Fatal("New() returned nil")
	}

	if len(coord.retrievers) != len(retrievers) {
		t.Errorf("New() created coordinator with %d retrievers, want %d", len(coord.retrievers), len(retrievers))
	}
}

func TestRun_Success(t *testing.T) {
	coord := New([]Retriever{
		newTestEngine("one", 100.50, nil),
		newTestEngine("two", 200.75, nil),
		newTestEngine("three", 300.25, nil),
	})

	entries, err := coord.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("Run() returned %d entries, want 3", len(entries))
	}

	byKey := make(map[string]metric.Result)
	for _, e := range entries {
		byKey[e.Key] = e.Result
	}

	if got := byKey["metric:one"].Value; got != 100.50 {
		t.Errorf("metric:one = %v, want 100.50", got)
	}
	if got := byKey["metric:two"].Value; got != 200.75 {
		t.Errorf("metric:two = %v, want 200.75", got)
	}
}

func TestRun_FailingChainsStillProduceEntries(t *testing.T) {
	// A chain whose only source fails falls back to its constant;
	// the coordinator still gets one entry per retriever.
	coord := New([]Retriever{
		newTestEngine("good", 100.0, nil),
		newTestEngine("bad", 0, errors.New("fetch failed")),
	})

	entries, err := coord.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Run() returned %d entries, want 2", len(entries))
	}

	for _, e := range entries {
		if e.Key == "metric:bad" {
			if !e.Result.IsEstimate {
				t.Error("failing chain's result not flagged as estimate")
			}
			if e.Result.Value != 1 {
				t.Errorf("failing chain's value = %v, want fallback 1", e.Result.Value)
			}
		}
	}
}

func TestRun_NoRetrievers(t *testing.T) {
	coord := New([]Retriever{})

	_, err := coord.Run(context.Background())
	if err == nil {
		t.Error("Run() expected error for no retrievers, got nil")
	}

	expectedErrMsg := "no retrievers configured"
	if err.Error() != expectedErrMsg {
		t.Errorf("Run() error = %q, want %q", err.Error(), expectedErrMsg)
	}
}
