package coordinator

import (
	"context"
	"fmt"
	"sync"

	"marketbrief/internal/metric"
)

// Retriever is one independent metric chain. *retrieval.Engine
// satisfies it. Each engine is sequential internally; only distinct
// metrics run concurrently.
type Retriever interface {
	// Retrieve walks the chain and always produces a result.
	Retrieve(ctx context.Context) metric.Result

	// Key returns the hierarchical key for the metric.
	// Format: metric:{name}
	Key() string
}

// Entry pairs a metric key with its retrieval outcome.
type Entry struct {
	Key    string
	Result metric.Result
}

// Coordinator runs independent metric chains concurrently and
// aggregates their results. Chains never fail, so Run only errors when
// nothing is configured.
type Coordinator struct {
	retrievers []Retriever
}

// New creates a new Coordinator with the given retrievers
func New(retrievers []Retriever) *Coordinator {
	return &Coordinator{
		retrievers: retrievers,
	}
}

// Run executes all retrievers concurrently and collects their results.
// Each retriever runs in its own goroutine and sends its entry to a
// shared channel; entries are returned in arrival order.
func (c *Coordinator) Run(ctx context.Context) ([]Entry, error) {
	if len(c.retrievers) == 0 {
		return nil, fmt.Errorf("no retrievers configured")
	}

	// Create a channel for collecting results
	entryChan := make(chan Entry, len(c.retrievers))

	// WaitGroup to track all worker goroutines
	var wg sync.WaitGroup

	// Launch a goroutine for each retriever
	for _, r := range c.retrievers {
		wg.Add(1)
		go func(rt Retriever) {
			defer wg.Done()

			entryChan <- Entry{
				Key:    rt.Key(),
				Result: rt.Retrieve(ctx),
			}
		}(r)
	}

	// Close the channel when all workers are done
	go func() {
		wg.Wait()
		close(entryChan)
	}()

	entries := make([]Entry, 0, len(c.retrievers))
	for entry := range entryChan {
		entries = append(entries, entry)
	}

	return entries, nil
}
