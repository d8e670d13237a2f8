package testutil

import (
	"context"
	"time"

	"marketbrief/internal/analysisjob"
	"marketbrief/internal/metric"
)

// MockSource is a mock implementation of the metric.Source interface for testing
type MockSource struct {
	NameFunc  func() string
	FetchFunc func(ctx context.Context) (metric.Result, error)

	// Calls counts Fetch invocations, for first-success-wins assertions
	Calls int
}

// Name implements the Source interface
func (m *MockSource) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return "mock"
}

// Fetch implements the Source interface
func (m *MockSource) Fetch(ctx context.Context) (metric.Result, error) {
	m.Calls++
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx)
	}
	return metric.Result{}, nil
}

// NewMockSource creates a simple mock source with a predefined value or error
func NewMockSource(name string, value float64, err error) *MockSource {
	return &MockSource{
		NameFunc: func() string {
			return name
		},
		FetchFunc: func(ctx context.Context) (metric.Result, error) {
			if err != nil {
				return metric.Result{}, err
			}
			return metric.Result{
				Value:       value,
				SourceName:  name,
				SourceURL:   "https://example.com/" + name,
				RetrievedAt: time.Now(),
			}, nil
		},
	}
}

// ScriptedJobClient replays a fixed sequence of statuses for
// orchestrator tests. Once the script runs out, the last status
// repeats.
type ScriptedJobClient struct {
	TriggerErr error
	Statuses   []analysisjob.Status
	StatusErrs []error
	ResultData string
	ResultErr  error

	TriggerCalls int
	StatusCalls  int
	ResultCalls  int
}

// TriggerRefresh implements the JobClient interface
func (s *ScriptedJobClient) TriggerRefresh(ctx context.Context) error {
	s.TriggerCalls++
	return s.TriggerErr
}

// CheckStatus implements the JobClient interface
func (s *ScriptedJobClient) CheckStatus(ctx context.Context) (analysisjob.Status, error) {
	idx := s.StatusCalls
	s.StatusCalls++

	if idx < len(s.StatusErrs) && s.StatusErrs[idx] != nil {
		return analysisjob.Status{}, s.StatusErrs[idx]
	}

	if len(s.Statuses) == 0 {
		return analysisjob.Status{State: analysisjob.StateProcessing}, nil
	}
	if idx >= len(s.Statuses) {
		idx = len(s.Statuses) - 1
	}
	return s.Statuses[idx], nil
}

// FetchResult implements the JobClient interface
func (s *ScriptedJobClient) FetchResult(ctx context.Context) (string, error) {
	s.ResultCalls++
	return s.ResultData, s.ResultErr
}
