package retrieval

import (
	"context"
	"errors"
	"testing"

	"marketbrief/internal/metric"
	"marketbrief/internal/testutil"
	"marketbrief/internal/validate"
)

func TestRetrieve_FirstSourceWins(t *testing.T) {
	first := testutil.NewMockSource("first", 240, nil)
	second := testutil.NewMockSource("second", 999, nil)

	engine := New(Config{
		Name:    "test_eps",
		Sources: []metric.Source{first, second},
		Bounds:  validate.EPSBounds(),
	})

	res := engine.Retrieve(context.Background())

	if res.Value != 240 {
		t.Errorf("Retrieve() = %v, want 240", res.Value)
	}
	if res.SourceName != "first" {
		t.Errorf("SourceName = %q, want %q", res.SourceName, "first")
	}
	if res.IsEstimate {
		t.Error("IsEstimate = true, want false for a live source")
	}
	if second.Calls != 0 {
		t.Errorf("second source invoked %d times, want 0 (first-success wins)", second.Calls)
	}
}

func TestRetrieve_FallsThroughFailures(t *testing.T) {
	fetchErr := errors.New("provider down")

	tests := []struct {
		name    string
		failing int
	}{
		{"one failing", 1},
		{"two failing", 2},
		{"four failing", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sources []metric.Source
			var mocks []*testutil.MockSource
			for i := 0; i < tt.failing; i++ {
				m := testutil.NewMockSource("failing", 0, fetchErr)
				mocks = append(mocks, m)
				sources = append(sources, m)
			}
			winner := testutil.NewMockSource("winner", 240, nil)
			sources = append(sources, winner)
			trailing := testutil.NewMockSource("trailing", 111, nil)
			sources = append(sources, trailing)

			engine := New(Config{
				Name:    "test_eps",
				Sources: sources,
				Bounds:  validate.EPSBounds(),
			})

			res := engine.Retrieve(context.Background())

			if res.Value != 240 {
				t.Errorf("Retrieve() = %v, want 240", res.Value)
			}
			if res.SourceName != "winner" {
				t.Errorf("SourceName = %q, want %q", res.SourceName, "winner")
			}
			for i, m := range mocks {
				if m.Calls != 1 {
					t.Errorf("failing source %d invoked %d times, want 1", i, m.Calls)
				}
			}
			if trailing.Calls != 0 {
				t.Errorf("trailing source invoked %d times, want 0", trailing.Calls)
			}
		})
	}
}

// Two sources fail, the third returns a quarterly-band reading against
// a 5600 reference index: the engine must return the ×4 corrected value
// from a live source.
func TestRetrieve_QuarterlyScenario(t *testing.T) {
	engine := New(Config{
		Name: "sp500_ttm_eps",
		Sources: []metric.Source{
			testutil.NewMockSource("a", 0, errors.New("timeout")),
			testutil.NewMockSource("b", 0, errors.New("bad body")),
			testutil.NewMockSource("c", 65, nil),
		},
		Bounds:    validate.EPSBounds(),
		Reference: 5600,
	})

	res := engine.Retrieve(context.Background())

	if res.Value != 260 {
		t.Errorf("Retrieve() = %v, want 260", res.Value)
	}
	if res.IsEstimate {
		t.Error("IsEstimate = true, want false")
	}
	if res.Adjustment != "Quarterly to TTM (×4)" {
		t.Errorf("Adjustment = %q, want %q", res.Adjustment, "Quarterly to TTM (×4)")
	}
	if res.SourceName != "c" {
		t.Errorf("SourceName = %q, want %q", res.SourceName, "c")
	}
}

func TestRetrieve_ImplausibleValueSkipped(t *testing.T) {
	engine := New(Config{
		Name: "test_eps",
		Sources: []metric.Source{
			testutil.NewMockSource("negative", -5, nil),
			testutil.NewMockSource("good", 240, nil),
		},
		Bounds: validate.EPSBounds(),
	})

	res := engine.Retrieve(context.Background())

	if res.SourceName != "good" {
		t.Errorf("SourceName = %q, want %q (implausible value skipped)", res.SourceName, "good")
	}
	if res.Value != 240 {
		t.Errorf("Retrieve() = %v, want 240", res.Value)
	}
}

func TestRetrieve_ExhaustedUsesEstimator(t *testing.T) {
	fetchErr := errors.New("provider down")

	engine := New(Config{
		Name: "test_eps",
		Sources: []metric.Source{
			testutil.NewMockSource("a", 0, fetchErr),
			testutil.NewMockSource("b", 0, fetchErr),
		},
		Bounds: validate.EPSBounds(),
		Aux: func(ctx context.Context) (float64, float64, error) {
			return 5600, 25, nil
		},
		Fallback: 240,
	})

	res := engine.Retrieve(context.Background())

	if !res.IsEstimate {
		t.Error("IsEstimate = false, want true after exhaustion")
	}
	if res.SourceName != "estimate" {
		t.Errorf("SourceName = %q, want %q", res.SourceName, "estimate")
	}

	// 5600 / 25 = 224; ratio must lie inside the configured band
	bounds := validate.EPSBounds()
	ratio := res.Value / 5600
	if ratio < bounds.RatioMin || ratio > bounds.RatioMax {
		t.Errorf("estimate ratio %v outside band [%v, %v]", ratio, bounds.RatioMin, bounds.RatioMax)
	}
}

func TestRetrieve_EverythingUnavailableUsesFallback(t *testing.T) {
	fetchErr := errors.New("provider down")

	tests := []struct {
		name string
		aux  AuxFunc
	}{
		{"no aux configured", nil},
		{"aux fails", func(ctx context.Context) (float64, float64, error) {
			return 0, 0, errors.New("quote down")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := New(Config{
				Name: "test_eps",
				Sources: []metric.Source{
					testutil.NewMockSource("a", 0, fetchErr),
				},
				Bounds:   validate.EPSBounds(),
				Aux:      tt.aux,
				Fallback: 240,
			})

			res := engine.Retrieve(context.Background())

			if res.Value != 240 {
				t.Errorf("Retrieve() = %v, want fallback 240", res.Value)
			}
			if !res.IsEstimate {
				t.Error("IsEstimate = false, want true for fallback constant")
			}
			if res.SourceName != FallbackSourceName {
				t.Errorf("SourceName = %q, want %q", res.SourceName, FallbackSourceName)
			}
		})
	}
}

func TestKey(t *testing.T) {
	engine := New(Config{Name: "sp500_ttm_eps"})
	if got := engine.Key(); got != "metric:sp500_ttm_eps" {
		t.Errorf("Key() = %q, want %q", got, "metric:sp500_ttm_eps")
	}
}
