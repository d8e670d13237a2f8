package metric

import (
	"context"
	"time"
)

// Result is the outcome of one retrieval attempt for a single metric.
// It is constructed fresh per call and immutable once returned; the
// retrieval engine never caches it (callers may).
type Result struct {
	// Value is the acquired metric (an EPS figure, a yield, a risk score).
	Value float64

	// SourceName and SourceURL record provenance. SourceName is
	// "estimate" for synthetic values and "fallback" for the
	// last-resort constant.
	SourceName string
	SourceURL  string

	// RetrievedAt is when the value was produced.
	RetrievedAt time.Time

	// IsEstimate is true when the value came from the estimator or the
	// fallback constant rather than a live source.
	IsEstimate bool

	// Adjustment describes any correction applied to the raw value,
	// e.g. "Quarterly to TTM (×4)". Empty when the value was accepted
	// as-is.
	Adjustment string
}

// Source is one provider-specific fetch in a fallback chain.
// Implementations are stateless and owned by exactly one chain;
// failures are recovered by moving to the next source, never by
// re-hitting the same one.
type Source interface {
	// Name identifies the provider, e.g. "alphavantage".
	Name() string

	// Fetch retrieves the metric from the provider. The returned
	// Result carries provenance; Value is raw and uncorrected.
	Fetch(ctx context.Context) (Result, error)
}
