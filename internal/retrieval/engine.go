// Package retrieval walks an ordered list of unreliable sources until
// one yields a plausible value, falling back to a synthetic estimate
// and finally to a hardcoded constant. Retrieve never fails.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"marketbrief/internal/estimate"
	"marketbrief/internal/metric"
	"marketbrief/internal/validate"
)

// FallbackSourceName marks results produced by the last-resort constant.
const FallbackSourceName = "fallback"

const defaultSourceTimeout = 30 * time.Second

// AuxFunc supplies the auxiliary inputs the estimator needs (for an EPS
// metric: the current index level and a trailing P/E). It is consulted
// only after every live source has failed.
type AuxFunc func(ctx context.Context) (indexValue, referenceRatio float64, err error)

// Config describes one metric's fallback chain.
type Config struct {
	// Name identifies the metric, e.g. "sp500_ttm_eps". Used in logs
	// and as the coordinator key.
	Name string

	// Sources are tried strictly in order; the first plausible
	// (post-correction) value wins and later sources are not invoked.
	Sources []metric.Source

	// Bounds drive both validation and estimation for this metric.
	Bounds validate.Bounds

	// Reference is the quantity the ratio check compares against (the
	// current index level for an EPS metric). Zero skips the check.
	Reference float64

	// Aux supplies estimator inputs. Nil when the metric has no
	// independent auxiliaries, in which case exhaustion goes straight
	// to the fallback constant.
	Aux AuxFunc

	// Fallback is the conservative constant returned when the sources
	// and the estimator are all unavailable.
	Fallback float64

	// SourceTimeout bounds each source's Fetch. Defaults to 30s.
	SourceTimeout time.Duration
}

// Engine retrieves one metric through a fixed-priority fallback chain.
// Each Retrieve call owns its own state; concurrent calls for different
// metrics are safe, and identical concurrent calls are not deduplicated.
type Engine struct {
	cfg       Config
	validator validate.Validator
	estimator estimate.Estimator
}

// New creates an Engine for the given chain configuration.
func New(cfg Config) *Engine {
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = defaultSourceTimeout
	}
	return &Engine{
		cfg:       cfg,
		validator: validate.New(cfg.Bounds),
		estimator: estimate.New(cfg.Bounds),
	}
}

// Key returns the hierarchical key for this metric.
// Format: metric:{name}
func (e *Engine) Key() string {
	return fmt.Sprintf("metric:%s", e.cfg.Name)
}

// Retrieve walks the source list in priority order and returns the
// first plausible corrected value. Source failures are logged and
// skipped; an exhausted chain falls back to the estimator and then to
// the fallback constant. Retrieve never returns an error.
func (e *Engine) Retrieve(ctx context.Context) metric.Result {
	for _, src := range e.cfg.Sources {
		res, err := e.fetchOne(ctx, src)
		if err != nil {
			slog.Warn("source failed, trying next",
				"metric", e.cfg.Name,
				"source", src.Name(),
				"error", err)
			continue
		}

		value, adjustment, ok := e.validator.Validate(res.Value, e.cfg.Reference)
		if !ok {
			slog.Warn("source returned implausible value, trying next",
				"metric", e.cfg.Name,
				"source", src.Name(),
				"raw", res.Value)
			continue
		}

		res.Value = value
		res.Adjustment = adjustment
		return res
	}

	slog.Warn("all sources exhausted, estimating", "metric", e.cfg.Name)

	if e.cfg.Aux != nil {
		indexValue, referenceRatio, err := e.cfg.Aux(ctx)
		if err != nil {
			slog.Warn("auxiliary inputs unavailable",
				"metric", e.cfg.Name,
				"error", err)
		} else {
			res := e.estimator.Estimate(indexValue, referenceRatio)
			if res.Value > 0 {
				return res
			}
		}
	}

	return metric.Result{
		Value:       e.cfg.Fallback,
		SourceName:  FallbackSourceName,
		RetrievedAt: time.Now(),
		IsEstimate:  true,
		Adjustment:  "all sources and estimator unavailable",
	}
}

// fetchOne invokes a single source under the per-source time budget.
func (e *Engine) fetchOne(ctx context.Context, src metric.Source) (metric.Result, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.SourceTimeout)
	defer cancel()

	return src.Fetch(fetchCtx)
}
