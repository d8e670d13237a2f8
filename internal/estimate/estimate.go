// Package estimate produces a synthetic metric value when every live
// source has failed. It is the non-failing leaf of the fallback chain.
package estimate

import (
	"log/slog"
	"time"

	"marketbrief/internal/metric"
	"marketbrief/internal/validate"
)

// SourceName marks results produced by the estimator.
const SourceName = "estimate"

// Estimator derives a metric from an index level and a reference ratio
// (for an EPS metric: index level divided by P/E).
type Estimator struct {
	bounds validate.Bounds
}

// New creates an Estimator using the same bounds as the metric's
// validator, so the quarterly/TTM heuristic matches.
func New(bounds validate.Bounds) Estimator {
	return Estimator{bounds: bounds}
}

// Estimate computes indexValue / referenceRatio, applies the wrong-unit
// correction, and overrides the result with TargetRatio × indexValue if
// the derived ratio is still outside the expected band. It always
// returns a result marked IsEstimate, with Adjustment recording which
// path produced the value.
func (e Estimator) Estimate(indexValue, referenceRatio float64) metric.Result {
	res := metric.Result{
		SourceName:  SourceName,
		RetrievedAt: time.Now(),
		IsEstimate:  true,
	}

	if indexValue <= 0 || referenceRatio <= 0 {
		res.Value = 0
		res.Adjustment = "no auxiliary inputs"
		return res
	}

	value := indexValue / referenceRatio
	adjustment := "derived from index level and reference ratio"

	if e.bounds.WrongUnitScale != 0 && value >= e.bounds.WrongUnitLow && value <= e.bounds.WrongUnitHigh {
		value *= e.bounds.WrongUnitScale
		adjustment = e.bounds.WrongUnitTag
	}

	if e.bounds.TargetRatio != 0 {
		ratio := value / indexValue
		if ratio < e.bounds.RatioMin || ratio > e.bounds.RatioMax {
			value = indexValue * e.bounds.TargetRatio
			adjustment = "target ratio override"
			slog.Warn("estimate outside expected band, using target ratio",
				"index", indexValue,
				"reference_ratio", referenceRatio,
				"target_ratio", e.bounds.TargetRatio,
				"value", value)
		}
	}

	res.Value = value
	res.Adjustment = adjustment
	return res
}
