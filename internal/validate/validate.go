// Package validate applies domain sanity bounds to raw metric values,
// correcting known wrong-unit readings and warning on implausible ones.
package validate

import (
	"log/slog"
	"math"
)

// Bounds names the sanity limits for one metric type. Zero-valued
// fields disable the corresponding check, so a metric with no known
// wrong-unit band simply leaves WrongUnitScale at zero.
type Bounds struct {
	// Raw values in [WrongUnitLow, WrongUnitHigh] are assumed to be
	// reported in the wrong unit and are multiplied by WrongUnitScale.
	// WrongUnitTag is recorded as the adjustment when the correction
	// fires.
	WrongUnitLow   float64
	WrongUnitHigh  float64
	WrongUnitScale float64
	WrongUnitTag   string

	// Expected band for value/reference. Values outside the band are
	// accepted with a warning (soft validation): a slightly-off live
	// reading beats a guess.
	RatioMin float64
	RatioMax float64

	// TargetRatio is the ratio used by the estimator when it has to
	// override an implausible derived value.
	TargetRatio float64
}

// EPSBounds returns the bounds for a trailing-twelve-month index EPS.
// A raw reading in the 50-80 range is almost certainly a single-quarter
// figure, and a TTM EPS is expected to be 3%-5% of the index level.
func EPSBounds() Bounds {
	return Bounds{
		WrongUnitLow:   50,
		WrongUnitHigh:  80,
		WrongUnitScale: 4,
		WrongUnitTag:   "Quarterly to TTM (×4)",
		RatioMin:       0.03,
		RatioMax:       0.05,
		TargetRatio:    0.04,
	}
}

// YieldBounds returns the bounds for a treasury yield in percent. There
// is no wrong-unit band and no reference ratio; only basic plausibility
// applies.
func YieldBounds() Bounds {
	return Bounds{}
}

// Validator checks and corrects raw values against one metric's bounds.
type Validator struct {
	bounds Bounds
}

// New creates a Validator for the given bounds.
func New(bounds Bounds) Validator {
	return Validator{bounds: bounds}
}

// Bounds returns the bounds this validator applies.
func (v Validator) Bounds() Bounds {
	return v.bounds
}

// Validate applies the correction policy to a raw reading, first match
// wins:
//
//  1. A raw value inside the wrong-unit band is rescaled and tagged.
//  2. A corrected value whose ratio to the reference falls outside the
//     expected band is accepted with a warning, never discarded.
//  3. Otherwise the value is accepted as-is.
//
// reference <= 0 means no reference quantity is available and the ratio
// check is skipped. The returned ok is false only for values that are
// unusable outright (non-finite or non-positive); rejection is recovered
// by the caller moving on, never surfaced.
func (v Validator) Validate(raw, reference float64) (value float64, adjustment string, ok bool) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw <= 0 {
		return 0, "", false
	}

	value = raw
	if v.bounds.WrongUnitScale != 0 && raw >= v.bounds.WrongUnitLow && raw <= v.bounds.WrongUnitHigh {
		value = raw * v.bounds.WrongUnitScale
		adjustment = v.bounds.WrongUnitTag
		slog.Info("corrected wrong-unit reading",
			"raw", raw,
			"corrected", value,
			"adjustment", adjustment)
	}

	if v.bounds.RatioMin != 0 && reference > 0 {
		ratio := value / reference
		if ratio < v.bounds.RatioMin || ratio > v.bounds.RatioMax {
			slog.Warn("value outside expected band, accepting anyway",
				"value", value,
				"reference", reference,
				"ratio", ratio,
				"band_min", v.bounds.RatioMin,
				"band_max", v.bounds.RatioMax)
		}
	}

	return value, adjustment, true
}
