/*

Drawdown-based Value-at-Risk estimation over collections of price paths.

Each path contributes a single sample: its worst relative decline from the
path's own first value. Ranking those samples across all paths and selecting
a hard rank at the chosen confidence level yields the loss the pool is not
expected to exceed, which inverts into a collateral buffer multiplier.

*/

package risk

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hydration-labs/poolrisk/internal/types"
)

var (
	// ErrInvalidInput indicates an empty path collection, an empty path or an
	// alpha outside (0, 1].
	ErrInvalidInput = errors.New("invalid risk input")

	// ErrInvalidRange indicates a truncation step beyond a path's length.
	ErrInvalidRange = errors.New("step exceeds path length")

	// ErrArithmetic indicates a degenerate value that would propagate NaN or
	// Inf (a zero first price point, or a total-loss drawdown).
	ErrArithmetic = errors.New("degenerate arithmetic input")
)

// PathSource supplies price trajectories for the estimator, historical or
// simulated. Paths may be of equal or varying length.
type PathSource interface {
	GetPaths(ctx context.Context) ([]types.PricePath, error)
}

// Estimate is the outcome of one threshold estimation.
type Estimate struct {
	// ValueAtRisk is the selected drawdown sample, <= 0.
	ValueAtRisk float64 `json:"value_at_risk"`
	// ThresholdMultiplier is 1/(1+ValueAtRisk), always >= 1.
	ThresholdMultiplier float64 `json:"threshold_multiplier"`
	// SampleCount is the number of paths that contributed a drawdown.
	SampleCount int `json:"sample_count"`
}

// InitialDrawdown computes the worst relative decline of the series from its
// first value: min(path)/path[0] - 1. The result is <= 0, and exactly 0 for a
// path that never drops below its start.
func InitialDrawdown(path types.PricePath) (float64, error) {
	if len(path) == 0 {
		return 0, fmt.Errorf("%w: empty path", ErrInvalidInput)
	}
	first := path[0]
	if first == 0 {
		return 0, fmt.Errorf("%w: first path value is zero", ErrArithmetic)
	}

	min := first
	for _, v := range path[1:] {
		if v < min {
			min = v
		}
	}

	return min/first - 1, nil
}

// ThresholdMultiplier estimates the collateral buffer multiplier at the given
// confidence level.
//
// alpha must be in (0, 1]; e.g. 0.99 selects the drawdown at the 99th loss
// percentile. atStep > 0 truncates every path to its first atStep elements
// before the drawdown is computed; atStep == 0 uses each full path.
//
// Samples are sorted descending (mildest outcomes first, worst losses last)
// and the sample at index floor(n*alpha) is selected with no interpolation.
// For alpha = 1.0 that index is clamped to n-1, so full confidence selects
// the single worst drawdown.
func ThresholdMultiplier(paths []types.PricePath, alpha float64, atStep int) (Estimate, error) {
	if len(paths) == 0 {
		return Estimate{}, fmt.Errorf("%w: no paths", ErrInvalidInput)
	}
	if alpha <= 0 || alpha > 1 {
		return Estimate{}, fmt.Errorf("%w: alpha must be in (0, 1], got %g", ErrInvalidInput, alpha)
	}
	if atStep < 0 {
		return Estimate{}, fmt.Errorf("%w: atStep must be >= 0, got %d", ErrInvalidInput, atStep)
	}

	samples := make([]float64, 0, len(paths))
	for i, path := range paths {
		p := path
		if atStep > 0 {
			if atStep > len(path) {
				return Estimate{}, fmt.Errorf("%w: step %d, path %d has %d elements", ErrInvalidRange, atStep, i, len(path))
			}
			p = path[:atStep]
		}

		dd, err := InitialDrawdown(p)
		if err != nil {
			return Estimate{}, fmt.Errorf("path %d: %w", i, err)
		}
		samples = append(samples, dd)
	}

	// Drawdowns are <= 0, so descending order places the mildest outcomes
	// first and the worst losses last. Indexing by a fractional rank then
	// selects a specific percentile of loss severity.
	sort.Sort(sort.Reverse(sort.Float64Slice(samples)))

	idx := int(float64(len(samples)) * alpha)
	if idx >= len(samples) {
		idx = len(samples) - 1
	}

	valueAtRisk := samples[idx]
	if valueAtRisk <= -1 {
		return Estimate{}, fmt.Errorf("%w: value at risk %g implies total loss", ErrArithmetic, valueAtRisk)
	}

	return Estimate{
		ValueAtRisk:         valueAtRisk,
		ThresholdMultiplier: 1 / (1 + valueAtRisk),
		SampleCount:         len(samples),
	}, nil
}
