package risk

import (
	"testing"

	"github.com/hydration-labs/poolrisk/internal/types"
	"github.com/stretchr/testify/require"
)

func TestInitialDrawdownMonotonicIncreaseIsZero(t *testing.T) {
	dd, err := InitialDrawdown(types.PricePath{10, 11, 12, 15, 20})
	require.NoError(t, err)
	require.Zero(t, dd)
}

func TestInitialDrawdownAgainstOwnFirstValue(t *testing.T) {
	// Worst decline is to 5 from a start of 10, regardless of the later
	// recovery above the starting value.
	dd, err := InitialDrawdown(types.PricePath{10, 8, 5, 12, 14})
	require.NoError(t, err)
	require.InDelta(t, -0.5, dd, 1e-12)
}

func TestInitialDrawdownSingleElement(t *testing.T) {
	dd, err := InitialDrawdown(types.PricePath{42})
	require.NoError(t, err)
	require.Zero(t, dd)
}

func TestInitialDrawdownFailures(t *testing.T) {
	_, err := InitialDrawdown(nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = InitialDrawdown(types.PricePath{0, 1, 2})
	require.ErrorIs(t, err, ErrArithmetic)
}

// pathsWithDrawdowns builds one path per desired drawdown sample, each
// starting at 10.
func pathsWithDrawdowns(drawdowns ...float64) []types.PricePath {
	paths := make([]types.PricePath, 0, len(drawdowns))
	for _, dd := range drawdowns {
		paths = append(paths, types.PricePath{10, 10 * (1 + dd), 10})
	}
	return paths
}

func TestThresholdMultiplierKnownQuantile(t *testing.T) {
	// Samples sorted descending: [0, 0, -0.1, -0.3, -0.5].
	// floor(5 * 0.5) = 2 selects -0.1, multiplier = 1/(1-0.1).
	paths := pathsWithDrawdowns(-0.5, -0.3, -0.1, 0, 0)

	est, err := ThresholdMultiplier(paths, 0.5, 0)
	require.NoError(t, err)
	require.InDelta(t, -0.1, est.ValueAtRisk, 1e-12)
	require.InDelta(t, 1.0/0.9, est.ThresholdMultiplier, 1e-12)
	require.Equal(t, 5, est.SampleCount)
}

func TestThresholdMultiplierAlphaOneSelectsWorstLoss(t *testing.T) {
	// floor(5 * 1.0) = 5 is out of range and clamps to the last index,
	// which holds the worst drawdown.
	paths := pathsWithDrawdowns(-0.5, -0.3, -0.1, 0, 0)

	est, err := ThresholdMultiplier(paths, 1.0, 0)
	require.NoError(t, err)
	require.InDelta(t, -0.5, est.ValueAtRisk, 1e-12)
	require.InDelta(t, 2.0, est.ThresholdMultiplier, 1e-12)
}

func TestThresholdMultiplierIsAtLeastOne(t *testing.T) {
	paths := pathsWithDrawdowns(-0.9, -0.25, 0)
	for _, alpha := range []float64{0.01, 0.34, 0.5, 0.67, 0.99, 1.0} {
		est, err := ThresholdMultiplier(paths, alpha, 0)
		require.NoError(t, err)
		require.GreaterOrEqual(t, est.ThresholdMultiplier, 1.0)
	}
}

func TestThresholdMultiplierTruncation(t *testing.T) {
	// The decline happens at step 2; truncating to the first two elements
	// must hide it.
	paths := []types.PricePath{{10, 10, 4}, {10, 10, 5}}

	full, err := ThresholdMultiplier(paths, 1.0, 0)
	require.NoError(t, err)
	require.InDelta(t, -0.6, full.ValueAtRisk, 1e-12)

	truncated, err := ThresholdMultiplier(paths, 1.0, 2)
	require.NoError(t, err)
	require.Zero(t, truncated.ValueAtRisk)
	require.InDelta(t, 1.0, truncated.ThresholdMultiplier, 1e-12)
}

func TestThresholdMultiplierStepBeyondPathLength(t *testing.T) {
	paths := []types.PricePath{{10, 9, 8}}
	_, err := ThresholdMultiplier(paths, 0.5, 4)
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestThresholdMultiplierInvalidInput(t *testing.T) {
	paths := pathsWithDrawdowns(-0.1)

	_, err := ThresholdMultiplier(nil, 0.5, 0)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = ThresholdMultiplier(paths, 0, 0)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = ThresholdMultiplier(paths, 1.5, 0)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = ThresholdMultiplier(paths, 0.5, -1)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestThresholdMultiplierDegenerateFirstValue(t *testing.T) {
	paths := []types.PricePath{{0, 1, 2}}
	_, err := ThresholdMultiplier(paths, 0.5, 0)
	require.ErrorIs(t, err, ErrArithmetic)
}

func TestThresholdMultiplierTotalLoss(t *testing.T) {
	paths := []types.PricePath{{10, 0, 10}}
	_, err := ThresholdMultiplier(paths, 1.0, 0)
	require.ErrorIs(t, err, ErrArithmetic)
}
