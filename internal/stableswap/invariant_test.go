package stableswap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSolveDBalancedPoolEqualsSum(t *testing.T) {
	// For a perfectly balanced pool the iteration fixes D = sum(balances)
	// on the first step, for any amplification.
	for _, amp := range []uint64{1, 5, 10, 100, 1000} {
		d, err := SolveD([]float64{1_000_000, 1_000_000}, amp, 1e-12, DefaultMaxIterations)
		require.NoError(t, err)
		require.InDelta(t, 2_000_000, d, 1e-6)
	}
}

func TestSolveDPermutationInvariance(t *testing.T) {
	balances := []float64{1250.5, 980000.25, 33333.75}
	permuted := []float64{980000.25, 33333.75, 1250.5}

	d1, err := SolveD(balances, 85, 1e-10, DefaultMaxIterations)
	require.NoError(t, err)
	d2, err := SolveD(permuted, 85, 1e-10, DefaultMaxIterations)
	require.NoError(t, err)

	require.Equal(t, d1, d2)
}

func TestSolveDBoundedBySumAndGeometricMean(t *testing.T) {
	balances := []float64{100_000, 400_000}
	d, err := SolveD(balances, 10, 1e-10, DefaultMaxIterations)
	require.NoError(t, err)

	sum := balances[0] + balances[1]
	geoMean := math.Sqrt(balances[0] * balances[1])

	// The invariant of an imbalanced pool lies strictly between the
	// constant-product and constant-sum solutions.
	require.Less(t, d, sum)
	require.Greater(t, d, 2*geoMean)
}

func TestSolveDDegenerateZeroPool(t *testing.T) {
	d, err := SolveD([]float64{0, 0}, 10, 1e-10, DefaultMaxIterations)
	require.NoError(t, err)
	require.Zero(t, d)
}

func TestSolveDInvalidInput(t *testing.T) {
	valid := []float64{100, 200}

	_, err := SolveD(nil, 10, 1e-10, DefaultMaxIterations)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = SolveD(valid, 0, 1e-10, DefaultMaxIterations)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = SolveD([]float64{100, -200}, 10, 1e-10, DefaultMaxIterations)
	require.ErrorIs(t, err, ErrInvalidInput)

	// A zero balance in an otherwise funded pool is invalid, not degenerate.
	_, err = SolveD([]float64{100, 0}, 10, 1e-10, DefaultMaxIterations)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = SolveD([]float64{100, math.NaN()}, 10, 1e-10, DefaultMaxIterations)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = SolveD(valid, 10, 0, DefaultMaxIterations)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = SolveD(valid, 10, 1e-10, 0)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSolveDNonConvergenceIsAnError(t *testing.T) {
	// One iteration from D0 = sum cannot satisfy a tight precision bound on
	// a heavily imbalanced pool; the solver must fail rather than return the
	// last iterate.
	_, err := SolveD([]float64{1_000, 2_000_000}, 10, 1e-12, 1)
	require.ErrorIs(t, err, ErrNonConvergence)
}

func TestConvergedAsymmetricTieBreak(t *testing.T) {
	// Precision chosen as an exact binary fraction so the boundary cases
	// carry no rounding noise.
	const precision = 0.25

	// Decreasing iterate: strict "<", so a diff exactly at the bound does
	// not terminate.
	require.False(t, converged(1.0, 0.75, precision))
	// Increasing iterate: non-strict "<=", the same diff does terminate.
	require.True(t, converged(1.0, 1.25, precision))

	// Strictly inside the bound terminates in both directions.
	require.True(t, converged(1.0, 0.875, precision))
	require.True(t, converged(1.0, 1.125, precision))

	// Outside the bound never terminates.
	require.False(t, converged(1.0, 0.5, precision))
	require.False(t, converged(1.0, 1.5, precision))

	// A repeated iterate is a decreasing diff of zero.
	require.True(t, converged(1.0, 1.0, precision))
}
