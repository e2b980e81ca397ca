package stableswap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func solveForTest(t *testing.T, balances []float64, amp uint64) float64 {
	t.Helper()
	d, err := SolveD(balances, amp, 1e-12, DefaultMaxIterations)
	require.NoError(t, err)
	return d
}

func TestSpotPriceBalancedPoolIsOne(t *testing.T) {
	balances := []float64{500_000, 500_000}
	for _, amp := range []uint64{1, 10, 100, 1000} {
		d := solveForTest(t, balances, amp)
		p, err := SpotPrice(balances, amp, d, 1, 0)
		require.NoError(t, err)
		require.InDelta(t, 1.0, p, 1e-12)
	}
}

func TestSpotPriceReciprocalRoundTrip(t *testing.T) {
	balances := []float64{120_000, 450_000}
	const amp = 42

	d := solveForTest(t, balances, amp)

	pij, err := SpotPrice(balances, amp, d, 0, 1)
	require.NoError(t, err)
	pji, err := SpotPrice(balances, amp, d, 1, 0)
	require.NoError(t, err)

	require.InDelta(t, 1.0, pij*pji, 1e-9)
}

func TestSpotPriceImbalanceDirection(t *testing.T) {
	// The scarcer asset must quote above the abundant one.
	balances := []float64{100_000, 300_000}
	const amp = 10

	d := solveForTest(t, balances, amp)

	scarceInAbundant, err := SpotPrice(balances, amp, d, 0, 1)
	require.NoError(t, err)
	require.Greater(t, scarceInAbundant, 1.0)

	abundantInScarce, err := SpotPrice(balances, amp, d, 1, 0)
	require.NoError(t, err)
	require.Less(t, abundantInScarce, 1.0)
}

func TestSpotPriceHighAmplificationFlattensCurve(t *testing.T) {
	// Raising A pushes the pool toward constant-sum behavior, so the price
	// of an imbalanced pool moves closer to 1.
	balances := []float64{100_000, 200_000}

	dLow := solveForTest(t, balances, 1)
	pLow, err := SpotPrice(balances, 1, dLow, 0, 1)
	require.NoError(t, err)

	dHigh := solveForTest(t, balances, 1000)
	pHigh, err := SpotPrice(balances, 1000, dHigh, 0, 1)
	require.NoError(t, err)

	require.Less(t, pHigh-1.0, pLow-1.0)
	require.Greater(t, pHigh, 1.0)
}

func TestSpotPriceRejectsDegeneratePool(t *testing.T) {
	// D = 0 comes from the all-zero balance vector; the price derivation
	// must reject it instead of dividing by zero.
	_, err := SpotPrice([]float64{100, 200}, 10, 0, 0, 1)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSpotPriceInvalidInput(t *testing.T) {
	balances := []float64{100, 200}
	d := solveForTest(t, balances, 10)

	_, err := SpotPrice(nil, 10, d, 0, 1)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = SpotPrice(balances, 0, d, 0, 1)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = SpotPrice(balances, 10, d, 0, 2)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = SpotPrice(balances, 10, d, -1, 1)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = SpotPrice(balances, 10, d, 1, 1)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = SpotPrice([]float64{100, 0}, 10, d, 0, 1)
	require.ErrorIs(t, err, ErrInvalidInput)
}
