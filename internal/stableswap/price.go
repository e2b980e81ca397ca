package stableswap

import (
	"fmt"
	"math"
	"sort"
)

// SpotPrice derives the marginal exchange rate between two pool balances from
// a precomputed invariant d (as returned by SolveD for the same balances and
// amplification).
//
// With xi = balances[baseIdx] and xj = balances[quoteIdx] the returned rate
// is xj*(ann*xi+c)/(ann*xj+c)/xi. Index order is caller-selected; call sites
// document which orientation they use. The result is finite and positive for
// valid inputs; callers invert it when their quote convention requires.
func SpotPrice(balances []float64, amplification uint64, d float64, baseIdx, quoteIdx int) (float64, error) {
	n := len(balances)
	if n == 0 {
		return 0, fmt.Errorf("%w: no balances", ErrInvalidInput)
	}
	if amplification == 0 {
		return 0, fmt.Errorf("%w: amplification must be >= 1", ErrInvalidInput)
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		// Covers the degenerate D = 0 pool: reject instead of dividing by zero.
		return 0, fmt.Errorf("%w: invariant must be positive, got %g", ErrInvalidInput, d)
	}
	if baseIdx < 0 || baseIdx >= n || quoteIdx < 0 || quoteIdx >= n {
		return 0, fmt.Errorf("%w: balance index out of range (base %d, quote %d, n %d)", ErrInvalidInput, baseIdx, quoteIdx, n)
	}
	if baseIdx == quoteIdx {
		return 0, fmt.Errorf("%w: base and quote index must differ", ErrInvalidInput)
	}
	for _, x := range balances {
		if math.IsNaN(x) || math.IsInf(x, 0) || x <= 0 {
			return 0, fmt.Errorf("%w: balance must be strictly positive, got %g", ErrInvalidInput, x)
		}
	}

	nf := float64(n)
	ann := float64(amplification) * nf

	// Same ascending accumulation order as the invariant solver.
	xp := make([]float64, n)
	copy(xp, balances)
	sort.Float64s(xp)

	c := d
	for _, x := range xp {
		c = c * d / (nf * x)
	}

	xi := balances[baseIdx]
	xj := balances[quoteIdx]

	return xj * (ann*xi + c) / (ann*xj + c) / xi, nil
}
