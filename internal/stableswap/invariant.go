/*

Newton's-method fixed-point solver for the StableSwap invariant D.

The iteration, the accumulation order of the product term and the asymmetric
convergence test all affect the resulting numerics and are relied upon by the
downstream price and risk calculations. Change them only with golden data.

*/

package stableswap

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrInvalidInput indicates a balance vector, amplification or precision
	// that violates the solver preconditions.
	ErrInvalidInput = errors.New("invalid stableswap input")

	// ErrNonConvergence indicates the iteration exhausted its budget without
	// satisfying the convergence test. The last iterate is never returned.
	ErrNonConvergence = errors.New("invariant iteration did not converge")
)

// DefaultMaxIterations bounds the invariant iteration. 128 steps is far more
// than Newton needs for any realistic pool; exceeding it means divergence.
const DefaultMaxIterations = 128

// SolveD computes the StableSwap invariant for the given balance vector and
// amplification coefficient.
//
// Balances must be strictly positive, except for the degenerate all-zero
// vector which yields D = 0 (callers deriving a price must reject D <= 0).
// The result is invariant under permutation of the balances.
func SolveD(balances []float64, amplification uint64, precision float64, maxIterations int) (float64, error) {
	n := len(balances)
	if n == 0 {
		return 0, fmt.Errorf("%w: no balances", ErrInvalidInput)
	}
	if amplification == 0 {
		return 0, fmt.Errorf("%w: amplification must be >= 1", ErrInvalidInput)
	}
	if math.IsNaN(precision) || math.IsInf(precision, 0) || precision <= 0 {
		return 0, fmt.Errorf("%w: precision must be a positive finite number, got %g", ErrInvalidInput, precision)
	}
	if maxIterations <= 0 {
		return 0, fmt.Errorf("%w: maxIterations must be positive, got %d", ErrInvalidInput, maxIterations)
	}

	// Ascending order fixes the accumulation order of the product term so
	// results are identical regardless of caller ordering.
	xp := make([]float64, n)
	copy(xp, balances)
	sort.Float64s(xp)

	var s float64
	for _, x := range xp {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("%w: balance is not finite: %g", ErrInvalidInput, x)
		}
		s += x
	}

	// Degenerate pool: an all-zero balance vector has D = 0 by definition.
	if s == 0 {
		return 0, nil
	}

	for _, x := range xp {
		if x <= 0 {
			return 0, fmt.Errorf("%w: balance must be strictly positive, got %g", ErrInvalidInput, x)
		}
	}

	nf := float64(n)
	ann := float64(amplification) * nf

	d := s
	for i := 0; i < maxIterations; i++ {
		// dP = D^(n+1) / (n^n * prod(x))
		dP := d
		for _, x := range xp {
			dP *= d / (x * nf)
		}

		dPrev := d
		d = (ann*s + dP*nf) * d / ((ann-1)*d + (nf+1)*dP)

		if converged(dPrev, d, precision) {
			return d, nil
		}
	}

	return 0, fmt.Errorf("%w: %d iterations at precision %g", ErrNonConvergence, maxIterations, precision)
}

// converged applies the asymmetric convergence test: strict "<" when the
// iterate is decreasing, non-strict "<=" when increasing. The asymmetry
// breaks oscillation ties toward termination on the increasing side; golden
// values in the tests depend on it.
func converged(prev, next, precision float64) bool {
	diff := math.Abs(prev - next)
	if (next <= prev && diff < precision) || (next > prev && diff <= precision) {
		return true
	}
	return false
}
