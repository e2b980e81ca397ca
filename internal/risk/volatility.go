package risk

import (
	"errors"
	"math"
	"sort"

	"github.com/hydration-labs/poolrisk/internal/types"
)

// ErrInsufficientData indicates that not enough data points were provided
// to calculate volatility (need at least 2 points for 1 return).
var ErrInsufficientData = errors.New("insufficient data points to calculate volatility")

// AnnualizedVolatility calculates the annualized historical volatility from a
// series of price data, using logarithmic returns and the population standard
// deviation. The data is sorted chronologically first. annualizationFactor
// should match the data frequency (8760 for hourly, 365 for daily).
//
// Pairs containing a non-positive price are skipped; if no valid return can
// be formed the function fails with ErrInsufficientData.
func AnnualizedVolatility(prices []types.PriceData, annualizationFactor float64) (float64, error) {
	n := len(prices)
	if n < 2 {
		return 0, ErrInsufficientData
	}

	sort.Slice(prices, func(i, j int) bool {
		return prices[i].Timestamp.Before(prices[j].Timestamp)
	})

	logReturns := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		current := prices[i].Price
		previous := prices[i-1].Price
		if previous <= 0 || current <= 0 {
			continue
		}
		logReturns = append(logReturns, math.Log(current/previous))
	}

	numReturns := len(logReturns)
	if numReturns == 0 {
		return 0, ErrInsufficientData
	}

	var sum float64
	for _, r := range logReturns {
		sum += r
	}
	mean := sum / float64(numReturns)

	var sumSqDiff float64
	for _, r := range logReturns {
		sumSqDiff += (r - mean) * (r - mean)
	}
	variance := sumSqDiff / float64(numReturns)

	return math.Sqrt(variance) * math.Sqrt(annualizationFactor), nil
}
