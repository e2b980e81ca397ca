package risk

import (
	"math"
	"testing"
	"time"

	"github.com/hydration-labs/poolrisk/internal/types"
	"github.com/stretchr/testify/require"
)

func hourlyPrices(values ...float64) []types.PriceData {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := make([]types.PriceData, 0, len(values))
	for i, v := range values {
		prices = append(prices, types.PriceData{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Price:     v,
		})
	}
	return prices
}

func TestAnnualizedVolatilityConstantSeriesIsZero(t *testing.T) {
	vol, err := AnnualizedVolatility(hourlyPrices(5, 5, 5, 5), 8760)
	require.NoError(t, err)
	require.Zero(t, vol)
}

func TestAnnualizedVolatilityKnownAlternation(t *testing.T) {
	// Log returns alternate between +ln2 and -ln2 with zero mean, so the
	// population std-dev is exactly ln2.
	vol, err := AnnualizedVolatility(hourlyPrices(1, 2, 1, 2, 1), 8760)
	require.NoError(t, err)
	require.InDelta(t, math.Log(2)*math.Sqrt(8760), vol, 1e-9)
}

func TestAnnualizedVolatilitySortsByTimestamp(t *testing.T) {
	prices := hourlyPrices(1, 2, 1, 2, 1)
	shuffled := []types.PriceData{prices[3], prices[0], prices[4], prices[1], prices[2]}

	vol, err := AnnualizedVolatility(shuffled, 8760)
	require.NoError(t, err)
	require.InDelta(t, math.Log(2)*math.Sqrt(8760), vol, 1e-9)
}

func TestAnnualizedVolatilityInsufficientData(t *testing.T) {
	_, err := AnnualizedVolatility(nil, 8760)
	require.ErrorIs(t, err, ErrInsufficientData)

	_, err = AnnualizedVolatility(hourlyPrices(5), 8760)
	require.ErrorIs(t, err, ErrInsufficientData)

	// All pairs contain a non-positive price, so no return can be formed.
	_, err = AnnualizedVolatility(hourlyPrices(0, 1, 0), 8760)
	require.ErrorIs(t, err, ErrInsufficientData)
}
