package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/hydration-labs/poolrisk/internal/stableswap"
	"github.com/hydration-labs/poolrisk/internal/types"
	"github.com/stretchr/testify/require"
)

type stubBalanceSource struct {
	balances map[string]float64
	err      error

	lastAccount string
	lastBlock   uint64
}

func (s *stubBalanceSource) GetBalances(_ context.Context, account string, atBlock uint64) (map[string]float64, error) {
	s.lastAccount = account
	s.lastBlock = atBlock
	if s.err != nil {
		return nil, s.err
	}
	return s.balances, nil
}

func testPair() types.StableswapPair {
	return types.StableswapPair{
		BaseToken:     types.Token{Symbol: "IBTC", AssetID: 11, Decimals: 8},
		QuoteToken:    types.Token{Symbol: "WBTC", AssetID: 19, Decimals: 8},
		Account:       "7L53bUTBopuwFt3mKUfmkzgGLayYa1Yvn1hAg9v5UMrQzTfh",
		Amplification: 100,
		TradeFee:      0.0004,
		Precision:     1e-10,
	}
}

func TestNewPairPricerValidation(t *testing.T) {
	_, err := NewPairPricer(testPair(), nil)
	require.ErrorIs(t, err, ErrNilDependency)

	bad := testPair()
	bad.Amplification = 0
	_, err = NewPairPricer(bad, &stubBalanceSource{})
	require.ErrorIs(t, err, types.ErrInvalidPairConfig)
}

func TestQuoteBalancedPoolPricesAtParity(t *testing.T) {
	source := &stubBalanceSource{balances: map[string]float64{"IBTC": 250, "WBTC": 250}}
	pricer, err := NewPairPricer(testPair(), source)
	require.NoError(t, err)

	quote, err := pricer.Quote(context.Background(), 0, false)
	require.NoError(t, err)
	require.InDelta(t, 1.0, quote.Price, 1e-9)
	require.InDelta(t, 500.0, quote.Invariant, 1e-6)
	require.Equal(t, testPair().Account, source.lastAccount)
}

func TestQuoteInverseIsReciprocal(t *testing.T) {
	source := &stubBalanceSource{balances: map[string]float64{"IBTC": 100, "WBTC": 240}}
	pricer, err := NewPairPricer(testPair(), source)
	require.NoError(t, err)

	raw, err := pricer.CurrentPrice(context.Background(), 0, false)
	require.NoError(t, err)
	inverted, err := pricer.CurrentPrice(context.Background(), 0, true)
	require.NoError(t, err)

	require.InDelta(t, 1.0, raw*inverted, 1e-9)
}

func TestQuotePinsBlockNumber(t *testing.T) {
	source := &stubBalanceSource{balances: map[string]float64{"IBTC": 100, "WBTC": 100}}
	pricer, err := NewPairPricer(testPair(), source)
	require.NoError(t, err)

	quote, err := pricer.Quote(context.Background(), 123456, false)
	require.NoError(t, err)
	require.Equal(t, uint64(123456), quote.BlockNumber)
	require.Equal(t, uint64(123456), source.lastBlock)
}

func TestQuoteRejectsDegeneratePool(t *testing.T) {
	source := &stubBalanceSource{balances: map[string]float64{"IBTC": 0, "WBTC": 0}}
	pricer, err := NewPairPricer(testPair(), source)
	require.NoError(t, err)

	// SolveD yields D = 0 for the all-zero vector and the price derivation
	// must refuse it.
	_, err = pricer.Quote(context.Background(), 0, false)
	require.ErrorIs(t, err, stableswap.ErrInvalidInput)
}

func TestQuoteMissingBalance(t *testing.T) {
	source := &stubBalanceSource{balances: map[string]float64{"IBTC": 100}}
	pricer, err := NewPairPricer(testPair(), source)
	require.NoError(t, err)

	_, err = pricer.Quote(context.Background(), 0, false)
	require.ErrorIs(t, err, ErrMissingBalance)
}

func TestQuoteSourceErrorPropagates(t *testing.T) {
	boom := errors.New("ledger unreachable")
	pricer, err := NewPairPricer(testPair(), &stubBalanceSource{err: boom})
	require.NoError(t, err)

	_, err = pricer.Quote(context.Background(), 0, false)
	require.ErrorIs(t, err, boom)

	_, ok := pricer.LastPrice()
	require.False(t, ok)
}

func TestLastPriceCachesMostRecent(t *testing.T) {
	source := &stubBalanceSource{balances: map[string]float64{"IBTC": 250, "WBTC": 250}}
	pricer, err := NewPairPricer(testPair(), source)
	require.NoError(t, err)

	_, ok := pricer.LastPrice()
	require.False(t, ok)

	first, err := pricer.CurrentPrice(context.Background(), 0, false)
	require.NoError(t, err)

	cached, ok := pricer.LastPrice()
	require.True(t, ok)
	require.Equal(t, first, cached)

	// A later call with different balances overwrites the cache.
	source.balances = map[string]float64{"IBTC": 100, "WBTC": 400}
	second, err := pricer.CurrentPrice(context.Background(), 0, false)
	require.NoError(t, err)

	cached, ok = pricer.LastPrice()
	require.True(t, ok)
	require.Equal(t, second, cached)
	require.NotEqual(t, first, cached)
}
