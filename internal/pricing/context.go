/*

PairPricer orchestrates one pricing request: fetch pool balances from the
injected balance source, solve the invariant, derive the marginal price.

The balance source is a constructor dependency; there is no package-level
default client.

*/

package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hydration-labs/poolrisk/internal/logger"
	"github.com/hydration-labs/poolrisk/internal/stableswap"
	"github.com/hydration-labs/poolrisk/internal/types"
	"github.com/rs/zerolog"
)

var (
	// ErrMissingBalance indicates the balance source did not return an entry
	// for one of the pair's tokens.
	ErrMissingBalance = errors.New("balance missing from source response")

	// ErrNilDependency indicates a missing constructor dependency.
	ErrNilDependency = errors.New("nil dependency")
)

// BalanceSource supplies decimal-normalized pool balances keyed by token
// symbol. atBlock == 0 means the latest block.
type BalanceSource interface {
	GetBalances(ctx context.Context, account string, atBlock uint64) (map[string]float64, error)
}

// Quote is the full result of one pricing request, carrying the inputs the
// price was derived from for persistence and audit.
type Quote struct {
	Price       float64            `json:"price"`
	Invariant   float64            `json:"invariant"`
	Balances    map[string]float64 `json:"balances"`
	BlockNumber uint64             `json:"block_number"` // 0 when priced at head
	Inverse     bool               `json:"inverse"`
}

// PairPricer derives the marginal stableswap price for one configured pair.
// The cached last price is the only mutable state; it is guarded because the
// web layer reads it from another goroutine.
type PairPricer struct {
	pair   types.StableswapPair
	source BalanceSource
	logger zerolog.Logger

	mu        sync.RWMutex
	lastPrice float64
	hasPrice  bool
}

// NewPairPricer validates the pair configuration once and wires the balance
// source dependency.
func NewPairPricer(pair types.StableswapPair, source BalanceSource) (*PairPricer, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: balance source", ErrNilDependency)
	}
	if err := pair.Validate(); err != nil {
		return nil, err
	}

	return &PairPricer{
		pair:   pair,
		source: source,
		logger: logger.GetForComponent("pair_pricer"),
	}, nil
}

// Pair returns the immutable pair configuration.
func (p *PairPricer) Pair() types.StableswapPair {
	return p.pair
}

// Quote fetches the pool balances (optionally pinned to a block), solves the
// invariant and derives the marginal rate of quote units per one base unit.
// With inverse true the reciprocal is returned instead, for quote currencies
// the downstream consumers cannot express directly.
func (p *PairPricer) Quote(ctx context.Context, atBlock uint64, inverse bool) (Quote, error) {
	balances, err := p.source.GetBalances(ctx, p.pair.Account, atBlock)
	if err != nil {
		return Quote{}, fmt.Errorf("fetching balances for %s: %w", p.pair.Account, err)
	}

	baseBalance, ok := balances[p.pair.BaseToken.Symbol]
	if !ok {
		return Quote{}, fmt.Errorf("%w: %s", ErrMissingBalance, p.pair.BaseToken.Symbol)
	}
	quoteBalance, ok := balances[p.pair.QuoteToken.Symbol]
	if !ok {
		return Quote{}, fmt.Errorf("%w: %s", ErrMissingBalance, p.pair.QuoteToken.Symbol)
	}

	ordered := []float64{baseBalance, quoteBalance}

	d, err := stableswap.SolveD(ordered, p.pair.Amplification, p.pair.Precision, stableswap.DefaultMaxIterations)
	if err != nil {
		return Quote{}, fmt.Errorf("solving invariant for %s: %w", p.pair.Name(), err)
	}

	// Index convention at this call site: base is index 0, quote is index 1,
	// so the raw rate is quote units per one base unit.
	price, err := stableswap.SpotPrice(ordered, p.pair.Amplification, d, 0, 1)
	if err != nil {
		return Quote{}, fmt.Errorf("deriving price for %s: %w", p.pair.Name(), err)
	}

	if inverse {
		price = 1 / price
	}

	p.mu.Lock()
	p.lastPrice = price
	p.hasPrice = true
	p.mu.Unlock()

	p.logger.Debug().
		Str("pair", p.pair.Name()).
		Uint64("block", atBlock).
		Bool("inverse", inverse).
		Float64("price", price).
		Msg("Pair priced")

	return Quote{
		Price:       price,
		Invariant:   d,
		Balances:    balances,
		BlockNumber: atBlock,
		Inverse:     inverse,
	}, nil
}

// CurrentPrice is the convenience form of Quote returning only the price.
func (p *PairPricer) CurrentPrice(ctx context.Context, atBlock uint64, inverse bool) (float64, error) {
	quote, err := p.Quote(ctx, atBlock, inverse)
	if err != nil {
		return 0, err
	}
	return quote.Price, nil
}

// LastPrice returns the most recently computed price, if any.
func (p *PairPricer) LastPrice() (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastPrice, p.hasPrice
}
