/*

This is the immutable configuration for a stableswap trading pair. Reading it
as '1 unit of base token is worth x units of quote token'.

*/

package types

import (
	"errors"
	"fmt"
)

var ErrInvalidPairConfig = errors.New("invalid pair configuration")

type StableswapPair struct {
	BaseToken     Token   `json:"base_token"`
	QuoteToken    Token   `json:"quote_token"`
	Account       string  `json:"account"`       // pool account on the ledger
	Amplification uint64  `json:"amplification"` // invariant curvature, >= 1
	TradeFee      float64 `json:"trade_fee"`     // carried for downstream consumers, not used by the pricing formula
	Precision     float64 `json:"precision"`     // convergence bound for the invariant iteration
}

// Name returns the display name of the pair, e.g. "IBTC/WBTC".
func (p StableswapPair) Name() string {
	return p.BaseToken.Symbol + "/" + p.QuoteToken.Symbol
}

// Validate checks the static configuration once at construction time so the
// pricing path does not have to re-validate it on every request.
func (p StableswapPair) Validate() error {
	if p.BaseToken.Symbol == "" || p.QuoteToken.Symbol == "" {
		return fmt.Errorf("%w: both tokens must be set", ErrInvalidPairConfig)
	}
	if p.BaseToken.Symbol == p.QuoteToken.Symbol {
		return fmt.Errorf("%w: base and quote token must differ", ErrInvalidPairConfig)
	}
	if p.Account == "" {
		return fmt.Errorf("%w: pool account must be set", ErrInvalidPairConfig)
	}
	if p.Amplification == 0 {
		return fmt.Errorf("%w: amplification must be >= 1", ErrInvalidPairConfig)
	}
	if p.TradeFee < 0 || p.TradeFee >= 1 {
		return fmt.Errorf("%w: trade fee must be in [0,1), got %f", ErrInvalidPairConfig, p.TradeFee)
	}
	if p.Precision <= 0 {
		return fmt.Errorf("%w: precision must be positive, got %g", ErrInvalidPairConfig, p.Precision)
	}
	return nil
}
