/*

This file contains the on-ledger asset registry entries for the tokens the
pricer can be configured with, plus the mapping of token symbols to their
CryptoCompare identifier for historical price requests.

If a coin doesnt have a CCID entry here it will by default use the symbol as
the CCID. Because odds are it will work. But for best practices try to keep
this up to date.

*/

package config

import (
	"errors"
	"fmt"

	"github.com/hydration-labs/poolrisk/internal/types"
)

var ErrUnknownAsset = errors.New("asset not in registry")

var (
	// AssetRegistry maps a token symbol to its ledger identity and decimals.
	// Asset ids follow the Hydration asset registry.
	AssetRegistry = map[string]types.Token{
		"HDX":   {Symbol: "HDX", AssetID: 0, Decimals: 12},
		"DOT":   {Symbol: "DOT", AssetID: 5, Decimals: 10},
		"USDT":  {Symbol: "USDT", AssetID: 10, Decimals: 6},
		"IBTC":  {Symbol: "IBTC", AssetID: 11, Decimals: 8},
		"INTR":  {Symbol: "INTR", AssetID: 17, Decimals: 10},
		"WBTC":  {Symbol: "WBTC", AssetID: 19, Decimals: 8},
		"WETH":  {Symbol: "WETH", AssetID: 20, Decimals: 18},
		"USDC":  {Symbol: "USDC", AssetID: 22, Decimals: 6},
		"VDOT":  {Symbol: "VDOT", AssetID: 15, Decimals: 10},
		"GLMR":  {Symbol: "GLMR", AssetID: 16, Decimals: 18},
		"ASTR":  {Symbol: "ASTR", AssetID: 9, Decimals: 18},
		"KSM":   {Symbol: "KSM", AssetID: 27, Decimals: 12},
		"TBTC":  {Symbol: "TBTC", AssetID: 1000765, Decimals: 18},
		"SOL":   {Symbol: "SOL", AssetID: 1000752, Decimals: 9},
		"AUSDT": {Symbol: "AUSDT", AssetID: 100010, Decimals: 6},
	}

	// CoinToCCId maps a token symbol to its CryptoCompare identifier.
	// It exists JUST IN CASE a coins symbol is different from the CCID.
	CoinToCCId = map[string]string{
		"HDX":   "HDX",
		"DOT":   "DOT",
		"USDT":  "USDT",
		"USDC":  "USDC",
		"KSM":   "KSM",
		"GLMR":  "GLMR",
		"ASTR":  "ASTR",
		"SOL":   "SOL",
		"INTR":  "INTR",
		"IBTC":  "BTC", // Bridged/synthetic wrappers price as their underlying
		"WBTC":  "BTC",
		"TBTC":  "BTC",
		"WETH":  "ETH",
		"VDOT":  "DOT",
		"AUSDT": "USDT",
	}
)

// TokenFor resolves a symbol against the asset registry.
func TokenFor(symbol string) (types.Token, error) {
	token, ok := AssetRegistry[symbol]
	if !ok {
		return types.Token{}, fmt.Errorf("%w: %s", ErrUnknownAsset, symbol)
	}
	return token, nil
}

// CCIdFor resolves a symbol to its CryptoCompare identifier, falling back to
// the symbol itself.
func CCIdFor(symbol string) string {
	if id, ok := CoinToCCId[symbol]; ok {
		return id
	}
	return symbol
}
