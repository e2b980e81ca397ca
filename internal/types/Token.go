/*

This is a custom type for tokens which carries the ledger identity and the
decimal precision needed to normalize raw pool balances.

*/

package types

import "time"

type Token struct {
	Symbol   string `json:"symbol"`   // e.g., "IBTC"
	AssetID  uint32 `json:"asset_id"` // on-ledger asset registry id
	Decimals int    `json:"decimals"` // e.g., 8 = 10^8 planck per token
}

// PriceData holds historical price info
type PriceData struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}
