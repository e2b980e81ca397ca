/*
This file fetches pool account balances from a Substrate API Sidecar REST
endpoint.

The pricer needs every configured token balance at a single block with strict
validation: a silently missing or malformed balance would flow straight into
the invariant solver and produce a wrong price for collateral decisions.
*/

package datafetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/hydration-labs/poolrisk/internal/logger"
	"github.com/hydration-labs/poolrisk/internal/types"
	"github.com/hydration-labs/poolrisk/internal/utils"
	"github.com/rs/zerolog"
)

var balanceLogger = logger.GetForComponent("balance_retriever")

var (
	ErrInvalidBalanceData = errors.New("invalid balance data received")
	ErrMissingAsset       = errors.New("asset missing from balance response")
	ErrSidecarRequest     = errors.New("sidecar request failed")
)

const (
	BALANCE_MAX_RETRIES     = 3
	BALANCE_TIMEOUT_SECONDS = 30
)

// assetBalancesResponse mirrors the sidecar /accounts/{id}/asset-balances payload.
type assetBalancesResponse struct {
	At struct {
		Hash   string `json:"hash"`
		Height string `json:"height"`
	} `json:"at"`
	Assets []struct {
		AssetID  string `json:"assetId"`
		Balance  string `json:"balance"` // free balance, decimal string in planck
		IsFrozen bool   `json:"isFrozen"`
	} `json:"assets"`
}

// blocksHeadResponse mirrors the sidecar /blocks/head payload (header fields only).
type blocksHeadResponse struct {
	Number string `json:"number"`
	Hash   string `json:"hash"`
}

// LedgerClient queries pool token balances from a Substrate API Sidecar.
// It implements pricing.BalanceSource for the tokens it was configured with.
type LedgerClient struct {
	baseURL string
	tokens  []types.Token
	client  *http.Client
	logger  zerolog.Logger
}

// NewLedgerClient builds a client for the given sidecar endpoint and token
// set. Balances are returned decimal-normalized per each token's decimals.
func NewLedgerClient(baseURL string, tokens []types.Token) (*LedgerClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: empty sidecar endpoint", ErrSidecarRequest)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no tokens configured", ErrInvalidBalanceData)
	}

	return &LedgerClient{
		baseURL: baseURL,
		tokens:  tokens,
		client:  &http.Client{Timeout: BALANCE_TIMEOUT_SECONDS * time.Second},
		logger:  balanceLogger,
	}, nil
}

// CurrentBlock returns the latest finalized block number known to the sidecar.
func (c *LedgerClient) CurrentBlock(ctx context.Context) (uint64, error) {
	body, err := c.getWithRetries(ctx, c.baseURL+"/blocks/head")
	if err != nil {
		return 0, err
	}

	var head blocksHeadResponse
	if err := json.Unmarshal(body, &head); err != nil {
		return 0, fmt.Errorf("%w: decoding head block: %w", ErrInvalidBalanceData, err)
	}

	height, err := strconv.ParseUint(head.Number, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: head block number %q", ErrInvalidBalanceData, head.Number)
	}
	return height, nil
}

// GetBalances fetches the account's balances for the configured tokens,
// normalized by each token's decimals. atBlock == 0 queries the latest block.
func (c *LedgerClient) GetBalances(ctx context.Context, account string, atBlock uint64) (map[string]float64, error) {
	if account == "" {
		return nil, fmt.Errorf("%w: empty account", ErrInvalidBalanceData)
	}

	url := fmt.Sprintf("%s/accounts/%s/asset-balances", c.baseURL, account)
	if atBlock > 0 {
		url = fmt.Sprintf("%s?at=%d", url, atBlock)
	}

	body, err := c.getWithRetries(ctx, url)
	if err != nil {
		return nil, err
	}

	var response assetBalancesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: decoding asset balances: %w", ErrInvalidBalanceData, err)
	}

	byAssetID := make(map[uint32]string, len(response.Assets))
	for _, asset := range response.Assets {
		id, err := strconv.ParseUint(asset.AssetID, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: asset id %q", ErrInvalidBalanceData, asset.AssetID)
		}
		byAssetID[uint32(id)] = asset.Balance
	}

	balances := make(map[string]float64, len(c.tokens))
	for _, token := range c.tokens {
		raw, ok := byAssetID[token.AssetID]
		if !ok {
			return nil, fmt.Errorf("%w: %s (asset id %d) for account %s", ErrMissingAsset, token.Symbol, token.AssetID, account)
		}

		amount, ok := sdkmath.NewIntFromString(raw)
		if !ok {
			return nil, fmt.Errorf("%w: balance %q for %s is not an integer", ErrInvalidBalanceData, raw, token.Symbol)
		}

		normalized, err := utils.RawToFloat64(amount, token.Decimals)
		if err != nil {
			return nil, fmt.Errorf("normalizing %s balance: %w", token.Symbol, err)
		}
		balances[token.Symbol] = normalized
	}

	c.logger.Debug().
		Str("account", account).
		Uint64("block", atBlock).
		Int("tokens", len(balances)).
		Str("at_height", response.At.Height).
		Msg("Pool balances fetched")

	return balances, nil
}

// getWithRetries performs a GET with bounded retries and linear backoff.
func (c *LedgerClient) getWithRetries(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= BALANCE_MAX_RETRIES; attempt++ {
		c.logger.Debug().
			Str("url", url).
			Int("attempt", attempt).
			Int("maxRetries", BALANCE_MAX_RETRIES).
			Msg("Making sidecar request")

		body, err := c.getOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		c.logger.Warn().
			Err(err).
			Str("url", url).
			Int("attempt", attempt).
			Msg("Sidecar request failed, will retry if attempts remain")

		if attempt < BALANCE_MAX_RETRIES {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}

	c.logger.Error().
		Err(lastErr).
		Str("url", url).
		Int("maxRetries", BALANCE_MAX_RETRIES).
		Msg("All sidecar retry attempts failed")
	return nil, fmt.Errorf("%w: after %d attempts: %w", ErrSidecarRequest, BALANCE_MAX_RETRIES, lastErr)
}

func (c *LedgerClient) getOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sidecar returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) == 0 {
		return nil, errors.New("empty response body")
	}
	return body, nil
}
