/*
This file is used to fetch historical hourly price data from the
CryptoCompare API.

The risk estimator consumes the data two ways: as a volatility calibration
series for the path simulator, and directly as fixed-length historical price
paths. Both uses need strictly validated closes, so every data point is
checked before it leaves this package.
*/

package datafetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/hydration-labs/poolrisk/internal/logger"
	"github.com/hydration-labs/poolrisk/internal/types"
)

var priceLogger = logger.GetForComponent("price_retriever")

var (
	ErrInvalidPriceData      = errors.New("invalid price data received")
	ErrInsufficientPriceData = errors.New("insufficient price data")
)

const (
	PRICE_BASE_URL        = "https://min-api.cryptocompare.com/data/v2/histohour"
	PRICE_MAX_RETRIES     = 3
	PRICE_TIMEOUT_SECONDS = 30
)

type cryptoCompareResponse struct {
	Response string `json:"Response"`
	Message  string `json:"Message"`
	Data     struct {
		TimeFrom int64 `json:"TimeFrom"`
		TimeTo   int64 `json:"TimeTo"`
		Data     []struct {
			Time  int64   `json:"time"`
			Close float64 `json:"close"`
		} `json:"Data"`
	} `json:"Data"`
}

// GetHourlyPrices fetches the last `hours` hourly closes for fsym priced in
// tsym, in chronological order. apiKey may be empty for rate-limited access.
func GetHourlyPrices(ctx context.Context, fsym, tsym string, hours int, apiKey string) ([]types.PriceData, error) {
	fsym = strings.TrimSpace(strings.ToUpper(fsym))
	tsym = strings.TrimSpace(strings.ToUpper(tsym))
	if fsym == "" || tsym == "" {
		return nil, fmt.Errorf("%w: empty symbol", ErrInvalidPriceData)
	}
	if hours <= 0 {
		return nil, fmt.Errorf("%w: hours must be positive, got %d", ErrInvalidPriceData, hours)
	}

	url := fmt.Sprintf("%s?fsym=%s&tsym=%s&limit=%d", PRICE_BASE_URL, fsym, tsym, hours)
	if apiKey != "" {
		url += "&api_key=" + apiKey
	}

	client := &http.Client{Timeout: PRICE_TIMEOUT_SECONDS * time.Second}

	var lastErr error
	for attempt := 1; attempt <= PRICE_MAX_RETRIES; attempt++ {
		priceLogger.Debug().
			Str("fsym", fsym).
			Str("tsym", tsym).
			Int("attempt", attempt).
			Int("maxRetries", PRICE_MAX_RETRIES).
			Msg("Making price API request")

		result, err := fetchPricesOnce(ctx, client, url, fsym)
		if err == nil {
			return result, nil
		}
		lastErr = err

		priceLogger.Warn().
			Err(err).
			Str("fsym", fsym).
			Int("attempt", attempt).
			Msg("Price request failed, will retry if attempts remain")

		if attempt < PRICE_MAX_RETRIES {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}

	priceLogger.Error().
		Err(lastErr).
		Str("fsym", fsym).
		Int("maxRetries", PRICE_MAX_RETRIES).
		Msg("All price retry attempts failed")
	return nil, fmt.Errorf("failed to fetch price data for %s after %d attempts: %w", fsym, PRICE_MAX_RETRIES, lastErr)
}

func fetchPricesOnce(ctx context.Context, client *http.Client, url, coin string) ([]types.PriceData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price API returned status %d for %s", resp.StatusCode, coin)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var response cryptoCompareResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: decoding response for %s: %w", ErrInvalidPriceData, coin, err)
	}

	if response.Response != "Success" {
		return nil, fmt.Errorf("%w: API error for %s: %s", ErrInvalidPriceData, coin, response.Message)
	}
	if len(response.Data.Data) == 0 {
		return nil, fmt.Errorf("%w: empty data for %s", ErrInvalidPriceData, coin)
	}

	prices := make([]types.PriceData, 0, len(response.Data.Data))
	for _, point := range response.Data.Data {
		if point.Time <= 0 {
			return nil, fmt.Errorf("%w: invalid timestamp %d for %s", ErrInvalidPriceData, point.Time, coin)
		}
		if math.IsNaN(point.Close) || math.IsInf(point.Close, 0) || point.Close <= 0 {
			return nil, fmt.Errorf("%w: close price %g for %s", ErrInvalidPriceData, point.Close, coin)
		}
		prices = append(prices, types.PriceData{
			Timestamp: time.Unix(point.Time, 0).UTC(),
			Price:     point.Close,
		})
	}

	priceLogger.Info().
		Str("fsym", coin).
		Int("points", len(prices)).
		Msg("Hourly price data fetched")

	return prices, nil
}

// HistoricalPaths adapts hourly closes into fixed-length price paths so the
// risk estimator can rank realized drawdowns alongside simulated ones.
type HistoricalPaths struct {
	BaseSymbol  string // CryptoCompare id of the asset being priced
	QuoteSymbol string // CryptoCompare id of the quote currency
	Hours       int    // how much history to request
	Window      int    // path length in hours
	APIKey      string
}

// GetPaths implements risk.PathSource over consecutive non-overlapping
// windows of the fetched series.
func (h *HistoricalPaths) GetPaths(ctx context.Context) ([]types.PricePath, error) {
	if h.Window <= 1 {
		return nil, fmt.Errorf("%w: window must be > 1, got %d", ErrInvalidPriceData, h.Window)
	}

	prices, err := GetHourlyPrices(ctx, h.BaseSymbol, h.QuoteSymbol, h.Hours, h.APIKey)
	if err != nil {
		return nil, err
	}

	paths := windowPaths(prices, h.Window)
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %d points cannot fill a window of %d", ErrInsufficientPriceData, len(prices), h.Window)
	}
	return paths, nil
}

// windowPaths chops a chronological price series into consecutive
// non-overlapping paths of the given length, dropping the remainder.
func windowPaths(prices []types.PriceData, window int) []types.PricePath {
	if window <= 0 {
		return nil
	}
	paths := make([]types.PricePath, 0, len(prices)/window)
	for start := 0; start+window <= len(prices); start += window {
		path := make(types.PricePath, window)
		for i := 0; i < window; i++ {
			path[i] = prices[start+i].Price
		}
		paths = append(paths, path)
	}
	return paths
}
