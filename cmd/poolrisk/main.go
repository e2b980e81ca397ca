package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/hydration-labs/poolrisk/internal/config"
	datafetcher "github.com/hydration-labs/poolrisk/internal/datafetcher"
	"github.com/hydration-labs/poolrisk/internal/engine"
	"github.com/hydration-labs/poolrisk/internal/logger"
	"github.com/hydration-labs/poolrisk/internal/pricing"
	"github.com/hydration-labs/poolrisk/internal/risk"
	"github.com/hydration-labs/poolrisk/internal/simulations"
	"github.com/hydration-labs/poolrisk/internal/state"
	"github.com/hydration-labs/poolrisk/internal/types"
	"github.com/hydration-labs/poolrisk/internal/web"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	LOOP_INTERVAL = 1 * time.Hour

	// CALIBRATION_HOURS is how much hourly history to request for volatility
	// calibration; sized to the 30-day observation window.
	CALIBRATION_HOURS = 720

	// HISTORICAL_HOURS is how much hourly history to request when ranking
	// realized drawdowns directly; 2000 is the price API's per-request maximum.
	HISTORICAL_HOURS = 2000
)

// main is the entry point for the pool risk engine.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("Pool Risk Engine Starting...")

	// Initialize Database Connection
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Load Risk Parameters
	riskParams, paramsID, err := state.LoadActiveRiskParameters(engine.DEFAULT_RISK_CONFIG_NAME)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load active risk parameters, using defaults and saving.")
		defaultParams := config.DefaultRiskParameters
		paramsID, err = state.SaveRiskParameters(&defaultParams, engine.DEFAULT_RISK_CONFIG_NAME, engine.DEFAULT_RISK_CONFIG_VERSION)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to save initial default risk parameters.")
		}
		riskParams = &defaultParams
	}
	log.Info().Int64("paramsID", paramsID).Msg("Risk parameters loaded successfully.")

	// --- 2. Pair and Balance Source Initialization ---
	baseToken, err := config.TokenFor(config.BaseSymbol)
	if err != nil {
		log.Fatal().Err(err).Str("symbol", config.BaseSymbol).Msg("Unknown base token")
	}
	quoteToken, err := config.TokenFor(config.QuoteSymbol)
	if err != nil {
		log.Fatal().Err(err).Str("symbol", config.QuoteSymbol).Msg("Unknown quote token")
	}

	pair := types.StableswapPair{
		BaseToken:     baseToken,
		QuoteToken:    quoteToken,
		Account:       config.PoolAccount,
		Amplification: config.Amplification,
		TradeFee:      config.TradeFee,
		Precision:     config.Precision,
	}

	ledger, err := datafetcher.NewLedgerClient(config.SidecarAPI, []types.Token{baseToken, quoteToken})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize ledger client")
	}

	pricer, err := pricing.NewPairPricer(pair, ledger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize pair pricer")
	}

	// --- 3. Path Source Initialization ---
	ctx := context.Background()
	pathSource, pathLabel := buildPathSource(ctx, pricer, riskParams)

	// --- 4. Start Web Server ---
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}

	webServer := web.NewWebServer(webPort, pricer, pathSource, config.InversePrice)
	go func() {
		log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting pool risk dashboard")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 5. Create Engine Instance with Dependency Injection ---
	log.Info().Msg("Creating engine instance with dependency injection...")

	engineConfig := engine.Config{
		Pricer:       pricer,
		PathSource:   pathSource,
		RiskParams:   riskParams,
		RiskParamsID: paramsID,
		PathLabel:    pathLabel,
		InversePrice: config.InversePrice,
	}

	engineInstance, err := engine.NewEngine(engineConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create engine instance")
	}

	log.Info().Msg("Engine instance created successfully")

	// --- 6. Start Engine Main Loop ---
	log.Info().Str("interval", LOOP_INTERVAL.String()).Msg("Starting engine main loop")

	// Start the engine loop (this will run indefinitely)
	engineInstance.RunLoop(ctx, LOOP_INTERVAL)
}

// buildPathSource selects and calibrates the path source for the risk
// estimator. PATH_SOURCE=historical ranks realized drawdowns over windowed
// hourly closes; the default simulates GBM paths with volatility calibrated
// from the same history.
func buildPathSource(ctx context.Context, pricer *pricing.PairPricer, params *types.RiskParameters) (risk.PathSource, string) {
	baseCCId := config.CCIdFor(config.BaseSymbol)
	quoteCCId := config.CCIdFor(config.QuoteSymbol)

	if os.Getenv("PATH_SOURCE") == "historical" {
		log.Info().
			Str("fsym", baseCCId).
			Str("tsym", quoteCCId).
			Int("window", params.StepsPerPath).
			Msg("Using historical price paths")
		return &datafetcher.HistoricalPaths{
			BaseSymbol:  baseCCId,
			QuoteSymbol: quoteCCId,
			Hours:       HISTORICAL_HOURS,
			Window:      params.StepsPerPath,
			APIKey:      config.PriceAPIKey,
		}, "historical"
	}

	prices, err := datafetcher.GetHourlyPrices(ctx, baseCCId, quoteCCId, CALIBRATION_HOURS, config.PriceAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch calibration price history")
	}

	volatility, err := risk.AnnualizedVolatility(prices, params.AnnualizationFactor)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to calibrate volatility")
	}

	// Seed the simulation at the pool's own marginal price; fall back to the
	// last external close if the ledger is unreachable at startup.
	spot, err := pricer.CurrentPrice(ctx, 0, config.InversePrice)
	if err != nil {
		spot = prices[len(prices)-1].Price
		log.Warn().Err(err).Float64("fallbackSpot", spot).Msg("Pool pricing failed at startup, seeding simulation from last close")
	}

	log.Info().
		Float64("volatility", volatility).
		Float64("spot", spot).
		Int("paths", params.NumPaths).
		Msg("Calibrated GBM path simulator")

	simulator, err := simulations.NewGBMSimulator(simulations.GBMConfig{
		SpotPrice:    spot,
		Drift:        params.Drift,
		Volatility:   volatility,
		StepsPerYear: params.AnnualizationFactor,
		Steps:        params.StepsPerPath,
		NumPaths:     params.NumPaths,
		Seed:         time.Now().UnixNano(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize path simulator")
	}
	return simulator, "simulated"
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
