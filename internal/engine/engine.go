/*

The engine is the periodic driver of the risk service. Each cycle it prices
the configured stableswap pool from live on-chain balances and persists the
observation; every ReportEveryCycles cycles it additionally pulls a fresh
batch of price paths, estimates the drawdown VaR threshold multiplier, and
persists the report.

*/

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hydration-labs/poolrisk/internal/logger"
	"github.com/hydration-labs/poolrisk/internal/pricing"
	"github.com/hydration-labs/poolrisk/internal/risk"
	"github.com/hydration-labs/poolrisk/internal/state"
	"github.com/hydration-labs/poolrisk/internal/types"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// Export constants for use in main.go
	DEFAULT_RISK_CONFIG_NAME    = "default_pool_risk"
	DEFAULT_RISK_CONFIG_VERSION = 1
)

// Engine runs the observation and reporting loop for one pool.
type Engine struct {
	logger     zerolog.Logger
	pricer     *pricing.PairPricer
	pathSource risk.PathSource
	riskParams *types.RiskParameters
	paramsID   int64
	pathLabel  string
	inverse    bool

	// Runtime state
	cycleCount int
}

// Config holds the configuration for creating a new Engine instance
type Config struct {
	Pricer       *pricing.PairPricer
	PathSource   risk.PathSource
	RiskParams   *types.RiskParameters
	RiskParamsID int64
	PathLabel    string // recorded as the source of each risk report, e.g. "simulated" or "historical"
	InversePrice bool   // observe the reciprocal rate instead
}

// NewEngine creates a new Engine instance with dependency injection
func NewEngine(cfg Config) (*Engine, error) {
	if err := validateEngineConfig(cfg); err != nil {
		return nil, fmt.Errorf("engine configuration validation failed: %w", err)
	}

	engine := &Engine{
		logger:     logger.GetForComponent("engine_core"),
		pricer:     cfg.Pricer,
		pathSource: cfg.PathSource,
		riskParams: cfg.RiskParams,
		paramsID:   cfg.RiskParamsID,
		pathLabel:  cfg.PathLabel,
		inverse:    cfg.InversePrice,
		cycleCount: 0,
	}

	engine.logger.Info().
		Int64("paramsID", engine.paramsID).
		Str("pathSource", engine.pathLabel).
		Msg("Engine instance created successfully with dependency injection")

	return engine, nil
}

// validateEngineConfig validates the engine configuration
func validateEngineConfig(cfg Config) error {
	if cfg.Pricer == nil {
		return fmt.Errorf("pair pricer cannot be nil")
	}
	if cfg.PathSource == nil {
		return fmt.Errorf("path source cannot be nil")
	}
	if cfg.RiskParams == nil {
		return fmt.Errorf("risk parameters cannot be nil")
	}
	if cfg.RiskParams.ReportEveryCycles <= 0 {
		return fmt.Errorf("report cadence must be positive")
	}
	if cfg.PathLabel == "" {
		return fmt.Errorf("path label cannot be empty")
	}
	return nil
}

// RunLoop starts the main engine loop with the specified interval
func (e *Engine) RunLoop(ctx context.Context, interval time.Duration) {
	e.logger.Info().
		Dur("interval", interval).
		Msg("Starting engine main loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run first cycle immediately
	e.cycleCount++
	e.logger.Info().Int("cycle", e.cycleCount).Msg("Initiating engine cycle")
	e.RunCycle(ctx)
	e.logger.Info().Int("cycle", e.cycleCount).Msg("Engine cycle completed")

	// Continue with ticker
	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("Engine loop stopped due to context cancellation")
			return
		case <-ticker.C:
			e.cycleCount++
			e.logger.Info().Int("cycle", e.cycleCount).Msg("Initiating engine cycle")
			e.RunCycle(ctx)
			e.logger.Info().Int("cycle", e.cycleCount).Msg("Engine cycle completed")
		}
	}
}

// RunCycle executes one observation cycle and, on the configured cadence, one
// risk report.
func (e *Engine) RunCycle(ctx context.Context) {
	cycleStartTime := time.Now()

	// Generate unique cycle ID for tracing logs across the entire cycle
	cycleID := uuid.New().String()
	cycleLogger := e.logger.With().Str("cycle_id", cycleID).Logger()

	cycleLogger.Info().Msg("--- Starting Risk Cycle ---")

	cycleNumber, err := state.IncrementCycleNumber()
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: Failed to increment cycle counter.")
		return
	}
	cycleLogger.Info().
		Int("cycleNumber", cycleNumber).
		Time("timestamp", cycleStartTime).
		Msg("Cycle counter advanced")

	// --- Step 1: Price the pool from live on-chain balances ---
	cycleLogger.Info().Msg("Step 1: Pricing pool from on-chain balances...")
	quote, err := e.pricer.Quote(ctx, 0, e.inverse)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: Failed to price pool.")
		return
	}

	obs := &types.PriceObservation{
		Timestamp:   cycleStartTime,
		Pair:        e.pricer.Pair().Name(),
		BlockNumber: quote.BlockNumber,
		Price:       quote.Price,
		Invariant:   quote.Invariant,
		Balances:    quote.Balances,
	}
	observationID, err := state.SavePriceObservation(obs)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: Failed to save price observation.")
		return
	}
	cycleLogger.Info().
		Int64("observationID", observationID).
		Uint64("block", quote.BlockNumber).
		Float64("price", quote.Price).
		Float64("invariant", quote.Invariant).
		Msg("Step 1: Pool priced and observation saved.")

	// --- Step 2: Risk report on cadence ---
	if cycleNumber%e.riskParams.ReportEveryCycles != 0 {
		cycleLogger.Info().
			Int("cycleNumber", cycleNumber).
			Int("reportEveryCycles", e.riskParams.ReportEveryCycles).
			Msg("Step 2: Skipping risk report this cycle.")
		e.logEndOfCycleState(cycleStartTime, cycleLogger)
		return
	}

	cycleLogger.Info().Msg("Step 2: Estimating drawdown VaR threshold...")
	paths, err := e.pathSource.GetPaths(ctx)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: Failed to fetch price paths.")
		return
	}

	estimate, err := risk.ThresholdMultiplier(paths, e.riskParams.Alpha, e.riskParams.AtStep)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: Failed to estimate threshold multiplier.")
		return
	}

	report := &types.RiskReport{
		Timestamp:           time.Now(),
		Pair:                e.pricer.Pair().Name(),
		ParamsID:            e.paramsID,
		Alpha:               e.riskParams.Alpha,
		AtStep:              e.riskParams.AtStep,
		NumPaths:            estimate.SampleCount,
		ValueAtRisk:         estimate.ValueAtRisk,
		ThresholdMultiplier: estimate.ThresholdMultiplier,
		Source:              e.pathLabel,
	}
	reportID, err := state.SaveRiskReport(report)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: Failed to save risk report.")
		return
	}

	cycleLogger.Info().
		Int64("reportID", reportID).
		Int("paths", estimate.SampleCount).
		Float64("valueAtRisk", estimate.ValueAtRisk).
		Float64("thresholdMultiplier", estimate.ThresholdMultiplier).
		Msg("Step 2: Risk report saved.")

	e.logEndOfCycleState(cycleStartTime, cycleLogger)
}

// logEndOfCycleState logs the cycle duration summary
func (e *Engine) logEndOfCycleState(cycleStartTime time.Time, cycleLogger zerolog.Logger) {
	cycleLogger.Info().
		Dur("duration", time.Since(cycleStartTime)).
		Msg("--- Risk Cycle Finished ---")
}
