/*

This file contains the default risk parameters for the estimator.

These defaults size collateral buffers for a synthetic-asset pool, so they
lean conservative: more paths and a higher confidence level than a quick
exploratory run would use.

*/

package config

import (
	"github.com/hydration-labs/poolrisk/internal/types"
)

// DefaultRiskParameters provides a baseline parameter set for the drawdown
// VaR estimator. These values are used if no active parameters are found in
// the database during initialization.
var DefaultRiskParameters = types.RiskParameters{
	Alpha: 0.99, // Select the drawdown at the 99th loss percentile.
	// Rationale: collateral thresholds protect against tail events, not the
	// median outcome. 99% leaves a 1-in-100 residual per observation window.

	AtStep: 0, // Use each full path.
	// Rationale: truncation is an analyst tool for intra-window thresholds;
	// the standing report covers the whole window.

	NumPaths: 10_000, // Trajectories per estimation run.
	// Rationale: at alpha 0.99 the selected rank sits 100 samples from the
	// tail end; 10k paths keeps that rank stable between runs.

	StepsPerPath: 720, // 30 days of hourly steps per trajectory.
	// Rationale: matches the 30-day window used for volatility calibration,
	// so simulated and historical drawdowns are comparable.

	Drift: 0.0, // Annualized drift for the simulator.
	// Rationale: a risk estimate should not assume the asset appreciates.
	// Zero drift makes the drawdown distribution depend on volatility alone.

	AnnualizationFactor: 8760, // Hourly data frequency.

	ReportEveryCycles: 24, // One fresh risk report per 24 pricing cycles.
	// Rationale: drawdown statistics move with calibration data, not with
	// every block. Daily reports are enough at an hourly pricing cadence.
}
