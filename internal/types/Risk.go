/*

This file contains the types for the drawdown risk estimator and the records
persisted for analyst review.

*/

package types

import "time"

// PricePath is one simulated or historical price trajectory over discrete
// steps, indexed from step 0. Immutable once produced by its source.
type PricePath []float64

// RiskParameters holds the tunable inputs of the drawdown VaR estimator.
// Different sets of these parameters can be versioned per configuration name.
type RiskParameters struct {
	// Alpha is the confidence level for the VaR rank selection, in (0, 1].
	// Example: 0.99 selects the drawdown at the 99th loss percentile.
	Alpha float64 `json:"alpha"`

	// AtStep truncates each path to its first AtStep elements before the
	// drawdown is computed. 0 means the full path is used.
	AtStep int `json:"at_step"`

	// NumPaths is the number of simulated trajectories per estimation run.
	NumPaths int `json:"num_paths"`

	// StepsPerPath is the number of discrete steps in each simulated path.
	StepsPerPath int `json:"steps_per_path"`

	// Drift is the annualized drift used by the path simulator.
	Drift float64 `json:"drift"`

	// AnnualizationFactor matches the data frequency used for volatility
	// calibration (8760 for hourly, 365 for daily).
	AnnualizationFactor float64 `json:"annualization_factor"`

	// ReportEveryCycles controls how often the engine produces a fresh risk
	// report relative to price observation cycles.
	ReportEveryCycles int `json:"report_every_cycles"`
}

// RiskReport is one persisted estimator run.
type RiskReport struct {
	ReportID            int64     `json:"report_id"`
	Timestamp           time.Time `json:"timestamp"`
	Pair                string    `json:"pair"`
	ParamsID            int64     `json:"params_id"`
	Alpha               float64   `json:"alpha"`
	AtStep              int       `json:"at_step"`
	NumPaths            int       `json:"num_paths"`
	ValueAtRisk         float64   `json:"value_at_risk"`
	ThresholdMultiplier float64   `json:"threshold_multiplier"`
	Source              string    `json:"source"` // "simulated" or "historical"
}

// PriceObservation is one persisted pricing cycle: the derived marginal price
// together with the balances and invariant it was computed from.
type PriceObservation struct {
	ObservationID int64              `json:"observation_id"`
	Timestamp     time.Time          `json:"timestamp"`
	Pair          string             `json:"pair"`
	BlockNumber   uint64             `json:"block_number"`
	Price         float64            `json:"price"`
	Invariant     float64            `json:"invariant"`
	Balances      map[string]float64 `json:"balances"`
}
