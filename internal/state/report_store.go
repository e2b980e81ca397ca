package state

import (
	"fmt"

	"github.com/hydration-labs/poolrisk/internal/types"
	"github.com/rs/zerolog/log"
)

// SaveRiskReport persists one VaR/threshold estimate and returns its report_id.
func SaveRiskReport(report *types.RiskReport) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}
	if report == nil {
		return 0, fmt.Errorf("risk report cannot be nil")
	}

	query := `
		INSERT INTO risk_reports (
			pair, params_id, alpha, at_step, num_paths,
			value_at_risk, threshold_multiplier, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING report_id;`

	var reportID int64
	err := DB.QueryRow(query,
		report.Pair, report.ParamsID, report.Alpha, report.AtStep, report.NumPaths,
		report.ValueAtRisk, report.ThresholdMultiplier, report.Source,
	).Scan(&reportID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert risk report: %w", err)
	}

	log.Info().
		Int64("reportID", reportID).
		Str("pair", report.Pair).
		Float64("valueAtRisk", report.ValueAtRisk).
		Float64("thresholdMultiplier", report.ThresholdMultiplier).
		Msg("Saved risk report")
	return reportID, nil
}

// GetRecentRiskReports returns up to limit reports for a pair, newest first.
func GetRecentRiskReports(pair string, limit int) ([]types.RiskReport, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT report_id, created_at, pair, params_id, alpha, at_step, num_paths,
		       value_at_risk, threshold_multiplier, source
		FROM risk_reports
		WHERE pair = $1
		ORDER BY created_at DESC
		LIMIT $2;`

	rows, err := DB.Query(query, pair, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query risk reports: %w", err)
	}
	defer rows.Close()

	var reports []types.RiskReport
	for rows.Next() {
		var r types.RiskReport
		err := rows.Scan(
			&r.ReportID, &r.Timestamp, &r.Pair, &r.ParamsID, &r.Alpha,
			&r.AtStep, &r.NumPaths, &r.ValueAtRisk, &r.ThresholdMultiplier, &r.Source,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan risk report row: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating risk report rows: %w", err)
	}

	return reports, nil
}
