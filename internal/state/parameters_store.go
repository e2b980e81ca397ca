/*

Versioned persistence for risk parameters.

Exactly one row per config_name is active at a time. Saving a new version
deactivates the current active row and inserts the new one in a single
transaction, so the engine always loads a consistent parameter set.

*/

package state

import (
	"database/sql"
	"fmt"

	"github.com/hydration-labs/poolrisk/internal/types"
	"github.com/rs/zerolog/log"
)

// SaveRiskParameters inserts a new version of a named parameter set and marks
// it active, deactivating any previously active version. Returns the new
// params_id.
func SaveRiskParameters(params *types.RiskParameters, configName string, version int) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}
	if params == nil {
		return 0, fmt.Errorf("risk parameters cannot be nil")
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	deactivateQuery := `
		UPDATE risk_parameters
		SET is_active = FALSE
		WHERE config_name = $1 AND is_active = TRUE;`
	_, err = tx.Exec(deactivateQuery, configName)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate existing parameters: %w", err)
	}

	insertQuery := `
		INSERT INTO risk_parameters (
			config_name, version, is_active,
			alpha, at_step, num_paths, steps_per_path,
			drift, annualization_factor, report_every_cycles
		) VALUES ($1, $2, TRUE, $3, $4, $5, $6, $7, $8, $9)
		RETURNING params_id;`

	var paramsID int64
	err = tx.QueryRow(insertQuery,
		configName, version,
		params.Alpha, params.AtStep, params.NumPaths, params.StepsPerPath,
		params.Drift, params.AnnualizationFactor, params.ReportEveryCycles,
	).Scan(&paramsID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert risk parameters: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Int64("paramsID", paramsID).
		Str("configName", configName).
		Int("version", version).
		Msg("Saved and activated risk parameters")
	return paramsID, nil
}

// LoadActiveRiskParameters returns the active parameter set for a config name
// along with its params_id. Returns sql.ErrNoRows when none is active.
func LoadActiveRiskParameters(configName string) (*types.RiskParameters, int64, error) {
	if DB == nil {
		return nil, 0, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT params_id, alpha, at_step, num_paths, steps_per_path,
		       drift, annualization_factor, report_every_cycles
		FROM risk_parameters
		WHERE config_name = $1 AND is_active = TRUE
		ORDER BY activated_at DESC
		LIMIT 1;`

	var params types.RiskParameters
	var paramsID int64
	err := DB.QueryRow(query, configName).Scan(
		&paramsID,
		&params.Alpha, &params.AtStep, &params.NumPaths, &params.StepsPerPath,
		&params.Drift, &params.AnnualizationFactor, &params.ReportEveryCycles,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("failed to load active risk parameters: %w", err)
	}

	return &params, paramsID, nil
}
