package state

import (
	"encoding/json"
	"fmt"

	"github.com/hydration-labs/poolrisk/internal/types"
	"github.com/rs/zerolog/log"
)

// SavePriceObservation persists one on-chain pricing snapshot and returns its
// observation_id.
func SavePriceObservation(obs *types.PriceObservation) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}
	if obs == nil {
		return 0, fmt.Errorf("price observation cannot be nil")
	}

	balancesJSON, err := json.Marshal(obs.Balances)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal balances: %w", err)
	}

	query := `
		INSERT INTO price_observations (pair, block_number, price, invariant, balances)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING observation_id;`

	var observationID int64
	err = DB.QueryRow(query,
		obs.Pair, obs.BlockNumber, obs.Price, obs.Invariant, balancesJSON,
	).Scan(&observationID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert price observation: %w", err)
	}

	log.Debug().
		Int64("observationID", observationID).
		Str("pair", obs.Pair).
		Uint64("block", obs.BlockNumber).
		Msg("Saved price observation")
	return observationID, nil
}

// GetRecentPriceObservations returns up to limit observations for a pair,
// newest first.
func GetRecentPriceObservations(pair string, limit int) ([]types.PriceObservation, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT observation_id, observed_at, pair, block_number, price, invariant, balances
		FROM price_observations
		WHERE pair = $1
		ORDER BY observed_at DESC
		LIMIT $2;`

	rows, err := DB.Query(query, pair, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query price observations: %w", err)
	}
	defer rows.Close()

	var observations []types.PriceObservation
	for rows.Next() {
		var obs types.PriceObservation
		var balancesJSON []byte
		err := rows.Scan(
			&obs.ObservationID, &obs.Timestamp, &obs.Pair,
			&obs.BlockNumber, &obs.Price, &obs.Invariant, &balancesJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price observation row: %w", err)
		}
		if len(balancesJSON) > 0 {
			if err := json.Unmarshal(balancesJSON, &obs.Balances); err != nil {
				return nil, fmt.Errorf("failed to unmarshal balances: %w", err)
			}
		}
		observations = append(observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price observation rows: %w", err)
	}

	return observations, nil
}
