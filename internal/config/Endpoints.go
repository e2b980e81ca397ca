package config

import (
	"os"

	"github.com/rs/zerolog/log"
)

// Endpoint configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// SidecarAPI is the REST endpoint of the Substrate API Sidecar used for
	// balance queries, e.g. "https://hydration.api.subscan.io/sidecar".
	SidecarAPI string

	// PriceAPIKey is the optional API key for the historical price API.
	PriceAPIKey string
)

// loadEndpointConfig loads endpoint configuration from environment variables.
// This function is called by LoadConfig() in General.go.
func loadEndpointConfig() error {
	log.Info().Msg("Loading endpoint configuration from environment variables...")

	var err error

	SidecarAPI, err = getEnv("SIDECAR_API")
	if err != nil {
		return err
	}

	PriceAPIKey = os.Getenv("PRICE_API_KEY")
	if PriceAPIKey == "" {
		log.Warn().Msg("PRICE_API_KEY not set; historical price requests will be rate limited.")
	}

	log.Debug().
		Str("SidecarAPI", SidecarAPI).
		Msg("Endpoint configuration loaded successfully.")

	return nil
}
