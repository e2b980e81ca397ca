package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// PoolAccount is the ledger account holding the stableswap pool balances.
	PoolAccount string

	// BaseSymbol and QuoteSymbol name the pair, resolved against the asset
	// registry in Assets.go.
	BaseSymbol  string
	QuoteSymbol string

	// Amplification is the pool's amplification coefficient A.
	Amplification uint64
	// TradeFee is the pool's trade fee fraction, carried for downstream consumers.
	TradeFee float64
	// Precision is the convergence bound for the invariant iteration.
	Precision float64

	// InversePrice inverts the quoted rate for quote currencies that the
	// downstream consumers cannot express directly.
	InversePrice bool
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// All environment variables are required and must be set, except the booleans
// which default to false.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	PoolAccount, err = getEnv("POOL_ACCOUNT")
	if err != nil {
		return err
	}

	BaseSymbol, err = getEnv("BASE_SYMBOL")
	if err != nil {
		return err
	}

	QuoteSymbol, err = getEnv("QUOTE_SYMBOL")
	if err != nil {
		return err
	}

	Amplification, err = getEnvAsUint64("POOL_AMPLIFICATION")
	if err != nil {
		return err
	}

	TradeFee, err = getEnvAsFloat64("POOL_TRADE_FEE")
	if err != nil {
		return err
	}

	Precision, err = getEnvAsFloat64("POOL_PRECISION")
	if err != nil {
		return err
	}

	InversePrice = getEnvAsBool("PRICE_INVERSE")

	// Load endpoint configuration
	if err := loadEndpointConfig(); err != nil {
		return err
	}

	log.Debug().
		Str("PoolAccount", PoolAccount).
		Str("Pair", BaseSymbol+"/"+QuoteSymbol).
		Uint64("Amplification", Amplification).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsFloat64 retrieves an environment variable as a float64. Returns error if not set or invalid.
func getEnvAsFloat64(key string) (float64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid float64, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsBool retrieves an environment variable as a bool, defaulting to
// false when unset or unparseable.
func getEnvAsBool(key string) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return false
	}
	return value
}
