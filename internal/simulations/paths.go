/*

Seeded geometric Brownian motion price-path generator.

This is the simulated PathSource for the risk estimator: drift and volatility
are annualized and typically calibrated from the same hourly history the
historical path source uses, so simulated and realized drawdowns rank on the
same scale.

*/

package simulations

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/hydration-labs/poolrisk/internal/logger"
	"github.com/hydration-labs/poolrisk/internal/types"
	"github.com/rs/zerolog"
)

var ErrInvalidSimConfig = errors.New("invalid simulation configuration")

// GBMConfig parameterizes one batch of simulated trajectories.
type GBMConfig struct {
	SpotPrice    float64 // starting value of every path, > 0
	Drift        float64 // annualized drift
	Volatility   float64 // annualized volatility, >= 0
	StepsPerYear float64 // data frequency, e.g. 8760 for hourly steps
	Steps        int     // steps per path beyond the starting value
	NumPaths     int     // trajectories per batch
	Seed         int64   // RNG seed; identical seeds reproduce identical batches
}

func (c GBMConfig) validate() error {
	if math.IsNaN(c.SpotPrice) || math.IsInf(c.SpotPrice, 0) || c.SpotPrice <= 0 {
		return fmt.Errorf("%w: spot price must be positive, got %g", ErrInvalidSimConfig, c.SpotPrice)
	}
	if math.IsNaN(c.Volatility) || math.IsInf(c.Volatility, 0) || c.Volatility < 0 {
		return fmt.Errorf("%w: volatility must be >= 0, got %g", ErrInvalidSimConfig, c.Volatility)
	}
	if math.IsNaN(c.Drift) || math.IsInf(c.Drift, 0) {
		return fmt.Errorf("%w: drift is not finite", ErrInvalidSimConfig)
	}
	if c.StepsPerYear <= 0 {
		return fmt.Errorf("%w: steps per year must be positive, got %g", ErrInvalidSimConfig, c.StepsPerYear)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidSimConfig, c.Steps)
	}
	if c.NumPaths <= 0 {
		return fmt.Errorf("%w: numPaths must be positive, got %d", ErrInvalidSimConfig, c.NumPaths)
	}
	return nil
}

// GBMSimulator implements risk.PathSource with freshly generated paths per
// call, deterministic for a fixed config.
type GBMSimulator struct {
	cfg    GBMConfig
	logger zerolog.Logger
}

func NewGBMSimulator(cfg GBMConfig) (*GBMSimulator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &GBMSimulator{
		cfg:    cfg,
		logger: logger.GetForComponent("path_simulator"),
	}, nil
}

// GetPaths generates NumPaths trajectories of Steps+1 values each (the spot
// price is step 0).
func (s *GBMSimulator) GetPaths(ctx context.Context) ([]types.PricePath, error) {
	rng := rand.New(rand.NewSource(s.cfg.Seed))

	dt := 1 / s.cfg.StepsPerYear
	// Exact discretization of GBM: each step multiplies by
	// exp((mu - sigma^2/2)dt + sigma*sqrt(dt)*Z).
	driftTerm := (s.cfg.Drift - 0.5*s.cfg.Volatility*s.cfg.Volatility) * dt
	diffusionTerm := s.cfg.Volatility * math.Sqrt(dt)

	paths := make([]types.PricePath, s.cfg.NumPaths)
	for p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := make(types.PricePath, s.cfg.Steps+1)
		path[0] = s.cfg.SpotPrice
		for i := 1; i <= s.cfg.Steps; i++ {
			path[i] = path[i-1] * math.Exp(driftTerm+diffusionTerm*rng.NormFloat64())
		}
		paths[p] = path
	}

	s.logger.Debug().
		Int("paths", s.cfg.NumPaths).
		Int("steps", s.cfg.Steps).
		Float64("volatility", s.cfg.Volatility).
		Msg("Simulated price paths generated")

	return paths, nil
}
