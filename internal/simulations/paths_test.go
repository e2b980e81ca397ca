package simulations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func baseConfig() GBMConfig {
	return GBMConfig{
		SpotPrice:    100,
		Drift:        0,
		Volatility:   0.6,
		StepsPerYear: 8760,
		Steps:        720,
		NumPaths:     50,
		Seed:         7,
	}
}

func TestGetPathsShape(t *testing.T) {
	sim, err := NewGBMSimulator(baseConfig())
	require.NoError(t, err)

	paths, err := sim.GetPaths(context.Background())
	require.NoError(t, err)
	require.Len(t, paths, 50)
	for _, path := range paths {
		require.Len(t, path, 721)
		require.Equal(t, 100.0, path[0])
		for _, v := range path {
			require.Positive(t, v)
		}
	}
}

func TestGetPathsZeroVolatilityZeroDriftIsConstant(t *testing.T) {
	cfg := baseConfig()
	cfg.Volatility = 0
	cfg.Drift = 0
	cfg.NumPaths = 3
	cfg.Steps = 10

	sim, err := NewGBMSimulator(cfg)
	require.NoError(t, err)

	paths, err := sim.GetPaths(context.Background())
	require.NoError(t, err)
	for _, path := range paths {
		for _, v := range path {
			require.Equal(t, 100.0, v)
		}
	}
}

func TestGetPathsSeededReproducibility(t *testing.T) {
	simA, err := NewGBMSimulator(baseConfig())
	require.NoError(t, err)
	simB, err := NewGBMSimulator(baseConfig())
	require.NoError(t, err)

	pathsA, err := simA.GetPaths(context.Background())
	require.NoError(t, err)
	pathsB, err := simB.GetPaths(context.Background())
	require.NoError(t, err)

	require.Equal(t, pathsA, pathsB)

	cfg := baseConfig()
	cfg.Seed = 8
	simC, err := NewGBMSimulator(cfg)
	require.NoError(t, err)
	pathsC, err := simC.GetPaths(context.Background())
	require.NoError(t, err)

	require.NotEqual(t, pathsA, pathsC)
}

func TestNewGBMSimulatorValidation(t *testing.T) {
	cases := []func(*GBMConfig){
		func(c *GBMConfig) { c.SpotPrice = 0 },
		func(c *GBMConfig) { c.SpotPrice = -1 },
		func(c *GBMConfig) { c.Volatility = -0.1 },
		func(c *GBMConfig) { c.StepsPerYear = 0 },
		func(c *GBMConfig) { c.Steps = 0 },
		func(c *GBMConfig) { c.NumPaths = 0 },
	}
	for _, mutate := range cases {
		cfg := baseConfig()
		mutate(&cfg)
		_, err := NewGBMSimulator(cfg)
		require.ErrorIs(t, err, ErrInvalidSimConfig)
	}
}

func TestGetPathsContextCancellation(t *testing.T) {
	sim, err := NewGBMSimulator(baseConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = sim.GetPaths(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
