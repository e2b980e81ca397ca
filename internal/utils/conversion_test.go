package utils

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestRawToFloat64(t *testing.T) {
	v, err := RawToFloat64(sdkmath.NewInt(123_456_789), 8)
	require.NoError(t, err)
	require.InDelta(t, 1.23456789, v, 1e-12)

	v, err = RawToFloat64(sdkmath.NewInt(5_000_000), 6)
	require.NoError(t, err)
	require.InDelta(t, 5.0, v, 1e-12)

	v, err = RawToFloat64(sdkmath.ZeroInt(), 10)
	require.NoError(t, err)
	require.Zero(t, v)
}

func TestRawToFloat64LargeAmount(t *testing.T) {
	// u128-scale raw balance: 10^24 planck at 10 decimals is 10^14 tokens.
	raw, ok := sdkmath.NewIntFromString("1000000000000000000000000")
	require.True(t, ok)

	v, err := RawToFloat64(raw, 10)
	require.NoError(t, err)
	require.InDelta(t, 1e14, v, 1e2)
}

func TestRawToFloat64Invalid(t *testing.T) {
	_, err := RawToFloat64(sdkmath.NewInt(1), -1)
	require.ErrorIs(t, err, ErrInvalidDecimals)

	_, err = RawToFloat64(sdkmath.NewInt(1), 19)
	require.ErrorIs(t, err, ErrInvalidDecimals)

	_, err = RawToFloat64(sdkmath.Int{}, 6)
	require.ErrorIs(t, err, ErrAmountNil)

	_, err = RawToFloat64(sdkmath.NewInt(-5), 6)
	require.ErrorIs(t, err, ErrAmountNegative)
}
