package feecurve

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// scale18 converts whole units into their 18 decimal representation.
func scale18(units int64) *big.Int {
	return new(big.Int).Mul(
		big.NewInt(units),
		new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
	)
}

// TestCurveFee makes sure the curve reproduces the reference fee values
// bit-exactly for realistic trade sizes and volatilities.
func TestCurveFee(t *testing.T) {
	curve := DefaultCurve()

	testCases := []struct {
		name       string
		tradeSize  *big.Int
		volatility *big.Int
		fee        uint32
	}{{
		name:       "no volatility information",
		tradeSize:  scale18(1),
		volatility: big.NewInt(0),
		fee:        200,
	}, {
		name:       "20 percent vol, 1 token",
		tradeSize:  scale18(1),
		volatility: scale18(20),
		fee:        400,
	}, {
		name:       "60 percent vol, 10 tokens",
		tradeSize:  scale18(10),
		volatility: scale18(60),
		fee:        2097,
	}, {
		name:       "120 percent vol, 100 tokens",
		tradeSize:  scale18(100),
		volatility: scale18(120),
		fee:        12200,
	}}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			fee, err := curve.Fee(tc.tradeSize, tc.volatility)
			require.NoError(t, err)
			require.Equal(t, tc.fee, fee)
		})
	}
}

// TestCurveFeeZeroSize makes sure a zero size trade pays exactly the base
// fee, for any volatility.
func TestCurveFeeZeroSize(t *testing.T) {
	curve := DefaultCurve()

	for _, vol := range []*big.Int{
		big.NewInt(0), scale18(20), scale18(500),
	} {
		fee, err := curve.Fee(big.NewInt(0), vol)
		require.NoError(t, err)
		require.Equal(t, curve.BaseFee(), fee)
	}
}

// TestCurveFeeMonotonic makes sure the fee is non-decreasing in the trade
// size with the volatility held fixed, and vice versa.
func TestCurveFeeMonotonic(t *testing.T) {
	curve := DefaultCurve()

	sizes := []*big.Int{
		big.NewInt(0), big.NewInt(1), scale18(1), scale18(2),
		scale18(10), scale18(50), scale18(100), scale18(1000),
	}
	vols := []*big.Int{
		big.NewInt(0), scale18(1), scale18(20), scale18(60),
		scale18(120), scale18(300),
	}

	// Sweep sizes at fixed volatility.
	for _, vol := range vols {
		prev := uint32(0)
		for _, size := range sizes {
			fee, err := curve.Fee(size, vol)
			require.NoError(t, err)
			require.GreaterOrEqual(t, fee, prev)
			prev = fee
		}
	}

	// Sweep volatilities at fixed size.
	for _, size := range sizes {
		prev := uint32(0)
		for _, vol := range vols {
			fee, err := curve.Fee(size, vol)
			require.NoError(t, err)
			require.GreaterOrEqual(t, fee, prev)
			prev = fee
		}
	}
}

// TestCurveFeeOverflow makes sure a fee at or above 100 percent fails loudly
// instead of being truncated to the fee's storage width.
func TestCurveFeeOverflow(t *testing.T) {
	curve := DefaultCurve()

	// 10_000 tokens at a (absurd) volatility of 1_000_000 percent pushes
	// the variable fee to 1e9 fee units, way past 100 percent.
	_, err := curve.Fee(scale18(10_000), scale18(1_000_000))
	require.ErrorIs(t, err, ErrFeeOverflow)

	// Negative inputs are rejected rather than fed into the curve.
	_, err = curve.Fee(big.NewInt(-1), big.NewInt(0))
	require.Error(t, err)
}

// TestCommission checks the fixed rate commission arithmetic.
func TestCommission(t *testing.T) {
	schedule, err := NewCommissionSchedule(DefaultCommissionRate)
	require.NoError(t, err)

	// 1 percent of 100 tokens is exactly one token.
	commission, err := schedule.Commission(scale18(100))
	require.NoError(t, err)
	require.Zero(t, commission.Cmp(scale18(1)))

	// Amounts below the rate granularity floor to zero.
	commission, err = schedule.Commission(big.NewInt(99))
	require.NoError(t, err)
	require.Zero(t, commission.Sign())

	// floor(12345 * 100 / 10000) = 123.
	commission, err = schedule.Commission(big.NewInt(12_345))
	require.NoError(t, err)
	require.Zero(t, commission.Cmp(big.NewInt(123)))

	_, err = NewCommissionSchedule(CommissionTotalParts + 1)
	require.Error(t, err)
}
