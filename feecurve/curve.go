// Package feecurve implements the deterministic integer fee curve that
// converts a trade size and an externally attested volatility measurement
// into a swap fee.
//
// All values follow fixed point conventions: trade sizes and volatilities are
// unsigned integers scaled by 1e18 (a volatility of 20e18 reads as 20
// percent), fees are expressed in hundredths of a basis point where 1_000_000
// corresponds to 100 percent.
package feecurve

import (
	"errors"
	"fmt"
	"math/big"
)

const (
	// FeeDenominator is the total number of fee units, equal to 100
	// percent in hundredths of a basis point.
	FeeDenominator = 1_000_000

	// MaxFee is the exclusive upper bound of any fee returned by the
	// curve. Fees at or above this value are an overflow, not a valid
	// result.
	MaxFee uint32 = FeeDenominator

	// DefaultBaseFee is the flat fee component charged on every trade
	// regardless of volatility, 0.02 percent.
	DefaultBaseFee uint32 = 200
)

// DefaultScalingConstant converts the product of an 18 decimal scaled
// volatility and the square root of an 18 decimal scaled trade size into fee
// units. With sizes on the order of 1-100 whole tokens and volatilities of
// tens to low hundreds of percent the variable fee lands in the tens to
// thousands range.
var DefaultScalingConstant = new(big.Int).Exp(
	big.NewInt(10), big.NewInt(26), nil,
)

var (
	// ErrFeeOverflow is returned if the computed fee does not fit the fee
	// unit's denomination. The curve never truncates silently.
	ErrFeeOverflow = errors.New("fee exceeds maximum representable fee")
)

// Curve is the immutable fee curve configuration. All parameters are fixed at
// construction and never change for the lifetime of the curve.
type Curve struct {
	baseFee uint32
	scaling *big.Int
}

// NewCurve creates a fee curve from a base fee and a scaling constant.
func NewCurve(baseFee uint32, scaling *big.Int) (*Curve, error) {
	if baseFee >= MaxFee {
		return nil, fmt.Errorf("base fee %d not below max fee %d",
			baseFee, MaxFee)
	}
	if scaling == nil || scaling.Sign() <= 0 {
		return nil, fmt.Errorf("scaling constant must be positive")
	}
	return &Curve{
		baseFee: baseFee,
		scaling: new(big.Int).Set(scaling),
	}, nil
}

// DefaultCurve creates a fee curve with the default parameters.
func DefaultCurve() *Curve {
	c, err := NewCurve(DefaultBaseFee, DefaultScalingConstant)
	if err != nil {
		// The defaults are compile time constants, this cannot happen.
		panic(err)
	}
	return c
}

// BaseFee returns the flat fee component of the curve.
func (c *Curve) BaseFee() uint32 {
	return c.baseFee
}

// Fee computes the swap fee for the given trade size and volatility as
// baseFee + floor(sqrt(tradeSize) * volatility / scalingConstant).
//
// The result is non-decreasing in both arguments and always at least the base
// fee. The full computation happens in arbitrary precision, a result at or
// above MaxFee fails with ErrFeeOverflow instead of wrapping.
func (c *Curve) Fee(tradeSize, volatility *big.Int) (uint32, error) {
	if tradeSize.Sign() < 0 || volatility.Sign() < 0 {
		return 0, fmt.Errorf("negative curve input: size=%v, "+
			"volatility=%v", tradeSize, volatility)
	}

	variableFee, err := MulDiv(Sqrt(tradeSize), volatility, c.scaling)
	if err != nil {
		return 0, err
	}

	fee := new(big.Int).Add(
		new(big.Int).SetUint64(uint64(c.baseFee)), variableFee,
	)
	if fee.Cmp(new(big.Int).SetUint64(uint64(MaxFee))) >= 0 {
		return 0, ErrFeeOverflow
	}

	return uint32(fee.Uint64()), nil
}
