package feecurve

import (
	"errors"
	"math/big"
)

// ErrDivisionByZero is returned if a zero denominator is passed to MulDiv.
var ErrDivisionByZero = errors.New("division by zero")

// Sqrt returns the integer square root of value, the largest y such that
// y*y <= value. It uses Newton's method on arbitrary precision integers and
// never touches floating point, so results are bit-exact across platforms.
// Converges in O(log value) iterations.
func Sqrt(value *big.Int) *big.Int {
	if value.Sign() == 0 {
		return big.NewInt(0)
	}
	if value.Cmp(big.NewInt(1)) == 0 {
		return big.NewInt(1)
	}

	x := new(big.Int).Set(value)
	y := new(big.Int).Add(value, big.NewInt(1))
	y = y.Div(y, big.NewInt(2))

	for y.Cmp(x) < 0 {
		x = new(big.Int).Set(y)
		y = new(big.Int).Add(x, new(big.Int).Div(value, x))
		y = y.Div(y, big.NewInt(2))
	}
	return x
}

// MulDiv computes floor(x * y / denominator) with the intermediate product
// held in full precision.
func MulDiv(x, y, denominator *big.Int) (*big.Int, error) {
	if denominator.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	prod := new(big.Int).Mul(x, y)
	return prod.Div(prod, denominator), nil
}
