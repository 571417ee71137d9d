package feecurve

import (
	"fmt"
	"math/big"
)

const (
	// CommissionTotalParts defines the granularity of the commission rate.
	// Commission arithmetic is fixed point with this denominator.
	CommissionTotalParts = 10_000

	// DefaultCommissionRate is the default commission rate of 1 percent,
	// expressed in parts of CommissionTotalParts.
	DefaultCommissionRate uint32 = 100
)

// CommissionSchedule computes the fixed rate skim of trade volume the hook
// takes to offset external verification costs.
type CommissionSchedule struct {
	rate uint32
}

// NewCommissionSchedule creates a commission schedule from a rate expressed
// in parts of CommissionTotalParts.
func NewCommissionSchedule(rate uint32) (*CommissionSchedule, error) {
	if rate > CommissionTotalParts {
		return nil, fmt.Errorf("commission rate %d exceeds %d", rate,
			CommissionTotalParts)
	}
	return &CommissionSchedule{rate: rate}, nil
}

// Rate returns the commission rate in parts of CommissionTotalParts.
func (s *CommissionSchedule) Rate() uint32 {
	return s.rate
}

// Commission computes floor(tradeAmount * rate / 10_000) for the given
// absolute trade amount.
func (s *CommissionSchedule) Commission(tradeAmount *big.Int) (*big.Int, error) {
	if tradeAmount.Sign() < 0 {
		return nil, fmt.Errorf("negative trade amount: %v", tradeAmount)
	}
	return MulDiv(
		tradeAmount, new(big.Int).SetUint64(uint64(s.rate)),
		big.NewInt(CommissionTotalParts),
	)
}
