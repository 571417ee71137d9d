package amm

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PoolID is the 32 byte unique identifier of a pool within the host engine.
type PoolID [32]byte

// String returns the hex encoded representation of the pool ID.
func (p PoolID) String() string {
	return hex.EncodeToString(p[:])
}

// FeeMode describes how the host engine determines the swap fee of a pool. We
// don't use iota for the constants due to the fee mode being persisted to
// disk.
type FeeMode uint8

const (
	// FeeModeStatic is the mode of a pool whose swap fee is fixed at pool
	// creation and never changes afterwards.
	FeeModeStatic FeeMode = 0

	// FeeModeDynamic is the mode of a pool whose swap fee is selected by a
	// fee hook on every trade.
	FeeModeDynamic FeeMode = 1
)

// String returns a human readable string representation of the fee mode.
func (m FeeMode) String() string {
	switch m {
	case FeeModeStatic:
		return "static"

	case FeeModeDynamic:
		return "dynamic"

	default:
		return fmt.Sprintf("unknown<%d>", m)
	}
}

const (
	// FeeOverrideFlag is the marker bit a fee hook sets on its returned fee
	// value to instruct the host engine to apply that fee instead of the
	// pool's statically configured one.
	FeeOverrideFlag uint32 = 0x400000

	// FeeMask extracts the plain fee value from a flagged fee.
	FeeMask uint32 = FeeOverrideFlag - 1
)

// PoolConfig is the configuration the host engine hands to a fee hook when a
// new pool that uses the hook is being initialized.
type PoolConfig struct {
	// ID is the unique identifier of the pool.
	ID PoolID

	// Token0 is the address of the first of the two pool tokens, ordered
	// by the host engine's canonical token ordering.
	Token0 common.Address

	// Token1 is the address of the second pool token.
	Token1 common.Address

	// FeeMode declares how the pool's swap fee is determined.
	FeeMode FeeMode
}

// SwapParams describes a single trade the host engine is about to settle.
type SwapParams struct {
	// AmountSpecified is the signed trade amount. A negative amount means
	// the trader specified an exact input, a positive amount an exact
	// output. The fee curve only ever sees the absolute value.
	AmountSpecified *big.Int

	// ZeroForOne is true if the trade swaps token0 into the pool in
	// exchange for token1, false for the opposite direction.
	ZeroForOne bool
}

// InboundToken returns the address of the token the trader is paying into the
// pool for this trade's direction.
func (p SwapParams) InboundToken(cfg PoolConfig) common.Address {
	if p.ZeroForOne {
		return cfg.Token0
	}
	return cfg.Token1
}

// BalanceDelta is the balance adjustment a fee hook may request from the host
// engine alongside its fee decision.
type BalanceDelta struct {
	// Amount0 is the adjustment of the pool's token0 balance.
	Amount0 *big.Int

	// Amount1 is the adjustment of the pool's token1 balance.
	Amount1 *big.Int
}

// ZeroDelta returns the neutral balance adjustment. A hook that only selects
// fees and does not move funds always returns this.
func ZeroDelta() BalanceDelta {
	return BalanceDelta{
		Amount0: big.NewInt(0),
		Amount1: big.NewInt(0),
	}
}

// Settlement is the primitive the host engine exposes for pulling a specified
// amount of a specified token into the hook's custody.
type Settlement interface {
	// Take transfers the given amount of the given token from the pool's
	// reserves into the hook's custody.
	Take(ctx context.Context, token common.Address, amount *big.Int) error
}

// FeeHook is the capability set the host engine invokes at defined lifecycle
// points of a pool. A nil error return is the accepted marker the engine
// expects from each hook point.
type FeeHook interface {
	// AdmitPool is invoked once when a pool declaring this hook is being
	// initialized. Returning an error permanently rejects the pool, no
	// pool state is created and no retry path exists.
	AdmitPool(ctx context.Context, cfg PoolConfig) error

	// BeforeSwap is invoked before every trade settles. The returned fee
	// carries FeeOverrideFlag so the engine applies it instead of any
	// statically configured fee. The returned delta is always neutral for
	// a pure fee selecting hook.
	BeforeSwap(ctx context.Context, poolID PoolID,
		params SwapParams) (BalanceDelta, uint32, error)
}
