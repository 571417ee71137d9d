// Package dynamicfee implements a fee setting hook for an automated market
// maker engine. The hook computes a dynamic swap fee from an externally
// attested volatility measurement and only trusts a measurement after its
// delivery callback passed the commitment and verification key checks.
package dynamicfee

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/0xhaz/Dynamic-Fee/amm"
	"github.com/0xhaz/Dynamic-Fee/feecurve"
	"github.com/0xhaz/Dynamic-Fee/statedb"
	"github.com/0xhaz/Dynamic-Fee/verifier"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrStaticFeeMode is returned if a pool that does not declare
	// dynamic fee mode attempts to initialize with this hook. The
	// rejection is permanent, no pool state is created.
	ErrStaticFeeMode = errors.New("pool must enable dynamic fee")

	// ErrPoolNotAdmitted is returned if a trade time call references a
	// pool that never passed the admission check.
	ErrPoolNotAdmitted = errors.New("pool was not admitted")

	// ErrUnauthorized is returned if a non-owner attempts an
	// administrative action.
	ErrUnauthorized = errors.New("caller is not the owner")
)

// HookConfig bundles everything the hook needs at construction time.
type HookConfig struct {
	// Store is the persistent state of the hook.
	Store Store

	// Commitments is the read-only interface of the external proof
	// verification service.
	Commitments verifier.CommitmentSource

	// Owner is the identifier of the administrative role. It is only
	// used on first start, afterwards the stored owner wins.
	Owner common.Address

	// BaseFee is the flat fee component of the curve. Zero selects the
	// default.
	BaseFee uint32

	// ScalingConstant converts the volatility/size product into fee
	// units. Nil selects the default.
	ScalingConstant *big.Int

	// CommissionRate is the commission rate in parts of 10_000. Zero
	// selects the default.
	CommissionRate uint32
}

// Hook is the concrete fee hook. It owns the volatility cell and the
// verification key registry, computes trade time fees from the curve and
// accepts volatility updates from authenticated callbacks.
//
// All state transitions serialize on a single mutex: the hook may be driven
// by the host engine and the verification service concurrently, but a trade
// always sees either the volatility value from before or after a concurrent
// update, never a partial one.
type Hook struct {
	// mtx guards volatility, vkHash and owner.
	mtx sync.Mutex

	store      Store
	verifier   *verifier.Verifier
	curve      *feecurve.Curve
	commission *feecurve.CommissionSchedule
	volatility *big.Int
	vkHash     common.Hash
	owner      common.Address
}

// A compile time check to make certain that Hook implements the amm.FeeHook
// interface.
var _ amm.FeeHook = (*Hook)(nil)

// NewHook creates a hook from the given configuration, loading any
// previously persisted state.
func NewHook(cfg HookConfig) (*Hook, error) {
	if cfg.Store == nil {
		return nil, errors.New("hook requires a store")
	}
	if cfg.Commitments == nil {
		return nil, errors.New("hook requires a commitment source")
	}

	baseFee := cfg.BaseFee
	if baseFee == 0 {
		baseFee = feecurve.DefaultBaseFee
	}
	scaling := cfg.ScalingConstant
	if scaling == nil {
		scaling = feecurve.DefaultScalingConstant
	}
	commissionRate := cfg.CommissionRate
	if commissionRate == 0 {
		commissionRate = feecurve.DefaultCommissionRate
	}

	curve, err := feecurve.NewCurve(baseFee, scaling)
	if err != nil {
		return nil, err
	}
	commission, err := feecurve.NewCommissionSchedule(commissionRate)
	if err != nil {
		return nil, err
	}

	volatility, err := cfg.Store.Volatility()
	if err != nil {
		return nil, err
	}
	vkHash, err := cfg.Store.VerificationKey()
	if err != nil {
		return nil, err
	}

	// The first start stores the configured owner, every later start
	// keeps the stored one.
	owner, err := cfg.Store.Owner()
	if err != nil {
		return nil, err
	}
	if owner == (common.Address{}) {
		owner = cfg.Owner
		if err := cfg.Store.StoreOwner(owner); err != nil {
			return nil, err
		}
	}

	return &Hook{
		store:      cfg.Store,
		verifier:   verifier.New(cfg.Commitments),
		curve:      curve,
		commission: commission,
		volatility: volatility,
		vkHash:     vkHash,
		owner:      owner,
	}, nil
}

// AdmitPool is invoked once when a pool declaring this hook is being
// initialized. Pools that do not declare dynamic fee mode are permanently
// rejected.
//
// NOTE: This method is part of the amm.FeeHook interface.
func (h *Hook) AdmitPool(_ context.Context, cfg amm.PoolConfig) error {
	if cfg.FeeMode != amm.FeeModeDynamic {
		log.Warnf("Rejecting pool %v: fee mode %v", cfg.ID,
			cfg.FeeMode)
		return ErrStaticFeeMode
	}

	err := h.store.MarkPoolAdmitted(cfg, statedb.NewPoolAdmittedEvent(cfg.ID))
	if err != nil {
		return fmt.Errorf("unable to record pool admission: %w", err)
	}

	log.Infof("Admitted dynamic fee pool %v", cfg.ID)
	return nil
}

// BeforeSwap computes the swap fee for the trade about to settle against the
// current volatility value and tags it with the override flag so the host
// engine applies it instead of any statically configured fee. The returned
// delta is always neutral, this hook does not move funds on the swap path.
//
// NOTE: This method is part of the amm.FeeHook interface.
func (h *Hook) BeforeSwap(_ context.Context, poolID amm.PoolID,
	params amm.SwapParams) (amm.BalanceDelta, uint32, error) {

	admitted, err := h.store.IsPoolAdmitted(poolID)
	if err != nil {
		return amm.BalanceDelta{}, 0, err
	}
	if !admitted {
		return amm.BalanceDelta{}, 0, ErrPoolNotAdmitted
	}

	fee, err := h.feeForAmount(params.AmountSpecified)
	if err != nil {
		return amm.BalanceDelta{}, 0, err
	}

	log.Debugf("Selected fee %d for pool %v, amount %v", fee, poolID,
		params.AmountSpecified)

	return amm.ZeroDelta(), fee | amm.FeeOverrideFlag, nil
}

// ExtractCommission computes the fixed rate commission on the trade's
// absolute amount, denominated in the trade's inbound token, and instructs
// the settlement layer to pull it into the hook's custody.
//
// This operation is separately invocable and is NOT called from the
// BeforeSwap path: the original design defines the skim but never wires it
// into trade settlement.
func (h *Hook) ExtractCommission(ctx context.Context, cfg amm.PoolConfig,
	params amm.SwapParams, settlement amm.Settlement) (*big.Int, error) {

	admitted, err := h.store.IsPoolAdmitted(cfg.ID)
	if err != nil {
		return nil, err
	}
	if !admitted {
		return nil, ErrPoolNotAdmitted
	}

	amount := new(big.Int).Abs(params.AmountSpecified)
	commission, err := h.commission.Commission(amount)
	if err != nil {
		return nil, err
	}

	token := params.InboundToken(cfg)
	if err := settlement.Take(ctx, token, commission); err != nil {
		return nil, fmt.Errorf("unable to settle commission: %w", err)
	}

	err = h.store.LogEvent(statedb.NewCommissionChargedEvent(
		cfg.ID, token, commission,
	))
	if err != nil {
		return nil, err
	}

	log.Infof("Extracted commission %v of token %v from pool %v",
		commission, token, cfg.ID)

	return commission, nil
}

// HandleProofResult is the callback entry point the proof verification
// service invokes after it validated a proof. The caller's identity is never
// trusted, only the commitment and key checks decide. On success the new
// volatility value overwrites the volatility cell atomically.
func (h *Hook) HandleProofResult(ctx context.Context, id verifier.RequestID,
	circuitOutput []byte) (*big.Int, error) {

	h.mtx.Lock()
	defer h.mtx.Unlock()

	volatility, err := h.verifier.VerifyResult(
		ctx, id, circuitOutput, h.vkHash,
	)
	if err != nil {
		return nil, err
	}

	// Both checks passed. The cell and the notification event are written
	// in one transaction and the in-memory cell is only updated after the
	// commit, so a storage failure leaves no partial state.
	err = h.store.StoreVolatility(
		volatility, statedb.NewVolatilityUpdatedEvent(id, volatility),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to store volatility: %w", err)
	}

	h.volatility = volatility

	log.Infof("Accepted volatility update %v from request %v",
		volatility, id)

	return new(big.Int).Set(volatility), nil
}

// RegisterVerificationKey overwrites the registered verification key hash.
// Only the owner may do this and it may be done repeatedly: there is no one
// time set guarantee, re-registration redirects trust for all future
// callbacks.
func (h *Hook) RegisterVerificationKey(caller common.Address,
	key common.Hash) error {

	h.mtx.Lock()
	defer h.mtx.Unlock()

	if caller != h.owner {
		return ErrUnauthorized
	}

	err := h.store.StoreVerificationKey(
		key, statedb.NewKeyRegisteredEvent(key),
	)
	if err != nil {
		return fmt.Errorf("unable to store verification key: %w", err)
	}

	h.vkHash = key

	log.Infof("Registered verification key %v", key)
	return nil
}

// CurrentVolatility returns the most recently accepted volatility value.
func (h *Hook) CurrentVolatility() *big.Int {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return new(big.Int).Set(h.volatility)
}

// Owner returns the identifier of the administrative role.
func (h *Hook) Owner() common.Address {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return h.owner
}

// QuoteFee previews the fee the trade time path would select for the given
// signed amount, using identical arithmetic. It never mutates state and does
// not carry the override flag.
func (h *Hook) QuoteFee(signedAmount *big.Int) (uint32, error) {
	return h.feeForAmount(signedAmount)
}

// feeForAmount runs the fee curve on the absolute trade amount against the
// current volatility.
func (h *Hook) feeForAmount(signedAmount *big.Int) (uint32, error) {
	h.mtx.Lock()
	volatility := new(big.Int).Set(h.volatility)
	h.mtx.Unlock()

	return h.curve.Fee(new(big.Int).Abs(signedAmount), volatility)
}
