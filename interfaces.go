package dynamicfee

import (
	"math/big"

	"github.com/0xhaz/Dynamic-Fee/amm"
	"github.com/0xhaz/Dynamic-Fee/event"
	"github.com/0xhaz/Dynamic-Fee/statedb"
	"github.com/ethereum/go-ethereum/common"
)

// Store is the persistence surface the hook requires: the three state cells,
// the admitted pool set and the event log.
type Store interface {
	// Volatility returns the most recently stored volatility value, zero
	// if no update was ever accepted.
	Volatility() (*big.Int, error)

	// StoreVolatility overwrites the current volatility cell and logs the
	// given event atomically: a failure of either write leaves neither
	// behind. A nil event only writes the cell.
	StoreVolatility(volatility *big.Int, evt event.Event) error

	// VerificationKey returns the registered verification key hash, the
	// zero hash if no key was ever registered.
	VerificationKey() (common.Hash, error)

	// StoreVerificationKey overwrites the registered verification key
	// hash and logs the given event atomically.
	StoreVerificationKey(key common.Hash, evt event.Event) error

	// Owner returns the stored owner identifier, the zero address if no
	// owner was ever stored.
	Owner() (common.Address, error)

	// StoreOwner overwrites the stored owner identifier.
	StoreOwner(owner common.Address) error

	// MarkPoolAdmitted records that a pool passed the dynamic fee
	// admission check and logs the given event atomically.
	MarkPoolAdmitted(cfg amm.PoolConfig, evt event.Event) error

	// IsPoolAdmitted reports whether a pool previously passed the
	// admission check.
	IsPoolAdmitted(id amm.PoolID) (bool, error)

	// LogEvent appends an event to the event log.
	LogEvent(evt event.Event) error
}

// A compile time check to make certain that statedb.DB implements the Store
// interface.
var _ Store = (*statedb.DB)(nil)
