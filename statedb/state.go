package statedb

import (
	"bytes"
	"math/big"

	"github.com/0xhaz/Dynamic-Fee/amm"
	"github.com/0xhaz/Dynamic-Fee/event"
	"github.com/ethereum/go-ethereum/common"
	"go.etcd.io/bbolt"
)

var (
	// volatilityKey is the state bucket key of the current volatility
	// cell, an unsigned 256 bit big endian word.
	volatilityKey = []byte("volatility")

	// verificationKeyKey is the state bucket key of the registered
	// verification key hash.
	verificationKeyKey = []byte("verification-key")

	// ownerKey is the state bucket key of the owner identifier.
	ownerKey = []byte("owner")
)

// Volatility returns the most recently stored volatility value. A database
// that never saw an update reports zero.
func (db *DB) Volatility() (*big.Int, error) {
	volatility := big.NewInt(0)
	err := db.View(func(tx *bbolt.Tx) error {
		state, err := getBucket(tx, stateBucketKey)
		if err != nil {
			return err
		}

		rawValue := state.Get(volatilityKey)
		if rawValue == nil {
			return nil
		}
		return ReadElement(bytes.NewReader(rawValue), &volatility)
	})
	if err != nil {
		return nil, err
	}
	return volatility, nil
}

// StoreVolatility overwrites the current volatility cell and logs the given
// event in the same transaction, so either both writes land or neither does.
// A nil event only writes the cell.
func (db *DB) StoreVolatility(volatility *big.Int, evt event.Event) error {
	var buf bytes.Buffer
	if err := WriteElement(&buf, volatility); err != nil {
		return err
	}

	return db.Update(func(tx *bbolt.Tx) error {
		state, err := getBucket(tx, stateBucketKey)
		if err != nil {
			return err
		}
		if err := state.Put(volatilityKey, buf.Bytes()); err != nil {
			return err
		}
		return storeEventTx(tx, evt)
	})
}

// VerificationKey returns the registered verification key hash. A database
// that never saw a registration reports the zero hash.
func (db *DB) VerificationKey() (common.Hash, error) {
	var key common.Hash
	err := db.View(func(tx *bbolt.Tx) error {
		state, err := getBucket(tx, stateBucketKey)
		if err != nil {
			return err
		}

		rawKey := state.Get(verificationKeyKey)
		if rawKey == nil {
			return nil
		}
		return ReadElement(bytes.NewReader(rawKey), &key)
	})
	if err != nil {
		return common.Hash{}, err
	}
	return key, nil
}

// StoreVerificationKey overwrites the registered verification key hash and
// logs the given event in the same transaction. A nil event only writes the
// cell.
func (db *DB) StoreVerificationKey(key common.Hash, evt event.Event) error {
	var buf bytes.Buffer
	if err := WriteElement(&buf, key); err != nil {
		return err
	}

	return db.Update(func(tx *bbolt.Tx) error {
		state, err := getBucket(tx, stateBucketKey)
		if err != nil {
			return err
		}
		if err := state.Put(verificationKeyKey, buf.Bytes()); err != nil {
			return err
		}
		return storeEventTx(tx, evt)
	})
}

// Owner returns the stored owner identifier. A database that never saw an
// owner reports the zero address.
func (db *DB) Owner() (common.Address, error) {
	var owner common.Address
	err := db.View(func(tx *bbolt.Tx) error {
		state, err := getBucket(tx, stateBucketKey)
		if err != nil {
			return err
		}

		rawOwner := state.Get(ownerKey)
		if rawOwner == nil {
			return nil
		}
		return ReadElement(bytes.NewReader(rawOwner), &owner)
	})
	if err != nil {
		return common.Address{}, err
	}
	return owner, nil
}

// StoreOwner overwrites the stored owner identifier.
func (db *DB) StoreOwner(owner common.Address) error {
	var buf bytes.Buffer
	if err := WriteElement(&buf, owner); err != nil {
		return err
	}

	return db.Update(func(tx *bbolt.Tx) error {
		state, err := getBucket(tx, stateBucketKey)
		if err != nil {
			return err
		}
		return state.Put(ownerKey, buf.Bytes())
	})
}

// MarkPoolAdmitted records that a pool passed the dynamic fee admission
// check and logs the given event in the same transaction. The pool's fee
// mode is stored alongside for inspection.
func (db *DB) MarkPoolAdmitted(cfg amm.PoolConfig, evt event.Event) error {
	var buf bytes.Buffer
	err := WriteElements(&buf, cfg.FeeMode, cfg.Token0, cfg.Token1)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bbolt.Tx) error {
		pools, err := getBucket(tx, poolBucketKey)
		if err != nil {
			return err
		}
		if err := pools.Put(cfg.ID[:], buf.Bytes()); err != nil {
			return err
		}
		return storeEventTx(tx, evt)
	})
}

// IsPoolAdmitted reports whether a pool previously passed the admission
// check.
func (db *DB) IsPoolAdmitted(id amm.PoolID) (bool, error) {
	var admitted bool
	err := db.View(func(tx *bbolt.Tx) error {
		pools, err := getBucket(tx, poolBucketKey)
		if err != nil {
			return err
		}
		admitted = pools.Get(id[:]) != nil
		return nil
	})
	if err != nil {
		return false, err
	}
	return admitted, nil
}
