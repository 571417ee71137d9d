// Package verifier implements the authentication check that binds an
// asynchronously delivered circuit output to a previously proved computation.
//
// The external proof verification service records, under a request ID, the
// hash the circuit's output bytes must match and the hash identifying which
// verification key produced it. This package re-derives the output hash and
// compares both against the recorded values; it performs no proof
// verification of its own.
package verifier

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// RequestID is the 32 byte identifier under which the proof verification
// service records a proved request.
type RequestID [32]byte

// String returns the hex encoded representation of the request ID.
func (r RequestID) String() string {
	return hex.EncodeToString(r[:])
}

const (
	// volatilityLen is the width in bytes of the volatility value within
	// the circuit output. The circuit emits the volatility as its first
	// output, a big endian uint248 occupying 31 of the 32 bytes of the
	// output slot.
	volatilityLen = 31
)

var (
	// ErrRequestNotFound is returned if the proof verification service
	// has no commitment recorded for a request ID.
	ErrRequestNotFound = errors.New("no commitment found for request")

	// ErrInvalidCommitment is returned if the hash of a delivered circuit
	// output does not match the recorded commitment. The payload is
	// discarded, no state is mutated.
	ErrInvalidCommitment = errors.New("circuit output does not match " +
		"commitment")

	// ErrUnrecognizedVerificationKey is returned if the recorded
	// verification key hash of a request does not match the locally
	// registered key, or if no key was ever registered.
	ErrUnrecognizedVerificationKey = errors.New("unrecognized " +
		"verification key")

	// ZeroRequestID is used to find out if a request ID is empty.
	ZeroRequestID RequestID
)

// CommitmentSource is the read-only interface of the external proof
// verification service. It must be queryable at the time a callback fires.
type CommitmentSource interface {
	// CommitmentAndKey returns the commitment hash and verification key
	// hash recorded for the given request ID. A request the service does
	// not know fails with ErrRequestNotFound.
	CommitmentAndKey(ctx context.Context,
		id RequestID) (common.Hash, common.Hash, error)
}

// Verifier authenticates circuit outputs against a commitment source.
type Verifier struct {
	src CommitmentSource
}

// New creates a verifier reading commitments from the given source.
func New(src CommitmentSource) *Verifier {
	return &Verifier{src: src}
}

// VerifyResult authenticates the circuit output delivered for the given
// request against the commitment source and the locally registered
// verification key, then decodes and returns the attested volatility value.
//
// The check is atomic in the sense that any failure leaves nothing behind: a
// caller only ever learns a volatility value from a payload that passed both
// the commitment and the key check.
func (v *Verifier) VerifyResult(ctx context.Context, id RequestID,
	circuitOutput []byte, registeredKey common.Hash) (*big.Int, error) {

	commitHash, vkHash, err := v.src.CommitmentAndKey(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestNotFound, err)
	}

	// The commitment check ties the bytes delivered in this call to the
	// specific computation that was proved.
	outputHash := crypto.Keccak256Hash(circuitOutput)
	if outputHash != commitHash {
		log.Warnf("Rejecting result for request %v: output hash %v "+
			"does not match commitment %v", id, outputHash,
			commitHash)
		return nil, ErrInvalidCommitment
	}

	// The key check makes sure the output was produced by the one circuit
	// this system trusts. A zero registered key means no key was ever
	// registered, which must reject every callback, including one whose
	// recorded key hash is itself zero.
	if registeredKey == (common.Hash{}) || vkHash != registeredKey {
		log.Warnf("Rejecting result for request %v: key hash %v not "+
			"registered", id, vkHash)
		return nil, ErrUnrecognizedVerificationKey
	}

	volatility, err := DecodeVolatility(circuitOutput)
	if err != nil {
		return nil, err
	}

	return volatility, nil
}

// DecodeVolatility extracts the volatility value from a circuit output: a big
// endian uint248 occupying the first 31 bytes.
func DecodeVolatility(circuitOutput []byte) (*big.Int, error) {
	if len(circuitOutput) < volatilityLen {
		return nil, fmt.Errorf("circuit output too short: got %d "+
			"bytes, need %d", len(circuitOutput), volatilityLen)
	}

	value := new(uint256.Int).SetBytes(circuitOutput[:volatilityLen])
	return value.ToBig(), nil
}
