package dynamicfee

import (
	"fmt"
	"math/big"
	"net/http"

	"github.com/0xhaz/Dynamic-Fee/verifier"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/rpc/v2"
	rpcjson "github.com/gorilla/rpc/v2/json"
)

// serviceName is the namespace all JSON-RPC methods of the hook are
// registered under.
const serviceName = "dynamicfee"

// Service is the JSON-RPC API service of the hook. It exposes the callback
// entry point for the proof verification service and the administrative
// surface.
type Service struct {
	hook *Hook
}

// NewRPCServer creates a JSON-RPC server serving the hook's API.
func NewRPCServer(hook *Hook) *rpc.Server {
	server := rpc.NewServer()
	server.RegisterCodec(rpcjson.NewCodec(), "application/json")
	server.RegisterCodec(
		rpcjson.NewCodec(), "application/json;charset=UTF-8",
	)

	// The service is registered under the lower case service name, so
	// methods are invoked as e.g. "dynamicfee.ProofResult".
	if err := server.RegisterService(&Service{hook: hook}, serviceName); err != nil {
		// Registration only fails for malformed method signatures,
		// which is a programming error.
		panic(err)
	}

	return server
}

// ProofResultArgs is the request of the callback entry point.
type ProofResultArgs struct {
	// RequestID is the hex encoded 32 byte request identifier.
	RequestID string `json:"requestId"`

	// Output is the hex encoded circuit output bytes.
	Output string `json:"output"`
}

// ProofResultReply is the response of the callback entry point.
type ProofResultReply struct {
	// Volatility is the decimal representation of the newly accepted
	// volatility value.
	Volatility string `json:"volatility"`
}

// ProofResult is the callback the proof verification service invokes after
// it validated a proof. The payload is only accepted if it passes the
// commitment and verification key checks.
func (s *Service) ProofResult(r *http.Request, args *ProofResultArgs,
	reply *ProofResultReply) error {

	requestID, err := parseRequestID(args.RequestID)
	if err != nil {
		return err
	}
	output, err := hexutil.Decode(args.Output)
	if err != nil {
		return fmt.Errorf("invalid circuit output: %w", err)
	}

	volatility, err := s.hook.HandleProofResult(
		r.Context(), requestID, output,
	)
	if err != nil {
		return err
	}

	reply.Volatility = volatility.String()
	return nil
}

// RegisterKeyArgs is the request of the key registration method.
type RegisterKeyArgs struct {
	// Caller is the hex encoded address attempting the registration.
	Caller string `json:"caller"`

	// Key is the hex encoded 32 byte verification key hash.
	Key string `json:"key"`
}

// RegisterKeyReply is the response of the key registration method.
type RegisterKeyReply struct {
	// Key echoes the newly registered key hash.
	Key string `json:"key"`
}

// RegisterKey overwrites the registered verification key hash. Only the
// owner may do this.
func (s *Service) RegisterKey(_ *http.Request, args *RegisterKeyArgs,
	reply *RegisterKeyReply) error {

	if !common.IsHexAddress(args.Caller) {
		return fmt.Errorf("invalid caller address: %v", args.Caller)
	}

	// Decode strictly: a malformed hex string must not silently collapse
	// into the zero key and lock out all future callbacks.
	rawKey, err := hexutil.Decode(args.Key)
	if err != nil {
		return fmt.Errorf("invalid verification key: %w", err)
	}
	if len(rawKey) != common.HashLength {
		return fmt.Errorf("invalid verification key length: %d",
			len(rawKey))
	}

	key := common.BytesToHash(rawKey)
	err = s.hook.RegisterVerificationKey(
		common.HexToAddress(args.Caller), key,
	)
	if err != nil {
		return err
	}

	reply.Key = key.Hex()
	return nil
}

// VolatilityArgs is the request of the volatility read method.
type VolatilityArgs struct{}

// VolatilityReply is the response of the volatility read method.
type VolatilityReply struct {
	// Volatility is the decimal representation of the current volatility
	// value.
	Volatility string `json:"volatility"`
}

// Volatility returns the most recently accepted volatility value.
func (s *Service) Volatility(_ *http.Request, _ *VolatilityArgs,
	reply *VolatilityReply) error {

	reply.Volatility = s.hook.CurrentVolatility().String()
	return nil
}

// QuoteFeeArgs is the request of the fee preview method.
type QuoteFeeArgs struct {
	// Amount is the decimal representation of the signed trade amount.
	Amount string `json:"amount"`
}

// QuoteFeeReply is the response of the fee preview method.
type QuoteFeeReply struct {
	// Fee is the previewed fee in hundredths of a basis point, without
	// the override flag.
	Fee uint32 `json:"fee"`
}

// QuoteFee previews the fee the trade time path would select for the given
// signed amount. It uses identical arithmetic and never mutates state.
func (s *Service) QuoteFee(_ *http.Request, args *QuoteFeeArgs,
	reply *QuoteFeeReply) error {

	amount, ok := new(big.Int).SetString(args.Amount, 10)
	if !ok {
		return fmt.Errorf("invalid amount: %v", args.Amount)
	}

	fee, err := s.hook.QuoteFee(amount)
	if err != nil {
		return err
	}

	reply.Fee = fee
	return nil
}

// parseRequestID decodes a hex encoded 32 byte request identifier.
func parseRequestID(s string) (verifier.RequestID, error) {
	var id verifier.RequestID

	raw, err := hexutil.Decode(s)
	if err != nil {
		return id, fmt.Errorf("invalid request ID: %w", err)
	}
	if len(raw) != len(id) {
		return id, fmt.Errorf("invalid request ID length: %d",
			len(raw))
	}

	copy(id[:], raw)
	if id == verifier.ZeroRequestID {
		return id, fmt.Errorf("request ID must not be empty")
	}

	return id, nil
}
