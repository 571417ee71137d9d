// Package client implements a Go client for the hook daemon's JSON-RPC API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync/atomic"
	"time"

	dynamicfee "github.com/0xhaz/Dynamic-Fee"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// defaultRequestTimeout is the maximum time we wait for the daemon to answer
// a single request.
const defaultRequestTimeout = 30 * time.Second

// Client talks to a hook daemon.
type Client struct {
	uri    string
	client *http.Client
	nextID uint64
}

// New creates a new client object talking to the given URI.
func New(uri string) *Client {
	return &Client{
		uri: uri,
		client: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}
}

// rpcRequest is the JSON-RPC request envelope the gorilla/rpc json codec
// expects: the single argument struct wrapped in a params array.
type rpcRequest struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
	ID     uint64        `json:"id"`
}

// rpcResponse is the JSON-RPC response envelope.
type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
	ID     uint64          `json:"id"`
}

// call invokes a single method on the daemon and decodes the reply.
func (c *Client) call(ctx context.Context, method string, args,
	reply interface{}) error {

	envelope := rpcRequest{
		Method: method,
		Params: []interface{}{args},
		ID:     atomic.AddUint64(&c.nextID, 1),
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.uri, bytes.NewReader(payload),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d",
			resp.StatusCode)
	}

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return err
	}
	if decoded.Error != nil {
		return fmt.Errorf("%s: %s", method, *decoded.Error)
	}

	return json.Unmarshal(decoded.Result, reply)
}

// ProofResult delivers a circuit output for the given request ID to the
// hook's callback entry point.
func (c *Client) ProofResult(ctx context.Context, requestID [32]byte,
	output []byte) (*big.Int, error) {

	resp := new(dynamicfee.ProofResultReply)
	err := c.call(ctx, "dynamicfee.ProofResult",
		&dynamicfee.ProofResultArgs{
			RequestID: hexutil.Encode(requestID[:]),
			Output:    hexutil.Encode(output),
		}, resp,
	)
	if err != nil {
		return nil, err
	}

	volatility, ok := new(big.Int).SetString(resp.Volatility, 10)
	if !ok {
		return nil, fmt.Errorf("invalid volatility in reply: %v",
			resp.Volatility)
	}
	return volatility, nil
}

// RegisterKey registers a new verification key hash on behalf of the given
// caller.
func (c *Client) RegisterKey(ctx context.Context, caller,
	key string) error {

	resp := new(dynamicfee.RegisterKeyReply)
	return c.call(ctx, "dynamicfee.RegisterKey",
		&dynamicfee.RegisterKeyArgs{
			Caller: caller,
			Key:    key,
		}, resp,
	)
}

// Volatility fetches the current volatility value.
func (c *Client) Volatility(ctx context.Context) (*big.Int, error) {
	resp := new(dynamicfee.VolatilityReply)
	err := c.call(
		ctx, "dynamicfee.Volatility",
		&dynamicfee.VolatilityArgs{}, resp,
	)
	if err != nil {
		return nil, err
	}

	volatility, ok := new(big.Int).SetString(resp.Volatility, 10)
	if !ok {
		return nil, fmt.Errorf("invalid volatility in reply: %v",
			resp.Volatility)
	}
	return volatility, nil
}

// QuoteFee previews the fee for a signed trade amount.
func (c *Client) QuoteFee(ctx context.Context, amount *big.Int) (uint32,
	error) {

	resp := new(dynamicfee.QuoteFeeReply)
	err := c.call(ctx, "dynamicfee.QuoteFee", &dynamicfee.QuoteFeeArgs{
		Amount: amount.String(),
	}, resp)
	if err != nil {
		return 0, err
	}

	return resp.Fee, nil
}
