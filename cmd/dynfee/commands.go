package main

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli"
)

// volScale is the fixed point scale of volatility values: a stored value of
// 20e18 reads as 20 percent.
const volScale = -18

// feePercentScale converts a fee in hundredths of a basis point into
// percent.
const feePercentScale = -4

var registerKeyCommand = cli.Command{
	Name:      "registerkey",
	Usage:     "register the trusted verification key hash",
	ArgsUsage: "caller key",
	Description: `
	Overwrites the registered verification key hash. Only the owner's
	address is accepted as the caller. Registration is repeatable,
	re-registering redirects trust for all future proof callbacks.`,
	Action: registerKey,
}

func registerKey(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return cli.ShowCommandHelp(ctx, "registerkey")
	}

	err := getClient(ctx).RegisterKey(
		context.Background(), ctx.Args().Get(0), ctx.Args().Get(1),
	)
	if err != nil {
		return err
	}

	printJSON(struct {
		Key string `json:"key"`
	}{
		Key: ctx.Args().Get(1),
	})
	return nil
}

var volatilityCommand = cli.Command{
	Name:  "volatility",
	Usage: "read the current volatility value",
	Description: `
	Shows the most recently accepted volatility measurement, both as the
	raw 18 decimal scaled integer and in percent.`,
	Action: volatility,
}

func volatility(ctx *cli.Context) error {
	value, err := getClient(ctx).Volatility(context.Background())
	if err != nil {
		return err
	}

	printJSON(struct {
		Volatility string `json:"volatility"`
		Percent    string `json:"percent"`
	}{
		Volatility: value.String(),
		Percent:    decimal.NewFromBigInt(value, volScale).String(),
	})
	return nil
}

var quoteFeeCommand = cli.Command{
	Name:      "quotefee",
	Usage:     "preview the swap fee for a trade amount",
	ArgsUsage: "amount",
	Description: `
	Previews the fee the hook would select for the given signed trade
	amount, using the same arithmetic as the trade time path. The preview
	never mutates state.`,
	Action: quoteFee,
}

func quoteFee(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "quotefee")
	}

	amount, ok := new(big.Int).SetString(ctx.Args().First(), 10)
	if !ok {
		return fmt.Errorf("invalid amount: %v", ctx.Args().First())
	}

	fee, err := getClient(ctx).QuoteFee(
		context.Background(), amount,
	)
	if err != nil {
		return err
	}

	printJSON(struct {
		Fee     uint32 `json:"fee"`
		Percent string `json:"percent"`
	}{
		Fee: fee,
		Percent: decimal.New(
			int64(fee), feePercentScale,
		).String(),
	})
	return nil
}

var proofResultCommand = cli.Command{
	Name:      "proofresult",
	Usage:     "deliver a circuit output to the callback entry point",
	ArgsUsage: "request-id output",
	Description: `
	Delivers a hex encoded circuit output for a hex encoded 32 byte
	request ID, as the proof verification service would. The payload is
	only accepted if it passes the commitment and verification key
	checks.`,
	Action: proofResult,
}

func proofResult(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return cli.ShowCommandHelp(ctx, "proofresult")
	}

	rawID, err := hexutil.Decode(ctx.Args().Get(0))
	if err != nil {
		return fmt.Errorf("invalid request ID: %w", err)
	}
	var requestID [32]byte
	if len(rawID) != len(requestID) {
		return fmt.Errorf("invalid request ID length: %d", len(rawID))
	}
	copy(requestID[:], rawID)

	output, err := hexutil.Decode(ctx.Args().Get(1))
	if err != nil {
		return fmt.Errorf("invalid circuit output: %w", err)
	}

	value, err := getClient(ctx).ProofResult(
		context.Background(), requestID, output,
	)
	if err != nil {
		return err
	}

	printJSON(struct {
		Volatility string `json:"volatility"`
		Percent    string `json:"percent"`
	}{
		Volatility: value.String(),
		Percent:    decimal.NewFromBigInt(value, volScale).String(),
	})
	return nil
}
