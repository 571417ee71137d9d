package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	dynamicfee "github.com/0xhaz/Dynamic-Fee"
	"github.com/0xhaz/Dynamic-Fee/client"
	"github.com/urfave/cli"
)

var rpcServerFlag = cli.StringFlag{
	Name:  "rpcserver",
	Value: "http://" + dynamicfee.DefaultRPCListen,
	Usage: "URI of the dynfeed JSON-RPC server",
}

func printJSON(resp interface{}) {
	b, err := json.Marshal(resp)
	if err != nil {
		fatal(err)
	}

	var out bytes.Buffer
	_ = json.Indent(&out, b, "", "\t")
	out.WriteString("\n")
	_, _ = out.WriteTo(os.Stdout)
}

func fatal(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "[dynfee] %v\n", err)
	os.Exit(1)
}

func getClient(ctx *cli.Context) *client.Client {
	return client.New(ctx.GlobalString(rpcServerFlag.Name))
}

func main() {
	app := cli.NewApp()
	app.Name = "dynfee"
	app.Version = dynamicfee.Version()
	app.Usage = "control plane for the dynamic volatility fee hook daemon"
	app.Flags = []cli.Flag{rpcServerFlag}
	app.Commands = []cli.Command{
		registerKeyCommand,
		volatilityCommand,
		quoteFeeCommand,
		proofResultCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}
