package main

import (
	"github.com/urfave/cli"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config, c",
		Usage: "YAML configuration file. If not specified in-memory ledger with default settings is used",
	}
	asFlag = cli.StringFlag{
		Name:  "as",
		Usage: "Account signing the calls. Defaults to the token owner from the configuration",
	}
	memoFlag = cli.StringFlag{
		Name:  "memo",
		Usage: "Free-form transfer memo",
	}
	paymentFlag = cli.StringFlag{
		Name:  "payment",
		Usage: "Payment attached to the call in minimal units. Defaults to the configured minimal transfer payment",
	}
	payloadFlag = cli.StringFlag{
		Name:  "payload",
		Usage: "Payload passed to the receiver contract",
	}
	depositFlag = cli.StringFlag{
		Name:  "deposit",
		Usage: "Storage deposit in minimal units. Defaults to the maximum registration cost",
	}
	forceFlag = cli.BoolFlag{
		Name:  "force",
		Usage: "Burn the remaining balance of the account",
	}
	outFlag = cli.StringFlag{
		Name:  "out",
		Usage: "Directory of the ledger dumps",
		Value: "testdata",
	}
	labelFlag = cli.StringFlag{
		Name:  "label",
		Usage: "Label of the dump (e.g. 'testnet')",
	}
)
