package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nspcc-dev/ft-ledger/common"
	"github.com/urfave/cli"
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = filepath.Base(os.Args[0])
	app.Usage = "Fungible token ledger"
	app.Version = fmt.Sprintf("%d", common.Version)
	app.Flags = []cli.Flag{
		configFlag,
		asFlag,
	}
	app.Commands = []cli.Command{
		initCommand,
		supplyCommand,
		balanceCommand,
		holdersCommand,
		metadataCommand,
		storageBalanceCommand,
		registerCommand,
		unregisterCommand,
		transferCommand,
		transferCallCommand,
		mintCommand,
		dumpCommand,
		restoreCommand,
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
