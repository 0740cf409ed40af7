package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/nspcc-dev/ft-ledger/config"
	"github.com/nspcc-dev/ft-ledger/dump"
	"github.com/nspcc-dev/ft-ledger/internal/ledger"
)

func main() {
	configPath := flag.String("config", "", "Path to the ledger configuration file")
	label := flag.String("label", "", "Label of the ledger environment (e.g. 'testnet')")

	flag.Parse()

	switch {
	case *configPath == "":
		log.Fatal("missing ledger configuration file")
	case *label == "":
		log.Fatal("missing ledger label")
	}

	const rootDir = "testdata"

	err := os.MkdirAll(rootDir, 0700)
	if err != nil {
		log.Fatal(fmt.Errorf("create root dir: %w", err))
	}

	id, err := _dump(*configPath, rootDir, *label)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("token ledger %s is successfully dumped to '%s/'\n", id, rootDir)
}

func _dump(configPath, rootDir, label string) (dump.ID, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return dump.ID{}, err
	}

	l, err := cfg.NewLogger()
	if err != nil {
		return dump.ID{}, fmt.Errorf("init logger: %w", err)
	}

	e, err := ledger.Open(cfg, l)
	if err != nil {
		return dump.ID{}, fmt.Errorf("open ledger: %w", err)
	}

	defer e.Close()

	return dump.Executor(e, rootDir, label, ledger.Contracts(cfg))
}
