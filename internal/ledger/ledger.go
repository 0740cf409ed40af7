// Package ledger opens the configured ledger for the command line tools.
package ledger

import (
	"fmt"

	"github.com/nspcc-dev/ft-ledger/common"
	"github.com/nspcc-dev/ft-ledger/config"
	"github.com/nspcc-dev/ft-ledger/contracts/ft"
	"github.com/nspcc-dev/ft-ledger/dump"
	"github.com/nspcc-dev/ft-ledger/host"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"go.uber.org/zap"
)

// ContractName is the name of the token contract code in dumps.
const ContractName = "ft"

// Open opens the ledger store and returns Executor with the token contract
// deployed under the configured account.
func Open(cfg *config.Config, log *zap.Logger) (*host.Executor, error) {
	price, err := cfg.StoragePrice()
	if err != nil {
		return nil, err
	}
	minPayment, err := cfg.MinTransferPayment()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.Ledger.DB)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Ledger.DB.Type, err)
	}

	e, err := host.NewExecutor(store, host.Options{
		Logger:         log,
		StoragePrice:   price,
		RecordOverhead: cfg.Ledger.RecordOverhead,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("init executor: %w", err)
	}

	e.Deploy(cfg.Ledger.Contract, ft.New(ft.Prm{MinTransferPayment: minPayment}))

	log.Debug("ledger opened",
		zap.String("db", cfg.Ledger.DB.Type),
		zap.String("contract", cfg.Ledger.Contract),
		zap.Uint32("height", e.Height()))

	return e, nil
}

// Contracts returns states of the contracts deployed by Open for dumping.
func Contracts(cfg *config.Config) []dump.ContractState {
	return []dump.ContractState{{
		Name:    ContractName,
		Account: cfg.Ledger.Contract,
		Version: common.Version,
	}}
}
