package deploy

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	ftcontract "github.com/nspcc-dev/ft-ledger/contracts/ft"
	"github.com/nspcc-dev/ft-ledger/rpc/ft"
	"go.uber.org/zap"
)

// Prm groups all parameters of the token deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Actor making calls on behalf of the deploying account.
	Actor ft.Actor

	// Account of the token contract.
	Contract string

	// Owner of the token getting the whole initial supply.
	Owner string
	// Initial supply of the token.
	TotalSupply *big.Int
	// Token metadata.
	Metadata ft.Metadata
}

// Deploy initializes the token contract with given parameters if it has not
// been initialized yet. Already initialized token is checked to have the same
// owner and symbol, so Deploy may be called any number of times.
//
// Summary of stages:
//  1. check of the current contract state
//  2. initialization if needed
//  3. check of the resulting state
func Deploy(ctx context.Context, prm Prm) error {
	if prm.Logger == nil {
		prm.Logger = zap.NewNop()
	}

	err := ctx.Err()
	if err != nil {
		return err
	}

	reader := ft.NewReader(prm.Actor, prm.Contract)
	l := prm.Logger.With(zap.String("contract", prm.Contract))

	l.Info("checking token state...")

	_, err = reader.Owner()
	if err == nil {
		l.Info("token is already initialized, checking parameters...")
		return checkToken(reader, prm)
	}
	if !errors.Is(err, ftcontract.ErrNotInitialized) {
		return fmt.Errorf("read token owner: %w", err)
	}

	l.Info("token is not initialized yet, initializing...",
		zap.String("owner", prm.Owner), zap.Stringer("supply", prm.TotalSupply))

	r, err := ft.New(prm.Actor, prm.Contract).Init(prm.Owner, prm.TotalSupply, &prm.Metadata)
	if err != nil {
		return fmt.Errorf("init token: %w", err)
	}

	l.Info("token successfully initialized", zap.Uint32("height", r.Height))

	err = checkToken(reader, prm)
	if err != nil {
		return fmt.Errorf("check initialized token: %w", err)
	}

	l.Info("token is ready")

	return nil
}

func checkToken(reader *ft.ContractReader, prm Prm) error {
	owner, err := reader.Owner()
	if err != nil {
		return fmt.Errorf("read token owner: %w", err)
	}
	if owner != prm.Owner {
		return fmt.Errorf("token owner mismatch: expected %s, got %s", prm.Owner, owner)
	}

	symbol, err := reader.Symbol()
	if err != nil {
		return fmt.Errorf("read token symbol: %w", err)
	}
	if symbol != prm.Metadata.Symbol {
		return fmt.Errorf("token symbol mismatch: expected %s, got %s", prm.Metadata.Symbol, symbol)
	}

	return nil
}
