package deploy

import (
	"context"
	"math/big"
	"testing"

	ftcontract "github.com/nspcc-dev/ft-ledger/contracts/ft"
	"github.com/nspcc-dev/ft-ledger/host/hosttest"
	"github.com/nspcc-dev/ft-ledger/rpc/ft"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDeploy(t *testing.T) {
	e := hosttest.NewExecutor(t)
	e.Deploy("token", ftcontract.New(ftcontract.Prm{}))

	ctx := context.Background()
	prm := Prm{
		Logger:      zaptest.NewLogger(t),
		Actor:       e.NewActor(ctx, "owner"),
		Contract:    "token",
		Owner:       "owner",
		TotalSupply: big.NewInt(1_000_000),
		Metadata: ft.Metadata{
			Spec:     "ft-1.0.0",
			Name:     "Example Token",
			Symbol:   "EXT",
			Decimals: big.NewInt(8),
		},
	}

	require.NoError(t, Deploy(ctx, prm))
	require.EqualValues(t, 1, e.Height())

	// repeated deployment changes nothing
	require.NoError(t, Deploy(ctx, prm))
	require.EqualValues(t, 1, e.Height())

	supply, err := ft.NewReader(prm.Actor, "token").TotalSupply()
	require.NoError(t, err)
	require.EqualValues(t, 1_000_000, supply.Int64())

	t.Run("another owner", func(t *testing.T) {
		other := prm
		other.Owner = "other"
		require.Error(t, Deploy(ctx, other))
	})

	t.Run("another symbol", func(t *testing.T) {
		other := prm
		other.Metadata.Symbol = "OTH"
		require.Error(t, Deploy(ctx, other))
	})

	t.Run("invalid metadata", func(t *testing.T) {
		e := hosttest.NewExecutor(t)
		e.Deploy("token", ftcontract.New(ftcontract.Prm{}))

		other := prm
		other.Actor = e.NewActor(ctx, "owner")
		other.Metadata.Spec = "ft-0.0.1"
		require.ErrorIs(t, Deploy(ctx, other), ftcontract.ErrInvalidMetadata)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		require.ErrorIs(t, Deploy(ctx, prm), context.Canceled)
	})
}
