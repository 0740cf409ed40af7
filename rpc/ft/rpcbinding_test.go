package ft_test

import (
	"context"
	"math/big"
	"testing"

	ftcontract "github.com/nspcc-dev/ft-ledger/contracts/ft"
	"github.com/nspcc-dev/ft-ledger/host"
	"github.com/nspcc-dev/ft-ledger/host/hosttest"
	"github.com/nspcc-dev/ft-ledger/rpc/ft"
	"github.com/stretchr/testify/require"
)

const tokenAccount = "token"

func TestContract(t *testing.T) {
	e := hosttest.NewExecutor(t)
	e.Deploy(tokenAccount, ftcontract.New(ftcontract.Prm{}))

	ctx := context.Background()
	ownerToken := ft.New(e.NewActor(ctx, "owner"), tokenAccount)
	bobToken := ft.New(e.NewActor(ctx, "bob"), tokenAccount)

	_, err := ownerToken.TotalSupply()
	require.ErrorIs(t, err, ftcontract.ErrNotInitialized)

	_, err = ownerToken.Init("owner", big.NewInt(1000), &ft.Metadata{
		Spec:          "ft-1.0.0",
		Name:          "Example Token",
		Symbol:        "EXT",
		Reference:     "https://example.org/ext.json",
		ReferenceHash: make([]byte, 32),
		Decimals:      big.NewInt(2),
	})
	require.NoError(t, err)

	m, err := ownerToken.Metadata()
	require.NoError(t, err)
	require.Equal(t, "EXT", m.Symbol)
	require.Empty(t, m.Icon)
	require.Equal(t, "https://example.org/ext.json", m.Reference)
	require.Len(t, m.ReferenceHash, 32)

	symbol, err := bobToken.Symbol()
	require.NoError(t, err)
	require.Equal(t, "EXT", symbol)

	decimals, err := bobToken.Decimals()
	require.NoError(t, err)
	require.Equal(t, 2, decimals)

	owner, err := bobToken.Owner()
	require.NoError(t, err)
	require.Equal(t, "owner", owner)

	version, err := bobToken.Version()
	require.NoError(t, err)
	require.Positive(t, version.Sign())

	bounds, err := bobToken.StorageBalanceBounds()
	require.NoError(t, err)
	require.Zero(t, bounds.Min.Cmp(bounds.Max))

	sb, err := bobToken.StorageBalanceOf("bob")
	require.NoError(t, err)
	require.Nil(t, sb)

	r, err := bobToken.Register(bounds.Min, "bob")
	require.NoError(t, err)
	require.False(t, r.Refund.IsZero())

	sb, err = bobToken.StorageBalanceOf("bob")
	require.NoError(t, err)
	require.Zero(t, sb.Available.Sign())
	require.Equal(t, sb.Total.Uint64()+r.Refund.Uint64(), bounds.Min.Uint64())

	r, err = ownerToken.Transfer(big.NewInt(1), "owner", "bob", big.NewInt(300), []byte("memo"))
	require.NoError(t, err)

	events, err := ft.TransferXEventsFromReceipt(r)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "owner", events[0].From)
	require.Equal(t, "bob", events[0].To)
	require.EqualValues(t, 300, events[0].Amount.Int64())
	require.Equal(t, []byte("memo"), events[0].Details)

	_, err = bobToken.Transfer(big.NewInt(1), "bob", "owner", big.NewInt(301), nil)
	require.ErrorIs(t, err, ftcontract.ErrInsufficientBalance)

	_, err = bobToken.Mint("bob", big.NewInt(5), nil)
	require.ErrorIs(t, err, ftcontract.ErrNotAuthorized)

	r, err = ownerToken.Mint("bob", big.NewInt(5), nil)
	require.NoError(t, err)

	transfers, err := ft.TransferEventsFromReceipt(r)
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	require.Empty(t, transfers[0].From)

	balance, err := bobToken.BalanceOf("bob")
	require.NoError(t, err)
	require.EqualValues(t, 305, balance.Int64())

	supply, err := bobToken.TotalSupply()
	require.NoError(t, err)
	require.EqualValues(t, 1005, supply.Int64())

	t.Run("transfer and notify", func(t *testing.T) {
		// bob has no receiver contract, so everything is returned
		r, err := ownerToken.TransferAndNotify(big.NewInt(1), "owner", "bob", big.NewInt(100), nil, []byte("payload"))
		require.NoError(t, err)

		p, err := ft.PendingTransferFromReceipt(r)
		require.NoError(t, err)
		require.Equal(t, "pending", p.State)
		require.EqualValues(t, 100, p.Amount.Int64())

		transfers, err := ft.TransferEventsFromReceipt(r)
		require.NoError(t, err)
		require.Len(t, transfers, 2)
		require.Equal(t, "bob", transfers[1].From)
		require.Equal(t, "owner", transfers[1].To)

		balance, err := bobToken.BalanceOf("bob")
		require.NoError(t, err)
		require.EqualValues(t, 305, balance.Int64())
	})

	t.Run("unregister", func(t *testing.T) {
		_, err := bobToken.Unregister("bob", false)
		require.ErrorIs(t, err, ftcontract.ErrAccountHasBalance)

		r, err := bobToken.Unregister("bob", true)
		require.NoError(t, err)
		require.Equal(t, sb.Total.Uint64(), r.Refund.Uint64())

		supply, err := bobToken.TotalSupply()
		require.NoError(t, err)
		require.EqualValues(t, 700, supply.Int64())
	})

	require.Equal(t, host.ScriptHash(tokenAccount), r.Notifications[0].ScriptHash)
}
