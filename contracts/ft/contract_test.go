package ft_test

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ft-ledger/common"
	"github.com/nspcc-dev/ft-ledger/contracts/ft"
	"github.com/nspcc-dev/ft-ledger/host"
	"github.com/nspcc-dev/ft-ledger/host/hosttest"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

const (
	tokenAccount = "token"
	owner        = "owner"
	initSupply   = 1_000_000

	// price of the "bob" account record: 'a' + "bob", 16-byte balance and
	// record overhead
	bobRegistration = (1 + 3 + 16 + host.RecordOverhead) * host.DefaultStoragePrice
	// price of the longest account record
	maxRegistration = (1 + 64 + 16 + host.RecordOverhead) * host.DefaultStoragePrice

	deposit = 10_000_000
)

func testMetadata() ft.Metadata {
	return ft.Metadata{
		Spec:     "ft-1.0.0",
		Name:     "Example Token",
		Symbol:   "EXT",
		Decimals: 8,
	}
}

func metadataItem(t testing.TB, m ft.Metadata) stackitem.Item {
	item, err := m.ToStackItem()
	require.NoError(t, err)
	return item
}

func newToken(t testing.TB, opts ...func(*host.Options)) *hosttest.ContractInvoker {
	e := hosttest.NewExecutor(t, opts...)
	e.Deploy(tokenAccount, ft.New(ft.Prm{}))
	e.Deploy("receiver", receiver{})

	c := hosttest.NewInvoker(e, tokenAccount, owner)
	c.Invoke(t, nil, "init", owner, initSupply, metadataItem(t, testMetadata()))

	return c
}

func register(t testing.TB, c *hosttest.ContractInvoker, accounts ...string) {
	for i := range accounts {
		c.WithPayment(deposit).Invoke(t, nil, "register", accounts[i])
	}
}

func balanceOf(t testing.TB, c *hosttest.ContractInvoker, account string) int64 {
	n, err := c.Call(t, "balanceOf", account).TryInteger()
	require.NoError(t, err)
	return n.Int64()
}

func totalSupply(t testing.TB, c *hosttest.ContractInvoker) int64 {
	n, err := c.Call(t, "totalSupply").TryInteger()
	require.NoError(t, err)
	return n.Int64()
}

// requireConservation checks that total supply equals to the sum of balances.
func requireConservation(t testing.TB, c *hosttest.ContractInvoker) {
	sum := common.Zero()
	require.NoError(t, ft.IterateBalances(c.Exec, tokenAccount, func(_ string, balance *uint256.Int) error {
		sum.Add(sum, balance)
		return nil
	}))
	require.Equal(t, uint64(totalSupply(t, c)), sum.Uint64())
}

// receiver is a contract accepting transfers. It uses the amount written in
// the payload, fails on "fail" payload and returns non-integer on "bad".
type receiver struct{}

var errRejected = errors.New("transfer rejected")

func (receiver) Invoke(ic *host.Context, method string, args []stackitem.Item) (stackitem.Item, error) {
	if method != "onTransfer" {
		return nil, host.ErrMethodNotFound
	}

	payload, err := args[2].TryBytes()
	if err != nil {
		return nil, err
	}

	switch string(payload) {
	case "fail":
		return nil, errRejected
	case "bad":
		return stackitem.NewArray(nil), nil
	}

	used, err := strconv.ParseInt(string(payload), 10, 64)
	if err != nil {
		return nil, err
	}
	ic.Log("received from " + string(mustBytes(args[0])))
	return stackitem.Make(used), nil
}

func mustBytes(item stackitem.Item) []byte {
	b, err := item.TryBytes()
	if err != nil {
		panic(err)
	}
	return b
}

func TestInit(t *testing.T) {
	t.Run("not initialized", func(t *testing.T) {
		e := hosttest.NewExecutor(t)
		e.Deploy(tokenAccount, ft.New(ft.Prm{}))
		c := hosttest.NewInvoker(e, tokenAccount, owner)

		for _, method := range []string{"totalSupply", "metadata", "owner", "storageBalanceBounds"} {
			c.InvokeFail(t, ft.ErrNotInitialized, method)
		}
		c.InvokeFail(t, ft.ErrNotInitialized, "balanceOf", owner)
		c.WithPayment(deposit).InvokeFail(t, ft.ErrNotInitialized, "register", "bob")
	})

	t.Run("invalid metadata", func(t *testing.T) {
		e := hosttest.NewExecutor(t)
		e.Deploy(tokenAccount, ft.New(ft.Prm{}))
		c := hosttest.NewInvoker(e, tokenAccount, owner)

		for _, tc := range []struct {
			name   string
			modify func(*ft.Metadata)
		}{
			{"wrong spec", func(m *ft.Metadata) { m.Spec = "ft-2.0.0" }},
			{"no symbol", func(m *ft.Metadata) { m.Symbol = "" }},
			{"reference without hash", func(m *ft.Metadata) { m.Reference = "https://example.org/token.json" }},
			{"hash without reference", func(m *ft.Metadata) { m.ReferenceHash = make([]byte, 32) }},
			{"short hash", func(m *ft.Metadata) {
				m.Reference = "https://example.org/token.json"
				m.ReferenceHash = make([]byte, 31)
			}},
		} {
			t.Run(tc.name, func(t *testing.T) {
				m := testMetadata()
				tc.modify(&m)
				c.InvokeFail(t, ft.ErrInvalidMetadata, "init", owner, initSupply, metadataItem(t, m))
			})
		}
	})

	t.Run("invalid supply", func(t *testing.T) {
		e := hosttest.NewExecutor(t)
		e.Deploy(tokenAccount, ft.New(ft.Prm{}))
		c := hosttest.NewInvoker(e, tokenAccount, owner)

		tooBig := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
		c.InvokeFail(t, ft.ErrInvalidAmount, "init", owner, tooBig, metadataItem(t, testMetadata()))
		c.InvokeFail(t, ft.ErrInvalidAmount, "init", owner, -1, metadataItem(t, testMetadata()))
		c.InvokeFail(t, ft.ErrInvalidAccount, "init", "", initSupply, metadataItem(t, testMetadata()))
	})

	c := newToken(t)

	require.EqualValues(t, initSupply, totalSupply(t, c))
	require.EqualValues(t, initSupply, balanceOf(t, c, owner))
	hosttest.RequireItem(t, owner, c.Call(t, "owner"))
	hosttest.RequireItem(t, "EXT", c.Call(t, "symbol"))
	hosttest.RequireItem(t, 8, c.Call(t, "decimals"))
	hosttest.RequireItem(t, common.Version, c.Call(t, "version"))

	var m ft.Metadata
	require.NoError(t, m.FromStackItem(c.Call(t, "metadata")))
	require.True(t, testMetadata().Equal(m))

	c.InvokeFail(t, ft.ErrAlreadyInitialized, "init", owner, initSupply, metadataItem(t, testMetadata()))

	t.Run("notifications", func(t *testing.T) {
		e := hosttest.NewExecutor(t)
		e.Deploy(tokenAccount, ft.New(ft.Prm{}))
		c := hosttest.NewInvoker(e, tokenAccount, owner)

		r := c.Invoke(t, nil, "init", owner, initSupply, metadataItem(t, testMetadata()))
		require.Len(t, r.Notifications, 2)
		require.Equal(t, "Transfer", r.Notifications[0].Name)
		hosttest.RequireItem(t, []any{"", owner, initSupply}, r.Notifications[0].Item)
		require.Equal(t, "TransferX", r.Notifications[1].Name)
		hosttest.RequireItem(t, []any{"", owner, initSupply,
			append([]byte{0x01}, "Initial tokens supply is minted"...)}, r.Notifications[1].Item)
	})
}

func TestRegister(t *testing.T) {
	c := newToken(t)

	t.Run("insufficient deposit", func(t *testing.T) {
		r := c.WithPayment(bobRegistration-1).InvokeFail(t, ft.ErrInsufficientStorageDeposit, "register", "bob")
		require.Equal(t, uint64(bobRegistration-1), r.Refund.Uint64())
		hosttest.RequireItem(t, nil, c.Call(t, "storageBalanceOf", "bob"))
	})

	t.Run("invalid account", func(t *testing.T) {
		c.WithPayment(deposit).InvokeFail(t, ft.ErrInvalidAccount, "register", "")
		c.WithPayment(deposit).InvokeFail(t, ft.ErrInvalidAccount, "register", strings.Repeat("x", 65))
	})

	r := c.WithPayment(deposit).Invoke(t, []any{bobRegistration, 0}, "register", "bob")
	require.Equal(t, uint64(deposit-bobRegistration), r.Refund.Uint64())
	require.Equal(t, r.StorageBefore+bobRegistration/host.DefaultStoragePrice, r.StorageAfter)

	hosttest.RequireItem(t, []any{bobRegistration, 0}, c.Call(t, "storageBalanceOf", "bob"))
	require.Zero(t, balanceOf(t, c, "bob"))

	t.Run("twice", func(t *testing.T) {
		c.WithPayment(1).Invoke(t, nil, "transfer", owner, "bob", 100, nil)

		r := c.WithPayment(deposit).Invoke(t, nil, "register", "bob")
		require.Equal(t, uint64(deposit), r.Refund.Uint64())
		require.Equal(t, r.StorageBefore, r.StorageAfter)
		require.Contains(t, r.Logs, "The account is already registered, refunding the deposit")
		require.EqualValues(t, 100, balanceOf(t, c, "bob"))
	})

	t.Run("bounds", func(t *testing.T) {
		hosttest.RequireItem(t, []any{maxRegistration, maxRegistration}, c.Call(t, "storageBalanceBounds"))

		r := c.WithPayment(maxRegistration).Invoke(t, nil, "register", strings.Repeat("x", 64))
		require.True(t, r.Refund.IsZero())
	})
}
