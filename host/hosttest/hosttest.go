// Package hosttest provides helpers for testing contracts executed by the host.
package hosttest

import (
	"context"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ft-ledger/host"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// NewExecutor returns Executor over in-memory storage logging into t.
func NewExecutor(t testing.TB, opts ...func(*host.Options)) *host.Executor {
	o := host.Options{Logger: zaptest.NewLogger(t)}
	for i := range opts {
		opts[i](&o)
	}

	e, err := host.NewExecutor(storage.NewMemoryStore(), o)
	require.NoError(t, err)

	t.Cleanup(func() { _ = e.Close() })

	return e
}

// ManualDispatch makes Executor to execute promises only on demand.
func ManualDispatch(o *host.Options) {
	o.ManualDispatch = true
}

// ContractInvoker calls a single contract.
type ContractInvoker struct {
	Exec     *host.Executor
	Contract string

	caller  string
	signer  string
	payment *uint256.Int
}

// NewInvoker returns ContractInvoker calling the contract as the caller.
func NewInvoker(e *host.Executor, contract, caller string) *ContractInvoker {
	return &ContractInvoker{
		Exec:     e,
		Contract: contract,
		caller:   caller,
	}
}

// WithCaller returns a copy of the invoker calling as the account. The
// account also signs the calls.
func (c *ContractInvoker) WithCaller(account string) *ContractInvoker {
	res := *c
	res.caller = account
	res.signer = ""
	return &res
}

// WithSigner returns a copy of the invoker with the overridden signer.
func (c *ContractInvoker) WithSigner(account string) *ContractInvoker {
	res := *c
	res.signer = account
	return &res
}

// WithPayment returns a copy of the invoker attaching payment to the calls.
func (c *ContractInvoker) WithPayment(amount uint64) *ContractInvoker {
	res := *c
	res.payment = uint256.NewInt(amount)
	return &res
}

// Caller returns the account calling the contract.
func (c *ContractInvoker) Caller() string {
	return c.caller
}

func (c *ContractInvoker) tx(method string, args []any) host.Tx {
	return host.Tx{
		Caller:   c.caller,
		Signer:   c.signer,
		Contract: c.Contract,
		Method:   method,
		Args:     args,
		Attached: c.payment,
	}
}

// Send makes the call and returns its receipt regardless of the outcome.
func (c *ContractInvoker) Send(t testing.TB, method string, args ...any) *host.Receipt {
	r, err := c.Exec.Invoke(context.Background(), c.tx(method, args))
	require.NoError(t, err)
	return r
}

// Invoke makes the call, checks it succeeds and returns expected item. Nil
// expected value skips the result check.
func (c *ContractInvoker) Invoke(t testing.TB, expected any, method string, args ...any) *host.Receipt {
	r := c.Send(t, method, args...)
	require.True(t, r.Halted(), "call %s failed: %s", method, r.FaultException)

	if expected != nil {
		require.Len(t, r.Stack, 1)
		RequireItem(t, expected, r.Stack[0])
	}

	return r
}

// InvokeFail makes the call and checks it fails with the target error.
func (c *ContractInvoker) InvokeFail(t testing.TB, target error, method string, args ...any) *host.Receipt {
	r := c.Send(t, method, args...)
	require.False(t, r.Halted(), "call %s succeeded", method)
	require.ErrorIs(t, r.Err, target)
	return r
}

// Call makes read-only call and returns its result.
func (c *ContractInvoker) Call(t testing.TB, method string, args ...any) stackitem.Item {
	r, err := c.Exec.TestInvoke(c.tx(method, args))
	require.NoError(t, err)
	require.True(t, r.Halted(), "call %s failed: %s", method, r.FaultException)
	require.Len(t, r.Stack, 1)
	return r.Stack[0]
}

// RequireItem checks that the item equals to the expected value. Integer items
// are compared by value, expected value may be a stack item or any value
// accepted by stackitem.Make.
func RequireItem(t testing.TB, expected any, actual stackitem.Item) {
	var exp stackitem.Item
	switch v := expected.(type) {
	case nil:
		exp = stackitem.Null{}
	case stackitem.Item:
		exp = v
	case *uint256.Int:
		exp = stackitem.NewBigInteger(v.ToBig())
	default:
		exp = stackitem.Make(v)
	}

	requireItemEqual(t, exp, actual)
}

func requireItemEqual(t testing.TB, expected, actual stackitem.Item) {
	switch exp := expected.(type) {
	case stackitem.Null:
		require.Equal(t, stackitem.AnyT, actual.Type(), "expected Null, got %s", actual.Type())
	case *stackitem.BigInteger:
		act, err := actual.TryInteger()
		require.NoError(t, err)
		require.Zero(t, exp.Value().(*big.Int).Cmp(act), "expected %s, got %s", exp.Value(), act)
	case *stackitem.Bool:
		act, err := actual.TryBool()
		require.NoError(t, err)
		require.Equal(t, exp.Value(), act)
	case *stackitem.ByteArray:
		act, err := actual.TryBytes()
		require.NoError(t, err)
		require.Equal(t, exp.Value(), act)
	case *stackitem.Array, *stackitem.Struct:
		expItems := exp.Value().([]stackitem.Item)
		actItems, ok := actual.Value().([]stackitem.Item)
		require.True(t, ok, "expected array, got %s", actual.Type())
		require.Len(t, actItems, len(expItems))
		for i := range expItems {
			requireItemEqual(t, expItems[i], actItems[i])
		}
	default:
		require.Equal(t, expected, actual)
	}
}
