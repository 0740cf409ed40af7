package host_test

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ft-ledger/host"
	"github.com/nspcc-dev/ft-ledger/host/hosttest"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

var errTest = errors.New("test error")

// kvContract is a simple key-value contract used to exercise the host.
type kvContract struct{}

func (kvContract) Invoke(ic *host.Context, method string, args []stackitem.Item) (stackitem.Item, error) {
	arg := func(i int) []byte {
		b, err := args[i].TryBytes()
		if err != nil {
			panic(err)
		}
		return b
	}

	switch method {
	case "put":
		ic.Put(arg(0), arg(1))
		ic.Notify("Put", args[0], args[1])
		return nil, nil
	case "putFail":
		ic.Put(arg(0), arg(1))
		ic.Notify("Put", args[0], args[1])
		return nil, errTest
	case "get":
		v := ic.Get(arg(0))
		if v == nil {
			return stackitem.Null{}, nil
		}
		return stackitem.NewByteArray(v), nil
	case "delete":
		ic.Delete(arg(0))
		return nil, nil
	case "panic":
		ic.Put(arg(0), arg(1))
		panic("unexpected")
	case "consume":
		return nil, ic.Payment.Consume(mustAmount(args[0]))
	case "payout":
		ic.Payout(mustAmount(args[0]))
		return nil, nil
	case "caller":
		return stackitem.NewByteArray([]byte(ic.Caller)), nil
	case "log":
		ic.Log(string(arg(0)))
		return nil, nil
	case "callPut":
		return ic.Call(string(arg(0)), "put", args[1], args[2])
	case "schedule":
		// target contract, target method, key, value, callback
		p := host.Promise{
			Contract: string(arg(0)),
			Method:   string(arg(1)),
			Args:     []stackitem.Item{args[2], args[3]},
			Callback: string(arg(4)),
			CallbackArgs: []stackitem.Item{
				args[2],
			},
		}
		ic.Schedule(p)
		return nil, nil
	case "onResolve":
		// key, ok, result
		ok, err := args[1].TryBool()
		if err != nil {
			return nil, err
		}
		v := []byte("failed")
		if ok {
			v = []byte("done")
		}
		ic.Put(append([]byte("resolved-"), arg(0)...), v)
		return nil, nil
	}

	return nil, host.ErrMethodNotFound
}

func mustAmount(item stackitem.Item) *uint256.Int {
	n, err := item.TryInteger()
	if err != nil {
		panic(err)
	}
	v, overflow := uint256.FromBig(n)
	if overflow {
		panic("overflow")
	}
	return v
}

func newKV(t *testing.T, opts ...func(*host.Options)) *hosttest.ContractInvoker {
	e := hosttest.NewExecutor(t, opts...)
	e.Deploy("kv", kvContract{})
	e.Deploy("kv2", kvContract{})
	return hosttest.NewInvoker(e, "kv", "alice")
}

func TestExecutor_Commit(t *testing.T) {
	c := newKV(t)

	r := c.Invoke(t, nil, "put", "k", "v")
	require.EqualValues(t, 1, r.Height)
	require.Len(t, r.Notifications, 1)
	require.Equal(t, "Put", r.Notifications[0].Name)
	require.Equal(t, host.ScriptHash("kv"), r.Notifications[0].ScriptHash)
	require.EqualValues(t, 0, r.StorageBefore)
	require.EqualValues(t, 1+1+host.RecordOverhead, r.StorageAfter)

	require.Equal(t, []byte("v"), mustBytes(t, c.Call(t, "get", "k")))
	require.EqualValues(t, 1, c.Exec.Height())

	c.Invoke(t, nil, "delete", "k")
	hosttest.RequireItem(t, nil, c.Call(t, "get", "k"))
	require.EqualValues(t, 2, c.Exec.Height())
}

func TestExecutor_Rollback(t *testing.T) {
	c := newKV(t)
	c.Invoke(t, nil, "put", "k", "v1")

	t.Run("contract error", func(t *testing.T) {
		r := c.InvokeFail(t, errTest, "putFail", "k", "v2")
		require.Empty(t, r.Notifications)
		require.EqualValues(t, 1, r.Height)
		require.Equal(t, r.StorageBefore, r.StorageAfter)
		require.Equal(t, []byte("v1"), mustBytes(t, c.Call(t, "get", "k")))
	})

	t.Run("panic", func(t *testing.T) {
		r := c.Send(t, "panic", "k", "v3")
		require.False(t, r.Halted())
		require.Contains(t, r.FaultException, "unexpected")
		require.Equal(t, []byte("v1"), mustBytes(t, c.Call(t, "get", "k")))
	})

	t.Run("unknown method", func(t *testing.T) {
		c.InvokeFail(t, host.ErrMethodNotFound, "unknown")
	})

	t.Run("unknown contract", func(t *testing.T) {
		other := hosttest.NewInvoker(c.Exec, "missing", "alice")
		other.InvokeFail(t, host.ErrContractNotFound, "get", "k")
	})

	require.EqualValues(t, 1, c.Exec.Height())
}

func TestExecutor_ReadOnly(t *testing.T) {
	c := newKV(t)

	r, err := c.Exec.TestInvoke(host.Tx{Caller: "alice", Contract: "kv", Method: "put", Args: []any{"k", "v"}})
	require.NoError(t, err)
	require.False(t, r.Halted())
	require.ErrorIs(t, r.Err, host.ErrReadOnly)

	hosttest.RequireItem(t, nil, c.Call(t, "get", "k"))
	require.EqualValues(t, 0, c.Exec.Height())
}

func TestExecutor_Payment(t *testing.T) {
	c := newKV(t)

	r := c.WithPayment(10).Invoke(t, nil, "consume", 3)
	require.Equal(t, uint64(7), r.Refund.Uint64())

	r = c.WithPayment(10).InvokeFail(t, host.ErrInsufficientPayment, "consume", 11)
	require.Equal(t, uint64(10), r.Refund.Uint64())

	r = c.WithPayment(10).Invoke(t, nil, "payout", 5)
	require.Equal(t, uint64(15), r.Refund.Uint64())

	r = c.Invoke(t, nil, "consume", 0)
	require.True(t, r.Refund.IsZero())
}

func TestExecutor_NestedCall(t *testing.T) {
	c := newKV(t)

	c.Invoke(t, nil, "callPut", "kv2", "k", "v")

	other := hosttest.NewInvoker(c.Exec, "kv2", "alice")
	require.Equal(t, []byte("v"), mustBytes(t, other.Call(t, "get", "k")))
	hosttest.RequireItem(t, nil, c.Call(t, "get", "k"))

	var n int
	require.NoError(t, c.Exec.IterateStorage("kv2", func(key, value []byte) error {
		n++
		require.Equal(t, []byte("k"), key)
		require.Equal(t, []byte("v"), value)
		return nil
	}))
	require.Equal(t, 1, n)
}

func TestExecutor_Promises(t *testing.T) {
	t.Run("automatic dispatch", func(t *testing.T) {
		c := newKV(t)

		r := c.Invoke(t, nil, "schedule", "kv2", "put", "k", "v", "onResolve")
		require.Len(t, r.Promises, 1)
		require.Len(t, r.Chained, 2)
		require.True(t, r.Chained[0].Halted())
		require.Equal(t, "kv2", r.Chained[0].Contract)
		require.Equal(t, "onResolve", r.Chained[1].Method)
		require.Zero(t, c.Exec.Pending())

		require.Equal(t, []byte("done"), mustBytes(t, c.Call(t, "get", "resolved-k")))
	})

	t.Run("failed hook", func(t *testing.T) {
		c := newKV(t)

		r := c.Invoke(t, nil, "schedule", "kv2", "putFail", "k", "v", "onResolve")
		require.Len(t, r.Chained, 2)
		require.False(t, r.Chained[0].Halted())
		require.True(t, r.Chained[1].Halted())

		require.Equal(t, []byte("failed"), mustBytes(t, c.Call(t, "get", "resolved-k")))
	})

	t.Run("manual dispatch", func(t *testing.T) {
		c := newKV(t, hosttest.ManualDispatch)
		ctx := context.Background()

		c.Invoke(t, nil, "schedule", "kv2", "caller", "k", "v", "onResolve")
		require.Equal(t, 1, c.Exec.Pending())

		r, ok, err := c.Exec.Step(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		hosttest.RequireItem(t, "kv", r.Stack[0])
		require.Equal(t, 1, c.Exec.Pending())

		// calls can be made between promise steps
		c.Invoke(t, nil, "put", "resolved-k", "overwritten")

		rs, err := c.Exec.Dispatch(ctx)
		require.NoError(t, err)
		require.Len(t, rs, 1)
		require.Equal(t, []byte("done"), mustBytes(t, c.Call(t, "get", "resolved-k")))

		_, ok, err = c.Exec.Step(ctx)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("failed call drops promises", func(t *testing.T) {
		c := newKV(t, hosttest.ManualDispatch)

		r := c.Send(t, "schedule", "kv2", "put", "k", "v")
		require.False(t, r.Halted())
		require.Zero(t, c.Exec.Pending())
	})
}

func TestExecutor_Logs(t *testing.T) {
	c := newKV(t)

	r := c.Invoke(t, nil, "log", "hello")
	require.Equal(t, []string{"hello"}, r.Logs)
}

func TestExecutor_RestoreStorage(t *testing.T) {
	c := newKV(t)

	require.NoError(t, c.Exec.RestoreStorage("kv", []host.KeyValue{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
	}))

	require.Equal(t, []byte("2"), mustBytes(t, c.Call(t, "get", "b")))

	r := c.Invoke(t, nil, "delete", "a")
	require.EqualValues(t, 2*(2+host.RecordOverhead), r.StorageBefore)
	require.EqualValues(t, 2+host.RecordOverhead, r.StorageAfter)

	t.Run("replaces existing items", func(t *testing.T) {
		require.NoError(t, c.Exec.RestoreStorage("kv", []host.KeyValue{
			{Key: []byte("c"), Value: []byte("3")},
		}))

		var keys []string
		require.NoError(t, c.Exec.IterateStorage("kv", func(key, _ []byte) error {
			keys = append(keys, string(key))
			return nil
		}))
		require.Equal(t, []string{"c"}, keys)

		r := c.Invoke(t, nil, "delete", "c")
		require.EqualValues(t, 2+host.RecordOverhead, r.StorageBefore)
		require.Zero(t, r.StorageAfter)
	})
}

func TestExecutor_CanceledContext(t *testing.T) {
	c := newKV(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Exec.Invoke(ctx, host.Tx{Caller: "alice", Contract: "kv", Method: "put", Args: []any{"k", "v"}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestActor(t *testing.T) {
	c := newKV(t)
	a := c.Exec.NewActor(context.Background(), "bob")
	require.Equal(t, "bob", a.Account())

	inv, err := a.Call("kv", "caller")
	require.NoError(t, err)
	hosttest.RequireItem(t, "bob", inv.Stack[0])

	_, err = a.SendCall("kv", "putFail", nil, "k", "v")
	require.ErrorIs(t, err, errTest)

	_, err = a.Call("kv", "putFail", "k", "v")
	require.Error(t, err)
}

func mustBytes(t *testing.T, item stackitem.Item) []byte {
	b, err := item.TryBytes()
	require.NoError(t, err)
	return b
}
