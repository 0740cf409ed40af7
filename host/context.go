package host

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// ErrReadOnly is thrown on storage modifications attempted by read-only calls.
var ErrReadOnly = errors.New("storage modification in read-only call")

// Context is the execution context of a single contract call. It is valid
// only during the call.
type Context struct {
	// Account calling the contract: a user for the top-level calls, the
	// calling contract for nested calls and promises.
	Caller string
	// Account that has signed the original transaction.
	Signer string
	// Account of the executing contract.
	Contract string

	// Payment attached to the call.
	Payment *Escrow
	// Storage usage of the executing contract.
	Meter *StorageMeter

	exec     *Executor
	store    *storage.MemCachedStore
	readOnly bool
	trace    *trace
}

// trace accumulates side effects of the call shared by all nested calls.
type trace struct {
	meters        map[string]*StorageMeter
	notifications []state.NotificationEvent
	logs          []string
	promises      []*Promise
	payout        uint256.Int
}

func newTrace() *trace {
	return &trace{meters: make(map[string]*StorageMeter)}
}

// ScriptHash returns the hash identifying the executing contract in
// notifications.
func (ic *Context) ScriptHash() util.Uint160 {
	return ScriptHash(ic.Contract)
}

// ScriptHash returns the hash identifying contract with the given account in
// notifications.
func ScriptHash(account string) util.Uint160 {
	return hash.Hash160([]byte(account))
}

// ReadOnly checks whether the call is not allowed to modify the state.
func (ic *Context) ReadOnly() bool {
	return ic.readOnly
}

// CheckWitness checks whether the transaction is signed by the account.
func (ic *Context) CheckWitness(account string) bool {
	return ic.Signer == account
}

// Get returns value stored by the contract under the key, nil if missing.
func (ic *Context) Get(key []byte) []byte {
	v, err := ic.store.Get(storageKey(ic.Contract, key))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil
		}
		panic(fmt.Errorf("read storage: %w", err))
	}
	return v
}

// Put stores value under the key in the contract storage. Nil value is
// stored as an empty one.
func (ic *Context) Put(key, value []byte) {
	ic.checkWritable()
	if value == nil {
		value = []byte{}
	}
	ic.Meter.put(key, ic.Get(key), value)
	ic.store.Put(storageKey(ic.Contract, key), value)
}

// Delete removes the key from the contract storage.
func (ic *Context) Delete(key []byte) {
	ic.checkWritable()
	ic.Meter.remove(key, ic.Get(key))
	ic.store.Delete(storageKey(ic.Contract, key))
}

// Seek iterates over contract storage items with the given key prefix. The
// prefix is kept in keys passed to f. Iteration stops when f returns false.
func (ic *Context) Seek(prefix []byte, f func(key, value []byte) bool) {
	seekContractStorage(ic.store, ic.Contract, prefix, f)
}

// Notify emits named notification of the executing contract.
func (ic *Context) Notify(name string, items ...stackitem.Item) {
	ic.trace.notifications = append(ic.trace.notifications, state.NotificationEvent{
		ScriptHash: ic.ScriptHash(),
		Name:       name,
		Item:       stackitem.NewArray(items),
	})
}

// Log saves human-readable message into the call receipt.
func (ic *Context) Log(msg string) {
	ic.trace.logs = append(ic.trace.logs, msg)
}

// Payout transfers amount from the contract to the caller of the top-level
// call. Payouts are returned to the caller with the unconsumed payment.
func (ic *Context) Payout(amount *uint256.Int) {
	ic.checkWritable()
	ic.trace.payout.Add(&ic.trace.payout, amount)
}

// Schedule requests the host to execute p after the current call is
// committed. Returns identifier of the promise.
func (ic *Context) Schedule(p Promise) uuid.UUID {
	ic.checkWritable()
	p.ID = uuid.New()
	p.Origin = ic.Contract
	p.Signer = ic.Signer
	ic.trace.promises = append(ic.trace.promises, &p)
	return p.ID
}

// Call synchronously calls method of another contract within the current
// call. Nothing is attached to the nested call. Storage changes made by a
// failed nested call are not reverted separately, so the error is expected to
// fail the current call as well.
func (ic *Context) Call(contract, method string, args ...stackitem.Item) (stackitem.Item, error) {
	c, ok := ic.exec.contracts[contract]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, contract)
	}

	nested := ic.exec.newContext(ic.store, ic.trace, ic.Contract, ic.Signer, contract, nil, ic.readOnly)
	return invokeSafe(c, nested, method, args)
}

func (ic *Context) checkWritable() {
	if ic.readOnly {
		panic(ErrReadOnly)
	}
}
