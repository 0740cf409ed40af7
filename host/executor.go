package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"go.uber.org/zap"
)

var (
	// ErrContractNotFound is returned for calls of unknown contracts.
	ErrContractNotFound = errors.New("contract not found")

	// ErrMethodNotFound is returned by contracts for calls of unknown methods.
	ErrMethodNotFound = errors.New("method not found")
)

// Contract is a code executed by the host.
type Contract interface {
	// Invoke executes named method with given arguments. Returned error fails
	// the call.
	Invoke(ic *Context, method string, args []stackitem.Item) (stackitem.Item, error)
}

// Tx describes a call made by a user.
type Tx struct {
	// Calling account.
	Caller string
	// Signing account, defaults to Caller.
	Signer string

	// Account of the called contract.
	Contract string
	Method   string
	// Method arguments. Stack items are passed as is, other values are
	// converted by stackitem.Make, *uint256.Int and nil are also supported.
	Args []any

	// Payment attached to the call, nil means nothing.
	Attached *uint256.Int
}

// Options groups optional parameters of the Executor.
type Options struct {
	// Writes executed calls into the log. Defaults to no-op logger.
	Logger *zap.Logger

	// Price of a storage byte. Defaults to DefaultStoragePrice.
	StoragePrice *uint256.Int
	// Bytes charged for every storage record. Defaults to RecordOverhead.
	RecordOverhead uint64

	// If set, scheduled promises are executed only via Step and Dispatch
	// methods. Otherwise, Invoke dispatches them right after the call.
	ManualDispatch bool
}

// Executor runs contract calls against the persistent state. Calls are
// serialized: at most one call is executed at a time.
//
// Executor must be constructed using NewExecutor.
type Executor struct {
	log      *zap.Logger
	price    uint256.Int
	overhead uint64
	manual   bool

	mtx       sync.Mutex
	store     storage.Store
	height    uint32
	contracts map[string]Contract
	queue     []*step
}

type call struct {
	caller, signer   string
	contract, method string
	args             []stackitem.Item
	attached         *uint256.Int
	readOnly         bool
}

// NewExecutor returns Executor working with the given store. Executor takes
// ownership of the store, see Close.
func NewExecutor(store storage.Store, opts Options) (*Executor, error) {
	e := &Executor{
		log:       opts.Logger,
		overhead:  opts.RecordOverhead,
		manual:    opts.ManualDispatch,
		store:     store,
		contracts: make(map[string]Contract),
	}

	if e.log == nil {
		e.log = zap.NewNop()
	}

	if opts.StoragePrice != nil {
		e.price.Set(opts.StoragePrice)
	} else {
		e.price.SetUint64(DefaultStoragePrice)
	}

	if e.overhead == 0 {
		e.overhead = RecordOverhead
	}

	h, err := readUint64(store, heightKey)
	if err != nil {
		return nil, fmt.Errorf("read executor height: %w", err)
	}
	e.height = uint32(h)

	return e, nil
}

// Deploy registers contract code under the given account.
func (e *Executor) Deploy(account string, c Contract) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.contracts[account] = c
}

// Height returns number of committed calls.
func (e *Executor) Height() uint32 {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return e.height
}

// StoragePrice returns the price of a storage byte.
func (e *Executor) StoragePrice() *uint256.Int {
	return e.price.Clone()
}

// Close releases the underlying store.
func (e *Executor) Close() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return e.store.Close()
}

// Invoke executes the call described by tx and commits its results if the
// call succeeds. Contract failures are reported in the returned Receipt, the
// error is returned only if the call can not be executed at all.
//
// Unless ManualDispatch option is set, promises scheduled by the call are
// executed before Invoke returns, their receipts are attached to the result.
func (e *Executor) Invoke(ctx context.Context, tx Tx) (*Receipt, error) {
	c, err := e.txCall(tx)
	if err != nil {
		return nil, err
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	e.mtx.Lock()
	r, err := e.execute(c)
	e.mtx.Unlock()
	if err != nil {
		return nil, err
	}

	if !e.manual && len(r.Promises) > 0 {
		r.Chained, err = e.Dispatch(ctx)
		if err != nil {
			return r, fmt.Errorf("dispatch promises: %w", err)
		}
	}

	return r, nil
}

// TestInvoke executes the call described by tx without committing anything.
// Attached payment is ignored.
func (e *Executor) TestInvoke(tx Tx) (*Receipt, error) {
	c, err := e.txCall(tx)
	if err != nil {
		return nil, err
	}

	c.readOnly = true
	c.attached = nil

	e.mtx.Lock()
	defer e.mtx.Unlock()

	return e.execute(c)
}

// Pending returns number of queued promise steps.
func (e *Executor) Pending() int {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return len(e.queue)
}

// Step executes the next queued promise step. Returns false if the queue is
// empty.
func (e *Executor) Step(ctx context.Context) (*Receipt, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	if len(e.queue) == 0 {
		return nil, false, nil
	}

	s := e.queue[0]
	e.queue = e.queue[1:]

	r, err := e.execute(s.call())
	if err != nil {
		return nil, true, err
	}

	if !s.callback && s.promise.Callback != "" {
		next := &step{
			promise:  s.promise,
			callback: true,
			ok:       r.Halted(),
		}
		if next.ok && len(r.Stack) > 0 {
			next.result = r.Stack[0]
		}
		e.queue = append(e.queue, next)
	}

	return r, true, nil
}

// Dispatch executes queued promise steps until the queue is empty.
func (e *Executor) Dispatch(ctx context.Context) ([]*Receipt, error) {
	var res []*Receipt

	for {
		r, ok, err := e.Step(ctx)
		if err != nil {
			return res, err
		}
		if !ok {
			return res, nil
		}
		res = append(res, r)
	}
}

// IterateStorage passes all storage items of the contract into f. Iteration
// breaks on the first f's error and returns it.
func (e *Executor) IterateStorage(contract string, f func(key, value []byte) error) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	var err error

	seekContractStorage(e.store, contract, nil, func(key, value []byte) bool {
		err = f(key, value)
		return err == nil
	})

	return err
}

// KeyValue is a contract storage item.
type KeyValue struct {
	Key   []byte
	Value []byte
}

// RestoreStorage replaces the contract storage with items and accounts them
// in the contract storage usage. Items missing from the list are removed.
func (e *Executor) RestoreStorage(contract string, items []KeyValue) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	layer := storage.NewPrivateMemCachedStore(e.store)
	tr := newTrace()
	ic := e.newContext(layer, tr, "", "", contract, nil, false)

	var stale [][]byte
	ic.Seek(nil, func(key, _ []byte) bool {
		stale = append(stale, key)
		return true
	})

	for i := range stale {
		ic.Delete(stale[i])
	}

	for i := range items {
		ic.Put(items[i].Key, items[i].Value)
	}

	return e.commit(layer, tr)
}

func (e *Executor) txCall(tx Tx) (call, error) {
	args, err := toStackItems(tx.Args)
	if err != nil {
		return call{}, fmt.Errorf("convert arguments of %s.%s: %w", tx.Contract, tx.Method, err)
	}

	signer := tx.Signer
	if signer == "" {
		signer = tx.Caller
	}

	return call{
		caller:   tx.Caller,
		signer:   signer,
		contract: tx.Contract,
		method:   tx.Method,
		args:     args,
		attached: tx.Attached,
	}, nil
}

func (e *Executor) newContext(layer *storage.MemCachedStore, tr *trace, caller, signer, contract string,
	attached *uint256.Int, readOnly bool) *Context {
	ic := &Context{
		Caller:   caller,
		Signer:   signer,
		Contract: contract,
		Payment:  NewEscrow(attached),
		exec:     e,
		store:    layer,
		readOnly: readOnly,
		trace:    tr,
	}

	m, ok := tr.meters[contract]
	if !ok {
		usage, err := readUint64(layer, usageKey(contract))
		if err != nil {
			panic(fmt.Errorf("read storage usage of %s: %w", contract, err))
		}

		m = newStorageMeter(usage, &e.price, e.overhead)
		tr.meters[contract] = m
	}
	ic.Meter = m

	return ic
}

// execute runs c, must be called under the lock.
func (e *Executor) execute(c call) (*Receipt, error) {
	layer := storage.NewPrivateMemCachedStore(e.store)
	tr := newTrace()

	r := &Receipt{
		ID:       uuid.New(),
		Height:   e.height,
		Contract: c.contract,
		Method:   c.method,
	}

	var (
		item stackitem.Item
		err  error
		ic   *Context
	)

	contract, ok := e.contracts[c.contract]
	if !ok {
		err = fmt.Errorf("%w: %s", ErrContractNotFound, c.contract)
	} else {
		ic = e.newContext(layer, tr, c.caller, c.signer, c.contract, c.attached, c.readOnly)
		r.StorageBefore = ic.Meter.Initial()
		item, err = invokeSafe(contract, ic, c.method, c.args)
		r.StorageAfter = ic.Meter.Usage()
	}

	r.Logs = tr.logs

	if err != nil {
		r.State = vmstate.Fault
		r.Err = err
		r.FaultException = err.Error()
		r.StorageAfter = r.StorageBefore
		if c.attached != nil {
			r.Refund = c.attached.Clone()
		} else {
			r.Refund = new(uint256.Int)
		}

		e.logCall(c, r)
		return r, nil
	}

	r.State = vmstate.Halt
	if item != nil {
		r.Stack = []stackitem.Item{item}
	}

	if c.readOnly {
		r.Refund = new(uint256.Int)
		return r, nil
	}

	r.Refund = ic.Payment.Available()
	r.Refund.Add(r.Refund, &tr.payout)

	e.height++
	err = e.commit(layer, tr)
	if err != nil {
		e.height--
		return nil, fmt.Errorf("commit %s.%s: %w", c.contract, c.method, err)
	}

	r.Height = e.height
	r.Notifications = tr.notifications

	for _, p := range tr.promises {
		r.Promises = append(r.Promises, p.ID)
		e.queue = append(e.queue, &step{promise: p})
	}

	e.logCall(c, r)
	return r, nil
}

func (e *Executor) commit(layer *storage.MemCachedStore, tr *trace) error {
	for contract, m := range tr.meters {
		if m.changed() {
			layer.Put(usageKey(contract), encodeUint64(m.Usage()))
		}
	}

	layer.Put(heightKey, encodeUint64(uint64(e.height)))

	_, err := layer.Persist()
	return err
}

func (e *Executor) logCall(c call, r *Receipt) {
	for i := range r.Logs {
		e.log.Debug("contract log",
			zap.String("contract", c.contract),
			zap.String("method", c.method),
			zap.String("msg", r.Logs[i]))
	}

	if r.Halted() {
		e.log.Debug("call executed",
			zap.Stringer("id", r.ID),
			zap.String("contract", c.contract),
			zap.String("method", c.method),
			zap.String("caller", c.caller),
			zap.Uint32("height", r.Height),
			zap.Int("promises", len(r.Promises)))
		return
	}

	e.log.Debug("call failed",
		zap.Stringer("id", r.ID),
		zap.String("contract", c.contract),
		zap.String("method", c.method),
		zap.String("caller", c.caller),
		zap.String("exception", r.FaultException))
}

// invokeSafe calls the method turning panics into errors.
func invokeSafe(c Contract, ic *Context, method string, args []stackitem.Item) (item stackitem.Item, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = fmt.Errorf("%s: panic: %w", method, e)
				return
			}
			err = fmt.Errorf("%s: panic: %v", method, rec)
		}
	}()

	return c.Invoke(ic, method, args)
}

func toStackItems(args []any) (res []stackitem.Item, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("unsupported argument: %v", rec)
		}
	}()

	res = make([]stackitem.Item, len(args))

	for i := range args {
		switch v := args[i].(type) {
		case nil:
			res[i] = stackitem.Null{}
		case stackitem.Item:
			res[i] = v
		case *uint256.Int:
			res[i] = stackitem.NewBigInteger(v.ToBig())
		default:
			res[i] = stackitem.Make(v)
		}
	}

	return res, nil
}
