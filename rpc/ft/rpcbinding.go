// Package ft contains client wrappers for the fungible token contract.
package ft

import (
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/nspcc-dev/ft-ledger/host"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Metadata is a contract-specific ft.Metadata type used by its methods.
type Metadata struct {
	Spec          string
	Name          string
	Symbol        string
	Icon          string
	Reference     string
	ReferenceHash []byte
	Decimals      *big.Int
}

// StorageBalance is a contract-specific ft.StorageBalance type used by its
// methods.
type StorageBalance struct {
	Total     *big.Int
	Available *big.Int
}

// StorageBalanceBounds is a contract-specific ft.StorageBalanceBounds type used
// by its methods.
type StorageBalanceBounds struct {
	Min *big.Int
	Max *big.Int
}

// PendingTransfer is a contract-specific ft.PendingTransfer type used by its
// methods.
type PendingTransfer struct {
	Ticket   string
	Sender   string
	Receiver string
	Amount   *big.Int
	State    string
}

// TransferEvent represents "Transfer" event emitted by the contract.
type TransferEvent struct {
	From   string
	To     string
	Amount *big.Int
}

// TransferXEvent represents "TransferX" event emitted by the contract.
type TransferXEvent struct {
	From    string
	To      string
	Amount  *big.Int
	Details []byte
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract string, method string, params ...any) (*result.Invoke, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	SendCall(contract string, method string, payment *big.Int, params ...any) (*host.Receipt, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	account string
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor   Actor
	account string
}

// NewReader creates an instance of ContractReader using provided contract
// account and the given Invoker.
func NewReader(invoker Invoker, account string) *ContractReader {
	return &ContractReader{invoker, account}
}

// New creates an instance of Contract using provided contract account and the
// given Actor.
func New(actor Actor, account string) *Contract {
	return &Contract{ContractReader{actor, account}, actor, account}
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.account, "version"))
}

// Owner invokes `owner` method of contract.
func (c *ContractReader) Owner() (string, error) {
	return unwrap.UTF8String(c.invoker.Call(c.account, "owner"))
}

// TotalSupply invokes `totalSupply` method of contract.
func (c *ContractReader) TotalSupply() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.account, "totalSupply"))
}

// BalanceOf invokes `balanceOf` method of contract.
func (c *ContractReader) BalanceOf(account string) (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.account, "balanceOf", account))
}

// Symbol invokes `symbol` method of contract.
func (c *ContractReader) Symbol() (string, error) {
	return unwrap.UTF8String(c.invoker.Call(c.account, "symbol"))
}

// Decimals invokes `decimals` method of contract.
func (c *ContractReader) Decimals() (int, error) {
	i, err := unwrap.BigInt(c.invoker.Call(c.account, "decimals"))
	if err != nil {
		return 0, err
	}
	if !i.IsInt64() || i.Int64() > 255 || i.Int64() < 0 {
		return 0, fmt.Errorf("decimals out of range: %s", i)
	}
	return int(i.Int64()), nil
}

// Metadata invokes `metadata` method of contract.
func (c *ContractReader) Metadata() (*Metadata, error) {
	return itemToMetadata(unwrap.Item(c.invoker.Call(c.account, "metadata")))
}

// StorageBalanceOf invokes `storageBalanceOf` method of contract. Returns nil
// for unregistered accounts.
func (c *ContractReader) StorageBalanceOf(account string) (*StorageBalance, error) {
	item, err := unwrap.Item(c.invoker.Call(c.account, "storageBalanceOf", account))
	if err != nil {
		return nil, err
	}
	if _, ok := item.(stackitem.Null); ok {
		return nil, nil
	}
	return itemToStorageBalance(item, nil)
}

// StorageBalanceBounds invokes `storageBalanceBounds` method of contract.
func (c *ContractReader) StorageBalanceBounds() (*StorageBalanceBounds, error) {
	return itemToStorageBalanceBounds(unwrap.Item(c.invoker.Call(c.account, "storageBalanceBounds")))
}

// Init makes a call of `init` method of the contract.
func (c *Contract) Init(owner string, totalSupply *big.Int, metadata *Metadata) (*host.Receipt, error) {
	item, err := metadata.ToStackItem()
	if err != nil {
		return nil, err
	}
	return c.actor.SendCall(c.account, "init", nil, owner, totalSupply, item)
}

// Register makes a call of `register` method of the contract with attached
// storage deposit.
func (c *Contract) Register(deposit *big.Int, account string) (*host.Receipt, error) {
	return c.actor.SendCall(c.account, "register", deposit, account)
}

// Unregister makes a call of `unregister` method of the contract.
func (c *Contract) Unregister(account string, force bool) (*host.Receipt, error) {
	return c.actor.SendCall(c.account, "unregister", nil, account, force)
}

// Transfer makes a call of `transfer` method of the contract with attached
// transfer payment.
func (c *Contract) Transfer(payment *big.Int, from string, to string, amount *big.Int, memo []byte) (*host.Receipt, error) {
	return c.actor.SendCall(c.account, "transfer", payment, from, to, amount, memo)
}

// TransferAndNotify makes a call of `transferAndNotify` method of the contract
// with attached transfer payment. Returned receipt holds the pending transfer,
// see PendingTransferFromReceipt.
func (c *Contract) TransferAndNotify(payment *big.Int, from string, to string, amount *big.Int, memo []byte, payload []byte) (*host.Receipt, error) {
	return c.actor.SendCall(c.account, "transferAndNotify", payment, from, to, amount, memo, payload)
}

// Mint makes a call of `mint` method of the contract.
func (c *Contract) Mint(to string, amount *big.Int, memo []byte) (*host.Receipt, error) {
	return c.actor.SendCall(c.account, "mint", nil, to, amount, memo)
}

// PendingTransferFromReceipt retrieves the result of `transferAndNotify` call.
func PendingTransferFromReceipt(r *host.Receipt) (*PendingTransfer, error) {
	if r == nil {
		return nil, errors.New("nil receipt")
	}
	if len(r.Stack) != 1 {
		return nil, fmt.Errorf("result stack has %d items", len(r.Stack))
	}
	return itemToPendingTransfer(r.Stack[0], nil)
}

func itemToString(item stackitem.Item) (string, error) {
	b, err := item.TryBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.New("not a UTF-8 string")
	}
	return string(b), nil
}

func itemToOptionalBytes(item stackitem.Item) ([]byte, error) {
	if _, ok := item.(stackitem.Null); ok {
		return nil, nil
	}
	return item.TryBytes()
}

func optionalBytesItem(b []byte) stackitem.Item {
	if len(b) == 0 {
		return stackitem.Null{}
	}
	return stackitem.NewByteArray(b)
}

// itemToMetadata converts stack item into *Metadata.
func itemToMetadata(item stackitem.Item, err error) (*Metadata, error) {
	if err != nil {
		return nil, err
	}
	var res = new(Metadata)
	err = res.FromStackItem(item)
	return res, err
}

// ToStackItem converts Metadata into the contract structure.
func (res *Metadata) ToStackItem() (stackitem.Item, error) {
	if res == nil {
		return nil, errors.New("nil metadata")
	}

	decimals := res.Decimals
	if decimals == nil {
		decimals = new(big.Int)
	}

	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray([]byte(res.Spec)),
		stackitem.NewByteArray([]byte(res.Name)),
		stackitem.NewByteArray([]byte(res.Symbol)),
		optionalBytesItem([]byte(res.Icon)),
		optionalBytesItem([]byte(res.Reference)),
		optionalBytesItem(res.ReferenceHash),
		stackitem.NewBigInteger(decimals),
	}), nil
}

// FromStackItem retrieves fields of Metadata from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *Metadata) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 7 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
		b     []byte
	)
	index++
	res.Spec, err = itemToString(arr[index])
	if err != nil {
		return fmt.Errorf("field Spec: %w", err)
	}

	index++
	res.Name, err = itemToString(arr[index])
	if err != nil {
		return fmt.Errorf("field Name: %w", err)
	}

	index++
	res.Symbol, err = itemToString(arr[index])
	if err != nil {
		return fmt.Errorf("field Symbol: %w", err)
	}

	index++
	b, err = itemToOptionalBytes(arr[index])
	if err != nil {
		return fmt.Errorf("field Icon: %w", err)
	}
	res.Icon = string(b)

	index++
	b, err = itemToOptionalBytes(arr[index])
	if err != nil {
		return fmt.Errorf("field Reference: %w", err)
	}
	res.Reference = string(b)

	index++
	res.ReferenceHash, err = itemToOptionalBytes(arr[index])
	if err != nil {
		return fmt.Errorf("field ReferenceHash: %w", err)
	}

	index++
	res.Decimals, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Decimals: %w", err)
	}

	return nil
}

// itemToStorageBalance converts stack item into *StorageBalance.
func itemToStorageBalance(item stackitem.Item, err error) (*StorageBalance, error) {
	if err != nil {
		return nil, err
	}
	var res = new(StorageBalance)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of StorageBalance from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *StorageBalance) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	res.Total, err = arr[0].TryInteger()
	if err != nil {
		return fmt.Errorf("field Total: %w", err)
	}

	res.Available, err = arr[1].TryInteger()
	if err != nil {
		return fmt.Errorf("field Available: %w", err)
	}

	return nil
}

// itemToStorageBalanceBounds converts stack item into *StorageBalanceBounds.
func itemToStorageBalanceBounds(item stackitem.Item, err error) (*StorageBalanceBounds, error) {
	if err != nil {
		return nil, err
	}
	var res = new(StorageBalanceBounds)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of StorageBalanceBounds from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *StorageBalanceBounds) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	res.Min, err = arr[0].TryInteger()
	if err != nil {
		return fmt.Errorf("field Min: %w", err)
	}

	res.Max, err = arr[1].TryInteger()
	if err != nil {
		return fmt.Errorf("field Max: %w", err)
	}

	return nil
}

// itemToPendingTransfer converts stack item into *PendingTransfer.
func itemToPendingTransfer(item stackitem.Item, err error) (*PendingTransfer, error) {
	if err != nil {
		return nil, err
	}
	var res = new(PendingTransfer)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of PendingTransfer from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *PendingTransfer) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 5 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	res.Ticket, err = itemToString(arr[0])
	if err != nil {
		return fmt.Errorf("field Ticket: %w", err)
	}

	res.Sender, err = itemToString(arr[1])
	if err != nil {
		return fmt.Errorf("field Sender: %w", err)
	}

	res.Receiver, err = itemToString(arr[2])
	if err != nil {
		return fmt.Errorf("field Receiver: %w", err)
	}

	res.Amount, err = arr[3].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	res.State, err = itemToString(arr[4])
	if err != nil {
		return fmt.Errorf("field State: %w", err)
	}

	return nil
}

// TransferEventsFromReceipt retrieves a set of all emitted events with
// "Transfer" name from the provided receipt and receipts chained to it.
func TransferEventsFromReceipt(r *host.Receipt) ([]*TransferEvent, error) {
	if r == nil {
		return nil, errors.New("nil receipt")
	}

	var res []*TransferEvent
	err := iterateEvents(r, "Transfer", func(item *stackitem.Array) error {
		event := new(TransferEvent)
		if err := event.FromStackItem(item); err != nil {
			return fmt.Errorf("failed to deserialize TransferEvent from stackitem: %w", err)
		}
		res = append(res, event)
		return nil
	})

	return res, err
}

// TransferXEventsFromReceipt retrieves a set of all emitted events with
// "TransferX" name from the provided receipt and receipts chained to it.
func TransferXEventsFromReceipt(r *host.Receipt) ([]*TransferXEvent, error) {
	if r == nil {
		return nil, errors.New("nil receipt")
	}

	var res []*TransferXEvent
	err := iterateEvents(r, "TransferX", func(item *stackitem.Array) error {
		event := new(TransferXEvent)
		if err := event.FromStackItem(item); err != nil {
			return fmt.Errorf("failed to deserialize TransferXEvent from stackitem: %w", err)
		}
		res = append(res, event)
		return nil
	})

	return res, err
}

func iterateEvents(r *host.Receipt, name string, f func(*stackitem.Array) error) error {
	for _, e := range r.Notifications {
		if e.Name != name {
			continue
		}
		if err := f(e.Item); err != nil {
			return err
		}
	}

	for i := range r.Chained {
		if err := iterateEvents(r.Chained[i], name, f); err != nil {
			return err
		}
	}

	return nil
}

// FromStackItem converts provided [stackitem.Array] to TransferEvent or
// returns an error if it's not possible to do to so.
func (e *TransferEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 3 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	e.From, err = itemToString(arr[0])
	if err != nil {
		return fmt.Errorf("field From: %w", err)
	}

	e.To, err = itemToString(arr[1])
	if err != nil {
		return fmt.Errorf("field To: %w", err)
	}

	e.Amount, err = arr[2].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

// FromStackItem converts provided [stackitem.Array] to TransferXEvent or
// returns an error if it's not possible to do to so.
func (e *TransferXEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 4 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	e.From, err = itemToString(arr[0])
	if err != nil {
		return fmt.Errorf("field From: %w", err)
	}

	e.To, err = itemToString(arr[1])
	if err != nil {
		return fmt.Errorf("field To: %w", err)
	}

	e.Amount, err = arr[2].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	e.Details, err = arr[3].TryBytes()
	if err != nil {
		return fmt.Errorf("field Details: %w", err)
	}

	return nil
}
