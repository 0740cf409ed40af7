package ft

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ft-ledger/common"
	"github.com/nspcc-dev/ft-ledger/contracts/ft/ftconst"
	"github.com/nspcc-dev/ft-ledger/host"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// StorageBalance is the storage deposit of the registered account. Total is
// the price of the account record at the moment, nothing of it is available
// for withdrawal.
type StorageBalance struct {
	Total     *uint256.Int
	Available *uint256.Int
}

// ToStackItem implements stackitem.Convertible.
func (b *StorageBalance) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		common.AmountItem(b.Total),
		common.AmountItem(b.Available),
	}), nil
}

// StorageBalanceBounds are the limits of the registration deposit.
type StorageBalanceBounds struct {
	Min *uint256.Int
	Max *uint256.Int
}

// ToStackItem implements stackitem.Convertible.
func (b *StorageBalanceBounds) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		common.AmountItem(b.Min),
		common.AmountItem(b.Max),
	}), nil
}

// Register registers the account with the attached storage deposit. The
// price of the bytes taken by the account record is consumed, the rest of the
// payment is returned to the caller. Payment for already registered account
// is returned completely.
func (c *Contract) Register(ic *host.Context, account string) (*StorageBalance, error) {
	if _, err := c.checkInitialized(ic); err != nil {
		return nil, err
	}
	if err := checkAccount(account); err != nil {
		return nil, err
	}

	l := ledger{ic}
	if l.registered(account) {
		ic.Log("The account is already registered, refunding the deposit")
		return c.storageBalance(ic, account), nil
	}

	before := ic.Meter.Usage()
	l.setBalance(account, common.Zero())
	required := ic.Meter.Cost(ic.Meter.Usage() - before)

	if err := ic.Payment.Consume(required); err != nil {
		return nil, fmt.Errorf("%w: required %s, attached %s", ErrInsufficientStorageDeposit,
			common.AmountString(required), common.AmountString(ic.Payment.Attached()))
	}

	return c.storageBalance(ic, account), nil
}

// Unregister removes the account and pays the price of the freed storage
// back. Account with non-zero balance can be removed only with force flag, the
// balance is burned then. Can be called only by the account itself. Returns
// false if the account is not registered.
//
// It produces Transfer and TransferX notifications if tokens are burned.
func (c *Contract) Unregister(ic *host.Context, account string, force bool) (bool, error) {
	if _, err := c.checkInitialized(ic); err != nil {
		return false, err
	}
	if ic.Caller != account {
		return false, fmt.Errorf("%w: %s can't unregister %s", ErrNotAuthorized, ic.Caller, account)
	}

	l := ledger{ic}
	balance, ok := l.balance(account)
	if !ok {
		ic.Log(fmt.Sprintf("The account %s is not registered", account))
		return false, nil
	}

	if !balance.IsZero() && !force {
		return false, fmt.Errorf("%w: %s", ErrAccountHasBalance, common.AmountString(balance))
	}

	before := ic.Meter.Usage()
	l.remove(account)
	freed := before - ic.Meter.Usage()

	if !balance.IsZero() {
		l.burn(balance)
		notifyTransfer(ic, account, "", balance, common.BurnTransferDetails(nil))
		ic.Log(fmt.Sprintf("Closed @%s with %s", account, common.AmountString(balance)))
	}

	ic.Payout(ic.Meter.Cost(freed))

	return true, nil
}

// StorageBalanceOf returns storage deposit of the account, nil if the account
// is not registered.
func (c *Contract) StorageBalanceOf(ic *host.Context, account string) (*StorageBalance, error) {
	if _, err := c.checkInitialized(ic); err != nil {
		return nil, err
	}

	if !(ledger{ic}).registered(account) {
		return nil, nil
	}

	return c.storageBalance(ic, account), nil
}

func (c *Contract) storageBalance(ic *host.Context, account string) *StorageBalance {
	size := ic.Meter.RecordSize(accountKey(account), make([]byte, ftconst.BalanceLength))

	return &StorageBalance{
		Total:     ic.Meter.Cost(size),
		Available: common.Zero(),
	}
}

// StorageBalanceBounds returns the deposit required for the registration of
// any account. Attaching Min is always enough for Register.
func (c *Contract) StorageBalanceBounds(ic *host.Context) (*StorageBalanceBounds, error) {
	if _, err := c.checkInitialized(ic); err != nil {
		return nil, err
	}

	size := common.GetInt(ic, []byte(ftconst.RegistrationBytesKey))
	bound := ic.Meter.Cost(size.Uint64())

	return &StorageBalanceBounds{
		Min: bound,
		Max: bound.Clone(),
	}, nil
}
