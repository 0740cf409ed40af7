package ft

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/ft-ledger/common"
	"github.com/nspcc-dev/ft-ledger/contracts/ft/ftconst"
	"github.com/nspcc-dev/ft-ledger/host"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// ResolutionState is the state of transferAndNotify.
type ResolutionState string

const (
	// Pending transfer is committed but the receiver has not reported the
	// result yet.
	Pending ResolutionState = "pending"
	// Resolved transfer is used by the receiver completely.
	Resolved ResolutionState = "resolved"
	// Reversed transfer has been partially or completely returned to the
	// sender.
	Reversed ResolutionState = "reversed"
)

// PendingTransfer describes committed transferAndNotify waiting for the
// receiver.
type PendingTransfer struct {
	// Base58 encoded identifier of the scheduled receiver call.
	Ticket   string
	Sender   string
	Receiver string
	Amount   *uint256.Int
	State    ResolutionState
}

// ToStackItem implements stackitem.Convertible.
func (p *PendingTransfer) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray([]byte(p.Ticket)),
		accountItem(p.Sender),
		accountItem(p.Receiver),
		common.AmountItem(p.Amount),
		stackitem.NewByteArray([]byte(p.State)),
	}), nil
}

// FromStackItem implements stackitem.Convertible.
func (p *PendingTransfer) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok || len(arr) != 5 {
		return fmt.Errorf("%w: pending transfer must be a 5-element struct", ErrInvalidArguments)
	}

	var fields [5][]byte
	for i := range fields {
		if i == 3 {
			continue
		}
		b, err := arr[i].TryBytes()
		if err != nil {
			return fmt.Errorf("field #%d: %w", i, err)
		}
		fields[i] = b
	}

	amount, err := common.AmountFromItem(arr[3])
	if err != nil {
		return err
	}

	p.Ticket = string(fields[0])
	p.Sender = string(fields[1])
	p.Receiver = string(fields[2])
	p.Amount = amount
	p.State = ResolutionState(fields[4])

	return nil
}

// Transfer moves amount of tokens from the sender to the registered receiver.
// Can be called only by the sender. The call must be paid with the minimal
// transfer payment.
//
// It produces Transfer and TransferX notifications, TransferX details contain
// the memo.
func (c *Contract) Transfer(ic *host.Context, from, to string, amount *uint256.Int, memo []byte) error {
	if _, err := c.checkInitialized(ic); err != nil {
		return err
	}
	if ic.Caller != from {
		return fmt.Errorf("%w: %s can't transfer from %s", ErrNotAuthorized, ic.Caller, from)
	}

	return c.transfer(ic, from, to, amount, memo)
}

func (c *Contract) transfer(ic *host.Context, from, to string, amount *uint256.Int, memo []byte) error {
	if amount.IsZero() {
		return ErrZeroAmount
	}
	if from == to {
		return ErrSelfTransfer
	}

	l := ledger{ic}
	if !l.registered(to) {
		return fmt.Errorf("%w: %s", ErrReceiverNotRegistered, to)
	}

	if err := ic.Payment.Consume(&c.minTransferPayment); err != nil {
		return fmt.Errorf("%w: %w", ErrInsufficientAttachedPayment, err)
	}

	if err := l.withdraw(from, amount); err != nil {
		return err
	}
	if err := l.deposit(to, amount); err != nil {
		return err
	}

	notifyTransfer(ic, from, to, amount, memo)
	ic.Log(fmt.Sprintf("Transfer %s from %s to %s", common.AmountString(amount), from, to))

	return nil
}

// TransferAndNotify makes Transfer and then calls onTransfer method of the
// receiver contract with the sender, amount and payload. The receiver returns
// the amount it has used, the rest is returned to the sender by
// resolveTransfer callback.
func (c *Contract) TransferAndNotify(ic *host.Context, from, to string, amount *uint256.Int, memo, payload []byte) (*PendingTransfer, error) {
	if _, err := c.checkInitialized(ic); err != nil {
		return nil, err
	}
	if ic.Caller != from {
		return nil, fmt.Errorf("%w: %s can't transfer from %s", ErrNotAuthorized, ic.Caller, from)
	}

	if err := c.transfer(ic, from, to, amount, memo); err != nil {
		return nil, err
	}

	id := ic.Schedule(host.Promise{
		Contract: to,
		Method:   ftconst.ReceiverMethod,
		Args: []stackitem.Item{
			accountItem(from),
			common.AmountItem(amount),
			optionalItem(payload),
		},
		Callback: ftconst.ResolveMethod,
		CallbackArgs: []stackitem.Item{
			accountItem(from),
			accountItem(to),
			common.AmountItem(amount),
		},
	})

	return &PendingTransfer{
		Ticket:   base58.Encode(id[:]),
		Sender:   from,
		Receiver: to,
		Amount:   amount,
		State:    Pending,
	}, nil
}

// ResolveTransfer settles transferAndNotify with the result of the receiver
// call. Unused amount is returned to the sender as far as the receiver
// balance allows. If the sender is not registered anymore, it is burned
// instead. Can be called only by the contract itself. Returns the amount
// finally used by the receiver.
//
// It produces TransferResolved notification and Transfer and TransferX
// notifications if tokens are returned or burned.
func (c *Contract) ResolveTransfer(ic *host.Context, sender, receiver string, amount *uint256.Int, ok bool, result stackitem.Item) (*uint256.Int, error) {
	if ic.Caller != ic.Contract {
		return nil, fmt.Errorf("%w: %s is not the token contract", ErrNotAuthorized, ic.Caller)
	}

	used := common.Zero()
	if ok {
		reported, err := common.AmountFromItem(result)
		if err != nil {
			ic.Log(fmt.Sprintf("Invalid result of %s: %v", ftconst.ReceiverMethod, err))
		} else {
			used = common.MinAmount(reported, amount)
		}
	}

	unused := new(uint256.Int).Sub(amount, used)
	state := Resolved

	if !unused.IsZero() {
		l := ledger{ic}

		receiverBalance, _ := l.balance(receiver)
		refund := common.MinAmount(unused, receiverBalance)

		if !refund.IsZero() {
			state = Reversed

			if err := l.withdraw(receiver, refund); err != nil {
				return nil, err
			}

			if l.registered(sender) {
				if err := l.deposit(sender, refund); err != nil {
					return nil, err
				}
				notifyTransfer(ic, receiver, sender, refund, common.RefundTransferDetails(nil))
			} else {
				l.burn(refund)
				notifyTransfer(ic, receiver, "", refund, common.BurnTransferDetails(nil))
				ic.Log("The account of the sender was deleted")
				ic.Log(fmt.Sprintf("Account @%s burned %s", receiver, common.AmountString(refund)))
			}
		}

		used = new(uint256.Int).Sub(amount, refund)
	}

	ic.Notify("TransferResolved", accountItem(sender), accountItem(receiver), common.AmountItem(amount),
		common.AmountItem(used), stackitem.NewByteArray([]byte(state)))

	return used, nil
}
