package ft

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ft-ledger/common"
	"github.com/nspcc-dev/ft-ledger/contracts/ft/ftconst"
	"github.com/nspcc-dev/ft-ledger/host"
)

// ledger works with balances and total supply of the token stored in the
// contract storage. Total supply always equals to the sum of all balances.
type ledger struct {
	ic *host.Context
}

func accountKey(account string) []byte {
	return append([]byte{ftconst.AccountPrefix}, account...)
}

func encodeBalance(balance *uint256.Int) []byte {
	b := balance.Bytes32()
	return b[32-ftconst.BalanceLength:]
}

func decodeBalance(data []byte) (*uint256.Int, error) {
	if len(data) != ftconst.BalanceLength {
		return nil, fmt.Errorf("invalid balance length %d", len(data))
	}
	return new(uint256.Int).SetBytes(data), nil
}

func (l ledger) supply() *uint256.Int {
	res, err := common.AmountFromBig(common.GetInt(l.ic, []byte(ftconst.SupplyKey)))
	if err != nil {
		panic(fmt.Errorf("stored total supply: %w", err))
	}
	return res
}

func (l ledger) setSupply(supply *uint256.Int) {
	common.PutInt(l.ic, []byte(ftconst.SupplyKey), supply.ToBig())
}

// balance returns balance of the account and false if the account is not
// registered.
func (l ledger) balance(account string) (*uint256.Int, bool) {
	data := l.ic.Get(accountKey(account))
	if data == nil {
		return common.Zero(), false
	}

	res, err := decodeBalance(data)
	if err != nil {
		panic(fmt.Errorf("stored balance of %s: %w", account, err))
	}
	return res, true
}

func (l ledger) registered(account string) bool {
	return l.ic.Get(accountKey(account)) != nil
}

func (l ledger) setBalance(account string, balance *uint256.Int) {
	l.ic.Put(accountKey(account), encodeBalance(balance))
}

func (l ledger) remove(account string) {
	l.ic.Delete(accountKey(account))
}

// deposit increases balance of the registered account.
func (l ledger) deposit(account string, amount *uint256.Int) error {
	balance, ok := l.balance(account)
	if !ok {
		return fmt.Errorf("%w: %s", ErrReceiverNotRegistered, account)
	}

	balance, err := common.CheckedAdd(balance, amount)
	if err != nil {
		return fmt.Errorf("balance of %s: %w", account, err)
	}

	l.setBalance(account, balance)
	return nil
}

// withdraw decreases balance of the registered account.
func (l ledger) withdraw(account string, amount *uint256.Int) error {
	balance, ok := l.balance(account)
	if !ok {
		return fmt.Errorf("%w: %s is not registered", ErrInsufficientBalance, account)
	}
	if balance.Lt(amount) {
		return fmt.Errorf("%w: %s has %s, requested %s", ErrInsufficientBalance,
			account, common.AmountString(balance), common.AmountString(amount))
	}

	l.setBalance(account, balance.Sub(balance, amount))
	return nil
}

// mint increases balance of the registered account and total supply.
func (l ledger) mint(account string, amount *uint256.Int) error {
	supply, err := common.CheckedAdd(l.supply(), amount)
	if err != nil {
		return fmt.Errorf("total supply: %w", err)
	}

	if err = l.deposit(account, amount); err != nil {
		return err
	}

	l.setSupply(supply)
	return nil
}

// burn decreases total supply by the amount already withdrawn from the
// accounts.
func (l ledger) burn(amount *uint256.Int) {
	supply := l.supply()
	if supply.Lt(amount) {
		panic("negative supply after burn")
	}
	l.setSupply(supply.Sub(supply, amount))
}
