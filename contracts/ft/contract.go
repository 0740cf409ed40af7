package ft

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ft-ledger/common"
	"github.com/nspcc-dev/ft-ledger/contracts/ft/ftconst"
	"github.com/nspcc-dev/ft-ledger/host"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Prm groups parameters of the contract.
type Prm struct {
	// Payment consumed by every transfer. Defaults to
	// ftconst.DefaultMinTransferPayment.
	MinTransferPayment *uint256.Int
}

// Contract is the fungible token contract. Contract is stateless, all the
// data is kept in the storage of host.Context passed to the methods.
//
// Contract must be constructed using New.
type Contract struct {
	minTransferPayment uint256.Int
}

// New returns new fungible token contract.
func New(prm Prm) *Contract {
	var c Contract

	if prm.MinTransferPayment != nil {
		c.minTransferPayment.Set(prm.MinTransferPayment)
	} else {
		c.minTransferPayment.SetUint64(ftconst.DefaultMinTransferPayment)
	}

	return &c
}

const initialSupplyMemo = "Initial tokens supply is minted"

// Init initializes the token: owner account is registered without storage
// charge and gets the whole total supply.
//
// It produces Transfer and TransferX notifications.
func (c *Contract) Init(ic *host.Context, owner string, totalSupply *uint256.Int, m Metadata) error {
	if ic.Get([]byte(ftconst.OwnerKey)) != nil {
		return ErrAlreadyInitialized
	}

	if err := checkAccount(owner); err != nil {
		return err
	}
	if totalSupply.Gt(common.MaxAmount) {
		return fmt.Errorf("total supply: %w", ErrOverflow)
	}
	if err := m.Validate(); err != nil {
		return err
	}

	ic.Put([]byte(ftconst.OwnerKey), []byte(owner))
	if err := common.SetSerialized(ic, []byte(ftconst.MetadataKey), &m); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}

	common.PutInt(ic, []byte(ftconst.RegistrationBytesKey), new(big.Int).SetUint64(measureRegistration(ic)))

	l := ledger{ic}
	l.setSupply(common.Zero())
	l.setBalance(owner, common.Zero())

	if err := l.mint(owner, totalSupply); err != nil {
		return err
	}

	notifyTransfer(ic, "", owner, totalSupply, common.MintTransferDetails([]byte(initialSupplyMemo)))
	ic.Log("fungible token initialized")

	return nil
}

// measureRegistration returns the number of bytes the registration of the
// longest possible account takes. Measured by writing and removing a probe
// record.
func measureRegistration(ic *host.Context) uint64 {
	probe := make([]byte, ftconst.MaxAccountLength)
	for i := range probe {
		probe[i] = '#'
	}

	l := ledger{ic}
	before := ic.Meter.Usage()
	l.setBalance(string(probe), common.Zero())
	size := ic.Meter.Usage() - before
	l.remove(string(probe))

	return size
}

func (c *Contract) checkInitialized(ic *host.Context) (string, error) {
	owner := ic.Get([]byte(ftconst.OwnerKey))
	if owner == nil {
		return "", ErrNotInitialized
	}
	return string(owner), nil
}

// Owner returns the owner account.
func (c *Contract) Owner(ic *host.Context) (string, error) {
	return c.checkInitialized(ic)
}

// TotalSupply returns total amount of tokens.
func (c *Contract) TotalSupply(ic *host.Context) (*uint256.Int, error) {
	if _, err := c.checkInitialized(ic); err != nil {
		return nil, err
	}
	return ledger{ic}.supply(), nil
}

// BalanceOf returns balance of the account, zero for unregistered accounts.
func (c *Contract) BalanceOf(ic *host.Context, account string) (*uint256.Int, error) {
	if _, err := c.checkInitialized(ic); err != nil {
		return nil, err
	}
	balance, _ := ledger{ic}.balance(account)
	return balance, nil
}

// Metadata returns token metadata.
func (c *Contract) Metadata(ic *host.Context) (Metadata, error) {
	var m Metadata

	if _, err := c.checkInitialized(ic); err != nil {
		return m, err
	}

	ok, err := common.GetSerialized(ic, []byte(ftconst.MetadataKey), &m)
	if err != nil {
		return m, fmt.Errorf("read metadata: %w", err)
	}
	if !ok {
		panic("metadata is missing")
	}

	return m, nil
}

// Version returns the version of the contract.
func (c *Contract) Version() int {
	return common.Version
}

// notifyTransfer throws Transfer and TransferX notifications. Empty from
// means mint, empty to means burn.
func notifyTransfer(ic *host.Context, from, to string, amount *uint256.Int, details []byte) {
	ic.Notify("Transfer", accountItem(from), accountItem(to), common.AmountItem(amount))
	ic.Notify("TransferX", accountItem(from), accountItem(to), common.AmountItem(amount),
		stackitem.NewByteArray(details))
}
