package ft

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ft-ledger/common"
	"github.com/nspcc-dev/ft-ledger/host"
)

// Mint creates amount of new tokens on the registered account increasing
// total supply. Transaction must be signed by the owner.
//
// It produces Transfer and TransferX notifications.
func (c *Contract) Mint(ic *host.Context, to string, amount *uint256.Int, memo []byte) error {
	owner, err := c.checkInitialized(ic)
	if err != nil {
		return err
	}
	if !ic.CheckWitness(owner) {
		return fmt.Errorf("%w: mint must be signed by the owner", ErrNotAuthorized)
	}
	if amount.IsZero() {
		return ErrZeroAmount
	}

	if err = (ledger{ic}).mint(to, amount); err != nil {
		return err
	}

	notifyTransfer(ic, "", to, amount, common.MintTransferDetails(memo))
	ic.Log("assets were minted")

	return nil
}
