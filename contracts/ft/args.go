package ft

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ft-ledger/common"
	"github.com/nspcc-dev/ft-ledger/contracts/ft/ftconst"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

func checkAccount(account string) error {
	if len(account) == 0 || len(account) > ftconst.MaxAccountLength {
		return fmt.Errorf("%w: length %d", ErrInvalidAccount, len(account))
	}
	return nil
}

func accountArg(item stackitem.Item) (string, error) {
	b, err := item.TryBytes()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAccount, err)
	}

	account := string(b)
	return account, checkAccount(account)
}

func amountArg(item stackitem.Item) (*uint256.Int, error) {
	return common.AmountFromItem(item)
}

// bytesArg returns nil for Null items.
func bytesArg(item stackitem.Item) ([]byte, error) {
	if _, ok := item.(stackitem.Null); ok {
		return nil, nil
	}

	b, err := item.TryBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	return b, nil
}

func boolArg(item stackitem.Item) (bool, error) {
	b, err := item.TryBool()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	return b, nil
}

func accountItem(account string) stackitem.Item {
	return stackitem.NewByteArray([]byte(account))
}
