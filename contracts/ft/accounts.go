package ft

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ft-ledger/contracts/ft/ftconst"
	"github.com/nspcc-dev/ft-ledger/host"
)

// IterateBalances passes every registered account of the token deployed
// under the contract account and its balance to f. Iteration breaks on the
// first f's error.
func IterateBalances(e *host.Executor, contract string, f func(account string, balance *uint256.Int) error) error {
	return e.IterateStorage(contract, func(key, value []byte) error {
		if len(key) < 2 || key[0] != ftconst.AccountPrefix {
			return nil
		}

		balance, err := decodeBalance(value)
		if err != nil {
			return fmt.Errorf("account %s: %w", key[1:], err)
		}

		return f(string(key[1:]), balance)
	})
}
