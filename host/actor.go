package host

import (
	"context"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
)

// Actor makes calls to the Executor on behalf of a single account. It is
// compatible with the neo-go rpcclient/unwrap helpers: failed calls return
// the contract error together with the invocation result.
type Actor struct {
	ctx     context.Context
	exec    *Executor
	account string
}

// NewActor returns Actor calling contracts as the given account. Context is
// used for all state-changing calls made by the Actor.
func (e *Executor) NewActor(ctx context.Context, account string) *Actor {
	return &Actor{
		ctx:     ctx,
		exec:    e,
		account: account,
	}
}

// Account returns the account the Actor acts for.
func (a *Actor) Account() string {
	return a.account
}

// Call makes read-only call of the contract method.
func (a *Actor) Call(contract, method string, params ...any) (*result.Invoke, error) {
	r, err := a.exec.TestInvoke(Tx{
		Caller:   a.account,
		Contract: contract,
		Method:   method,
		Args:     params,
	})
	if err != nil {
		return nil, err
	}

	return r.Invocation(), r.Err
}

// SendCall makes state-changing call of the contract method with attached
// payment (nil means nothing). Contract error is returned together with the
// receipt.
func (a *Actor) SendCall(contract, method string, payment *big.Int, params ...any) (*Receipt, error) {
	tx := Tx{
		Caller:   a.account,
		Contract: contract,
		Method:   method,
		Args:     params,
	}

	if payment != nil {
		var overflow bool
		if payment.Sign() >= 0 {
			tx.Attached, overflow = uint256.FromBig(payment)
		}
		if payment.Sign() < 0 || overflow {
			return nil, fmt.Errorf("invalid payment %s", payment)
		}
	}

	r, err := a.exec.Invoke(a.ctx, tx)
	if err != nil {
		return r, err
	}

	return r, r.Err
}
