package ft

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/ft-ledger/common"
	"github.com/nspcc-dev/ft-ledger/host"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

type method struct {
	params int
	call   func(c *Contract, ic *host.Context, args []stackitem.Item) (stackitem.Item, error)
}

var methods = map[string]method{
	"init":                 {3, (*Contract).callInit},
	"owner":                {0, (*Contract).callOwner},
	"totalSupply":          {0, (*Contract).callTotalSupply},
	"balanceOf":            {1, (*Contract).callBalanceOf},
	"metadata":             {0, (*Contract).callMetadata},
	"symbol":               {0, (*Contract).callSymbol},
	"decimals":             {0, (*Contract).callDecimals},
	"version":              {0, (*Contract).callVersion},
	"storageBalanceOf":     {1, (*Contract).callStorageBalanceOf},
	"storageBalanceBounds": {0, (*Contract).callStorageBalanceBounds},
	"register":             {1, (*Contract).callRegister},
	"unregister":           {2, (*Contract).callUnregister},
	"transfer":             {4, (*Contract).callTransfer},
	"transferAndNotify":    {5, (*Contract).callTransferAndNotify},
	"resolveTransfer":      {5, (*Contract).callResolveTransfer},
	"mint":                 {3, (*Contract).callMint},
}

// Invoke implements host.Contract.
func (c *Contract) Invoke(ic *host.Context, name string, args []stackitem.Item) (stackitem.Item, error) {
	m, ok := methods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", host.ErrMethodNotFound, name)
	}
	if len(args) != m.params {
		return nil, fmt.Errorf("%w: %s expects %d parameters, got %d", ErrInvalidArguments, name, m.params, len(args))
	}

	return m.call(c, ic, args)
}

func (c *Contract) callInit(ic *host.Context, args []stackitem.Item) (stackitem.Item, error) {
	owner, err := accountArg(args[0])
	if err != nil {
		return nil, err
	}
	supply, err := amountArg(args[1])
	if err != nil {
		return nil, err
	}

	var m Metadata
	if err = m.FromStackItem(args[2]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}

	return nil, c.Init(ic, owner, supply, m)
}

func (c *Contract) callOwner(ic *host.Context, _ []stackitem.Item) (stackitem.Item, error) {
	owner, err := c.Owner(ic)
	if err != nil {
		return nil, err
	}
	return accountItem(owner), nil
}

func (c *Contract) callTotalSupply(ic *host.Context, _ []stackitem.Item) (stackitem.Item, error) {
	supply, err := c.TotalSupply(ic)
	if err != nil {
		return nil, err
	}
	return common.AmountItem(supply), nil
}

func (c *Contract) callBalanceOf(ic *host.Context, args []stackitem.Item) (stackitem.Item, error) {
	account, err := accountArg(args[0])
	if err != nil {
		return nil, err
	}

	balance, err := c.BalanceOf(ic, account)
	if err != nil {
		return nil, err
	}
	return common.AmountItem(balance), nil
}

func (c *Contract) callMetadata(ic *host.Context, _ []stackitem.Item) (stackitem.Item, error) {
	m, err := c.Metadata(ic)
	if err != nil {
		return nil, err
	}
	return m.ToStackItem()
}

func (c *Contract) callSymbol(ic *host.Context, _ []stackitem.Item) (stackitem.Item, error) {
	m, err := c.Metadata(ic)
	if err != nil {
		return nil, err
	}
	return stackitem.NewByteArray([]byte(m.Symbol)), nil
}

func (c *Contract) callDecimals(ic *host.Context, _ []stackitem.Item) (stackitem.Item, error) {
	m, err := c.Metadata(ic)
	if err != nil {
		return nil, err
	}
	return stackitem.NewBigInteger(big.NewInt(int64(m.Decimals))), nil
}

func (c *Contract) callVersion(_ *host.Context, _ []stackitem.Item) (stackitem.Item, error) {
	return stackitem.NewBigInteger(big.NewInt(int64(c.Version()))), nil
}

func (c *Contract) callStorageBalanceOf(ic *host.Context, args []stackitem.Item) (stackitem.Item, error) {
	account, err := accountArg(args[0])
	if err != nil {
		return nil, err
	}

	b, err := c.StorageBalanceOf(ic, account)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return stackitem.Null{}, nil
	}
	return b.ToStackItem()
}

func (c *Contract) callStorageBalanceBounds(ic *host.Context, _ []stackitem.Item) (stackitem.Item, error) {
	b, err := c.StorageBalanceBounds(ic)
	if err != nil {
		return nil, err
	}
	return b.ToStackItem()
}

func (c *Contract) callRegister(ic *host.Context, args []stackitem.Item) (stackitem.Item, error) {
	account, err := accountArg(args[0])
	if err != nil {
		return nil, err
	}

	b, err := c.Register(ic, account)
	if err != nil {
		return nil, err
	}
	return b.ToStackItem()
}

func (c *Contract) callUnregister(ic *host.Context, args []stackitem.Item) (stackitem.Item, error) {
	account, err := accountArg(args[0])
	if err != nil {
		return nil, err
	}
	force, err := boolArg(args[1])
	if err != nil {
		return nil, err
	}

	ok, err := c.Unregister(ic, account, force)
	if err != nil {
		return nil, err
	}
	return stackitem.NewBool(ok), nil
}

func (c *Contract) callTransfer(ic *host.Context, args []stackitem.Item) (stackitem.Item, error) {
	from, to, err := transferParties(args)
	if err != nil {
		return nil, err
	}
	amount, err := amountArg(args[2])
	if err != nil {
		return nil, err
	}
	memo, err := bytesArg(args[3])
	if err != nil {
		return nil, err
	}

	if err = c.Transfer(ic, from, to, amount, memo); err != nil {
		return nil, err
	}
	return stackitem.NewBool(true), nil
}

func (c *Contract) callTransferAndNotify(ic *host.Context, args []stackitem.Item) (stackitem.Item, error) {
	from, to, err := transferParties(args)
	if err != nil {
		return nil, err
	}
	amount, err := amountArg(args[2])
	if err != nil {
		return nil, err
	}
	memo, err := bytesArg(args[3])
	if err != nil {
		return nil, err
	}
	payload, err := bytesArg(args[4])
	if err != nil {
		return nil, err
	}

	p, err := c.TransferAndNotify(ic, from, to, amount, memo, payload)
	if err != nil {
		return nil, err
	}
	return p.ToStackItem()
}

func (c *Contract) callResolveTransfer(ic *host.Context, args []stackitem.Item) (stackitem.Item, error) {
	sender, receiver, err := transferParties(args)
	if err != nil {
		return nil, err
	}
	amount, err := amountArg(args[2])
	if err != nil {
		return nil, err
	}
	ok, err := boolArg(args[3])
	if err != nil {
		return nil, err
	}

	used, err := c.ResolveTransfer(ic, sender, receiver, amount, ok, args[4])
	if err != nil {
		return nil, err
	}
	return common.AmountItem(used), nil
}

func (c *Contract) callMint(ic *host.Context, args []stackitem.Item) (stackitem.Item, error) {
	to, err := accountArg(args[0])
	if err != nil {
		return nil, err
	}
	amount, err := amountArg(args[1])
	if err != nil {
		return nil, err
	}
	memo, err := bytesArg(args[2])
	if err != nil {
		return nil, err
	}

	return nil, c.Mint(ic, to, amount, memo)
}

func transferParties(args []stackitem.Item) (string, string, error) {
	from, err := accountArg(args[0])
	if err != nil {
		return "", "", fmt.Errorf("sender: %w", err)
	}
	to, err := accountArg(args[1])
	if err != nil {
		return "", "", fmt.Errorf("receiver: %w", err)
	}
	return from, to, nil
}
