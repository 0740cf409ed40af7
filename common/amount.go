package common

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

var (
	// ErrOverflow is returned when the result of an amount operation does not
	// fit into the 128-bit unsigned range.
	ErrOverflow = errors.New("128-bit amount overflow")

	// ErrInvalidAmount is returned for negative amounts and amounts wider than
	// 128 bits received from outside.
	ErrInvalidAmount = errors.New("invalid amount")
)

// AmountBits is the width of every balance and supply value.
const AmountBits = 128

// MaxAmount is the biggest balance or supply value, 2^128-1.
var MaxAmount = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), AmountBits), 1)

// Zero returns new zero amount.
func Zero() *uint256.Int {
	return new(uint256.Int)
}

// AmountFromBig converts b into an amount. b must be non-negative and fit
// into 128 bits.
func AmountFromBig(b *big.Int) (*uint256.Int, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: missing value", ErrInvalidAmount)
	}
	if b.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative value %s", ErrInvalidAmount, b)
	}
	if b.BitLen() > AmountBits {
		return nil, fmt.Errorf("%w: %s exceeds %d bits", ErrInvalidAmount, b, AmountBits)
	}

	res, _ := uint256.FromBig(b)
	return res, nil
}

// AmountFromItem converts integer stack item into an amount.
func AmountFromItem(item stackitem.Item) (*uint256.Int, error) {
	b, err := item.TryInteger()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	return AmountFromBig(b)
}

// AmountItem returns integer stack item holding a.
func AmountItem(a *uint256.Int) stackitem.Item {
	return stackitem.NewBigInteger(a.ToBig())
}

// AmountString returns decimal representation of a.
func AmountString(a *uint256.Int) string {
	return a.ToBig().String()
}

// CheckedAdd returns a+b or ErrOverflow if the sum does not fit into 128 bits.
// Operands are expected to be within the 128-bit range already.
func CheckedAdd(a, b *uint256.Int) (*uint256.Int, error) {
	res := new(uint256.Int).Add(a, b)
	if res.Gt(MaxAmount) {
		return nil, fmt.Errorf("%w: %s + %s", ErrOverflow, AmountString(a), AmountString(b))
	}
	return res, nil
}

// MinAmount returns the smallest of a and b.
func MinAmount(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return a.Clone()
	}
	return b.Clone()
}
