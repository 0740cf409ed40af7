package host

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// ErrInsufficientPayment is returned when a contract tries to consume more
// than was attached to the call.
var ErrInsufficientPayment = errors.New("insufficient attached payment")

// Escrow holds payment attached to a call. Contracts consume the part they
// need, the remainder is returned to the caller when the call ends.
type Escrow struct {
	attached uint256.Int
	consumed uint256.Int
}

// NewEscrow returns Escrow holding attached amount. Nil means nothing is
// attached.
func NewEscrow(attached *uint256.Int) *Escrow {
	var e Escrow
	if attached != nil {
		e.attached.Set(attached)
	}
	return &e
}

// Attached returns the whole attached amount.
func (e *Escrow) Attached() *uint256.Int {
	return e.attached.Clone()
}

// Consumed returns the amount consumed so far.
func (e *Escrow) Consumed() *uint256.Int {
	return e.consumed.Clone()
}

// Available returns the amount that can still be consumed.
func (e *Escrow) Available() *uint256.Int {
	return new(uint256.Int).Sub(&e.attached, &e.consumed)
}

// Consume takes amount from the escrow.
func (e *Escrow) Consume(amount *uint256.Int) error {
	available := e.Available()
	if available.Lt(amount) {
		return fmt.Errorf("%w: available %s, requested %s",
			ErrInsufficientPayment, available.ToBig(), amount.ToBig())
	}

	e.consumed.Add(&e.consumed, amount)
	return nil
}
