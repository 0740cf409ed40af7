package host

import (
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
)

// Receipt describes the result of a single call.
type Receipt struct {
	ID uuid.UUID
	// Executor height after the call. Equals to the height before the call for
	// failed and read-only calls.
	Height uint32

	Contract string
	Method   string

	// HALT for successful calls, FAULT otherwise.
	State vmstate.State
	// Error of the failed call.
	Err error
	// Text of Err.
	FaultException string

	// Value returned by the method.
	Stack []stackitem.Item
	// Notifications emitted by the committed call.
	Notifications []state.NotificationEvent
	// Messages logged by the contract.
	Logs []string

	// Amount returned to the caller: unconsumed payment and payouts of the
	// contract. The whole attached amount for failed calls.
	Refund *uint256.Int

	// Storage bytes used by the called contract before and after the call.
	StorageBefore uint64
	StorageAfter  uint64

	// Promises scheduled by the call.
	Promises []uuid.UUID

	// Receipts of the promise steps executed right after the call.
	Chained []*Receipt
}

// Invocation returns the receipt in the form of the Neo RPC invocation result.
func (r *Receipt) Invocation() *result.Invoke {
	return &result.Invoke{
		State:          r.State.String(),
		Stack:          r.Stack,
		FaultException: r.FaultException,
		Notifications:  r.Notifications,
		Session:        r.ID,
	}
}

// Halted checks whether the call succeeded.
func (r *Receipt) Halted() bool {
	return r.State == vmstate.Halt
}
