package host

import (
	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Promise is a cross-call request scheduled by a contract. After the
// scheduling call is committed, the host calls Method of the Contract with
// Args on behalf of the scheduling contract. If Callback is set, the host
// then calls Callback method of the scheduling contract with CallbackArgs
// followed by the outcome of the first call: boolean success flag and the
// returned item (Null on failure).
//
// Both steps are separate calls. Other calls may be executed between them.
type Promise struct {
	// Set by Context.Schedule.
	ID     uuid.UUID
	Origin string
	Signer string

	Contract string
	Method   string
	Args     []stackitem.Item

	Callback     string
	CallbackArgs []stackitem.Item
}

// step is a single call of the promise queue.
type step struct {
	promise  *Promise
	callback bool
	ok       bool
	result   stackitem.Item
}

func (s *step) call() call {
	c := call{
		caller: s.promise.Origin,
		signer: s.promise.Signer,
	}

	if !s.callback {
		c.contract = s.promise.Contract
		c.method = s.promise.Method
		c.args = s.promise.Args
		return c
	}

	result := s.result
	if result == nil {
		result = stackitem.Null{}
	}

	c.contract = s.promise.Origin
	c.method = s.promise.Callback
	c.args = make([]stackitem.Item, 0, len(s.promise.CallbackArgs)+2)
	c.args = append(c.args, s.promise.CallbackArgs...)
	c.args = append(c.args, stackitem.NewBool(s.ok), result)
	return c
}
