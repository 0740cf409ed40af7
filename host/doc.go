/*
Package host implements the environment fungible token contracts are executed
in.

The host owns persistent state and runs every contract method as a single
atomic call. A call sees a private cached layer of the state: when the method
succeeds the layer is persisted, when it fails the layer is dropped together
with everything the method wrote, notified or scheduled, and attached payment
is returned to the caller in full.

Per-call collaborators are available through Context:
  - Escrow holds the attached payment. Contracts consume from it, the rest is
    returned to the caller when the call ends.
  - StorageMeter counts bytes of persistent storage used by the contract and
    knows the price of a byte.
  - Promises are cross-call requests. A committed call may ask the host to
    invoke a method of another contract and then to call the scheduling
    contract back with the outcome. Every step is a separate call, so other
    calls can be executed in between.

Calls are serialized by Executor. See Receipt for the results of a call.
*/
package host
