/*
Package ft implements fungible token contract executed by the ledger host.

Fungible token contract tracks balances of registered accounts. An account must
be registered before it can receive tokens. Registration creates a record in
the contract storage, so it is paid by the storage deposit attached to the
register call: the contract consumes exactly the price of the bytes the record
takes and returns the rest. Unregistration removes the record and pays the
freed bytes back.

Total supply is created on initialization and belongs to the owner account. It
can be increased only by the owner with mint operation and decreased only by
forced unregistration of the account with non-zero balance.

Tokens are moved with transfer or transferAndNotify. The latter calls
onTransfer method of the receiver contract after the transfer is committed and
then returns the amount not used by the receiver back to the sender in
resolveTransfer callback.

# Contract notifications

Transfer notification. This is a NEP-17 standard notification. Empty from
means mint, empty to means burn.

	Transfer:
	  - name: from
	    type: ByteArray
	  - name: to
	    type: ByteArray
	  - name: amount
	    type: Integer

TransferX notification. This is an enhanced transfer notification with details.
Details start with the operation byte: 0x01 for mint, 0x02 for burn, 0x03 for
refund of notified transfer, other transfers have memo only.

	TransferX:
	  - name: from
	    type: ByteArray
	  - name: to
	    type: ByteArray
	  - name: amount
	    type: Integer
	  - name: details
	    type: ByteArray

TransferResolved notification. This notification is produced when the result
of transferAndNotify is settled.

	TransferResolved:
	  - name: sender
	    type: ByteArray
	  - name: receiver
	    type: ByteArray
	  - name: amount
	    type: Integer
	  - name: used
	    type: Integer
	  - name: state
	    type: String
*/
package ft
