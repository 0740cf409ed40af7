package common

var (
	mintPrefix   = []byte{0x01}
	burnPrefix   = []byte{0x02}
	refundPrefix = []byte{0x03}
)

// MintTransferDetails returns TransferX details of the minting operation.
func MintTransferDetails(memo []byte) []byte {
	return append(mintPrefix, memo...)
}

// BurnTransferDetails returns TransferX details of the burning operation.
func BurnTransferDetails(memo []byte) []byte {
	return append(burnPrefix, memo...)
}

// RefundTransferDetails returns TransferX details of the transfer returning
// unused tokens of the notified transfer back to the sender.
func RefundTransferDetails(memo []byte) []byte {
	return append(refundPrefix, memo...)
}
