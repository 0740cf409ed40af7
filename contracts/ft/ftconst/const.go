// Package ftconst contains fungible token contract constants shared with the
// tooling.
package ftconst

const (
	// OwnerKey is a storage key of the token owner account.
	OwnerKey = "o"
	// SupplyKey is a storage key of the total supply.
	SupplyKey = "s"
	// MetadataKey is a storage key of the serialized token metadata.
	MetadataKey = "m"
	// RegistrationBytesKey is a storage key of the number of bytes a
	// registration of the longest account takes.
	RegistrationBytesKey = "u"

	// AccountPrefix is a prefix of account records. Account record key is the
	// prefix followed by the account, value is the 16-byte big-endian balance.
	AccountPrefix = 'a'
	// BalanceLength is the length of the stored balance.
	BalanceLength = 16

	// MaxAccountLength is the maximum length of the account in bytes.
	MaxAccountLength = 64

	// MetadataSpec is the only supported metadata specification.
	MetadataSpec = "ft-1.0.0"
	// ReferenceHashLength is the length of the metadata reference hash.
	ReferenceHashLength = 32
)

const (
	// ReceiverMethod is a method of the receiver called by transferAndNotify.
	// It accepts the sender, amount and payload and returns the used amount.
	ReceiverMethod = "onTransfer"
	// ResolveMethod is a callback of transferAndNotify.
	ResolveMethod = "resolveTransfer"

	// DefaultMinTransferPayment is the default payment consumed by transfers.
	DefaultMinTransferPayment = 1
)
