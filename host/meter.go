package host

import (
	"github.com/holiman/uint256"
)

const (
	// RecordOverhead is the number of bytes charged for every storage record in
	// addition to its key and value.
	RecordOverhead = 40

	// DefaultStoragePrice is the default price of a storage byte.
	DefaultStoragePrice = 100_000
)

// StorageMeter measures persistent storage consumed by a contract. Every write
// made through Context is accounted exactly: a record costs its key length,
// value length and RecordOverhead bytes.
type StorageMeter struct {
	price    uint256.Int
	overhead uint64

	initial uint64
	usage   uint64
}

func newStorageMeter(usage uint64, price *uint256.Int, overhead uint64) *StorageMeter {
	m := &StorageMeter{
		overhead: overhead,
		initial:  usage,
		usage:    usage,
	}
	m.price.Set(price)
	return m
}

// Initial returns number of bytes used by the contract before the call.
func (m *StorageMeter) Initial() uint64 {
	return m.initial
}

// Usage returns number of bytes used by the contract at the moment.
func (m *StorageMeter) Usage() uint64 {
	return m.usage
}

// Price returns the price of a single storage byte.
func (m *StorageMeter) Price() *uint256.Int {
	return m.price.Clone()
}

// Cost returns the price of n storage bytes.
func (m *StorageMeter) Cost(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), &m.price)
}

// RecordSize returns number of bytes a record with given key and value takes.
func (m *StorageMeter) RecordSize(key, value []byte) uint64 {
	return uint64(len(key)) + uint64(len(value)) + m.overhead
}

func (m *StorageMeter) changed() bool {
	return m.usage != m.initial
}

// put accounts replacement of prev value (nil if missing) with value.
func (m *StorageMeter) put(key, prev, value []byte) {
	if prev != nil {
		m.usage -= m.RecordSize(key, prev)
	}
	m.usage += m.RecordSize(key, value)
}

// remove accounts removal of prev value (nil if missing).
func (m *StorageMeter) remove(key, prev []byte) {
	if prev != nil {
		m.usage -= m.RecordSize(key, prev)
	}
}
