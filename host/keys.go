package host

import (
	"bytes"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/io"
)

// Layout of the host state:
//
//	0x70 | ScriptHash(contract) | key -> contract storage item
//	0x01 | ScriptHash(contract) -> storage usage of the contract, uint64 LE
//	0x02 -> executor height, uint64 LE
const (
	prefixContractStorage = 0x70
	prefixStorageUsage    = 0x01
	prefixHeight          = 0x02
)

func storageKey(contract string, key []byte) []byte {
	h := ScriptHash(contract)
	res := make([]byte, 0, 1+len(h)+len(key))
	res = append(res, prefixContractStorage)
	res = append(res, h.BytesBE()...)
	return append(res, key...)
}

func usageKey(contract string) []byte {
	return append([]byte{prefixStorageUsage}, ScriptHash(contract).BytesBE()...)
}

var heightKey = []byte{prefixHeight}

type seeker interface {
	Seek(rng storage.SeekRange, f func(k, v []byte) bool)
}

func seekContractStorage(s seeker, contract string, prefix []byte, f func(key, value []byte) bool) {
	base := storageKey(contract, nil)

	s.Seek(storage.SeekRange{Prefix: storageKey(contract, prefix)}, func(k, v []byte) bool {
		if !bytes.HasPrefix(k, base) {
			return true
		}
		return f(bytes.Clone(k[len(base):]), bytes.Clone(v))
	})
}

type getter interface {
	Get(key []byte) ([]byte, error)
}

func readUint64(s getter, key []byte) (uint64, error) {
	data, err := s.Get(key)
	if err != nil {
		if err == storage.ErrKeyNotFound {
			return 0, nil
		}
		return 0, err
	}

	r := io.NewBinReaderFromBuf(data)
	v := r.ReadU64LE()
	return v, r.Err
}

func encodeUint64(v uint64) []byte {
	w := io.NewBufBinWriter()
	w.WriteU64LE(v)
	return w.Bytes()
}
