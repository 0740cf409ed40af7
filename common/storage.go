package common

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/ft-ledger/host"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// SetSerialized serializes value and puts it into contract storage.
func SetSerialized(ic *host.Context, key []byte, value stackitem.Convertible) error {
	item, err := value.ToStackItem()
	if err != nil {
		return fmt.Errorf("convert to stack item: %w", err)
	}

	data, err := stackitem.Serialize(item)
	if err != nil {
		return fmt.Errorf("serialize stack item: %w", err)
	}

	ic.Put(key, data)
	return nil
}

// GetSerialized reads value stored by SetSerialized. Returns false if there is
// no value under the key.
func GetSerialized(ic *host.Context, key []byte, value stackitem.Convertible) (bool, error) {
	data := ic.Get(key)
	if data == nil {
		return false, nil
	}

	item, err := stackitem.Deserialize(data)
	if err != nil {
		return true, fmt.Errorf("deserialize stack item: %w", err)
	}

	err = value.FromStackItem(item)
	if err != nil {
		return true, fmt.Errorf("convert from stack item: %w", err)
	}

	return true, nil
}

// GetInt returns integer stored under the key, zero if there is no value.
func GetInt(ic *host.Context, key []byte) *big.Int {
	data := ic.Get(key)
	if data == nil {
		return new(big.Int)
	}
	return bigint.FromBytes(data)
}

// PutInt stores integer under the key.
func PutInt(ic *host.Context, key []byte, value *big.Int) {
	ic.Put(key, bigint.ToBytes(value))
}
