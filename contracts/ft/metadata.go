package ft

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/ft-ledger/contracts/ft/ftconst"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Metadata describes the token. It is set on initialization and never
// changes.
type Metadata struct {
	Spec   string
	Name   string
	Symbol string
	// Optional data URL of the token icon.
	Icon string
	// Optional link to the off-chain description and its SHA256 hash. Both
	// are set or both are empty.
	Reference     string
	ReferenceHash []byte
	Decimals      uint8
}

const metadataFields = 7

// Validate checks that metadata can be used by the token.
func (m Metadata) Validate() error {
	if m.Spec != ftconst.MetadataSpec {
		return fmt.Errorf("%w: unsupported spec %q", ErrInvalidMetadata, m.Spec)
	}
	if m.Name == "" || m.Symbol == "" {
		return fmt.Errorf("%w: empty name or symbol", ErrInvalidMetadata)
	}
	if (m.Reference == "") != (len(m.ReferenceHash) == 0) {
		return fmt.Errorf("%w: reference and reference hash must be provided together", ErrInvalidMetadata)
	}
	if len(m.ReferenceHash) != 0 && len(m.ReferenceHash) != ftconst.ReferenceHashLength {
		return fmt.Errorf("%w: reference hash length %d, expected %d",
			ErrInvalidMetadata, len(m.ReferenceHash), ftconst.ReferenceHashLength)
	}
	return nil
}

// Equal checks whether two metadata values are the same.
func (m Metadata) Equal(other Metadata) bool {
	return m.Spec == other.Spec &&
		m.Name == other.Name &&
		m.Symbol == other.Symbol &&
		m.Icon == other.Icon &&
		m.Reference == other.Reference &&
		bytes.Equal(m.ReferenceHash, other.ReferenceHash) &&
		m.Decimals == other.Decimals
}

// ToStackItem implements stackitem.Convertible. Empty optional fields are
// represented by Null.
func (m *Metadata) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray([]byte(m.Spec)),
		stackitem.NewByteArray([]byte(m.Name)),
		stackitem.NewByteArray([]byte(m.Symbol)),
		optionalItem([]byte(m.Icon)),
		optionalItem([]byte(m.Reference)),
		optionalItem(m.ReferenceHash),
		stackitem.NewBigInteger(big.NewInt(int64(m.Decimals))),
	}), nil
}

// FromStackItem implements stackitem.Convertible.
func (m *Metadata) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != metadataFields {
		return fmt.Errorf("wrong number of fields: %d", len(arr))
	}

	fields := make([][]byte, metadataFields-1)
	for i := range fields {
		if _, ok := arr[i].(stackitem.Null); ok {
			continue
		}

		b, err := arr[i].TryBytes()
		if err != nil {
			return fmt.Errorf("field #%d: %w", i, err)
		}
		fields[i] = b
	}

	d, err := arr[metadataFields-1].TryInteger()
	if err != nil {
		return fmt.Errorf("decimals: %w", err)
	}
	if !d.IsUint64() || d.Uint64() > 255 {
		return fmt.Errorf("decimals out of range: %s", d)
	}

	m.Spec = string(fields[0])
	m.Name = string(fields[1])
	m.Symbol = string(fields[2])
	m.Icon = string(fields[3])
	m.Reference = string(fields[4])
	m.ReferenceHash = fields[5]
	m.Decimals = uint8(d.Uint64())

	return nil
}

func optionalItem(b []byte) stackitem.Item {
	if len(b) == 0 {
		return stackitem.Null{}
	}
	return stackitem.NewByteArray(b)
}
