package host

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestEscrow(t *testing.T) {
	t.Run("nothing attached", func(t *testing.T) {
		e := NewEscrow(nil)
		require.True(t, e.Attached().IsZero())
		require.NoError(t, e.Consume(new(uint256.Int)))
		require.ErrorIs(t, e.Consume(uint256.NewInt(1)), ErrInsufficientPayment)
	})

	e := NewEscrow(uint256.NewInt(10))
	require.NoError(t, e.Consume(uint256.NewInt(3)))
	require.NoError(t, e.Consume(uint256.NewInt(7)))
	require.ErrorIs(t, e.Consume(uint256.NewInt(1)), ErrInsufficientPayment)

	require.Equal(t, uint64(10), e.Attached().Uint64())
	require.Equal(t, uint64(10), e.Consumed().Uint64())
	require.True(t, e.Available().IsZero())
}

func TestStorageMeter(t *testing.T) {
	m := newStorageMeter(100, uint256.NewInt(2), RecordOverhead)
	require.False(t, m.changed())
	require.EqualValues(t, 3+5+RecordOverhead, m.RecordSize([]byte("key"), []byte("value")))

	m.put([]byte("key"), nil, []byte("value"))
	require.EqualValues(t, 100+48, m.Usage())

	m.put([]byte("key"), []byte("value"), []byte("v"))
	require.EqualValues(t, 100+44, m.Usage())

	m.remove([]byte("key"), []byte("v"))
	require.EqualValues(t, 100, m.Usage())
	require.False(t, m.changed())

	m.remove([]byte("key"), nil)
	require.EqualValues(t, 100, m.Usage())

	require.EqualValues(t, 100, m.Initial())
	require.Equal(t, uint64(20), m.Cost(10).Uint64())
	require.Equal(t, uint64(2), m.Price().Uint64())
}
