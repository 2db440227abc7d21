package mempool

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/astriaorg/astria-sub012/internal/address"
)

func testAddr(t *testing.T, b byte) address.Address {
	t.Helper()
	var raw [address.Length]byte
	raw[0] = b
	addr, err := address.New(raw, "astria")
	require.NoError(t, err)
	return addr
}

func TestNonceGapParksUntilPromoted(t *testing.T) {
	m := New(10)
	alice := testAddr(t, 1)

	gapped := Entry{Hash: [32]byte{2}, Nonce: 2, FeePerByte: math.LegacyNewDec(1)}
	ok := m.Insert(alice, 0, gapped)
	require.True(t, ok)
	require.Equal(t, 0, m.PendingCount())

	contiguous := Entry{Hash: [32]byte{1}, Nonce: 1, FeePerByte: math.LegacyNewDec(1)}
	ok = m.Insert(alice, 0, contiguous)
	require.True(t, ok)

	first := Entry{Hash: [32]byte{0}, Nonce: 0, FeePerByte: math.LegacyNewDec(1)}
	ok = m.Insert(alice, 0, first)
	require.True(t, ok)

	require.Equal(t, 3, m.PendingCount())
}

func TestStaleNonceRejected(t *testing.T) {
	m := New(10)
	alice := testAddr(t, 1)
	ok := m.Insert(alice, 5, Entry{Hash: [32]byte{1}, Nonce: 3, FeePerByte: math.LegacyNewDec(1)})
	require.False(t, ok)
}

func TestBuilderQueueOrdersByFeePerByte(t *testing.T) {
	m := New(10)
	alice := testAddr(t, 1)
	bob := testAddr(t, 2)

	m.Insert(alice, 0, Entry{Hash: [32]byte{1}, Nonce: 0, FeePerByte: math.LegacyNewDec(5)})
	m.Insert(bob, 0, Entry{Hash: [32]byte{2}, Nonce: 0, FeePerByte: math.LegacyNewDec(10)})

	queue := m.BuilderQueue()
	require.Len(t, queue, 2)
	require.Equal(t, [32]byte{2}, queue[0].Hash)
}

func TestRemovalCacheFIFOEviction(t *testing.T) {
	c := NewRemovalCache(2)
	c.Add([32]byte{1})
	c.Add([32]byte{2})
	require.True(t, c.Contains([32]byte{1}))

	c.Add([32]byte{3})
	require.False(t, c.Contains([32]byte{1}))
	require.True(t, c.Contains([32]byte{2}))
	require.True(t, c.Contains([32]byte{3}))
}

func TestRemovalCacheRejectsReinsertion(t *testing.T) {
	m := New(10)
	alice := testAddr(t, 1)
	hash := [32]byte{9}
	m.Insert(alice, 0, Entry{Hash: hash, Nonce: 0, FeePerByte: math.LegacyNewDec(1)})
	m.Remove(alice, hash)

	ok := m.Insert(alice, 0, Entry{Hash: hash, Nonce: 0, FeePerByte: math.LegacyNewDec(1)})
	require.False(t, ok)
}
