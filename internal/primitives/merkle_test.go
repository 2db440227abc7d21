package primitives

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildDataHashDeterministic(t *testing.T) {
	a := RollupIDFromName("rollup-a")
	b := RollupIDFromName("rollup-b")

	blocks := []RollupBlock{
		{RollupID: a, Txs: [][]byte{[]byte("tx1"), []byte("tx2")}},
		{RollupID: b, Txs: [][]byte{[]byte("tx3")}},
	}

	first := BuildDataHash(blocks, nil)

	// Shuffle input order; the sorted-by-RollupID rule means the
	// resulting hash must be identical regardless of input order.
	shuffled := []RollupBlock{blocks[1], blocks[0]}
	second := BuildDataHash(shuffled, nil)

	require.Equal(t, first.Hash, second.Hash)
	require.Equal(t, first.RollupDataRoot, second.RollupDataRoot)
	require.Equal(t, first.RollupIDsRoot, second.RollupIDsRoot)
}

func TestBuildDataHashChangesWithContent(t *testing.T) {
	a := RollupIDFromName("rollup-a")
	blocks := []RollupBlock{{RollupID: a, Txs: [][]byte{[]byte("tx1")}}}
	h1 := BuildDataHash(blocks, nil)

	blocks[0].Txs = [][]byte{[]byte("tx1-modified")}
	h2 := BuildDataHash(blocks, nil)

	require.NotEqual(t, h1.Hash, h2.Hash)
}

func TestSortRollupIDs(t *testing.T) {
	ids := make([]RollupID, 10)
	r := rand.New(rand.NewSource(1))
	for i := range ids {
		for j := range ids[i] {
			ids[i][j] = byte(r.Intn(256))
		}
	}
	sorted := SortRollupIDs(ids)
	for i := 1; i < len(sorted); i++ {
		require.False(t, sorted[i].Less(sorted[i-1]))
	}
}
