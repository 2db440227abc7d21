package verify

import (
	"testing"

	"github.com/celestiaorg/nmt"
	"github.com/stretchr/testify/require"
)

// TestVerifyRollupInclusionRejectsNamespaceMismatch checks the cheap
// short-circuit in VerifyRollupInclusion: a proof generated for a
// different namespace than the header claims is rejected before ever
// touching the NMT proof itself, so a blob filed under the wrong
// namespace can't be waved through by a stale or mismatched proof.
func TestVerifyRollupInclusionRejectsNamespaceMismatch(t *testing.T) {
	header := HeaderBlob{
		SequencerHeight: 5,
		RollupNamespace: []byte{0x01, 0x02, 0x03},
		RollupDataRoot:  []byte("some-root"),
	}
	proof := NamespaceInclusionProof{
		Namespace: []byte{0x09, 0x09, 0x09},
		Proof:     nmt.Proof{},
	}

	err := VerifyRollupInclusion(header, []byte("rollup-data"), proof)
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not match rollup namespace")
}
