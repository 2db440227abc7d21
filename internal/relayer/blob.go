package relayer

import (
	"fmt"

	"github.com/celestiaorg/go-square/v3/share"
)

// sequencerNamespaceVersion and the reserved header namespace ID below
// mirror Celestia's convention of a fixed, protocol-reserved namespace
// for sequencer header blobs; rollup blobs use a namespace derived from
// their RollupID (one header blob plus one blob per rollup per
// sequencer block, per spec §6).
const sequencerNamespaceVersion = share.NamespaceVersionZero

var headerNamespaceID = [share.NamespaceIDSize]byte{0: 0x01}

// rollupNamespace derives the namespace a rollup's blobs are posted
// under from its 32-byte RollupID, truncated to the namespace ID size.
func rollupNamespace(rollupID [32]byte) (share.Namespace, error) {
	return share.NewNamespace(sequencerNamespaceVersion, rollupID[:share.NamespaceIDSize])
}

// headerNamespace is the single fixed namespace every sequencer header
// blob is posted under, letting the conductor discover header blobs
// without knowing every participating rollup ID ahead of time.
func headerNamespace() (share.Namespace, error) {
	return share.NewNamespace(sequencerNamespaceVersion, headerNamespaceID[:])
}

// ToBlobs converts a committed sequencer block into the Celestia blobs
// it contributes: one header blob plus one blob per rollup, matching
// `SequencerBlock::try_to_blobs` in the teacher source (write.rs
// `convert`).
func ToBlobs(block SequencerBlock, rollupIDs [][32]byte) ([]*share.Blob, error) {
	headerNS, err := headerNamespace()
	if err != nil {
		return nil, fmt.Errorf("relayer: header namespace: %w", err)
	}
	headerBlob, err := share.NewBlob(headerNS, block.HeaderBlob, share.ShareVersionZero, nil)
	if err != nil {
		return nil, fmt.Errorf("relayer: build header blob: %w", err)
	}

	blobs := make([]*share.Blob, 0, 1+len(block.RollupBlobs))
	blobs = append(blobs, headerBlob)

	for i, payload := range block.RollupBlobs {
		if i >= len(rollupIDs) {
			return nil, fmt.Errorf("relayer: rollup blob %d has no matching rollup id", i)
		}
		ns, err := rollupNamespace(rollupIDs[i])
		if err != nil {
			return nil, fmt.Errorf("relayer: rollup namespace %d: %w", i, err)
		}
		blob, err := share.NewBlob(ns, payload, share.ShareVersionZero, nil)
		if err != nil {
			return nil, fmt.Errorf("relayer: build rollup blob %d: %w", i, err)
		}
		blobs = append(blobs, blob)
	}
	return blobs, nil
}
