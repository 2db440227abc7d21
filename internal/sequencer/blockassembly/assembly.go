// Package blockassembly derives the deterministic data_hash commitment
// from a block's per-rollup transaction and deposit contributions
// (spec §4.1 "Block assembly deterministic rules").
package blockassembly

import (
	"github.com/astriaorg/astria-sub012/internal/primitives"
	"github.com/astriaorg/astria-sub012/internal/sequencer/state"
)

// Result is the deterministic output of assembling one block: the
// per-rollup grouping (sorted by RollupID) and the resulting data_hash.
type Result struct {
	Rollups  []primitives.RollupBlock
	DataHash primitives.DataHash
}

// Assemble groups s's accumulated RollupTxs/RollupDeposits by RollupID
// (sorted byte-lexicographically, per spec §4.1) and derives data_hash.
// extensionCommitments carries any additional commitments a chain
// extension contributes to the data_hash tree (empty for the base
// protocol).
func Assemble(s *state.State, extensionCommitments [][]byte) Result {
	seen := make(map[primitives.RollupID]struct{})
	for id := range s.RollupTxs {
		seen[id] = struct{}{}
	}
	for id := range s.RollupDeposits {
		seen[id] = struct{}{}
	}

	ids := make([]primitives.RollupID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}

	blocks := make([]primitives.RollupBlock, 0, len(ids))
	for _, id := range primitives.SortRollupIDs(ids) {
		blocks = append(blocks, primitives.RollupBlock{
			RollupID: id,
			Txs:      s.RollupTxs[id],
			Deposits: s.RollupDeposits[id],
		})
	}

	return Result{
		Rollups:  blocks,
		DataHash: primitives.BuildDataHash(blocks, extensionCommitments),
	}
}
