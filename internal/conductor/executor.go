// Package conductor drives a rollup executor from firm (Celestia) and
// soft (sequencer) commitment streams, verifying firm blobs against
// CometBFT headers before forwarding them, grounded on
// original_source/crates/astria-conductor/src/{conductor,celestia}.rs
// and the executor RPC shape in the astriaorg-flame gRPC execution
// server reference file.
package conductor

import (
	"context"
	"time"
)

// RollupBlock is the executor's view of an executed rollup block
// (spec §4.5 "ExecuteBlock(...) -> Block{number, hash, parent_hash, timestamp}").
type RollupBlock struct {
	Number     uint32
	Hash       []byte
	ParentHash []byte
	Timestamp  time.Time
}

// Commitment is one side of the executor's (firm, soft) commitment
// pair (spec §4.5 "Shared state").
type Commitment struct {
	Number uint32
	Hash   []byte
}

// CommitmentState is the full pair the executor currently regards as
// canonical (GLOSSARY "Commitment").
type CommitmentState struct {
	Firm Commitment
	Soft Commitment
}

// GenesisInfo is returned once at startup and pins the rollup's
// sequencer-side identity.
type GenesisInfo struct {
	RollupID                    [32]byte
	SequencerGenesisBlockHeight int64
	CelestiaBlockVariance       uint64
}

// ExecutorClient is the conductor's dependency on the rollup execution
// engine, narrowed to the four RPCs spec §4.5/§7 name
// ("GetGenesisInfo, GetCommitmentState, ExecuteBlock, UpdateCommitmentState").
// A concrete implementation wraps a generated gRPC stub (per the flame
// execution-server reference); core conductor logic depends only on
// this interface, mirroring the SequencerClient/CelestiaClient
// boundary in internal/relayer.
type ExecutorClient interface {
	GetGenesisInfo(ctx context.Context) (GenesisInfo, error)
	GetCommitmentState(ctx context.Context) (CommitmentState, error)
	ExecuteBlock(ctx context.Context, prevHash []byte, txs [][]byte, timestamp time.Time) (RollupBlock, error)
	UpdateCommitmentState(ctx context.Context, state CommitmentState) (CommitmentState, error)
}
