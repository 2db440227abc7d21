package app

import (
	"context"

	abcitypes "github.com/cometbft/cometbft/abci/types"
)

// Info reports the app's last-committed height and hash so CometBFT
// can resume consensus at the right point after a restart.
func (a *App) Info(_ context.Context, _ *abcitypes.InfoRequest) (*abcitypes.InfoResponse, error) {
	return &abcitypes.InfoResponse{
		Version:         "",
		AppVersion:      1,
		LastBlockHeight: a.store.LatestVersion(),
		LastBlockAppHash: a.store.AppHash(),
	}, nil
}

// Query is unimplemented: this chain exposes no ABCI query routes
// (state is read by RPC-adjacent tooling directly against storage
// snapshots, not through the consensus query path).
func (a *App) Query(_ context.Context, _ *abcitypes.QueryRequest) (*abcitypes.QueryResponse, error) {
	return &abcitypes.QueryResponse{Code: CodeInternal, Log: "query not supported"}, nil
}

// ExtendVote/VerifyVoteExtension: this chain does not use ABCI++ vote
// extensions.
func (a *App) ExtendVote(_ context.Context, _ *abcitypes.ExtendVoteRequest) (*abcitypes.ExtendVoteResponse, error) {
	return &abcitypes.ExtendVoteResponse{}, nil
}

func (a *App) VerifyVoteExtension(_ context.Context, _ *abcitypes.VerifyVoteExtensionRequest) (*abcitypes.VerifyVoteExtensionResponse, error) {
	return &abcitypes.VerifyVoteExtensionResponse{Status: abcitypes.VERIFY_VOTE_EXTENSION_STATUS_ACCEPT}, nil
}

// State sync is out of scope: the store's IAVL tree is rebuilt from
// genesis plus the block-production path, not from snapshots.
func (a *App) ListSnapshots(_ context.Context, _ *abcitypes.ListSnapshotsRequest) (*abcitypes.ListSnapshotsResponse, error) {
	return &abcitypes.ListSnapshotsResponse{}, nil
}

func (a *App) OfferSnapshot(_ context.Context, _ *abcitypes.OfferSnapshotRequest) (*abcitypes.OfferSnapshotResponse, error) {
	return &abcitypes.OfferSnapshotResponse{Result: abcitypes.OFFER_SNAPSHOT_RESULT_ABORT}, nil
}

func (a *App) LoadSnapshotChunk(_ context.Context, _ *abcitypes.LoadSnapshotChunkRequest) (*abcitypes.LoadSnapshotChunkResponse, error) {
	return &abcitypes.LoadSnapshotChunkResponse{}, nil
}

func (a *App) ApplySnapshotChunk(_ context.Context, _ *abcitypes.ApplySnapshotChunkRequest) (*abcitypes.ApplySnapshotChunkResponse, error) {
	return &abcitypes.ApplySnapshotChunkResponse{Result: abcitypes.APPLY_SNAPSHOT_CHUNK_RESULT_ABORT}, nil
}
