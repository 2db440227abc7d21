package relayer

import (
	"context"
	"fmt"

	rpchttp "github.com/cometbft/cometbft/rpc/client/http"
)

// CometBFTSequencerClient adapts a CometBFT RPC HTTP client to
// SequencerClient, the concrete counterpart to the interface boundary
// read.rs drives against (spec §2 "polls the local sequencer").
type CometBFTSequencerClient struct {
	rpc *rpchttp.HTTP
}

// DialCometBFT opens an RPC connection to a local sequencer node.
func DialCometBFT(remote string) (*CometBFTSequencerClient, error) {
	client, err := rpchttp.New(remote, "/websocket")
	if err != nil {
		return nil, fmt.Errorf("relayer: dialing cometbft rpc at %s: %w", remote, err)
	}
	return &CometBFTSequencerClient{rpc: client}, nil
}

// LatestHeight reports the sequencer's latest committed height via
// the `status` RPC (spec §4.4 "Polls CometBFT abci_info").
func (c *CometBFTSequencerClient) LatestHeight(ctx context.Context) (int64, error) {
	status, err := c.rpc.Status(ctx)
	if err != nil {
		return 0, fmt.Errorf("relayer: fetching status: %w", err)
	}
	return status.SyncInfo.LatestBlockHeight, nil
}

// BlockAt fetches the committed block at height and adapts it into the
// minimal SequencerBlock shape the relayer submits, keying each
// rollup's transaction bytes by order only; per-rollup splitting lives
// in internal/sequencer/blockassembly and is applied upstream of this
// adapter in a full deployment.
func (c *CometBFTSequencerClient) BlockAt(ctx context.Context, height int64) (SequencerBlock, error) {
	h := height
	result, err := c.rpc.Block(ctx, &h)
	if err != nil {
		return SequencerBlock{}, fmt.Errorf("relayer: fetching block %d: %w", height, err)
	}

	headerBytes, err := result.Block.Header.ToProto().Marshal()
	if err != nil {
		return SequencerBlock{}, fmt.Errorf("relayer: marshaling header at height %d: %w", height, err)
	}

	rollupBlobs := make([][]byte, 0, len(result.Block.Data.Txs))
	for _, tx := range result.Block.Data.Txs {
		rollupBlobs = append(rollupBlobs, tx)
	}

	return SequencerBlock{
		Height:      height,
		HeaderBlob:  headerBytes,
		RollupBlobs: rollupBlobs,
	}, nil
}
