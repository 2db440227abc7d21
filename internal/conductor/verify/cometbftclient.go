package verify

import (
	"context"
	"fmt"

	rpchttp "github.com/cometbft/cometbft/rpc/client/http"
	cmttypes "github.com/cometbft/cometbft/types"
)

// CometBFTClient adapts a CometBFT RPC HTTP client to SequencerClient,
// fetching the exact commit/validator-set pair VerificationMeta::fetch
// reads in the teacher source.
type CometBFTClient struct {
	rpc *rpchttp.HTTP
}

// DialCometBFT opens an RPC connection to a sequencer node for
// verification purposes.
func DialCometBFT(remote string) (*CometBFTClient, error) {
	client, err := rpchttp.New(remote, "/websocket")
	if err != nil {
		return nil, fmt.Errorf("conductor: verify: dialing cometbft rpc at %s: %w", remote, err)
	}
	return &CometBFTClient{rpc: client}, nil
}

func (c *CometBFTClient) Commit(ctx context.Context, height int64) (*cmttypes.SignedHeader, error) {
	h := height
	result, err := c.rpc.Commit(ctx, &h)
	if err != nil {
		return nil, fmt.Errorf("conductor: verify: fetching commit at height %d: %w", height, err)
	}
	return &result.SignedHeader, nil
}

func (c *CometBFTClient) Validators(ctx context.Context, height int64) (*cmttypes.ValidatorSet, error) {
	h := height
	page, perPage := 1, 100
	var validators []*cmttypes.Validator
	for {
		result, err := c.rpc.Validators(ctx, &h, &page, &perPage)
		if err != nil {
			return nil, fmt.Errorf("conductor: verify: fetching validators at height %d: %w", height, err)
		}
		validators = append(validators, result.Validators...)
		if len(validators) >= result.Total {
			break
		}
		page++
	}
	return cmttypes.NewValidatorSet(validators), nil
}
