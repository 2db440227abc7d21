package relayer

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SequencerBlock is the minimal view of a committed sequencer block
// the relayer needs: its height and the already-assembled per-rollup
// blob payload produced by internal/sequencer/blockassembly.
type SequencerBlock struct {
	Height         int64
	HeaderBlob     []byte // the block header + data_hash proof blob
	RollupBlobs    [][]byte
}

// SequencerClient is the read side's dependency on the local
// sequencer's CometBFT RPC, narrowed to the one call the block-stream
// loop needs (spec §2 relayer "polls the local sequencer").
type SequencerClient interface {
	LatestHeight(ctx context.Context) (int64, error)
	BlockAt(ctx context.Context, height int64) (SequencerBlock, error)
}

// BlockStream fetches sequencer blocks height-by-height starting from
// next, never running ahead of the most recently observed chain
// height, exactly like the teacher's next_height_to_fetch/
// last_observed pair in read.rs.
type BlockStream struct {
	client    SequencerClient
	state     *State
	log       zerolog.Logger
	blockTime time.Duration

	next         int64
	lastObserved int64
	paused       bool
}

// NewBlockStream constructs a stream that begins fetching at
// startHeight (normally one past the last height recorded by the
// journal).
func NewBlockStream(client SequencerClient, state *State, log zerolog.Logger, blockTime time.Duration, startHeight int64) *BlockStream {
	return &BlockStream{
		client:    client,
		state:     state,
		log:       log,
		blockTime: blockTime,
		next:      startHeight,
	}
}

// Pause/Resume let the submitter apply backpressure (spec §2 "the
// blockstream pauses while the submitter's queue is full").
func (b *BlockStream) Pause()  { b.paused = true }
func (b *BlockStream) Resume() { b.paused = false }

// nextHeightToFetch mirrors read.rs's Heights::next_height_to_fetch:
// only returns a height once it has been observed as committed and is
// not beyond lastObserved.
func (b *BlockStream) nextHeightToFetch() (int64, bool) {
	if b.paused || b.lastObserved == 0 || b.next > b.lastObserved {
		return 0, false
	}
	return b.next, true
}

// Run polls for the chain's latest height on every tick and fetches
// any newly available blocks in order, sending each to out. It blocks
// until ctx is cancelled.
func (b *BlockStream) Run(ctx context.Context, out chan<- SequencerBlock) error {
	ticker := time.NewTicker(b.blockTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			latest, err := b.client.LatestHeight(ctx)
			if err != nil {
				b.state.SetSequencerConnected(false)
				b.log.Warn().Err(err).Msg("failed fetching latest sequencer height")
				continue
			}
			b.state.SetSequencerConnected(true)
			b.lastObserved = latest
			b.state.SetLatestObservedSequencerHeight(latest)

			for {
				height, ok := b.nextHeightToFetch()
				if !ok {
					break
				}
				block, err := b.client.BlockAt(ctx, height)
				if err != nil {
					b.log.Warn().Err(err).Int64("height", height).Msg("failed fetching sequencer block; will retry next tick")
					break
				}
				select {
				case out <- block:
					b.next = height + 1
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}
