package relayer

import (
	"context"
	"fmt"
	"time"

	"github.com/celestiaorg/go-square/v3/share"
	"github.com/rs/zerolog"
)

// CelestiaClient is the write side's dependency on the DA layer,
// narrowed to the one RPC the submitter needs (spec §2 relayer
// "submits blobs to Celestia").
type CelestiaClient interface {
	SubmitBlobs(ctx context.Context, blobs []*share.Blob) (celestiaHeight uint64, err error)
}

// Submitter converts incoming sequencer blocks to blobs and submits
// each block's blobs in its own Celestia submission with exponential
// backoff, exactly once per height (spec §2 "exactly-once semantics"),
// recording progress in journal. Blocks are not batched together;
// maxBlobsPerTx is stored but not read.
// Mirrors write.rs's BlobSubmitter/submit_with_retry.
type Submitter struct {
	client  CelestiaClient
	journal *Journal
	state   *State
	log     zerolog.Logger

	initialBackoff time.Duration
	maxBackoff     time.Duration
	maxBlobsPerTx  int
}

// NewSubmitter constructs a Submitter posting through client, recording
// exactly-once progress in journal.
func NewSubmitter(client CelestiaClient, journal *Journal, state *State, log zerolog.Logger) *Submitter {
	return &Submitter{
		client:         client,
		journal:        journal,
		state:          state,
		log:            log,
		initialBackoff: 100 * time.Millisecond,
		maxBackoff:     12 * time.Second, // Celestia's block time (write.rs comment)
		maxBlobsPerTx:  128,
	}
}

// Run drains blocks from in and submits them one block at a time. It
// returns when ctx is cancelled, when in is closed, or when a block's
// submission fails; submitWithRetry retries without limit, so a
// submission fails only on ctx cancellation or a journal/blob error.
func (s *Submitter) Run(ctx context.Context, in <-chan SequencerBlock, rollupIDs [][32]byte) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case block, ok := <-in:
			if !ok {
				return nil
			}
			if err := s.submitOne(ctx, block, rollupIDs); err != nil {
				return fmt.Errorf("relayer: submitting height %d: %w", block.Height, err)
			}
		}
	}
}

// submitOne runs the pre-submit/post-submit journal bracket around a
// single height's blob submission, so a crash mid-submission is
// recoverable without double-posting (spec §2 journal semantics).
func (s *Submitter) submitOne(ctx context.Context, block SequencerBlock, rollupIDs [][32]byte) error {
	if done, err := s.journal.IsSubmitted(block.Height); err != nil {
		return err
	} else if done {
		return nil
	}

	blobs, err := ToBlobs(block, rollupIDs)
	if err != nil {
		return err
	}

	if err := s.journal.MarkPreSubmit(block.Height); err != nil {
		return err
	}

	celestiaHeight, err := s.submitWithRetry(ctx, blobs)
	if err != nil {
		return err
	}

	s.state.SetCelestiaConnected(true)
	s.state.SetLatestSubmittedCelestiaHeight(celestiaHeight)
	s.log.Info().Int64("sequencer_height", block.Height).Uint64("celestia_height", celestiaHeight).Msg("submitted block to celestia")

	return s.journal.MarkPostSubmit(block.Height)
}

// submitWithRetry retries indefinitely with exponential backoff capped
// at maxBackoff, matching write.rs's `tryhard::RetryFutureConfig::new(u32::MAX)`.
func (s *Submitter) submitWithRetry(ctx context.Context, blobs []*share.Blob) (uint64, error) {
	backoff := s.initialBackoff
	for attempt := 1; ; attempt++ {
		height, err := s.client.SubmitBlobs(ctx, blobs)
		if err == nil {
			return height, nil
		}

		s.state.SetCelestiaConnected(false)
		s.log.Warn().Err(err).Int("attempt", attempt).Dur("wait", backoff).Msg("failed submitting blobs to celestia; retrying after backoff")

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > s.maxBackoff {
			backoff = s.maxBackoff
		}
	}
}
