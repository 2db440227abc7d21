package conductor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/astriaorg/astria-sub012/internal/conductor/verify"
)

// DriveMode selects which commitment streams the conductor consumes
// (spec §4.5 "Three drive modes").
type DriveMode int

const (
	FirmOnly DriveMode = iota
	SoftOnly
	SoftAndFirm
)

// gracefulDrainTimeout bounds how long Run waits for sub-tasks to
// finish after ctx is cancelled before giving up (spec §4.5
// "Cancellation ... waits up to 25s for graceful drain before aborting").
const gracefulDrainTimeout = 25 * time.Second

// CelestiaBlob is a single sequencer-header blob paired with the
// rollup-data blob sharing its block hash, already filtered to the
// configured rollup's namespace (spec §4.5 firm path steps 1-5).
// Proof is the rollup-data blob's namespace inclusion proof against
// Header.RollupDataRoot (spec §6), checked before the blob is trusted
// enough to execute.
type CelestiaBlob struct {
	Header     verify.HeaderBlob
	RollupData []byte
	Proof      verify.NamespaceInclusionProof
}

// CelestiaReader is the firm path's dependency on the DA layer,
// narrowed to polling a namespace for newly available blobs.
type CelestiaReader interface {
	LatestHeight(ctx context.Context) (uint64, error)
	BlobsAt(ctx context.Context, daHeight uint64) ([]CelestiaBlob, error)
}

// SoftBlock is one sequencer-produced block, already filtered to the
// configured rollup, ready for optimistic execution.
type SoftBlock struct {
	SequencerHeight int64
	PrevHash        []byte
	Txs             [][]byte
	Timestamp       time.Time
}

// SequencerStream is the soft path's dependency on the sequencer's
// filtered block stream (spec §4.5 "Subscribes to the sequencer's
// filtered-block stream for the configured rollup").
type SequencerStream interface {
	Next(ctx context.Context) (SoftBlock, error)
}

// Config collects a Conductor's dependencies and drive mode,
// constructed by the out-of-scope CLI/env layer.
type Config struct {
	Mode            DriveMode
	SequencerChainID string
}

// Conductor drives CommitmentState forward from the firm and/or soft
// streams, enforcing that firm only advances along the finalized
// chain and soft never crosses below firm (spec §4.5 "Shared state").
type Conductor struct {
	cfg      Config
	executor ExecutorClient
	verifier *verify.Verifier
	celestia CelestiaReader
	sequencer SequencerStream
	log      zerolog.Logger

	mu         sync.Mutex
	commitment CommitmentState
	nextDAHeight uint64
}

// New constructs a Conductor. celestia/sequencer may be nil when the
// drive mode does not require them (e.g. celestia is unused in
// SoftOnly mode).
func New(cfg Config, executor ExecutorClient, verifier *verify.Verifier, celestia CelestiaReader, sequencer SequencerStream, log zerolog.Logger) *Conductor {
	return &Conductor{
		cfg:       cfg,
		executor:  executor,
		verifier:  verifier,
		celestia:  celestia,
		sequencer: sequencer,
		log:       log,
	}
}

// Run fetches the executor's current commitment state, then drives the
// configured stream(s) until ctx is cancelled, at which point it waits
// up to gracefulDrainTimeout for the sub-tasks to finish before
// returning whatever error aborted them.
func (c *Conductor) Run(ctx context.Context) error {
	state, err := c.executor.GetCommitmentState(ctx)
	if err != nil {
		return fmt.Errorf("conductor: fetching initial commitment state: %w", err)
	}
	c.mu.Lock()
	c.commitment = state
	c.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)

	if c.cfg.Mode == FirmOnly || c.cfg.Mode == SoftAndFirm {
		g.Go(func() error { return c.firmLoop(gctx) })
	}
	if c.cfg.Mode == SoftOnly || c.cfg.Mode == SoftAndFirm {
		g.Go(func() error { return c.softLoop(gctx) })
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		select {
		case err := <-done:
			return err
		case <-time.After(gracefulDrainTimeout):
			return fmt.Errorf("conductor: sub-tasks did not drain within %s, aborting", gracefulDrainTimeout)
		}
	}
}

// CommitmentState returns a copy of the conductor's last-known
// commitment pair.
func (c *Conductor) CommitmentState() CommitmentState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commitment
}

// firmLoop polls Celestia for newly available DA heights, verifies
// each header blob, pairs it with its rollup-data blob, and forwards
// surviving pairs to the executor in strictly increasing sequencer
// height (spec §4.5 firm path, "Ordering").
func (c *Conductor) firmLoop(ctx context.Context) error {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			latest, err := c.celestia.LatestHeight(ctx)
			if err != nil {
				c.log.Warn().Err(err).Msg("failed fetching latest celestia height")
				continue
			}
			for h := c.nextDAHeight; h <= latest; h++ {
				if err := c.processDAHeight(ctx, h); err != nil {
					var mismatch *verify.ChainIDMismatchError
					if isChainIDMismatch(err, &mismatch) {
						return fmt.Errorf("conductor: fatal chain-id mismatch: %w", err)
					}
					c.log.Warn().Err(err).Uint64("da_height", h).Msg("failed processing celestia height; will retry next tick")
					break
				}
				c.nextDAHeight = h + 1
			}
		}
	}
}

func isChainIDMismatch(err error, target **verify.ChainIDMismatchError) bool {
	for err != nil {
		if m, ok := err.(*verify.ChainIDMismatchError); ok {
			*target = m
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func (c *Conductor) processDAHeight(ctx context.Context, daHeight uint64) error {
	blobs, err := c.celestia.BlobsAt(ctx, daHeight)
	if err != nil {
		return fmt.Errorf("fetching blobs at da height %d: %w", daHeight, err)
	}

	for _, blob := range blobs {
		timestamp, err := c.verifier.VerifyHeaderBlob(ctx, blob.Header)
		if err != nil {
			if _, ok := err.(*verify.ChainIDMismatchError); ok {
				return err
			}
			c.log.Info().Err(err).Int64("sequencer_height", blob.Header.SequencerHeight).Msg("dropping unverifiable header blob")
			continue
		}

		if err := verify.VerifyRollupInclusion(blob.Header, blob.RollupData, blob.Proof); err != nil {
			c.log.Warn().Err(err).Int64("sequencer_height", blob.Header.SequencerHeight).Msg("dropping rollup-data blob that failed namespace inclusion check")
			continue
		}

		if err := c.applyFirm(ctx, blob, timestamp); err != nil {
			return fmt.Errorf("applying firm commitment at sequencer height %d: %w", blob.Header.SequencerHeight, err)
		}
	}
	return nil
}

// applyFirm enforces that the firm pointer only advances (spec
// "Conductor monotonicity"), executes the verified rollup-data blob
// against the executor's current firm head, and forwards the
// executor's own resulting block as the new firm commitment. A
// DA-sourced block only becomes firm once the rollup has actually run
// it, per firm_only.rs's `simple` scenario (mount_executed_block before
// mount_update_commitment_state).
func (c *Conductor) applyFirm(ctx context.Context, blob CelestiaBlob, timestamp time.Time) error {
	c.mu.Lock()
	current := c.commitment
	if blob.Header.SequencerHeight <= int64(current.Firm.Number) {
		c.mu.Unlock()
		return nil // already applied or stale; idempotent no-op
	}
	prevHash := current.Firm.Hash
	c.mu.Unlock()

	executed, err := c.executor.ExecuteBlock(ctx, prevHash, [][]byte{blob.RollupData}, timestamp)
	if err != nil {
		return fmt.Errorf("executing firm block: %w", err)
	}

	firm := Commitment{Number: executed.Number, Hash: executed.Hash}
	next := CommitmentState{Firm: firm, Soft: current.Soft}
	if next.Soft.Number < firm.Number {
		next.Soft = firm
	}
	updated, err := c.executor.UpdateCommitmentState(ctx, next)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.commitment = updated
	c.mu.Unlock()
	return nil
}

// softLoop pulls optimistic blocks from the sequencer stream and
// executes each against the current soft head, skipping heights
// already executed (spec §4.5 "idempotent against executor state").
func (c *Conductor) softLoop(ctx context.Context) error {
	for {
		block, err := c.sequencer.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("conductor: reading soft block: %w", err)
		}

		c.mu.Lock()
		alreadyExecuted := int64(c.commitment.Soft.Number) >= block.SequencerHeight
		prevHash := c.commitment.Soft.Hash
		c.mu.Unlock()
		if alreadyExecuted {
			continue
		}

		executed, err := c.executor.ExecuteBlock(ctx, prevHash, block.Txs, block.Timestamp)
		if err != nil {
			c.log.Warn().Err(err).Int64("sequencer_height", block.SequencerHeight).Msg("failed executing soft block; will retry next block")
			continue
		}

		c.mu.Lock()
		c.commitment.Soft = Commitment{Number: executed.Number, Hash: executed.Hash}
		c.mu.Unlock()
	}
}
