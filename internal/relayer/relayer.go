package relayer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Config collects everything a Relayer needs to run, populated by the
// out-of-scope CLI/env layer (spec §1 non-goal; SPEC_FULL.md §2
// "Configuration").
type Config struct {
	JournalDir string
	BlockTime  time.Duration
	RollupIDs  [][32]byte
	QueueSize  int // bounded queued blob count, default 128 (spec §4.4)
}

// DefaultConfig returns the spec's default backpressure limits.
func DefaultConfig() Config {
	return Config{
		BlockTime: 2 * time.Second,
		QueueSize: 128,
	}
}

// Relayer wires a BlockStream (read side) to a Submitter (write side)
// through a bounded channel, recovering its start height from the
// journal on construction, matching the teacher's task-per-concern
// wiring in write.rs/read.rs's shared `mod.rs` driver.
type Relayer struct {
	stream    *BlockStream
	submitter *Submitter
	journal   *Journal
	state     *State
	log       zerolog.Logger
	cfg       Config
}

// New opens the journal at cfg.JournalDir, computes the recovery start
// height per the exactly-once invariant (spec §4.4), and constructs
// the BlockStream/Submitter pair ready to Run.
func New(cfg Config, sequencerClient SequencerClient, celestiaClient CelestiaClient, log zerolog.Logger) (*Relayer, error) {
	journal, err := OpenJournal(cfg.JournalDir)
	if err != nil {
		return nil, fmt.Errorf("relayer: opening journal: %w", err)
	}

	startHeight, err := journal.NextHeight()
	if err != nil {
		return nil, fmt.Errorf("relayer: corrupted journal, refusing to start: %w", err)
	}

	state := NewState()
	stream := NewBlockStream(sequencerClient, state, log, cfg.BlockTime, startHeight)
	submitter := NewSubmitter(celestiaClient, journal, state, log)

	return &Relayer{
		stream:    stream,
		submitter: submitter,
		journal:   journal,
		state:     state,
		log:       log,
		cfg:       cfg,
	}, nil
}

// State exposes the shared, race-free status snapshot (spec §2's
// health/observability surface).
func (r *Relayer) State() *State { return r.state }

// Run drives the block stream and submitter concurrently until ctx is
// cancelled or either side fails. When the bounded queue between them
// fills, the stream is paused (spec §4.4's backpressure contract) and
// resumed once the submitter drains it below capacity.
func (r *Relayer) Run(ctx context.Context) error {
	queueSize := r.cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 128
	}
	blocks := make(chan SequencerBlock, queueSize)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(blocks)
		return r.stream.Run(ctx, blocks)
	})

	g.Go(func() error {
		return r.runBackpressure(ctx, blocks, queueSize)
	})

	g.Go(func() error {
		return r.submitter.Run(ctx, blocks, r.cfg.RollupIDs)
	})

	return g.Wait()
}

// runBackpressure watches the shared channel's fill level and pauses
// the stream once it's full, resuming once the submitter has drained
// it, implementing the "single forwarding future holds the next block
// until capacity is free" contract from spec §4.4 without a second
// intermediary channel.
func (r *Relayer) runBackpressure(ctx context.Context, blocks chan SequencerBlock, capacity int) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if len(blocks) >= capacity {
				r.stream.Pause()
			} else {
				r.stream.Resume()
			}
		}
	}
}
