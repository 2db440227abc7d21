package auctioneer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// gracefulDrainTimeout mirrors the conductor's shutdown grace window
// (spec §5 "a fixed grace window (25s) elapses before outstanding
// tasks are forcibly aborted").
const gracefulDrainTimeout = 25 * time.Second

// OptimisticBlock announces a new sequencer block the rollup should
// speculatively execute (spec §4.6 event 2).
type OptimisticBlock struct {
	BlockHash       [32]byte
	SequencerHeight int64
}

// BlockCommitment announces that OptimisticBlock's sequencer height
// has been committed, arming the auction's winner-cutoff timer (spec
// §4.6 event 3).
type BlockCommitment struct {
	BlockHash [32]byte
}

// ExecutedBlock announces the rollup finished speculatively executing
// the optimistic block, opening the bid-acceptance window (spec §4.6
// event 4).
type ExecutedBlock struct {
	BlockHash [32]byte
}

// Bundle is one candidate transaction bundle submitted by a rollup
// participant for the currently running auction (spec §4.6 event 6).
type Bundle struct {
	BlockHash [32]byte
	Bid       Bid
}

// OptimisticBlockStream, BlockCommitmentStream, ExecutedBlockStream,
// and BundleStream are the auctioneer's dependencies on the
// sequencer's and rollup's gRPC channels, narrowed to one blocking
// Next call each (spec §4.6's four input streams).
type (
	OptimisticBlockStream interface {
		Next(ctx context.Context) (OptimisticBlock, error)
	}
	BlockCommitmentStream interface {
		Next(ctx context.Context) (BlockCommitment, error)
	}
	ExecutedBlockStream interface {
		Next(ctx context.Context) (ExecutedBlock, error)
	}
	BundleStream interface {
		Next(ctx context.Context) (Bundle, error)
	}
)

// Submitter posts the winning bid as a signed sequencer transaction
// using the given nonce (spec §4.6 "Winner selection").
type Submitter func(ctx context.Context, bid Bid, nonce uint32) error

// Config collects an Auctioneer's tunables, constructed by the
// out-of-scope CLI/env layer.
type Config struct {
	RollupID      [32]byte
	LatencyMargin time.Duration
}

type auctionEvent struct {
	id      ID
	summary Summary
}

// Auctioneer is the per-rollup bid-auction driver: it opens a new
// Auction for every optimistic block, cancels any still-running
// previous auction, and runs a priority-biased event loop over its
// four input streams plus the running/cancelled auctions' terminal
// events (spec §4.6, grounded on Inner::run/handle_event).
type Auctioneer struct {
	cfg       Config
	submit    Submitter
	log       zerolog.Logger
	optimistic OptimisticBlockStream
	commits    BlockCommitmentStream
	executed   ExecutedBlockStream
	bundles    BundleStream

	mu                  sync.Mutex
	lastSuccessfulNonce uint32

	runningAuction *Auction
	events         chan auctionEvent
}

// New constructs an Auctioneer. The streams are dialed by the
// out-of-scope CLI/env layer and handed in here, mirroring the
// SequencerClient/CelestiaClient dependency-injection boundary used
// elsewhere in the module.
func New(cfg Config, optimistic OptimisticBlockStream, commits BlockCommitmentStream, executed ExecutedBlockStream, bundles BundleStream, submit Submitter, log zerolog.Logger) *Auctioneer {
	return &Auctioneer{
		cfg:        cfg,
		submit:     submit,
		log:        log,
		optimistic: optimistic,
		commits:    commits,
		executed:   executed,
		bundles:    bundles,
		events:     make(chan auctionEvent, 8),
	}
}

// Run drives the event loop until ctx is cancelled, then cancels the
// running auction (if any) and waits up to gracefulDrainTimeout for its
// terminal event before giving up (spec §5 "Cancellation").
func (a *Auctioneer) Run(ctx context.Context) error {
	optimisticCh := pump(ctx, a.optimistic.Next)
	commitCh := pump(ctx, a.commits.Next)
	executedCh := pump(ctx, a.executed.Next)
	bundleCh := pump(ctx, a.bundles.Next)

	var reason error
	for reason == nil {
		// Priority-biased: shutdown is always checked first and wins
		// any tie with a ready event channel (spec §4.6 step 1,
		// mirroring tokio select!'s `biased;`).
		select {
		case <-ctx.Done():
			reason = errShutdown
		default:
			reason = a.handleOneEvent(ctx, optimisticCh, commitCh, executedCh, bundleCh)
		}
	}

	return a.shutdown(reason)
}

var errShutdown = fmt.Errorf("auctioneer: received shutdown signal")

func (a *Auctioneer) handleOneEvent(
	ctx context.Context,
	optimisticCh <-chan result[OptimisticBlock],
	commitCh <-chan result[BlockCommitment],
	executedCh <-chan result[ExecutedBlock],
	bundleCh <-chan result[Bundle],
) error {
	select {
	case <-ctx.Done():
		return errShutdown

	case r := <-optimisticCh:
		if r.err != nil {
			return fmt.Errorf("optimistic block stream closed: %w", r.err)
		}
		a.handleOptimisticBlock(ctx, r.value)
		return nil

	case r := <-commitCh:
		if r.err != nil {
			return fmt.Errorf("block commitment stream closed: %w", r.err)
		}
		a.handleBlockCommitment(r.value)
		return nil

	case r := <-executedCh:
		if r.err != nil {
			return fmt.Errorf("executed block stream closed: %w", r.err)
		}
		a.handleExecutedBlock(r.value)
		return nil

	// Both the running auction and any lingering cancelled auctions
	// fan their single terminal event into this one channel (spec
	// §4.6 events 5 and 7); handleAuctionEvent tells them apart.
	case ev := <-a.events:
		a.handleAuctionEvent(ev)
		return nil

	case r := <-bundleCh:
		if r.err == nil {
			a.handleBundle(r.value)
		}
		return nil
	}
}

// handleOptimisticBlock starts a new auction for the block, cancelling
// any still-running previous one; the cancelled auction lingers only
// to publish its own terminal event (spec §4.6 event 2).
func (a *Auctioneer) handleOptimisticBlock(ctx context.Context, block OptimisticBlock) {
	id := ID(fmt.Sprintf("%x", block.BlockHash))
	auction := newAuction(ctx, id, a.cfg.RollupID, a.nextNonce, a.submit)

	a.mu.Lock()
	old := a.runningAuction
	a.runningAuction = auction
	a.mu.Unlock()

	go a.forward(auction)

	if old != nil {
		a.log.Info().Str("cancelled_auction_id", string(old.ID())).Msg("cancelling running auction for new optimistic block")
		go func() {
			old.Cancel()
		}()
	}

	a.log.Info().Str("auction_id", string(id)).Int64("sequencer_height", block.SequencerHeight).Msg("started new auction")
}

// forward relays auction's single terminal Summary onto the shared
// events channel, fanning the per-auction Done() channels (one per
// running or lingering-cancelled auction) into the one channel the
// event loop selects on.
func (a *Auctioneer) forward(auction *Auction) {
	summary := <-auction.Done()
	a.events <- auctionEvent{id: auction.ID(), summary: summary}
}

func (a *Auctioneer) handleBlockCommitment(commit BlockCommitment) {
	a.mu.Lock()
	running := a.runningAuction
	a.mu.Unlock()
	if running == nil {
		a.log.Info().Msg("received a block commitment but no auction is running")
		return
	}
	running.StartTimer(a.cfg.LatencyMargin)
	a.log.Info().Str("auction_id", string(running.ID())).Msg("started auction timer")
}

func (a *Auctioneer) handleExecutedBlock(block ExecutedBlock) {
	a.mu.Lock()
	running := a.runningAuction
	a.mu.Unlock()
	if running == nil {
		a.log.Info().Msg("received an executed block but no auction is running")
		return
	}
	running.StartBids()
	a.log.Info().Str("auction_id", string(running.ID())).Msg("accepting bids")
}

func (a *Auctioneer) handleBundle(bundle Bundle) {
	a.mu.Lock()
	running := a.runningAuction
	a.mu.Unlock()
	if running == nil {
		a.log.Info().Msg("received a bundle but no auction is running; dropping")
		return
	}
	running.SubmitBid(bundle.Bid)
}

// handleAuctionEvent routes a terminal Summary either to the
// completed-auction path (if it's still the running auction) or the
// cancelled-auction log-only path (spec §4.6 events 5 and 7).
func (a *Auctioneer) handleAuctionEvent(ev auctionEvent) {
	a.mu.Lock()
	isRunning := a.runningAuction != nil && a.runningAuction.ID() == ev.id
	if isRunning {
		a.runningAuction = nil
	}
	a.mu.Unlock()

	if !isRunning {
		a.log.Info().Str("auction_id", string(ev.id)).Int("summary_kind", int(ev.summary.Kind)).Msg("cancelled auction resolved")
		return
	}

	if ev.summary.Kind == SummarySubmitted {
		a.mu.Lock()
		a.lastSuccessfulNonce = ev.summary.NonceUsed
		a.mu.Unlock()
	}
	if ev.summary.Kind == SummaryFailed {
		a.log.Error().Err(ev.summary.Err).Str("auction_id", string(ev.id)).Msg("auction failed")
	} else {
		a.log.Info().Str("auction_id", string(ev.id)).Int("summary_kind", int(ev.summary.Kind)).Msg("auction resolved")
	}
}

func (a *Auctioneer) nextNonce() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := a.lastSuccessfulNonce + 1
	return n
}

// shutdown cancels the running auction (if any) and waits up to
// gracefulDrainTimeout for its terminal event before giving up.
func (a *Auctioneer) shutdown(reason error) error {
	a.log.Info().Err(reason).Dur("grace_window", gracefulDrainTimeout).Msg("shutting down auctioneer")

	a.mu.Lock()
	running := a.runningAuction
	a.mu.Unlock()

	if running == nil {
		return normalizeShutdownReason(reason)
	}

	running.Cancel()
	select {
	case <-a.events:
	case <-time.After(gracefulDrainTimeout):
		a.log.Error().Msg("auction did not drain within grace window, aborting")
	}
	return normalizeShutdownReason(reason)
}

func normalizeShutdownReason(reason error) error {
	if reason == errShutdown {
		return nil
	}
	return reason
}

// result pairs a streamed value with the error that ended its stream,
// letting pump forward both over a single channel.
type result[T any] struct {
	value T
	err   error
}

// pump runs fn in a loop, forwarding every value (or the terminal
// error) onto a buffered channel, until ctx is cancelled or fn errors.
func pump[T any](ctx context.Context, fn func(context.Context) (T, error)) <-chan result[T] {
	out := make(chan result[T], 8)
	go func() {
		defer close(out)
		for {
			v, err := fn(ctx)
			select {
			case out <- result[T]{value: v, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return out
}
