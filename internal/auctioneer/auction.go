// Package auctioneer runs a per-block bid auction that selects the
// highest-fee bundle for a rollup's optimistic block and submits it as
// a signed sequencer transaction, grounded on
// original_source/crates/astria-auctioneer/src/auctioneer/inner/mod.rs
// (Inner::run/handle_event) and its auction submodule.
package auctioneer

import (
	"context"
	"sync"
	"time"

	"cosmossdk.io/math"
)

// Phase tracks where a single Auction is in its lifecycle (spec §4.6
// "Events processed").
type Phase int

const (
	PhaseOpen         Phase = iota // constructed, waiting for the block commitment to start the timer
	PhaseAcceptingBids             // executed block received; bids are being evaluated
	PhaseClosed                    // winner cutoff reached, no more bids accepted
)

// Bid is one candidate bundle submitted for an auction.
type Bid struct {
	Bundle   []byte
	FeeTotal math.Int
	Arrived  time.Time
}

// SummaryKind classifies how an Auction ended (spec §4.6 "Failure semantics").
type SummaryKind int

const (
	SummaryNoBids SummaryKind = iota
	SummarySubmitted
	SummaryFailed
	SummaryCancelled
)

// Summary is the terminal event an Auction publishes once it resolves.
type Summary struct {
	Kind      SummaryKind
	NonceUsed uint32
	Err       error
}

// ID identifies one Auction, derived from the sequencer block hash it
// was opened for.
type ID string

// Auction runs the bid window for a single optimistic block: it
// accepts bids from the moment its executed block arrives until its
// block-commitment-derived deadline, then submits the highest-fee bid.
type Auction struct {
	id        ID
	rollupID  [32]byte
	submit    func(ctx context.Context, bid Bid, nonce uint32) error
	nextNonce func() uint32

	mu       sync.Mutex
	phase    Phase
	deadline *time.Timer
	best     *Bid

	cancel context.CancelFunc
	ctx    context.Context
	done   chan Summary
}

// newAuction constructs an Auction in PhaseOpen, not yet accepting
// bids; it does nothing until StartTimer/StartBids are called.
func newAuction(parent context.Context, id ID, rollupID [32]byte, nextNonce func() uint32, submit func(context.Context, Bid, uint32) error) *Auction {
	ctx, cancel := context.WithCancel(parent)
	return &Auction{
		id:        id,
		rollupID:  rollupID,
		submit:    submit,
		nextNonce: nextNonce,
		phase:     PhaseOpen,
		cancel:    cancel,
		ctx:       ctx,
		done:      make(chan Summary, 1),
	}
}

// ID returns the auction's identity, used for logging and for
// matching a completion event to the auction that produced it.
func (a *Auction) ID() ID { return a.id }

// StartTimer arms the winner-cutoff deadline off a block commitment
// event (spec §4.6 event 3). margin bounds how long after commitment
// bids are still accepted.
func (a *Auction) StartTimer(margin time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.deadline != nil {
		return
	}
	a.deadline = time.AfterFunc(margin, a.close)
}

// StartBids transitions the auction into PhaseAcceptingBids so
// incoming bundles are evaluated (spec §4.6 event 4).
func (a *Auction) StartBids() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.phase == PhaseOpen {
		a.phase = PhaseAcceptingBids
	}
}

// SubmitBid records bid as the current best if it is accepting bids
// and bid outbids the current best on fee, ties broken by earliest
// arrival (spec §4.6 "Winner selection").
func (a *Auction) SubmitBid(bid Bid) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.phase != PhaseAcceptingBids {
		return
	}
	if a.best == nil || bid.FeeTotal.GT(a.best.FeeTotal) {
		a.best = &bid
		return
	}
	if bid.FeeTotal.Equal(a.best.FeeTotal) && bid.Arrived.Before(a.best.Arrived) {
		a.best = &bid
	}
}

// close cuts off further bids and submits the winner, if any,
// publishing the terminal Summary on Done().
func (a *Auction) close() {
	a.mu.Lock()
	if a.phase == PhaseClosed {
		a.mu.Unlock()
		return
	}
	a.phase = PhaseClosed
	best := a.best
	a.mu.Unlock()

	if best == nil {
		a.done <- Summary{Kind: SummaryNoBids}
		return
	}

	nonce := a.nextNonce()
	if err := a.submit(a.ctx, *best, nonce); err != nil {
		a.done <- Summary{Kind: SummaryFailed, Err: err}
		return
	}
	a.done <- Summary{Kind: SummarySubmitted, NonceUsed: nonce}
}

// Cancel stops the auction early (spec §4.6 "any still-running
// previous auction is cancelled ... but allowed to emit its own
// terminal event").
func (a *Auction) Cancel() {
	a.mu.Lock()
	if a.deadline != nil {
		a.deadline.Stop()
	}
	alreadyClosed := a.phase == PhaseClosed
	a.phase = PhaseClosed
	a.mu.Unlock()

	a.cancel()
	if !alreadyClosed {
		a.done <- Summary{Kind: SummaryCancelled}
	}
}

// Done resolves exactly once with the auction's terminal Summary.
func (a *Auction) Done() <-chan Summary { return a.done }
