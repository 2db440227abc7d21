package auctioneer

import (
	"context"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestAuctionPicksHighestFeeBid(t *testing.T) {
	var submitted Bid
	var usedNonce uint32
	submit := func(_ context.Context, bid Bid, nonce uint32) error {
		submitted = bid
		usedNonce = nonce
		return nil
	}

	a := newAuction(context.Background(), ID("block-1"), [32]byte{1}, func() uint32 { return 7 }, submit)
	a.StartBids()

	a.SubmitBid(Bid{Bundle: []byte("low"), FeeTotal: math.NewInt(1), Arrived: time.Now()})
	a.SubmitBid(Bid{Bundle: []byte("high"), FeeTotal: math.NewInt(10), Arrived: time.Now()})
	a.SubmitBid(Bid{Bundle: []byte("mid"), FeeTotal: math.NewInt(5), Arrived: time.Now()})

	a.close()

	summary := <-a.Done()
	require.Equal(t, SummarySubmitted, summary.Kind)
	require.EqualValues(t, 7, usedNonce)
	require.Equal(t, []byte("high"), submitted.Bundle)
}

func TestAuctionTieBrokenByEarliestArrival(t *testing.T) {
	var submitted Bid
	submit := func(_ context.Context, bid Bid, _ uint32) error {
		submitted = bid
		return nil
	}

	a := newAuction(context.Background(), ID("block-2"), [32]byte{2}, func() uint32 { return 1 }, submit)
	a.StartBids()

	earlier := time.Now()
	later := earlier.Add(time.Second)

	a.SubmitBid(Bid{Bundle: []byte("second"), FeeTotal: math.NewInt(5), Arrived: later})
	a.SubmitBid(Bid{Bundle: []byte("first"), FeeTotal: math.NewInt(5), Arrived: earlier})

	a.close()
	<-a.Done()

	require.Equal(t, []byte("first"), submitted.Bundle)
}

func TestAuctionIgnoresBidsBeforeAcceptingBids(t *testing.T) {
	called := false
	submit := func(context.Context, Bid, uint32) error {
		called = true
		return nil
	}

	a := newAuction(context.Background(), ID("block-3"), [32]byte{3}, func() uint32 { return 1 }, submit)
	// Never call StartBids: still in PhaseOpen.
	a.SubmitBid(Bid{Bundle: []byte("ignored"), FeeTotal: math.NewInt(100), Arrived: time.Now()})

	a.close()
	summary := <-a.Done()

	require.Equal(t, SummaryNoBids, summary.Kind)
	require.False(t, called)
}

func TestAuctionCancelEmitsCancelledSummary(t *testing.T) {
	submit := func(context.Context, Bid, uint32) error { return nil }
	a := newAuction(context.Background(), ID("block-4"), [32]byte{4}, func() uint32 { return 1 }, submit)
	a.StartBids()

	a.Cancel()
	summary := <-a.Done()
	require.Equal(t, SummaryCancelled, summary.Kind)
}
