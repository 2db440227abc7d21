package app

import (
	"fmt"
	"sync"

	"github.com/astriaorg/astria-sub012/internal/asset"
	"github.com/astriaorg/astria-sub012/internal/sequencer/actions"
	"github.com/astriaorg/astria-sub012/internal/sequencer/mempool"
	"github.com/astriaorg/astria-sub012/internal/sequencer/state"
	"github.com/astriaorg/astria-sub012/internal/storage"
)

// App is the sequencer's ABCI state machine root. Every mutation
// happens inside the ABCI commit path on a single goroutine (spec §5);
// App's only lock is mu, which guards inProgress and proposalEvents.
type App struct {
	cfg   Config
	store *storage.Store
	mp    *mempool.Mempool
	fees  *asset.TraceRegistry

	// inProgress is the speculative state for the block attempt
	// currently being prepared/processed/finalized. It is nil outside
	// of an in-flight ABCI block-processing sequence.
	inProgress *state.State

	// proposalEvents holds the events each transaction in the current
	// proposal emitted when ProcessProposal executed it, so
	// FinalizeBlock can attach them to ExecTxResult without
	// re-executing the block.
	proposalEvents [][]actions.Event

	mu sync.Mutex // guards inProgress against accidental cross-goroutine use
}

// New constructs an App over an already-opened storage.Store.
func New(cfg Config, store *storage.Store) *App {
	return &App{
		cfg:   cfg,
		store: store,
		mp:    mempool.New(cfg.RemovalCacheSize),
		fees:  asset.NewTraceRegistry(),
	}
}

// freshState builds a State against the store's latest committed
// version, ready for a new block attempt.
func (a *App) freshState() (*state.State, error) {
	snap, err := a.store.LatestSnapshot()
	if err != nil {
		return nil, fmt.Errorf("app: snapshot: %w", err)
	}
	delta := a.store.NewDelta()
	return state.New(snap, delta, a.cfg.Prefixes, a.cfg.ChainID, a.fees, a.store.LatestVersion()+1), nil
}

// Mempool exposes the app-side mempool for the RPC/CLI layer (out of
// core scope) to query pending counts, etc.
func (a *App) Mempool() *mempool.Mempool { return a.mp }

// Store exposes the underlying storage.Store for read-only queries.
func (a *App) Store() *storage.Store { return a.store }
