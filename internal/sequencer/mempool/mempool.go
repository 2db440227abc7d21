// Package mempool implements the app-side two-tier mempool of spec
// §4.2: a per-signer pending queue (contiguous from the account
// nonce) and parked pool (nonce-gapped), a fee-per-byte builder-queue
// projection, post-commit maintenance, and a bounded FIFO removal
// cache.
package mempool

import (
	"container/list"
	"sort"
	"sync"

	"cosmossdk.io/math"

	"github.com/astriaorg/astria-sub012/internal/address"
	"github.com/astriaorg/astria-sub012/internal/sequencer/wire"
)

// Entry is one mempool-resident transaction plus its simulated cost,
// used for both nonce-ordering and fee-per-byte prioritization.
type Entry struct {
	Tx        wire.Transaction
	Hash      [32]byte
	Nonce     uint32
	EncodedLen int
	FeePerByte math.LegacyDec
}

type signerQueues struct {
	pending []Entry // sorted ascending by Nonce, contiguous from account nonce
	parked  map[uint32]Entry
}

// Mempool is a concurrent structure guarded by a single RWMutex over
// all signers (spec §5 "Shared resources"); the builder-queue
// projection takes a consistent read snapshot across all signers under
// that lock.
type Mempool struct {
	mu      sync.RWMutex
	signers map[string]*signerQueues

	removal *RemovalCache
}

// New constructs an empty Mempool with the given removal-cache capacity.
func New(removalCacheCapacity int) *Mempool {
	return &Mempool{
		signers: make(map[string]*signerQueues),
		removal: NewRemovalCache(removalCacheCapacity),
	}
}

func (m *Mempool) queuesFor(signer address.Address) *signerQueues {
	key := signer.String()
	q, ok := m.signers[key]
	if !ok {
		q = &signerQueues{parked: make(map[uint32]Entry)}
		m.signers[key] = q
	}
	return q
}

// Insert adds tx under signer at the account's current on-chain nonce
// accountNonce. Contiguous transactions land in Pending; a gap lands
// in Parked. Returns false if the removal cache has recently evicted
// this exact tx hash (spec §4.2 "Removal cache").
func (m *Mempool) Insert(signer address.Address, accountNonce uint32, entry Entry) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.removal.Contains(entry.Hash) {
		return false
	}

	q := m.queuesFor(signer)
	if entry.Nonce < accountNonce {
		return false // stale; caller should report nonce_stale
	}

	q.parked[entry.Nonce] = entry
	promoteContiguous(q, accountNonce)
	return true
}

// promoteContiguous moves parked entries into pending as long as they
// form a contiguous run starting at accountNonce (including entries
// already in pending).
func promoteContiguous(q *signerQueues, accountNonce uint32) {
	next := accountNonce
	if len(q.pending) > 0 {
		next = q.pending[len(q.pending)-1].Nonce + 1
	}
	for {
		e, ok := q.parked[next]
		if !ok {
			break
		}
		delete(q.parked, next)
		q.pending = append(q.pending, e)
		next++
	}
	sort.Slice(q.pending, func(i, j int) bool { return q.pending[i].Nonce < q.pending[j].Nonce })
}

// Remove evicts a transaction by hash from wherever it sits and
// records it in the removal cache so CometBFT does not immediately
// retry it.
func (m *Mempool) Remove(signer address.Address, hash [32]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.signers[signer.String()]
	if ok {
		filtered := q.pending[:0]
		for _, e := range q.pending {
			if e.Hash != hash {
				filtered = append(filtered, e)
			}
		}
		q.pending = filtered
		for nonce, e := range q.parked {
			if e.Hash == hash {
				delete(q.parked, nonce)
			}
		}
	}
	m.removal.Add(hash)
}

// BuilderQueue walks pending heads across signers and returns them
// ordered by fee-per-byte priority, highest first (spec §4.2
// "Builder-queue projection"). It is a read-only projection: callers
// (PrepareProposal) consume entries and simulate them against a
// speculative balance before accepting or skipping each one.
func (m *Mempool) BuilderQueue() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	heads := make([]Entry, 0, len(m.signers))
	for _, q := range m.signers {
		if len(q.pending) > 0 {
			heads = append(heads, q.pending[0])
		}
	}
	sort.SliceStable(heads, func(i, j int) bool {
		return heads[i].FeePerByte.GT(heads[j].FeePerByte)
	})
	return heads
}

// Signers returns the bech32m-address keys of every signer with
// mempool-resident transactions, for callers that need to recompute
// per-signer state (e.g. Maintain's caller, building newNonces).
func (m *Mempool) Signers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.signers))
	for k := range m.signers {
		out = append(out, k)
	}
	return out
}

// PendingCount returns the total number of pending (contiguous,
// not-yet-proposed) transactions across all signers.
func (m *Mempool) PendingCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, q := range m.signers {
		n += len(q.pending)
	}
	return n
}

// Maintain runs after every committed block (spec §4.2 "Maintenance"):
// drop txs whose nonce is now stale, and let the caller recost/evict
// remaining entries against the new fee schedule via shouldEvict,
// which is handed each entry's signer and current queue state and
// returns true to drop it (e.g. because its simulated running balance
// goes negative under the new fees).
func (m *Mempool) Maintain(newNonces map[string]uint32, shouldEvict func(signerKey string, e Entry) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for signerKey, q := range m.signers {
		nonce := newNonces[signerKey]

		keptPending := q.pending[:0]
		for _, e := range q.pending {
			if e.Nonce < nonce {
				continue
			}
			if shouldEvict != nil && shouldEvict(signerKey, e) {
				continue
			}
			keptPending = append(keptPending, e)
		}
		q.pending = keptPending

		for n, e := range q.parked {
			if n < nonce || (shouldEvict != nil && shouldEvict(signerKey, e)) {
				delete(q.parked, n)
			}
		}
		promoteContiguous(q, nonce)
	}
}

// RemovalCache is a bounded, FIFO-evicted set of recently rejected tx
// hashes (spec §4.2, ~4k default capacity).
type RemovalCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	index    map[[32]byte]*list.Element
}

// NewRemovalCache constructs a cache holding at most capacity hashes.
func NewRemovalCache(capacity int) *RemovalCache {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RemovalCache{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[[32]byte]*list.Element),
	}
}

// Add records hash, evicting the oldest entry if at capacity.
func (c *RemovalCache) Add(hash [32]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.index[hash]; ok {
		return
	}
	elem := c.order.PushBack(hash)
	c.index[hash] = elem

	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.index, oldest.Value.([32]byte))
	}
}

// Contains reports whether hash was recently rejected.
func (c *RemovalCache) Contains(hash [32]byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.index[hash]
	return ok
}
