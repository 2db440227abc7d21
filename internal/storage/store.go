// Package storage implements Astria's versioned, Merkle-verifiable
// key-value store (spec §4.3): a verifiable stripe that contributes to
// the ABCI app hash, backed by an IAVL tree, and a non-verifiable
// stripe for caches/indices backed by a plain KV database. Both share
// the cometbft-db pluggable backend interface the teacher's dependency
// stack already carries.
package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cosmos/iavl"
	dbm "github.com/cometbft/cometbft-db"
)

// ErrVersionMismatch is returned by PrepareCommit when a delta's
// parent version is not the store's latest committed version (spec
// §4.3: "Preparing a commit from a delta whose parent version is not
// latest_version is rejected").
var ErrVersionMismatch = errors.New("storage: delta parent version is not latest_version")

// Store is the single writer's handle onto both stripes. Only the
// consensus (ABCI) thread ever calls PrepareCommit/Commit; any number
// of readers may concurrently take Snapshots of already-committed
// versions (spec §4.3 concurrency model, §5).
type Store struct {
	mu sync.RWMutex

	tree *iavl.MutableTree
	nv   dbm.DB

	latestVersion int64
}

// New constructs a Store over the given verifiable (IAVL-backed) and
// non-verifiable KV databases. cacheSize bounds the IAVL node cache.
func New(verifiableDB, nonVerifiableDB dbm.DB, cacheSize int) (*Store, error) {
	tree := iavl.NewMutableTree(verifiableDB, cacheSize, false, nil)
	version, err := tree.Load()
	if err != nil {
		return nil, fmt.Errorf("storage: loading iavl tree: %w", err)
	}
	return &Store{
		tree:          tree,
		nv:            nonVerifiableDB,
		latestVersion: version,
	}, nil
}

// LatestVersion returns the most recently committed version.
func (s *Store) LatestVersion() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestVersion
}

// Delta is a single block's staged write set, produced by speculative
// execution against a Snapshot of ParentVersion and later either
// discarded (ProcessProposal rejection) or committed.
type Delta struct {
	ParentVersion int64

	verifiableSet    map[string][]byte
	verifiableDel    map[string]struct{}
	nonVerifiableSet map[string][]byte
	nonVerifiableDel map[string]struct{}
}

// NewDelta starts an empty delta whose parent is the store's current
// latest version. Callers that need a consistent snapshot to execute
// against should pair this with Snapshot(parentVersion).
func (s *Store) NewDelta() *Delta {
	return &Delta{
		ParentVersion:    s.LatestVersion(),
		verifiableSet:    make(map[string][]byte),
		verifiableDel:    make(map[string]struct{}),
		nonVerifiableSet: make(map[string][]byte),
		nonVerifiableDel: make(map[string]struct{}),
	}
}

// Put stages a verifiable-stripe write.
func (d *Delta) Put(key string, value []byte) {
	delete(d.verifiableDel, key)
	d.verifiableSet[key] = value
}

// Delete stages a verifiable-stripe deletion.
func (d *Delta) Delete(key string) {
	delete(d.verifiableSet, key)
	d.verifiableDel[key] = struct{}{}
}

// PutNonVerifiable stages a non-verifiable-stripe write (caches,
// block fees, transient indices — spec §4.3).
func (d *Delta) PutNonVerifiable(key string, value []byte) {
	delete(d.nonVerifiableDel, key)
	d.nonVerifiableSet[key] = value
}

// DeleteNonVerifiable stages a non-verifiable-stripe deletion.
func (d *Delta) DeleteNonVerifiable(key string) {
	delete(d.nonVerifiableSet, key)
	d.nonVerifiableDel[key] = struct{}{}
}

// PrepareCommit validates that delta was built against the store's
// current latest version, without mutating any state. The app's ABCI
// Commit calls this before Commit.
func (s *Store) PrepareCommit(delta *Delta) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if delta.ParentVersion != s.latestVersion {
		return ErrVersionMismatch
	}
	return nil
}

// Commit applies delta atomically and advances the latest snapshot
// version. It is the only mutating entry point into the store and
// must only ever be called from the single ABCI commit path (spec §5).
func (s *Store) Commit(delta *Delta) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if delta.ParentVersion != s.latestVersion {
		return 0, ErrVersionMismatch
	}

	for k, v := range delta.verifiableSet {
		if _, err := s.tree.Set([]byte(k), v); err != nil {
			return 0, fmt.Errorf("storage: set %q: %w", k, err)
		}
	}
	for k := range delta.verifiableDel {
		if _, _, err := s.tree.Remove([]byte(k)); err != nil {
			return 0, fmt.Errorf("storage: remove %q: %w", k, err)
		}
	}

	batch := s.nv.NewBatch()
	defer batch.Close()
	for k, v := range delta.nonVerifiableSet {
		if err := batch.Set([]byte(k), v); err != nil {
			return 0, fmt.Errorf("storage: nv set %q: %w", k, err)
		}
	}
	for k := range delta.nonVerifiableDel {
		if err := batch.Delete([]byte(k)); err != nil {
			return 0, fmt.Errorf("storage: nv delete %q: %w", k, err)
		}
	}
	if err := batch.WriteSync(); err != nil {
		return 0, fmt.Errorf("storage: nv batch write: %w", err)
	}

	newVersion, err := s.tree.SaveVersion()
	if err != nil {
		return 0, fmt.Errorf("storage: save version: %w", err)
	}
	s.latestVersion = newVersion
	return newVersion, nil
}

// AppHash returns the verifiable stripe's root hash at the latest
// committed version, the value ABCI Commit reports to CometBFT.
func (s *Store) AppHash() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Hash()
}
