package storage

import "fmt"

// Snapshot is an immutable, versioned read view plus an optional
// uncommitted overlay (its owning Delta). Snapshots never mutate;
// any number may exist concurrently with the single writer (spec §5).
type Snapshot struct {
	store   *Store
	version int64
	overlay *Delta
}

// Snapshot returns a read view pinned to version, with no uncommitted
// overlay. Used by CheckTx and read-only RPC queries.
func (s *Store) Snapshot(version int64) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if version > s.latestVersion {
		return nil, fmt.Errorf("storage: version %d is ahead of latest %d", version, s.latestVersion)
	}
	return &Snapshot{store: s, version: version}, nil
}

// LatestSnapshot is a convenience for Snapshot(LatestVersion()).
func (s *Store) LatestSnapshot() (*Snapshot, error) {
	return s.Snapshot(s.LatestVersion())
}

// WithOverlay returns a copy of the snapshot that also sees delta's
// staged, uncommitted writes. PrepareProposal/ProcessProposal use this
// to re-read state as each action is speculatively applied within the
// same block, without ever touching the committed tree.
func (snap *Snapshot) WithOverlay(delta *Delta) *Snapshot {
	return &Snapshot{store: snap.store, version: snap.version, overlay: delta}
}

// Get reads a verifiable-stripe key, preferring the overlay (if any)
// over the committed version.
func (snap *Snapshot) Get(key string) ([]byte, error) {
	if snap.overlay != nil {
		if _, deleted := snap.overlay.verifiableDel[key]; deleted {
			return nil, nil
		}
		if v, ok := snap.overlay.verifiableSet[key]; ok {
			return v, nil
		}
	}

	snap.store.mu.RLock()
	defer snap.store.mu.RUnlock()

	tree, err := snap.store.tree.GetImmutable(snap.version)
	if err != nil {
		return nil, fmt.Errorf("storage: get immutable tree at %d: %w", snap.version, err)
	}
	_, v, err := tree.GetWithIndex([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("storage: get %q: %w", key, err)
	}
	return v, nil
}

// GetNonVerifiable reads a non-verifiable-stripe key, preferring the
// overlay (if any) over the underlying KV database.
func (snap *Snapshot) GetNonVerifiable(key string) ([]byte, error) {
	if snap.overlay != nil {
		if _, deleted := snap.overlay.nonVerifiableDel[key]; deleted {
			return nil, nil
		}
		if v, ok := snap.overlay.nonVerifiableSet[key]; ok {
			return v, nil
		}
	}
	v, err := snap.store.nv.Get([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("storage: nv get %q: %w", key, err)
	}
	return v, nil
}

// Version returns the committed version this snapshot is pinned to.
func (snap *Snapshot) Version() int64 { return snap.version }
