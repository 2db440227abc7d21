// Package relayer implements the sequencer-to-DA relayer described in
// spec §2's relayer module: a block-stream reader polling the local
// sequencer, a submitter converting/posting blocks to the DA layer
// with exponential backoff, and a two-file journal recording exactly
// which sequencer height was last submitted, grounded on
// original_source/crates/astria-sequencer-relayer/src/relayer/{mod,read,write}.rs.
package relayer

import "sync"

// State is the relayer's externally observable status, read by a
// health endpoint (out of core scope) and updated from the read/write
// loops. Mirrors the teacher's pattern of one shared Arc<State> handed
// to every task (write.rs's `state: Arc<super::State>`).
type State struct {
	mu sync.RWMutex

	sequencerConnected bool
	celestiaConnected  bool

	latestObservedSequencerHeight int64
	latestSubmittedCelestiaHeight uint64
}

// NewState returns a zero-valued State (nothing observed or submitted yet).
func NewState() *State { return &State{} }

func (s *State) SetSequencerConnected(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequencerConnected = v
}

func (s *State) SetCelestiaConnected(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.celestiaConnected = v
}

func (s *State) SetLatestObservedSequencerHeight(h int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h > s.latestObservedSequencerHeight {
		s.latestObservedSequencerHeight = h
	}
}

func (s *State) SetLatestSubmittedCelestiaHeight(h uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latestSubmittedCelestiaHeight = h
}

// Snapshot is a point-in-time, race-free copy of State's fields.
type Snapshot struct {
	SequencerConnected            bool
	CelestiaConnected             bool
	LatestObservedSequencerHeight int64
	LatestSubmittedCelestiaHeight uint64
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		SequencerConnected:            s.sequencerConnected,
		CelestiaConnected:             s.celestiaConnected,
		LatestObservedSequencerHeight: s.latestObservedSequencerHeight,
		LatestSubmittedCelestiaHeight: s.latestSubmittedCelestiaHeight,
	}
}
