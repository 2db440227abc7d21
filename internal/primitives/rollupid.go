// Package primitives implements the wire-level building blocks shared
// by every Astria component: rollup identifiers and the merkle
// constructions used to derive a sequencer block's data_hash.
package primitives

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// RollupIDLength is the fixed size of a Rollup ID in bytes.
const RollupIDLength = 32

// RollupID is a 32-byte identifier for a rollup, conventionally
// SHA-256(name). RollupIDs have a total byte-lexicographic order.
type RollupID [RollupIDLength]byte

// RollupIDFromName derives the conventional RollupID for a rollup name.
func RollupIDFromName(name string) RollupID {
	return RollupID(sha256.Sum256([]byte(name)))
}

// Less implements the byte-lexicographic total order over RollupIDs.
func (r RollupID) Less(other RollupID) bool {
	return bytes.Compare(r[:], other[:]) < 0
}

func (r RollupID) String() string {
	return fmt.Sprintf("%x", r[:])
}

// Bytes returns the raw 32 bytes.
func (r RollupID) Bytes() []byte { return r[:] }

// MarshalJSON renders the id as a hex string rather than the default
// JSON-array-of-numbers encoding Go gives fixed-size byte arrays.
func (r RollupID) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(r[:]))
}

// UnmarshalJSON parses the hex string produced by MarshalJSON.
func (r *RollupID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != RollupIDLength {
		return fmt.Errorf("primitives: invalid rollup id hex %q", s)
	}
	copy(r[:], raw)
	return nil
}

// SortRollupIDs returns ids sorted in byte-lexicographic order, the
// canonical order required for deterministic block assembly (spec §4.1).
func SortRollupIDs(ids []RollupID) []RollupID {
	out := make([]RollupID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
