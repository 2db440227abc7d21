// Package asset models Astria asset denominations and the
// trace-prefixed <-> IBC-prefixed bijection described in spec §3.
package asset

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Denom is a single asset denomination, either a plain trace-prefixed
// string ("transfer/channel-0/utia") or a bare native denom ("nria").
// Internally all balances are keyed by the IBC-prefixed form (see IBC).
type Denom struct {
	trace string
}

// NewDenom validates and wraps a trace-prefixed or bare denom string.
func NewDenom(trace string) (Denom, error) {
	if trace == "" {
		return Denom{}, fmt.Errorf("asset: empty denomination")
	}
	if strings.HasPrefix(trace, "ibc/") {
		return Denom{}, fmt.Errorf("asset: %q is already ibc-prefixed, use ParseIBC", trace)
	}
	return Denom{trace: trace}, nil
}

// TraceString returns the trace-prefixed form, e.g. "transfer/channel-0/utia".
func (d Denom) TraceString() string { return d.trace }

// IBC returns the canonical "ibc/<sha256>" form used internally to key
// balances, per spec §3 ("internally all balances are keyed by the
// IBC-prefixed form").
func (d Denom) IBC() IBCDenom {
	sum := sha256.Sum256([]byte(d.trace))
	return IBCDenom{hash: sum, trace: d.trace}
}

// IsNative reports whether the denom carries no IBC transfer path
// (no "/" separators), e.g. "nria".
func (d Denom) IsNative() bool {
	return !strings.Contains(d.trace, "/")
}

// IBCDenom is the "ibc/<sha256-hex>" representation of a Denom. Two
// IBCDenoms are interchangeable with the Denom that produced them via
// the stored trace, making the mapping a bijection as required by
// spec §3.
type IBCDenom struct {
	hash  [32]byte
	trace string
}

// String renders the canonical "ibc/<HEX>" form.
func (d IBCDenom) String() string {
	return "ibc/" + strings.ToUpper(hex.EncodeToString(d.hash[:]))
}

// Trace returns the original trace-prefixed denom this hash was
// derived from, when known (i.e. produced via Denom.IBC, not ParseIBC
// of an string with unknown trace).
func (d IBCDenom) Trace() string { return d.trace }

// Hash returns the raw 32-byte SHA-256 digest of the trace denom.
func (d IBCDenom) Hash() [32]byte { return d.hash }

type jsonIBCDenom struct {
	IBC   string `json:"ibc"`
	Trace string `json:"trace,omitempty"`
}

// MarshalJSON renders the denom as its canonical ibc/<hex> form plus,
// when known, the original trace — so the wire envelope round-trips
// the bijection rather than forcing re-resolution against a registry.
func (d IBCDenom) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonIBCDenom{IBC: d.String(), Trace: d.trace})
}

// UnmarshalJSON restores an IBCDenom previously produced by MarshalJSON.
func (d *IBCDenom) UnmarshalJSON(data []byte) error {
	var j jsonIBCDenom
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	parsed, err := ParseIBC(j.IBC)
	if err != nil {
		return err
	}
	parsed.trace = j.Trace
	*d = parsed
	return nil
}

// ParseIBC parses a bare "ibc/<hex>" string without a known trace. The
// resulting IBCDenom can be compared and stored, but Trace() is empty
// until resolved against a trace registry.
func ParseIBC(s string) (IBCDenom, error) {
	rest, ok := strings.CutPrefix(s, "ibc/")
	if !ok {
		return IBCDenom{}, fmt.Errorf("asset: %q is not ibc-prefixed", s)
	}
	raw, err := hex.DecodeString(rest)
	if err != nil || len(raw) != 32 {
		return IBCDenom{}, fmt.Errorf("asset: invalid ibc denom hash %q", s)
	}
	var h [32]byte
	copy(h[:], raw)
	return IBCDenom{hash: h}, nil
}

// TraceRegistry stores the bijection between trace-prefixed and
// IBC-prefixed forms so either can be used interchangeably at the
// transaction boundary while all balances are keyed by IBCDenom.
type TraceRegistry struct {
	byIBC map[[32]byte]string
}

// NewTraceRegistry returns an empty registry.
func NewTraceRegistry() *TraceRegistry {
	return &TraceRegistry{byIBC: make(map[[32]byte]string)}
}

// Register records the bijection for trace, returning its IBCDenom.
func (r *TraceRegistry) Register(trace string) (IBCDenom, error) {
	d, err := NewDenom(trace)
	if err != nil {
		return IBCDenom{}, err
	}
	ibc := d.IBC()
	r.byIBC[ibc.hash] = trace
	return ibc, nil
}

// Resolve looks up the trace-prefixed form for an IBCDenom hash,
// reporting ok=false if it was never registered.
func (r *TraceRegistry) Resolve(ibc IBCDenom) (string, bool) {
	trace, ok := r.byIBC[ibc.hash]
	return trace, ok
}

// ResolveOrSelf resolves an arbitrary user-supplied denom string
// (either trace-prefixed or "ibc/<hex>") to its canonical IBCDenom.
func (r *TraceRegistry) ResolveOrSelf(s string) (IBCDenom, error) {
	if strings.HasPrefix(s, "ibc/") {
		ibc, err := ParseIBC(s)
		if err != nil {
			return IBCDenom{}, err
		}
		if trace, ok := r.byIBC[ibc.hash]; ok {
			ibc.trace = trace
		}
		return ibc, nil
	}
	d, err := NewDenom(s)
	if err != nil {
		return IBCDenom{}, err
	}
	return r.Register(d.TraceString())
}
