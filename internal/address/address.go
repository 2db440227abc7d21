package address

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Length is the fixed size of an Astria account address in bytes.
const Length = 20

// Address is a 20-byte account identifier paired with the Bech32m
// prefix it was encoded/decoded with. The zero value is not a valid
// address; use FromVerificationKey or Decode.
type Address struct {
	bytes  [Length]byte
	prefix string
}

// Prefixes bundles the two human-readable prefixes a chain recognizes.
// Every stored address must match Base; IBCCompat is accepted only at
// the wire boundary for legacy emission (spec §3).
type Prefixes struct {
	Base      string
	IBCCompat string
}

// FromVerificationKey derives the address bytes for an Ed25519 public
// key: the first 20 bytes of SHA-256(key).
func FromVerificationKey(key ed25519.PublicKey, prefix string) (Address, error) {
	if len(key) != ed25519.PublicKeySize {
		return Address{}, fmt.Errorf("address: invalid verification key length %d", len(key))
	}
	sum := sha256.Sum256(key)
	var b [Length]byte
	copy(b[:], sum[:Length])
	return New(b, prefix)
}

// New wraps raw address bytes with a prefix, validating the prefix
// shape (but not chain membership — see Prefixes.Validate for that).
func New(b [Length]byte, prefix string) (Address, error) {
	if len(prefix) < 1 || len(prefix) > 83 {
		return Address{}, fmt.Errorf("address: invalid prefix length %d", len(prefix))
	}
	return Address{bytes: b, prefix: prefix}, nil
}

// Bytes returns the raw 20-byte address.
func (a Address) Bytes() [Length]byte { return a.bytes }

// Prefix returns the human-readable prefix the address was built with.
func (a Address) Prefix() string { return a.prefix }

// String renders the address as Bech32m, e.g. "astria1...".
func (a Address) String() string {
	s, err := Encode(a.prefix, a.bytes[:])
	if err != nil {
		// Prefix was already validated in New/FromVerificationKey.
		return ""
	}
	return s
}

// ParseBech32m decodes a Bech32m address string into an Address,
// rejecting anything encoded as plain Bech32.
func ParseBech32m(s string) (Address, error) {
	data, hrp, err := DecodeBech32m(s)
	if err != nil {
		return Address{}, fmt.Errorf("address: %w", err)
	}
	if len(data) != Length {
		return Address{}, fmt.Errorf("address: decoded payload has length %d, want %d", len(data), Length)
	}
	var b [Length]byte
	copy(b[:], data)
	return New(b, hrp)
}

// MatchesBase reports whether a's prefix equals the chain's base
// prefix. InitChain rejects any genesis address for which this is false.
func (a Address) MatchesBase(p Prefixes) bool {
	return a.prefix == p.Base
}

// MatchesAny reports whether a's prefix is either the base or the
// ibc-compat prefix recognized by the chain.
func (a Address) MatchesAny(p Prefixes) bool {
	return a.prefix == p.Base || (p.IBCCompat != "" && a.prefix == p.IBCCompat)
}

// WithPrefix returns a copy of a re-rendered under a different
// human-readable prefix, preserving the same underlying 20 bytes.
//
// This exists only to support the documented, deprecated wire
// compatibility path (spec §9 Open Question) where a bridge address's
// 20 raw bytes are reused verbatim across a prefix boundary. New call
// sites must not rely on it; it is retained solely for decoding
// addresses emitted by already-deployed rollups.
func (a Address) WithPrefix(prefix string) (Address, error) {
	return New(a.bytes, prefix)
}

// MarshalJSON renders the address as its Bech32m string, for use in
// the wire envelope (see internal/sequencer/wire).
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON parses the address from its Bech32m string.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseBech32m(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
