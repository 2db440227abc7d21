// Package wire implements the signed transaction envelope described
// in spec §6: a body of { params, actions } signed with Ed25519 over
// its canonical encoding. Full protobuf codegen (as the real
// `buf.build/gen/go/astria/...` stubs referenced by
// other_examples/1d2e003b_astriaorg-flame__grpc-execution-server.go.go
// provide) requires a toolchain invocation this module cannot run;
// Body.CanonicalBytes instead produces a deterministic
// length-prefixed encoding that plays the same role the protobuf
// encoding of spec §6 plays — a fixed byte string the signature
// covers and CheckTx/PrepareProposal/ProcessProposal/FinalizeBlock all
// re-derive identically.
package wire

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/hdevalence/ed25519consensus"

	"github.com/astriaorg/astria-sub012/internal/sequencer/actions"
)

// Params carries the transaction's replay-protection nonce and the
// chain it is scoped to.
type Params struct {
	Nonce   uint32
	ChainID string
}

// Body is the signed payload: one or more actions plus Params.
type Body struct {
	Params  Params
	Actions []actions.Action
}

func putBytes(buf []byte, b []byte) []byte {
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(b)))
	buf = append(buf, length[:]...)
	return append(buf, b...)
}

// CanonicalBytes deterministically encodes the body for signing. Each
// action variant is asked for its own canonical payload via
// actions.Canonicalize so that adding a new variant never perturbs the
// encoding of existing ones.
func (b Body) CanonicalBytes() ([]byte, error) {
	if len(b.Actions) == 0 {
		return nil, fmt.Errorf("wire: transaction body must contain at least one action")
	}

	buf := make([]byte, 0, 256)
	var nonce [4]byte
	binary.BigEndian.PutUint32(nonce[:], b.Params.Nonce)
	buf = append(buf, nonce[:]...)
	buf = putBytes(buf, []byte(b.Params.ChainID))

	var count [4]byte
	binary.BigEndian.PutUint32(count[:], uint32(len(b.Actions)))
	buf = append(buf, count[:]...)

	for _, a := range b.Actions {
		payload, err := actions.Canonicalize(a)
		if err != nil {
			return nil, fmt.Errorf("wire: canonicalize action %s: %w", a.Name(), err)
		}
		buf = putBytes(buf, []byte(a.Name()))
		buf = putBytes(buf, payload)
	}
	return buf, nil
}

// Transaction is the full signed envelope (spec §6).
type Transaction struct {
	Body      Body
	Signature [ed25519.SignatureSize]byte
	PublicKey ed25519.PublicKey
}

// Sign produces a Transaction by signing body's canonical encoding
// with priv.
func Sign(body Body, priv ed25519.PrivateKey) (Transaction, error) {
	canonical, err := body.CanonicalBytes()
	if err != nil {
		return Transaction{}, err
	}
	sig := ed25519.Sign(priv, canonical)
	var sigArr [ed25519.SignatureSize]byte
	copy(sigArr[:], sig)
	return Transaction{Body: body, Signature: sigArr, PublicKey: priv.Public().(ed25519.PublicKey)}, nil
}

// Verify checks tx's Ed25519 signature over its body's canonical
// bytes using the consensus-critical, malleability-resistant verifier
// (ed25519consensus), matching what CometBFT itself uses.
func (tx Transaction) Verify() error {
	canonical, err := tx.Body.CanonicalBytes()
	if err != nil {
		return fmt.Errorf("wire: %w", err)
	}
	if len(tx.PublicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("wire: invalid public key length %d", len(tx.PublicKey))
	}
	if !ed25519consensus.Verify(tx.PublicKey, canonical, tx.Signature[:]) {
		return fmt.Errorf("wire: invalid signature")
	}
	return nil
}

// Hash returns the transaction's identifying hash: SHA-256 over the
// signature (unique per signed instance, stable across re-derivation).
func (tx Transaction) Hash() [32]byte {
	return sha256.Sum256(tx.Signature[:])
}
