// Package verify checks Celestia-derived sequencer header blobs against
// CometBFT commits and validator sets before the firm path forwards
// them to the executor, grounded on
// original_source/crates/astria-conductor/src/celestia/verify.rs
// (VerificationMeta::fetch, BlobVerifier.verify_header_blob).
package verify

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/celestiaorg/nmt"
	cmttypes "github.com/cometbft/cometbft/types"
	lru "github.com/hashicorp/golang-lru"
)

// HeaderBlob is the minimal shape of a sequencer header blob pulled
// back from Celestia that the firm path needs verified.
//
// RollupNamespace/RollupDataRoot carry the Celestia-side namespaced
// merkle root the paired rollup-data blob must prove inclusion under
// (spec §6 "rollup-ID->root proof, per-rollup merkle proofs"), sourced
// from celestia-node's blob proof RPC in a full deployment the same
// way HeaderBlob itself is sourced from a Celestia blob read.
type HeaderBlob struct {
	SequencerHeight int64
	BlockHash       []byte
	ChainID         string
	RollupNamespace []byte
	RollupDataRoot  []byte
}

// NamespaceInclusionProof pairs an NMT proof with the namespace it was
// generated for, the shape celestia-node's blob.GetProof RPC returns
// for a blob's inclusion in its Celestia block's namespaced merkle
// tree.
type NamespaceInclusionProof struct {
	Namespace []byte
	Proof     nmt.Proof
}

// SequencerClient is the read-only CometBFT RPC surface verification
// needs: the commit at a height and the validator set that signed it
// (fetched at height-1, per verify.rs's "validate a Celestia-derived
// Sequencer block" comment).
type SequencerClient interface {
	Commit(ctx context.Context, height int64) (*cmttypes.SignedHeader, error)
	Validators(ctx context.Context, height int64) (*cmttypes.ValidatorSet, error)
}

type verificationMeta struct {
	header *cmttypes.SignedHeader
}

// Verifier caches, per sequencer height, the commit/validator-set pair
// needed to verify a header blob at that height, avoiding refetching
// it once for the header blob and again for its paired rollup-data
// blob (verify.rs's `Cache<SequencerHeight, VerificationMeta>`, sized
// for roughly 1,000 Celestia heights at ~6 sequencer heights each).
type Verifier struct {
	client  SequencerClient
	cache   *lru.Cache
	chainID string
}

// NewVerifier constructs a Verifier that rejects any header blob whose
// chain ID does not equal chainID (spec §4.5 step 4, "a fatal
// configuration error").
func NewVerifier(client SequencerClient, chainID string) (*Verifier, error) {
	cache, err := lru.New(6000)
	if err != nil {
		return nil, fmt.Errorf("conductor: verify: building cache: %w", err)
	}
	return &Verifier{client: client, cache: cache, chainID: chainID}, nil
}

// ChainIDMismatchError is returned when a header blob's chain ID does
// not match the configured sequencer chain ID. The caller must treat
// this as fatal (spec §4.5 step 4) rather than simply dropping the
// blob like other verification failures.
type ChainIDMismatchError struct {
	Expected, Got string
}

func (e *ChainIDMismatchError) Error() string {
	return fmt.Sprintf("conductor: verify: expected cometbft chain id %q, got %q", e.Expected, e.Got)
}

// VerifyHeaderBlob runs the three-step check from spec §4.5: Byzantine
// quorum over the commit, stored block-hash equality, and chain-id
// equality. A non-nil *ChainIDMismatchError means the caller should
// halt; any other error means the blob should be dropped and the
// height retried later. On success it returns the verified header's
// timestamp, so the firm path can pass it to the executor without a
// second round trip.
func (v *Verifier) VerifyHeaderBlob(ctx context.Context, blob HeaderBlob) (time.Time, error) {
	if blob.SequencerHeight == 0 {
		return time.Time{}, fmt.Errorf("conductor: verify: cannot verify sequencer height zero")
	}

	meta, err := v.fetch(ctx, blob.SequencerHeight)
	if err != nil {
		return time.Time{}, fmt.Errorf("conductor: verify: fetching verification meta for height %d: %w", blob.SequencerHeight, err)
	}

	if !bytes.Equal(meta.header.Commit.BlockID.Hash, blob.BlockHash) {
		return time.Time{}, fmt.Errorf("conductor: verify: block hash %x stored in blob does not match sequencer block hash %x",
			blob.BlockHash, meta.header.Commit.BlockID.Hash)
	}

	if blob.ChainID != v.chainID {
		return time.Time{}, &ChainIDMismatchError{Expected: v.chainID, Got: blob.ChainID}
	}

	return meta.header.Header.Time, nil
}

// VerifyRollupInclusion checks that rollupData is the leaf included
// under namespace beneath root via proof, closing the gap a bare
// header-blob check leaves open: a rollup-data blob substituted under
// the correct namespace would otherwise pass undetected since nothing
// ties its bytes back to what the sequencer actually committed.
// header must already have passed VerifyHeaderBlob.
func VerifyRollupInclusion(header HeaderBlob, rollupData []byte, proof NamespaceInclusionProof) error {
	if !bytes.Equal(proof.Namespace, header.RollupNamespace) {
		return fmt.Errorf("conductor: verify: proof namespace %x does not match rollup namespace %x", proof.Namespace, header.RollupNamespace)
	}
	if !proof.Proof.VerifyNamespace(sha256.New(), header.RollupNamespace, [][]byte{rollupData}, header.RollupDataRoot) {
		return fmt.Errorf("conductor: verify: namespace inclusion proof failed for sequencer height %d", header.SequencerHeight)
	}
	return nil
}

// fetch loads (and caches) the signed header for height, verifying
// quorum over its commit using the validator set at height-1 before
// caching it — an already-cached entry is known-quorate and is
// returned without reverifying.
func (v *Verifier) fetch(ctx context.Context, height int64) (verificationMeta, error) {
	if cached, ok := v.cache.Get(height); ok {
		return cached.(verificationMeta), nil
	}

	header, err := v.client.Commit(ctx, height)
	if err != nil {
		return verificationMeta{}, fmt.Errorf("fetching commit: %w", err)
	}
	validators, err := v.client.Validators(ctx, height-1)
	if err != nil {
		return verificationMeta{}, fmt.Errorf("fetching validators at height %d: %w", height-1, err)
	}

	if err := validators.VerifyCommitLight(header.Header.ChainID, header.Commit.BlockID, header.Header.Height, header.Commit); err != nil {
		return verificationMeta{}, fmt.Errorf("commit at height %d lacks quorum under validator set at height %d: %w", height, height-1, err)
	}

	meta := verificationMeta{header: header}
	v.cache.Add(height, meta)
	return meta, nil
}
