// Package state provides the typed accessor layer every action
// handler and the app's ABCI methods execute against: a thin wrapper
// over a storage.Snapshot (reads, possibly overlaid with an
// in-progress storage.Delta) and that same Delta (writes). This is the
// "speculative state" spec §4.1 says PrepareProposal/ProcessProposal
// simulate transactions against.
package state

import (
	"encoding/binary"
	"fmt"

	"cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"

	"github.com/astriaorg/astria-sub012/internal/address"
	"github.com/astriaorg/astria-sub012/internal/asset"
	"github.com/astriaorg/astria-sub012/internal/primitives"
	"github.com/astriaorg/astria-sub012/internal/storage"
)

// State bundles a read snapshot with the delta collecting this
// in-progress block's writes. It is single-threaded by construction:
// the ABCI consensus goroutine owns one State per block attempt.
//
// RollupTxs/RollupDeposits accumulate the current block's per-rollup
// contributions in execution order as actions run; block assembly
// (spec §4.1) reads them back out once the block is fully simulated.
// They live only in memory for the duration of one block attempt —
// never persisted directly — so action packages can append to them
// without importing the bridge package's Deposit type and creating an
// import cycle; deposits are appended pre-encoded.
type State struct {
	Snapshot *storage.Snapshot
	Delta    *storage.Delta

	Prefixes address.Prefixes
	ChainID  string

	Fees   *asset.TraceRegistry
	Height int64

	RollupTxs      map[primitives.RollupID][][]byte
	RollupDeposits map[primitives.RollupID][][]byte

	// PendingValidatorUpdates accumulates this block's ValidatorUpdate
	// actions in execution order; FinalizeBlock reads them back out to
	// populate its ABCI response.
	PendingValidatorUpdates []abci.ValidatorUpdate
}

// New builds a State for executing a block's worth of transactions
// against snap, recording writes into delta.
func New(snap *storage.Snapshot, delta *storage.Delta, prefixes address.Prefixes, chainID string, traces *asset.TraceRegistry, height int64) *State {
	return &State{
		Snapshot:       snap.WithOverlay(delta),
		Delta:          delta,
		Prefixes:       prefixes,
		ChainID:        chainID,
		Fees:           traces,
		Height:         height,
		RollupTxs:      make(map[primitives.RollupID][][]byte),
		RollupDeposits: make(map[primitives.RollupID][][]byte),
	}
}

// AppendRollupData records data for rollupID in execution order.
func (s *State) AppendRollupData(rollupID primitives.RollupID, data []byte) {
	s.RollupTxs[rollupID] = append(s.RollupTxs[rollupID], data)
}

// AppendDeposit records a pre-encoded Deposit for rollupID in
// execution order (spec §4.1 "BridgeLock ... emits a Deposit appended
// to the block's per-rollup deposit list").
func (s *State) AppendDeposit(rollupID primitives.RollupID, encodedDeposit []byte) {
	s.RollupDeposits[rollupID] = append(s.RollupDeposits[rollupID], encodedDeposit)
}

// AppendValidatorUpdate records a validator set change for surfacing
// in the current block's FinalizeBlock response.
func (s *State) AppendValidatorUpdate(update abci.ValidatorUpdate) {
	s.PendingValidatorUpdates = append(s.PendingValidatorUpdates, update)
}

// Nonce returns addr's current account nonce (0 if the account has
// never transacted).
func (s *State) Nonce(addr address.Address) (uint32, error) {
	raw, err := s.Snapshot.Get(storage.AccountNonceKey(addr.String()))
	if err != nil {
		return 0, fmt.Errorf("state: nonce: %w", err)
	}
	if raw == nil {
		return 0, nil
	}
	return binary.BigEndian.Uint32(raw), nil
}

// SetNonce stages addr's nonce.
func (s *State) SetNonce(addr address.Address, nonce uint32) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, nonce)
	s.Delta.Put(storage.AccountNonceKey(addr.String()), buf)
}

// Balance returns addr's balance of ibcAsset (zero if never credited).
func (s *State) Balance(addr address.Address, ibcAsset asset.IBCDenom) (math.Int, error) {
	raw, err := s.Snapshot.Get(storage.AccountBalanceKey(addr.String(), ibcAsset.String()))
	if err != nil {
		return math.Int{}, fmt.Errorf("state: balance: %w", err)
	}
	if raw == nil {
		return math.ZeroInt(), nil
	}
	var amt math.Int
	if err := amt.Unmarshal(raw); err != nil {
		return math.Int{}, fmt.Errorf("state: balance unmarshal: %w", err)
	}
	return amt, nil
}

// SetBalance stages addr's balance of ibcAsset.
func (s *State) SetBalance(addr address.Address, ibcAsset asset.IBCDenom, amount math.Int) error {
	raw, err := amount.Marshal()
	if err != nil {
		return fmt.Errorf("state: balance marshal: %w", err)
	}
	s.Delta.Put(storage.AccountBalanceKey(addr.String(), ibcAsset.String()), raw)
	return nil
}

// Debit subtracts amount from addr's balance of ibcAsset, returning an
// error rather than allowing an underflow (spec §8 "unsigned
// saturating arithmetic ... verify no underflow occurs").
func (s *State) Debit(addr address.Address, ibcAsset asset.IBCDenom, amount math.Int) error {
	bal, err := s.Balance(addr, ibcAsset)
	if err != nil {
		return err
	}
	if bal.LT(amount) {
		return fmt.Errorf("state: insufficient balance: have %s, need %s", bal, amount)
	}
	return s.SetBalance(addr, ibcAsset, bal.Sub(amount))
}

// Credit adds amount to addr's balance of ibcAsset.
func (s *State) Credit(addr address.Address, ibcAsset asset.IBCDenom, amount math.Int) error {
	bal, err := s.Balance(addr, ibcAsset)
	if err != nil {
		return err
	}
	return s.SetBalance(addr, ibcAsset, bal.Add(amount))
}

// ChainSudoAddress returns the chain's configured sudo address.
func (s *State) ChainSudoAddress() (address.Address, error) {
	raw, err := s.Snapshot.Get(storage.ChainSudoAddressKey())
	if err != nil || raw == nil {
		return address.Address{}, fmt.Errorf("state: chain sudo address not set")
	}
	return address.ParseBech32m(string(raw))
}

// SetChainSudoAddress stages the chain sudo address.
func (s *State) SetChainSudoAddress(addr address.Address) {
	s.Delta.Put(storage.ChainSudoAddressKey(), []byte(addr.String()))
}

// IBCSudoAddress returns the chain's configured IBC sudo address.
func (s *State) IBCSudoAddress() (address.Address, error) {
	raw, err := s.Snapshot.Get(storage.IBCSudoAddressKey())
	if err != nil || raw == nil {
		return address.Address{}, fmt.Errorf("state: ibc sudo address not set")
	}
	return address.ParseBech32m(string(raw))
}

// SetIBCSudoAddress stages the IBC sudo address.
func (s *State) SetIBCSudoAddress(addr address.Address) {
	s.Delta.Put(storage.IBCSudoAddressKey(), []byte(addr.String()))
}

// IsIBCRelayer reports whether addr is a member of the IBC relayer set.
func (s *State) IsIBCRelayer(addr address.Address) (bool, error) {
	raw, err := s.Snapshot.Get(storage.IBCRelayerKey(addr.String()))
	if err != nil {
		return false, err
	}
	return raw != nil, nil
}

// AddIBCRelayer stages adding addr to the IBC relayer set.
func (s *State) AddIBCRelayer(addr address.Address) {
	s.Delta.Put(storage.IBCRelayerKey(addr.String()), []byte{1})
}

// RemoveIBCRelayer stages removing addr from the IBC relayer set.
func (s *State) RemoveIBCRelayer(addr address.Address) {
	s.Delta.Delete(storage.IBCRelayerKey(addr.String()))
}

// AddBlockFee accumulates amount of ibcAsset into the current block's
// non-verifiable fee total (SPEC_FULL.md §3.1 block-fee tracking).
func (s *State) AddBlockFee(ibcAsset asset.IBCDenom, amount math.Int) error {
	key := storage.BlockFeesKey(s.Height, ibcAsset.String())
	raw, err := s.Snapshot.GetNonVerifiable(key)
	if err != nil {
		return err
	}
	total := math.ZeroInt()
	if raw != nil {
		if err := total.Unmarshal(raw); err != nil {
			return fmt.Errorf("state: block fee unmarshal: %w", err)
		}
	}
	total = total.Add(amount)
	out, err := total.Marshal()
	if err != nil {
		return fmt.Errorf("state: block fee marshal: %w", err)
	}
	s.Delta.PutNonVerifiable(key, out)
	return nil
}
