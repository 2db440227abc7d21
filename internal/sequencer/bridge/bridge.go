// Package bridge implements bridge account promotion, deposits, and
// the per-bridge withdrawal event journal described in spec §3/§4.1.
package bridge

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"

	"github.com/astriaorg/astria-sub012/internal/address"
	"github.com/astriaorg/astria-sub012/internal/asset"
	"github.com/astriaorg/astria-sub012/internal/primitives"
	"github.com/astriaorg/astria-sub012/internal/sequencer/state"
	"github.com/astriaorg/astria-sub012/internal/storage"
)

// Account is an EOA promoted to a bridge, as described in spec §3.
type Account struct {
	RollupID          primitives.RollupID
	Asset             asset.IBCDenom
	SudoAddress       address.Address
	WithdrawerAddress address.Address
}

// Deposit is generated by BridgeLock execution, never directly by a
// user (spec §3).
type Deposit struct {
	BridgeAddress           address.Address
	RollupID                primitives.RollupID
	Amount                  math.Int
	Asset                   asset.IBCDenom
	DestinationChainAddress string
	SourceTransactionID     [32]byte
	SourceActionIndex       uint32
}

type encodedDeposit struct {
	BridgeAddress           string `json:"bridge_address"`
	RollupID                string `json:"rollup_id"`
	Amount                  string `json:"amount"`
	Asset                   string `json:"asset"`
	DestinationChainAddress string `json:"destination_chain_address"`
	SourceTransactionID     string `json:"source_transaction_id"`
	SourceActionIndex       uint32 `json:"source_action_index"`
}

// Marshal encodes a Deposit for inclusion in a block's per-rollup
// deposit list (spec §6 "one rollup-data blob per (block, rollup)").
func (d Deposit) Marshal() ([]byte, error) {
	return json.Marshal(encodedDeposit{
		BridgeAddress:           d.BridgeAddress.String(),
		RollupID:                d.RollupID.String(),
		Amount:                  d.Amount.String(),
		Asset:                   d.Asset.String(),
		DestinationChainAddress: d.DestinationChainAddress,
		SourceTransactionID:     fmt.Sprintf("%x", d.SourceTransactionID),
		SourceActionIndex:       d.SourceActionIndex,
	})
}

// UnmarshalDeposit decodes a Deposit previously produced by Marshal.
func UnmarshalDeposit(raw []byte) (Deposit, error) {
	var ed encodedDeposit
	if err := json.Unmarshal(raw, &ed); err != nil {
		return Deposit{}, fmt.Errorf("bridge: unmarshal deposit: %w", err)
	}
	bridgeAddr, err := address.ParseBech32m(ed.BridgeAddress)
	if err != nil {
		return Deposit{}, fmt.Errorf("bridge: unmarshal deposit bridge address: %w", err)
	}
	amount, ok := math.NewIntFromString(ed.Amount)
	if !ok {
		return Deposit{}, fmt.Errorf("bridge: unmarshal deposit amount %q", ed.Amount)
	}
	ibcAsset, err := asset.ParseIBC(ed.Asset)
	if err != nil {
		return Deposit{}, fmt.Errorf("bridge: unmarshal deposit asset: %w", err)
	}
	rollupRaw, err := hex.DecodeString(ed.RollupID)
	if err != nil || len(rollupRaw) != primitives.RollupIDLength {
		return Deposit{}, fmt.Errorf("bridge: unmarshal deposit rollup id %q", ed.RollupID)
	}
	txIDRaw, err := hex.DecodeString(ed.SourceTransactionID)
	if err != nil || len(txIDRaw) != 32 {
		return Deposit{}, fmt.Errorf("bridge: unmarshal deposit source transaction id %q", ed.SourceTransactionID)
	}
	d := Deposit{
		BridgeAddress:           bridgeAddr,
		Amount:                  amount,
		Asset:                   ibcAsset,
		DestinationChainAddress: ed.DestinationChainAddress,
		SourceActionIndex:       ed.SourceActionIndex,
	}
	copy(d.RollupID[:], rollupRaw)
	copy(d.SourceTransactionID[:], txIDRaw)
	return d, nil
}

// IsBridge reports whether addr has been promoted to a bridge account.
func IsBridge(s *state.State, addr address.Address) (bool, error) {
	raw, err := s.Snapshot.Get(storage.BridgeRollupIDKey(addr.String()))
	if err != nil {
		return false, fmt.Errorf("bridge: is bridge: %w", err)
	}
	return raw != nil, nil
}

// Get reads a bridge account's fields. Callers must check IsBridge
// first; Get returns an error if addr was never promoted.
func Get(s *state.State, addr address.Address) (Account, error) {
	rollupRaw, err := s.Snapshot.Get(storage.BridgeRollupIDKey(addr.String()))
	if err != nil {
		return Account{}, fmt.Errorf("bridge: get rollup id: %w", err)
	}
	if rollupRaw == nil {
		return Account{}, fmt.Errorf("bridge: %s is not a bridge account", addr)
	}
	var rollupID primitives.RollupID
	copy(rollupID[:], rollupRaw)

	assetRaw, err := s.Snapshot.Get(storage.BridgeAssetKey(addr.String()))
	if err != nil {
		return Account{}, fmt.Errorf("bridge: get asset: %w", err)
	}
	ibcAsset, err := asset.ParseIBC(string(assetRaw))
	if err != nil {
		return Account{}, fmt.Errorf("bridge: parse asset: %w", err)
	}

	sudoRaw, err := s.Snapshot.Get(storage.BridgeSudoAddressKey(addr.String()))
	if err != nil {
		return Account{}, fmt.Errorf("bridge: get sudo: %w", err)
	}
	sudo, err := address.ParseBech32m(string(sudoRaw))
	if err != nil {
		return Account{}, fmt.Errorf("bridge: parse sudo: %w", err)
	}

	withdrawerRaw, err := s.Snapshot.Get(storage.BridgeWithdrawerAddressKey(addr.String()))
	if err != nil {
		return Account{}, fmt.Errorf("bridge: get withdrawer: %w", err)
	}
	withdrawer, err := address.ParseBech32m(string(withdrawerRaw))
	if err != nil {
		return Account{}, fmt.Errorf("bridge: parse withdrawer: %w", err)
	}

	return Account{
		RollupID:          rollupID,
		Asset:             ibcAsset,
		SudoAddress:        sudo,
		WithdrawerAddress: withdrawer,
	}, nil
}

// Init promotes addr to a bridge account. Rejects if addr has already
// been promoted — promotion is one-way (spec §3/§4.1 InitBridgeAccount).
func Init(s *state.State, addr address.Address, acc Account) error {
	already, err := IsBridge(s, addr)
	if err != nil {
		return err
	}
	if already {
		return fmt.Errorf("bridge: %s has already been promoted to a bridge account", addr)
	}

	s.Delta.Put(storage.BridgeRollupIDKey(addr.String()), acc.RollupID.Bytes())
	s.Delta.Put(storage.BridgeAssetKey(addr.String()), []byte(acc.Asset.String()))
	s.Delta.Put(storage.BridgeSudoAddressKey(addr.String()), []byte(acc.SudoAddress.String()))
	s.Delta.Put(storage.BridgeWithdrawerAddressKey(addr.String()), []byte(acc.WithdrawerAddress.String()))
	return nil
}

// SetSudoAddress stages a bridge's sudo address, used by BridgeSudoChange.
func SetSudoAddress(s *state.State, addr, newSudo address.Address) {
	s.Delta.Put(storage.BridgeSudoAddressKey(addr.String()), []byte(newSudo.String()))
}

// SetWithdrawerAddress stages a bridge's withdrawer address, used by
// BridgeSudoChange.
func SetWithdrawerAddress(s *state.State, addr, newWithdrawer address.Address) {
	s.Delta.Put(storage.BridgeWithdrawerAddressKey(addr.String()), []byte(newWithdrawer.String()))
}

type withdrawalEvent struct {
	RollupBlockNumber uint64 `json:"rollup_block_number"`
}

// RecordWithdrawalEvent records (eventID, rollupBlockNumber) in
// bridgeAddr's withdrawal journal, first observation only. Returns an
// error if eventID was already recorded under this bridge (spec §3
// Withdrawal journal, §8 "BridgeUnlock idempotence of duplicates").
func RecordWithdrawalEvent(s *state.State, bridgeAddr address.Address, eventID string, rollupBlockNumber uint64) error {
	key := storage.BridgeWithdrawalEventKey(bridgeAddr.String(), eventID)
	existing, err := s.Snapshot.Get(key)
	if err != nil {
		return fmt.Errorf("bridge: withdrawal event lookup: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("bridge: duplicate withdrawal event id %q for bridge %s", eventID, bridgeAddr)
	}
	raw, err := json.Marshal(withdrawalEvent{RollupBlockNumber: rollupBlockNumber})
	if err != nil {
		return fmt.Errorf("bridge: marshal withdrawal event: %w", err)
	}
	s.Delta.Put(key, raw)
	return nil
}
