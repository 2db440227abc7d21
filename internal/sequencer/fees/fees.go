// Package fees implements the per-action fee component model of
// spec §3: for each action variant, a (base, multiplier) pair and the
// length-dependent measure used to compute the fee actually owed.
package fees

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"

	"github.com/astriaorg/astria-sub012/internal/sequencer/state"
	"github.com/astriaorg/astria-sub012/internal/storage"
)

// Component is the (base, multiplier) pair for one action variant.
type Component struct {
	Base       math.Int `json:"base"`
	Multiplier math.Int `json:"multiplier"`
}

// Fee computes base + multiplier*measure, the fee owed for an action
// whose length-dependent measure (encoded size, deposit event size,
// etc.) is measure.
func (c Component) Fee(measure uint64) math.Int {
	return c.Base.Add(c.Multiplier.MulRaw(int64(measure)))
}

type storedComponent struct {
	Base       string `json:"base"`
	Multiplier string `json:"multiplier"`
}

func (c Component) marshal() ([]byte, error) {
	return json.Marshal(storedComponent{Base: c.Base.String(), Multiplier: c.Multiplier.String()})
}

func unmarshalComponent(raw []byte) (Component, error) {
	var sc storedComponent
	if err := json.Unmarshal(raw, &sc); err != nil {
		return Component{}, fmt.Errorf("fees: unmarshal component: %w", err)
	}
	base, ok := math.NewIntFromString(sc.Base)
	if !ok {
		return Component{}, fmt.Errorf("fees: invalid base %q", sc.Base)
	}
	mult, ok := math.NewIntFromString(sc.Multiplier)
	if !ok {
		return Component{}, fmt.Errorf("fees: invalid multiplier %q", sc.Multiplier)
	}
	return Component{Base: base, Multiplier: mult}, nil
}

// Get reads the currently configured fee component for actionName.
func Get(s *state.State, actionName string) (Component, error) {
	raw, err := s.Snapshot.Get(storage.FeeComponentKey(actionName))
	if err != nil {
		return Component{}, fmt.Errorf("fees: get %s: %w", actionName, err)
	}
	if raw == nil {
		return Component{Base: math.ZeroInt(), Multiplier: math.ZeroInt()}, nil
	}
	return unmarshalComponent(raw)
}

// Set overwrites exactly the component named by actionName, leaving
// all other components untouched — spec §4.1 "FeeChange overwrites
// exactly the component named by the variant".
func Set(s *state.State, actionName string, c Component) error {
	raw, err := c.marshal()
	if err != nil {
		return fmt.Errorf("fees: set %s: %w", actionName, err)
	}
	s.Delta.Put(storage.FeeComponentKey(actionName), raw)
	return nil
}

// IsAllowedAsset reports whether ibcAsset may be used to pay fees.
func IsAllowedAsset(s *state.State, ibcAssetKey string) (bool, error) {
	raw, err := s.Snapshot.Get(storage.FeeAssetKey(ibcAssetKey))
	if err != nil {
		return false, fmt.Errorf("fees: is allowed asset: %w", err)
	}
	return raw != nil, nil
}

// SetAllowedAsset stages ibcAssetKey as fee-payable (or not, if !allowed).
func SetAllowedAsset(s *state.State, ibcAssetKey string, allowed bool) {
	if allowed {
		s.Delta.Put(storage.FeeAssetKey(ibcAssetKey), []byte{1})
	} else {
		s.Delta.Delete(storage.FeeAssetKey(ibcAssetKey))
	}
}

// Action names used as Component keys; kept centralized so action
// handlers and genesis/FeeChange stay in sync.
const (
	ActionTransfer                = "Transfer"
	ActionRollupDataSubmission    = "RollupDataSubmission"
	ActionInitBridgeAccount       = "InitBridgeAccount"
	ActionBridgeLock              = "BridgeLock"
	ActionBridgeUnlock            = "BridgeUnlock"
	ActionBridgeSudoChange        = "BridgeSudoChange"
	ActionIcs20Withdrawal         = "Ics20Withdrawal"
	ActionIbcRelay                = "IbcRelay"
	ActionIbcRelayerChange        = "IbcRelayerChange"
	ActionIbcSudoChange           = "IbcSudoChange"
	ActionSudoAddressChange       = "SudoAddressChange"
	ActionValidatorUpdate         = "ValidatorUpdate"
	ActionFeeChange               = "FeeChange"
	ActionFeeAssetChange          = "FeeAssetChange"
)
