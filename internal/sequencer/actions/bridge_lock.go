package actions

import (
	"fmt"

	"cosmossdk.io/math"

	"github.com/astriaorg/astria-sub012/internal/address"
	"github.com/astriaorg/astria-sub012/internal/asset"
	"github.com/astriaorg/astria-sub012/internal/sequencer/bridge"
	"github.com/astriaorg/astria-sub012/internal/sequencer/fees"
	"github.com/astriaorg/astria-sub012/internal/sequencer/state"
)

// BridgeLock transfers Amount of Asset from the signer to a bridge
// account, then emits a Deposit for the bridge's rollup (spec §4.1
// "BridgeLock"). DestinationChainAddress is opaque rollup-side data.
type BridgeLock struct {
	To                      address.Address
	Amount                  math.Int
	Asset                   asset.IBCDenom
	DestinationChainAddress string
	FeeAsset                asset.IBCDenom
}

func (a *BridgeLock) Name() string { return fees.ActionBridgeLock }

func (a *BridgeLock) StatelessCheck() error {
	if a.Amount.IsNil() || !a.Amount.IsPositive() {
		return fmt.Errorf("bridge lock: amount must be positive")
	}
	if a.DestinationChainAddress == "" {
		return fmt.Errorf("bridge lock: destination chain address must not be empty")
	}
	return nil
}

func (a *BridgeLock) Authorize(ExecContext, *state.State) error { return nil } // open to any signer

func (a *BridgeLock) Execute(ctx ExecContext, s *state.State) ([]Event, error) {
	isBridge, err := bridge.IsBridge(s, a.To)
	if err != nil {
		return nil, err
	}
	if !isBridge {
		return nil, fmt.Errorf("bridge lock: %s is not a bridge account", a.To)
	}
	acc, err := bridge.Get(s, a.To)
	if err != nil {
		return nil, err
	}
	if acc.Asset.String() != a.Asset.String() {
		return nil, fmt.Errorf("bridge lock: asset %s does not match bridge's configured asset %s", a.Asset, acc.Asset)
	}

	component, err := fees.Get(s, a.Name())
	if err != nil {
		return nil, err
	}
	// Deposit event size measure: rollup id + amount + two addresses'
	// worth of opaque bytes, approximated by the destination string.
	fee := component.Fee(uint64(len(a.DestinationChainAddress)))

	if err := s.Debit(ctx.Signer, a.Asset, a.Amount); err != nil {
		return nil, fmt.Errorf("bridge lock: debit payload: %w", err)
	}
	if err := s.Debit(ctx.Signer, a.FeeAsset, fee); err != nil {
		return nil, fmt.Errorf("bridge lock: debit fee: %w", err)
	}
	if err := s.Credit(a.To, a.Asset, a.Amount); err != nil {
		return nil, fmt.Errorf("bridge lock: credit bridge: %w", err)
	}
	if err := s.AddBlockFee(a.FeeAsset, fee); err != nil {
		return nil, err
	}

	deposit := bridge.Deposit{
		BridgeAddress:           a.To,
		RollupID:                acc.RollupID,
		Amount:                  a.Amount,
		Asset:                   a.Asset,
		DestinationChainAddress: a.DestinationChainAddress,
		SourceTransactionID:     ctx.TxHash,
		SourceActionIndex:       ctx.ActionIndex,
	}
	encoded, err := deposit.Marshal()
	if err != nil {
		return nil, fmt.Errorf("bridge lock: marshal deposit: %w", err)
	}
	s.AppendDeposit(acc.RollupID, encoded)

	return []Event{{
		Type: "tx.deposit",
		Attributes: map[string]string{
			AttrActionName:           a.Name(),
			AttrAsset:                a.Asset.String(),
			AttrFeeAmount:            fee.String(),
			AttrSourceTransactionID:  fmt.Sprintf("%x", ctx.TxHash),
			AttrSourceActionIndex:    fmt.Sprintf("%d", ctx.ActionIndex),
			AttrPositionInTransaction: fmt.Sprintf("%d", ctx.ActionIndex),
		},
	}}, nil
}
