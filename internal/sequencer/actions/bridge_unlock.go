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

// BridgeUnlock burns a bridge's locked funds back to a destination
// account on the sequencer, authorized only by the bridge's
// withdrawer_address, with duplicate-event protection (spec §4.1
// "BridgeUnlock").
type BridgeUnlock struct {
	BridgeAddress          address.Address
	To                     address.Address
	Amount                 math.Int
	Asset                  asset.IBCDenom
	RollupWithdrawalEventID string
	RollupBlockNumber      uint64
	Memo                   string
	FeeAsset               asset.IBCDenom
}

func (a *BridgeUnlock) Name() string { return fees.ActionBridgeUnlock }

func (a *BridgeUnlock) StatelessCheck() error {
	if a.Amount.IsNil() || !a.Amount.IsPositive() {
		return fmt.Errorf("bridge unlock: amount must be positive")
	}
	if len(a.RollupWithdrawalEventID) == 0 || len(a.RollupWithdrawalEventID) > maxWithdrawalEventIDLength {
		return fmt.Errorf("bridge unlock: withdrawal event id must be 1-%d bytes", maxWithdrawalEventIDLength)
	}
	if len(a.Memo) > maxMemoLength {
		return fmt.Errorf("bridge unlock: memo exceeds %d bytes", maxMemoLength)
	}
	return nil
}

// Authorize requires the signer to be the bridge's withdrawer_address
// (spec §4.1 authorization policy table).
func (a *BridgeUnlock) Authorize(ctx ExecContext, s *state.State) error {
	acc, err := bridge.Get(s, a.BridgeAddress)
	if err != nil {
		return err
	}
	if acc.WithdrawerAddress.String() != ctx.Signer.String() {
		return fmt.Errorf("bridge unlock: signer %s is not the withdrawer address %s", ctx.Signer, acc.WithdrawerAddress)
	}
	return nil
}

func (a *BridgeUnlock) Execute(ctx ExecContext, s *state.State) ([]Event, error) {
	isBridge, err := bridge.IsBridge(s, a.To)
	if err != nil {
		return nil, err
	}
	if isBridge {
		return nil, fmt.Errorf("bridge unlock: destination %s must not itself be a bridge account", a.To)
	}

	if err := bridge.RecordWithdrawalEvent(s, a.BridgeAddress, a.RollupWithdrawalEventID, a.RollupBlockNumber); err != nil {
		return nil, err
	}

	component, err := fees.Get(s, a.Name())
	if err != nil {
		return nil, err
	}
	fee := component.Fee(uint64(len(a.Memo)))

	if err := s.Debit(a.BridgeAddress, a.Asset, a.Amount); err != nil {
		return nil, fmt.Errorf("bridge unlock: debit bridge: %w", err)
	}
	if err := s.Debit(a.BridgeAddress, a.FeeAsset, fee); err != nil {
		return nil, fmt.Errorf("bridge unlock: debit fee: %w", err)
	}
	if err := s.Credit(a.To, a.Asset, a.Amount); err != nil {
		return nil, fmt.Errorf("bridge unlock: credit recipient: %w", err)
	}
	if err := s.AddBlockFee(a.FeeAsset, fee); err != nil {
		return nil, err
	}

	return []Event{{
		Type: "tx.fees",
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
