package actions

import (
	"fmt"

	"github.com/astriaorg/astria-sub012/internal/address"
	"github.com/astriaorg/astria-sub012/internal/asset"
	"github.com/astriaorg/astria-sub012/internal/sequencer/bridge"
	"github.com/astriaorg/astria-sub012/internal/sequencer/fees"
	"github.com/astriaorg/astria-sub012/internal/sequencer/state"
)

// BridgeSudoChange updates a bridge account's sudo/withdrawer
// addresses, authorized by the bridge's current sudo_address (spec
// §4.1 authorization policy table). Nil fields are left unchanged.
type BridgeSudoChange struct {
	BridgeAddress     address.Address
	NewSudoAddress    *address.Address
	NewWithdrawer     *address.Address
	FeeAsset          asset.IBCDenom
}

func (a *BridgeSudoChange) Name() string { return fees.ActionBridgeSudoChange }

func (a *BridgeSudoChange) StatelessCheck() error { return nil }

func (a *BridgeSudoChange) Authorize(ctx ExecContext, s *state.State) error {
	acc, err := bridge.Get(s, a.BridgeAddress)
	if err != nil {
		return err
	}
	if acc.SudoAddress.String() != ctx.Signer.String() {
		return fmt.Errorf("bridge sudo change: signer %s is not the sudo address %s", ctx.Signer, acc.SudoAddress)
	}
	return nil
}

func (a *BridgeSudoChange) Execute(ctx ExecContext, s *state.State) ([]Event, error) {
	if a.NewSudoAddress != nil {
		bridge.SetSudoAddress(s, a.BridgeAddress, *a.NewSudoAddress)
	}
	if a.NewWithdrawer != nil {
		bridge.SetWithdrawerAddress(s, a.BridgeAddress, *a.NewWithdrawer)
	}

	component, err := fees.Get(s, a.Name())
	if err != nil {
		return nil, err
	}
	fee := component.Fee(0)
	if err := s.Debit(ctx.Signer, a.FeeAsset, fee); err != nil {
		return nil, fmt.Errorf("bridge sudo change: debit fee: %w", err)
	}
	if err := s.AddBlockFee(a.FeeAsset, fee); err != nil {
		return nil, err
	}

	return []Event{{
		Type: "tx.fees",
		Attributes: map[string]string{
			AttrActionName:           a.Name(),
			AttrAsset:                a.FeeAsset.String(),
			AttrFeeAmount:            fee.String(),
			AttrSourceTransactionID:  fmt.Sprintf("%x", ctx.TxHash),
			AttrSourceActionIndex:    fmt.Sprintf("%d", ctx.ActionIndex),
			AttrPositionInTransaction: fmt.Sprintf("%d", ctx.ActionIndex),
		},
	}}, nil
}
