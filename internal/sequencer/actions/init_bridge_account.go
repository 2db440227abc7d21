package actions

import (
	"fmt"

	"github.com/astriaorg/astria-sub012/internal/address"
	"github.com/astriaorg/astria-sub012/internal/asset"
	"github.com/astriaorg/astria-sub012/internal/primitives"
	"github.com/astriaorg/astria-sub012/internal/sequencer/bridge"
	"github.com/astriaorg/astria-sub012/internal/sequencer/fees"
	"github.com/astriaorg/astria-sub012/internal/sequencer/state"
)

// InitBridgeAccount promotes the signer to a bridge account. If
// SudoAddress/WithdrawerAddress are the zero value they default to
// the signer (spec §4.1 "InitBridgeAccount").
type InitBridgeAccount struct {
	RollupID          primitives.RollupID
	Asset             asset.IBCDenom
	SudoAddress       *address.Address
	WithdrawerAddress *address.Address
	FeeAsset          asset.IBCDenom
}

func (a *InitBridgeAccount) Name() string { return fees.ActionInitBridgeAccount }

func (a *InitBridgeAccount) StatelessCheck() error { return nil }

func (a *InitBridgeAccount) Authorize(ExecContext, *state.State) error { return nil } // open; rejection is one-way promotion, enforced in Execute

func (a *InitBridgeAccount) Execute(ctx ExecContext, s *state.State) ([]Event, error) {
	sudo := ctx.Signer
	if a.SudoAddress != nil {
		sudo = *a.SudoAddress
	}
	withdrawer := ctx.Signer
	if a.WithdrawerAddress != nil {
		withdrawer = *a.WithdrawerAddress
	}

	if err := bridge.Init(s, ctx.Signer, bridge.Account{
		RollupID:          a.RollupID,
		Asset:             a.Asset,
		SudoAddress:       sudo,
		WithdrawerAddress: withdrawer,
	}); err != nil {
		return nil, err
	}

	component, err := fees.Get(s, a.Name())
	if err != nil {
		return nil, err
	}
	fee := component.Fee(0)
	if err := s.Debit(ctx.Signer, a.FeeAsset, fee); err != nil {
		return nil, fmt.Errorf("init bridge account: debit fee: %w", err)
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
