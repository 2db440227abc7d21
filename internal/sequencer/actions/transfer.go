package actions

import (
	"fmt"

	"cosmossdk.io/math"

	"github.com/astriaorg/astria-sub012/internal/address"
	"github.com/astriaorg/astria-sub012/internal/asset"
	"github.com/astriaorg/astria-sub012/internal/sequencer/fees"
	"github.com/astriaorg/astria-sub012/internal/sequencer/state"
)

// Transfer moves amount of Asset from the signer to To, decrementing
// sender and incrementing recipient atomically. The fee is deducted
// in addition to the payload amount, even when fee and payload share
// the same asset (spec §4.1 "Transfers").
type Transfer struct {
	To     address.Address
	Amount math.Int
	Asset  asset.IBCDenom
	Memo   string
}

func (a *Transfer) Name() string { return fees.ActionTransfer }

func (a *Transfer) StatelessCheck() error {
	if a.Amount.IsNil() || a.Amount.IsNegative() {
		return fmt.Errorf("transfer: amount must be non-negative")
	}
	if len(a.Memo) > maxMemoLength {
		return fmt.Errorf("transfer: memo exceeds %d bytes", maxMemoLength)
	}
	return nil
}

func (a *Transfer) Authorize(ExecContext, *state.State) error { return nil } // open to any signer

func (a *Transfer) Execute(ctx ExecContext, s *state.State) ([]Event, error) {
	component, err := fees.Get(s, a.Name())
	if err != nil {
		return nil, err
	}
	fee := component.Fee(uint64(len(a.Memo)))

	if err := s.Debit(ctx.Signer, a.Asset, a.Amount); err != nil {
		return nil, fmt.Errorf("transfer: debit payload: %w", err)
	}
	if err := s.Debit(ctx.Signer, a.Asset, fee); err != nil {
		return nil, fmt.Errorf("transfer: debit fee: %w", err)
	}
	if err := s.Credit(a.To, a.Asset, a.Amount); err != nil {
		return nil, fmt.Errorf("transfer: credit recipient: %w", err)
	}
	if err := s.AddBlockFee(a.Asset, fee); err != nil {
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
