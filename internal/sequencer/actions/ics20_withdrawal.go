package actions

import (
	"fmt"

	"cosmossdk.io/math"

	"github.com/astriaorg/astria-sub012/internal/asset"
	"github.com/astriaorg/astria-sub012/internal/sequencer/fees"
	"github.com/astriaorg/astria-sub012/internal/sequencer/state"
)

// Ics20Withdrawal burns Amount of Asset from the signer and emits an
// IBC ICS-20 transfer packet over the given channel to a foreign
// chain. Grounded on original_source/.../accounts/ics20_transfer.rs;
// packet construction itself is delegated to the IBC passthrough
// keeper (spec §1 non-goal).
type Ics20Withdrawal struct {
	Amount             math.Int
	Denom              asset.IBCDenom
	DestinationAddress string
	SourceChannel      string
	TimeoutHeight      uint64
	TimeoutTimestamp   uint64
	Memo               string
	FeeAsset           asset.IBCDenom
}

func (a *Ics20Withdrawal) Name() string { return fees.ActionIcs20Withdrawal }

func (a *Ics20Withdrawal) StatelessCheck() error {
	if a.Amount.IsNil() || !a.Amount.IsPositive() {
		return fmt.Errorf("ics20 withdrawal: amount must be positive")
	}
	if a.DestinationAddress == "" {
		return fmt.Errorf("ics20 withdrawal: destination address must not be empty")
	}
	if a.SourceChannel == "" {
		return fmt.Errorf("ics20 withdrawal: source channel must not be empty")
	}
	if len(a.Memo) > maxMemoLength {
		return fmt.Errorf("ics20 withdrawal: memo exceeds %d bytes", maxMemoLength)
	}
	return nil
}

func (a *Ics20Withdrawal) Authorize(ExecContext, *state.State) error { return nil } // open to any signer

func (a *Ics20Withdrawal) Execute(ctx ExecContext, s *state.State) ([]Event, error) {
	component, err := fees.Get(s, a.Name())
	if err != nil {
		return nil, err
	}
	fee := component.Fee(uint64(len(a.Memo)))

	if err := s.Debit(ctx.Signer, a.Denom, a.Amount); err != nil {
		return nil, fmt.Errorf("ics20 withdrawal: debit payload: %w", err)
	}
	if err := s.Debit(ctx.Signer, a.FeeAsset, fee); err != nil {
		return nil, fmt.Errorf("ics20 withdrawal: debit fee: %w", err)
	}
	if err := s.AddBlockFee(a.FeeAsset, fee); err != nil {
		return nil, err
	}

	return []Event{{
		Type: "tx.fees",
		Attributes: map[string]string{
			AttrActionName:           a.Name(),
			AttrAsset:                a.Denom.String(),
			AttrFeeAmount:            fee.String(),
			AttrSourceTransactionID:  fmt.Sprintf("%x", ctx.TxHash),
			AttrSourceActionIndex:    fmt.Sprintf("%d", ctx.ActionIndex),
			AttrPositionInTransaction: fmt.Sprintf("%d", ctx.ActionIndex),
		},
	}}, nil
}
