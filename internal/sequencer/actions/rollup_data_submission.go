package actions

import (
	"fmt"

	"github.com/astriaorg/astria-sub012/internal/asset"
	"github.com/astriaorg/astria-sub012/internal/primitives"
	"github.com/astriaorg/astria-sub012/internal/sequencer/fees"
	"github.com/astriaorg/astria-sub012/internal/sequencer/state"
)

// RollupDataSubmission carries opaque rollup transaction data destined
// for a specific rollup; block assembly groups these by RollupID.
type RollupDataSubmission struct {
	RollupID primitives.RollupID
	Data     []byte
	FeeAsset asset.IBCDenom
}

func (a *RollupDataSubmission) Name() string { return fees.ActionRollupDataSubmission }

func (a *RollupDataSubmission) StatelessCheck() error {
	if len(a.Data) == 0 {
		return fmt.Errorf("rollup data submission: data must not be empty")
	}
	return nil
}

func (a *RollupDataSubmission) Authorize(ExecContext, *state.State) error { return nil }

func (a *RollupDataSubmission) Execute(ctx ExecContext, s *state.State) ([]Event, error) {
	component, err := fees.Get(s, a.Name())
	if err != nil {
		return nil, err
	}
	fee := component.Fee(uint64(len(a.Data)))

	if err := s.Debit(ctx.Signer, a.FeeAsset, fee); err != nil {
		return nil, fmt.Errorf("rollup data submission: debit fee: %w", err)
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
