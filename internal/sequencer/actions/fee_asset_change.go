package actions

import (
	"fmt"

	"github.com/astriaorg/astria-sub012/internal/asset"
	"github.com/astriaorg/astria-sub012/internal/sequencer/fees"
	"github.com/astriaorg/astria-sub012/internal/sequencer/state"
)

// FeeAssetChange adds or removes Asset from the set of assets
// accepted for fee payment. Only the chain sudo may invoke it.
type FeeAssetChange struct {
	Asset asset.IBCDenom
	Add   bool
}

func (a *FeeAssetChange) Name() string { return fees.ActionFeeAssetChange }

func (a *FeeAssetChange) StatelessCheck() error { return nil }

func (a *FeeAssetChange) Authorize(ctx ExecContext, s *state.State) error {
	sudo, err := s.ChainSudoAddress()
	if err != nil {
		return err
	}
	if sudo.String() != ctx.Signer.String() {
		return fmt.Errorf("fee asset change: signer %s is not the chain sudo address", ctx.Signer)
	}
	return nil
}

func (a *FeeAssetChange) Execute(ctx ExecContext, s *state.State) ([]Event, error) {
	fees.SetAllowedAsset(s, a.Asset.String(), a.Add)
	return []Event{{
		Type: "tx.fee_asset_change",
		Attributes: map[string]string{
			AttrActionName:          a.Name(),
			AttrAsset:               a.Asset.String(),
			AttrSourceTransactionID: fmt.Sprintf("%x", ctx.TxHash),
			AttrSourceActionIndex:   fmt.Sprintf("%d", ctx.ActionIndex),
		},
	}}, nil
}
