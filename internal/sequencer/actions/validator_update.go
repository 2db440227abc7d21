package actions

import (
	"fmt"

	abci "github.com/cometbft/cometbft/abci/types"

	"github.com/astriaorg/astria-sub012/internal/sequencer/fees"
	"github.com/astriaorg/astria-sub012/internal/sequencer/state"
)

// ValidatorUpdate stages a CometBFT validator set change, applied by
// FinalizeBlock's response. Only the chain sudo may invoke it.
type ValidatorUpdate struct {
	Update abci.ValidatorUpdate
}

func (a *ValidatorUpdate) Name() string { return fees.ActionValidatorUpdate }

func (a *ValidatorUpdate) StatelessCheck() error {
	if a.Update.Power < 0 {
		return fmt.Errorf("validator update: power must be non-negative")
	}
	return nil
}

func (a *ValidatorUpdate) Authorize(ctx ExecContext, s *state.State) error {
	sudo, err := s.ChainSudoAddress()
	if err != nil {
		return err
	}
	if sudo.String() != ctx.Signer.String() {
		return fmt.Errorf("validator update: signer %s is not the chain sudo address", ctx.Signer)
	}
	return nil
}

// Execute records the pending validator update on s; the app's
// FinalizeBlock reads back all updates accumulated this block and
// surfaces them in the ABCI response.
func (a *ValidatorUpdate) Execute(ctx ExecContext, s *state.State) ([]Event, error) {
	s.AppendValidatorUpdate(a.Update)

	return []Event{{
		Type: "tx.validator_update",
		Attributes: map[string]string{
			AttrActionName:          a.Name(),
			AttrSourceTransactionID: fmt.Sprintf("%x", ctx.TxHash),
			AttrSourceActionIndex:   fmt.Sprintf("%d", ctx.ActionIndex),
		},
	}}, nil
}
