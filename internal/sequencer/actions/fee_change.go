package actions

import (
	"fmt"

	"github.com/astriaorg/astria-sub012/internal/sequencer/fees"
	"github.com/astriaorg/astria-sub012/internal/sequencer/state"
)

// FeeChange overwrites exactly the fee component named by ActionName.
// Only the chain sudo may invoke it (spec §4.1 authorization table).
type FeeChange struct {
	ActionName string
	Component  fees.Component
}

func (a *FeeChange) Name() string { return fees.ActionFeeChange }

func (a *FeeChange) StatelessCheck() error {
	if a.ActionName == "" {
		return fmt.Errorf("fee change: action name must not be empty")
	}
	if a.Component.Base.IsNil() || a.Component.Multiplier.IsNil() {
		return fmt.Errorf("fee change: base and multiplier must be set")
	}
	return nil
}

func (a *FeeChange) Authorize(ctx ExecContext, s *state.State) error {
	sudo, err := s.ChainSudoAddress()
	if err != nil {
		return err
	}
	if sudo.String() != ctx.Signer.String() {
		return fmt.Errorf("fee change: signer %s is not the chain sudo address", ctx.Signer)
	}
	return nil
}

func (a *FeeChange) Execute(ctx ExecContext, s *state.State) ([]Event, error) {
	if err := fees.Set(s, a.ActionName, a.Component); err != nil {
		return nil, err
	}
	return []Event{{
		Type: "tx.fee_change",
		Attributes: map[string]string{
			AttrActionName:          a.Name(),
			AttrSourceTransactionID: fmt.Sprintf("%x", ctx.TxHash),
			AttrSourceActionIndex:   fmt.Sprintf("%d", ctx.ActionIndex),
		},
	}}, nil
}
