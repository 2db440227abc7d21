package actions

import (
	"fmt"

	"github.com/astriaorg/astria-sub012/internal/address"
	"github.com/astriaorg/astria-sub012/internal/sequencer/fees"
	"github.com/astriaorg/astria-sub012/internal/sequencer/state"
)

// SudoAddressChange replaces the chain's sudo address. Only the
// current chain sudo may invoke it.
type SudoAddressChange struct {
	NewAddress address.Address
}

func (a *SudoAddressChange) Name() string { return fees.ActionSudoAddressChange }

func (a *SudoAddressChange) StatelessCheck() error { return nil }

func (a *SudoAddressChange) Authorize(ctx ExecContext, s *state.State) error {
	sudo, err := s.ChainSudoAddress()
	if err != nil {
		return err
	}
	if sudo.String() != ctx.Signer.String() {
		return fmt.Errorf("sudo address change: signer %s is not the chain sudo address", ctx.Signer)
	}
	return nil
}

func (a *SudoAddressChange) Execute(ctx ExecContext, s *state.State) ([]Event, error) {
	s.SetChainSudoAddress(a.NewAddress)
	return []Event{{
		Type: "tx.sudo_address_change",
		Attributes: map[string]string{
			AttrActionName:          a.Name(),
			AttrSourceTransactionID: fmt.Sprintf("%x", ctx.TxHash),
			AttrSourceActionIndex:   fmt.Sprintf("%d", ctx.ActionIndex),
		},
	}}, nil
}

// IbcSudoChange replaces the chain's IBC sudo address. Only the
// current IBC sudo may invoke it.
type IbcSudoChange struct {
	NewAddress address.Address
}

func (a *IbcSudoChange) Name() string { return fees.ActionIbcSudoChange }

func (a *IbcSudoChange) StatelessCheck() error { return nil }

func (a *IbcSudoChange) Authorize(ctx ExecContext, s *state.State) error {
	sudo, err := s.IBCSudoAddress()
	if err != nil {
		return err
	}
	if sudo.String() != ctx.Signer.String() {
		return fmt.Errorf("ibc sudo change: signer %s is not the ibc sudo address", ctx.Signer)
	}
	return nil
}

func (a *IbcSudoChange) Execute(ctx ExecContext, s *state.State) ([]Event, error) {
	s.SetIBCSudoAddress(a.NewAddress)
	return []Event{{
		Type: "tx.ibc_sudo_change",
		Attributes: map[string]string{
			AttrActionName:          a.Name(),
			AttrSourceTransactionID: fmt.Sprintf("%x", ctx.TxHash),
			AttrSourceActionIndex:   fmt.Sprintf("%d", ctx.ActionIndex),
		},
	}}, nil
}
