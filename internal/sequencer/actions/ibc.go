package actions

import (
	"fmt"

	"github.com/astriaorg/astria-sub012/internal/address"
	"github.com/astriaorg/astria-sub012/internal/asset"
	"github.com/astriaorg/astria-sub012/internal/sequencer/fees"
	"github.com/astriaorg/astria-sub012/internal/sequencer/state"
)

// IbcRelay carries an opaque IBC packet/handshake message, authorized
// only for members of the IBC relayer set (spec §4.1 authorization
// policy table). The Envelope bytes are the IBC-go message payload,
// passed through to the IBC passthrough keeper unchanged — IBC
// protocol semantics are an external collaborator (spec §1).
type IbcRelay struct {
	Envelope []byte
	FeeAsset asset.IBCDenom
}

func (a *IbcRelay) Name() string { return fees.ActionIbcRelay }

func (a *IbcRelay) StatelessCheck() error {
	if len(a.Envelope) == 0 {
		return fmt.Errorf("ibc relay: envelope must not be empty")
	}
	return nil
}

func (a *IbcRelay) Authorize(ctx ExecContext, s *state.State) error {
	ok, err := s.IsIBCRelayer(ctx.Signer)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("ibc relay: signer %s is not a registered ibc relayer", ctx.Signer)
	}
	return nil
}

func (a *IbcRelay) Execute(ctx ExecContext, s *state.State) ([]Event, error) {
	component, err := fees.Get(s, a.Name())
	if err != nil {
		return nil, err
	}
	fee := component.Fee(uint64(len(a.Envelope)))
	if err := s.Debit(ctx.Signer, a.FeeAsset, fee); err != nil {
		return nil, fmt.Errorf("ibc relay: debit fee: %w", err)
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

// IbcRelayerChange adds or removes an address from the IBC relayer
// set. Authorized by the IBC sudo address (spec §4.1 authorization
// policy table: "IbcRelayerChange ... or be the IBC sudo").
type IbcRelayerChange struct {
	Address address.Address
	Add     bool
}

func (a *IbcRelayerChange) Name() string { return fees.ActionIbcRelayerChange }

func (a *IbcRelayerChange) StatelessCheck() error { return nil }

func (a *IbcRelayerChange) Authorize(ctx ExecContext, s *state.State) error {
	sudo, err := s.IBCSudoAddress()
	if err != nil {
		return err
	}
	if sudo.String() != ctx.Signer.String() {
		return fmt.Errorf("ibc relayer change: signer %s is not the ibc sudo address", ctx.Signer)
	}
	return nil
}

func (a *IbcRelayerChange) Execute(ctx ExecContext, s *state.State) ([]Event, error) {
	if a.Add {
		s.AddIBCRelayer(a.Address)
	} else {
		s.RemoveIBCRelayer(a.Address)
	}
	return []Event{{
		Type: "tx.ibc_relayer_change",
		Attributes: map[string]string{
			AttrActionName:          a.Name(),
			AttrSourceTransactionID: fmt.Sprintf("%x", ctx.TxHash),
			AttrSourceActionIndex:   fmt.Sprintf("%d", ctx.ActionIndex),
		},
	}}, nil
}
