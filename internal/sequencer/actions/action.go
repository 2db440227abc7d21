// Package actions implements the thirteen-plus Astria action variants
// as a tagged union with a match-driven dispatcher (spec §9 design
// note), each carrying its own three-phase handler:
// StatelessCheck, Authorize, Execute (spec §4.1).
package actions

import (
	"fmt"

	"github.com/astriaorg/astria-sub012/internal/address"
	"github.com/astriaorg/astria-sub012/internal/sequencer/state"
)

// Event is one ABCI event emitted during FinalizeBlock, using the
// exact attribute keys spec §4.1 requires for client compatibility.
type Event struct {
	Type       string
	Attributes map[string]string
}

const (
	AttrActionName          = "actionName"
	AttrAsset                = "asset"
	AttrFeeAmount            = "feeAmount"
	AttrSourceTransactionID  = "sourceTransactionId"
	AttrSourceActionIndex    = "sourceActionIndex"
	AttrPositionInTransaction = "positionInTransaction"
)

// ExecContext carries the per-action-invocation metadata every handler
// needs beyond chain state: which tx/signer it belongs to and its
// position, used to stamp deposits and events.
type ExecContext struct {
	Signer              address.Address
	TxHash              [32]byte
	ActionIndex         uint32 // position within the transaction (0-based)
	PositionInBlock     uint32 // cumulative action position within the block
}

// Action is the common interface every action variant implements. The
// three phases run in this order for every action in every
// transaction (spec §4.1 "Action execution pattern"):
//
//  1. StatelessCheck — bounds/shape validation with no state access.
//  2. Authorize — the signer policy table.
//  3. Execute — preconditions re-checked immediately before mutation,
//     then the mutation itself; returns events to attach to the block.
type Action interface {
	Name() string
	StatelessCheck() error
	Authorize(ctx ExecContext, s *state.State) error
	Execute(ctx ExecContext, s *state.State) ([]Event, error)
}

// Dispatch runs all three phases for action in order, short-circuiting
// on the first failure. Every execution path (PrepareProposal's and
// ProcessProposal's simulation, FinalizeBlock's re-execution) goes
// through it; CheckTx runs only the stateless phase, calling
// StatelessCheck directly.
func Dispatch(action Action, ctx ExecContext, s *state.State) ([]Event, error) {
	if err := action.StatelessCheck(); err != nil {
		return nil, fmt.Errorf("%s: stateless check: %w", action.Name(), err)
	}
	if err := action.Authorize(ctx, s); err != nil {
		return nil, fmt.Errorf("%s: authorization: %w", action.Name(), err)
	}
	events, err := action.Execute(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("%s: execute: %w", action.Name(), err)
	}
	return events, nil
}

const (
	maxMemoLength             = 64
	maxWithdrawalEventIDLength = 256
)
