package app

import (
	"context"
	"encoding/binary"
	"fmt"

	"cosmossdk.io/math"
	abcitypes "github.com/cometbft/cometbft/abci/types"

	"github.com/astriaorg/astria-sub012/internal/address"
	"github.com/astriaorg/astria-sub012/internal/sequencer/actions"
	"github.com/astriaorg/astria-sub012/internal/sequencer/blockassembly"
	"github.com/astriaorg/astria-sub012/internal/sequencer/fees"
	"github.com/astriaorg/astria-sub012/internal/sequencer/mempool"
	"github.com/astriaorg/astria-sub012/internal/sequencer/state"
	"github.com/astriaorg/astria-sub012/internal/sequencer/wire"
	"github.com/astriaorg/astria-sub012/internal/storage"
)

// checkTxFailure pairs an ABCI result code with its log string, so
// every rejection path in CheckTx produces both in one place.
type checkTxFailure struct {
	code uint32
	log  string
}

func (f checkTxFailure) response() *abcitypes.CheckTxResponse {
	return &abcitypes.CheckTxResponse{Code: f.code, Log: f.log}
}

// decodeAndVerify runs the parse -> size check (bytes, then action
// count) -> signature verify -> chain-id match -> per-action stateless
// check prefix common to CheckTx and the speculative-execution paths
// (spec §4.1 "CheckTx sequence").
func (a *App) decodeAndVerify(raw []byte) (wire.Transaction, *checkTxFailure) {
	tx, err := wire.DecodeTransaction(raw)
	if err != nil {
		return wire.Transaction{}, &checkTxFailure{CodeDecodeError, err.Error()}
	}
	if len(raw) > a.cfg.TxSizeLimit {
		return wire.Transaction{}, &checkTxFailure{CodeTooLarge, "transaction exceeds size limit"}
	}
	if len(tx.Body.Actions) > a.cfg.ActionCountBudget {
		return wire.Transaction{}, &checkTxFailure{CodeTooLarge, "transaction exceeds action count budget"}
	}
	if err := tx.Verify(); err != nil {
		return wire.Transaction{}, &checkTxFailure{CodeInvalidSignature, err.Error()}
	}
	if tx.Body.Params.ChainID != a.cfg.ChainID {
		return wire.Transaction{}, &checkTxFailure{CodeInvalidChainID, "chain id mismatch"}
	}
	for _, act := range tx.Body.Actions {
		if err := act.StatelessCheck(); err != nil {
			return wire.Transaction{}, &checkTxFailure{CodeStatelessInvalid, err.Error()}
		}
	}
	return tx, nil
}

// InitChain seeds genesis state: the chain/IBC sudo addresses, the fee
// component table, the allowed fee-asset set, and the initial account
// balances (spec §4.1 "InitChain").
func (a *App) InitChain(_ context.Context, req *abcitypes.InitChainRequest) (*abcitypes.InitChainResponse, error) {
	var genesis GenesisState
	if err := genesis.UnmarshalJSON(req.AppStateBytes); err != nil {
		return nil, fmt.Errorf("app: init chain: decode genesis: %w", err)
	}

	snap, err := a.store.Snapshot(0)
	if err != nil {
		return nil, fmt.Errorf("app: init chain: snapshot: %w", err)
	}
	delta := a.store.NewDelta()
	s := state.New(snap, delta, a.cfg.Prefixes, a.cfg.ChainID, a.fees, 0)

	if err := genesis.Apply(s, a.cfg.Prefixes); err != nil {
		return nil, fmt.Errorf("app: init chain: apply genesis: %w", err)
	}

	if _, err := a.store.Commit(delta); err != nil {
		return nil, fmt.Errorf("app: init chain: commit: %w", err)
	}

	return &abcitypes.InitChainResponse{
		AppHash:    a.store.AppHash(),
		Validators: genesis.ValidatorUpdates(),
	}, nil
}

// CheckTx runs the stateless-then-stateful admission pipeline and, on
// success, inserts the transaction into the app-side mempool (spec
// §4.1 "CheckTx").
func (a *App) CheckTx(_ context.Context, req *abcitypes.CheckTxRequest) (*abcitypes.CheckTxResponse, error) {
	tx, failure := a.decodeAndVerify(req.Tx)
	if failure != nil {
		return failure.response(), nil
	}

	signer, err := address.FromVerificationKey(tx.PublicKey, a.cfg.Prefixes.Base)
	if err != nil {
		return (&checkTxFailure{CodeInvalidSignature, err.Error()}).response(), nil
	}

	snap, err := a.store.LatestSnapshot()
	if err != nil {
		return nil, fmt.Errorf("app: check tx: snapshot: %w", err)
	}
	accountNonce, err := readNonce(snap, signer)
	if err != nil {
		return nil, fmt.Errorf("app: check tx: nonce: %w", err)
	}
	if tx.Body.Params.Nonce < accountNonce {
		return (&checkTxFailure{CodeNonceStale, "nonce is stale"}).response(), nil
	}

	encoded, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("app: check tx: marshal: %w", err)
	}

	feeComponent, err := fees.Get(latestState(snap, a), tx.Body.Actions[0].Name())
	if err != nil {
		return nil, fmt.Errorf("app: check tx: fee lookup: %w", err)
	}

	entry := mempool.Entry{
		Tx:         tx,
		Hash:       tx.Hash(),
		Nonce:      tx.Body.Params.Nonce,
		EncodedLen: len(encoded),
		FeePerByte: feePerByte(feeComponent, len(encoded)),
	}
	if !a.mp.Insert(signer, accountNonce, entry) {
		return (&checkTxFailure{CodeNonceStale, "duplicate or recently removed transaction"}).response(), nil
	}

	return &abcitypes.CheckTxResponse{Code: CodeOK}, nil
}

// feePerByte estimates a transaction's builder-queue priority from its
// first action's fee component and encoded size (spec §4.2
// "Builder-queue projection" uses fee-per-byte as the ranking key).
// PrepareProposal re-derives the authoritative cost per action by
// simulating each entry, so this estimate only affects ranking, never
// correctness.
func feePerByte(c fees.Component, encodedLen int) math.LegacyDec {
	if encodedLen == 0 {
		return math.LegacyZeroDec()
	}
	fee := c.Fee(uint64(encodedLen))
	return math.LegacyNewDecFromInt(fee).QuoInt64(int64(encodedLen))
}

// latestState builds a read-only State over snap for fee-table lookups
// that don't need a delta (CheckTx never stages writes itself).
func latestState(snap *storage.Snapshot, a *App) *state.State {
	return state.New(snap, a.store.NewDelta(), a.cfg.Prefixes, a.cfg.ChainID, a.fees, a.store.LatestVersion())
}

func readNonce(snap *storage.Snapshot, signer address.Address) (uint32, error) {
	raw, err := snap.Get(storage.AccountNonceKey(signer.String()))
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, nil
	}
	return binary.BigEndian.Uint32(raw), nil
}

// PrepareProposal walks the mempool's builder-queue projection,
// speculatively executing each candidate against the running state
// until the comet byte budget is exhausted, skipping (not evicting)
// any entry that fails simulation (spec §4.1 "PrepareProposal").
func (a *App) PrepareProposal(_ context.Context, req *abcitypes.PrepareProposalRequest) (*abcitypes.PrepareProposalResponse, error) {
	s, err := a.freshState()
	if err != nil {
		return nil, err
	}
	s.Height = req.Height

	var included [][]byte
	var usedBytes int64

	for _, entry := range a.mp.BuilderQueue() {
		encoded, err := entry.Tx.MarshalBinary()
		if err != nil {
			continue
		}
		if usedBytes+int64(len(encoded)) > a.cfg.CometByteBudget {
			continue
		}
		if _, err := a.executeTransaction(s, entry.Tx, encoded); err != nil {
			continue
		}
		included = append(included, encoded)
		usedBytes += int64(len(encoded))
	}

	return &abcitypes.PrepareProposalResponse{Txs: included}, nil
}

// ProcessProposal re-simulates every transaction in the proposed block
// from scratch against a fresh speculative state, rejecting the whole
// block if any transaction fails or the resulting data_hash disagrees
// with the proposer's claim (spec §4.1 "ProcessProposal").
func (a *App) ProcessProposal(_ context.Context, req *abcitypes.ProcessProposalRequest) (*abcitypes.ProcessProposalResponse, error) {
	s, err := a.freshState()
	if err != nil {
		return nil, err
	}
	s.Height = req.Height

	events := make([][]actions.Event, 0, len(req.Txs))
	for _, raw := range req.Txs {
		tx, failure := a.decodeAndVerify(raw)
		if failure != nil {
			return &abcitypes.ProcessProposalResponse{Status: abcitypes.PROCESS_PROPOSAL_STATUS_REJECT}, nil
		}
		evs, err := a.executeTransaction(s, tx, raw)
		if err != nil {
			return &abcitypes.ProcessProposalResponse{Status: abcitypes.PROCESS_PROPOSAL_STATUS_REJECT}, nil
		}
		events = append(events, evs)
	}

	result := blockassembly.Assemble(s, nil)
	if string(result.DataHash.Hash) != string(req.Hash) && len(req.Hash) > 0 {
		// A non-empty claimed hash that disagrees with our own
		// derivation means the proposer assembled a different block;
		// reject rather than trust it (spec §4.1 data_hash check).
		return &abcitypes.ProcessProposalResponse{Status: abcitypes.PROCESS_PROPOSAL_STATUS_REJECT}, nil
	}

	a.mu.Lock()
	a.inProgress = s
	a.proposalEvents = events
	a.mu.Unlock()

	return &abcitypes.ProcessProposalResponse{Status: abcitypes.PROCESS_PROPOSAL_STATUS_ACCEPT}, nil
}

// FinalizeBlock re-uses the state ProcessProposal already validated
// (when this node was not itself the proposer, it re-derives it the
// same way) and returns the events and deterministic data_hash CometBFT
// records (spec §4.1 "FinalizeBlock").
func (a *App) FinalizeBlock(_ context.Context, req *abcitypes.FinalizeBlockRequest) (*abcitypes.FinalizeBlockResponse, error) {
	a.mu.Lock()
	s := a.inProgress
	proposalEvents := a.proposalEvents
	a.mu.Unlock()

	var txResults []*abcitypes.ExecTxResult
	if s == nil {
		// This node did not run ProcessProposal for this block (e.g.
		// it is catching up); rebuild the speculative state identically.
		var err error
		s, err = a.freshState()
		if err != nil {
			return nil, err
		}
		s.Height = req.Height
		for _, raw := range req.Txs {
			tx, failure := a.decodeAndVerify(raw)
			if failure != nil {
				txResults = append(txResults, &abcitypes.ExecTxResult{Code: failure.code, Log: failure.log})
				continue
			}
			events, err := a.executeTransaction(s, tx, raw)
			if err != nil {
				txResults = append(txResults, &abcitypes.ExecTxResult{Code: CodeInternal, Log: err.Error()})
				continue
			}
			txResults = append(txResults, &abcitypes.ExecTxResult{Code: CodeOK, Events: toABCIEvents(events)})
		}
	} else {
		// ProcessProposal already ran every transaction against
		// a.inProgress and recorded the events each one emitted; reuse
		// them instead of re-executing the block a third time.
		for i := range req.Txs {
			if i >= len(proposalEvents) {
				txResults = append(txResults, &abcitypes.ExecTxResult{Code: CodeOK})
				continue
			}
			txResults = append(txResults, &abcitypes.ExecTxResult{Code: CodeOK, Events: toABCIEvents(proposalEvents[i])})
		}
	}

	result := blockassembly.Assemble(s, nil)

	a.mu.Lock()
	a.inProgress = s
	a.proposalEvents = nil
	a.mu.Unlock()

	return &abcitypes.FinalizeBlockResponse{
		TxResults:        txResults,
		ValidatorUpdates: s.PendingValidatorUpdates,
		AppHash:          result.DataHash.Hash,
	}, nil
}

// Commit persists the block's staged delta to the verifiable and
// non-verifiable stripes, then runs mempool maintenance against the
// newly committed nonces (spec §4.1 "Commit", §4.2 "Maintenance").
func (a *App) Commit(_ context.Context, _ *abcitypes.CommitRequest) (*abcitypes.CommitResponse, error) {
	a.mu.Lock()
	s := a.inProgress
	a.inProgress = nil
	a.mu.Unlock()

	if s == nil {
		return nil, fmt.Errorf("app: commit called with no in-progress block")
	}

	if err := a.store.PrepareCommit(s.Delta); err != nil {
		return nil, fmt.Errorf("app: commit: %w", err)
	}
	if _, err := a.store.Commit(s.Delta); err != nil {
		return nil, fmt.Errorf("app: commit: %w", err)
	}

	newSnap, err := a.store.LatestSnapshot()
	if err != nil {
		return nil, fmt.Errorf("app: commit: snapshot: %w", err)
	}
	newNonces := make(map[string]uint32)
	for _, signerKey := range a.mp.Signers() {
		addr, err := address.ParseBech32m(signerKey)
		if err != nil {
			continue
		}
		nonce, err := readNonce(newSnap, addr)
		if err != nil {
			continue
		}
		newNonces[signerKey] = nonce
	}
	a.mp.Maintain(newNonces, func(string, mempool.Entry) bool { return false })

	return &abcitypes.CommitResponse{}, nil
}

// executeTransaction dispatches every action in tx against s,
// stamping each with its position for deposit/event attribution (spec
// §4.1 "Action execution pattern" applied per-transaction), and
// returns every event every action emitted so the caller can attach
// them to the transaction's ExecTxResult.
func (a *App) executeTransaction(s *state.State, tx wire.Transaction, _ []byte) ([]actions.Event, error) {
	signer, err := address.FromVerificationKey(tx.PublicKey, a.cfg.Prefixes.Base)
	if err != nil {
		return nil, err
	}

	hash := tx.Hash()
	var events []actions.Event
	for i, act := range tx.Body.Actions {
		ctx := actions.ExecContext{
			Signer:      signer,
			TxHash:      hash,
			ActionIndex: uint32(i),
		}
		evs, err := actions.Dispatch(act, ctx, s)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}
	s.SetNonce(signer, tx.Body.Params.Nonce+1)
	return events, nil
}

// toABCIEvents converts the action layer's Event into the ABCI wire
// shape FinalizeBlock reports, spec §4.1's attribute keys carried
// through verbatim as non-indexed attributes.
func toABCIEvents(events []actions.Event) []abcitypes.Event {
	if len(events) == 0 {
		return nil
	}
	out := make([]abcitypes.Event, len(events))
	for i, ev := range events {
		attrs := make([]abcitypes.EventAttribute, 0, len(ev.Attributes))
		for k, v := range ev.Attributes {
			attrs = append(attrs, abcitypes.EventAttribute{Key: k, Value: v})
		}
		out[i] = abcitypes.Event{Type: ev.Type, Attributes: attrs}
	}
	return out
}
