package wire

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/astriaorg/astria-sub012/internal/sequencer/actions"
)

// actionEnvelope is the {type, payload} wrapper used to round-trip an
// actions.Action through JSON without a protobuf oneof (see the
// package doc comment on the codegen limitation this works around).
type actionEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// newZeroValue returns a fresh, empty instance of the action variant
// named by typeName, ready to be json.Unmarshal'd into.
func newZeroValue(typeName string) (actions.Action, error) {
	switch typeName {
	case "Transfer":
		return &actions.Transfer{}, nil
	case "RollupDataSubmission":
		return &actions.RollupDataSubmission{}, nil
	case "InitBridgeAccount":
		return &actions.InitBridgeAccount{}, nil
	case "BridgeLock":
		return &actions.BridgeLock{}, nil
	case "BridgeUnlock":
		return &actions.BridgeUnlock{}, nil
	case "BridgeSudoChange":
		return &actions.BridgeSudoChange{}, nil
	case "Ics20Withdrawal":
		return &actions.Ics20Withdrawal{}, nil
	case "IbcRelay":
		return &actions.IbcRelay{}, nil
	case "IbcRelayerChange":
		return &actions.IbcRelayerChange{}, nil
	case "IbcSudoChange":
		return &actions.IbcSudoChange{}, nil
	case "SudoAddressChange":
		return &actions.SudoAddressChange{}, nil
	case "ValidatorUpdate":
		return &actions.ValidatorUpdate{}, nil
	case "FeeChange":
		return &actions.FeeChange{}, nil
	case "FeeAssetChange":
		return &actions.FeeAssetChange{}, nil
	default:
		return nil, fmt.Errorf("wire: unknown action variant %q", typeName)
	}
}

type jsonBody struct {
	Nonce    uint32           `json:"nonce"`
	ChainID  string           `json:"chain_id"`
	Actions  []actionEnvelope `json:"actions"`
}

type jsonTransaction struct {
	Body      jsonBody `json:"body"`
	Signature string   `json:"signature"`
	PublicKey string   `json:"public_key"`
}

// MarshalBinary encodes the full signed envelope (body, signature,
// public key) for transport over the mempool/RPC boundary.
func (tx Transaction) MarshalBinary() ([]byte, error) {
	envs := make([]actionEnvelope, len(tx.Body.Actions))
	for i, a := range tx.Body.Actions {
		payload, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("wire: marshal action %s: %w", a.Name(), err)
		}
		envs[i] = actionEnvelope{Type: a.Name(), Payload: payload}
	}
	jt := jsonTransaction{
		Body: jsonBody{
			Nonce:   tx.Body.Params.Nonce,
			ChainID: tx.Body.Params.ChainID,
			Actions: envs,
		},
		Signature: hex.EncodeToString(tx.Signature[:]),
		PublicKey: hex.EncodeToString(tx.PublicKey),
	}
	return json.Marshal(jt)
}

// DecodeTransaction parses a MarshalBinary-produced wire envelope.
// Decoding alone does not verify the signature; callers must call
// Verify() before trusting the result (spec §4.1 CheckTx sequence:
// "parse -> size check -> signature verify -> ...").
func DecodeTransaction(raw []byte) (Transaction, error) {
	var jt jsonTransaction
	if err := json.Unmarshal(raw, &jt); err != nil {
		return Transaction{}, fmt.Errorf("wire: decode: %w", err)
	}

	if len(jt.Body.Actions) == 0 {
		return Transaction{}, fmt.Errorf("wire: transaction body must contain at least one action")
	}

	decodedActions := make([]actions.Action, len(jt.Body.Actions))
	for i, env := range jt.Body.Actions {
		a, err := newZeroValue(env.Type)
		if err != nil {
			return Transaction{}, err
		}
		if err := json.Unmarshal(env.Payload, a); err != nil {
			return Transaction{}, fmt.Errorf("wire: unmarshal action %s: %w", env.Type, err)
		}
		decodedActions[i] = a
	}

	sigRaw, err := hex.DecodeString(jt.Signature)
	if err != nil || len(sigRaw) != 64 {
		return Transaction{}, fmt.Errorf("wire: invalid signature encoding")
	}
	pubRaw, err := hex.DecodeString(jt.PublicKey)
	if err != nil {
		return Transaction{}, fmt.Errorf("wire: invalid public key encoding")
	}

	var tx Transaction
	copy(tx.Signature[:], sigRaw)
	tx.PublicKey = pubRaw
	tx.Body = Body{
		Params:  Params{Nonce: jt.Body.Nonce, ChainID: jt.Body.ChainID},
		Actions: decodedActions,
	}
	return tx, nil
}
