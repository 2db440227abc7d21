package app

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtcrypto "github.com/cometbft/cometbft/crypto/ed25519"

	"github.com/astriaorg/astria-sub012/internal/address"
	"github.com/astriaorg/astria-sub012/internal/sequencer/fees"
	"github.com/astriaorg/astria-sub012/internal/sequencer/state"
)

// GenesisState is the JSON document InitChain decodes from
// abcitypes.InitChainRequest.AppStateBytes: sudo addresses, the
// allowed fee-asset set, each action's initial fee component, the
// initial validator set, and initial account balances (spec §4.1
// "InitChain").
type GenesisState struct {
	ChainSudoAddress string            `json:"chain_sudo_address"`
	IBCSudoAddress   string            `json:"ibc_sudo_address"`
	IBCRelayers      []string          `json:"ibc_relayers"`
	AllowedFeeAssets []string          `json:"allowed_fee_assets"`
	FeeComponents    map[string]struct {
		Base       string `json:"base"`
		Multiplier string `json:"multiplier"`
	} `json:"fee_components"`
	Validators []GenesisValidator `json:"validators"`
	Accounts   []GenesisAccount   `json:"accounts"`
}

// GenesisValidator is one member of the initial validator set.
type GenesisValidator struct {
	PublicKey string `json:"public_key"` // hex-encoded Ed25519 public key
	Power     int64  `json:"power"`
}

// GenesisAccount seeds an initial balance at chain start.
type GenesisAccount struct {
	Address string `json:"address"`
	Asset   string `json:"asset"` // trace-prefixed or "ibc/<hex>"
	Amount  string `json:"amount"`
}

// UnmarshalJSON decodes raw into gs, or leaves gs zero-valued if raw is
// empty (a chain may start with no app-specific genesis data).
func (gs *GenesisState) UnmarshalJSON(raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	type alias GenesisState
	return json.Unmarshal(raw, (*alias)(gs))
}

// Apply seeds s with gs's contents, rejecting any address whose prefix
// does not match the chain's configured base prefix (spec §4.1
// "InitChain ... rejects if a genesis address does not match the
// chain's base prefix").
func (gs *GenesisState) Apply(s *state.State, prefixes address.Prefixes) error {
	if gs.ChainSudoAddress != "" {
		addr, err := address.ParseBech32m(gs.ChainSudoAddress)
		if err != nil {
			return fmt.Errorf("genesis: chain sudo address: %w", err)
		}
		if !addr.MatchesBase(prefixes) {
			return fmt.Errorf("genesis: chain sudo address does not match base prefix")
		}
		s.SetChainSudoAddress(addr)
	}

	if gs.IBCSudoAddress != "" {
		addr, err := address.ParseBech32m(gs.IBCSudoAddress)
		if err != nil {
			return fmt.Errorf("genesis: ibc sudo address: %w", err)
		}
		if !addr.MatchesBase(prefixes) {
			return fmt.Errorf("genesis: ibc sudo address does not match base prefix")
		}
		s.SetIBCSudoAddress(addr)
	}

	for _, r := range gs.IBCRelayers {
		addr, err := address.ParseBech32m(r)
		if err != nil {
			return fmt.Errorf("genesis: ibc relayer %q: %w", r, err)
		}
		if !addr.MatchesBase(prefixes) {
			return fmt.Errorf("genesis: ibc relayer %q does not match base prefix", r)
		}
		s.AddIBCRelayer(addr)
	}

	for _, assetStr := range gs.AllowedFeeAssets {
		ibcAsset, err := s.Fees.ResolveOrSelf(assetStr)
		if err != nil {
			return fmt.Errorf("genesis: allowed fee asset %q: %w", assetStr, err)
		}
		fees.SetAllowedAsset(s, ibcAsset.String(), true)
	}

	for actionName, comp := range gs.FeeComponents {
		base, ok := math.NewIntFromString(comp.Base)
		if !ok {
			return fmt.Errorf("genesis: fee component %s: invalid base %q", actionName, comp.Base)
		}
		mult, ok := math.NewIntFromString(comp.Multiplier)
		if !ok {
			return fmt.Errorf("genesis: fee component %s: invalid multiplier %q", actionName, comp.Multiplier)
		}
		if err := fees.Set(s, actionName, fees.Component{Base: base, Multiplier: mult}); err != nil {
			return fmt.Errorf("genesis: fee component %s: %w", actionName, err)
		}
	}

	for _, acc := range gs.Accounts {
		addr, err := address.ParseBech32m(acc.Address)
		if err != nil {
			return fmt.Errorf("genesis: account %q: %w", acc.Address, err)
		}
		if !addr.MatchesBase(prefixes) {
			return fmt.Errorf("genesis: account %q does not match base prefix", acc.Address)
		}
		ibcAsset, err := s.Fees.ResolveOrSelf(acc.Asset)
		if err != nil {
			return fmt.Errorf("genesis: account %q asset %q: %w", acc.Address, acc.Asset, err)
		}
		amount, ok := math.NewIntFromString(acc.Amount)
		if !ok {
			return fmt.Errorf("genesis: account %q: invalid amount %q", acc.Address, acc.Amount)
		}
		if err := s.Credit(addr, ibcAsset, amount); err != nil {
			return fmt.Errorf("genesis: account %q: %w", acc.Address, err)
		}
	}

	return nil
}

// ValidatorUpdates renders gs's validator list as the ABCI genesis
// validator set.
func (gs *GenesisState) ValidatorUpdates() []abcitypes.ValidatorUpdate {
	out := make([]abcitypes.ValidatorUpdate, 0, len(gs.Validators))
	for _, v := range gs.Validators {
		key, err := decodeValidatorKey(v.PublicKey)
		if err != nil {
			continue
		}
		out = append(out, abcitypes.ValidatorUpdate{
			PubKeyType:  cmtcrypto.KeyType,
			PubKeyBytes: key,
			Power:       v.Power,
		})
	}
	return out
}

func decodeValidatorKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("genesis: invalid validator public key %q: %w", hexKey, err)
	}
	return key, nil
}
