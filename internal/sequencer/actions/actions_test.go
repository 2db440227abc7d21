package actions

import (
	"fmt"
	"testing"

	"cosmossdk.io/math"
	dbm "github.com/cometbft/cometbft-db"
	"github.com/stretchr/testify/require"

	"github.com/astriaorg/astria-sub012/internal/address"
	"github.com/astriaorg/astria-sub012/internal/asset"
	"github.com/astriaorg/astria-sub012/internal/primitives"
	"github.com/astriaorg/astria-sub012/internal/sequencer/bridge"
	"github.com/astriaorg/astria-sub012/internal/sequencer/fees"
	"github.com/astriaorg/astria-sub012/internal/sequencer/state"
	"github.com/astriaorg/astria-sub012/internal/storage"
)

func newTestState(t *testing.T) *state.State {
	t.Helper()
	st, err := storage.New(dbm.NewMemDB(), dbm.NewMemDB(), 100)
	require.NoError(t, err)
	snap, err := st.LatestSnapshot()
	require.NoError(t, err)
	delta := st.NewDelta()
	prefixes := address.Prefixes{Base: "astria"}
	return state.New(snap, delta, prefixes, "astria-test", asset.NewTraceRegistry(), 1)
}

func testAddr(t *testing.T, b byte) address.Address {
	t.Helper()
	var raw [address.Length]byte
	raw[0] = b
	addr, err := address.New(raw, "astria")
	require.NoError(t, err)
	return addr
}

func TestTransferConservation(t *testing.T) {
	s := newTestState(t)
	alice := testAddr(t, 1)
	bob := testAddr(t, 2)

	nria, err := s.Fees.Register("nria")
	require.NoError(t, err)

	initial := math.NewIntFromUint64(10_000_000_000_000_000_000)
	require.NoError(t, s.SetBalance(alice, nria, initial))
	require.NoError(t, s.SetBalance(bob, nria, initial))

	require.NoError(t, fees.Set(s, fees.ActionTransfer, fees.Component{
		Base:       math.NewInt(2),
		Multiplier: math.NewInt(1002),
	}))

	transferAmount := math.NewInt(333_333)
	tr := &Transfer{To: bob, Amount: transferAmount, Asset: nria}
	ctx := ExecContext{Signer: alice, ActionIndex: 0}

	_, err = Dispatch(tr, ctx, s)
	require.NoError(t, err)

	component, err := fees.Get(s, fees.ActionTransfer)
	require.NoError(t, err)
	fee := component.Fee(0)

	aliceBal, err := s.Balance(alice, nria)
	require.NoError(t, err)
	bobBal, err := s.Balance(bob, nria)
	require.NoError(t, err)

	require.True(t, aliceBal.Equal(initial.Sub(transferAmount).Sub(fee)))
	require.True(t, bobBal.Equal(initial.Add(transferAmount)))

	require.NoError(t, s.SetNonce(alice, 1))
	nonce, err := s.Nonce(alice)
	require.NoError(t, err)
	require.Equal(t, uint32(1), nonce)
}

func TestBridgeLockProducesExpectedDeposit(t *testing.T) {
	s := newTestState(t)
	alice := testAddr(t, 1)
	bridgeAddr := testAddr(t, 2)

	nria, err := s.Fees.Register("nria")
	require.NoError(t, err)
	require.NoError(t, s.SetBalance(alice, nria, math.NewInt(1_000_000)))

	rollupID := primitives.RollupIDFromName("testchainid")
	require.NoError(t, bridge.Init(s, bridgeAddr, bridge.Account{
		RollupID:          rollupID,
		Asset:             nria,
		SudoAddress:       bridgeAddr,
		WithdrawerAddress: bridgeAddr,
	}))

	txHash := [32]byte{0xAB}
	lock := &BridgeLock{
		To:                      bridgeAddr,
		Amount:                  math.NewInt(1),
		Asset:                   nria,
		DestinationChainAddress: "test_chain_address",
		FeeAsset:                nria,
	}
	ctx := ExecContext{Signer: alice, TxHash: txHash, ActionIndex: 0}

	events, err := Dispatch(lock, ctx, s)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "tx.deposit", events[0].Type)
	require.Equal(t, nria.String(), events[0].Attributes[AttrAsset])
	require.Equal(t, fmt.Sprintf("%x", txHash), events[0].Attributes[AttrSourceTransactionID])

	deposits := s.RollupDeposits[rollupID]
	require.Len(t, deposits, 1)
	decoded, err := bridge.UnmarshalDeposit(deposits[0])
	require.NoError(t, err)
	require.Equal(t, bridgeAddr.String(), decoded.BridgeAddress.String())
	require.True(t, decoded.Amount.Equal(math.NewInt(1)))
	require.Equal(t, "test_chain_address", decoded.DestinationChainAddress)
	require.Equal(t, uint32(0), decoded.SourceActionIndex)
}

func TestBridgeLockRejectsAssetMismatch(t *testing.T) {
	s := newTestState(t)
	alice := testAddr(t, 1)
	bridgeAddr := testAddr(t, 2)

	nria, err := s.Fees.Register("nria")
	require.NoError(t, err)
	other, err := s.Fees.Register("other")
	require.NoError(t, err)
	require.NoError(t, s.SetBalance(alice, other, math.NewInt(1_000_000)))

	require.NoError(t, bridge.Init(s, bridgeAddr, bridge.Account{
		RollupID:          primitives.RollupIDFromName("testchainid"),
		Asset:             nria,
		SudoAddress:       bridgeAddr,
		WithdrawerAddress: bridgeAddr,
	}))

	lock := &BridgeLock{To: bridgeAddr, Amount: math.NewInt(1), Asset: other, DestinationChainAddress: "dest", FeeAsset: other}
	_, err = Dispatch(lock, ExecContext{Signer: alice}, s)
	require.Error(t, err)
}
