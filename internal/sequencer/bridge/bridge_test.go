package bridge

import (
	"testing"

	dbm "github.com/cometbft/cometbft-db"
	"github.com/stretchr/testify/require"

	"github.com/astriaorg/astria-sub012/internal/address"
	"github.com/astriaorg/astria-sub012/internal/asset"
	"github.com/astriaorg/astria-sub012/internal/primitives"
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

func TestInitBridgeAccountRejectsDoublePromotion(t *testing.T) {
	s := newTestState(t)
	bridgeAddr := testAddr(t, 1)
	sudo := testAddr(t, 2)

	reg := asset.NewTraceRegistry()
	ibcAsset, err := reg.Register("nria")
	require.NoError(t, err)

	acc := Account{
		RollupID:          primitives.RollupIDFromName("testchainid"),
		Asset:             ibcAsset,
		SudoAddress:       sudo,
		WithdrawerAddress: sudo,
	}
	require.NoError(t, Init(s, bridgeAddr, acc))

	err = Init(s, bridgeAddr, acc)
	require.Error(t, err)
}

func TestDuplicateWithdrawalEventRejected(t *testing.T) {
	s := newTestState(t)
	bridgeAddr := testAddr(t, 1)

	require.NoError(t, RecordWithdrawalEvent(s, bridgeAddr, "wh-1", 100))
	err := RecordWithdrawalEvent(s, bridgeAddr, "wh-1", 101)
	require.Error(t, err)

	// A distinct event id under the same bridge must still succeed.
	require.NoError(t, RecordWithdrawalEvent(s, bridgeAddr, "wh-2", 102))
}
