package conductor

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/astriaorg/astria-sub012/internal/conductor/verify"
)

type fakeExecutor struct {
	state   CommitmentState
	updates []CommitmentState

	executed      []RollupBlock
	executeResult RollupBlock
	executeErr    error
}

func (f *fakeExecutor) GetGenesisInfo(ctx context.Context) (GenesisInfo, error) { return GenesisInfo{}, nil }

func (f *fakeExecutor) GetCommitmentState(ctx context.Context) (CommitmentState, error) {
	return f.state, nil
}

func (f *fakeExecutor) ExecuteBlock(ctx context.Context, prevHash []byte, txs [][]byte, timestamp time.Time) (RollupBlock, error) {
	if f.executeErr != nil {
		return RollupBlock{}, f.executeErr
	}
	f.executed = append(f.executed, f.executeResult)
	return f.executeResult, nil
}

func (f *fakeExecutor) UpdateCommitmentState(ctx context.Context, state CommitmentState) (CommitmentState, error) {
	f.state = state
	f.updates = append(f.updates, state)
	return state, nil
}

func newTestConductor(exec *fakeExecutor) *Conductor {
	return &Conductor{
		cfg:      Config{Mode: FirmOnly},
		executor: exec,
		log:      zerolog.Nop(),
	}
}

func TestApplyFirmExecutesAndAdvancesMonotonically(t *testing.T) {
	exec := &fakeExecutor{executeResult: RollupBlock{Number: 4, Hash: []byte("rollup-h4")}}
	c := newTestConductor(exec)
	c.commitment = CommitmentState{Firm: Commitment{Number: 3, Hash: []byte("h3")}, Soft: Commitment{Number: 5}}

	blob := CelestiaBlob{
		Header:     verify.HeaderBlob{SequencerHeight: 4, BlockHash: []byte("seq-h4")},
		RollupData: []byte("rollup-tx-payload"),
	}
	err := c.applyFirm(context.Background(), blob, time.Unix(1000, 0))
	require.NoError(t, err)
	require.EqualValues(t, 4, c.CommitmentState().Firm.Number)
	require.Equal(t, []byte("rollup-h4"), c.CommitmentState().Firm.Hash)
	require.Len(t, exec.updates, 1)
	require.Len(t, exec.executed, 1)
}

func TestApplyFirmRejectsStaleHeight(t *testing.T) {
	exec := &fakeExecutor{}
	c := newTestConductor(exec)
	c.commitment = CommitmentState{Firm: Commitment{Number: 10}}

	blob := CelestiaBlob{Header: verify.HeaderBlob{SequencerHeight: 8, BlockHash: []byte("stale")}}
	err := c.applyFirm(context.Background(), blob, time.Unix(1000, 0))
	require.NoError(t, err)
	require.EqualValues(t, 10, c.CommitmentState().Firm.Number)
	require.Empty(t, exec.updates)
	require.Empty(t, exec.executed)
}

func TestApplyFirmIsIdempotentAtSameHeight(t *testing.T) {
	exec := &fakeExecutor{}
	c := newTestConductor(exec)
	c.commitment = CommitmentState{Firm: Commitment{Number: 7}}

	blob := CelestiaBlob{Header: verify.HeaderBlob{SequencerHeight: 7, BlockHash: []byte("same")}}
	err := c.applyFirm(context.Background(), blob, time.Unix(1000, 0))
	require.NoError(t, err)
	require.Empty(t, exec.updates)
	require.Empty(t, exec.executed)
}
