package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/hyperledger-labs/aero-relay/checkpoint"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newRelayingChain returns a chain at height 1000 whose block 1000 carries packet 42 of channel-7.
func newRelayingChain(ctrl *gomock.Controller) *MockSourceChain {
	chain := NewMockSourceChain(ctrl)
	chain.EXPECT().ChainID().Return("cosmoshub-4").AnyTimes()
	gomock.InOrder(
		chain.EXPECT().LatestHeight(gomock.Any()).Return(uint64(999), nil),
		chain.EXPECT().LatestHeight(gomock.Any()).Return(uint64(1000), nil).AnyTimes(),
	)
	chain.EXPECT().BlockResults(gomock.Any(), uint64(1000)).Return(
		block(1000, tx(0, sendPacketEvent("42", transferJSON("100", "uatom")))), nil,
	).AnyTimes()
	return chain
}

func runSupervisor(t *testing.T, pairs []RelayPair, factory PollerFactory) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, NewRelaySupervisor(pairs, factory, testPollerConfig()).Run(ctx))
}

func TestRelaySupervisorIsolatesPairs(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := checkpoint.NewMemStore()
	sink := &recordingSink{}

	good := testPair()
	failing := testPair()
	failing.Name = "failing"
	panicking := testPair()
	panicking.Name = "panicking"
	invalid := testPair()
	invalid.Name = "invalid"
	invalid.Signer = ""

	var invalidCalls atomic.Int32
	factory := func(ctx context.Context, pair RelayPair) (*ChainPoller, error) {
		switch pair.Name {
		case failing.Name:
			return nil, errorsmod.Wrap(ErrConfig, "unknown prover")
		case panicking.Name:
			panic("boom")
		case invalid.Name:
			invalidCalls.Add(1)
			return nil, errors.New("unreachable")
		default:
			return NewChainPoller(ctx, pair, newRelayingChain(ctrl), NoProofProvider{}, sink, store, testPollerConfig())
		}
	}

	runSupervisor(t, []RelayPair{failing, panicking, invalid, good}, factory)

	require.Equal(t, []uint64{42}, sink.sequences())
	require.Zero(t, invalidCalls.Load())
	h, ok, err := store.LoadCursor(good.Name)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(1000), h)
}

func TestRelaySupervisorRetriesConnection(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := &recordingSink{}

	var calls atomic.Int32
	factory := func(ctx context.Context, pair RelayPair) (*ChainPoller, error) {
		if calls.Add(1) < 3 {
			return nil, errorsmod.Wrap(ErrConnection, "connection refused")
		}
		return NewChainPoller(ctx, pair, newRelayingChain(ctrl), NoProofProvider{}, sink, checkpoint.NewMemStore(), testPollerConfig())
	}

	runSupervisor(t, []RelayPair{testPair()}, factory)

	require.Equal(t, int32(3), calls.Load())
	require.Equal(t, []uint64{42}, sink.sequences())
}

func TestRelaySupervisorRecoversPollerPanic(t *testing.T) {
	ctrl := gomock.NewController(t)
	good := &recordingSink{}

	other := testPair()
	other.Name = "other"
	factory := func(ctx context.Context, pair RelayPair) (*ChainPoller, error) {
		var sink MessageSink = good
		if pair.Name == other.Name {
			sink = SinkFunc(func(context.Context, *ReceiveMessage) error {
				panic("sink exploded")
			})
		}
		return NewChainPoller(ctx, pair, newRelayingChain(ctrl), NoProofProvider{}, sink, checkpoint.NewMemStore(), testPollerConfig())
	}

	runSupervisor(t, []RelayPair{other, testPair()}, factory)

	require.Equal(t, []uint64{42}, good.sequences())
}
