package cmd

import (
	"context"
	"testing"

	errorsmod "cosmossdk.io/errors"
	"github.com/hyperledger-labs/aero-relay/checkpoint"
	"github.com/hyperledger-labs/aero-relay/config"
	"github.com/hyperledger-labs/aero-relay/core"
	mockmodule "github.com/hyperledger-labs/aero-relay/provers/mock/module"
	"github.com/stretchr/testify/require"
)

func relayConfig(name, srcChannel string) config.RelayPairConfig {
	return config.RelayPairConfig{
		Name:       name,
		SrcChain:   "cosmoshub-4",
		SrcRPC:     "http://127.0.0.1:26657",
		SrcChannel: srcChannel,
		SrcPort:    "transfer",
		DstChain:   "osmosis-1",
		DstChannel: "channel-0",
		DstPort:    "transfer",
		Signer:     "osmo1signer",
	}
}

func testContext(relays ...config.RelayPairConfig) *config.Context {
	cfg := config.DefaultConfig("")
	cfg.Relays = relays
	return &config.Context{Modules: []config.ModuleI{mockmodule.Module{}}, Config: &cfg}
}

func TestSelectRelays(t *testing.T) {
	broken := relayConfig("broken", "channel-9")
	broken.SrcRPC = ""
	ctx := testContext(relayConfig("hub-osmo", "channel-7"), relayConfig("hub-osmo-2", "channel-8"), broken)

	tests := []struct {
		name    string
		names   []string
		want    []string
		wantErr bool
	}{
		{"all valid relays", nil, []string{"hub-osmo", "hub-osmo-2"}, false},
		{"selected relay", []string{"hub-osmo-2"}, []string{"hub-osmo-2"}, false},
		{"unknown relay", []string{"unknown"}, nil, true},
		{"invalid relay", []string{"broken"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relays, err := selectRelays(ctx, tt.names)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			var names []string
			for _, r := range relays {
				names = append(names, r.Name)
			}
			require.Equal(t, tt.want, names)
		})
	}
}

func TestSelectRelaysNone(t *testing.T) {
	_, err := selectRelays(testContext(), nil)
	require.True(t, errorsmod.IsOf(err, core.ErrConfig))
}

func TestNewSinkWithoutEndpoint(t *testing.T) {
	sink, closeSink, err := newSink(testContext())
	require.NoError(t, err)
	require.IsType(t, core.LogSink{}, sink)
	require.NoError(t, closeSink())
}

func TestPollerFactory(t *testing.T) {
	ctx := testContext(relayConfig("hub-osmo", "channel-7"))
	relays, err := selectRelays(ctx, nil)
	require.NoError(t, err)
	pair := relays[0].RelayPair

	store := checkpoint.NewMemStore()
	require.NoError(t, store.SaveCursor(pair.Name, 1000))
	cfg := ctx.Config.Global.PollerConfig(true)

	factory := newPollerFactory(ctx, map[string]string{pair.Name: "mock"}, true, core.LogSink{}, store, cfg)
	poller, err := factory(context.Background(), pair)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), poller.Cursor().LastHeight())

	factory = newPollerFactory(ctx, map[string]string{pair.Name: "unknown"}, false, core.LogSink{}, store, cfg)
	_, err = factory(context.Background(), pair)
	require.True(t, errorsmod.IsOf(err, core.ErrConfig))
}
