package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"

	errorsmod "cosmossdk.io/errors"
	"github.com/hyperledger-labs/aero-relay/chains/debug"
	"github.com/hyperledger-labs/aero-relay/chains/tendermint"
	"github.com/hyperledger-labs/aero-relay/checkpoint"
	"github.com/hyperledger-labs/aero-relay/config"
	"github.com/hyperledger-labs/aero-relay/core"
	"github.com/hyperledger-labs/aero-relay/log"
	"github.com/hyperledger-labs/aero-relay/otelcore"
	"github.com/hyperledger-labs/aero-relay/transport"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

func serviceCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Relay Service Commands",
		Long:  "Commands to manage the relay service",
		RunE:  noCommand,
	}
	cmd.AddCommand(
		startCmd(ctx),
	)
	return cmd
}

func startCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "poll the source chains of the configured relays and relay their transfer packets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.Config.Validate(); err != nil {
				return err
			}
			relays, err := selectRelays(ctx, viper.GetStringSlice(flagRelay))
			if err != nil {
				return err
			}

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			sink, closeSink, err := newSink(ctx)
			if err != nil {
				return err
			}
			defer closeSink()

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, unix.SIGTERM)
			defer stop()

			pollerCfg := ctx.Config.Global.PollerConfig(ctx.Config.Checkpoint.Resume)
			pairs := make([]core.RelayPair, len(relays))
			provers := make(map[string]string, len(relays))
			for i, r := range relays {
				pairs[i] = r.RelayPair
				provers[r.Name] = r.Prover
			}
			supervisor := core.NewRelaySupervisor(pairs, newPollerFactory(ctx, provers, viper.GetBool(flagDebugChain), sink, store, pollerCfg), pollerCfg)

			eg, egCtx := errgroup.WithContext(sigCtx)
			if viper.GetBool(flagServe) {
				srv, err := transport.NewServer(cryptoConfig(ctx.Config.Transport), logHandler())
				if err != nil {
					return err
				}
				eg.Go(func() error {
					return srv.ListenAndServe(egCtx, listenAddr(cmd, ctx))
				})
			}
			eg.Go(func() error {
				return supervisor.Run(egCtx)
			})
			if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().Bool(flagServe, false, "also run a transport server logging the messages it receives")
	bindFlag(cmd.Flags(), flagServe)
	return debugChainFlag(listenAddrFlag(relayFlag(cmd)))
}

// selectRelays resolves the configured relays. Invalid relays are logged and skipped.
func selectRelays(ctx *config.Context, names []string) ([]config.Relay, error) {
	logger := log.GetLogger().WithModule("cmd.service")
	relays, errs := ctx.Config.ResolveRelays()
	for _, err := range errs {
		logger.Error("skipping invalid relay", err)
	}
	if len(names) > 0 {
		for _, name := range names {
			if !slices.ContainsFunc(relays, func(r config.Relay) bool { return r.Name == name }) {
				return nil, fmt.Errorf("relay %q is not configured or invalid", name)
			}
		}
		relays = slices.DeleteFunc(relays, func(r config.Relay) bool {
			return !slices.Contains(names, r.Name)
		})
	}
	if len(relays) == 0 {
		return nil, errorsmod.Wrap(core.ErrConfig, "no valid relay is configured")
	}
	return relays, nil
}

var tracer = otel.Tracer("github.com/hyperledger-labs/aero-relay/cmd")

// newPollerFactory builds pollers over traced tendermint chains and proof providers.
func newPollerFactory(ctx *config.Context, provers map[string]string, debugChain bool, sink core.MessageSink, store core.CheckpointStore, cfg core.PollerConfig) core.PollerFactory {
	return func(pctx context.Context, pair core.RelayPair) (*core.ChainPoller, error) {
		tmChain, err := tendermint.ChainConfig{
			ChainID: pair.SrcChainID,
			RPCAddr: pair.SrcRPC,
			Timeout: ctx.Config.Global.GetRPCTimeout(),
		}.Build()
		if err != nil {
			return nil, errorsmod.Wrapf(core.ErrConfig, "relay %s: %v", pair.Name, err)
		}
		var chain core.SourceChain = tmChain
		if debugChain {
			chain = debug.NewChain(chain)
		}
		chain = otelcore.NewChain(chain, tracer)
		prover, err := ctx.NewProofProvider(provers[pair.Name], chain)
		if err != nil {
			return nil, errorsmod.Wrapf(core.ErrConfig, "relay %s: %v", pair.Name, err)
		}
		prover = otelcore.NewProver(prover, pair.SrcChainID, tracer)
		return core.NewChainPoller(pctx, pair, chain, prover, sink, store, cfg)
	}
}

func openStore(ctx *config.Context) (*checkpoint.Store, error) {
	return checkpoint.Open(ctx.Config.Checkpoint.Backend, ctx.Config.Checkpoint.Dir)
}

// newSink returns the transport client when an endpoint is configured, and a LogSink otherwise.
func newSink(ctx *config.Context) (core.MessageSink, func() error, error) {
	endpoint := ctx.Config.Transport.Endpoint
	if endpoint == "" {
		return core.LogSink{}, func() error { return nil }, nil
	}
	client, err := transport.NewClient(endpoint, cryptoConfig(ctx.Config.Transport),
		transport.WithDeliverTimeout(ctx.Config.DeliverTimeout()))
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}
