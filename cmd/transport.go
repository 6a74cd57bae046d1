package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	chantypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	"github.com/hyperledger-labs/aero-relay/config"
	"github.com/hyperledger-labs/aero-relay/log"
	"github.com/hyperledger-labs/aero-relay/transport"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

func transportCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transport",
		Short: "manage the message transport",
		RunE:  noCommand,
	}
	cmd.AddCommand(
		transportServeCmd(ctx),
	)
	return cmd
}

func transportServeCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run a transport server logging the messages it receives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := transport.NewServer(cryptoConfig(ctx.Config.Transport), logHandler())
			if err != nil {
				return err
			}
			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, unix.SIGTERM)
			defer stop()
			if err := srv.ListenAndServe(sigCtx, listenAddr(cmd, ctx)); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	return listenAddrFlag(cmd)
}

func cryptoConfig(c config.TransportConfig) transport.CryptoConfig {
	return transport.CryptoConfig{
		CertFile:           c.CertFile,
		KeyFile:            c.KeyFile,
		CAFile:             c.CAFile,
		ServerName:         c.ServerName,
		InsecureSkipVerify: c.InsecureSkipVerify,
	}
}

func listenAddr(cmd *cobra.Command, ctx *config.Context) string {
	if addr, _ := cmd.Flags().GetString(flagListenAddr); addr != "" {
		return addr
	}
	return ctx.Config.Transport.ListenAddr
}

func logHandler() transport.Handler {
	logger := log.GetLogger().WithModule("transport.handler")
	return func(ctx context.Context, msg *chantypes.MsgRecvPacket) error {
		logger.InfoContext(ctx, "received packet",
			"sequence", msg.Packet.Sequence,
			"src_channel", msg.Packet.SourceChannel,
			"dst_channel", msg.Packet.DestinationChannel,
			"proof_height", msg.ProofHeight.String(),
			"signer", msg.Signer,
		)
		return nil
	}
}
