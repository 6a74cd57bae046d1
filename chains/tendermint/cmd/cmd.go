package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/hyperledger-labs/aero-relay/chains/tendermint"
	"github.com/hyperledger-labs/aero-relay/config"
	"github.com/hyperledger-labs/aero-relay/core"
	"github.com/spf13/cobra"
)

func TendermintCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tendermint",
		Short: "inspect tendermint source chains",
	}

	cmd.AddCommand(
		heightCmd(ctx),
		scanCmd(ctx),
	)

	return cmd
}

func heightCmd(ctx *config.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "height [relay-name]",
		Short: "query the latest height of the source chain of a relay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, chain, err := sourceChain(ctx, args[0])
			if err != nil {
				return err
			}
			h, err := chain.LatestHeight(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

type scanResult struct {
	Kind    core.EventKind     `json:"kind"`
	TxIndex int                `json:"tx_index"`
	Packet  *core.ParsedPacket `json:"packet,omitempty"`
	Error   string             `json:"error,omitempty"`
}

func scanCmd(ctx *config.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [relay-name] [height]",
		Short: "decode the packets of a relay's channel at a height without relaying them",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			height, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid height %q: %w", args[1], err)
			}
			relay, chain, err := sourceChain(ctx, args[0])
			if err != nil {
				return err
			}
			res, err := chain.BlockResults(cmd.Context(), height)
			if err != nil {
				return err
			}

			results := []scanResult{}
			for ev := range core.ScanEvents(res, relay.SrcChannel) {
				r := scanResult{Kind: ev.Kind, TxIndex: ev.TxIndex}
				if p, err := core.DecodePacket(ev); err != nil {
					r.Error = err.Error()
				} else {
					r.Packet = p
				}
				results = append(results, r)
			}
			bz, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			return nil
		},
	}
}

func sourceChain(ctx *config.Context, name string) (config.Relay, *tendermint.Chain, error) {
	relay, err := ctx.Config.FindRelay(name)
	if err != nil {
		return config.Relay{}, nil, err
	}
	chain, err := tendermint.ChainConfig{
		ChainID: relay.SrcChainID,
		RPCAddr: relay.SrcRPC,
		Timeout: ctx.Config.Global.GetRPCTimeout(),
	}.Build()
	if err != nil {
		return config.Relay{}, nil, err
	}
	return relay, chain, nil
}
