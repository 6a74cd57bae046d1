package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hyperledger-labs/aero-relay/config"
	"github.com/spf13/cobra"
)

func relaysCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "relays",
		Aliases: []string{"r"},
		Short:   "manage relay pairs",
		RunE:    noCommand,
	}

	cmd.AddCommand(
		relaysListCmd(ctx),
	)

	return cmd
}

type relayView struct {
	Name       string `json:"name"`
	Src        string `json:"src"`
	Dst        string `json:"dst"`
	Prover     string `json:"prover"`
	Encoding   string `json:"packet_data_encoding"`
	Checkpoint uint64 `json:"checkpoint,omitempty"`
	Error      string `json:"error,omitempty"`
}

func relaysListCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"l"},
		Short:   "print the resolved relay pairs and their checkpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			relays, errs := ctx.Config.ResolveRelays()
			views := make([]relayView, 0, len(relays)+len(errs))
			for _, r := range relays {
				v := relayView{
					Name:     r.Name,
					Src:      fmt.Sprintf("%s:%s/%s", r.SrcChainID, r.SrcPort, r.SrcChannel),
					Dst:      fmt.Sprintf("%s:%s/%s", r.DstChainID, r.DstPort, r.DstChannel),
					Prover:   r.Prover,
					Encoding: string(r.PacketDataEncoding),
				}
				if h, ok, err := store.LoadCursor(r.Name); err != nil {
					v.Error = err.Error()
				} else if ok {
					v.Checkpoint = h
				}
				views = append(views, v)
			}
			for _, err := range errs {
				views = append(views, relayView{Error: err.Error()})
			}

			if asJSON, _ := cmd.Flags().GetBool(flagJSON); asJSON {
				bz, err := json.MarshalIndent(views, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(bz))
				return nil
			}
			for _, v := range views {
				if v.Name == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "invalid: %s\n", v.Error)
					continue
				}
				fields := []string{v.Name, v.Src, "->", v.Dst, "prover=" + v.Prover, "encoding=" + v.Encoding}
				if v.Checkpoint > 0 {
					fields = append(fields, fmt.Sprintf("checkpoint=%d", v.Checkpoint))
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(fields, " "))
			}
			return nil
		},
	}
	return jsonFlag(cmd)
}
