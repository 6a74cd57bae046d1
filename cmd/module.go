package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/hyperledger-labs/aero-relay/config"
	"github.com/spf13/cobra"
)

func modulesCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "show the prover modules linked into the relayer",
		RunE:  noCommand,
	}

	cmd.AddCommand(
		showModulesCmd(ctx),
	)

	return cmd
}

// moduleInfo describes a module and the Go module it was built from.
type moduleInfo struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Version string `json:"version"`
	Command bool   `json:"command"`
}

func showModulesCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Shows the modules included in the relayer and the prover names they provide",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bi, ok := debug.ReadBuildInfo()
			if !ok {
				return fmt.Errorf("could not read build info")
			}

			infos := make([]moduleInfo, 0, len(ctx.Modules))
			for _, m := range ctx.Modules {
				info, err := retrieveModuleInfo(bi, m)
				if err != nil {
					return err
				}
				info.Command = m.GetCmd(ctx) != nil
				infos = append(infos, info)
			}
			slices.SortFunc(infos, func(a, b moduleInfo) int {
				return strings.Compare(a.Name, b.Name)
			})

			if asJSON, _ := cmd.Flags().GetBool(flagJSON); asJSON {
				bz, err := json.Marshal(infos)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(bz))
				return nil
			}
			for _, info := range infos {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", info.Name, info.Path, info.Version)
			}
			return nil
		},
	}
	return jsonFlag(cmd)
}

func retrieveModuleInfo(info *debug.BuildInfo, m config.ModuleI) (moduleInfo, error) {
	if info == nil {
		return moduleInfo{}, errors.New("build info is unavailable")
	}

	pkgPath := reflect.TypeOf(m).PkgPath()
	if strings.HasPrefix(pkgPath, info.Main.Path) {
		return moduleInfo{Name: m.Name(), Path: info.Main.Path, Version: info.Main.Version}, nil
	}

	i := slices.IndexFunc(info.Deps, func(dm *debug.Module) bool {
		return strings.HasPrefix(pkgPath, dm.Path)
	})
	if i == -1 {
		return moduleInfo{}, fmt.Errorf("could not find module info for %s", m.Name())
	}

	return moduleInfo{Name: m.Name(), Path: info.Deps[i].Path, Version: info.Deps[i].Version}, nil
}
