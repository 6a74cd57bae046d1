package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	flagConfig          = "config"
	flagLogLevel        = "log-level"
	flagLogFormat       = "log-format"
	flagLogOutput       = "log-output"
	flagEnableTelemetry = "enable-telemetry"
	flagJSON            = "json"
	flagYAML            = "yaml"
	flagRelay           = "relay"
	flagServe           = "serve"
	flagListenAddr      = "listen-addr"
	flagDebugChain      = "debug-chain"
)

func yamlFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().BoolP(flagYAML, "y", false, "output using yaml")
	return cmd
}

func jsonFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().BoolP(flagJSON, "j", false, "returns the response in json format")
	return cmd
}

func relayFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().StringSlice(flagRelay, nil, "names of the relays to run, all relays when empty")
	bindFlag(cmd.Flags(), flagRelay)
	return cmd
}

func listenAddrFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().String(flagListenAddr, "", "address the transport server listens on, defaults to transport.listen_addr")
	return cmd
}

func debugChainFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().Bool(flagDebugChain, false, "wrap source chains with the env-driven fault injection of the debug chain")
	bindFlag(cmd.Flags(), flagDebugChain)
	return cmd
}

func bindFlag(flags *pflag.FlagSet, name string) {
	if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
		panic(err)
	}
}
