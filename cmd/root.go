package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/hyperledger-labs/aero-relay/config"
	"github.com/hyperledger-labs/aero-relay/internal/telemetry"
	"github.com/hyperledger-labs/aero-relay/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	appName    = "aero"
	configPath = "config/config.toml"
)

var (
	homePath    string
	defaultHome = os.ExpandEnv("$HOME/.aero-relay")
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(modules ...config.ModuleI) error {
	// rootCmd represents the base command when called without any subcommands
	var rootCmd = &cobra.Command{
		Use:   appName,
		Short: "This application relays ICS-20 transfer packets between configured IBC channels",
	}

	cobra.EnableCommandSorting = false
	rootCmd.SilenceUsage = true

	rootCmd.PersistentFlags().StringVar(&homePath, flags.FlagHome, defaultHome, "set home directory")
	rootCmd.PersistentFlags().String(flagConfig, "", "config file, defaults to <home>/"+configPath)
	rootCmd.PersistentFlags().String(flagLogLevel, "", "override the log level of the config file")
	rootCmd.PersistentFlags().String(flagLogFormat, "", "override the log format of the config file")
	rootCmd.PersistentFlags().String(flagLogOutput, "", "override the log output of the config file")
	rootCmd.PersistentFlags().Bool(flagEnableTelemetry, false, "enable the OpenTelemetry SDK")
	for _, name := range []string{flags.FlagHome, flagConfig, flagLogLevel, flagLogFormat, flagLogOutput, flagEnableTelemetry} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			return err
		}
	}

	ctx := &config.Context{Modules: modules, Config: &config.Config{}}

	var shutdownTelemetry func(context.Context) error
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		// reads `homeDir/config/config.toml` into `ctx.Config` before each command
		if err := initConfig(ctx); err != nil {
			return err
		}
		if err := initLogger(ctx); err != nil {
			return err
		}
		if viper.GetBool(flagEnableTelemetry) {
			shutdown, err := telemetry.SetupOTelSDK(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to set up the OpenTelemetry SDK: %w", err)
			}
			shutdownTelemetry = shutdown
		}
		return telemetry.InitializeMetrics()
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, _ []string) error {
		if shutdownTelemetry == nil {
			return nil
		}
		return shutdownTelemetry(context.Background())
	}

	rootCmd.AddCommand(
		configCmd(ctx),
		relaysCmd(ctx),
		serviceCmd(ctx),
		transportCmd(ctx),
		modulesCmd(ctx),
	)

	for _, module := range modules {
		if cmd := module.GetCmd(ctx); cmd != nil {
			rootCmd.AddCommand(cmd)
		}
	}

	return rootCmd.ExecuteContext(context.Background())
}

func cfgPath() string {
	if p := viper.GetString(flagConfig); p != "" {
		return p
	}
	return filepath.Join(viper.GetString(flags.FlagHome), configPath)
}

// initConfig reads in config file and ENV variables if set.
func initConfig(ctx *config.Context) error {
	cfg, err := config.LoadOrDefault(cfgPath())
	if err != nil {
		return err
	}
	ctx.Config = cfg
	return nil
}

func initLogger(ctx *config.Context) error {
	c := ctx.Config.Global.Log
	for _, o := range []struct {
		dst  *string
		flag string
	}{
		{&c.Level, flagLogLevel},
		{&c.Format, flagLogFormat},
		{&c.Output, flagLogOutput},
	} {
		if v := viper.GetString(o.flag); v != "" {
			*o.dst = v
		}
	}
	return log.InitLoggerWithFile(c.Level, c.Format, c.Output, c.File, viper.GetBool(flagEnableTelemetry))
}

func noCommand(cmd *cobra.Command, args []string) error {
	cmd.Help()
	return fmt.Errorf("specify a subcommand")
}
