package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperledger-labs/aero-relay/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const redacted = "<redacted>"

func configCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "manage configuration file",
		RunE:    noCommand,
	}

	cmd.AddCommand(
		configShowCmd(ctx),
		configInitCmd(ctx),
		configValidateCmd(ctx),
	)

	return cmd
}

// configInitCmd writes the default config to the config path unless a file already exists there.
func configInitCmd(ctx *config.Context) *cobra.Command {
	return &cobra.Command{
		Use:     "init",
		Aliases: []string{"i"},
		Short:   "Creates a default config file at the path defined by --home or --config",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeDefaultConfig(ctx.Config.ConfigPath)
		},
	}
}

// writeDefaultConfig writes the default config in the format named by the file extension.
func writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	bz, err := config.MarshalYAML(config.DefaultConfig(path))
	if err != nil {
		return err
	}
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(bz)); err != nil {
		return err
	}
	v.SetConfigPermissions(0o600)
	return v.WriteConfigAs(path)
}

// configShowCmd prints the loaded config with private keys redacted.
func configShowCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "show",
		Aliases: []string{"s", "list", "l"},
		Short:   "Prints current configuration",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(ctx.Config.ConfigPath); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("config does not exist: %s", ctx.Config.ConfigPath)
			}

			cfg := redactKeys(*ctx.Config)
			marshal := config.MarshalJSON
			if asYAML, _ := cmd.Flags().GetBool(flagYAML); asYAML {
				marshal = config.MarshalYAML
			}
			out, err := marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	return yamlFlag(cmd)
}

// configValidateCmd reports every invalid setting and relay of the config.
func configValidateCmd(ctx *config.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validates the global settings and every relay of the config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			errs := []error{ctx.Config.Validate()}
			relays, relayErrs := ctx.Config.ResolveRelays()
			errs = append(errs, relayErrs...)
			if err := errors.Join(errs...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config is valid: %d relay(s)\n", len(relays))
			return nil
		},
	}
}

func redactKeys(cfg config.Config) config.Config {
	redact := func(rc config.RelayPairConfig) config.RelayPairConfig {
		if rc.PrivateKeySrc != "" {
			rc.PrivateKeySrc = redacted
		}
		if rc.PrivateKeyDst != "" {
			rc.PrivateKeyDst = redacted
		}
		return rc
	}

	relays := make([]config.RelayPairConfig, len(cfg.Relays))
	for i, rc := range cfg.Relays {
		relays[i] = redact(rc)
	}
	cfg.Relays = relays

	presets := make(map[string]config.RelayPairConfig, len(cfg.Presets))
	for name, rc := range cfg.Presets {
		presets[name] = redact(rc)
	}
	cfg.Presets = presets
	return cfg
}
