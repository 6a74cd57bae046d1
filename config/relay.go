package config

import (
	"encoding/hex"
	"fmt"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/hyperledger-labs/aero-relay/core"
)

// RelayPairConfig is one monitored channel as written in the config file.
// Empty fields are inherited from the named preset.
type RelayPairConfig struct {
	Name   string `mapstructure:"name" yaml:"name,omitempty" json:"name,omitempty"`
	Preset string `mapstructure:"preset" yaml:"preset,omitempty" json:"preset,omitempty"`

	SrcChain   string `mapstructure:"src_chain" yaml:"src_chain,omitempty" json:"src_chain,omitempty"`
	SrcRPC     string `mapstructure:"src_rpc" yaml:"src_rpc,omitempty" json:"src_rpc,omitempty"`
	SrcChannel string `mapstructure:"src_channel" yaml:"src_channel,omitempty" json:"src_channel,omitempty"`
	SrcPort    string `mapstructure:"src_port" yaml:"src_port,omitempty" json:"src_port,omitempty"`

	DstChain   string `mapstructure:"dst_chain" yaml:"dst_chain,omitempty" json:"dst_chain,omitempty"`
	DstRPC     string `mapstructure:"dst_rpc" yaml:"dst_rpc,omitempty" json:"dst_rpc,omitempty"`
	DstChannel string `mapstructure:"dst_channel" yaml:"dst_channel,omitempty" json:"dst_channel,omitempty"`
	DstPort    string `mapstructure:"dst_port" yaml:"dst_port,omitempty" json:"dst_port,omitempty"`

	// hex encoded secp256k1 keys
	PrivateKeySrc    string `mapstructure:"private_key_src" yaml:"private_key_src,omitempty" json:"private_key_src,omitempty"`
	PrivateKeyDst    string `mapstructure:"private_key_dst" yaml:"private_key_dst,omitempty" json:"private_key_dst,omitempty"`
	DstAccountPrefix string `mapstructure:"dst_account_prefix" yaml:"dst_account_prefix,omitempty" json:"dst_account_prefix,omitempty"`

	Signer             string `mapstructure:"signer" yaml:"signer,omitempty" json:"signer,omitempty"`
	Prover             string `mapstructure:"prover" yaml:"prover,omitempty" json:"prover,omitempty"`
	PacketDataEncoding string `mapstructure:"packet_data_encoding" yaml:"packet_data_encoding,omitempty" json:"packet_data_encoding,omitempty"`
}

// Relay is a validated relay pair with the name of its proof provider.
type Relay struct {
	core.RelayPair
	Prover string
}

// withDefaults fills the empty fields of c from d.
func (c RelayPairConfig) withDefaults(d RelayPairConfig) RelayPairConfig {
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&c.SrcChain, d.SrcChain},
		{&c.SrcRPC, d.SrcRPC},
		{&c.SrcChannel, d.SrcChannel},
		{&c.SrcPort, d.SrcPort},
		{&c.DstChain, d.DstChain},
		{&c.DstRPC, d.DstRPC},
		{&c.DstChannel, d.DstChannel},
		{&c.DstPort, d.DstPort},
		{&c.PrivateKeySrc, d.PrivateKeySrc},
		{&c.PrivateKeyDst, d.PrivateKeyDst},
		{&c.DstAccountPrefix, d.DstAccountPrefix},
		{&c.Signer, d.Signer},
		{&c.Prover, d.Prover},
		{&c.PacketDataEncoding, d.PacketDataEncoding},
	} {
		if strings.TrimSpace(*f.dst) == "" {
			*f.dst = f.src
		}
	}
	return c
}

// ResolveRelays applies presets and global defaults to every relay pair and validates it.
// Invalid pairs are reported in errs and left out of relays; the valid ones are returned in config order.
func (c Config) ResolveRelays() (relays []Relay, errs []error) {
	seen := make(map[string]bool)
	for i, rc := range c.Relays {
		r, err := c.resolveRelay(rc)
		if err != nil {
			errs = append(errs, errorsmod.Wrapf(err, "relays[%d]", i))
			continue
		}
		if seen[r.Name] {
			errs = append(errs, errorsmod.Wrapf(core.ErrConfig, "relays[%d]: duplicate relay name %q", i, r.Name))
			continue
		}
		seen[r.Name] = true
		relays = append(relays, r)
	}
	return relays, errs
}

// FindRelay resolves the relay pair with the given name.
func (c Config) FindRelay(name string) (Relay, error) {
	for _, rc := range c.Relays {
		if rc.Name == name {
			return c.resolveRelay(rc)
		}
	}
	return Relay{}, fmt.Errorf("relay %q is not configured", name)
}

func (c Config) resolveRelay(rc RelayPairConfig) (Relay, error) {
	if rc.Preset != "" {
		// viper lowercases map keys
		preset, ok := c.Presets[strings.ToLower(rc.Preset)]
		if !ok {
			return Relay{}, errorsmod.Wrapf(core.ErrConfig, "relay %q: preset %q is not defined", rc.Name, rc.Preset)
		}
		rc = rc.withDefaults(preset)
	}
	rc = rc.withDefaults(RelayPairConfig{
		Prover:             c.Global.Prover,
		PacketDataEncoding: c.Global.PacketDataEncoding,
	})

	signer, err := rc.resolveSigner(c.Global.Signer)
	if err != nil {
		return Relay{}, errorsmod.Wrapf(core.ErrConfig, "relay %q: %v", rc.Name, err)
	}
	encoding, err := core.ParsePacketDataEncoding(rc.PacketDataEncoding)
	if err != nil {
		return Relay{}, errorsmod.Wrapf(core.ErrConfig, "relay %q: %v", rc.Name, err)
	}
	if rc.PrivateKeySrc != "" {
		if _, err := parsePrivKey(rc.PrivateKeySrc); err != nil {
			return Relay{}, errorsmod.Wrapf(core.ErrConfig, "relay %q: private_key_src: %v", rc.Name, err)
		}
	}

	r := Relay{
		RelayPair: core.RelayPair{
			Name:               rc.Name,
			SrcChainID:         rc.SrcChain,
			SrcRPC:             rc.SrcRPC,
			SrcChannel:         rc.SrcChannel,
			SrcPort:            rc.SrcPort,
			DstChainID:         rc.DstChain,
			DstRPC:             rc.DstRPC,
			DstChannel:         rc.DstChannel,
			DstPort:            rc.DstPort,
			Signer:             signer,
			PacketDataEncoding: encoding,
		},
		Prover: rc.Prover,
	}
	if err := r.Validate(); err != nil {
		return Relay{}, err
	}
	return r, nil
}

// resolveSigner picks the explicit signer, then the address of private_key_dst, then the global signer.
func (c RelayPairConfig) resolveSigner(globalSigner string) (string, error) {
	if c.Signer != "" {
		return c.Signer, nil
	}
	if c.PrivateKeyDst != "" {
		if c.DstAccountPrefix == "" {
			return "", fmt.Errorf("dst_account_prefix is required to derive the signer from private_key_dst")
		}
		priv, err := parsePrivKey(c.PrivateKeyDst)
		if err != nil {
			return "", fmt.Errorf("private_key_dst: %w", err)
		}
		return sdk.Bech32ifyAddressBytes(c.DstAccountPrefix, priv.PubKey().Address())
	}
	if globalSigner != "" {
		return globalSigner, nil
	}
	return "", fmt.Errorf("no signer: set signer, private_key_dst or the global signer")
}

func parsePrivKey(s string) (*secp256k1.PrivKey, error) {
	bz, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, err
	}
	if len(bz) != secp256k1.PrivKeySize {
		return nil, fmt.Errorf("invalid key length %d", len(bz))
	}
	return &secp256k1.PrivKey{Key: bz}, nil
}
