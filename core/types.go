package core

import (
	"fmt"
	"strings"

	errorsmod "cosmossdk.io/errors"
)

// RelayPair is the resolved, validated configuration of one monitored channel.
// It is immutable for the lifetime of a poller.
type RelayPair struct {
	Name string

	SrcChainID string
	SrcRPC     string
	SrcChannel string
	SrcPort    string

	DstChainID string
	DstRPC     string
	DstChannel string
	DstPort    string

	Signer             string
	PacketDataEncoding PacketDataEncoding
}

func (p RelayPair) String() string {
	return fmt.Sprintf("%s(%s/%s:%s -> %s/%s:%s)",
		p.Name, p.SrcChainID, p.SrcPort, p.SrcChannel, p.DstChainID, p.DstPort, p.DstChannel)
}

func (p RelayPair) Validate() error {
	isEmpty := func(s string) bool {
		return strings.TrimSpace(s) == ""
	}

	var missing []string
	for _, f := range []struct{ key, value string }{
		{"name", p.Name},
		{"src_chain", p.SrcChainID},
		{"src_rpc", p.SrcRPC},
		{"src_channel", p.SrcChannel},
		{"src_port", p.SrcPort},
		{"dst_chain", p.DstChainID},
		{"dst_channel", p.DstChannel},
		{"dst_port", p.DstPort},
		{"signer", p.Signer},
	} {
		if isEmpty(f.value) {
			missing = append(missing, f.key)
		}
	}
	if len(missing) > 0 {
		return errorsmod.Wrapf(ErrConfig, "relay %q: empty attributes %s", p.Name, strings.Join(missing, ", "))
	}
	if _, err := ParsePacketDataEncoding(string(p.PacketDataEncoding)); err != nil {
		return errorsmod.Wrapf(ErrConfig, "relay %q: %v", p.Name, err)
	}
	return nil
}
