package core

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
	"unicode/utf8"

	errorsmod "cosmossdk.io/errors"
	chantypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
)

// FungibleTokenPacketData is the ICS-20 transfer payload carried by a packet.
type FungibleTokenPacketData struct {
	Amount   string
	Denom    string
	Sender   string
	Receiver string
	Memo     string
}

// PacketKey identifies a packet on its source channel.
type PacketKey struct {
	SrcChannel string
	Sequence   uint64
}

// ParsedPacket is a packet decoded from a channel event.
type ParsedPacket struct {
	Sequence         uint64
	SrcPort          string
	SrcChannel       string
	DstPort          string
	DstChannel       string
	TimeoutHeight    string
	TimeoutTimestamp uint64
	Data             FungibleTokenPacketData
	// RawData is the packet data exactly as committed on the source chain.
	RawData []byte
}

func (p *ParsedPacket) Key() PacketKey {
	return PacketKey{SrcChannel: p.SrcChannel, Sequence: p.Sequence}
}

type packetDataJSON struct {
	Amount   *string `json:"amount"`
	Denom    *string `json:"denom"`
	Sender   *string `json:"sender"`
	Receiver *string `json:"receiver"`
	Memo     *string `json:"memo"`
}

// DecodePacket turns the attributes of a channel event into a ParsedPacket.
// It depends on nothing but the event, so decoding the same event twice yields equal packets.
func DecodePacket(ev ChannelEvent) (*ParsedPacket, error) {
	attrs := ev.Attributes

	seq, err := requireUint64(attrs, chantypes.AttributeKeySequence)
	if err != nil {
		return nil, err
	}
	timeoutTimestamp, err := requireUint64(attrs, chantypes.AttributeKeyTimeoutTimestamp)
	if err != nil {
		return nil, err
	}

	p := &ParsedPacket{
		Sequence:         seq,
		TimeoutTimestamp: timeoutTimestamp,
	}
	for _, f := range []struct {
		key string
		dst *string
	}{
		{chantypes.AttributeKeySrcPort, &p.SrcPort},
		{chantypes.AttributeKeySrcChannel, &p.SrcChannel},
		{chantypes.AttributeKeyDstPort, &p.DstPort},
		{chantypes.AttributeKeyDstChannel, &p.DstChannel},
	} {
		v, ok := attrs.Get(f.key)
		if !ok || v == "" {
			return nil, errorsmod.Wrapf(ErrDecode, "attribute %q is missing", f.key)
		}
		*f.dst = v
	}
	p.TimeoutHeight, _ = attrs.Get(chantypes.AttributeKeyTimeoutHeight)

	dataHex, ok := attrs.Get(chantypes.AttributeKeyDataHex)
	if !ok {
		return nil, errorsmod.Wrapf(ErrDecode, "attribute %q is missing", chantypes.AttributeKeyDataHex)
	}
	raw, err := hex.DecodeString(dataHex)
	if err != nil {
		return nil, errorsmod.Wrapf(ErrDecode, "attribute %q is not hex: %v", chantypes.AttributeKeyDataHex, err)
	}
	data, err := DecodeFungibleTokenPacketData(raw)
	if err != nil {
		return nil, err
	}
	p.Data = *data
	p.RawData = raw
	return p, nil
}

// DecodeFungibleTokenPacketData parses a UTF-8 JSON transfer payload. amount, denom, sender
// and receiver must be present as strings; memo is optional.
func DecodeFungibleTokenPacketData(raw []byte) (*FungibleTokenPacketData, error) {
	if !utf8.Valid(raw) {
		return nil, errorsmod.Wrap(ErrDecode, "packet data is not valid UTF-8")
	}
	var pd packetDataJSON
	if err := json.Unmarshal(raw, &pd); err != nil {
		return nil, errorsmod.Wrapf(ErrDecode, "packet data is not a JSON object: %v", err)
	}

	var data FungibleTokenPacketData
	for _, f := range []struct {
		key string
		src *string
		dst *string
	}{
		{"amount", pd.Amount, &data.Amount},
		{"denom", pd.Denom, &data.Denom},
		{"sender", pd.Sender, &data.Sender},
		{"receiver", pd.Receiver, &data.Receiver},
	} {
		if f.src == nil {
			return nil, errorsmod.Wrapf(ErrDecode, "packet data field %q is missing", f.key)
		}
		*f.dst = *f.src
	}
	if pd.Memo != nil {
		data.Memo = *pd.Memo
	}
	return &data, nil
}

func requireUint64(attrs Attributes, key string) (uint64, error) {
	v, ok := attrs.Get(key)
	if !ok {
		return 0, errorsmod.Wrapf(ErrDecode, "attribute %q is missing", key)
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, errorsmod.Wrapf(ErrDecode, "attribute %q: %v", key, err)
	}
	return n, nil
}
