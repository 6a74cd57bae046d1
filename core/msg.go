package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	transfertypes "github.com/cosmos/ibc-go/v8/modules/apps/transfer/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	chantypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
)

// PacketDataEncoding selects how the transfer payload is written into the relayed packet.
type PacketDataEncoding string

const (
	// PacketDataEncodingRaw keeps the bytes committed on the source chain.
	PacketDataEncodingRaw PacketDataEncoding = "raw"
	// PacketDataEncodingICS20JSON re-encodes the payload as sorted ICS-20 JSON.
	PacketDataEncodingICS20JSON PacketDataEncoding = "ics20-json"
	// PacketDataEncodingProto re-encodes the payload as protobuf.
	PacketDataEncodingProto PacketDataEncoding = "proto"
)

func ParsePacketDataEncoding(s string) (PacketDataEncoding, error) {
	switch e := PacketDataEncoding(s); e {
	case "":
		return PacketDataEncodingRaw, nil
	case PacketDataEncodingRaw, PacketDataEncodingICS20JSON, PacketDataEncodingProto:
		return e, nil
	default:
		return "", fmt.Errorf("unknown packet data encoding: %q", s)
	}
}

// ReceiveMessage is a MsgRecvPacket ready to be submitted to the destination chain.
type ReceiveMessage struct {
	msg         chantypes.MsgRecvPacket
	eventHeight uint64
}

// Msg returns a copy of the underlying message.
func (m *ReceiveMessage) Msg() *chantypes.MsgRecvPacket {
	msg := m.msg
	return &msg
}

func (m *ReceiveMessage) Packet() chantypes.Packet {
	return m.msg.Packet
}

func (m *ReceiveMessage) ProofCommitment() []byte {
	return append([]byte(nil), m.msg.ProofCommitment...)
}

func (m *ReceiveMessage) ProofHeight() clienttypes.Height {
	return m.msg.ProofHeight
}

func (m *ReceiveMessage) Signer() string {
	return m.msg.Signer
}

// EventHeight is the source chain height of the block containing the packet event.
func (m *ReceiveMessage) EventHeight() uint64 {
	return m.eventHeight
}

func (m *ReceiveMessage) Key() PacketKey {
	return PacketKey{SrcChannel: m.msg.Packet.SourceChannel, Sequence: m.msg.Packet.Sequence}
}

// MessageBuilder builds receive messages for the packets of one relay pair.
type MessageBuilder struct {
	signer         string
	encoding       PacketDataEncoding
	revisionNumber uint64
	prover         ProofProvider
}

func NewMessageBuilder(pair RelayPair, prover ProofProvider) *MessageBuilder {
	encoding := pair.PacketDataEncoding
	if encoding == "" {
		encoding = PacketDataEncodingRaw
	}
	return &MessageBuilder{
		signer:         pair.Signer,
		encoding:       encoding,
		revisionNumber: clienttypes.ParseChainID(pair.SrcChainID),
		prover:         prover,
	}
}

// Build constructs the receive message of a packet emitted in the block at eventHeight.
// Either a complete message is returned or an error with no message.
func (b *MessageBuilder) Build(ctx context.Context, p *ParsedPacket, eventHeight uint64) (*ReceiveMessage, error) {
	if b.signer == "" {
		return nil, errorsmod.Wrap(ErrConfig, "signer is empty")
	}
	timeoutHeight, err := ParseTimeoutHeight(p.TimeoutHeight)
	if err != nil {
		return nil, err
	}
	if err := p.Data.Validate(); err != nil {
		return nil, err
	}
	data, err := b.encodePacketData(p)
	if err != nil {
		return nil, err
	}

	packet := chantypes.NewPacket(data, p.Sequence, p.SrcPort, p.SrcChannel, p.DstPort, p.DstChannel, timeoutHeight, p.TimeoutTimestamp)
	if err := packet.ValidateBasic(); err != nil {
		return nil, errorsmod.Wrapf(ErrInvalidPacket, "%v", err)
	}

	committed := packet
	committed.Data = p.RawData
	proof, err := b.prover.Prove(ctx, ProofRequest{
		RawPacket: p.RawData,
		Packet:    committed,
		Height:    eventHeight,
	})
	if err != nil {
		return nil, errorsmod.Wrapf(ErrProof, "sequence %d: %v", p.Sequence, err)
	}
	if len(proof) == 0 && b.prover.VerifiesCommitments() {
		return nil, errorsmod.Wrapf(ErrProof, "sequence %d: empty proof", p.Sequence)
	}

	proofHeight := clienttypes.NewHeight(b.revisionNumber, eventHeight)
	return &ReceiveMessage{
		msg:         *chantypes.NewMsgRecvPacket(packet, proof, proofHeight, b.signer),
		eventHeight: eventHeight,
	}, nil
}

func (b *MessageBuilder) encodePacketData(p *ParsedPacket) ([]byte, error) {
	switch b.encoding {
	case PacketDataEncodingRaw:
		return p.RawData, nil
	case PacketDataEncodingICS20JSON:
		return p.Data.ics20().GetBytes(), nil
	case PacketDataEncodingProto:
		ftpd := p.Data.ics20()
		bz, err := ftpd.Marshal()
		if err != nil {
			return nil, errorsmod.Wrapf(ErrInvalidPacket, "failed to encode packet data: %v", err)
		}
		return bz, nil
	default:
		return nil, errorsmod.Wrapf(ErrConfig, "unknown packet data encoding: %q", b.encoding)
	}
}

func (d FungibleTokenPacketData) ics20() transfertypes.FungibleTokenPacketData {
	return transfertypes.NewFungibleTokenPacketData(d.Denom, d.Amount, d.Sender, d.Receiver, d.Memo)
}

// Validate checks the payload against the ICS-20 rules.
func (d FungibleTokenPacketData) Validate() error {
	amount, ok := sdkmath.NewIntFromString(d.Amount)
	if !ok {
		return errorsmod.Wrapf(ErrInvalidPacket, "amount %q is not an integer", d.Amount)
	}
	if !amount.IsPositive() {
		return errorsmod.Wrapf(ErrInvalidPacket, "amount %s is not positive", amount)
	}
	ftpd := d.ics20()
	if err := ftpd.ValidateBasic(); err != nil {
		return errorsmod.Wrapf(ErrInvalidPacket, "%v", err)
	}
	return nil
}

// ParseTimeoutHeight parses a "{revision_number}-{revision_height}" timeout.
// A missing or zero height means no timeout and yields the zero height.
func ParseTimeoutHeight(s string) (clienttypes.Height, error) {
	revision, height, found := strings.Cut(s, "-")
	if !found || height == "" {
		return clienttypes.ZeroHeight(), nil
	}
	revisionHeight, err := strconv.ParseUint(height, 10, 64)
	if err != nil {
		return clienttypes.Height{}, errorsmod.Wrapf(ErrInvalidPacket, "timeout height %q: %v", s, err)
	}
	if revisionHeight == 0 {
		return clienttypes.ZeroHeight(), nil
	}
	revisionNumber, err := strconv.ParseUint(revision, 10, 64)
	if err != nil {
		return clienttypes.Height{}, errorsmod.Wrapf(ErrInvalidPacket, "timeout revision %q: %v", s, err)
	}
	return clienttypes.NewHeight(revisionNumber, revisionHeight), nil
}
