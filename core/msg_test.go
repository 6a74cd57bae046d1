package core

import (
	"context"
	"errors"
	"testing"

	errorsmod "cosmossdk.io/errors"
	transfertypes "github.com/cosmos/ibc-go/v8/modules/apps/transfer/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	"github.com/stretchr/testify/require"
)

func TestParseTimeoutHeight(t *testing.T) {
	tests := []struct {
		in      string
		want    clienttypes.Height
		wantErr bool
	}{
		{"3-150", clienttypes.NewHeight(3, 150), false},
		{"0-1", clienttypes.NewHeight(0, 1), false},
		{"", clienttypes.ZeroHeight(), false},
		{"5", clienttypes.ZeroHeight(), false},
		{"x-", clienttypes.ZeroHeight(), false},
		{"x-0", clienttypes.ZeroHeight(), false},
		{"0-0", clienttypes.ZeroHeight(), false},
		{"3-abc", clienttypes.Height{}, true},
		{"x-5", clienttypes.Height{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeoutHeight(tt.in)
			if tt.wantErr {
				require.True(t, errorsmod.IsOf(err, ErrInvalidPacket), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func testPacket(t *testing.T, amount string) *ParsedPacket {
	t.Helper()
	p, err := DecodePacket(channelEvent(t, sendPacketEvent("42", transferJSON(amount, "uatom"))))
	require.NoError(t, err)
	return p
}

func TestBuild(t *testing.T) {
	p := testPacket(t, "100")
	msg, err := NewMessageBuilder(testPair(), NoProofProvider{}).Build(context.Background(), p, 1000)
	require.NoError(t, err)

	packet := msg.Packet()
	require.Equal(t, uint64(42), packet.Sequence)
	require.Equal(t, "transfer", packet.SourcePort)
	require.Equal(t, testSrcChannel, packet.SourceChannel)
	require.Equal(t, "transfer", packet.DestinationPort)
	require.Equal(t, testDstChannel, packet.DestinationChannel)
	require.Equal(t, clienttypes.NewHeight(1, 5000), packet.TimeoutHeight)
	require.Equal(t, p.RawData, packet.Data)

	// the revision comes from "cosmoshub-4" and the height from the event
	require.Equal(t, clienttypes.NewHeight(4, 1000), msg.ProofHeight())
	require.Empty(t, msg.ProofCommitment())
	require.Equal(t, "osmo1signer", msg.Signer())
	require.Equal(t, uint64(1000), msg.EventHeight())
	require.Equal(t, p.Key(), msg.Key())

	// Msg returns a copy
	m := msg.Msg()
	m.Signer = "other"
	require.Equal(t, "osmo1signer", msg.Signer())
}

func TestBuildProof(t *testing.T) {
	tests := []struct {
		name    string
		prover  *recordingProver
		wantErr bool
	}{
		{"proof", &recordingProver{proof: []byte{1, 2, 3}, verifies: true}, false},
		{"empty proof without verification", &recordingProver{proof: []byte{}}, false},
		{"empty proof with verification", &recordingProver{proof: nil, verifies: true}, true},
		{"prover failure", &recordingProver{err: errors.New("state pruned"), verifies: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPacket(t, "100")
			msg, err := NewMessageBuilder(testPair(), tt.prover).Build(context.Background(), p, 1000)
			if tt.wantErr {
				require.Nil(t, msg)
				require.True(t, errorsmod.IsOf(err, ErrProof), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.prover.proof, msg.ProofCommitment())

			require.Len(t, tt.prover.requests, 1)
			req := tt.prover.requests[0]
			require.Equal(t, uint64(1000), req.Height)
			require.Equal(t, p.RawData, req.RawPacket)
			require.Equal(t, p.RawData, req.Packet.Data)
			require.Equal(t, uint64(42), req.Packet.Sequence)
		})
	}
}

func TestBuildEncodings(t *testing.T) {
	want := transfertypes.NewFungibleTokenPacketData("uatom", "100", "cosmos1sender", "osmo1receiver", "")

	tests := []struct {
		encoding PacketDataEncoding
		check    func(t *testing.T, p *ParsedPacket, data []byte)
	}{
		{PacketDataEncodingRaw, func(t *testing.T, p *ParsedPacket, data []byte) {
			require.Equal(t, p.RawData, data)
		}},
		{PacketDataEncodingICS20JSON, func(t *testing.T, _ *ParsedPacket, data []byte) {
			require.Equal(t, want.GetBytes(), data)
		}},
		{PacketDataEncodingProto, func(t *testing.T, _ *ParsedPacket, data []byte) {
			var got transfertypes.FungibleTokenPacketData
			require.NoError(t, got.Unmarshal(data))
			require.Equal(t, want, got)
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.encoding), func(t *testing.T) {
			pair := testPair()
			pair.PacketDataEncoding = tt.encoding
			prover := &recordingProver{proof: []byte{1}, verifies: true}
			p := testPacket(t, "100")

			msg, err := NewMessageBuilder(pair, prover).Build(context.Background(), p, 1000)
			require.NoError(t, err)
			tt.check(t, p, msg.Packet().Data)
			// the proof always covers the committed bytes
			require.Equal(t, p.RawData, prover.requests[0].Packet.Data)
		})
	}
}

func TestBuildInvalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *ParsedPacket, pair *RelayPair)
		wantErr *errorsmod.Error
	}{
		{"zero amount", func(p *ParsedPacket, _ *RelayPair) { p.Data.Amount = "0" }, ErrInvalidPacket},
		{"negative amount", func(p *ParsedPacket, _ *RelayPair) { p.Data.Amount = "-5" }, ErrInvalidPacket},
		{"non integer amount", func(p *ParsedPacket, _ *RelayPair) { p.Data.Amount = "1.5" }, ErrInvalidPacket},
		{"empty receiver", func(p *ParsedPacket, _ *RelayPair) { p.Data.Receiver = " " }, ErrInvalidPacket},
		{"bad timeout height", func(p *ParsedPacket, _ *RelayPair) { p.TimeoutHeight = "1-x" }, ErrInvalidPacket},
		{"no timeout", func(p *ParsedPacket, _ *RelayPair) { p.TimeoutHeight = "x-0" }, ErrInvalidPacket},
		{"no signer", func(_ *ParsedPacket, pair *RelayPair) { pair.Signer = "" }, ErrConfig},
		{"unknown encoding", func(_ *ParsedPacket, pair *RelayPair) { pair.PacketDataEncoding = "amino" }, ErrConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPacket(t, "100")
			pair := testPair()
			tt.mutate(p, &pair)
			msg, err := NewMessageBuilder(pair, NoProofProvider{}).Build(context.Background(), p, 1000)
			require.Nil(t, msg)
			require.True(t, errorsmod.IsOf(err, tt.wantErr), "unexpected error: %v", err)
		})
	}
}

func TestParsePacketDataEncoding(t *testing.T) {
	for in, want := range map[string]PacketDataEncoding{
		"":           PacketDataEncodingRaw,
		"raw":        PacketDataEncodingRaw,
		"ics20-json": PacketDataEncodingICS20JSON,
		"proto":      PacketDataEncodingProto,
	} {
		got, err := ParsePacketDataEncoding(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParsePacketDataEncoding("amino")
	require.Error(t, err)
}
