package core

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"

	abci "github.com/cometbft/cometbft/abci/types"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	chantypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
)

const (
	testSrcChannel = "channel-7"
	testDstChannel = "channel-0"
)

func testPair() RelayPair {
	return RelayPair{
		Name:       "hub-osmo",
		SrcChainID: "cosmoshub-4",
		SrcRPC:     "http://localhost:26657",
		SrcChannel: testSrcChannel,
		SrcPort:    "transfer",
		DstChainID: "osmosis-1",
		DstChannel: testDstChannel,
		DstPort:    "transfer",
		Signer:     "osmo1signer",
	}
}

func transferJSON(amount, denom string) string {
	return fmt.Sprintf(`{"amount":"%s","denom":"%s","receiver":"osmo1receiver","sender":"cosmos1sender"}`, amount, denom)
}

func attr(key, value string) abci.EventAttribute {
	return abci.EventAttribute{Key: key, Value: value, Index: true}
}

// sendPacketEvent returns a send_packet event of channel-7 carrying data.
func sendPacketEvent(seq string, data string) abci.Event {
	return packetEvent(EventKindSendPacket, seq, testSrcChannel, testDstChannel, data)
}

func packetEvent(kind EventKind, seq, srcChannel, dstChannel, data string) abci.Event {
	return abci.Event{
		Type: string(kind),
		Attributes: []abci.EventAttribute{
			attr(chantypes.AttributeKeyDataHex, hex.EncodeToString([]byte(data))),
			attr(chantypes.AttributeKeyTimeoutHeight, "1-5000"),
			attr(chantypes.AttributeKeyTimeoutTimestamp, "0"),
			attr(chantypes.AttributeKeySequence, seq),
			attr(chantypes.AttributeKeySrcPort, "transfer"),
			attr(chantypes.AttributeKeySrcChannel, srcChannel),
			attr(chantypes.AttributeKeyDstPort, "transfer"),
			attr(chantypes.AttributeKeyDstChannel, dstChannel),
			attr(chantypes.AttributeKeyChannelOrdering, "ORDER_UNORDERED"),
			attr("packet_connection", "connection-0"),
		},
	}
}

func tx(code uint32, events ...abci.Event) *abci.ExecTxResult {
	return &abci.ExecTxResult{Code: code, Events: events}
}

func block(height int64, txs ...*abci.ExecTxResult) *coretypes.ResultBlockResults {
	return &coretypes.ResultBlockResults{Height: height, TxsResults: txs}
}

// recordingSink collects delivered messages and fails the sequences listed in failOnce once each.
type recordingSink struct {
	mu        sync.Mutex
	delivered []*ReceiveMessage
	failOnce  map[uint64]bool
}

func (s *recordingSink) Deliver(_ context.Context, msg *ReceiveMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := msg.Packet().Sequence
	if s.failOnce[seq] {
		delete(s.failOnce, seq)
		return fmt.Errorf("destination unavailable")
	}
	s.delivered = append(s.delivered, msg)
	return nil
}

func (s *recordingSink) sequences() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	seqs := make([]uint64, len(s.delivered))
	for i, m := range s.delivered {
		seqs[i] = m.Packet().Sequence
	}
	return seqs
}

// recordingProver returns a fixed proof and records its requests.
type recordingProver struct {
	proof    []byte
	err      error
	verifies bool
	requests []ProofRequest
}

func (p *recordingProver) Prove(_ context.Context, req ProofRequest) ([]byte, error) {
	p.requests = append(p.requests, req)
	return p.proof, p.err
}

func (p *recordingProver) VerifiesCommitments() bool {
	return p.verifies
}
