package core

import (
	"context"

	"github.com/hyperledger-labs/aero-relay/log"
)

// MessageSink hands built messages to the destination side. Implementations must be
// safe for concurrent use by several pollers.
type MessageSink interface {
	Deliver(ctx context.Context, msg *ReceiveMessage) error
}

// LogSink logs every message instead of delivering it.
type LogSink struct{}

var _ MessageSink = LogSink{}

func (LogSink) Deliver(ctx context.Context, msg *ReceiveMessage) error {
	packet := msg.Packet()
	log.GetLogger().WithModule("core.sink").InfoContext(ctx, "receive message built",
		"channel_id", packet.SourceChannel,
		"dst_channel_id", packet.DestinationChannel,
		"sequence", packet.Sequence,
		"height", msg.EventHeight(),
		"proof_height", msg.ProofHeight().String(),
		"timeout_height", packet.TimeoutHeight.String(),
		"timeout_timestamp", packet.TimeoutTimestamp,
		"proof_size", len(msg.ProofCommitment()),
		"signer", msg.Signer(),
	)
	return nil
}

// SinkFunc adapts a function to MessageSink.
type SinkFunc func(ctx context.Context, msg *ReceiveMessage) error

func (f SinkFunc) Deliver(ctx context.Context, msg *ReceiveMessage) error {
	return f(ctx, msg)
}
