package core

import (
	"github.com/hyperledger-labs/aero-relay/otelcore/semconv"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	AttributeKeyRelay     = attribute.Key("relay")
	AttributeKeyEventKind = attribute.Key("event_kind")
	AttributeKeyFault     = attribute.Key("fault")
	AttributeKeyChainID   = semconv.ChainIDKey
	AttributeKeyChannelID = semconv.ChannelIDKey
	AttributeKeyPortID    = semconv.PortIDKey
	AttributeKeyHeight    = semconv.HeightKey
)

// WithChainAttributes returns the span attributes of a chain.
func WithChainAttributes(chainID string) trace.SpanStartOption {
	return trace.WithAttributes(AttributeKeyChainID.String(chainID))
}
