package core

import (
	"fmt"

	"github.com/hyperledger-labs/aero-relay/otelcore/semconv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("github.com/hyperledger-labs/aero-relay/core")
)

// heightAttributes converts a height to span attributes. The attribute package does not support uint64.
func heightAttributes(height uint64) trace.SpanStartOption {
	return trace.WithAttributes(AttributeKeyHeight.String(fmt.Sprint(height)))
}

func relayAttributes(cfg RelayPair) []attribute.KeyValue {
	return append(
		[]attribute.KeyValue{AttributeKeyRelay.String(cfg.Name)},
		append(
			semconv.AttributeGroup("src",
				AttributeKeyChainID.String(cfg.SrcChainID),
				AttributeKeyChannelID.String(cfg.SrcChannel),
				AttributeKeyPortID.String(cfg.SrcPort),
			),
			semconv.AttributeGroup("dst",
				AttributeKeyChainID.String(cfg.DstChainID),
				AttributeKeyChannelID.String(cfg.DstChannel),
				AttributeKeyPortID.String(cfg.DstPort),
			)...,
		)...,
	)
}
