// Package semconv holds the span attribute keys emitted by the relayer.
package semconv

import (
	"go.opentelemetry.io/otel/attribute"
)

// String-valued keys. Heights and sequences are formatted in decimal because
// attribute values have no uint64 kind.
const (
	ChainIDKey   = attribute.Key("chain_id")
	ChannelIDKey = attribute.Key("channel_id")
	PortIDKey    = attribute.Key("port_id")
	HeightKey    = attribute.Key("height")
	SequenceKey  = attribute.Key("sequence")
)

// AttributeGroup prefixes every attribute key with key, so "chain_id" under "src" becomes "src.chain_id".
func AttributeGroup(key string, attributes ...attribute.KeyValue) []attribute.KeyValue {
	grouped := make([]attribute.KeyValue, 0, len(attributes))
	for _, attr := range attributes {
		grouped = append(grouped, attribute.KeyValue{
			Key:   attribute.Key(key + "." + string(attr.Key)),
			Value: attr.Value,
		})
	}
	return grouped
}
