package core

import (
	"iter"

	abci "github.com/cometbft/cometbft/abci/types"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	chantypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
)

// EventKind is the type of an IBC channel event relevant to relaying.
type EventKind string

const (
	EventKindSendPacket EventKind = "send_packet"
	EventKindWriteAck   EventKind = "write_acknowledgement"
)

// Attributes is an insertion-ordered key/value mapping. Setting an existing key
// overwrites its value but keeps its original position.
type Attributes struct {
	keys   []string
	values map[string]string
}

func NewAttributes(kvs ...string) Attributes {
	var a Attributes
	for i := 0; i+1 < len(kvs); i += 2 {
		a.Set(kvs[i], kvs[i+1])
	}
	return a
}

func (a *Attributes) Set(key, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

func (a Attributes) Get(key string) (string, bool) {
	v, ok := a.values[key]
	return v, ok
}

func (a Attributes) Keys() []string {
	return append([]string(nil), a.keys...)
}

func (a Attributes) Len() int {
	return len(a.keys)
}

// ChannelEvent is an IBC packet event found in the results of a block.
type ChannelEvent struct {
	Kind       EventKind
	Height     uint64
	TxIndex    int
	Attributes Attributes
}

// ScanEvents returns the events of the block that concern channelID, in the order
// the chain emitted them. Events of failed transactions are skipped.
func ScanEvents(res *coretypes.ResultBlockResults, channelID string) iter.Seq[ChannelEvent] {
	return func(yield func(ChannelEvent) bool) {
		if res == nil {
			return
		}
		for i, tx := range res.TxsResults {
			if tx == nil || tx.Code != abci.CodeTypeOK {
				continue
			}
			for _, ev := range tx.Events {
				if !isPacketEvent(ev.Type) || !matchesChannel(ev.Attributes, channelID) {
					continue
				}
				ce := ChannelEvent{
					Kind:    EventKind(ev.Type),
					Height:  uint64(res.Height),
					TxIndex: i,
				}
				for _, attr := range ev.Attributes {
					ce.Attributes.Set(attr.Key, attr.Value)
				}
				if !yield(ce) {
					return
				}
			}
		}
	}
}

func isPacketEvent(eventType string) bool {
	switch EventKind(eventType) {
	case EventKindSendPacket, EventKindWriteAck:
		return true
	default:
		return false
	}
}

func matchesChannel(attrs []abci.EventAttribute, channelID string) bool {
	for _, attr := range attrs {
		switch attr.Key {
		case chantypes.AttributeKeySrcChannel, chantypes.AttributeKeyDstChannel:
			if attr.Value == channelID {
				return true
			}
		}
	}
	return false
}
