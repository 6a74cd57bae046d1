package transport

import (
	"fmt"

	"github.com/cosmos/gogoproto/proto"
)

// gogoCodec marshals frames with gogoproto, which the cosmos message types are generated with.
type gogoCodec struct{}

func (gogoCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("failed to marshal, message is %T, want proto.Message", v)
	}
	return proto.Marshal(m)
}

func (gogoCodec) Unmarshal(data []byte, v any) error {
	m, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("failed to unmarshal, message is %T, want proto.Message", v)
	}
	return proto.Unmarshal(data, m)
}

func (gogoCodec) Name() string {
	return "gogoproto"
}
