package core

//go:generate mockgen -source=chain.go -destination=mock_chain_test.go -package core

import (
	"context"

	coretypes "github.com/cometbft/cometbft/rpc/core/types"
)

// SourceChain is the read-only RPC surface of the chain packets are relayed from.
// Implementations apply their own per-call timeouts.
type SourceChain interface {
	ChainID() string
	// LatestHeight returns the current height of the chain.
	LatestHeight(ctx context.Context) (uint64, error)
	// BlockResults returns the transaction results of the block at height.
	BlockResults(ctx context.Context, height uint64) (*coretypes.ResultBlockResults, error)
}

// CheckpointStore persists poller progress across restarts.
type CheckpointStore interface {
	// LoadCursor returns the stored cursor of the relay, if any.
	LoadCursor(relay string) (uint64, bool, error)
	SaveCursor(relay string, height uint64) error
	// MarkRelayed records that the packet (srcChannel, sequence) was delivered for the relay.
	MarkRelayed(relay, srcChannel string, sequence uint64) error
	IsRelayed(relay, srcChannel string, sequence uint64) (bool, error)
}
