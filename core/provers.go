package core

import (
	"context"

	chantypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
)

// ProofRequest describes the packet whose commitment must be proven.
type ProofRequest struct {
	// RawPacket is the packet data decoded from the event, as committed on the source chain.
	RawPacket []byte
	// Packet carries RawPacket as its data.
	Packet chantypes.Packet
	// Height is the source chain height of the block containing the packet event.
	Height uint64
}

// ProofProvider produces commitment proofs. Implementations must be safe for concurrent use.
type ProofProvider interface {
	// Prove returns the proof bytes for the packet.
	Prove(ctx context.Context, req ProofRequest) ([]byte, error)
	// VerifiesCommitments reports whether the destination verifies proofs.
	// A provider returning false may return empty proofs.
	VerifiesCommitments() bool
}

// NoProofProvider is a ProofProvider for destinations that do not verify commitments.
type NoProofProvider struct{}

var _ ProofProvider = NoProofProvider{}

func (NoProofProvider) Prove(context.Context, ProofRequest) ([]byte, error) {
	return []byte{}, nil
}

func (NoProofProvider) VerifiesCommitments() bool {
	return false
}
