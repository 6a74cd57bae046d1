package tendermint

import (
	"bytes"
	"context"
	"fmt"

	rpcclient "github.com/cometbft/cometbft/rpc/client"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/gogoproto/proto"
	chantypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	commitmenttypes "github.com/cosmos/ibc-go/v8/modules/core/23-commitment/types"
	host "github.com/cosmos/ibc-go/v8/modules/core/24-host"
	ibcexported "github.com/cosmos/ibc-go/v8/modules/core/exported"
	"github.com/hyperledger-labs/aero-relay/core"
)

// Prover proves packet commitments with merkle proofs queried from the source chain.
type Prover struct {
	chain *Chain
	cdc   codec.BinaryCodec
}

var _ core.ProofProvider = (*Prover)(nil)

func NewProver(chain *Chain) *Prover {
	return &Prover{
		chain: chain,
		cdc:   codec.NewProtoCodec(codectypes.NewInterfaceRegistry()),
	}
}

func (pr *Prover) VerifiesCommitments() bool {
	return true
}

// Prove queries the commitment of the packet in the state at req.Height and checks it
// against the commitment computed from the packet itself.
func (pr *Prover) Prove(ctx context.Context, req core.ProofRequest) ([]byte, error) {
	packet := req.Packet
	key := host.PacketCommitmentKey(packet.SourcePort, packet.SourceChannel, packet.Sequence)
	value, proof, err := pr.chain.QueryWithProof(ctx, key, req.Height)
	if err != nil {
		return nil, err
	}
	if len(value) == 0 {
		return nil, fmt.Errorf("packet commitment not found: port=%s channel=%s sequence=%d height=%d",
			packet.SourcePort, packet.SourceChannel, packet.Sequence, req.Height)
	}
	if expected := chantypes.CommitPacket(pr.cdc, packet); !bytes.Equal(expected, value) {
		return nil, fmt.Errorf("packet commitment mismatch: sequence=%d expected=%X actual=%X", packet.Sequence, expected, value)
	}
	return proof, nil
}

// QueryWithProof returns the value stored under key in the IBC store at height with its merkle proof.
func (c *Chain) QueryWithProof(ctx context.Context, key []byte, height uint64) ([]byte, []byte, error) {
	path := fmt.Sprintf("store/%s/key", ibcexported.StoreKey)
	res, err := c.client.ABCIQueryWithOptions(ctx, path, key, rpcclient.ABCIQueryOptions{
		Height: int64(height),
		Prove:  true,
	})
	if err != nil {
		return nil, nil, err
	}
	if !res.Response.IsOK() {
		return nil, nil, fmt.Errorf("abci query %s failed: code=%d log=%s", path, res.Response.Code, res.Response.Log)
	}
	if res.Response.ProofOps == nil {
		return res.Response.Value, nil, fmt.Errorf("abci query %s returned no proof", path)
	}
	merkleProof, err := commitmenttypes.ConvertProofs(res.Response.ProofOps)
	if err != nil {
		return nil, nil, err
	}
	proofBz, err := proto.Marshal(&merkleProof)
	if err != nil {
		return nil, nil, err
	}
	return res.Response.Value, proofBz, nil
}
