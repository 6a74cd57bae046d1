package debug

import (
	"context"
	"errors"
	"testing"

	chantypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	"github.com/hyperledger-labs/aero-relay/core"
)

type stubChain struct {
	latest uint64
}

func (c stubChain) ChainID() string { return "ibc0" }

func (c stubChain) LatestHeight(context.Context) (uint64, error) { return c.latest, nil }

func (c stubChain) BlockResults(context.Context, uint64) (*coretypes.ResultBlockResults, error) {
	return nil, errors.New("not implemented")
}

func TestProveFaultInjection(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		seq       uint64
		height    uint64
		expectErr bool
	}{
		{"no env", nil, 1, 10, false},
		{"sequence listed", map[string]string{envFailSequences: "3, 5"}, 5, 10, true},
		{"sequence not listed", map[string]string{envFailSequences: "3,5"}, 4, 10, false},
		{"height too old", map[string]string{envMissingTrieNode: "ibc0 10"}, 1, 80, true},
		{"height within threshold", map[string]string{envMissingTrieNode: "ibc0 10"}, 1, 95, false},
		{"other chain", map[string]string{envMissingTrieNode: "ibc1 10"}, 1, 80, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			pr := NewProver(stubChain{latest: 100}, core.NoProofProvider{})
			req := core.ProofRequest{Packet: chantypes.Packet{Sequence: tt.seq}, Height: tt.height}
			_, err := pr.Prove(context.Background(), req)
			if (err != nil) != tt.expectErr {
				t.Errorf("Prove() error = %v, expectErr %v", err, tt.expectErr)
			}
		})
	}
}
