package module

import (
	"github.com/hyperledger-labs/aero-relay/chains/tendermint"
	"github.com/hyperledger-labs/aero-relay/chains/tendermint/cmd"
	"github.com/hyperledger-labs/aero-relay/config"
	"github.com/hyperledger-labs/aero-relay/core"
	"github.com/hyperledger-labs/aero-relay/coreutil"
	"github.com/spf13/cobra"
)

type Module struct{}

var _ config.ModuleI = (*Module)(nil)

// Name returns the name of the module
func (Module) Name() string {
	return "tendermint"
}

// NewProofProvider returns a prover querying merkle proofs from the source chain.
func (Module) NewProofProvider(chain core.SourceChain) (core.ProofProvider, error) {
	tmChain, err := coreutil.UnwrapChain[*tendermint.Chain](chain)
	if err != nil {
		return nil, err
	}
	return tendermint.NewProver(tmChain), nil
}

// GetCmd returns the command
func (Module) GetCmd(ctx *config.Context) *cobra.Command {
	return cmd.TendermintCmd(ctx)
}
