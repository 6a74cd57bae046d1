package module

import (
	"fmt"

	"github.com/hyperledger-labs/aero-relay/config"
	"github.com/hyperledger-labs/aero-relay/core"
	debugprover "github.com/hyperledger-labs/aero-relay/provers/debug"
	"github.com/spf13/cobra"
)

// Module wraps the proof providers of Origin with the debug prover.
type Module struct {
	Origin config.ModuleI
}

var _ config.ModuleI = (*Module)(nil)

// Name returns the name of the module
func (m Module) Name() string {
	if m.Origin == nil {
		return "debug"
	}
	return "debug." + m.Origin.Name()
}

func (m Module) NewProofProvider(chain core.SourceChain) (core.ProofProvider, error) {
	if m.Origin == nil {
		return nil, fmt.Errorf("debug module has no origin module")
	}
	origin, err := m.Origin.NewProofProvider(chain)
	if err != nil {
		return nil, err
	}
	return debugprover.NewProver(chain, origin), nil
}

// GetCmd returns the command
func (Module) GetCmd(ctx *config.Context) *cobra.Command {
	return nil
}
