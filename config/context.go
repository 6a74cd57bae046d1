package config

import (
	"fmt"

	"github.com/hyperledger-labs/aero-relay/core"
)

// ProverNone selects core.NoProofProvider.
const ProverNone = "none"

type Context struct {
	Modules []ModuleI
	Config  *Config
}

// NewProofProvider builds the proof provider registered under name.
func (ctx *Context) NewProofProvider(name string, chain core.SourceChain) (core.ProofProvider, error) {
	if name == "" || name == ProverNone {
		return core.NoProofProvider{}, nil
	}
	for _, m := range ctx.Modules {
		if m.Name() == name {
			return m.NewProofProvider(chain)
		}
	}
	return nil, fmt.Errorf("prover %q is not provided by any module", name)
}
