package coreutil

import (
	"fmt"

	"github.com/hyperledger-labs/aero-relay/core"
	"github.com/hyperledger-labs/aero-relay/otelcore"
)

// originChain is implemented by chains that decorate another chain.
type originChain interface {
	OriginChain() core.SourceChain
}

// originProver is implemented by provers that decorate another prover.
type originProver interface {
	OriginProver() core.ProofProvider
}

// UnwrapChain finds the first chain in the decorator chain that matches the specified
// type argument.
//
// In the following example, UnwrapChain returns the *tendermint.Chain wrapped by a tracing chain:
//
//	chain, err := coreutil.UnwrapChain[*tendermint.Chain](sourceChain)
func UnwrapChain[C core.SourceChain](c core.SourceChain) (C, error) {
	chain := c
	for {
		switch unwrapped := chain.(type) {
		case C:
			return unwrapped, nil
		case *otelcore.Chain:
			chain = unwrapped.SourceChain
		case originChain:
			chain = unwrapped.OriginChain()
		default:
			var zero C
			return zero, fmt.Errorf("failed to unwrap chain: expected=%T, actual=%T", zero, unwrapped)
		}
	}
}

// UnwrapProver finds the first proof provider in the decorator chain that matches the specified
// type argument.
//
//	prover, err := coreutil.UnwrapProver[*tendermint.Prover](provider)
func UnwrapProver[P core.ProofProvider](p core.ProofProvider) (P, error) {
	prover := p
	for {
		switch unwrapped := prover.(type) {
		case P:
			return unwrapped, nil
		case *otelcore.Prover:
			prover = unwrapped.ProofProvider
		case originProver:
			prover = unwrapped.OriginProver()
		default:
			var zero P
			return zero, fmt.Errorf("failed to unwrap prover: expected=%T, actual=%T", zero, unwrapped)
		}
	}
}
