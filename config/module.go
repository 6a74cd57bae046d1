package config

import (
	"github.com/hyperledger-labs/aero-relay/core"
	"github.com/spf13/cobra"
)

// ModuleI defines an interface of Module
type ModuleI interface {
	// Name returns the name of the module, which is also the prover name used in the config
	Name() string

	// NewProofProvider returns the proof provider of the module for packets of chain
	NewProofProvider(chain core.SourceChain) (core.ProofProvider, error)

	// GetCmd returns the command. It may return nil
	GetCmd(ctx *Context) *cobra.Command
}
