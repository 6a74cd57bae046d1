package main

import (
	"log"

	tendermint "github.com/hyperledger-labs/aero-relay/chains/tendermint/module"
	"github.com/hyperledger-labs/aero-relay/cmd"
	debug "github.com/hyperledger-labs/aero-relay/provers/debug/module"
	mock "github.com/hyperledger-labs/aero-relay/provers/mock/module"
)

func main() {
	if err := cmd.Execute(
		tendermint.Module{},
		mock.Module{},
		debug.Module{Origin: tendermint.Module{}},
		debug.Module{Origin: mock.Module{}},
	); err != nil {
		log.Fatal(err)
	}
}
