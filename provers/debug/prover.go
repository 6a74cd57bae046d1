package debug

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hyperledger-labs/aero-relay/core"
	"github.com/hyperledger-labs/aero-relay/log"
)

const (
	envMissingTrieNode = "DEBUG_RELAYER_MISSING_TRIE_NODE_HEIGHT_PROVER"
	envFailSequences   = "DEBUG_RELAYER_FAIL_PROOF_SEQUENCES"
)

func debugFakeLost(ctx context.Context, chain core.SourceChain, queryHeight uint64) error {
	if val, ok := os.LookupEnv(envMissingTrieNode); ok {
		s := strings.Split(val, " ")
		if len(s) != 2 {
			fmt.Printf("malformed %s: <chainid> <space> <height threshold>'\n", envMissingTrieNode)
			return nil
		}
		if s[0] == chain.ChainID() {
			threshold, err := strconv.ParseUint(s[1], 10, 64)
			if err != nil {
				fmt.Printf("malformed %s: %v\n", envMissingTrieNode, err)
				return nil
			}

			latestHeight, err := chain.LatestHeight(ctx)
			if err != nil {
				return err
			}
			if queryHeight+threshold < latestHeight {
				return fmt.Errorf("fake missing trie node: %v + %v < %v", queryHeight, threshold, latestHeight)
			}
		}
	}
	return nil
}

func debugFailSequence(seq uint64) error {
	val, ok := os.LookupEnv(envFailSequences)
	if !ok {
		return nil
	}
	for _, s := range strings.Split(val, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil {
			fmt.Printf("malformed %s: %v\n", envFailSequences, err)
			continue
		}
		if n == seq {
			return fmt.Errorf("fake proof failure for sequence %d", seq)
		}
	}
	return nil
}

// Prover wraps another ProofProvider and injects failures controlled by environment variables.
type Prover struct {
	chain        core.SourceChain
	originProver core.ProofProvider
}

var _ core.ProofProvider = (*Prover)(nil)

func NewProver(chain core.SourceChain, originProver core.ProofProvider) *Prover {
	log.GetLogger().WithModule("provers.debug").Info("debug prover is initialized.", "chain_id", chain.ChainID())
	return &Prover{chain: chain, originProver: originProver}
}

func (pr *Prover) OriginProver() core.ProofProvider {
	return pr.originProver
}

func (pr *Prover) Prove(ctx context.Context, req core.ProofRequest) ([]byte, error) {
	if err := debugFakeLost(ctx, pr.chain, req.Height); err != nil {
		return nil, err
	}
	if err := debugFailSequence(req.Packet.Sequence); err != nil {
		return nil, err
	}
	return pr.originProver.Prove(ctx, req)
}

func (pr *Prover) VerifiesCommitments() bool {
	return pr.originProver.VerifiesCommitments()
}
