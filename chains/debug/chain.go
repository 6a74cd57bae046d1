package debug

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	"github.com/hyperledger-labs/aero-relay/core"
	"github.com/hyperledger-labs/aero-relay/log"
)

const (
	envFailBlockResultsPrefix = "DEBUG_RELAYER_FAIL_BLOCK_RESULTS_"
	envHeightLagPrefix        = "DEBUG_RELAYER_LATEST_HEIGHT_LAG_"
)

// Chain wraps another SourceChain and injects faults controlled by environment variables
// suffixed with the chain ID.
type Chain struct {
	originChain core.SourceChain
}

var _ core.SourceChain = (*Chain)(nil)

func NewChain(originChain core.SourceChain) *Chain {
	log.GetLogger().WithModule("chains.debug").Info("debug chain is initialized.", "chain_id", originChain.ChainID())
	return &Chain{originChain: originChain}
}

func (c *Chain) OriginChain() core.SourceChain {
	return c.originChain
}

func (c *Chain) ChainID() string {
	return c.originChain.ChainID()
}

// LatestHeight reports the origin height minus the lag in DEBUG_RELAYER_LATEST_HEIGHT_LAG_<chainid>.
func (c *Chain) LatestHeight(ctx context.Context) (uint64, error) {
	height, err := c.originChain.LatestHeight(ctx)
	if err != nil {
		return 0, err
	}
	env := envHeightLagPrefix + c.ChainID()
	val, ok := os.LookupEnv(env)
	if !ok {
		return height, nil
	}
	lag, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		fmt.Printf("malformed %s: %v\n", env, err)
		return height, nil
	}
	if lag >= height {
		return 0, nil
	}
	return height - lag, nil
}

// BlockResults fails for the heights listed in DEBUG_RELAYER_FAIL_BLOCK_RESULTS_<chainid>.
func (c *Chain) BlockResults(ctx context.Context, height uint64) (*coretypes.ResultBlockResults, error) {
	if err := debugFailHeight(envFailBlockResultsPrefix+c.ChainID(), height); err != nil {
		return nil, err
	}
	return c.originChain.BlockResults(ctx, height)
}

func debugFailHeight(env string, height uint64) error {
	val, ok := os.LookupEnv(env)
	if !ok {
		return nil
	}
	for _, s := range strings.Split(val, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil {
			fmt.Printf("malformed %s: %v\n", env, err)
			continue
		}
		if n == height {
			return fmt.Errorf("fake block results failure at height %d", height)
		}
	}
	return nil
}
