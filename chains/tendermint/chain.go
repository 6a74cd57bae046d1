package tendermint

import (
	"context"
	"fmt"
	"time"

	rpcclient "github.com/cometbft/cometbft/rpc/client"
	rpchttp "github.com/cometbft/cometbft/rpc/client/http"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	libclient "github.com/cometbft/cometbft/rpc/jsonrpc/client"
	"github.com/hyperledger-labs/aero-relay/core"
	"github.com/hyperledger-labs/aero-relay/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Chain is a CometBFT source chain reached over its RPC endpoint.
type Chain struct {
	config ChainConfig
	client rpcclient.Client
}

var _ core.SourceChain = (*Chain)(nil)

func NewChain(config ChainConfig) (*Chain, error) {
	client, err := newRPCClient(config.RPCAddr, config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create the RPC client of %s: %w", config.ChainID, err)
	}
	return &Chain{config: config, client: client}, nil
}

// NewChainWithClient is used with an already connected client.
func NewChainWithClient(config ChainConfig, client rpcclient.Client) *Chain {
	return &Chain{config: config, client: client}
}

func (c *Chain) ChainID() string {
	return c.config.ChainID
}

func (c *Chain) Config() ChainConfig {
	return c.config
}

func (c *Chain) LatestHeight(ctx context.Context) (uint64, error) {
	res, err := c.client.Status(ctx)
	if err != nil {
		return 0, err
	} else if res.SyncInfo.CatchingUp {
		return 0, fmt.Errorf("node at %s running chain %s not caught up", c.config.RPCAddr, c.ChainID())
	}
	if res.NodeInfo.Network != "" && res.NodeInfo.Network != c.ChainID() {
		return 0, fmt.Errorf("node at %s runs chain %s, not %s", c.config.RPCAddr, res.NodeInfo.Network, c.ChainID())
	}
	return uint64(res.SyncInfo.LatestBlockHeight), nil
}

func (c *Chain) BlockResults(ctx context.Context, height uint64) (*coretypes.ResultBlockResults, error) {
	h := int64(height)
	res, err := c.client.BlockResults(ctx, &h)
	if err != nil {
		return nil, err
	}
	GetChainLogger().DebugContext(ctx, "fetched block results",
		"chain_id", c.ChainID(),
		"height", height,
		"txs", len(res.TxsResults),
	)
	return res, nil
}

func newRPCClient(addr string, timeout time.Duration) (*rpchttp.HTTP, error) {
	httpClient, err := libclient.DefaultHTTPClient(addr)
	if err != nil {
		return nil, err
	}

	httpClient.Timeout = timeout
	httpClient.Transport = otelhttp.NewTransport(httpClient.Transport)
	rpcClient, err := rpchttp.NewWithClient(addr, "/websocket", httpClient)
	if err != nil {
		return nil, err
	}

	return rpcClient, nil
}

func GetChainLogger() *log.RelayLogger {
	return log.GetLogger().
		WithModule("tendermint.chain")
}
