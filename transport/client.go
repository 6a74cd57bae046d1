package transport

import (
	"context"
	"time"

	errorsmod "cosmossdk.io/errors"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	gogotypes "github.com/cosmos/gogoproto/types"
	"github.com/hyperledger-labs/aero-relay/core"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

// DefaultDeliverTimeout bounds a Deliver call when no timeout is configured.
const DefaultDeliverTimeout = 10 * time.Second

// Client forwards built messages to a transport Server.
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

var _ core.MessageSink = (*Client)(nil)

type ClientOption func(*Client)

// WithDeliverTimeout sets the deadline of every Deliver call. Non-positive values are ignored.
func WithDeliverTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func NewClient(endpoint string, cfg CryptoConfig, opts ...ClientOption) (*Client, error) {
	tlsCfg, err := cfg.ClientTLS()
	if err != nil {
		return nil, err
	}
	conn, err := grpc.NewClient(
		endpoint,
		grpc.WithTransportCredentials(credentials.NewTLS(tlsCfg)),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(gogoCodec{})),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		return nil, err
	}
	c := &Client{conn: conn, timeout: DefaultDeliverTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Deliver(ctx context.Context, msg *core.ReceiveMessage) error {
	in, err := codectypes.NewAnyWithValue(msg.Msg())
	if err != nil {
		return errorsmod.Wrap(core.ErrDelivery, err.Error())
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.conn.Invoke(ctx, deliverMethod, in, &gogotypes.Empty{}); err != nil {
		return errorsmod.Wrapf(core.ErrDelivery, "failed to deliver packet %d: %v", msg.Packet().Sequence, err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
