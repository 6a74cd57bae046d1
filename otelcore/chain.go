package otelcore

import (
	"context"
	"fmt"

	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	"github.com/hyperledger-labs/aero-relay/core"
	"github.com/hyperledger-labs/aero-relay/otelcore/semconv"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Chain traces every RPC call of the wrapped source chain.
type Chain struct {
	core.SourceChain
	tracer trace.Tracer
}

var _ core.SourceChain = (*Chain)(nil)

func NewChain(chain core.SourceChain, tracer trace.Tracer) core.SourceChain {
	return &Chain{
		SourceChain: chain,
		tracer:      tracer,
	}
}

func UnwrapChain(chain core.SourceChain) (core.SourceChain, error) {
	c, ok := chain.(*Chain)
	if !ok {
		return nil, fmt.Errorf("chain type is not %T, but %T", &Chain{}, chain)
	}
	return c.SourceChain, nil
}

func (c *Chain) LatestHeight(ctx context.Context) (uint64, error) {
	ctx, span := c.tracer.Start(ctx, "Chain.LatestHeight",
		core.WithChainAttributes(c.ChainID()),
	)
	defer span.End()

	height, err := c.SourceChain.LatestHeight(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return height, err
}

func (c *Chain) BlockResults(ctx context.Context, height uint64) (*coretypes.ResultBlockResults, error) {
	ctx, span := c.tracer.Start(ctx, "Chain.BlockResults",
		core.WithChainAttributes(c.ChainID()),
		trace.WithAttributes(semconv.HeightKey.String(fmt.Sprint(height))),
	)
	defer span.End()

	res, err := c.SourceChain.BlockResults(ctx, height)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}
