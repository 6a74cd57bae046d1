package otelcore

import (
	"context"
	"fmt"

	"github.com/hyperledger-labs/aero-relay/core"
	"github.com/hyperledger-labs/aero-relay/otelcore/semconv"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Prover traces the proofs produced by the wrapped provider.
type Prover struct {
	core.ProofProvider
	chainID string
	tracer  trace.Tracer
}

var _ core.ProofProvider = (*Prover)(nil)

func NewProver(prover core.ProofProvider, chainID string, tracer trace.Tracer) core.ProofProvider {
	return &Prover{
		ProofProvider: prover,
		chainID:       chainID,
		tracer:        tracer,
	}
}

func UnwrapProver(prover core.ProofProvider) (core.ProofProvider, error) {
	p, ok := prover.(*Prover)
	if !ok {
		return nil, fmt.Errorf("prover type is not %T, but %T", &Prover{}, prover)
	}
	return p.ProofProvider, nil
}

func (p *Prover) Prove(ctx context.Context, req core.ProofRequest) ([]byte, error) {
	ctx, span := p.tracer.Start(ctx, "Prover.Prove",
		core.WithChainAttributes(p.chainID),
		trace.WithAttributes(
			semconv.ChannelIDKey.String(req.Packet.SourceChannel),
			semconv.PortIDKey.String(req.Packet.SourcePort),
			semconv.SequenceKey.String(fmt.Sprint(req.Packet.Sequence)),
			semconv.HeightKey.String(fmt.Sprint(req.Height)),
		),
	)
	defer span.End()

	proof, err := p.ProofProvider.Prove(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return proof, err
}
