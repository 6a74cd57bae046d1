package core

import (
	"context"
	"errors"
	"time"

	errorsmod "cosmossdk.io/errors"
	retry "github.com/avast/retry-go"
	"github.com/cenkalti/backoff/v4"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	"github.com/hyperledger-labs/aero-relay/internal/telemetry"
	"github.com/hyperledger-labs/aero-relay/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// PollerConfig holds the pacing and retry policy of a ChainPoller.
type PollerConfig struct {
	// HeightRetryInterval is the wait between failed latest-height fetches. Retries are unbounded.
	HeightRetryInterval time.Duration
	// HeightRetryJitter is the randomization factor applied to HeightRetryInterval.
	HeightRetryJitter float64
	// BlockRetryAttempts bounds the block results fetches of one height per poll cycle.
	BlockRetryAttempts  uint
	BlockRetryDelay     time.Duration
	BlockRetryMaxJitter time.Duration
	// BlockInterval is the minimum spacing between two processed heights.
	BlockInterval time.Duration
	// PollInterval is the sleep after the poller has caught up.
	PollInterval time.Duration
	// Resume starts from the checkpointed cursor when one exists.
	Resume bool
}

func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		HeightRetryInterval: 10 * time.Second,
		HeightRetryJitter:   0.2,
		BlockRetryAttempts:  5,
		BlockRetryDelay:     400 * time.Millisecond,
		BlockRetryMaxJitter: 400 * time.Millisecond,
		BlockInterval:       200 * time.Millisecond,
		PollInterval:        6 * time.Second,
		Resume:              true,
	}
}

// ChainPoller follows the source chain of one relay pair block by block and hands a
// receive message for every packet event of the monitored channel to the sink.
type ChainPoller struct {
	pair    RelayPair
	chain   SourceChain
	builder *MessageBuilder
	sink    MessageSink
	store   CheckpointStore
	cfg     PollerConfig

	cursor  *Cursor
	limiter *rate.Limiter
	logger  *log.RelayLogger
}

// NewChainPoller queries the current height of the source chain and places the cursor on it,
// or on the checkpointed height when cfg.Resume is set and a checkpoint exists.
func NewChainPoller(
	ctx context.Context,
	pair RelayPair,
	chain SourceChain,
	prover ProofProvider,
	sink MessageSink,
	store CheckpointStore,
	cfg PollerConfig,
) (*ChainPoller, error) {
	logger := GetPollerLogger(pair)

	limit := rate.Inf
	if cfg.BlockInterval > 0 {
		limit = rate.Every(cfg.BlockInterval)
	}
	p := &ChainPoller{
		pair:    pair,
		chain:   chain,
		builder: NewMessageBuilder(pair, prover),
		sink:    sink,
		store:   store,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}

	if cfg.Resume {
		height, ok, err := store.LoadCursor(pair.Name)
		if err != nil {
			return nil, errorsmod.Wrapf(ErrCheckpoint, "relay %s: %v", pair.Name, err)
		}
		if ok {
			logger.InfoContext(ctx, "resuming from checkpoint", "height", height)
			p.cursor = NewCursor(pair.SrcChannel, height)
			return p, nil
		}
	}

	height, err := chain.LatestHeight(ctx)
	if err != nil {
		return nil, errorsmod.Wrapf(ErrConnection, "relay %s: %v", pair.Name, err)
	}
	logger.InfoContext(ctx, "starting from the current height", "height", height)
	p.cursor = NewCursor(pair.SrcChannel, height)
	return p, nil
}

func (p *ChainPoller) Cursor() *Cursor {
	return p.cursor
}

// Run polls until ctx is done and then returns the context error.
func (p *ChainPoller) Run(ctx context.Context) error {
	p.logger.InfoContext(ctx, "chain poller started", "height", p.cursor.LastHeight())
	for {
		if err := p.PollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// the failed height stays pinned and is retried after the poll interval
			p.logger.ErrorContext(ctx, "height processing fault", err,
				"height", p.cursor.Next(),
			)
		}
		if err := wait(ctx, p.cfg.PollInterval); err != nil {
			return err
		}
	}
}

// PollOnce processes every height between the cursor and the current chain height.
// It stops at the first height that cannot be processed; the cursor stays below it.
func (p *ChainPoller) PollOnce(ctx context.Context) error {
	current, err := p.latestHeight(ctx)
	if err != nil {
		return err
	}
	for p.cursor.LastHeight() < current {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
		height := p.cursor.Next()
		if err := p.ProcessHeight(ctx, height); err != nil {
			p.countFault(ctx, err)
			return err
		}
		if err := p.advance(ctx, height); err != nil {
			return err
		}
	}
	return nil
}

// ProcessHeight relays the packets of the block at height. A nil return means every
// qualifying event was either delivered, already relayed, or reported as undeliverable.
func (p *ChainPoller) ProcessHeight(ctx context.Context, height uint64) (err error) {
	ctx, span := tracer.Start(ctx, "ChainPoller.ProcessHeight",
		trace.WithAttributes(relayAttributes(p.pair)...),
		heightAttributes(height),
	)
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	res, err := p.blockResults(ctx, height)
	if err != nil {
		return err
	}
	for ev := range ScanEvents(res, p.pair.SrcChannel) {
		if err := p.handleEvent(ctx, ev, height); err != nil {
			return err
		}
	}
	return nil
}

func (p *ChainPoller) handleEvent(ctx context.Context, ev ChannelEvent, height uint64) error {
	logger := p.logger.With("height", height, "event_kind", string(ev.Kind))

	packet, err := DecodePacket(ev)
	if err != nil {
		seq, _ := ev.Attributes.Get("packet_sequence")
		logger.ErrorContext(ctx, "failed to decode packet", err, "sequence", seq)
		p.count(ctx, telemetry.PacketDecodeErrorsCounter, AttributeKeyEventKind.String(string(ev.Kind)))
		return nil
	}
	logger = logger.With("sequence", packet.Sequence)

	relayed, err := p.store.IsRelayed(p.pair.Name, packet.SrcChannel, packet.Sequence)
	if err != nil {
		return errorsmod.Wrapf(ErrCheckpoint, "sequence %d: %v", packet.Sequence, err)
	}
	if relayed {
		logger.DebugContext(ctx, "packet already relayed")
		return nil
	}

	msg, err := p.builder.Build(ctx, packet, height)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.ErrorContext(ctx, "failed to build receive message", err)
		p.count(ctx, telemetry.MessageBuildErrorsCounter)
		return nil
	}

	if err := p.sink.Deliver(ctx, msg); err != nil {
		return errorsmod.Wrapf(ErrDelivery, "sequence %d: %v", packet.Sequence, err)
	}
	if err := p.store.MarkRelayed(p.pair.Name, packet.SrcChannel, packet.Sequence); err != nil {
		return errorsmod.Wrapf(ErrCheckpoint, "sequence %d: %v", packet.Sequence, err)
	}
	logger.InfoContext(ctx, "packet relayed", "proof_height", msg.ProofHeight().String())
	p.count(ctx, telemetry.PacketsRelayedCounter)
	return nil
}

// latestHeight retries until the height is fetched or ctx is done.
func (p *ChainPoller) latestHeight(ctx context.Context) (uint64, error) {
	var height uint64
	op := func() error {
		h, err := p.chain.LatestHeight(ctx)
		if err != nil {
			return errorsmod.Wrapf(ErrHeightFetch, "%v", err)
		}
		height = h
		return nil
	}
	notify := func(err error, next time.Duration) {
		p.logger.WarnContext(ctx, "failed to fetch the latest height",
			"error", err.Error(),
			"retry_in", next.String(),
		)
	}
	b := newJitteredBackOff(p.cfg.HeightRetryInterval, p.cfg.HeightRetryJitter)
	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return 0, err
	}
	return height, nil
}

// newJitteredBackOff returns an unbounded backoff waiting interval ± jitter*interval between attempts.
func newJitteredBackOff(interval time.Duration, jitter float64) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = interval
	b.MaxInterval = interval
	b.Multiplier = 1
	b.RandomizationFactor = jitter
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func (p *ChainPoller) blockResults(ctx context.Context, height uint64) (*coretypes.ResultBlockResults, error) {
	var res *coretypes.ResultBlockResults
	attempts := p.cfg.BlockRetryAttempts
	if attempts == 0 {
		attempts = 1
	}
	delayType := retry.BackOffDelay
	if p.cfg.BlockRetryMaxJitter > 0 {
		delayType = retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)
	}
	err := retry.Do(func() error {
		var err error
		res, err = p.chain.BlockResults(ctx, height)
		return err
	},
		retry.Attempts(attempts),
		retry.Delay(p.cfg.BlockRetryDelay),
		retry.MaxJitter(p.cfg.BlockRetryMaxJitter),
		retry.DelayType(delayType),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			p.logger.InfoContext(ctx, "retrying to fetch block results",
				"height", height,
				"try", n+1,
				"try_limit", attempts,
				"error", err.Error(),
			)
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errorsmod.Wrapf(ErrBlockResults, "height %d: %v", height, err)
	}
	return res, nil
}

func (p *ChainPoller) advance(ctx context.Context, height uint64) error {
	if err := p.cursor.Advance(height); err != nil {
		return err
	}
	// a lagging checkpoint only causes a replay, which the relayed set absorbs
	if err := p.store.SaveCursor(p.pair.Name, height); err != nil {
		p.logger.ErrorContext(ctx, "failed to save the cursor", err, "height", height)
	}
	telemetry.ProcessedBlockHeightGauge.Set(int64(height), AttributeKeyRelay.String(p.pair.Name))
	return nil
}

func (p *ChainPoller) count(ctx context.Context, counter api.Int64Counter, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	attrs = append(attrs, AttributeKeyRelay.String(p.pair.Name))
	counter.Add(ctx, 1, api.WithAttributes(attrs...))
}

func (p *ChainPoller) countFault(ctx context.Context, err error) {
	var fault string
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return
	case errors.Is(err, ErrBlockResults):
		fault = "block_results"
	case errors.Is(err, ErrDelivery):
		fault = "delivery"
	case errors.Is(err, ErrCheckpoint):
		fault = "checkpoint"
	default:
		fault = "other"
	}
	p.count(ctx, telemetry.HeightProcessingFaultsCounter, AttributeKeyFault.String(fault))
}

func GetPollerLogger(pair RelayPair) *log.RelayLogger {
	return log.GetLogger().
		WithRelay(pair.Name, pair.SrcChainID, pair.DstChainID).
		WithChannel(pair.SrcChannel, pair.SrcPort, pair.DstChannel, pair.DstPort).
		WithModule("core.poller")
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
