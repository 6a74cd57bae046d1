package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hyperledger-labs/aero-relay/log"
	"golang.org/x/sync/errgroup"
)

// PollerFactory connects to the source chain of pair and returns its poller.
type PollerFactory func(ctx context.Context, pair RelayPair) (*ChainPoller, error)

// RelaySupervisor runs one ChainPoller per relay pair. A pair that fails to start,
// returns an error or panics is logged and does not affect the others.
type RelaySupervisor struct {
	pairs     []RelayPair
	newPoller PollerFactory
	cfg       PollerConfig
}

func NewRelaySupervisor(pairs []RelayPair, newPoller PollerFactory, cfg PollerConfig) *RelaySupervisor {
	return &RelaySupervisor{
		pairs:     pairs,
		newPoller: newPoller,
		cfg:       cfg,
	}
}

// Run blocks until every poller has stopped, which happens once ctx is done
// or when no pair could be started.
func (s *RelaySupervisor) Run(ctx context.Context) error {
	logger := log.GetLogger().WithModule("core.supervisor")
	logger.InfoContext(ctx, "starting relay supervisor", "relays", len(s.pairs))

	var eg errgroup.Group
	for _, pair := range s.pairs {
		eg.Go(func() error {
			s.runPair(ctx, pair)
			return nil
		})
	}
	err := eg.Wait()
	logger.InfoContext(ctx, "relay supervisor stopped")
	return err
}

func (s *RelaySupervisor) runPair(ctx context.Context, pair RelayPair) {
	logger := GetPollerLogger(pair)
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorWithStack("chain poller panicked", fmt.Errorf("%v", r))
		}
	}()

	if err := pair.Validate(); err != nil {
		logger.ErrorContext(ctx, "invalid relay configuration", err)
		return
	}

	poller, err := s.startPoller(ctx, pair, logger)
	if err != nil {
		if ctx.Err() == nil {
			logger.ErrorContext(ctx, "failed to start chain poller", err)
		}
		return
	}

	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorContext(ctx, "chain poller stopped", err, "height", poller.Cursor().LastHeight())
		return
	}
	logger.InfoContext(ctx, "chain poller stopped", "height", poller.Cursor().LastHeight())
}

// startPoller retries connection errors until ctx is done. Other errors are returned immediately.
func (s *RelaySupervisor) startPoller(ctx context.Context, pair RelayPair, logger *log.RelayLogger) (*ChainPoller, error) {
	var poller *ChainPoller
	op := func() error {
		p, err := s.newPoller(ctx, pair)
		if err != nil {
			if errors.Is(err, ErrConnection) {
				return err
			}
			return backoff.Permanent(err)
		}
		poller = p
		return nil
	}
	notify := func(err error, next time.Duration) {
		logger.WarnContext(ctx, "failed to connect to the source chain",
			"error", err.Error(),
			"retry_in", next.String(),
		)
	}

	b := newJitteredBackOff(s.cfg.HeightRetryInterval, s.cfg.HeightRetryJitter)
	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, err
	}
	return poller, nil
}
