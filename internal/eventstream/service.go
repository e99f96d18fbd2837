// Package eventstream turns a Blockchain subscription into an ordered stream
// of finalized blocks, resuming after the last checkpointed height.
package eventstream

import (
	"context"
	"errors"
	"sync"

	"github.com/gabapcia/credwatch/internal/pkg/logger"
	"github.com/gabapcia/credwatch/internal/pkg/resilience/retry"
	"github.com/gabapcia/credwatch/internal/pkg/types"
)

var (
	// ErrServiceAlreadyStarted is returned by Start on a running service.
	ErrServiceAlreadyStarted = errors.New("service already started")

	// ErrHeightSkipped is the cause reported for a height the subscription
	// never emitted and that could not be fetched afterwards.
	ErrHeightSkipped = errors.New("height skipped by subscription")
)

const observedBlockChannelBufferSize = 10

// Service streams observed blocks.
type Service interface {
	// Start subscribes to the blockchain and returns the ordered block
	// stream. The channel is closed when the service is closed, ctx is
	// canceled, or a block could not be dispatched.
	Start(ctx context.Context) (<-chan ObservedBlock, error)

	// Close stops the subscription. It is safe to call on a stopped service.
	Close()
}

type dispatchFailureHandler func(ctx context.Context, dispatchFailure BlockDispatchFailure)

type service struct {
	mu        sync.Mutex
	isStarted bool
	closeFunc context.CancelFunc

	network           string
	blockchain        Blockchain
	checkpointStorage CheckpointStorage
	fromHeight        types.Hex

	retry                  retry.Retry
	dispatchFailureHandler dispatchFailureHandler
}

var _ Service = (*service)(nil)

func (s *service) Start(ctx context.Context) (<-chan ObservedBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return nil, ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	ctx = logger.Derive(ctx, "block.network", s.network)

	from, err := s.startHeight(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	eventsCh, err := s.blockchain.Subscribe(ctx, from)
	if err != nil {
		cancel()
		return nil, err
	}

	logger.Info(ctx, "block stream started", "block.from", from)

	observedBlockCh := make(chan ObservedBlock, observedBlockChannelBufferSize)
	go s.dispatchSubscriptionEvents(ctx, from.Uint64(), eventsCh, observedBlockCh)

	s.closeFunc = cancel
	s.isStarted = true
	return observedBlockCh, nil
}

func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}
	s.isStarted = false
	s.closeFunc = nil
}

type config struct {
	retry                  retry.Retry
	checkpointStorage      CheckpointStorage
	fromHeight             types.Hex
	dispatchFailureHandler dispatchFailureHandler
}

// Option configures the stream.
type Option func(*config)

// New returns a stream of the blocks of network read from blockchain.
func New(network string, blockchain Blockchain, opts ...Option) *service {
	cfg := config{
		retry:                  nil,
		checkpointStorage:      nopCheckpoint{},
		dispatchFailureHandler: defaultOnDispatchFailure,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		network:                network,
		blockchain:             blockchain,
		checkpointStorage:      cfg.checkpointStorage,
		fromHeight:             cfg.fromHeight,
		retry:                  cfg.retry,
		dispatchFailureHandler: cfg.dispatchFailureHandler,
	}
}

func defaultOnDispatchFailure(ctx context.Context, dispatchFailure BlockDispatchFailure) {
	logger.Error(ctx, "block dispatch failure",
		"block.network", dispatchFailure.Network,
		"block.height", dispatchFailure.Height,
		"block.errors", dispatchFailure.Errors,
	)
}

// WithDispatchFailureHandler replaces the default handler, which logs the failure.
func WithDispatchFailureHandler(f func(ctx context.Context, dispatchFailure BlockDispatchFailure)) Option {
	return func(c *config) {
		c.dispatchFailureHandler = f
	}
}

// WithRetry retries failed block fetches with r before giving up on a height.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

// WithCheckpointStorage resumes the stream after the checkpoint saved in cs.
func WithCheckpointStorage(cs CheckpointStorage) Option {
	return func(c *config) {
		c.checkpointStorage = cs
	}
}

// WithStartHeight sets the height streamed first when no checkpoint exists.
// Without it the stream starts at the finalized head.
func WithStartHeight(height uint64) Option {
	return func(c *config) {
		c.fromHeight = types.HexFromUint64(height)
	}
}
