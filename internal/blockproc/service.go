// Package blockproc drives the indexing pipeline: it consumes the observed
// block stream and projects every block into the entity store, one block at
// a time and in height order.
//
// A block is processed in these steps:
//
//  1. It is claimed through the IdempotencyGuard. A block that was already
//     completed is skipped.
//  2. Its events are projected into a Stage and the staged writes are
//     committed. Transient failures are retried. A fatal projection error
//     is never retried.
//  3. The block is marked as complete and its height is saved as the
//     stream checkpoint.
//
// When a block cannot be processed the failure is reported to the
// BlockProcessingFailureNotifier and the pipeline halts: later blocks
// depend on the state the failed block should have produced.
package blockproc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gabapcia/credwatch/internal/chain"
	"github.com/gabapcia/credwatch/internal/eventstream"
	"github.com/gabapcia/credwatch/internal/pkg/logger"
	"github.com/gabapcia/credwatch/internal/pkg/resilience/retry"
	"github.com/gabapcia/credwatch/internal/pkg/types"
	"github.com/gabapcia/credwatch/internal/pkg/x/chflow"
	"github.com/gabapcia/credwatch/internal/projector"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/gabapcia/credwatch/internal/blockproc"

var (
	// ErrServiceAlreadyStarted is returned if Start is called more than once.
	ErrServiceAlreadyStarted = errors.New("service already started")

	// ErrStreamClosed is the halt cause when the block stream ends while the
	// service is still running.
	ErrStreamClosed = errors.New("block stream closed unexpectedly")
)

// Projector applies the events of a block to the entity store.
type Projector interface {
	// Project applies every supported event of block, in event order.
	Project(ctx context.Context, block chain.Block) error

	// Supports reports whether events with key are projected.
	Supports(key chain.CallKey) bool
}

// Stage holds the writes of the block being projected until they are
// committed.
type Stage interface {
	// Commit persists the staged writes.
	Commit(ctx context.Context) error

	// Discard drops the staged writes.
	Discard()
}

// Service defines the blockproc lifecycle.
type Service interface {
	// Start begins consuming the block stream.
	//
	// Returns ErrServiceAlreadyStarted if the service is running.
	Start(ctx context.Context) error

	// Close stops the stream and the processing loop. It is safe to call
	// Close even if the service was never started.
	Close()

	// Halted is closed once the pipeline stops because of a failure.
	Halted() <-chan struct{}

	// Err returns the failure that halted the pipeline, or nil while it
	// runs.
	Err() error
}

// closeFunc defines a cleanup routine to stop background goroutines and dependencies.
type closeFunc func()

// haltSignal is closed once, recording the cause first.
type haltSignal struct {
	once sync.Once
	done chan struct{}
	err  error
}

func newHaltSignal() *haltSignal {
	return &haltSignal{done: make(chan struct{})}
}

func (h *haltSignal) halt(err error) {
	h.once.Do(func() {
		h.err = err
		close(h.done)
	})
}

func (h *haltSignal) cause() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

type service struct {
	mu        sync.Mutex
	isStarted bool
	closeFunc closeFunc
	halted    *haltSignal

	stream            eventstream.Service
	projector         Projector
	stage             Stage
	checkpointStorage eventstream.CheckpointStorage
	idempotencyGuard  IdempotencyGuard
	failureNotifier   BlockProcessingFailureNotifier
	retry             retry.Retry
	maxProcessingTime time.Duration
	tracer            trace.Tracer
}

var _ Service = (*service)(nil)

func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)

	blocksCh, err := s.stream.Start(ctx)
	if err != nil {
		cancel()
		return err
	}

	halted := newHaltSignal()
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.run(ctx, blocksCh, halted)
	}()

	s.halted = halted
	s.closeFunc = func() {
		cancel()
		s.stream.Close()
		<-done
	}
	s.isStarted = true
	return nil
}

func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}

	s.closeFunc = nil
	s.isStarted = false
}

func (s *service) Halted() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.halted.done
}

func (s *service) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.halted.cause()
}

// run processes observed blocks until ctx is done, the stream closes or a
// block fails.
func (s *service) run(ctx context.Context, blocksCh <-chan eventstream.ObservedBlock, halted *haltSignal) {
	for {
		observed, ok := chflow.Receive(ctx, blocksCh)
		if !ok {
			if ctx.Err() == nil {
				logger.Error(ctx, "block stream closed while processing was running")
				halted.halt(ErrStreamClosed)
			}
			return
		}

		if err := s.processBlock(ctx, observed); err != nil {
			if ctx.Err() == nil {
				halted.halt(err)
			}
			return
		}
	}
}

func (s *service) processBlock(ctx context.Context, observed eventstream.ObservedBlock) error {
	block := observed.Block
	state := newBlockProcessingState(observed.Network, block)

	ctx, span := s.tracer.Start(ctx, "blockproc.processBlock", trace.WithAttributes(
		attribute.String("block.network", observed.Network),
		attribute.Int64("block.height", int64(block.Height)),
		attribute.String("block.hash", block.Hash.String()),
	))
	defer span.End()

	ctx = logger.Derive(ctx,
		"processing.id", state.processingID,
		"block.height", block.Height,
		"block.hash", block.Hash.String(),
	)

	err := s.retry.Execute(ctx, func() error {
		err := s.idempotencyGuard.ClaimBlock(ctx, observed.Network, block.Hash.String(), s.maxProcessingTime)
		if errors.Is(err, ErrAlreadyFinished) {
			return retry.Unrecoverable(err)
		}
		return err
	})
	if errors.Is(err, ErrAlreadyFinished) {
		logger.Info(ctx, "block already processed, skipping")
		s.saveCheckpoint(ctx, observed.Network, block.Height)
		return nil
	}
	if err != nil {
		return s.fail(ctx, span, &state, fmt.Errorf("claiming block: %w", err))
	}

	err = s.retry.Execute(ctx, func() error {
		state.recordAttempt()

		err := s.project(ctx, block)
		if err == nil {
			return nil
		}

		state.recordAttemptFailure(err)
		logger.Warn(ctx, "block projection attempt failed", "processing.attempt", state.attempts, "error", err)

		if projector.IsFatal(err) {
			return retry.Unrecoverable(err)
		}
		return err
	})
	if err != nil {
		return s.fail(ctx, span, &state, err)
	}

	if err := s.idempotencyGuard.MarkBlockComplete(ctx, observed.Network, block.Hash.String()); err != nil {
		logger.Error(ctx, "failed to mark block as complete", "error", err)
	}

	s.saveCheckpoint(ctx, observed.Network, block.Height)

	state.tallyEvents(s.projector.Supports)
	state.finalizeWithSuccess()

	logger.Info(ctx, "block processed",
		"processing.attempts", state.attempts,
		"processing.duration", state.finalizedAt.Sub(state.receivedAt),
		"events.projected", state.projected.ToMap(),
	)
	return nil
}

// project runs one projection attempt. Staged writes are dropped when the
// attempt fails so the next one starts from the committed state.
func (s *service) project(ctx context.Context, block chain.Block) error {
	if err := s.projector.Project(ctx, block); err != nil {
		s.stage.Discard()
		return err
	}

	if err := s.stage.Commit(ctx); err != nil {
		s.stage.Discard()
		return err
	}

	return nil
}

func (s *service) saveCheckpoint(ctx context.Context, network string, height uint64) {
	if err := s.checkpointStorage.SaveCheckpoint(ctx, network, types.HexFromUint64(height)); err != nil {
		logger.Error(ctx, "failed to save checkpoint", "error", err)
	}
}

func (s *service) fail(ctx context.Context, span trace.Span, state *blockProcessingState, err error) error {
	state.finalizeWithFailure(err)

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if ctx.Err() != nil {
		return err
	}

	if notifyErr := s.failureNotifier.NotifyBlockProcessingFailure(ctx, state.asFailureResult()); notifyErr != nil {
		logger.Error(ctx, "failed to notify block processing failure", "error", notifyErr)
	}

	return err
}

type config struct {
	retry             retry.Retry
	idempotencyGuard  IdempotencyGuard
	checkpointStorage eventstream.CheckpointStorage
	failureNotifier   BlockProcessingFailureNotifier
	maxProcessingTime time.Duration
	tracer            trace.Tracer
}

// Option configures the service.
type Option func(*config)

// New returns a service projecting the blocks of stream through p. stage
// must be the store p writes to.
func New(stream eventstream.Service, p Projector, stage Stage, opts ...Option) *service {
	cfg := config{
		retry:             retry.New(retry.WithAttempts(1)),
		idempotencyGuard:  nopIdempotencyGuard{},
		checkpointStorage: nopCheckpointStorage{},
		failureNotifier:   logFailureNotifier{},
		maxProcessingTime: 5 * time.Minute,
		tracer:            otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		halted:            newHaltSignal(),
		stream:            stream,
		projector:         p,
		stage:             stage,
		checkpointStorage: cfg.checkpointStorage,
		idempotencyGuard:  cfg.idempotencyGuard,
		failureNotifier:   cfg.failureNotifier,
		retry:             cfg.retry,
		maxProcessingTime: cfg.maxProcessingTime,
		tracer:            cfg.tracer,
	}
}

// WithRetry retries claims and transient projection failures with r.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

// WithIdempotencyGuard sets the guard. By default every block is processed.
func WithIdempotencyGuard(g IdempotencyGuard) Option {
	return func(c *config) {
		c.idempotencyGuard = g
	}
}

// WithCheckpointStorage saves the height of every processed block to cs.
func WithCheckpointStorage(cs eventstream.CheckpointStorage) Option {
	return func(c *config) {
		c.checkpointStorage = cs
	}
}

// WithFailureNotifier replaces the default notifier, which logs the failure.
func WithFailureNotifier(n BlockProcessingFailureNotifier) Option {
	return func(c *config) {
		c.failureNotifier = n
	}
}

// WithMaxProcessingTime sets how long a block claim holds before another
// worker may take the block over.
func WithMaxProcessingTime(d time.Duration) Option {
	return func(c *config) {
		c.maxProcessingTime = d
	}
}

// WithTracer replaces the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *config) {
		c.tracer = t
	}
}

type nopCheckpointStorage struct{}

func (nopCheckpointStorage) SaveCheckpoint(context.Context, string, types.Hex) error {
	return nil
}

func (nopCheckpointStorage) LoadLatestCheckpoint(context.Context, string) (types.Hex, error) {
	return "", eventstream.ErrNoCheckpointFound
}
