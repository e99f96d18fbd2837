package blockproc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gabapcia/credwatch/internal/canonhash"
	"github.com/gabapcia/credwatch/internal/chain"
	"github.com/gabapcia/credwatch/internal/eventstream"
	eventstreamMocks "github.com/gabapcia/credwatch/internal/eventstream/mocks"
	"github.com/gabapcia/credwatch/internal/pkg/logger"
	"github.com/gabapcia/credwatch/internal/pkg/resilience/retry"
	"github.com/gabapcia/credwatch/internal/pkg/types"
	"github.com/gabapcia/credwatch/internal/projector"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = logger.Init("error")
}

const network = "spiritnet"

var blockHash = canonhash.Hash{0x0a, 0x0b}

type testDeps struct {
	stream     *eventstreamMocks.Service
	checkpoint *eventstreamMocks.CheckpointStorage
	projector  *ProjectorMock
	stage      *StageMock
	guard      *IdempotencyGuardMock
	notifier   *BlockProcessingFailureNotifierMock
}

func newTestDeps(t *testing.T) testDeps {
	return testDeps{
		stream:     eventstreamMocks.NewService(t),
		checkpoint: eventstreamMocks.NewCheckpointStorage(t),
		projector:  NewProjectorMock(t),
		stage:      NewStageMock(t),
		guard:      NewIdempotencyGuardMock(t),
		notifier:   NewBlockProcessingFailureNotifierMock(t),
	}
}

func (d testDeps) service() *service {
	return New(d.stream, d.projector, d.stage,
		WithCheckpointStorage(d.checkpoint),
		WithIdempotencyGuard(d.guard),
		WithFailureNotifier(d.notifier),
		WithMaxProcessingTime(time.Minute),
		WithRetry(retry.New(retry.WithAttempts(3), retry.WithDelay(time.Millisecond), retry.WithMaxDelay(time.Millisecond))),
	)
}

func observedBlock(height uint64) eventstream.ObservedBlock {
	extrinsic := 1
	return eventstream.ObservedBlock{
		Network: network,
		Block: chain.Block{
			Height: height,
			Hash:   blockHash,
			Events: []chain.Event{
				{Index: 0, Pallet: "system", Method: "ExtrinsicSuccess"},
				{Index: 1, Pallet: "attestation", Method: "AttestationCreated", ExtrinsicIndex: &extrinsic},
			},
		},
	}
}

func supportsAttestations(key chain.CallKey) bool {
	return key.Pallet == "attestation"
}

func TestService_Start(t *testing.T) {
	t.Run("should project observed blocks and checkpoint them", func(t *testing.T) {
		deps := newTestDeps(t)
		blocksCh := make(chan eventstream.ObservedBlock, 1)
		done := make(chan struct{})

		deps.stream.EXPECT().Start(mock.Anything).Return((<-chan eventstream.ObservedBlock)(blocksCh), nil)
		deps.stream.EXPECT().Close().Return()
		deps.guard.EXPECT().ClaimBlock(mock.Anything, network, blockHash.String(), time.Minute).Return(nil)
		deps.projector.EXPECT().Project(mock.Anything, mock.MatchedBy(func(b chain.Block) bool {
			return b.Height == 7
		})).Return(nil)
		deps.projector.EXPECT().Supports(mock.Anything).RunAndReturn(supportsAttestations)
		deps.stage.EXPECT().Commit(mock.Anything).Return(nil)
		deps.guard.EXPECT().MarkBlockComplete(mock.Anything, network, blockHash.String()).Return(nil)
		deps.checkpoint.EXPECT().SaveCheckpoint(mock.Anything, network, types.HexFromUint64(7)).
			Return(nil).
			Run(func(context.Context, string, types.Hex) { close(done) })

		svc := deps.service()
		require.NoError(t, svc.Start(t.Context()))

		blocksCh <- observedBlock(7)
		<-done

		svc.Close()
		assert.NoError(t, svc.Err())
	})

	t.Run("should return the stream start error", func(t *testing.T) {
		deps := newTestDeps(t)
		expectedErr := errors.New("subscribe failed")

		deps.stream.EXPECT().Start(mock.Anything).Return(nil, expectedErr)

		svc := deps.service()
		err := svc.Start(t.Context())

		assert.ErrorIs(t, err, expectedErr)
		assert.False(t, svc.isStarted)
	})

	t.Run("should reject a second start", func(t *testing.T) {
		deps := newTestDeps(t)
		blocksCh := make(chan eventstream.ObservedBlock)

		deps.stream.EXPECT().Start(mock.Anything).Return((<-chan eventstream.ObservedBlock)(blocksCh), nil).Once()
		deps.stream.EXPECT().Close().Return()

		svc := deps.service()
		require.NoError(t, svc.Start(t.Context()))
		assert.ErrorIs(t, svc.Start(t.Context()), ErrServiceAlreadyStarted)

		svc.Close()
	})

	t.Run("should start again after close", func(t *testing.T) {
		deps := newTestDeps(t)

		deps.stream.EXPECT().Start(mock.Anything).RunAndReturn(func(context.Context) (<-chan eventstream.ObservedBlock, error) {
			return make(chan eventstream.ObservedBlock), nil
		}).Twice()
		deps.stream.EXPECT().Close().Return().Twice()

		svc := deps.service()
		require.NoError(t, svc.Start(t.Context()))
		svc.Close()

		require.NoError(t, svc.Start(t.Context()))
		svc.Close()
	})

	t.Run("should allow close without start", func(t *testing.T) {
		deps := newTestDeps(t)

		svc := deps.service()

		assert.NotPanics(t, svc.Close)
		assert.NoError(t, svc.Err())
	})
}

func TestService_Halt(t *testing.T) {
	waitHalted := func(t *testing.T, svc *service) {
		t.Helper()

		select {
		case <-svc.Halted():
		case <-time.After(2 * time.Second):
			t.Fatal("service did not halt")
		}
	}

	t.Run("should halt on a fatal projection error", func(t *testing.T) {
		deps := newTestDeps(t)
		blocksCh := make(chan eventstream.ObservedBlock, 2)
		fatal := &projector.FatalError{Height: 7, Event: "attestation.AttestationCreated", Err: projector.ErrConsistencyViolation}

		deps.stream.EXPECT().Start(mock.Anything).Return((<-chan eventstream.ObservedBlock)(blocksCh), nil)
		deps.stream.EXPECT().Close().Return()
		deps.guard.EXPECT().ClaimBlock(mock.Anything, network, blockHash.String(), time.Minute).Return(nil)
		deps.projector.EXPECT().Project(mock.Anything, mock.Anything).Return(fatal).Once()
		deps.stage.EXPECT().Discard().Return()
		deps.notifier.EXPECT().NotifyBlockProcessingFailure(mock.Anything, mock.Anything).Return(nil)

		svc := deps.service()
		require.NoError(t, svc.Start(t.Context()))

		blocksCh <- observedBlock(7)
		blocksCh <- observedBlock(8)
		waitHalted(t, svc)

		assert.ErrorIs(t, svc.Err(), projector.ErrConsistencyViolation)
		svc.Close()
	})

	t.Run("should halt when the stream closes", func(t *testing.T) {
		deps := newTestDeps(t)
		blocksCh := make(chan eventstream.ObservedBlock)

		deps.stream.EXPECT().Start(mock.Anything).Return((<-chan eventstream.ObservedBlock)(blocksCh), nil)
		deps.stream.EXPECT().Close().Return()

		svc := deps.service()
		require.NoError(t, svc.Start(t.Context()))

		close(blocksCh)
		waitHalted(t, svc)

		assert.ErrorIs(t, svc.Err(), ErrStreamClosed)
		svc.Close()
	})

	t.Run("should not halt when closed", func(t *testing.T) {
		deps := newTestDeps(t)
		blocksCh := make(chan eventstream.ObservedBlock)

		deps.stream.EXPECT().Start(mock.Anything).Return((<-chan eventstream.ObservedBlock)(blocksCh), nil)
		deps.stream.EXPECT().Close().Return()

		svc := deps.service()
		require.NoError(t, svc.Start(t.Context()))
		svc.Close()

		select {
		case <-svc.Halted():
			t.Fatal("service halted on close")
		default:
		}
		assert.NoError(t, svc.Err())
	})
}

func TestService_ProcessBlock(t *testing.T) {
	t.Run("should skip finished blocks and still checkpoint them", func(t *testing.T) {
		deps := newTestDeps(t)

		deps.guard.EXPECT().ClaimBlock(mock.Anything, network, blockHash.String(), time.Minute).Return(ErrAlreadyFinished).Once()
		deps.checkpoint.EXPECT().SaveCheckpoint(mock.Anything, network, types.HexFromUint64(7)).Return(nil)

		err := deps.service().processBlock(t.Context(), observedBlock(7))

		assert.NoError(t, err)
	})

	t.Run("should retry transient failures from a clean stage", func(t *testing.T) {
		deps := newTestDeps(t)
		transient := errors.New("connection reset")

		deps.guard.EXPECT().ClaimBlock(mock.Anything, network, blockHash.String(), time.Minute).Return(nil)
		deps.projector.EXPECT().Project(mock.Anything, mock.Anything).Return(nil).Twice()
		deps.stage.EXPECT().Commit(mock.Anything).Return(transient).Once()
		deps.stage.EXPECT().Commit(mock.Anything).Return(nil).Once()
		deps.stage.EXPECT().Discard().Return().Once()
		deps.projector.EXPECT().Supports(mock.Anything).RunAndReturn(supportsAttestations)
		deps.guard.EXPECT().MarkBlockComplete(mock.Anything, network, blockHash.String()).Return(nil)
		deps.checkpoint.EXPECT().SaveCheckpoint(mock.Anything, network, types.HexFromUint64(7)).Return(nil)

		err := deps.service().processBlock(t.Context(), observedBlock(7))

		assert.NoError(t, err)
	})

	t.Run("should not retry fatal errors and report them", func(t *testing.T) {
		deps := newTestDeps(t)
		fatal := &projector.FatalError{Height: 7, Event: "attestation.AttestationCreated", Target: "0xabc", Err: projector.ErrConsistencyViolation}

		deps.guard.EXPECT().ClaimBlock(mock.Anything, network, blockHash.String(), time.Minute).Return(nil)
		deps.projector.EXPECT().Project(mock.Anything, mock.Anything).Return(fatal).Once()
		deps.stage.EXPECT().Discard().Return().Once()
		deps.notifier.EXPECT().NotifyBlockProcessingFailure(mock.Anything, mock.MatchedBy(func(f BlockProcessingFailure) bool {
			return f.Network == network &&
				f.Height == types.HexFromUint64(7) &&
				f.Hash == blockHash.String() &&
				f.Attempts == 1 &&
				projector.IsFatal(f.LastError) &&
				f.ProcessingID != ""
		})).Return(nil)

		err := deps.service().processBlock(t.Context(), observedBlock(7))

		assert.True(t, projector.IsFatal(err))
	})

	t.Run("should report exhausted retries", func(t *testing.T) {
		deps := newTestDeps(t)
		transient := errors.New("connection reset")

		deps.guard.EXPECT().ClaimBlock(mock.Anything, network, blockHash.String(), time.Minute).Return(nil)
		deps.projector.EXPECT().Project(mock.Anything, mock.Anything).Return(transient).Times(3)
		deps.stage.EXPECT().Discard().Return().Times(3)
		deps.notifier.EXPECT().NotifyBlockProcessingFailure(mock.Anything, mock.MatchedBy(func(f BlockProcessingFailure) bool {
			return f.Attempts == 3
		})).Return(errors.New("notifier down"))

		err := deps.service().processBlock(t.Context(), observedBlock(7))

		assert.ErrorIs(t, err, transient)
	})

	t.Run("should fail when the block cannot be claimed", func(t *testing.T) {
		deps := newTestDeps(t)

		deps.guard.EXPECT().ClaimBlock(mock.Anything, network, blockHash.String(), time.Minute).Return(ErrStillInProgress).Times(3)
		deps.notifier.EXPECT().NotifyBlockProcessingFailure(mock.Anything, mock.MatchedBy(func(f BlockProcessingFailure) bool {
			return f.Attempts == 0 && errors.Is(f.LastError, ErrStillInProgress)
		})).Return(nil)

		err := deps.service().processBlock(t.Context(), observedBlock(7))

		assert.ErrorIs(t, err, ErrStillInProgress)
	})

	t.Run("should succeed when marking complete or checkpointing fails", func(t *testing.T) {
		deps := newTestDeps(t)

		deps.guard.EXPECT().ClaimBlock(mock.Anything, network, blockHash.String(), time.Minute).Return(nil)
		deps.projector.EXPECT().Project(mock.Anything, mock.Anything).Return(nil)
		deps.stage.EXPECT().Commit(mock.Anything).Return(nil)
		deps.projector.EXPECT().Supports(mock.Anything).RunAndReturn(supportsAttestations)
		deps.guard.EXPECT().MarkBlockComplete(mock.Anything, network, blockHash.String()).Return(errors.New("redis down"))
		deps.checkpoint.EXPECT().SaveCheckpoint(mock.Anything, network, types.HexFromUint64(7)).Return(errors.New("redis down"))

		err := deps.service().processBlock(t.Context(), observedBlock(7))

		assert.NoError(t, err)
	})
}

func TestBlockProcessingState(t *testing.T) {
	t.Run("should tally supported events by key", func(t *testing.T) {
		state := newBlockProcessingState(network, observedBlock(7).Block)

		state.tallyEvents(supportsAttestations)

		assert.Equal(t, map[string]int{"attestation.AttestationCreated": 1}, state.projected.ToMap())
	})

	t.Run("should ignore records after finalization", func(t *testing.T) {
		state := newBlockProcessingState(network, observedBlock(7).Block)
		state.recordAttempt()
		state.finalizeWithSuccess()

		state.recordAttempt()
		state.finalizeWithFailure(errors.New("late"))

		assert.Equal(t, uint8(1), state.attempts)
		assert.NoError(t, state.lastAttemptError)
		assert.Zero(t, state.asFailureResult())
	})

	t.Run("should build a failure result", func(t *testing.T) {
		expectedErr := errors.New("boom")
		state := newBlockProcessingState(network, observedBlock(9).Block)
		state.recordAttempt()
		state.recordAttemptFailure(expectedErr)
		state.finalizeWithFailure(expectedErr)

		result := state.asFailureResult()

		assert.Equal(t, types.HexFromUint64(9), result.Height)
		assert.Equal(t, uint8(1), result.Attempts)
		assert.ErrorIs(t, result.LastError, expectedErr)
		assert.NotEmpty(t, result.AttemptErrors)
	})
}
