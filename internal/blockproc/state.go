package blockproc

import (
	"time"

	"github.com/gabapcia/credwatch/internal/chain"
	"github.com/gabapcia/credwatch/internal/pkg/types"

	"github.com/google/uuid"
)

// blockProcessingState tracks the projection of one block: when it was
// received, how many attempts were made, which errors they hit and which
// events were projected.
type blockProcessingState struct {
	receivedAt       time.Time
	processingID     string
	network          string
	block            chain.Block
	lastAttemptAt    *time.Time
	lastAttemptError error
	attempts         uint8
	attemptErrorLog  map[int64]error
	projected        types.DefaultMap[string, int]
	finalized        bool
	finalizedAt      *time.Time
}

func newBlockProcessingState(network string, block chain.Block) blockProcessingState {
	return blockProcessingState{
		processingID:    uuid.Must(uuid.NewV7()).String(),
		receivedAt:      time.Now().UTC(),
		attemptErrorLog: make(map[int64]error),
		projected:       types.NewDefaultMap[string](func() int { return 0 }),
		network:         network,
		block:           block,
	}
}

// tallyEvents counts the events of the block by kind, keeping only the
// kinds accepted by supported.
func (s *blockProcessingState) tallyEvents(supported func(chain.CallKey) bool) {
	for _, ev := range s.block.Events {
		if supported(ev.Key()) {
			s.projected.Update(ev.Key().String(), func(n int) int { return n + 1 })
		}
	}
}

// finalizeWithSuccess is a no-op on a finalized state.
func (s *blockProcessingState) finalizeWithSuccess() {
	if s.finalized {
		return
	}

	now := time.Now().UTC()

	s.finalized = true
	s.finalizedAt = &now
	s.lastAttemptError = nil
}

// finalizeWithFailure is a no-op on a finalized state.
func (s *blockProcessingState) finalizeWithFailure(err error) {
	if s.finalized {
		return
	}

	now := time.Now().UTC()

	s.finalized = true
	s.finalizedAt = &now
	s.lastAttemptError = err
	s.attemptErrorLog[now.Unix()] = err
}

func (s *blockProcessingState) recordAttempt() {
	if s.finalized {
		return
	}

	now := time.Now().UTC()

	s.attempts++
	s.lastAttemptAt = &now
}

func (s *blockProcessingState) recordAttemptFailure(err error) {
	if s.finalized {
		return
	}

	now := time.Now().UTC()

	s.lastAttemptError = err
	s.attemptErrorLog[now.Unix()] = err
}

// asFailureResult returns the zero value unless the state was finalized
// with an error.
func (s blockProcessingState) asFailureResult() BlockProcessingFailure {
	if !s.finalized || s.lastAttemptError == nil {
		return BlockProcessingFailure{}
	}

	return BlockProcessingFailure{
		ProcessingID:  s.processingID,
		Network:       s.network,
		Height:        types.HexFromUint64(s.block.Height),
		Hash:          s.block.Hash.String(),
		FailedAt:      *s.finalizedAt,
		Attempts:      s.attempts,
		LastError:     s.lastAttemptError,
		AttemptErrors: s.attemptErrorLog,
	}
}
