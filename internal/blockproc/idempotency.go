package blockproc

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrStillInProgress indicates that the block is claimed by another
	// processing cycle whose claim has not expired yet.
	ErrStillInProgress = errors.New("processing still in progress")

	// ErrAlreadyFinished indicates that the block was already projected.
	ErrAlreadyFinished = errors.New("processing already finished")
)

// IdempotencyGuard makes sure the events of a block are projected at most
// once, even across restarts.
type IdempotencyGuard interface {
	// ClaimBlock reserves the block identified by blockHash for ttl.
	// It returns ErrAlreadyFinished when the block was completed before and
	// ErrStillInProgress when an unexpired claim exists.
	ClaimBlock(ctx context.Context, network, blockHash string, ttl time.Duration) error

	// MarkBlockComplete records that the block was projected, making every
	// later claim fail with ErrAlreadyFinished.
	MarkBlockComplete(ctx context.Context, network, blockHash string) error
}

// nopIdempotencyGuard lets every block through.
type nopIdempotencyGuard struct{}

var _ IdempotencyGuard = nopIdempotencyGuard{}

func (nopIdempotencyGuard) ClaimBlock(context.Context, string, string, time.Duration) error {
	return nil
}

func (nopIdempotencyGuard) MarkBlockComplete(context.Context, string, string) error {
	return nil
}
