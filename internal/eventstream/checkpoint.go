package eventstream

import (
	"context"
	"errors"

	"github.com/gabapcia/credwatch/internal/pkg/types"
)

// ErrNoCheckpointFound is returned by LoadLatestCheckpoint when no checkpoint
// has been saved yet for the requested network.
var ErrNoCheckpointFound = errors.New("no checkpoint found for network")

// CheckpointStorage persists and retrieves the height of the last block whose
// events were fully projected, per network.
type CheckpointStorage interface {
	// SaveCheckpoint records height as the latest checkpoint of network,
	// overwriting any previous one.
	SaveCheckpoint(ctx context.Context, network string, height types.Hex) error

	// LoadLatestCheckpoint returns the most recent height saved for network,
	// or ErrNoCheckpointFound.
	LoadLatestCheckpoint(ctx context.Context, network string) (types.Hex, error)
}

// nopCheckpoint persists nothing; every start begins at the configured height.
type nopCheckpoint struct{}

func (nopCheckpoint) SaveCheckpoint(_ context.Context, _ string, _ types.Hex) error {
	return nil
}

func (nopCheckpoint) LoadLatestCheckpoint(_ context.Context, _ string) (types.Hex, error) {
	return "", ErrNoCheckpointFound
}

// startHeight is the height the subscription begins at: the block after the
// checkpoint, or the configured start height when nothing was checkpointed.
// An empty result lets the blockchain start at its finalized head.
func (s *service) startHeight(ctx context.Context) (types.Hex, error) {
	checkpoint, err := s.checkpointStorage.LoadLatestCheckpoint(ctx, s.network)
	switch {
	case errors.Is(err, ErrNoCheckpointFound):
		return s.fromHeight, nil
	case err != nil:
		return "", err
	}

	return types.HexFromUint64(checkpoint.Uint64() + 1), nil
}
