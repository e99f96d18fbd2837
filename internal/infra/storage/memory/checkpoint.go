package memory

import (
	"context"

	"github.com/gabapcia/credwatch/internal/eventstream"
	"github.com/gabapcia/credwatch/internal/pkg/types"
)

var _ eventstream.CheckpointStorage = (*store)(nil)

// SaveCheckpoint implements eventstream.CheckpointStorage.
func (s *store) SaveCheckpoint(_ context.Context, network string, height types.Hex) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoints[network] = height
	return nil
}

// LoadLatestCheckpoint implements eventstream.CheckpointStorage.
func (s *store) LoadLatestCheckpoint(_ context.Context, network string) (types.Hex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	height, ok := s.checkpoints[network]
	if !ok {
		return "", eventstream.ErrNoCheckpointFound
	}

	return height, nil
}
