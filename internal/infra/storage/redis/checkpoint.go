package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabapcia/credwatch/internal/eventstream"
	"github.com/gabapcia/credwatch/internal/pkg/types"

	"github.com/redis/go-redis/v9"
)

// checkpointKey is the key holding the height of the last processed block
// of network:
//
//	"credwatch:checkpoint:<network>"
func checkpointKey(network string) string {
	return fmt.Sprintf("%s:checkpoint:%s", keyPrefix, network)
}

// SaveCheckpoint stores height as the latest checkpoint of network, with no
// expiration.
func (c *client) SaveCheckpoint(ctx context.Context, network string, height types.Hex) error {
	return c.conn.Set(ctx, checkpointKey(network), string(height), 0).Err()
}

// LoadLatestCheckpoint returns the checkpoint of network, or
// eventstream.ErrNoCheckpointFound if none was saved.
func (c *client) LoadLatestCheckpoint(ctx context.Context, network string) (types.Hex, error) {
	val, err := c.conn.Get(ctx, checkpointKey(network)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = eventstream.ErrNoCheckpointFound
		}

		return "", err
	}

	return types.HexFromString(val)
}

// DeleteCheckpoint removes the checkpoint of network so the next start
// begins at the configured height.
func (c *client) DeleteCheckpoint(ctx context.Context, network string) error {
	return c.conn.Del(ctx, checkpointKey(network)).Err()
}

var _ eventstream.CheckpointStorage = new(client)
