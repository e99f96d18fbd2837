package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gabapcia/credwatch/internal/blockproc"

	"github.com/redis/go-redis/v9"
)

// idempotencyDone is the terminal value of a claim key.
const idempotencyDone = "done"

func idempotencyKey(network, blockHash string) string {
	return fmt.Sprintf("%s:idempotency:%s:%s", keyPrefix, network, blockHash)
}

// ClaimBlock reserves blockHash for ttl.
//
// It returns blockproc.ErrAlreadyFinished when the key holds "done" and
// blockproc.ErrStillInProgress when an unexpired claim exists.
func (c *client) ClaimBlock(ctx context.Context, network, blockHash string, ttl time.Duration) error {
	key := idempotencyKey(network, blockHash)

	val, err := c.conn.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	if val == idempotencyDone {
		return blockproc.ErrAlreadyFinished
	}

	ok, err := c.conn.SetNX(ctx, key, "", ttl).Result()
	if err != nil {
		return err
	}

	if !ok {
		return blockproc.ErrStillInProgress
	}

	return nil
}

// MarkBlockComplete sets the claim of blockHash to "done" with no
// expiration.
func (c *client) MarkBlockComplete(ctx context.Context, network, blockHash string) error {
	return c.conn.Set(ctx, idempotencyKey(network, blockHash), idempotencyDone, 0).Err()
}

var _ blockproc.IdempotencyGuard = new(client)
