// Package redis implements the persistent storage of the indexer on Redis:
// the entity documents, the stream checkpoint and the block idempotency
// claims.
package redis

import (
	"context"

	redis "github.com/redis/go-redis/v9"
)

// keyPrefix namespaces every key written by the indexer.
const keyPrefix = "credwatch"

type client struct {
	conn *redis.Client
}

func (c *client) Close() error {
	return c.conn.Close()
}

// NewClient connects to the Redis server at addr and pings it.
func NewClient(ctx context.Context, addr, username, password string, db int) (*client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &client{
		conn: conn,
	}, nil
}
