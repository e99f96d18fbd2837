package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gabapcia/credwatch/internal/entity"

	"github.com/redis/go-redis/v9"
)

// entityKey is the hash holding every document of kind, keyed by id:
//
//	"credwatch:entity:<kind>"
func entityKey(kind entity.Kind) string {
	return fmt.Sprintf("%s:entity:%s", keyPrefix, kind)
}

// Get implements entity.Store.
func (c *client) Get(ctx context.Context, kind entity.Kind, id string) (json.RawMessage, error) {
	val, err := c.conn.HGet(ctx, entityKey(kind), id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s %q", entity.ErrEntityNotFound, kind, id)
		}

		return nil, err
	}

	return val, nil
}

// Save implements entity.Store.
func (c *client) Save(ctx context.Context, kind entity.Kind, id string, doc json.RawMessage) error {
	return c.SaveBatch(ctx, []entity.Document{{Kind: kind, ID: id, Doc: doc}})
}

// SaveBatch writes docs and their index entries in a single MULTI/EXEC
// transaction. The stored versions are read beforehand, so writers must not
// race on the same documents.
func (c *client) SaveBatch(ctx context.Context, docs []entity.Document) error {
	changes, err := c.indexChanges(ctx, docs)
	if err != nil {
		return fmt.Errorf("reading index entries: %w", err)
	}

	_, err = c.conn.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, d := range docs {
			pipe.HSet(ctx, entityKey(d.Kind), d.ID, []byte(d.Doc))
			for _, key := range changes[i].stale {
				pipe.SRem(ctx, key, d.ID)
			}
			for _, key := range changes[i].fresh {
				pipe.SAdd(ctx, key, d.ID)
			}
		}
		return nil
	})
	return err
}

// candidates returns the documents of kind that may match predicates. When
// an index set applies only its members are fetched; otherwise every
// document of kind is.
func (c *client) candidates(ctx context.Context, kind entity.Kind, predicates []entity.Predicate) ([]json.RawMessage, error) {
	keys, _, err := indexLookup(kind, predicates)
	if err != nil {
		return nil, err
	}

	var vals []string
	if len(keys) == 0 {
		if vals, err = c.conn.HVals(ctx, entityKey(kind)).Result(); err != nil {
			return nil, err
		}
	} else {
		ids, err := c.conn.SInter(ctx, keys...).Result()
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, nil
		}

		stored, err := c.conn.HMGet(ctx, entityKey(kind), ids...).Result()
		if err != nil {
			return nil, err
		}
		for _, v := range stored {
			if s, ok := v.(string); ok {
				vals = append(vals, s)
			}
		}
	}

	docs := make([]json.RawMessage, len(vals))
	for i, v := range vals {
		docs[i] = json.RawMessage(v)
	}

	return docs, nil
}

// QueryByFields implements entity.Store. Equality predicates on indexed
// fields narrow the candidates; every predicate is then evaluated on the
// client.
func (c *client) QueryByFields(ctx context.Context, kind entity.Kind, predicates []entity.Predicate, opts entity.QueryOptions) ([]json.RawMessage, error) {
	docs, err := c.candidates(ctx, kind, predicates)
	if err != nil {
		return nil, err
	}

	return entity.Select(docs, predicates, opts)
}

// CountByFields implements entity.Counter. Queries made only of indexed
// equality predicates are counted on the server.
func (c *client) CountByFields(ctx context.Context, kind entity.Kind, predicates []entity.Predicate) (int, error) {
	keys, covered, err := indexLookup(kind, predicates)
	if err != nil {
		return 0, err
	}

	if covered && len(keys) == 1 {
		n, err := c.conn.SCard(ctx, keys[0]).Result()
		return int(n), err
	}
	if covered {
		ids, err := c.conn.SInter(ctx, keys...).Result()
		return len(ids), err
	}

	docs, err := c.QueryByFields(ctx, kind, predicates, entity.QueryOptions{})
	if err != nil {
		return 0, err
	}

	return len(docs), nil
}

var (
	_ entity.Store      = new(client)
	_ entity.BatchSaver = new(client)
	_ entity.Counter    = new(client)
)
